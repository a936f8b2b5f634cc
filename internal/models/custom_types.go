package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON custom type for handling JSONB fields
type JSON map[string]interface{}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	temp := make(map[string]interface{})
	if err := json.Unmarshal(bytes, &temp); err != nil {
		return err
	}

	*j = temp
	return nil
}

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// StringArray stores a list of strings in a JSONB column.
type StringArray []string

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	temp := make([]string, 0)
	if err := json.Unmarshal(bytes, &temp); err != nil {
		return err
	}

	*a = temp
	return nil
}

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(a))
}

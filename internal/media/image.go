package media

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"moderation-api/internal/pkg/errors"
)

// DecodeImage decodes submitted image bytes. JPEG, PNG and GIF are
// accepted, everything else is an input error.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, fmt.Sprintf("unreadable image data: %v", err))
	}
	return img, nil
}

package services

import "time"

// nowFunc returns the current time. Tests substitute it to steer quota
// resets and billing periods.
var nowFunc = time.Now

package usecase

import "errors"

// ErrActivityNotFound is returned when an activity does not exist or is
// owned by another user. The two cases are not distinguished.
var ErrActivityNotFound = errors.New("activity not found")

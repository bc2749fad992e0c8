// Package entity はactivitiesフィーチャーのドメインモデルを定義します。
package entity

import (
	"errors"
	"time"
)

// DateLayout is the wire and storage format of Activity.Date.
const DateLayout = "2006-01-02"

// Status is the progress of an activity.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// DefaultStatus is applied when a client omits the status.
const DefaultStatus = StatusPlanned

// Well-known activity types. Other values are accepted.
const (
	TypeWorkout = "workout"
	TypeMeal    = "meal"
	TypeSteps   = "steps"
)

// MaxTypeLength is the maximum length of ActivityType.
const MaxTypeLength = 20

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrInvalidDate   = errors.New("invalid date")
)

// Activity はユーザーが記録する1件のアクティビティ（運動・食事・歩数）です。
type Activity struct {
	ID           uint
	UserID       uint // 所有者。作成後に変更されない
	ActivityType string
	Description  string
	Date         time.Time // 時刻部分は常に00:00 UTC
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// KnownTypes returns the advertised activity types.
func KnownTypes() []string {
	return []string{TypeWorkout, TypeMeal, TypeSteps}
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Statuses returns all statuses in display order.
func Statuses() []Status {
	return []Status{StatusPlanned, StatusInProgress, StatusCompleted}
}

// ParseStatus converts a string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// FormatDate formats d as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

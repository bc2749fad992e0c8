// Package dto はactivitiesフィーチャーのHTTPトランスポート層のDTOを定義します。
package dto

import (
	"time"

	"fitness_backend/internal/feature/activities/domain/entity"
	"fitness_backend/internal/shared/validation"
)

const msgNull = "This field may not be null."

// CreateActivityReq は作成（POST）と置換（PUT）のリクエストボディです。
// 日付やstatusの内容はusecaseで検証します。
type CreateActivityReq struct {
	ActivityType string           `json:"activity_type" binding:"required"`
	Description  string           `json:"description"`
	Date         string           `json:"date" binding:"required"`
	Status       Optional[string] `json:"status"`
}

// NullFields returns a field error when status is sent as null. Omitting it
// selects the default instead.
func (r CreateActivityReq) NullFields() validation.Errors {
	errs := validation.Errors{}
	if r.Status.Null {
		errs.Add("status", msgNull)
	}
	return errs
}

// UpdateActivityReq は部分更新（PATCH）のリクエストボディです。
// 省略したフィールドは変更せず、明示的なnullは拒否します。
type UpdateActivityReq struct {
	ActivityType Optional[string] `json:"activity_type"`
	Description  Optional[string] `json:"description"`
	Date         Optional[string] `json:"date"`
	Status       Optional[string] `json:"status"`
}

// NullFields returns a field error for every field sent as null.
func (r UpdateActivityReq) NullFields() validation.Errors {
	errs := validation.Errors{}
	for _, f := range []struct {
		name string
		null bool
	}{
		{"activity_type", r.ActivityType.Null},
		{"description", r.Description.Null},
		{"date", r.Date.Null},
		{"status", r.Status.Null},
	} {
		if f.null {
			errs.Add(f.name, msgNull)
		}
	}
	return errs
}

// ActivityResponse はアクティビティのレスポンスDTOです。
type ActivityResponse struct {
	ID           uint      `json:"id"`
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ActivityDetailResponse is returned by update endpoints.
type ActivityDetailResponse struct {
	Detail   string           `json:"detail"`
	Activity ActivityResponse `json:"activity"`
}

// NewActivityResponse converts a domain entity into its JSON form.
func NewActivityResponse(a entity.Activity) ActivityResponse {
	return ActivityResponse{
		ID:           a.ID,
		ActivityType: a.ActivityType,
		Description:  a.Description,
		Date:         entity.FormatDate(a.Date),
		Status:       string(a.Status),
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
	}
}

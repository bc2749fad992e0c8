// Package usecase はアクティビティ記録のビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"fitness_backend/internal/feature/activities/domain/entity"
	"fitness_backend/internal/shared/validation"
)

const (
	msgRequired   = "This field is required."
	msgBlank      = "This field may not be blank."
	msgDateFormat = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
)

// ActivityRepository はアクティビティの永続化層を抽象化します。
// すべての操作は所有者IDでスコープされ、他ユーザーの行はErrActivityNotFoundになります。
type ActivityRepository interface {
	// Create persists a and fills in its ID and timestamps.
	Create(ctx context.Context, a *entity.Activity) error
	// ListByOwner returns the owner's activities, newest date first.
	ListByOwner(ctx context.Context, ownerID uint) ([]entity.Activity, error)
	Get(ctx context.Context, ownerID, id uint) (*entity.Activity, error)
	// Update applies only the non-nil fields of p.
	Update(ctx context.Context, ownerID, id uint, p Patch) (*entity.Activity, error)
	Delete(ctx context.Context, ownerID, id uint) error
}

// Recorder receives domain events for metrics. It may be nil.
type Recorder interface {
	ActivityCreated(activityType string, status string)
}

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	ActivityType *string
	Description  *string
	Date         *time.Time
	Status       *entity.Status
}

// IsEmpty reports whether no field is set.
func (p Patch) IsEmpty() bool {
	return p.ActivityType == nil && p.Description == nil && p.Date == nil && p.Status == nil
}

// CreateInput is the payload of create and replace. A nil Status means the
// default status.
type CreateInput struct {
	ActivityType string
	Description  string
	Date         string
	Status       *string
}

// UpdateInput is the payload of a partial update.
type UpdateInput struct {
	ActivityType *string
	Description  *string
	Date         *string
	Status       *string
}

// ActivityUsecase implements the owner-scoped activity operations.
type ActivityUsecase struct {
	repo     ActivityRepository
	recorder Recorder
}

// NewActivityUsecase creates an ActivityUsecase. recorder may be nil.
func NewActivityUsecase(repo ActivityRepository, recorder Recorder) *ActivityUsecase {
	return &ActivityUsecase{repo: repo, recorder: recorder}
}

func validateType(v string, errs validation.Errors) string {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		errs.Add("activity_type", msgBlank)
	case utf8.RuneCountInString(v) > entity.MaxTypeLength:
		errs.Add("activity_type", fmt.Sprintf("Ensure this field has no more than %d characters.", entity.MaxTypeLength))
	}
	return v
}

func validateDate(v string, errs validation.Errors) time.Time {
	if v == "" {
		errs.Add("date", msgRequired)
		return time.Time{}
	}
	d, err := entity.ParseDate(v)
	if err != nil {
		errs.Add("date", msgDateFormat)
	}
	return d
}

func validateStatus(v string, errs validation.Errors) entity.Status {
	st, err := entity.ParseStatus(v)
	if err != nil {
		errs.Add("status", fmt.Sprintf("%q is not a valid choice.", v))
	}
	return st
}

// build validates a full payload and returns the activity it describes.
func build(in CreateInput) (*entity.Activity, error) {
	errs := validation.Errors{}

	a := &entity.Activity{
		ActivityType: validateType(in.ActivityType, errs),
		Description:  in.Description,
		Date:         validateDate(in.Date, errs),
		Status:       entity.DefaultStatus,
	}
	if in.Status != nil {
		a.Status = validateStatus(*in.Status, errs)
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return a, nil
}

// Create はownerのアクティビティを作成します。statusが省略された場合はplannedになります。
// 入力が不正な場合は書き込み前にvalidation.Errorsを返します。
func (u *ActivityUsecase) Create(ctx context.Context, ownerID uint, in CreateInput) (*entity.Activity, error) {
	a, err := build(in)
	if err != nil {
		return nil, err
	}
	a.UserID = ownerID

	if err := u.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}
	if u.recorder != nil {
		u.recorder.ActivityCreated(a.ActivityType, string(a.Status))
	}
	return a, nil
}

// List returns the owner's activities ordered by date descending.
func (u *ActivityUsecase) List(ctx context.Context, ownerID uint) ([]entity.Activity, error) {
	return u.repo.ListByOwner(ctx, ownerID)
}

// Get returns ErrActivityNotFound when the activity is missing or not owned.
func (u *ActivityUsecase) Get(ctx context.Context, ownerID, id uint) (*entity.Activity, error) {
	return u.repo.Get(ctx, ownerID, id)
}

// Update は指定されたフィールドのみを更新します（PATCH）。
func (u *ActivityUsecase) Update(ctx context.Context, ownerID, id uint, in UpdateInput) (*entity.Activity, error) {
	errs := validation.Errors{}
	var p Patch

	if in.ActivityType != nil {
		v := validateType(*in.ActivityType, errs)
		p.ActivityType = &v
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.Date != nil {
		d := validateDate(*in.Date, errs)
		p.Date = &d
	}
	if in.Status != nil {
		st := validateStatus(*in.Status, errs)
		p.Status = &st
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return u.repo.Update(ctx, ownerID, id, p)
}

// Replace は全フィールドを置き換えます（PUT）。descriptionは空、statusはplannedが既定値です。
func (u *ActivityUsecase) Replace(ctx context.Context, ownerID, id uint, in CreateInput) (*entity.Activity, error) {
	a, err := build(in)
	if err != nil {
		return nil, err
	}

	return u.repo.Update(ctx, ownerID, id, Patch{
		ActivityType: &a.ActivityType,
		Description:  &a.Description,
		Date:         &a.Date,
		Status:       &a.Status,
	})
}

// Delete removes the activity. Same not-found semantics as Get.
func (u *ActivityUsecase) Delete(ctx context.Context, ownerID, id uint) error {
	return u.repo.Delete(ctx, ownerID, id)
}

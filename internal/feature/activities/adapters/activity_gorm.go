package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fitness_backend/internal/feature/activities/domain/entity"
	"fitness_backend/internal/feature/activities/usecase"
)

// activityGorm はActivityRepositoryのGORM実装です。
// 所有者フィルタはすべてのクエリでここで適用します。
type activityGorm struct {
	db *gorm.DB
}

var _ usecase.ActivityRepository = (*activityGorm)(nil)

// NewActivityRepository creates a new instance of activityGorm.
func NewActivityRepository(db *gorm.DB) *activityGorm {
	return &activityGorm{db: db}
}

func owned(db *gorm.DB, ownerID, id uint) *gorm.DB {
	return db.Where("id = ? AND user_id = ?", id, ownerID)
}

// Create inserts a and copies the generated ID and timestamps back.
func (r *activityGorm) Create(ctx context.Context, a *entity.Activity) error {
	model := ActivityModelFromEntity(a)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	*a = model.ToEntity()
	return nil
}

// ListByOwner returns the owner's activities ordered by date descending,
// ties in creation order.
func (r *activityGorm) ListByOwner(ctx context.Context, ownerID uint) ([]entity.Activity, error) {
	var models []ActivityModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("date DESC, id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]entity.Activity, 0, len(models))
	for i := range models {
		out = append(out, models[i].ToEntity())
	}
	return out, nil
}

// Get returns usecase.ErrActivityNotFound if the row is missing or owned by
// someone else.
func (r *activityGorm) Get(ctx context.Context, ownerID, id uint) (*entity.Activity, error) {
	var model ActivityModel
	if err := owned(r.db.WithContext(ctx), ownerID, id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrActivityNotFound
		}
		return nil, err
	}
	a := model.ToEntity()
	return &a, nil
}

// Update applies the non-nil fields of p and refreshes updated_at in a
// single transaction.
func (r *activityGorm) Update(ctx context.Context, ownerID, id uint, p usecase.Patch) (*entity.Activity, error) {
	var model ActivityModel

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := owned(tx, ownerID, id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecase.ErrActivityNotFound
			}
			return err
		}

		updates := map[string]any{"updated_at": time.Now()}
		if p.ActivityType != nil {
			updates["activity_type"] = *p.ActivityType
		}
		if p.Description != nil {
			updates["description"] = *p.Description
		}
		if p.Date != nil {
			updates["date"] = datatypes.Date(*p.Date)
		}
		if p.Status != nil {
			updates["status"] = string(*p.Status)
		}

		if err := tx.Model(&ActivityModel{}).Where("id = ?", model.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", model.ID).First(&model).Error
	})
	if err != nil {
		return nil, err
	}

	a := model.ToEntity()
	return &a, nil
}

// Delete removes the row. Zero affected rows means not found or not owned.
func (r *activityGorm) Delete(ctx context.Context, ownerID, id uint) error {
	result := owned(r.db.WithContext(ctx), ownerID, id).Delete(&ActivityModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrActivityNotFound
	}
	return nil
}

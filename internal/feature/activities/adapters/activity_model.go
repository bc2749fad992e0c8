// Package adapters はactivitiesフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"time"

	"gorm.io/datatypes"

	"fitness_backend/internal/feature/activities/domain/entity"
)

// ActivityModel is the GORM model for the activities table.
type ActivityModel struct {
	ID           uint           `gorm:"primaryKey"`
	UserID       uint           `gorm:"not null;index:idx_activities_owner_date,priority:1"`
	ActivityType string         `gorm:"size:20;not null"`
	Description  string         `gorm:"type:text;not null;default:''"`
	Date         datatypes.Date `gorm:"not null;index:idx_activities_owner_date,priority:2"`
	Status       string         `gorm:"size:20;not null;default:planned"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM.
func (ActivityModel) TableName() string {
	return "activities"
}

// ToEntity converts the GORM model to a domain entity.
func (m *ActivityModel) ToEntity() entity.Activity {
	// DATE列は接続のタイムゾーンで読み戻されるため、暦日だけを取り出してUTCに揃える
	y, mo, d := time.Time(m.Date).Date()
	return entity.Activity{
		ID:           m.ID,
		UserID:       m.UserID,
		ActivityType: m.ActivityType,
		Description:  m.Description,
		Date:         time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
		Status:       entity.Status(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// ActivityModelFromEntity converts a domain entity to a GORM model.
func ActivityModelFromEntity(a *entity.Activity) *ActivityModel {
	return &ActivityModel{
		ID:           a.ID,
		UserID:       a.UserID,
		ActivityType: a.ActivityType,
		Description:  a.Description,
		Date:         datatypes.Date(a.Date),
		Status:       string(a.Status),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

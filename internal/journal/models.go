package journal

import (
	"time"

	"github.com/google/uuid"
)

// Session is one run of the monitor against a camera.
type Session struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey"`
	Device    int       `gorm:"not null"`
	StartedAt time.Time `gorm:"not null;index"`
	EndedAt   *time.Time
}

// Alert is one bad-posture notification attempt.
type Alert struct {
	ID            uint      `gorm:"primaryKey"`
	SessionID     uuid.UUID `gorm:"type:text;not null;index"`
	Front         float64   `gorm:"not null"`
	LeftShoulder  float64   `gorm:"not null"`
	RightShoulder float64   `gorm:"not null"`
	At            time.Time `gorm:"not null;index"`
}

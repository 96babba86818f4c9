// Package journal keeps a local sqlite record of monitoring sessions and
// the bad-posture alerts raised during them.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"posture-watch/internal/posture"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Recorder stores alerts for the active session.
type Recorder interface {
	RecordAlert(angles posture.Angles) error
	Shutdown()
}

type Journal struct {
	db  *gorm.DB
	now func() time.Time

	mu      sync.Mutex
	session *Session
}

func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.AutoMigrate(&Session{}, &Alert{}); err != nil {
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// StartSession opens a new session, ending any previous one.
func (j *Journal) StartSession(device int) (uuid.UUID, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.endLocked(); err != nil {
		return uuid.Nil, err
	}

	session := &Session{ID: uuid.New(), Device: device, StartedAt: j.now()}
	if err := j.db.Create(session).Error; err != nil {
		return uuid.Nil, errors.Wrap(err, "failed to insert session")
	}
	j.session = session
	return session.ID, nil
}

func (j *Journal) RecordAlert(angles posture.Angles) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.session == nil {
		return errors.New("no active session")
	}

	alert := &Alert{
		SessionID:     j.session.ID,
		Front:         angles.Front,
		LeftShoulder:  angles.LeftShoulder,
		RightShoulder: angles.RightShoulder,
		At:            j.now(),
	}
	if err := j.db.Create(alert).Error; err != nil {
		return errors.Wrap(err, "failed to insert alert")
	}
	return nil
}

// EndSession stamps the active session's end time.
func (j *Journal) EndSession() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.endLocked()
}

func (j *Journal) endLocked() error {
	if j.session == nil {
		return nil
	}
	ended := j.now()
	result := j.db.Model(&Session{}).Where("id = ?", j.session.ID).Update("ended_at", ended)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to end session")
	}
	j.session = nil
	return nil
}

// Summary counts the alerts raised during a session.
func (j *Journal) Summary(sessionID uuid.UUID) (int64, error) {
	var count int64
	result := j.db.Model(&Alert{}).Where("session_id = ?", sessionID).Count(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count alerts")
	}
	return count, nil
}

func (j *Journal) Session(id uuid.UUID) (*Session, error) {
	var session Session
	if err := j.db.First(&session, "id = ?", id).Error; err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}
	return &session, nil
}

func (j *Journal) Close() error {
	if err := j.EndSession(); err != nil {
		return err
	}
	sqlDB, err := j.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Shutdown closes the journal, ignoring errors.
func (j *Journal) Shutdown() {
	j.Close()
}

type nopRecorder struct{}

// Nop is used when the journal is disabled.
func Nop() Recorder { return nopRecorder{} }

func (nopRecorder) RecordAlert(posture.Angles) error { return nil }
func (nopRecorder) Shutdown()                        {}

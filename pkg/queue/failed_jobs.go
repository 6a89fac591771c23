package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/coldcutclub/storefront/pkg/database"
	"github.com/coldcutclub/storefront/pkg/logger"
)

// FailedJobRecord mirrors the failed_jobs table. Exhausted jobs land here
// so they can be inspected and re-dispatched by hand.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey"`
	JobType  string    `gorm:"size:255;index"`
	Payload  string    `gorm:"type:text"`
	Error    string    `gorm:"type:text"`
	Attempts int       ``
	FailedAt time.Time ``
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

func (m *Manager) persistFailed(job Job, typeName string, err error, attempts int) {
	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Job:      job,
		Err:      err,
		FailedAt: time.Now(),
		Attempts: attempts,
	})
	m.mu.Unlock()

	if database.DB == nil {
		return
	}

	payload, mErr := json.Marshal(job)
	if mErr != nil {
		payload = []byte(fmt.Sprintf("%+v", job))
	}

	rec := FailedJobRecord{
		JobType:  typeName,
		Payload:  string(payload),
		Error:    err.Error(),
		Attempts: attempts,
		FailedAt: time.Now(),
	}
	if dbErr := database.DB.Create(&rec).Error; dbErr != nil {
		logger.Error("queue: persisting failed job", "type", typeName, "error", dbErr)
	}
}

package storage

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	platformerrors "voicelab-server-go/internal/platform/errors"
)

// JobRecord is the persisted shape of one synthesis job.
type JobRecord struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	Type      string `gorm:"size:32;index" json:"type"`
	ClientID  string `gorm:"size:64;index" json:"client_id"`
	Status    string `gorm:"size:16;index" json:"status"`
	Priority  int    `json:"priority"`
	Attempts  int    `json:"attempts"`

	Params datatypes.JSON `json:"params,omitempty"`
	Result datatypes.JSON `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// JobStore persists job state transitions.
type JobStore struct {
	db *gorm.DB
}

func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) Create(rec *JobRecord) error {
	if err := s.db.Create(rec).Error; err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "storage.jobs.create", err)
	}
	return nil
}

func (s *JobStore) Get(id string) (*JobRecord, error) {
	var rec JobRecord
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "storage.jobs.get", err)
	}
	return &rec, nil
}

// MarkStarted records the running transition.
func (s *JobStore) MarkStarted(id string) error {
	now := time.Now()
	return s.update(id, map[string]interface{}{
		"status":     "running",
		"started_at": &now,
	})
}

// MarkFinished records a terminal status with optional result and error.
func (s *JobStore) MarkFinished(id, status string, result datatypes.JSON, errMsg string) error {
	now := time.Now()
	return s.update(id, map[string]interface{}{
		"status":      status,
		"result":      result,
		"error":       errMsg,
		"finished_at": &now,
	})
}

func (s *JobStore) IncrementAttempts(id string) error {
	err := s.db.Model(&JobRecord{}).Where("id = ?", id).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "storage.jobs.update", err)
	}
	return nil
}

// ListByClient returns a client's newest jobs first.
func (s *JobStore) ListByClient(clientID string, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []JobRecord
	err := s.db.Where("client_id = ?", clientID).
		Order("created_at DESC").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage, "storage.jobs.list", err)
	}
	return recs, nil
}

// CountActive counts a client's jobs that have not reached a terminal state.
func (s *JobStore) CountActive(clientID string) (int64, error) {
	var n int64
	err := s.db.Model(&JobRecord{}).
		Where("client_id = ? AND status IN ?", clientID, []string{"pending", "running"}).
		Count(&n).Error
	if err != nil {
		return 0, platformerrors.Wrap(platformerrors.KindStorage, "storage.jobs.count", err)
	}
	return n, nil
}

func (s *JobStore) update(id string, fields map[string]interface{}) error {
	err := s.db.Model(&JobRecord{}).Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "storage.jobs.update", err)
	}
	return nil
}

// Package task owns the asynchronous job lifecycle: submission, per-client
// admission, execution on the worker pool, persistence, and lifecycle events.
package task

import (
	"context"
	"sync"

	evbus "github.com/asaskevich/EventBus"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"voicelab-server-go/internal/domain/eventbus"
	"voicelab-server-go/internal/platform/config"
	platformerrors "voicelab-server-go/internal/platform/errors"
	"voicelab-server-go/internal/platform/logging"
	"voicelab-server-go/internal/platform/storage"
	"voicelab-server-go/internal/util/work"
)

// Job statuses as persisted.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Executor runs one job type. The returned value is serialized into the job
// record's result column.
type Executor func(ctx context.Context, rec *storage.JobRecord) (interface{}, error)

// Manager routes submitted jobs to executors through a priority worker pool.
type Manager struct {
	store        *storage.JobStore
	bus          evbus.Bus
	pool         *work.Pool[string]
	logger       *logging.Logger
	maxRetries   int
	maxPerClient int

	mu        sync.RWMutex
	executors map[string]Executor
	cancels   map[string]context.CancelFunc
}

func NewManager(store *storage.JobStore, bus evbus.Bus, cfg config.JobsConfig, logger *logging.Logger) *Manager {
	m := &Manager{
		store:        store,
		bus:          bus,
		logger:       logger,
		maxRetries:   cfg.MaxRetries,
		maxPerClient: cfg.MaxPerClient,
		executors:    make(map[string]Executor),
		cancels:      make(map[string]context.CancelFunc),
	}
	m.pool = work.NewPool[string](cfg.Workers, m.handle)
	return m
}

// RegisterExecutor binds a job type to its executor. Panics on duplicates.
func (m *Manager) RegisterExecutor(jobType string, exec Executor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.executors[jobType]; exists {
		panic("task: executor already registered: " + jobType)
	}
	m.executors[jobType] = exec
}

// Submit persists a new pending job and queues it for execution.
func (m *Manager) Submit(jobType, clientID string, params []byte, priority int) (*storage.JobRecord, error) {
	const op = "task.submit"

	m.mu.RLock()
	_, known := m.executors[jobType]
	m.mu.RUnlock()
	if !known {
		return nil, platformerrors.Newf(platformerrors.KindValidation, op,
			"unknown job type %q", jobType)
	}

	if m.maxPerClient > 0 {
		active, err := m.store.CountActive(clientID)
		if err != nil {
			return nil, err
		}
		if active >= int64(m.maxPerClient) {
			return nil, platformerrors.Newf(platformerrors.KindValidation, op,
				"client %q already has %d active jobs (limit %d)", clientID, active, m.maxPerClient)
		}
	}

	rec := &storage.JobRecord{
		ID:       uuid.NewString(),
		Type:     jobType,
		ClientID: clientID,
		Status:   StatusPending,
		Priority: priority,
		Params:   datatypes.JSON(params),
	}
	if err := m.store.Create(rec); err != nil {
		return nil, err
	}

	m.publish(eventbus.TopicJobAccepted, rec)
	if err := m.pool.SubmitWithRetries(rec.ID, priority, m.maxRetries); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindPlatform, op, err)
	}

	if m.logger != nil {
		m.logger.InfoTag("Job", "accepted %s job %s for client %s", jobType, rec.ID, clientID)
	}
	return rec, nil
}

// Status returns the persisted job snapshot.
func (m *Manager) Status(id string) (*storage.JobRecord, error) {
	return m.store.Get(id)
}

// List returns a client's recent jobs.
func (m *Manager) List(clientID string, limit int) ([]storage.JobRecord, error) {
	return m.store.ListByClient(clientID, limit)
}

// Cancel stops a running job or retires a pending one.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	cancel, running := m.cancels[id]
	m.mu.Unlock()

	if running {
		cancel()
		return nil
	}

	rec, err := m.store.Get(id)
	if err != nil {
		return err
	}
	if rec.Status != StatusPending {
		return platformerrors.Newf(platformerrors.KindValidation, "task.cancel",
			"job %s is %s, only pending or running jobs can be cancelled", id, rec.Status)
	}
	if err := m.store.MarkFinished(id, StatusCancelled, nil, ""); err != nil {
		return err
	}
	rec.Status = StatusCancelled
	m.publish(eventbus.TopicJobCancelled, rec)
	return nil
}

// Pending reports queue depth, used by the system status endpoint.
func (m *Manager) Pending() int {
	return m.pool.Pending()
}

// Stop drains the pool.
func (m *Manager) Stop() {
	m.pool.Stop()
}

func (m *Manager) handle(ctx context.Context, id string) error {
	rec, err := m.store.Get(id)
	if err != nil {
		return nil // record vanished, nothing to retry
	}
	if rec.Status == StatusCancelled {
		return nil
	}

	m.mu.RLock()
	exec, ok := m.executors[rec.Type]
	m.mu.RUnlock()
	if !ok {
		_ = m.store.MarkFinished(id, StatusFailed, nil, "no executor for job type "+rec.Type)
		return nil
	}

	if err := m.store.MarkStarted(id); err != nil {
		return nil
	}
	rec.Status = StatusRunning
	m.publish(eventbus.TopicJobStarted, rec)

	jobCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancels[id] = cancel
	m.mu.Unlock()
	defer func() {
		cancel()
		m.mu.Lock()
		delete(m.cancels, id)
		m.mu.Unlock()
	}()

	result, execErr := exec(jobCtx, rec)
	if execErr == nil {
		payload, err := sonic.Marshal(result)
		if err != nil {
			payload = nil
		}
		_ = m.store.MarkFinished(id, StatusCompleted, datatypes.JSON(payload), "")
		rec.Status = StatusCompleted
		m.publish(eventbus.TopicJobCompleted, rec)
		return nil
	}

	if jobCtx.Err() != nil {
		_ = m.store.MarkFinished(id, StatusCancelled, nil, execErr.Error())
		rec.Status = StatusCancelled
		m.publish(eventbus.TopicJobCancelled, rec)
		return nil
	}

	_ = m.store.IncrementAttempts(id)
	rec.Attempts++
	if rec.Attempts > m.maxRetries {
		_ = m.store.MarkFinished(id, StatusFailed, nil, execErr.Error())
		rec.Status = StatusFailed
		m.publish(eventbus.TopicJobFailed, rec)
		if m.logger != nil {
			m.logger.ErrorTag("Job", "job %s failed after %d attempts: %v", id, rec.Attempts, execErr)
		}
		return nil
	}

	if m.logger != nil {
		m.logger.WarnTag("Job", "job %s attempt %d failed, retrying: %v", id, rec.Attempts, execErr)
	}
	return execErr
}

func (m *Manager) publish(topic string, rec *storage.JobRecord) {
	if m.bus != nil {
		snapshot := *rec
		m.bus.Publish(topic, &snapshot)
	}
}

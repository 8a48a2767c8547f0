package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	taskTypeRefresh = "suggestions:refresh"
	queueName       = "suggestions"
	operationName   = "refresh_suggestions"
)

// Refresher は提案キャッシュを更新します。
type Refresher interface {
	Refresh(ctx context.Context) error
}

// TaskPayload は更新ジョブのペイロードです。定期実行分は JobID を持ちません。
type TaskPayload struct {
	JobID string `json:"jobId,omitempty"`
}

// Manager はジョブの投入と状態管理を担います。
type Manager struct {
	client    *asynq.Client
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	cronSpec  string
	store     *Store
	refresher Refresher
	logger    *log.Logger
}

// NewManager は Manager を初期化します。cronSpec が空の場合は定期実行しません。
func NewManager(redisURL string, refresher Refresher, store *Store, cronSpec string, logger *log.Logger) (*Manager, error) {
	if refresher == nil {
		return nil, errors.New("refresher is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	server := asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				queueName: 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	manager := &Manager{
		client:    asynq.NewClient(opt),
		server:    server,
		mux:       mux,
		scheduler: asynq.NewScheduler(opt, nil),
		cronSpec:  cronSpec,
		store:     store,
		refresher: refresher,
		logger:    logger,
	}
	mux.HandleFunc(taskTypeRefresh, manager.handleRefreshTask)
	return manager, nil
}

// StartWorkers は Asynq サーバーとスケジューラーをバックグラウンドで起動します。
func (m *Manager) StartWorkers() error {
	if m.cronSpec != "" {
		body, err := json.Marshal(&TaskPayload{})
		if err != nil {
			return err
		}
		task := asynq.NewTask(taskTypeRefresh, body, asynq.Queue(queueName), asynq.MaxRetry(0))
		if _, err := m.scheduler.Register(m.cronSpec, task); err != nil {
			return fmt.Errorf("register refresh schedule: %w", err)
		}
		if err := m.scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	go func() {
		if err := m.server.Run(m.mux); err != nil && err != asynq.ErrServerClosed {
			m.logger.Printf("asynq server stopped with error: %v", err)
		}
	}()
	return nil
}

// Shutdown はサーバー・スケジューラー・クライアントを閉じます。
func (m *Manager) Shutdown(ctx context.Context) error {
	if m.cronSpec != "" {
		m.scheduler.Shutdown()
	}
	m.server.Shutdown()
	return m.client.Close()
}

// ScheduleRefresh は更新ジョブをキューに投入し、ジョブIDを返します。
func (m *Manager) ScheduleRefresh(ctx context.Context) (string, error) {
	jobID := uuid.NewString()
	if err := m.store.Upsert(ctx, &Record{
		JobID:     jobID,
		Operation: operationName,
		Status:    StatusQueued,
	}); err != nil {
		return "", err
	}

	body, err := json.Marshal(&TaskPayload{JobID: jobID})
	if err != nil {
		return "", err
	}

	task := asynq.NewTask(taskTypeRefresh, body, asynq.Queue(queueName))
	if _, err := m.client.EnqueueContext(ctx, task, asynq.TaskID(jobID), asynq.MaxRetry(0)); err != nil {
		_ = m.store.MarkFailed(ctx, jobID, &ErrorInfo{Code: "ENQUEUE_FAILED", Message: err.Error()})
		return "", err
	}
	return jobID, nil
}

// GetRecord はジョブ情報を取得します。
func (m *Manager) GetRecord(ctx context.Context, jobID string) (*Record, error) {
	return m.store.Get(ctx, jobID)
}

func (m *Manager) handleRefreshTask(ctx context.Context, task *asynq.Task) error {
	var payload TaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	if payload.JobID == "" {
		if err := m.refresher.Refresh(ctx); err != nil {
			m.logger.Printf("scheduled suggestions refresh failed: %v", err)
			return err
		}
		return nil
	}

	if err := m.store.MarkRunning(ctx, payload.JobID); err != nil {
		return err
	}
	if err := m.refresher.Refresh(ctx); err != nil {
		if markErr := m.store.MarkFailed(ctx, payload.JobID, &ErrorInfo{
			Code:    "UPSTREAM_ERROR",
			Message: err.Error(),
		}); markErr != nil {
			m.logger.Printf("failed to mark job=%s failed: %v", payload.JobID, markErr)
		}
		return err
	}
	return m.store.MarkDone(ctx, payload.JobID)
}

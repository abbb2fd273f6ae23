package workers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"slotwise/core/config"
	"slotwise/core/errors"
	"slotwise/core/logger"
	providersvc "slotwise/modules/provider/service"
)

const (
	TaskTypeCompensateDelete = "booking:compensate_delete"

	compensateMaxRetry = 10
	compensateTimeout  = time.Minute
)

// CompensatePayload identifies a provider event that was created but whose
// booking row failed to persist. The worker deletes it so the calendar does
// not show a phantom meeting.
type CompensatePayload struct {
	CalendarID string `json:"calendar_id"`
	EventID    string `json:"event_id"`
	BookingID  string `json:"booking_id"`
}

// CompensationEnqueuer is the narrow surface the booking service needs.
type CompensationEnqueuer interface {
	EnqueueCompensateDelete(ctx context.Context, payload CompensatePayload) error
}

type Client struct {
	inner *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{inner: asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})}
}

func (c *Client) EnqueueCompensateDelete(ctx context.Context, payload CompensatePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	task := asynq.NewTask(TaskTypeCompensateDelete, data,
		asynq.MaxRetry(compensateMaxRetry),
		asynq.Timeout(compensateTimeout))
	info, err := c.inner.EnqueueContext(ctx, task)
	if err != nil {
		logger.Error("Workers:EnqueueCompensateDelete:Error", "event_id", payload.EventID, "error", err)
		return err
	}
	logger.Info("Workers:EnqueueCompensateDelete:Queued", "task_id", info.ID, "event_id", payload.EventID)
	return nil
}

func (c *Client) Close() error {
	return c.inner.Close()
}

type Server struct {
	inner *asynq.Server
	mux   *asynq.ServeMux
}

func NewServer(cfg config.RedisConfig, provider providersvc.Provider) *Server {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		asynq.Config{
			Concurrency: 5,
		},
	)
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeCompensateDelete, compensateDeleteHandler(provider))
	return &Server{inner: srv, mux: mux}
}

func (s *Server) Start() error {
	return s.inner.Start(s.mux)
}

func (s *Server) Shutdown() {
	s.inner.Shutdown()
}

func compensateDeleteHandler(provider providersvc.Provider) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload CompensatePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Error("Workers:CompensateDelete:BadPayload", "error", err)
			return nil // malformed payloads never succeed on retry
		}
		err := provider.DeleteEvent(ctx, payload.CalendarID, payload.EventID)
		if err != nil {
			if errors.IsCode(err, errors.ErrNotFound) {
				logger.Info("Workers:CompensateDelete:AlreadyGone", "event_id", payload.EventID)
				return nil
			}
			logger.Warn("Workers:CompensateDelete:Retry", "event_id", payload.EventID, "error", err)
			return err
		}
		logger.Info("Workers:CompensateDelete:Done",
			"event_id", payload.EventID, "booking_id", payload.BookingID)
		return nil
	}
}

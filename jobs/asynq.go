package jobs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
)

// Worker wraps the asynq server.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts    asynq.RedisClientOpt
	Logger       *slog.Logger
	EmailHandler *EmailDocumentHandler
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) *Worker {
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.Handle(TaskTypeEmailDocument, cfg.EmailHandler)
	return &Worker{server: srv, mux: mux, logger: cfg.Logger}
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueQuoteEmail queues delivery of a quote PDF.
func (c *Client) EnqueueQuoteEmail(ctx context.Context, orgID, quoteID int64, recipient string) error {
	return c.enqueue(ctx, EmailDocumentPayload{
		DocType:        DocTypeQuote,
		OrganizationID: orgID,
		DocumentID:     quoteID,
		Recipient:      recipient,
	})
}

// EnqueuePurchaseOrderEmail queues delivery of a purchase order PDF.
func (c *Client) EnqueuePurchaseOrderEmail(ctx context.Context, orgID, orderID int64, recipient string) error {
	return c.enqueue(ctx, EmailDocumentPayload{
		DocType:        DocTypePurchaseOrder,
		OrganizationID: orgID,
		DocumentID:     orderID,
		Recipient:      recipient,
	})
}

func (c *Client) enqueue(ctx context.Context, payload EmailDocumentPayload) error {
	task, err := NewEmailDocumentTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// Handler exposes HTTP endpoints for job observability.
type Handler struct {
	inspector *asynq.Inspector
	logger    *slog.Logger
}

// NewHandler constructs an HTTP handler for jobs endpoints.
func NewHandler(inspector *asynq.Inspector, logger *slog.Logger) *Handler {
	return &Handler{inspector: inspector, logger: logger}
}

// MountRoutes attaches job routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/health", h.health)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.inspector == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"queue":"default","pending":0}`))
		return
	}
	info, err := h.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		h.logger.Warn("jobs health", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	pending := 0
	queueName := QueueDefault
	if info != nil {
		pending = int(info.Pending)
		queueName = info.Queue
	}
	_, _ = w.Write([]byte(`{"queue":"` + queueName + `","pending":` + strconv.Itoa(pending) + `}`))
}

// Package jobs runs background work through asynq: document rendering and
// email delivery happen here so the request path never blocks on Gotenberg
// or SMTP.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/tradewind-erp/tradewind/internal/documents"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeEmailDocument renders a document and mails it to a recipient.
	TaskTypeEmailDocument = "document:email"
)

// Document types carried in the task payload.
const (
	DocTypeQuote         = "quote"
	DocTypePurchaseOrder = "purchase_order"
)

// EmailDocumentPayload identifies one document and its recipient.
type EmailDocumentPayload struct {
	DocType        string `json:"doc_type"`
	OrganizationID int64  `json:"organization_id"`
	DocumentID     int64  `json:"document_id"`
	Recipient      string `json:"recipient"`
}

// NewEmailDocumentTask constructs an asynq task.
func NewEmailDocumentTask(payload EmailDocumentPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeEmailDocument, data), nil
}

// EmailDocumentHandler processes TaskTypeEmailDocument tasks.
type EmailDocumentHandler struct {
	docs   *documents.Service
	logger *slog.Logger
}

func NewEmailDocumentHandler(docs *documents.Service, logger *slog.Logger) *EmailDocumentHandler {
	return &EmailDocumentHandler{docs: docs, logger: logger}
}

// ProcessTask renders and mails one document. A malformed payload is skipped
// rather than retried; a failed render or send surfaces the error to asynq.
func (h *EmailDocumentHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailDocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("email document: malformed payload", slog.Any("error", err))
		return asynq.SkipRetry
	}

	var err error
	switch payload.DocType {
	case DocTypeQuote:
		err = h.docs.EmailQuote(ctx, payload.OrganizationID, payload.DocumentID, payload.Recipient)
	case DocTypePurchaseOrder:
		err = h.docs.EmailPurchaseOrder(ctx, payload.OrganizationID, payload.DocumentID, payload.Recipient)
	default:
		h.logger.Error("email document: unknown doc type", slog.String("doc_type", payload.DocType))
		return asynq.SkipRetry
	}
	if err != nil {
		h.logger.Error("email document",
			slog.String("doc_type", payload.DocType),
			slog.Int64("document_id", payload.DocumentID),
			slog.Any("error", err))
		return err
	}
	h.logger.Info("document emailed",
		slog.String("doc_type", payload.DocType),
		slog.Int64("document_id", payload.DocumentID))
	return nil
}

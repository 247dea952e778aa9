package ports

import (
	"context"
	"io"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// MailMessage is an outbound email.
type MailMessage struct {
	To      string
	Subject string
	Body    string // HTML
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// StoredObject is what the object storage returns for an upload.
type StoredObject struct {
	PublicID string
	URL      string
}

// ObjectStorage stores user-uploaded files.
type ObjectStorage interface {
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader, size int64) (*StoredObject, error)
	Delete(ctx context.Context, publicID string) error
}

// CleanupScheduler deletes stored objects asynchronously.
type CleanupScheduler interface {
	ScheduleDelete(publicID string)
}

// TokenDenylist tracks session tokens revoked before their expiry.
type TokenDenylist interface {
	Revoke(ctx context.Context, token string, until time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// SalesCache caches computed sales reports by normalized date range.
type SalesCache interface {
	Get(ctx context.Context, from, to string) (*domain.SalesReport, bool, error)
	Set(ctx context.Context, from, to string, report *domain.SalesReport) error
}

package ports

import (
	"context"
	"time"
)

// MailEnqueuer enqueues outbound email tasks (verification, invitation).
type MailEnqueuer interface {
	EnqueueVerificationEmail(ctx context.Context, email, linkURL string, expiresAt time.Time) error
	EnqueueInvitationEmail(ctx context.Context, email, orgName, role, linkURL string, expiresAt time.Time) error
}

package queue

import (
	"context"
	"time"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/mail"
)

// DirectEnqueuer sends mail synchronously when Redis/Asynq is not configured.
type DirectEnqueuer struct {
	mailer mail.Mailer
}

func NewDirectEnqueuer(mailer mail.Mailer) *DirectEnqueuer {
	return &DirectEnqueuer{mailer: mailer}
}

func (q *DirectEnqueuer) EnqueueVerificationEmail(ctx context.Context, email, linkURL string, expiresAt time.Time) error {
	return q.mailer.SendVerification(email, linkURL, expiresAt)
}

func (q *DirectEnqueuer) EnqueueInvitationEmail(ctx context.Context, email, orgName, role, linkURL string, expiresAt time.Time) error {
	return q.mailer.SendInvitation(email, orgName, role, linkURL, expiresAt)
}

var _ ports.MailEnqueuer = (*DirectEnqueuer)(nil)

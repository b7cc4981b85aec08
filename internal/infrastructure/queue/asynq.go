package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
)

const (
	TypeSendVerificationEmail = "email:verify"
	TypeSendInvitationEmail   = "email:invite"
)

type MailEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, log zerolog.Logger) *MailEnqueuer {
	return &MailEnqueuer{client: asynq.NewClient(redisOpt), log: log}
}

func (q *MailEnqueuer) Close() error {
	return q.client.Close()
}

func (q *MailEnqueuer) EnqueueVerificationEmail(ctx context.Context, email, linkURL string, expiresAt time.Time) error {
	payload, _ := json.Marshal(verificationPayload{
		Email:     email,
		LinkURL:   linkURL,
		ExpiresAt: expiresAt,
	})
	task := asynq.NewTask(TypeSendVerificationEmail, payload)
	_, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Str("email", email).Msg("enqueue verification email failed")
		return err
	}
	return nil
}

func (q *MailEnqueuer) EnqueueInvitationEmail(ctx context.Context, email, orgName, role, linkURL string, expiresAt time.Time) error {
	payload, _ := json.Marshal(invitationPayload{
		Email:     email,
		OrgName:   orgName,
		Role:      role,
		LinkURL:   linkURL,
		ExpiresAt: expiresAt,
	})
	task := asynq.NewTask(TypeSendInvitationEmail, payload)
	_, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Str("email", email).Msg("enqueue invitation email failed")
		return err
	}
	return nil
}

var _ ports.MailEnqueuer = (*MailEnqueuer)(nil)

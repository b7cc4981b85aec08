package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/mail"
)

// verificationPayload matches the JSON enqueued by MailEnqueuer.EnqueueVerificationEmail.
type verificationPayload struct {
	Email     string    `json:"email"`
	LinkURL   string    `json:"link_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// invitationPayload matches the JSON enqueued by MailEnqueuer.EnqueueInvitationEmail.
type invitationPayload struct {
	Email     string    `json:"email"`
	OrgName   string    `json:"org_name"`
	Role      string    `json:"role"`
	LinkURL   string    `json:"link_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Worker runs Asynq task handlers for outbound email.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	mailer mail.Mailer
	log    zerolog.Logger
}

// NewWorker creates an Asynq server and registers handlers. Call Run() to start.
func NewWorker(redisOpt asynq.RedisClientOpt, mailer mail.Mailer, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, mailer: mailer, log: log}
	mux.HandleFunc(TypeSendVerificationEmail, w.handleVerificationEmail)
	mux.HandleFunc(TypeSendInvitationEmail, w.handleInvitationEmail)
	return w
}

func (w *Worker) handleVerificationEmail(ctx context.Context, t *asynq.Task) error {
	var p verificationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("verification email task payload invalid")
		return err
	}
	if err := w.mailer.SendVerification(p.Email, p.LinkURL, p.ExpiresAt); err != nil {
		w.log.Error().Err(err).Str("email", p.Email).Msg("send verification email failed")
		return err
	}
	return nil
}

func (w *Worker) handleInvitationEmail(ctx context.Context, t *asynq.Task) error {
	var p invitationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("invitation email task payload invalid")
		return err
	}
	if err := w.mailer.SendInvitation(p.Email, p.OrgName, p.Role, p.LinkURL, p.ExpiresAt); err != nil {
		w.log.Error().Err(err).Str("email", p.Email).Msg("send invitation email failed")
		return err
	}
	return nil
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}

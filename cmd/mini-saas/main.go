package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/auth"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/invitation"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/organization"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/ports"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/task"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/application/user"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/config"
	infraauth "github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/auth"
	httprouter "github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/http"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/http/handlers"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/http/middleware"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/mail"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/persistence/postgres"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/queue"
	"github.com/Kevlon-pixel/mini-saas-backend/internal/infrastructure/security"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		log.Fatal().Msg("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	var mailer mail.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	} else {
		mailer = mail.NewLogMailer(log)
	}

	var enqueuer ports.MailEnqueuer
	var worker *queue.Worker
	if redisClient != nil {
		redisOpt, _ := redis.ParseURL(cfg.Redis.URL)
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		asynqEnq := queue.NewAsynqEnqueuer(asynqOpt, log)
		defer asynqEnq.Close()
		enqueuer = asynqEnq
		worker = queue.NewWorker(asynqOpt, mailer, log)
		go func() {
			if err := worker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
	} else {
		enqueuer = queue.NewDirectEnqueuer(mailer)
	}

	userRepo := postgres.NewUserRepository(pool)
	tokenStore := postgres.NewTokenStore(pool)
	orgRepo := postgres.NewOrganizationRepository(pool)
	invitationRepo := postgres.NewInvitationRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)

	hasher := security.NewBcryptHasher(cfg.Bcrypt.Cost)
	signer := infraauth.NewTokenSigner(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.Issuer)

	tokensUC := auth.NewTokens(userRepo, tokenStore, signer, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	registerUC := auth.NewRegister(userRepo, hasher, enqueuer, cfg.Verify.BaseURL, cfg.Verify.Expiry)
	verifyUC := auth.NewVerifyEmail(userRepo, tokensUC)
	loginUC := auth.NewLogin(userRepo, hasher, tokensUC)
	refreshUC := auth.NewRefresh(signer, tokenStore, tokensUC)
	logoutUC := auth.NewLogout(userRepo, tokenStore)

	orgSvc := organization.NewService(orgRepo, userRepo)
	sendInviteUC := invitation.NewSend(invitationRepo, orgRepo, enqueuer, cfg.Invite.BaseURL, cfg.Invite.ExpiryDays)
	acceptInviteUC := invitation.NewAccept(invitationRepo, userRepo)
	taskSvc := task.NewService(taskRepo, orgRepo)
	userSvc := user.NewService(userRepo, hasher)

	secureCookies := !cfg.Secure.IsDevelopment
	authHandler := handlers.NewAuthHandler(registerUC, verifyUC, loginUC, refreshUC, logoutUC, secureCookies, log)
	healthHandler := handlers.NewHealthHandler(pool, redisClient)
	usersHandler := handlers.NewUsersHandler(userSvc, log)
	orgsHandler := handlers.NewOrganizationsHandler(orgSvc, log)
	invitationsHandler := handlers.NewInvitationsHandler(sendInviteUC, acceptInviteUC, log)
	tasksHandler := handlers.NewTasksHandler(taskSvc, orgRepo, log)

	requireJWT := middleware.NewAuthenticator(signer, userRepo).Handler
	orgGuard := middleware.NewOrgGuard(orgRepo)
	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	secureMiddleware := middleware.SecureHeaders(cfg.Secure.IsDevelopment)
	corsMiddleware := middleware.CORS(cfg.Secure.AllowedOrigins)

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:          authHandler,
		HealthHandler:        healthHandler,
		UsersHandler:         usersHandler,
		OrganizationsHandler: orgsHandler,
		InvitationsHandler:   invitationsHandler,
		TasksHandler:         tasksHandler,
		RequireJWT:           requireJWT,
		OrgGuard:             orgGuard,
		Log:                  log,
		Secure:               secureMiddleware,
		CORS:                 corsMiddleware,
		IPRateLimit:          ipLimit,
		Metrics:              true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if worker != nil {
		worker.Shutdown()
	}
	log.Info().Msg("server stopped")
}

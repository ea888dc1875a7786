package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"domain-bot/internal/bot"
	"domain-bot/internal/config"
	"domain-bot/internal/db"
	"domain-bot/internal/email"
	bothttp "domain-bot/internal/http"
	"domain-bot/internal/metrics"
	"domain-bot/internal/repository"
	"domain-bot/internal/scheduler"
	"domain-bot/internal/service"
	"domain-bot/internal/telegram"
	"domain-bot/internal/whois"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	if cfg.LogDevelopment {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	var (
		userRepo   repository.UserRepository
		domainRepo repository.DomainRepository
		codeRepo   repository.VerificationCodeRepository
		health     bothttp.HealthCheck
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
		userRepo = repository.NewPgUserRepository(pool)
		domainRepo = repository.NewPgDomainRepository(pool)
		codeRepo = repository.NewPgVerificationCodeRepository(pool)
		health = func(ctx context.Context) error { return db.Ping(ctx, pool) }
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory storage")
		userRepo = repository.NewMemoryUserRepository()
		domainRepo = repository.NewMemoryDomainRepository()
		codeRepo = repository.NewMemoryVerificationCodeRepository()
	}

	var sessions service.SessionStore
	memSessions := service.NewMemorySessionStore(cfg.SessionTTL)
	sessions = memSessions
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory sessions", zap.Error(err))
		} else {
			sessions = service.NewRedisSessionStore(redisClient, cfg.SessionTTL)
			memSessions = nil
		}
		cancel()
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("telegram connect", zap.Error(err))
	}
	logger.Info("telegram authorized", zap.String("username", api.Self.UserName))
	tgClient := telegram.NewClient(api, logger)

	userSvc := service.NewUserService(logger, userRepo)
	verificationSvc := service.NewVerificationService(logger, codeRepo, emailSender, service.VerificationOptions{
		LogCodes: cfg.EmailLogCodes,
		HashCost: cfg.CodeHashCost,
	})
	domainSvc := service.NewDomainService(logger, domainRepo, whois.NewClient(cfg.WhoisTimeout, logger), m)
	reminderSvc := service.NewReminderService(logger, domainRepo, userRepo, tgClient, m, service.ReminderOptions{
		Concurrency:   cfg.ReminderConcurrency,
		RatePerSecond: cfg.ReminderRatePerSecond,
	})

	b := bot.New(logger, bot.Dependencies{
		Messenger:    tgClient,
		Sessions:     sessions,
		Users:        userSvc,
		Verification: verificationSvc,
		Domains:      domainSvc,
		Metrics:      m,
	})
	dispatcher := bot.NewDispatcher(logger, b, cfg.DispatchWorkers, 0)

	sched := scheduler.New(logger)
	if err := sched.Add("reminder_sweep", cfg.ReminderSchedule, func(ctx context.Context) error {
		_, err := reminderSvc.Sweep(ctx)
		return err
	}); err != nil {
		logger.Fatal("schedule reminders", zap.Error(err))
	}
	if memSessions != nil {
		if err := sched.Add("session_prune", cfg.SessionPruneSchedule, func(context.Context) error {
			if n := memSessions.Prune(); n > 0 {
				logger.Debug("sessions pruned", zap.Int("count", n))
			}
			return nil
		}); err != nil {
			logger.Fatal("schedule session prune", zap.Error(err))
		}
	}

	deps := bothttp.RouterDeps{Gatherer: registry, Health: health}
	if cfg.TelegramMode == "webhook" {
		if err := telegram.RegisterWebhook(api, cfg.TelegramWebhookURL, cfg.TelegramWebhookSecret); err != nil {
			logger.Fatal("register webhook", zap.Error(err))
		}
		deps.Webhook = bothttp.NewWebhookHandler(logger, dispatcher, cfg.TelegramWebhookSecret)
	}
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           bothttp.NewRouter(logger, deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return dispatcher.Run(gctx) })
	g.Go(func() error { return sched.Run(gctx) })
	if cfg.TelegramMode == "polling" {
		if err := telegram.DeleteWebhook(api); err != nil {
			logger.Warn("delete webhook failed", zap.Error(err))
		}
		poller := telegram.NewPoller(api, dispatcher, cfg.TelegramPollTimeout, logger)
		g.Go(func() error { return poller.Run(gctx) })
	}
	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("mode", cfg.TelegramMode))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("shutdown with error", zap.Error(err))
		return
	}
	logger.Info("bot stopped")
}

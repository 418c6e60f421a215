package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"copilot-accounts/internal/config"
	"copilot-accounts/internal/db"
	"copilot-accounts/internal/email"
	apihttp "copilot-accounts/internal/http"
	"copilot-accounts/internal/oauth"
	"copilot-accounts/internal/repository"
	"copilot-accounts/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	accountRepo := repository.NewPgAccountRepository(pool)
	pendingRepo := repository.NewPgPendingRepository(pool)
	otpRepo := repository.NewPgOTPRepository(pool)

	emailSender := email.Sender(email.NewDisabledSender("email sender not configured"))
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var otpLimiter service.RateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisRateLimiter(redisClient, "acct:rl:", time.Duration(cfg.OTPWindowMinutes)*time.Minute, cfg.OTPMaxRequests)
		}
		cancel()
	}
	if otpLimiter == nil {
		otpLimiter = service.NewMemoryRateLimiter(time.Duration(cfg.OTPWindowMinutes)*time.Minute, cfg.OTPMaxRequests)
	}

	verifier := oauth.NewGoogleVerifier(cfg.GoogleUserinfoURL)
	sessionSvc := service.NewSessionService(cfg.JWTSecret)
	accountSvc := service.NewAccountService(logger, accountRepo, pendingRepo, otpRepo, emailSender, verifier, otpLimiter, cfg.SiteURL)

	guard := apihttp.NewSessionGuard(logger, sessionSvc, accountSvc)
	accountHandler := apihttp.NewAccountHandler(logger, accountSvc, sessionSvc, guard)
	router := apihttp.NewRouter(logger, accountHandler, guard)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

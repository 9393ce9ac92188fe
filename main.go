package main

import (
	"fmt"
	"log"
	"time"

	"github.com/Thecaracter/be-berita/internal/config"
	"github.com/Thecaracter/be-berita/internal/database"
	"github.com/Thecaracter/be-berita/internal/logger"
	"github.com/Thecaracter/be-berita/internal/mail"
	"github.com/Thecaracter/be-berita/internal/news"
	"github.com/Thecaracter/be-berita/internal/otp"
	"github.com/Thecaracter/be-berita/internal/router"
	"github.com/Thecaracter/be-berita/internal/token"

	"go.uber.org/zap"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.Init(cfg.Log.Level, cfg.Log.Dev)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		zl.Fatal("init database", zap.Error(err))
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		zl.Fatal("migrate database", zap.Error(err))
	}

	mailer, err := mail.NewClient(cfg.Mail, zl)
	if err != nil {
		zl.Fatal("init mailer", zap.Error(err))
	}

	deps := router.Deps{
		DB:     db,
		Tokens: token.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.ExpireMinutes)*time.Minute),
		OTP:    otp.NewLedger(db, nil),
		Mailer: mailer,
		News:   news.NewClient(cfg.News, nil, zl),
		Log:    zl,
	}

	r := router.SetupRouter(cfg, deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	zl.Info("server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zl.Fatal("run server", zap.Error(err))
	}
}

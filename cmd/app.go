package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oscardel13/calorie-tracker/config"
	"github.com/oscardel13/calorie-tracker/repository"
	"github.com/oscardel13/calorie-tracker/services"
	"github.com/oscardel13/calorie-tracker/utils"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	db       *gorm.DB
	store    *repository.GormStore
	hub      *services.RealtimeHub
	uploader services.Uploader
	secret   []byte
}

func newApp(ctx context.Context) (*app, error) {
	db, err := config.OpenDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &app{
		db:    db,
		store: repository.NewGormStore(db),
		hub:   services.NewRealtimeHub(),
	}

	if cfg.Backup.Enabled() {
		up, err := utils.NewS3Uploader(ctx, cfg.Backup.Region, cfg.Backup.Bucket, cfg.Backup.Prefix)
		if err != nil {
			_ = config.Close(db)
			return nil, fmt.Errorf("configure S3 backups: %w", err)
		}
		a.uploader = up
		logger.Info("S3 backups enabled", zap.String("bucket", cfg.Backup.Bucket), zap.String("prefix", cfg.Backup.Prefix))
	}

	a.secret = []byte(cfg.Auth.JWTSecret)
	if len(a.secret) == 0 {
		token, err := utils.GenerateRandomToken(32)
		if err != nil {
			_ = config.Close(db)
			return nil, err
		}
		a.secret = []byte(token)
		logger.Warn("JWT_SECRET not set; sessions will not survive a restart")
	}
	return a, nil
}

func (a *app) Close() {
	if err := config.Close(a.db); err != nil {
		logger.Warn("Closing database failed", zap.Error(err))
	}
}

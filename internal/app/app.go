// Package app инициализирует все компоненты движка.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы
// и собирает всё в один объект App.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"edquest.ru/study-engine/internal/config"
	"edquest.ru/study-engine/internal/db/postgres"
	"edquest.ru/study-engine/internal/features/equipment"
	"edquest.ru/study-engine/internal/features/progression"
	"edquest.ru/study-engine/internal/features/rewards"
	"edquest.ru/study-engine/internal/features/session"
	"edquest.ru/study-engine/internal/features/srs"
	"edquest.ru/study-engine/internal/features/study"
	"edquest.ru/study-engine/internal/jobs"
)

// App содержит все компоненты движка.
type App struct {
	DB          *pgxpool.Pool
	Equipment   *equipment.Service
	Progression *progression.Service
	SRS         *srs.Service
	Study       *study.Service
	Sessions    *session.Builder
	Scheduler   *jobs.Scheduler

	limiter *study.RateLimiter
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
//
// sendFunc — колбэк доставки напоминаний; транспорт живёт у вызывающего.
func New(ctx context.Context, cfg *config.Config, sendFunc func(userID, text string)) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := postgres.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Репозитории ===
	equipmentRepo := equipment.NewRepository(pool)
	profileRepo := progression.NewRepository(pool)
	reviewRepo := srs.NewRepository(pool)

	// === 3. Сервисы ===
	equipmentService := equipment.NewService(equipmentRepo)
	progressionService := progression.NewService(profileRepo)
	srsService := srs.NewService(reviewRepo, cfg.SRSMaxIntervalHours)
	calculator := rewards.NewCalculator(cfg.RewardStreakThreshold, cfg.RewardStreakCap, cfg.AppTimezone)
	limiter := study.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	studyService := study.NewService(
		equipmentService, calculator, progressionService, srsService,
		limiter, rewards.DefaultSource, cfg.AppTimezone,
	)
	sessionBuilder := session.NewBuilder(srsService, cfg.SessionMinutesPerQuestion)

	// === 4. Фоновые задачи ===
	scheduler := jobs.NewScheduler(profileRepo, srsService, cfg, sendFunc)

	log.Info("Компоненты движка собраны")

	return &App{
		DB:          pool,
		Equipment:   equipmentService,
		Progression: progressionService,
		SRS:         srsService,
		Study:       studyService,
		Sessions:    sessionBuilder,
		Scheduler:   scheduler,
		limiter:     limiter,
	}, nil
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	a.limiter.Close()
	a.DB.Close()
}

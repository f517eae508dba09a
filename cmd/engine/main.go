// Package main — точка входа движка.
// Загружает конфигурацию, инициализирует приложение и запускает
// фоновые задачи. Поддерживает graceful shutdown по SIGINT/SIGTERM.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"edquest.ru/study-engine/internal/app"
	"edquest.ru/study-engine/internal/config"
)

func main() {
	// Настраиваем логирование
	setupLogging()

	log.Info("=== Движок запускается ===")

	// .env удобен для локалки; в Docker переменные приходят из окружения
	if err := godotenv.Load(); err != nil {
		log.Debug("Файл .env не найден, используем переменные окружения")
	}

	// Загружаем конфигурацию из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Не удалось загрузить конфигурацию")
	}

	// Устанавливаем уровень логирования из конфига
	level, err := log.ParseLevel(cfg.AppLogLevel)
	if err == nil {
		log.SetLevel(level)
	}

	// Контекст с отменой для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Доставку напоминаний подключает обвязка; по умолчанию — в лог
	sendFunc := func(userID, text string) {
		log.WithFields(log.Fields{
			"user_id": userID,
			"text":    text,
		}).Info("Напоминание")
	}

	// Инициализируем приложение (БД, сервисы, фоновые задачи)
	application, err := app.New(ctx, cfg, sendFunc)
	if err != nil {
		log.WithError(err).Fatal("Не удалось инициализировать приложение")
	}
	defer application.Close()

	// Запускаем планировщик задач (cron)
	application.Scheduler.Start(ctx)
	defer application.Scheduler.Stop()

	// Обрабатываем сигналы остановки (Ctrl+C, docker stop)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Info("=== Движок готов к работе ===")

	// Ждём сигнала остановки
	sig := <-quit
	log.Infof("Получен сигнал %s, останавливаемся...", sig)

	// Отменяем контекст — все горутины начнут завершаться
	cancel()

	log.Info("=== Движок остановлен ===")
}

// setupLogging настраивает формат логов.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}

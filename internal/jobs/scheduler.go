// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежечасный скан напоминаний
// о накопившихся повторениях и ночной сброс дневных флагов.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"edquest.ru/study-engine/internal/common"
	"edquest.ru/study-engine/internal/config"
	"edquest.ru/study-engine/internal/features/progression"
	"edquest.ru/study-engine/internal/features/srs"
)

// reminderDueLimit — сколько готовых вопросов считаем для текста напоминания.
const reminderDueLimit = 50

// Scheduler управляет фоновыми задачами.
// Отправка напоминаний идёт через инжектированный sendFunc:
// транспорт живёт вне движка.
type Scheduler struct {
	cron      *cron.Cron
	profiles  *progression.Repository
	scheduler *srs.Service
	cfg       *config.Config
	sendFunc  func(userID string, text string)
}

// NewScheduler создаёт планировщик задач в часовом поясе приложения.
func NewScheduler(profiles *progression.Repository, scheduler *srs.Service, cfg *config.Config, sendFunc func(userID string, text string)) *Scheduler {
	loc := common.AppLocation(cfg.AppTimezone)
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:      c,
		profiles:  profiles,
		scheduler: scheduler,
		cfg:       cfg,
		sendFunc:  sendFunc,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Ночной сброс дневных флагов в 00:00 локального времени
	s.cron.AddFunc("0 0 * * *", func() {
		log.Info("[CRON] Ночной сброс дневных флагов")
		if err := s.profiles.ResetDailyFlags(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка сброса флагов")
		}
	})

	// Напоминания каждый час
	s.cron.AddFunc("0 * * * *", func() {
		log.Debug("[CRON] Проверка напоминаний")
		if err := s.SendReminders(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка напоминаний")
		}
	})

	s.cron.Start()
	log.WithField("timezone", s.cfg.AppTimezone).Info("Планировщик задач запущен")
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

// SendReminders отправляет напоминания пользователям с накопившимися
// повторениями. Вне окна напоминаний (по умолчанию 8:00-22:00) молчим.
func (s *Scheduler) SendReminders(ctx context.Context) error {
	now := time.Now().In(common.AppLocation(s.cfg.AppTimezone))
	if now.Hour() < s.cfg.ReminderStartHour || now.Hour() >= s.cfg.ReminderEndHour {
		return nil
	}

	candidates, err := s.profiles.ListReminderCandidates(ctx)
	if err != nil {
		return err
	}

	sent := 0
	for _, profile := range candidates {
		due, err := s.scheduler.Due(ctx, profile.UserID, now, reminderDueLimit)
		if err != nil {
			log.WithError(err).WithField("user_id", profile.UserID).Error("Ошибка выборки повторений")
			continue
		}
		if len(due) == 0 {
			continue
		}

		text := reminderText(len(due), profile.CurrentStreak)
		s.sendFunc(profile.UserID, text)
		sent++

		// Помечаем, что напоминание отправлено — не чаще раза в день
		if err := s.profiles.MarkReminderSent(ctx, profile.UserID); err != nil {
			log.WithError(err).WithField("user_id", profile.UserID).Error("Ошибка отметки напоминания")
		}
	}

	if sent > 0 {
		log.WithField("sent", sent).Info("Напоминания отправлены")
	}
	return nil
}

// reminderText строит текст напоминания.
func reminderText(dueCount, streak int) string {
	text := formatDue(dueCount)
	if streak > 0 {
		text += " Не потеряй стрик " + formatStreak(streak) + "!"
	}
	return text
}

func formatDue(n int) string {
	return "Тебя ждут " + itoa(n) + " " + common.PluralizeQuestions(n) + " на повторение."
}

func formatStreak(n int) string {
	return itoa(n) + " " + common.PluralizeDays(n)
}

// itoa — локальный хелпер, чтобы не тянуть fmt ради двух чисел.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := "0123456789"
	result := ""
	for n > 0 {
		result = string(digits[n%10]) + result
		n /= 10
	}
	return result
}

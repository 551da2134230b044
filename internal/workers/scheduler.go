package workers

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"portalbot/internal/logger"
)

// Scheduler - фоновые задачи бота: отложенное удаление сообщений и периодический сброс счетчиков.
// Scheduler runs the bot's background jobs on top of gocron.
type Scheduler struct {
	sched gocron.Scheduler
}

// NewScheduler создает и запускает планировщик.
func NewScheduler() (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("создание планировщика: %w", err)
	}
	sched.Start()
	return &Scheduler{sched: sched}, nil
}

// ScheduleOnce выполняет fn один раз через delay.
func (s *Scheduler) ScheduleOnce(name string, delay time.Duration, fn func()) error {
	_, err := s.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(delay))),
		gocron.NewTask(func() {
			defer recoverJob(name)
			fn()
		}),
		gocron.WithName(name),
	)
	if err != nil {
		return fmt.Errorf("задача %s: %w", name, err)
	}
	return nil
}

// ScheduleCron выполняет fn по cron-выражению из пяти полей.
func (s *Scheduler) ScheduleCron(name, expr string, fn func()) error {
	_, err := s.sched.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(func() {
			defer recoverJob(name)
			logger.Get().Infof("[Scheduler] Запуск задачи %s", name)
			fn()
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("cron-задача %s (%q): %w", name, expr, err)
	}
	logger.Get().Infof("[Scheduler] Задача %s запланирована: %s", name, expr)
	return nil
}

// JobCount - количество зарегистрированных задач.
func (s *Scheduler) JobCount() int {
	return len(s.sched.Jobs())
}

// Shutdown останавливает планировщик и ждет завершения запущенных задач.
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

func recoverJob(name string) {
	if r := recover(); r != nil {
		logger.Get().Errorf("[Scheduler] Паника в задаче %s: %v", name, r)
	}
}

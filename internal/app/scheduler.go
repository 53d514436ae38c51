package app

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/usecase/sync_availability"
)

// Названия фоновых задач (метка в метриках)
const (
	JobMaterializeAll       = "materialize-all"
	JobPurgeExpiredHolds    = "purge-expired-holds"
	JobCompletePastBookings = "complete-past-bookings"
)

// Materializer материализует слоты всех тьюторов с шаблоном
type Materializer interface {
	ExecuteAll(ctx context.Context) (*sync_availability.AllResponse, error)
}

// HoldPurger удаляет истекшие hold
type HoldPurger interface {
	PurgeExpiredHolds(ctx context.Context) (int64, error)
}

// BookingCompleter завершает прошедшие уроки
type BookingCompleter interface {
	CompletePast(ctx context.Context) (int64, error)
}

// JobObserver пишет метрики запусков задач
type JobObserver interface {
	ObserveJob(job string, err error, duration time.Duration)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// SchedulerIntervals периоды запуска задач
type SchedulerIntervals struct {
	Materialize      time.Duration
	PurgeHolds       time.Duration
	CompleteBookings time.Duration
}

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	jobs     []job
	observer JobObserver
	logger   Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler создаёт новый планировщик
func NewScheduler(
	materializer Materializer,
	purger HoldPurger,
	completer BookingCompleter,
	intervals SchedulerIntervals,
	logger Logger,
) *Scheduler {
	s := &Scheduler{
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	s.jobs = []job{
		{
			name:     JobMaterializeAll,
			interval: intervals.Materialize,
			run: func(ctx context.Context) error {
				result, err := materializer.ExecuteAll(ctx)
				if err != nil {
					return err
				}
				s.logger.Info("Scheduler: %s - tutors=%d, failed=%d, created=%d, removed=%d",
					JobMaterializeAll, result.Tutors, result.Failed, result.CreatedCount, result.RemovedCount)
				return nil
			},
		},
		{
			name:     JobPurgeExpiredHolds,
			interval: intervals.PurgeHolds,
			run: func(ctx context.Context) error {
				_, err := purger.PurgeExpiredHolds(ctx)
				return err
			},
		},
		{
			name:     JobCompletePastBookings,
			interval: intervals.CompleteBookings,
			run: func(ctx context.Context) error {
				completed, err := completer.CompletePast(ctx)
				if err == nil && completed > 0 {
					s.logger.Info("Scheduler: %s - completed %d bookings", JobCompletePastBookings, completed)
				}
				return err
			},
		},
	}

	return s
}

// SetObserver подключает метрики задач
func (s *Scheduler) SetObserver(observer JobObserver) {
	s.observer = observer
}

// Start запускает фоновые задачи, каждая выполняется сразу и затем по тикеру
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	for _, j := range s.jobs {
		if j.interval <= 0 {
			s.logger.Warn("Scheduler: %s disabled, interval is not positive", j.name)
			continue
		}

		s.wg.Add(1)
		go s.loop(ctx, j)
	}
}

// Stop останавливает фоновые задачи и ждёт завершения текущих запусков
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	s.runOnce(ctx, j)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx, j)
		case <-s.stopChan:
			s.logger.Info("Scheduler: %s stopped", j.name)
			return
		case <-ctx.Done():
			s.logger.Info("Scheduler: %s cancelled", j.name)
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, j job) {
	start := time.Now()
	err := j.run(ctx)

	if s.observer != nil {
		s.observer.ObserveJob(j.name, err, time.Since(start))
	}
	if err != nil {
		s.logger.Error("Scheduler: %s failed: %v", j.name, err)
	}
}

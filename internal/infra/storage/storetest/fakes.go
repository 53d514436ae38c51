package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/integrations/notifier"
)

// TxManager выполняет функцию без транзакции, атомарность обеспечивает Store
type TxManager struct {
	Err error
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx)
}

// Clock управляемое время
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock создает часы, остановленные на now
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance сдвигает время вперед
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Logger ничего не пишет
type Logger struct{}

func (Logger) Info(string, ...interface{})  {}
func (Logger) Warn(string, ...interface{})  {}
func (Logger) Error(string, ...interface{}) {}

// Notifier запоминает опубликованные события
type Notifier struct {
	mu     sync.Mutex
	events []notifier.SlotEvent
}

func (n *Notifier) Notify(_ context.Context, event notifier.SlotEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// Events возвращает копию событий
func (n *Notifier) Events() []notifier.SlotEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifier.SlotEvent(nil), n.events...)
}

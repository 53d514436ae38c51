package notifier

import "context"

// Publisher отправляет сообщение в канал (pkg/redis.Client)
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

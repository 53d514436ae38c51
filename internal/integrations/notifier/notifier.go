package notifier

import (
	"context"
	"encoding/json"
	"fmt"
)

// ChannelPrefix префикс канала событий тьютора
const ChannelPrefix = "lesson_slots:"

// Notifier публикует события слотов в Redis
// Ошибки публикации логируются и не возвращаются: мутация уже зафиксирована
type Notifier struct {
	publisher Publisher
	log       Logger
}

// NewNotifier создает новый экземпляр нотификатора
func NewNotifier(publisher Publisher, log Logger) *Notifier {
	return &Notifier{publisher: publisher, log: log}
}

// Channel возвращает канал событий тьютора
func Channel(event SlotEvent) string {
	return fmt.Sprintf("%s%s", ChannelPrefix, event.TutorID)
}

// Notify публикует событие
func (n *Notifier) Notify(ctx context.Context, event SlotEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.log.Warn("Notifier: failed to encode %s event for slot=%d: %v", event.Type, event.SlotID, err)
		return
	}

	if err := n.publisher.Publish(ctx, Channel(event), payload); err != nil {
		n.log.Warn("Notifier: failed to publish %s event for slot=%d: %v", event.Type, event.SlotID, err)
	}
}

// Nop нотификатор для работы без Redis
type Nop struct{}

// Notify ничего не делает
func (Nop) Notify(context.Context, SlotEvent) {}

package notification

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEDUP SINK
// ══════════════════════════════════════════════════════════════════════════════

// DefaultDedupWindow - окно, в пределах которого повторное уведомление
// того же типа и с тем же заголовком считается дубликатом.
const DefaultDedupWindow = time.Hour

// DedupStore - хранилище, поверх которого работает дедупликация.
type DedupStore interface {
	Sink

	// ExistsRecent проверяет, было ли за окно window уже создано уведомление
	// с тем же типом и заголовком.
	ExistsRecent(ctx context.Context, recipientID RecipientID, t NotificationType, title string, window time.Duration) (bool, error)
}

// DedupSink оборачивает Sink и молча пропускает уведомление, если такое же
// (получатель, тип, заголовок) уже создавалось в пределах окна. Ошибка
// проверки не блокирует запись: уведомление в этом случае добавляется.
type DedupSink struct {
	store  DedupStore
	window time.Duration
}

// NewDedupSink создаёт дедуплицирующую обёртку над хранилищем уведомлений.
// При window <= 0 используется DefaultDedupWindow.
func NewDedupSink(store DedupStore, window time.Duration) *DedupSink {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &DedupSink{store: store, window: window}
}

// Append добавляет уведомление, если такое же не создавалось недавно.
func (s *DedupSink) Append(ctx context.Context, n *Notification) error {
	exists, err := s.store.ExistsRecent(ctx, n.RecipientID, n.Type, n.Title, s.window)
	if err == nil && exists {
		return nil
	}
	return s.store.Append(ctx, n)
}

package notify

import (
	"context"
	"sync"

	"github.com/fjod/rocketshoes-cart/internal/logger"
)

// Notifier receives the user-facing message of a failed cart operation.
type Notifier interface {
	Error(ctx context.Context, message string)
}

type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Error(ctx context.Context, message string) {
	n.log.Warn(n.log.WithField(ctx, "notification", message), "cart operation rejected", nil)
}

// Buffer keeps the most recent messages in memory, newest last.
type Buffer struct {
	mu       sync.Mutex
	limit    int
	messages []string
}

func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = 50
	}
	return &Buffer{limit: limit}
}

func (b *Buffer) Error(_ context.Context, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message)
	if over := len(b.messages) - b.limit; over > 0 {
		b.messages = append([]string(nil), b.messages[over:]...)
	}
}

func (b *Buffer) Messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.messages))
	copy(out, b.messages)
	return out
}

// Multi fans a message out to every notifier in order.
type Multi []Notifier

func (m Multi) Error(ctx context.Context, message string) {
	for _, n := range m {
		n.Error(ctx, message)
	}
}

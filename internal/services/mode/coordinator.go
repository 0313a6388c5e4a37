package mode

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Mode режим поиска, который сейчас управляет выдачей.
type Mode string

const (
	Manual Mode = "MANUAL"
	Text   Mode = "TEXT"
	AI     Mode = "AI"
)

func (m Mode) String() string {
	return string(m)
}

// Parse разбирает режим без учёта регистра.
func Parse(s string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(s))); m {
	case Manual, Text, AI:
		return m, nil
	default:
		return "", fmt.Errorf("unknown search mode %q", s)
	}
}

// Invalidator сбрасывает видимую выдачу и делает устаревшими запросы в полёте.
type Invalidator interface {
	Invalidate()
}

// Coordinator переключает режимы. Состояние режимов (фильтры, текст, промпт)
// хранит сессия и при переключении не трогает.
type Coordinator struct {
	log     *slog.Logger
	mu      sync.Mutex
	current Mode
	results Invalidator
}

func NewCoordinator(log *slog.Logger, results Invalidator) *Coordinator {
	return &Coordinator{
		log:     log,
		current: Manual,
		results: results,
	}
}

// Current текущий режим.
func (c *Coordinator) Current() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Switch переключает режим. Возвращает false, если режим уже активен.
func (c *Coordinator) Switch(target Mode) bool {
	const op = "mode.Coordinator.Switch"

	c.mu.Lock()
	defer c.mu.Unlock()

	if target == c.current {
		return false
	}

	prev := c.current
	c.current = target
	c.results.Invalidate()

	c.log.Debug("search mode switched",
		slog.String("op", op),
		slog.String("from", prev.String()),
		slog.String("to", target.String()),
	)
	return true
}

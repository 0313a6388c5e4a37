package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"property_search/internal/domain"
	"property_search/internal/lib/logger/sl"
	"property_search/internal/services/chips"
	"property_search/internal/services/mode"
	"property_search/internal/services/search"

	"github.com/samber/lo"
)

// CatalogView то, что сессии нужно от каталога.
type CatalogView interface {
	GetLoadedProperties() []domain.Property
	Limits() domain.RangeLimits
	NeighborhoodCity(name string) (string, bool)
}

// FilterSearcher поиск по фасетам и по тексту с записью в общую выдачу.
type FilterSearcher interface {
	Apply(ctx context.Context, state domain.FilterState, limits domain.RangeLimits) ([]domain.Property, error)
	ApplyText(ctx context.Context, text string) ([]domain.Property, error)
}

// AISearcher AI-поиск по промпту.
type AISearcher interface {
	Search(ctx context.Context, prompt string) ([]domain.Property, error)
}

// View то, что видит слой отрисовки.
type View struct {
	ID      string             `json:"id"`
	Mode    mode.Mode          `json:"mode"`
	Filter  domain.FilterState `json:"filter"`
	Limits  domain.RangeLimits `json:"limits"`
	Chips   []chips.Chip       `json:"chips"`
	Results []domain.Property  `json:"results"`
	Busy    bool               `json:"busy"`
	Error   string             `json:"error,omitempty"`
	Text    string             `json:"text"`
	Prompt  string             `json:"prompt"`
}

// Session поисковая сессия одного пользователя: состояние фильтров, режим,
// текст и промпт. Сетевые вызовы выполняются без удержания блокировки,
// порядок ответов разруливает ResultSet.
type Session struct {
	id       string
	log      *slog.Logger
	baseCtx  context.Context
	catalog  CatalogView
	searcher FilterSearcher
	ai       AISearcher
	results  *search.ResultSet
	modes    *mode.Coordinator
	debounce *search.Debouncer

	mu     sync.Mutex
	state  domain.FilterState
	limits domain.RangeLimits
	text   string
	prompt string
}

// ID идентификатор сессии.
func (s *Session) ID() string {
	return s.id
}

// View снимок для отрисовки, включая чипы.
func (s *Session) View() View {
	s.mu.Lock()
	s.syncLimitsLocked()
	state, limits, text, prompt := s.state, s.limits, s.text, s.prompt
	s.mu.Unlock()

	snap := s.results.Snapshot()
	return View{
		ID:      s.id,
		Mode:    s.modes.Current(),
		Filter:  state,
		Limits:  limits,
		Chips:   chips.Derive(state, limits, s),
		Results: snap.Results,
		Busy:    snap.Busy,
		Error:   snap.Error,
		Text:    text,
		Prompt:  prompt,
	}
}

// ToggleParam переключает фасет без отправки запроса.
func (s *Session) ToggleParam(key domain.ParamKey, value string) error {
	const op = "session.Session.ToggleParam"

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLimitsLocked()

	if key == domain.ParamNeighborhoods && !lo.Contains(s.state.Neighborhoods, strings.TrimSpace(value)) {
		if city, ok := s.catalog.NeighborhoodCity(value); ok && !s.state.NeighborhoodSelectable(city) {
			return s.rejectLocked(op, &domain.ValidationError{
				Field:   string(key),
				Message: domain.MsgNeighborhoodOff,
				Err:     domain.ErrNeighborhoodDisabled,
			})
		}
	}

	next, err := s.state.Toggle(key, value, s.limits)
	if err != nil {
		return s.rejectLocked(op, err)
	}
	s.state = next
	return nil
}

// ToggleAmenity переключает характеристику и сразу применяет фильтры.
func (s *Session) ToggleAmenity(ctx context.Context, id int64) error {
	s.mu.Lock()
	s.syncLimitsLocked()
	s.state = s.state.ToggleAmenity(id)
	s.mu.Unlock()

	_, err := s.Apply(ctx)
	return err
}

// SetParams частично обновляет состояние без отправки запроса (перетаскивание слайдера).
func (s *Session) SetParams(patch domain.FilterPatch) error {
	const op = "session.Session.SetParams"

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLimitsLocked()

	next, err := s.state.WithPatch(patch, s.limits)
	if err != nil {
		return s.rejectLocked(op, err)
	}
	s.state = next
	return nil
}

// Commit применяет текущее состояние (отпускание слайдера).
func (s *Session) Commit(ctx context.Context) error {
	_, err := s.Apply(ctx)
	return err
}

// CommitToggle переключает фасет и применяет фильтры.
func (s *Session) CommitToggle(ctx context.Context, key domain.ParamKey, value string) error {
	if err := s.ToggleParam(key, value); err != nil {
		return err
	}
	return s.Commit(ctx)
}

// CommitPatch обновляет состояние и применяет фильтры.
func (s *Session) CommitPatch(ctx context.Context, patch domain.FilterPatch) error {
	if err := s.SetParams(patch); err != nil {
		return err
	}
	return s.Commit(ctx)
}

// Apply запускает поиск по фасетам. Из текстового и AI-режима сессия
// возвращается в ручной режим.
func (s *Session) Apply(ctx context.Context) ([]domain.Property, error) {
	if s.modes.Switch(mode.Manual) {
		s.debounce.Stop()
	}

	s.mu.Lock()
	s.syncLimitsLocked()
	state, limits := s.state, s.limits
	s.mu.Unlock()

	return s.searcher.Apply(ctx, state, limits)
}

// Reset сбрасывает все фильтры и перезапрашивает выдачу.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.syncLimitsLocked()
	s.state = domain.DefaultFilterState(s.limits)
	s.mu.Unlock()

	_, err := s.Apply(ctx)
	return err
}

// SetText запоминает текст и запускает отложенный текстовый поиск.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()

	s.modes.Switch(mode.Text)
	s.debounce.Trigger(text)
}

// SubmitText выполняет текстовый поиск сразу, без задержки.
func (s *Session) SubmitText(ctx context.Context, text string) ([]domain.Property, error) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()

	s.modes.Switch(mode.Text)
	s.debounce.Stop()
	return s.searcher.ApplyText(ctx, text)
}

// SearchAI запоминает промпт и выполняет AI-поиск.
func (s *Session) SearchAI(ctx context.Context, prompt string) ([]domain.Property, error) {
	s.mu.Lock()
	s.prompt = prompt
	s.mu.Unlock()

	if s.modes.Switch(mode.AI) {
		s.debounce.Stop()
	}
	return s.ai.Search(ctx, prompt)
}

// SwitchMode переключает режим. Состояние режимов сохраняется, новый поиск не запускается.
func (s *Session) SwitchMode(target mode.Mode) {
	if s.modes.Switch(target) && target != mode.Text {
		s.debounce.Stop()
	}
}

// ClearChip снимает фильтр по ключу чипа.
func (s *Session) ClearChip(ctx context.Context, key string) error {
	s.mu.Lock()
	s.syncLimitsLocked()
	state, limits := s.state, s.limits
	s.mu.Unlock()

	chip, ok := chips.Find(chips.Derive(state, limits, s), key)
	if !ok {
		return &domain.ValidationError{Field: "chip", Message: domain.MsgInvalidValue, Err: domain.ErrUnknownParam}
	}
	return chip.Clear(ctx)
}

// OnLimitsChanged переносит несуженные диапазоны на новые границы.
func (s *Session) OnLimitsChanged(next domain.RangeLimits) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLimitsLocked(next)
}

// Report получатель ошибок поиска. Сообщение для пользователя уже лежит в выдаче.
func (s *Session) Report(_ context.Context, err error) {
	s.log.Warn("search error reported", slog.String("session", s.id), sl.Err(err))
}

func (s *Session) runDebouncedText(text string) {
	// Таймер мог сработать после ухода из текстового режима.
	if s.modes.Current() != mode.Text {
		s.log.Debug("debounced text search skipped", slog.String("mode", s.modes.Current().String()))
		return
	}
	// Ошибка уже отражена в выдаче и передана в Report.
	_, _ = s.searcher.ApplyText(s.baseCtx, text)
}

func (s *Session) syncLimitsLocked() {
	if next := s.catalog.Limits(); !s.limits.Equal(next) {
		s.applyLimitsLocked(next)
	}
}

func (s *Session) applyLimitsLocked(next domain.RangeLimits) {
	s.state = s.state.Reclamp(s.limits, next)
	s.limits = next
}

func (s *Session) rejectLocked(op string, err error) error {
	if ve, ok := domain.IsValidation(err); ok {
		s.results.SetError(ve.Message)
	}
	s.log.Debug("filter change rejected", slog.String("op", op), sl.Err(err))
	return err
}

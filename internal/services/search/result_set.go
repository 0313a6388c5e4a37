package search

import (
	"sync"

	"property_search/internal/domain"

	"github.com/samber/lo"
)

// Snapshot видимое состояние выдачи. Results == nil означает "результатов ещё нет".
type Snapshot struct {
	Results []domain.Property `json:"results"`
	Busy    bool              `json:"busy"`
	Error   string            `json:"error,omitempty"`
	Ticket  uint64            `json:"ticket"`
}

// ResultSet видимая выдача с правилом "побеждает последний запрос".
// Каждый запуск получает билет; доставка со старым билетом отбрасывается.
type ResultSet struct {
	mu      sync.RWMutex
	latest  uint64
	results []domain.Property
	busy    bool
	errMsg  string
}

func NewResultSet() *ResultSet {
	return &ResultSet{}
}

// Begin выдаёт новый билет и помечает выдачу занятой.
func (r *ResultSet) Begin() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.latest++
	r.busy = true
	return r.latest
}

// Deliver применяет результаты, только если ticket последний. Дубликаты по ID удаляются.
func (r *ResultSet) Deliver(ticket uint64, results []domain.Property, errMsg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ticket != r.latest {
		return false
	}

	if results == nil {
		results = []domain.Property{}
	}
	r.results = lo.UniqBy(results, func(p domain.Property) int64 { return p.ID })
	r.errMsg = errMsg
	r.busy = false
	return true
}

// Invalidate сбрасывает выдачу в "результатов ещё нет" и делает устаревшими все запросы в полёте.
func (r *ResultSet) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.latest++
	r.results = nil
	r.busy = false
	r.errMsg = ""
}

// SetError показывает сообщение без изменения результатов (ошибка валидации).
func (r *ResultSet) SetError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errMsg = msg
}

// Snapshot возвращает копию видимого состояния.
func (r *ResultSet) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []domain.Property
	if r.results != nil {
		results = make([]domain.Property, len(r.results))
		copy(results, r.results)
	}
	return Snapshot{
		Results: results,
		Busy:    r.busy,
		Error:   r.errMsg,
		Ticket:  r.latest,
	}
}

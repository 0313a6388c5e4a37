package search

import (
	"property_search/internal/domain"

	"github.com/samber/lo"
)

// FilterVisible оставляет обычным пользователям только объекты со статусом "disponible".
func FilterVisible(items []domain.Property, privileged bool) []domain.Property {
	if privileged {
		return items
	}
	return lo.Filter(items, func(p domain.Property, _ int) bool {
		return p.IsAvailable()
	})
}

// FilterRooms применяет фильтр комнат после ответа: 1 и 2 точное совпадение,
// 3 означает "3 и больше". Пустой набор не фильтрует.
func FilterRooms(items []domain.Property, rooms []int) []domain.Property {
	if len(rooms) == 0 {
		return items
	}

	exact := make(map[float64]struct{}, len(rooms))
	threshold := false
	for _, n := range rooms {
		if n >= domain.RoomsThreshold {
			threshold = true
			continue
		}
		exact[float64(n)] = struct{}{}
	}

	return lo.Filter(items, func(p domain.Property, _ int) bool {
		if threshold && p.Rooms >= domain.RoomsThreshold {
			return true
		}
		_, ok := exact[p.Rooms]
		return ok
	})
}

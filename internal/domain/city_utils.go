package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText приводит строку к виду для сравнения: без диакритики, в нижнем регистре, без
// крайних пробелов. "  Bahía Blanca " и "bahia blanca" дают одинаковый результат.
func NormalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return strings.ToLower(out)
}

// CitiesMatch проверяет, совпадают ли два города (с учётом нормализации).
func CitiesMatch(city1, city2 string) bool {
	if strings.TrimSpace(city1) == "" || strings.TrimSpace(city2) == "" {
		return false
	}
	return NormalizeText(city1) == NormalizeText(city2)
}

// UniqueCities возвращает уникальные непустые города баррио в порядке первого появления.
func UniqueCities(neighborhoods []Neighborhood) []string {
	seen := make(map[string]struct{}, len(neighborhoods))
	cities := make([]string, 0, len(neighborhoods))
	for _, n := range neighborhoods {
		city := strings.TrimSpace(n.City)
		if city == "" {
			continue
		}
		key := NormalizeText(city)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cities = append(cities, city)
	}
	return cities
}

package domain

import "strings"

// Operation тип сделки по объекту.
type Operation string

const (
	OperationSale Operation = "VENTA"
	OperationRent Operation = "ALQUILER"
)

func (o Operation) String() string {
	return string(o)
}

// IsValid проверяет значение операции. Пустая операция означает "не выбрано".
func (o Operation) IsValid() bool {
	switch o {
	case "", OperationSale, OperationRent:
		return true
	}
	return false
}

// ParseOperation приводит пользовательский ввод к Operation.
func ParseOperation(s string) Operation {
	return Operation(strings.ToUpper(strings.TrimSpace(s)))
}

// Currency валюта цены объекта.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyARS Currency = "ARS"
)

// Currencies все поддерживаемые валюты в порядке отображения.
var Currencies = []Currency{CurrencyUSD, CurrencyARS}

func (c Currency) String() string {
	return string(c)
}

func (c Currency) IsValid() bool {
	switch c {
	case "", CurrencyUSD, CurrencyARS:
		return true
	}
	return false
}

// ParseCurrency приводит пользовательский ввод к Currency.
func ParseCurrency(s string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(s)))
}

// StatusAvailable нормализованный статус объекта, видимый обычным пользователям.
const StatusAvailable = "disponible"

// Neighborhood баррио с городом и типом (abierto, cerrado, semicerrado).
type Neighborhood struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
	Type string `json:"type"`
}

// PropertyType тип объекта (Casa, Departamento...).
type PropertyType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Amenity характеристика объекта (Pileta, Ascensor...).
type Amenity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Property полная запись объекта недвижимости, как её отдаёт бэкенд каталога.
type Property struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Street       string       `json:"street,omitempty"`
	Number       string       `json:"number,omitempty"`
	Status       string       `json:"status"`
	Operation    Operation    `json:"operation"`
	Currency     Currency     `json:"currency"`
	Rooms        float64      `json:"rooms"`
	Bedrooms     float64      `json:"bedrooms"`
	Bathrooms    float64      `json:"bathrooms"`
	Area         float64      `json:"area"`
	CoveredArea  float64      `json:"coveredArea"`
	Price        float64      `json:"price"`
	Expenses     *float64     `json:"expenses,omitempty"`
	ShowPrice    bool         `json:"showPrice"`
	Credit       bool         `json:"credit"`
	Financing    bool         `json:"financing"`
	Outstanding  bool         `json:"outstanding"`
	Neighborhood Neighborhood `json:"neighborhood"`
	Type         PropertyType `json:"type"`
	Amenities    []Amenity    `json:"amenities,omitempty"`
	MainImage    string       `json:"mainImage,omitempty"`
	Date         string       `json:"date,omitempty"`
}

// IsAvailable проверяет статус с учётом регистра и диакритики.
func (p Property) IsAvailable() bool {
	return NormalizeText(p.Status) == StatusAvailable
}

// AIResultRef облегчённая запись, которую возвращает AI-поиск.
// Гидрируется в Property по ID.
type AIResultRef struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	Status       string  `json:"status"`
	Operation    string  `json:"operation"`
	Currency     string  `json:"currency"`
	Neighborhood string  `json:"neighborhood"`
	Type         string  `json:"type"`
	MainImage    string  `json:"mainImage"`
	Description  string  `json:"description"`
	Date         string  `json:"date"`
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPropertyNotFound     = errors.New("property not found")
	ErrUnknownParam         = errors.New("unknown filter param")
	ErrNeighborhoodDisabled = errors.New("neighborhood is outside selected cities")
	ErrSessionNotFound      = errors.New("search session not found")
	ErrCacheMiss            = errors.New("cache miss")
)

// Сообщения для пользователя. Интерфейс каталога на испанском.
const (
	MsgNegativeValue   = "El valor no puede ser negativo"
	MsgPriceOrder      = "El precio DESDE no puede ser mayor al precio HASTA"
	MsgAreaOrder       = "La superficie DESDE no puede ser mayor a la superficie HASTA"
	MsgCoveredOrder    = "La superficie cubierta DESDE no puede ser mayor a la superficie cubierta HASTA"
	MsgEmptyPrompt     = "Describe lo que estás buscando para usar la búsqueda con IA."
	MsgAISearchFailed  = "No pudimos completar la búsqueda con IA. Intentá nuevamente."
	MsgSearchFailed    = "No pudimos completar la búsqueda. Intentá nuevamente."
	MsgInvalidValue    = "Valor de filtro inválido"
	MsgNeighborhoodOff = "El barrio no pertenece a las ciudades seleccionadas"
)

// ValidationError ошибка пользовательского ввода. До сети не доходит.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт ValidationError для поля.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NetworkError сбой вызова внешнего коллаборатора (бэкенд, AI-поиск, кеш).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// PartialResolutionError не удалось гидрировать одну запись AI-выдачи.
// Логируется по месту и наружу не возвращается.
type PartialResolutionError struct {
	ID  int64
	Err error
}

func (e *PartialResolutionError) Error() string {
	return fmt.Sprintf("resolve property %d: %v", e.ID, e.Err)
}

func (e *PartialResolutionError) Unwrap() error {
	return e.Err
}

// IsValidation проверяет, что в цепочке есть ValidationError, и возвращает её.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

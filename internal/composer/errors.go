package composer

import (
	"errors"
	"fmt"
)

// Sentinel-ошибки композера. Все они исправимы пользователем:
// сообщение привязывается к полю или строке, состояние документа не меняется.
var (
	ErrDuplicateSelection   = errors.New("позиция уже выбрана в другой строке")
	ErrOutOfStock           = errors.New("товара нет на складе")
	ErrInsufficientStock    = errors.New("недостаточно товара на складе")
	ErrInvalidQuantity      = errors.New("некорректное количество")
	ErrMissingCounterparty  = errors.New("не указан контрагент")
	ErrMissingRequiredField = errors.New("не заполнены обязательные поля")
	ErrEmptyDocument        = errors.New("документ должен содержать хотя бы одну позицию")
	ErrUnknownCounterparty  = errors.New("контрагент не найден")
	ErrCatalogNotLoaded     = errors.New("каталог еще не загружен")
	ErrNetworkFetch         = errors.New("ошибка загрузки данных")
	ErrSessionClosed        = errors.New("сессия редактирования закрыта")
)

// SelectionError — ошибка выбора позиции каталога или изменения количества.
// Несет название позиции и доступный остаток, чтобы UI мог показать
// осмысленное сообщение у конкретной строки.
type SelectionError struct {
	Err       error
	EntryID   string
	EntryName string
	Available float64
}

func (e *SelectionError) Error() string {
	switch {
	case errors.Is(e.Err, ErrInsufficientStock):
		return fmt.Sprintf("%s: %s (доступно %.0f)", e.Err.Error(), e.EntryName, e.Available)
	case e.EntryName != "":
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.EntryName)
	default:
		return e.Err.Error()
	}
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

// ValidationError — ошибка валидации при сборке payload.
// Field указывает на поле формы, к которому относится сообщение.
type ValidationError struct {
	Err     error
	Field   string
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

package composer

import "fmt"

// LineItem представляет строку документа (счета или закупки).
// Строка без выбранной позиции каталога (Entry == nil) — это placeholder:
// каркас для UI, который не участвует ни в итогах, ни в отправке.
type LineItem struct {
	Entry     *CatalogEntry `json:"entry,omitempty"`
	Quantity  int           `json:"quantity"`
	UnitPrice float64       `json:"unit_price"`
	LineTotal float64       `json:"line_total"`
}

// IsPlaceholder проверяет, является ли строка незаполненным каркасом
func (li *LineItem) IsPlaceholder() bool {
	return li.Entry == nil
}

// IsValid проверяет, готова ли строка к отправке
func (li *LineItem) IsValid() bool {
	return li.Entry != nil && li.Quantity > 0 && li.UnitPrice >= 0
}

// recompute пересчитывает сумму строки. Вся арифметика идет через
// NormalizeNumber, промежуточное округление не применяется.
func (li *LineItem) recompute() {
	li.LineTotal = NormalizeNumber(li.Quantity) * NormalizeNumber(li.UnitPrice)
}

// LineItemStore — упорядоченная коллекция строк документа.
// Порядок строк — это порядок отображения/редактирования; каждая мутация
// заново пересчитывает производные поля и синхронизирует индекс занятости.
// На уровне ядра пустое хранилище допустимо: гарантию "минимум одна строка"
// обеспечивает вызывающий слой (контроллер), а не хранилище.
type LineItemStore struct {
	items []LineItem
	index *AvailabilityIndex
}

// NewLineItemStore создает пустое хранилище строк.
// Индекс может быть nil, пока каталог не загружен: в этом состоянии
// выбор позиции невозможен, но placeholder-строки редактировать можно.
func NewLineItemStore(index *AvailabilityIndex) *LineItemStore {
	return &LineItemStore{index: index}
}

// bindIndex привязывает индекс занятости после загрузки каталога
func (s *LineItemStore) bindIndex(index *AvailabilityIndex) {
	s.index = index
}

// Len возвращает количество строк
func (s *LineItemStore) Len() int {
	return len(s.items)
}

// Items возвращает копию строк для чтения
func (s *LineItemStore) Items() []LineItem {
	result := make([]LineItem, len(s.items))
	copy(result, s.items)
	return result
}

// Item возвращает строку по индексу
func (s *LineItemStore) Item(index int) (LineItem, error) {
	if index < 0 || index >= len(s.items) {
		return LineItem{}, fmt.Errorf("строка %d не существует", index)
	}
	return s.items[index], nil
}

// AddPlaceholder добавляет пустую строку-каркас в конец
func (s *LineItemStore) AddPlaceholder() {
	s.items = append(s.items, LineItem{Quantity: 1, UnitPrice: 0, LineTotal: 0})
}

// Remove удаляет строку по индексу и освобождает занятую ею позицию каталога
func (s *LineItemStore) Remove(index int) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("строка %d не существует", index)
	}
	if entry := s.items[index].Entry; entry != nil && s.index != nil {
		s.index.Release(entry.ID)
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	if s.index != nil {
		s.index.shiftAfterRemove(index)
	}
	return nil
}

// SetCatalogRef выбирает позицию каталога для строки.
// При успехе: прежняя позиция строки освобождается, цена подставляется из
// каталога, сумма пересчитывается, новая позиция занимается.
// При ошибке валидации состояние строки не меняется.
func (s *LineItemStore) SetCatalogRef(index int, entryID string) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("строка %d не существует", index)
	}
	if s.index == nil {
		return ErrCatalogNotLoaded
	}
	if err := s.index.IsSelectable(entryID, index); err != nil {
		return err
	}
	entry, _ := s.index.Entry(entryID)

	item := &s.items[index]
	if prior := item.Entry; prior != nil {
		s.index.Release(prior.ID)
	}
	item.Entry = entry
	item.UnitPrice = entry.UnitPrice
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.recompute()
	s.index.Claim(entry.ID, index)
	return nil
}

// SetQuantity изменяет количество в строке.
// Для товара количество сверяется с остатком из снимка каталога: при
// превышении возвращается ErrInsufficientStock с доступным остатком, а
// прежнее значение сохраняется. Нечисловой или неположительный ввод тоже
// отклоняется без изменения состояния.
func (s *LineItemStore) SetQuantity(index int, value interface{}) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("строка %d не существует", index)
	}
	item := &s.items[index]

	qty := int(NormalizeNumber(value))
	if qty < 1 {
		return ErrInvalidQuantity
	}

	if entry := item.Entry; entry != nil && entry.IsProduct() {
		if float64(qty) > entry.CurrentStock {
			return &SelectionError{
				Err:       ErrInsufficientStock,
				EntryID:   entry.ID,
				EntryName: entry.Name,
				Available: entry.CurrentStock,
			}
		}
	}

	item.Quantity = qty
	item.recompute()
	return nil
}

// SetUnitPrice изменяет цену за единицу в строке.
// Ручная корректировка разрешена даже при наличии каталожной цены,
// но отрицательные значения отклоняются.
func (s *LineItemStore) SetUnitPrice(index int, value interface{}) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("строка %d не существует", index)
	}
	price := NormalizeNumber(value)
	if price < 0 {
		return fmt.Errorf("цена не может быть отрицательной")
	}
	item := &s.items[index]
	item.UnitPrice = price
	item.recompute()
	return nil
}

// Hydrate наполняет хранилище строками существующего документа.
// Используется при редактировании: строки пересчитываются и занимают
// свои позиции в индексе так же, как при ручном вводе.
func (s *LineItemStore) Hydrate(lines []HydrateLine) error {
	for _, line := range lines {
		s.AddPlaceholder()
		index := len(s.items) - 1
		if line.CatalogID != "" {
			if err := s.SetCatalogRef(index, line.CatalogID); err != nil {
				return err
			}
		}
		if line.Quantity != nil {
			if err := s.SetQuantity(index, *line.Quantity); err != nil {
				return err
			}
		}
		if line.UnitPrice != nil {
			if err := s.SetUnitPrice(index, *line.UnitPrice); err != nil {
				return err
			}
		}
	}
	return nil
}

// HydrateLine — строка существующего документа для наполнения хранилища
type HydrateLine struct {
	CatalogID string
	Quantity  *int
	UnitPrice *float64
}

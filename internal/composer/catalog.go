package composer

// CatalogEntryKind представляет вид позиции каталога
type CatalogEntryKind string

const (
	CatalogEntryKindProduct CatalogEntryKind = "product" // Товар (с учетом остатков)
	CatalogEntryKindService CatalogEntryKind = "service" // Услуга (остатки не учитываются)
)

// DegradedStockSentinel — фиктивный "большой" остаток для деградированного
// режима: если расширенный каталог с остатками недоступен, все товары
// считаются доступными, и контроль остатков остается за бэкендом.
const DegradedStockSentinel = 999999

// CatalogEntry представляет неизменяемый снимок позиции каталога,
// полученный один раз при открытии документа на редактирование.
type CatalogEntry struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Kind         CatalogEntryKind `json:"kind"`
	UnitPrice    float64          `json:"unit_price"`
	CurrentStock float64          `json:"current_stock"` // только для Kind == product
}

// IsProduct проверяет, является ли позиция товаром
func (e *CatalogEntry) IsProduct() bool {
	return e.Kind == CatalogEntryKindProduct
}

// IsAvailable проверяет доступность позиции для выбора.
// Услуги доступны всегда, товары — только при положительном остатке.
func (e *CatalogEntry) IsAvailable() bool {
	if e.Kind == CatalogEntryKindService {
		return true
	}
	return e.CurrentStock > 0
}

// AvailabilityIndex отслеживает, какие позиции каталога уже заняты строками
// документа. Заменяет повторное сканирование всех строк на каждое нажатие:
// claim/release работают за O(1) по множеству занятых позиций.
type AvailabilityIndex struct {
	entries map[string]*CatalogEntry
	claims  map[string]int // ID позиции -> индекс строки, которая ее занимает
	strict  bool           // уникальность для всех видов, а не только для товаров
}

// BuildIndex строит индекс доступности по снимку каталога.
// strict=true включает строгий вариант: уникальность выбора действует и для
// услуг (закупки), иначе — только для товаров (счета-фактуры).
func BuildIndex(catalog []CatalogEntry, strict bool) *AvailabilityIndex {
	ix := &AvailabilityIndex{
		entries: make(map[string]*CatalogEntry, len(catalog)),
		claims:  make(map[string]int),
		strict:  strict,
	}
	for i := range catalog {
		entry := catalog[i]
		ix.entries[entry.ID] = &entry
	}
	return ix
}

// Entry возвращает позицию каталога по ID
func (ix *AvailabilityIndex) Entry(id string) (*CatalogEntry, bool) {
	entry, ok := ix.entries[id]
	return entry, ok
}

// Entries возвращает снимок каталога в произвольном порядке
func (ix *AvailabilityIndex) Entries() []*CatalogEntry {
	result := make([]*CatalogEntry, 0, len(ix.entries))
	for _, entry := range ix.entries {
		result = append(result, entry)
	}
	return result
}

// tracked проверяет, подпадает ли позиция под контроль уникальности
func (ix *AvailabilityIndex) tracked(entry *CatalogEntry) bool {
	return ix.strict || entry.IsProduct()
}

// IsSelectable проверяет, можно ли выбрать позицию в строке excluding.
// Позиция доступна, если она не занята ДРУГОЙ строкой и (услуга ИЛИ есть
// остаток). Возвращает nil при успехе, иначе *SelectionError — это
// пользовательская ошибка валидации, а не аварийное завершение.
func (ix *AvailabilityIndex) IsSelectable(entryID string, excluding int) error {
	entry, ok := ix.entries[entryID]
	if !ok {
		return &SelectionError{Err: ErrOutOfStock, EntryID: entryID}
	}
	if ix.tracked(entry) {
		if line, claimed := ix.claims[entryID]; claimed && line != excluding {
			return &SelectionError{Err: ErrDuplicateSelection, EntryID: entryID, EntryName: entry.Name}
		}
	}
	if !entry.IsAvailable() {
		return &SelectionError{Err: ErrOutOfStock, EntryID: entryID, EntryName: entry.Name}
	}
	return nil
}

// Claim отмечает позицию занятой строкой line
func (ix *AvailabilityIndex) Claim(entryID string, line int) {
	entry, ok := ix.entries[entryID]
	if !ok || !ix.tracked(entry) {
		return
	}
	ix.claims[entryID] = line
}

// Release освобождает позицию
func (ix *AvailabilityIndex) Release(entryID string) {
	delete(ix.claims, entryID)
}

// shiftAfterRemove сдвигает индексы строк после удаления строки removed,
// чтобы claims продолжали указывать на актуальные позиции в хранилище
func (ix *AvailabilityIndex) shiftAfterRemove(removed int) {
	for id, line := range ix.claims {
		if line > removed {
			ix.claims[id] = line - 1
		}
	}
}

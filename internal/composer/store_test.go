package composer

import (
	"errors"
	"testing"
)

func testCatalog() []CatalogEntry {
	return []CatalogEntry{
		{ID: "p1", Name: "Ноутбук", Kind: CatalogEntryKindProduct, UnitPrice: 850, CurrentStock: 5},
		{ID: "p2", Name: "Мышь", Kind: CatalogEntryKindProduct, UnitPrice: 15.5, CurrentStock: 3},
		{ID: "p3", Name: "Монитор", Kind: CatalogEntryKindProduct, UnitPrice: 200, CurrentStock: 0},
		{ID: "s1", Name: "Консультация", Kind: CatalogEntryKindService, UnitPrice: 50, CurrentStock: 0},
	}
}

func newTestStore(t *testing.T, strict bool) *LineItemStore {
	t.Helper()
	store := NewLineItemStore(BuildIndex(testCatalog(), strict))
	return store
}

func TestSetCatalogRefFillsPriceAndQuantity(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()

	if err := store.SetCatalogRef(0, "p1"); err != nil {
		t.Fatalf("неожиданная ошибка выбора: %v", err)
	}
	item, _ := store.Item(0)
	if item.UnitPrice != 850 {
		t.Errorf("цена должна подставиться из каталога, получено %v", item.UnitPrice)
	}
	if item.Quantity != 1 {
		t.Errorf("количество должно быть минимум 1, получено %d", item.Quantity)
	}
	if item.LineTotal != 850 {
		t.Errorf("сумма строки = %v, ожидалось 850", item.LineTotal)
	}
}

func TestSetCatalogRefWithoutCatalog(t *testing.T) {
	store := NewLineItemStore(nil)
	store.AddPlaceholder()

	err := store.SetCatalogRef(0, "p1")
	if !errors.Is(err, ErrCatalogNotLoaded) {
		t.Fatalf("ожидалась ErrCatalogNotLoaded, получено %v", err)
	}
}

func TestDuplicateProductRejected(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()
	store.AddPlaceholder()

	if err := store.SetCatalogRef(0, "p1"); err != nil {
		t.Fatalf("первый выбор должен пройти: %v", err)
	}
	err := store.SetCatalogRef(1, "p1")
	if !errors.Is(err, ErrDuplicateSelection) {
		t.Fatalf("ожидалась ErrDuplicateSelection, получено %v", err)
	}
	// Состояние второй строки не изменилось
	item, _ := store.Item(1)
	if !item.IsPlaceholder() {
		t.Error("строка после отклоненного выбора должна остаться placeholder")
	}
}

func TestReselectSameLineAllowed(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()

	if err := store.SetCatalogRef(0, "p1"); err != nil {
		t.Fatalf("первый выбор: %v", err)
	}
	// Повторный выбор той же позиции в той же строке — не дубликат
	if err := store.SetCatalogRef(0, "p1"); err != nil {
		t.Fatalf("повторный выбор в той же строке должен пройти: %v", err)
	}
	// Смена позиции освобождает прежнюю
	if err := store.SetCatalogRef(0, "p2"); err != nil {
		t.Fatalf("смена позиции: %v", err)
	}
	store.AddPlaceholder()
	if err := store.SetCatalogRef(1, "p1"); err != nil {
		t.Fatalf("освобожденная позиция должна быть доступна: %v", err)
	}
}

func TestOutOfStockRejected(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()

	err := store.SetCatalogRef(0, "p3")
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("ожидалась ErrOutOfStock, получено %v", err)
	}
}

func TestUnknownEntryRejected(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()

	err := store.SetCatalogRef(0, "нет-такого")
	if !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("неизвестная позиция должна отклоняться, получено %v", err)
	}
}

func TestServiceDuplicateAllowedForInvoices(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()
	store.AddPlaceholder()

	if err := store.SetCatalogRef(0, "s1"); err != nil {
		t.Fatalf("выбор услуги: %v", err)
	}
	// В счетах уникальность действует только для товаров
	if err := store.SetCatalogRef(1, "s1"); err != nil {
		t.Fatalf("повторная услуга в счете должна проходить: %v", err)
	}
}

func TestStrictUniquenessCoversServices(t *testing.T) {
	store := newTestStore(t, true)
	store.AddPlaceholder()
	store.AddPlaceholder()

	if err := store.SetCatalogRef(0, "s1"); err != nil {
		t.Fatalf("выбор услуги: %v", err)
	}
	err := store.SetCatalogRef(1, "s1")
	if !errors.Is(err, ErrDuplicateSelection) {
		t.Fatalf("в строгом режиме услуги тоже уникальны, получено %v", err)
	}
}

func TestSetQuantityChecksStock(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()
	if err := store.SetCatalogRef(0, "p2"); err != nil {
		t.Fatalf("выбор: %v", err)
	}
	if err := store.SetQuantity(0, 3); err != nil {
		t.Fatalf("количество в пределах остатка: %v", err)
	}

	err := store.SetQuantity(0, 4)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("ожидалась ErrInsufficientStock, получено %v", err)
	}
	var sel *SelectionError
	if !errors.As(err, &sel) || sel.Available != 3 {
		t.Errorf("ошибка должна нести доступный остаток 3, получено %+v", sel)
	}
	// Прежнее значение сохранено
	item, _ := store.Item(0)
	if item.Quantity != 3 {
		t.Errorf("количество после отклонения = %d, ожидалось 3", item.Quantity)
	}
}

func TestSetQuantityRejectsNonPositive(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()
	if err := store.SetCatalogRef(0, "p1"); err != nil {
		t.Fatalf("выбор: %v", err)
	}
	if err := store.SetQuantity(0, 2); err != nil {
		t.Fatalf("валидное количество: %v", err)
	}

	for _, bad := range []interface{}{0, -1, "abc", nil} {
		if err := store.SetQuantity(0, bad); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("SetQuantity(%v): ожидалась ErrInvalidQuantity, получено %v", bad, err)
		}
	}
	item, _ := store.Item(0)
	if item.Quantity != 2 {
		t.Errorf("количество после отклонений = %d, ожидалось 2", item.Quantity)
	}
}

func TestSetQuantityUnboundedForServices(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()
	if err := store.SetCatalogRef(0, "s1"); err != nil {
		t.Fatalf("выбор услуги: %v", err)
	}
	if err := store.SetQuantity(0, 1000); err != nil {
		t.Fatalf("количество услуги не ограничено остатком: %v", err)
	}
}

func TestSetUnitPriceOverride(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()
	if err := store.SetCatalogRef(0, "p1"); err != nil {
		t.Fatalf("выбор: %v", err)
	}
	if err := store.SetUnitPrice(0, "19.99"); err != nil {
		t.Fatalf("ручная цена: %v", err)
	}
	item, _ := store.Item(0)
	if item.UnitPrice != 19.99 || item.LineTotal != 19.99 {
		t.Errorf("строка после ручной цены: %+v", item)
	}
	if err := store.SetUnitPrice(0, -5); err == nil {
		t.Error("отрицательная цена должна отклоняться")
	}
}

// Удаление строки освобождает занятую позицию, и ее можно выбрать снова
func TestRemoveReleasesClaim(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()
	store.AddPlaceholder()

	if err := store.SetCatalogRef(0, "p1"); err != nil {
		t.Fatalf("выбор: %v", err)
	}
	if err := store.SetCatalogRef(1, "p1"); !errors.Is(err, ErrDuplicateSelection) {
		t.Fatalf("дубликат до удаления: %v", err)
	}
	if err := store.Remove(0); err != nil {
		t.Fatalf("удаление: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("после удаления осталось %d строк, ожидалась 1", store.Len())
	}
	if err := store.SetCatalogRef(0, "p1"); err != nil {
		t.Fatalf("позиция после удаления должна освободиться: %v", err)
	}
}

// После удаления строки claims указывают на сдвинутые индексы
func TestRemoveShiftsClaims(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()
	store.AddPlaceholder()
	store.AddPlaceholder()

	if err := store.SetCatalogRef(0, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetCatalogRef(2, "p2"); err != nil {
		t.Fatal(err)
	}
	if err := store.Remove(0); err != nil {
		t.Fatal(err)
	}
	// p2 теперь в строке 1; повторный выбор в той же строке должен пройти
	if err := store.SetCatalogRef(1, "p2"); err != nil {
		t.Fatalf("claim должен сдвинуться вместе со строкой: %v", err)
	}
	// а из другой строки — отклоняться
	if err := store.SetCatalogRef(0, "p2"); !errors.Is(err, ErrDuplicateSelection) {
		t.Fatalf("ожидалась ErrDuplicateSelection, получено %v", err)
	}
}

func TestHydrateExistingDocument(t *testing.T) {
	store := newTestStore(t, false)
	qty := 2
	price := 800.0
	err := store.Hydrate([]HydrateLine{
		{CatalogID: "p1", Quantity: &qty, UnitPrice: &price},
		{CatalogID: "s1"},
	})
	if err != nil {
		t.Fatalf("гидратация: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("строк после гидратации: %d", store.Len())
	}
	item, _ := store.Item(0)
	if item.Quantity != 2 || item.UnitPrice != 800 || item.LineTotal != 1600 {
		t.Errorf("первая строка: %+v", item)
	}
	// Занятость действует и для гидратированных строк
	store.AddPlaceholder()
	if err := store.SetCatalogRef(2, "p1"); !errors.Is(err, ErrDuplicateSelection) {
		t.Fatalf("гидратированная позиция должна быть занята, получено %v", err)
	}
}

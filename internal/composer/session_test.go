package composer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func okCatalogFetcher(entries []CatalogEntry) CatalogFetcher {
	return func(ctx context.Context) ([]CatalogEntry, error) {
		return entries, nil
	}
}

func okCounterpartyFetcher(list []CounterpartyEntry) CounterpartyFetcher {
	return func(ctx context.Context) ([]CounterpartyEntry, error) {
		return list, nil
	}
}

func waitReady(t *testing.T, s *Session) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Ready() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("сессия не загрузилась за отведенное время")
}

func TestSessionLoadAndSubmit(t *testing.T) {
	s := NewSession("s-1", InvoiceConfig())
	s.LoadAsync(context.Background(), okCatalogFetcher(testCatalog()), okCounterpartyFetcher(testCounterparties))
	waitReady(t, s)

	if err := s.SetHeader(validHeader()); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectEntry(0, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetQuantity(0, 2); err != nil {
		t.Fatal(err)
	}

	payload, errs := s.Submit(testNow)
	if errs != nil {
		t.Fatalf("ошибки отправки: %v", errs)
	}
	if len(payload.Items) != 1 || payload.Items[0].Quantity != 2 {
		t.Errorf("payload: %+v", payload)
	}
}

// До загрузки справочников выбор позиций и отправка недоступны
func TestSessionNotReady(t *testing.T) {
	s := NewSession("s-2", InvoiceConfig())

	if err := s.SelectEntry(0, "p1"); !errors.Is(err, ErrCatalogNotLoaded) {
		t.Fatalf("ожидалась ErrCatalogNotLoaded, получено %v", err)
	}
	_, errs := s.Submit(testNow)
	if len(errs) != 1 || !errors.Is(errs[0], ErrNetworkFetch) {
		t.Fatalf("отправка до загрузки: %v", errs)
	}
	// Placeholder-строки при этом редактируемы
	if err := s.AddLine(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetUnitPrice(0, 10); err != nil {
		t.Fatal(err)
	}
}

// Отказ загрузчика не валит сессию: она остается не готовой
func TestSessionFetchFailure(t *testing.T) {
	s := NewSession("s-3", InvoiceConfig())
	failing := func(ctx context.Context) ([]CatalogEntry, error) {
		return nil, errors.New("сеть недоступна")
	}
	s.LoadAsync(context.Background(), failing, okCounterpartyFetcher(testCounterparties))

	time.Sleep(50 * time.Millisecond)
	if s.Ready() {
		t.Error("сессия не должна стать готовой при отказе каталога")
	}
}

// Результат, пришедший после Close, игнорируется
func TestSessionStaleResultAfterClose(t *testing.T) {
	s := NewSession("s-4", InvoiceConfig())
	release := make(chan struct{})
	slow := func(ctx context.Context) ([]CatalogEntry, error) {
		<-release
		return testCatalog(), nil
	}
	s.LoadAsync(context.Background(), slow, okCounterpartyFetcher(testCounterparties))

	s.Close()
	close(release)
	time.Sleep(50 * time.Millisecond)

	if s.Ready() {
		t.Error("закрытая сессия не должна оживать от запоздавшего ответа")
	}
	if err := s.AddLine(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("ожидалась ErrSessionClosed, получено %v", err)
	}
}

// Деградированный каталог: остатки не контролируются, флаг выставлен
func TestSessionDegradedCatalog(t *testing.T) {
	degraded := []CatalogEntry{
		{ID: "p1", Name: "Ноутбук", Kind: CatalogEntryKindProduct, UnitPrice: 850, CurrentStock: DegradedStockSentinel},
	}
	s := NewSession("s-5", InvoiceConfig())
	s.LoadAsync(context.Background(), okCatalogFetcher(degraded), okCounterpartyFetcher(testCounterparties))
	waitReady(t, s)

	if !s.Degraded() {
		t.Error("сессия должна быть в деградированном режиме")
	}
	if err := s.SelectEntry(0, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetQuantity(0, 500); err != nil {
		t.Fatalf("в деградированном режиме большое количество проходит: %v", err)
	}
}

// Каталог закупки содержит только товары
func TestSessionPurchaseCatalogProductsOnly(t *testing.T) {
	s := NewSession("s-6", PurchaseConfig())
	s.LoadAsync(context.Background(), okCatalogFetcher(testCatalog()), okCounterpartyFetcher(testCounterparties))
	waitReady(t, s)

	for _, entry := range s.Catalog() {
		if entry.Kind != CatalogEntryKindProduct {
			t.Errorf("в каталоге закупки оказалась услуга: %+v", entry)
		}
	}
	if err := s.SelectEntry(0, "s1"); err == nil {
		t.Error("услуга не должна выбираться в закупке")
	}
}

// Последнюю строку удалить нельзя
func TestSessionRemoveLastLine(t *testing.T) {
	s := NewSession("s-7", InvoiceConfig())
	if err := s.RemoveLine(0); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("ожидалась ErrEmptyDocument, получено %v", err)
	}
	if err := s.AddLine(); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveLine(1); err != nil {
		t.Fatalf("удаление при двух строках: %v", err)
	}
}

// Обновление каталога сохраняет занятые позиции
func TestSessionReloadCatalogKeepsClaims(t *testing.T) {
	s := NewSession("s-8", InvoiceConfig())
	s.LoadAsync(context.Background(), okCatalogFetcher(testCatalog()), okCounterpartyFetcher(testCounterparties))
	waitReady(t, s)

	if err := s.SelectEntry(0, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := s.ReloadCatalog(context.Background(), okCatalogFetcher(testCatalog())); err != nil {
		t.Fatal(err)
	}
	if err := s.AddLine(); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectEntry(1, "p1"); !errors.Is(err, ErrDuplicateSelection) {
		t.Fatalf("после обновления каталога позиция должна остаться занятой: %v", err)
	}
}

func TestSessionHydrate(t *testing.T) {
	s := NewSession("s-9", InvoiceConfig())
	s.LoadAsync(context.Background(), okCatalogFetcher(testCatalog()), okCounterpartyFetcher(testCounterparties))
	waitReady(t, s)

	qty := 2
	price := 800.0
	err := s.Hydrate(validHeader(), []HydrateLine{
		{CatalogID: "p1", Quantity: &qty, UnitPrice: &price},
	})
	if err != nil {
		t.Fatal(err)
	}
	totals := s.Totals()
	if !almostEqual(totals.Subtotal, 1600) {
		t.Errorf("Subtotal после гидратации: %v", totals.Subtotal)
	}
	payload, errs := s.Submit(testNow)
	if errs != nil {
		t.Fatalf("отправка после гидратации: %v", errs)
	}
	if len(payload.Items) != 1 {
		t.Errorf("payload: %+v", payload)
	}
}

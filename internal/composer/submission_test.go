package composer

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testCounterparties = []CounterpartyEntry{
	{ID: "c1", Name: "ООО Ромашка"},
	{ID: "c2", Name: "ИП Иванов"},
}

var testNow = time.Date(2026, 8, 28, 12, 30, 45, 123_000_000, time.UTC)

func validHeader() DocumentHeader {
	return DocumentHeader{
		CounterpartyID: "c1",
		Date:           "2026-08-28",
		DueDate:        "2026-09-28",
		PaymentMethod:  "transfer",
		Status:         "draft",
	}
}

func storeWithLine(t *testing.T, entryID string, qty int, price float64) *LineItemStore {
	t.Helper()
	store := newTestStore(t, false)
	store.AddPlaceholder()
	if err := store.SetCatalogRef(0, entryID); err != nil {
		t.Fatal(err)
	}
	if err := store.SetQuantity(0, qty); err != nil {
		t.Fatal(err)
	}
	if err := store.SetUnitPrice(0, price); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestBuildSubmissionHappyPath(t *testing.T) {
	store := storeWithLine(t, "p1", 2, 100)

	payload, errs := BuildSubmission(InvoiceConfig(), validHeader(), store, testCounterparties, testNow)
	if errs != nil {
		t.Fatalf("неожиданные ошибки: %v", errs)
	}
	if payload.CounterpartyID != "c1" {
		t.Errorf("контрагент: %s", payload.CounterpartyID)
	}
	if payload.Subtotal != 200 || payload.Tax != 24 || payload.Total != 224 {
		t.Errorf("итоги: %+v", payload)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("строк в payload: %d", len(payload.Items))
	}
	item := payload.Items[0]
	if item.CatalogID != "p1" || item.Quantity != 2 || item.UnitPrice != 100 || item.LineTotal != 200 {
		t.Errorf("строка payload: %+v", item)
	}
	if payload.DueDate != "2026-09-28" || payload.PaymentMethod != "" {
		t.Errorf("счет должен нести срок оплаты, а не способ оплаты: %+v", payload)
	}
}

func TestBuildSubmissionPurchaseFields(t *testing.T) {
	store := storeWithLine(t, "p1", 1, 50)

	payload, errs := BuildSubmission(PurchaseConfig(), validHeader(), store, testCounterparties, testNow)
	if errs != nil {
		t.Fatalf("неожиданные ошибки: %v", errs)
	}
	if payload.Kind != DocumentKindPurchase {
		t.Errorf("вид документа: %s", payload.Kind)
	}
	if payload.PaymentMethod != "transfer" || payload.DueDate != "" {
		t.Errorf("закупка должна нести способ оплаты, а не срок: %+v", payload)
	}
	if !strings.HasPrefix(payload.Number, "PUR-") {
		t.Errorf("номер закупки: %s", payload.Number)
	}
}

// Валидация fail-fast: первая нарушенная проверка останавливает сборку
func TestBuildSubmissionFailFastOrder(t *testing.T) {
	empty := newTestStore(t, false)
	empty.AddPlaceholder()

	// Все сломано сразу — должна сработать только проверка контрагента
	_, errs := BuildSubmission(InvoiceConfig(), DocumentHeader{}, empty, nil, testNow)
	if len(errs) != 1 || !errors.Is(errs[0], ErrMissingCounterparty) {
		t.Fatalf("ожидалась одна ErrMissingCounterparty, получено %v", errs)
	}

	// Контрагент есть, дат нет
	header := DocumentHeader{CounterpartyID: "c1"}
	_, errs = BuildSubmission(InvoiceConfig(), header, empty, nil, testNow)
	if len(errs) != 1 || !errors.Is(errs[0], ErrMissingRequiredField) {
		t.Fatalf("ожидалась ErrMissingRequiredField, получено %v", errs)
	}
	if errs[0].Field != "date" {
		t.Errorf("поле ошибки: %s", errs[0].Field)
	}

	// Дата есть, срока оплаты нет
	header.Date = "2026-08-28"
	_, errs = BuildSubmission(InvoiceConfig(), header, empty, nil, testNow)
	if len(errs) != 1 || errs[0].Field != "due_date" {
		t.Fatalf("ожидалась ошибка по due_date, получено %v", errs)
	}

	// Шапка полная, строк нет
	header.DueDate = "2026-09-28"
	_, errs = BuildSubmission(InvoiceConfig(), header, empty, nil, testNow)
	if len(errs) != 1 || !errors.Is(errs[0], ErrEmptyDocument) {
		t.Fatalf("ожидалась ErrEmptyDocument, получено %v", errs)
	}

	// Строки есть, контрагент не резолвится
	store := storeWithLine(t, "p1", 1, 10)
	header.CounterpartyID = "призрак"
	_, errs = BuildSubmission(InvoiceConfig(), header, store, testCounterparties, testNow)
	if len(errs) != 1 || !errors.Is(errs[0], ErrUnknownCounterparty) {
		t.Fatalf("ожидалась ErrUnknownCounterparty, получено %v", errs)
	}
}

func TestBuildSubmissionPurchaseRequiresPaymentMethod(t *testing.T) {
	store := storeWithLine(t, "p1", 1, 10)
	header := validHeader()
	header.PaymentMethod = ""

	_, errs := BuildSubmission(PurchaseConfig(), header, store, testCounterparties, testNow)
	if len(errs) != 1 || errs[0].Field != "payment_method" {
		t.Fatalf("ожидалась ошибка по payment_method, получено %v", errs)
	}
}

// Placeholder-строки молча отбрасываются, если есть валидные
func TestBuildSubmissionDropsPlaceholders(t *testing.T) {
	store := storeWithLine(t, "p1", 1, 10)
	store.AddPlaceholder()
	store.AddPlaceholder()

	payload, errs := BuildSubmission(InvoiceConfig(), validHeader(), store, testCounterparties, testNow)
	if errs != nil {
		t.Fatalf("ошибки: %v", errs)
	}
	if len(payload.Items) != 1 {
		t.Errorf("placeholder-строки попали в payload: %d строк", len(payload.Items))
	}
}

// Документ из одних placeholder-строк отклоняется как пустой
func TestBuildSubmissionOnlyPlaceholders(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()
	store.AddPlaceholder()

	_, errs := BuildSubmission(InvoiceConfig(), validHeader(), store, testCounterparties, testNow)
	if len(errs) != 1 || !errors.Is(errs[0], ErrEmptyDocument) {
		t.Fatalf("ожидалась ErrEmptyDocument, получено %v", errs)
	}
}

func TestGenerateDocumentNumber(t *testing.T) {
	number := GenerateDocumentNumber("INV", testNow)
	if !strings.HasPrefix(number, "INV-202608-") {
		t.Errorf("формат номера: %s", number)
	}
	suffix := strings.TrimPrefix(number, "INV-202608-")
	if len(suffix) != 6 {
		t.Errorf("суффикс должен быть 6 цифр, получено %q", suffix)
	}
	want := testNow.UnixMilli() % 1000000
	got := int64(0)
	for _, r := range suffix {
		got = got*10 + int64(r-'0')
	}
	if got != want {
		t.Errorf("суффикс = %d, ожидалось %d", got, want)
	}
}

// Существующий номер при редактировании сохраняется
func TestBuildSubmissionKeepsExistingNumber(t *testing.T) {
	store := storeWithLine(t, "p1", 1, 10)
	header := validHeader()
	header.Number = "INV-202507-000042"

	payload, errs := BuildSubmission(InvoiceConfig(), header, store, testCounterparties, testNow)
	if errs != nil {
		t.Fatalf("ошибки: %v", errs)
	}
	if payload.Number != "INV-202507-000042" {
		t.Errorf("номер перегенерирован: %s", payload.Number)
	}
}

// Округление применяется только на границе payload
func TestBuildSubmissionRoundsMoney(t *testing.T) {
	store := storeWithLine(t, "p1", 3, 33.335) // 100.005

	payload, errs := BuildSubmission(InvoiceConfig(), validHeader(), store, testCounterparties, testNow)
	if errs != nil {
		t.Fatalf("ошибки: %v", errs)
	}
	if payload.Items[0].LineTotal != 100.01 {
		t.Errorf("сумма строки: %v", payload.Items[0].LineTotal)
	}
	if payload.Subtotal != 100.01 {
		t.Errorf("Subtotal: %v", payload.Subtotal)
	}
	// 100.005 * 0.12 = 12.0006 -> 12.0
	if payload.Tax != 12 {
		t.Errorf("Tax: %v", payload.Tax)
	}
	if payload.Total != 112.01 {
		t.Errorf("Total: %v", payload.Total)
	}
}

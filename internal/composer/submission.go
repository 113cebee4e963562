package composer

import (
	"fmt"
	"time"
)

// DocumentKind представляет вид документа, который собирает композер
type DocumentKind string

const (
	DocumentKindInvoice  DocumentKind = "invoice"  // Счет-фактура (контрагент — клиент)
	DocumentKindPurchase DocumentKind = "purchase" // Закупка (контрагент — поставщик)
)

// DocumentConfig параметризует единое ядро композера под вид документа.
// Счета и закупки различаются только конфигурацией: видом контрагента,
// фильтром каталога, вторым обязательным полем и строгостью уникальности.
type DocumentConfig struct {
	Kind             DocumentKind
	NumberPrefix     string // префикс генерируемого номера (INV, PUR)
	ProductsOnly     bool   // каталог только из товаров (закупки)
	StrictUniqueness bool   // уникальность выбора для всех видов позиций
}

// InvoiceConfig — конфигурация композера для счетов-фактур
func InvoiceConfig() DocumentConfig {
	return DocumentConfig{
		Kind:         DocumentKindInvoice,
		NumberPrefix: "INV",
	}
}

// PurchaseConfig — конфигурация композера для закупок.
// Каталог ограничен товарами, уникальность строгая.
func PurchaseConfig() DocumentConfig {
	return DocumentConfig{
		Kind:             DocumentKindPurchase,
		NumberPrefix:     "PUR",
		ProductsOnly:     true,
		StrictUniqueness: true,
	}
}

// DocumentHeader — шапка документа. Свободные поля вне зоны ответственности
// ядра, кроме проверки на заполненность при сборке payload.
type DocumentHeader struct {
	CounterpartyID string `json:"counterparty_id"`
	Date           string `json:"date"`
	DueDate        string `json:"due_date"`        // счета-фактуры
	PaymentMethod  string `json:"payment_method"`  // закупки
	Status         string `json:"status"`
	Number         string `json:"number"` // существующий номер при редактировании
}

// CounterpartyEntry — запись из ранее загруженного списка контрагентов
// (клиенты для счетов, поставщики для закупок)
type CounterpartyEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SubmissionItem — строка payload в формате, ожидаемом бэкендом
type SubmissionItem struct {
	CatalogID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"total"`
}

// SubmissionPayload — проверенный документ, готовый к отправке.
// Денежные поля округлены до 2 знаков; placeholder-строки и невалидные
// строки отброшены.
type SubmissionPayload struct {
	Kind           DocumentKind     `json:"kind"`
	CounterpartyID string           `json:"counterparty_id"`
	Number         string           `json:"number"`
	Date           string           `json:"date"`
	DueDate        string           `json:"due_date,omitempty"`
	PaymentMethod  string           `json:"payment_method,omitempty"`
	Status         string           `json:"status"`
	Subtotal       float64          `json:"subtotal"`
	Tax            float64          `json:"tax"`
	Total          float64          `json:"total"`
	Items          []SubmissionItem `json:"items"`
}

// GenerateDocumentNumber генерирует номер документа: префикс, год и месяц,
// последние 6 цифр unix-времени в миллисекундах. Практически уникален в
// рамках сессии одного пользователя, но глобальная уникальность НЕ
// гарантируется — окончательную уникальность обеспечивает бэкенд.
func GenerateDocumentNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d%02d-%06d", prefix, now.Year(), int(now.Month()), now.UnixMilli()%1000000)
}

// BuildSubmission валидирует шапку и строки и собирает payload.
// Проверки идут по порядку формы, первая ошибка останавливает сборку
// (fail-fast, как ведет себя валидация формы в UI):
//  1. выбран контрагент
//  2. заполнены дата и второе поле (срок оплаты / способ оплаты)
//  3. есть хотя бы одна валидная строка
//  4. контрагент находится в загруженном списке
func BuildSubmission(
	cfg DocumentConfig,
	header DocumentHeader,
	store *LineItemStore,
	counterparties []CounterpartyEntry,
	now time.Time,
) (*SubmissionPayload, []*ValidationError) {
	if header.CounterpartyID == "" {
		return nil, []*ValidationError{{Err: ErrMissingCounterparty, Field: "counterparty_id"}}
	}

	if header.Date == "" {
		return nil, []*ValidationError{{Err: ErrMissingRequiredField, Field: "date"}}
	}
	switch cfg.Kind {
	case DocumentKindPurchase:
		if header.PaymentMethod == "" {
			return nil, []*ValidationError{{Err: ErrMissingRequiredField, Field: "payment_method"}}
		}
	default:
		if header.DueDate == "" {
			return nil, []*ValidationError{{Err: ErrMissingRequiredField, Field: "due_date"}}
		}
	}

	// Placeholder-строки — каркас UI, а не ошибка валидации: они молча
	// отбрасываются, если есть хотя бы одна другая валидная строка.
	var validItems []LineItem
	for _, item := range store.Items() {
		if item.IsValid() {
			validItems = append(validItems, item)
		}
	}
	if len(validItems) == 0 {
		return nil, []*ValidationError{{Err: ErrEmptyDocument, Field: "items"}}
	}

	resolved := false
	for _, cp := range counterparties {
		if cp.ID == header.CounterpartyID {
			resolved = true
			break
		}
	}
	if !resolved {
		return nil, []*ValidationError{{
			Err:     ErrUnknownCounterparty,
			Field:   "counterparty_id",
			Details: header.CounterpartyID,
		}}
	}

	number := header.Number
	if number == "" {
		number = GenerateDocumentNumber(cfg.NumberPrefix, now)
	}

	totals := ComputeTotals(store)
	payload := &SubmissionPayload{
		Kind:           cfg.Kind,
		CounterpartyID: header.CounterpartyID,
		Number:         number,
		Date:           header.Date,
		Status:         header.Status,
		Subtotal:       RoundMoney(totals.Subtotal),
		Tax:            RoundMoney(totals.Tax),
		Total:          RoundMoney(totals.Total),
		Items:          make([]SubmissionItem, 0, len(validItems)),
	}
	switch cfg.Kind {
	case DocumentKindPurchase:
		payload.PaymentMethod = header.PaymentMethod
	default:
		payload.DueDate = header.DueDate
	}

	for _, item := range validItems {
		payload.Items = append(payload.Items, SubmissionItem{
			CatalogID: item.Entry.ID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: RoundMoney(item.LineTotal),
		})
	}

	return payload, nil
}

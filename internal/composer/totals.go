package composer

// TaxRate — фиксированная ставка НДС (IVA 12%).
// Константа предметной области, не настраивается.
const TaxRate = 0.12

// DocumentTotals — производные итоги документа.
// Никогда не хранятся отдельно: всегда пересчитываются из текущего
// состояния хранилища строк.
type DocumentTotals struct {
	Subtotal float64 `json:"subtotal"`
	TaxRate  float64 `json:"tax_rate"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// ComputeTotals вычисляет итоги документа из хранилища строк.
// Чистая функция: placeholder-строки дают 0, результат не кэшируется,
// порядок строк на результат не влияет.
func ComputeTotals(store *LineItemStore) DocumentTotals {
	subtotal := 0.0
	for _, item := range store.Items() {
		if item.IsPlaceholder() {
			continue
		}
		subtotal += NormalizeNumber(item.LineTotal)
	}
	tax := subtotal * TaxRate
	return DocumentTotals{
		Subtotal: subtotal,
		TaxRate:  TaxRate,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

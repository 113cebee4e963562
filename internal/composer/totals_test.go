package composer

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeTotalsSingleLine(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()
	if err := store.SetCatalogRef(0, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetUnitPrice(0, 10); err != nil {
		t.Fatal(err)
	}
	if err := store.SetQuantity(0, 3); err != nil {
		t.Fatal(err)
	}

	totals := ComputeTotals(store)
	if !almostEqual(totals.Subtotal, 30) {
		t.Errorf("Subtotal = %v, ожидалось 30", totals.Subtotal)
	}
	if !almostEqual(totals.Tax, 3.6) {
		t.Errorf("Tax = %v, ожидалось 3.6", totals.Tax)
	}
	if !almostEqual(totals.Total, 33.6) {
		t.Errorf("Total = %v, ожидалось 33.6", totals.Total)
	}
	if totals.TaxRate != 0.12 {
		t.Errorf("TaxRate = %v, ожидалось 0.12", totals.TaxRate)
	}
}

func TestComputeTotalsSkipsPlaceholders(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder() // остается placeholder
	store.AddPlaceholder()
	if err := store.SetCatalogRef(1, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetUnitPrice(1, 110); err != nil {
		t.Fatal(err)
	}

	totals := ComputeTotals(store)
	if !almostEqual(totals.Subtotal, 110) {
		t.Errorf("Subtotal = %v, ожидалось 110 (placeholder не участвует)", totals.Subtotal)
	}
	if !almostEqual(totals.Tax, 13.2) {
		t.Errorf("Tax = %v, ожидалось 13.2", totals.Tax)
	}
	if !almostEqual(totals.Total, 123.2) {
		t.Errorf("Total = %v, ожидалось 123.2", totals.Total)
	}
}

func TestComputeTotalsEmptyStore(t *testing.T) {
	store := newTestStore(t, false)
	totals := ComputeTotals(store)
	if totals.Subtotal != 0 || totals.Tax != 0 || totals.Total != 0 {
		t.Errorf("итоги пустого документа должны быть нулевыми: %+v", totals)
	}
}

// Пересчет идемпотентен: повторный вызов без мутаций дает тот же результат
func TestComputeTotalsIdempotent(t *testing.T) {
	store := newTestStore(t, false)
	store.AddPlaceholder()
	if err := store.SetCatalogRef(0, "p2"); err != nil {
		t.Fatal(err)
	}
	first := ComputeTotals(store)
	second := ComputeTotals(store)
	if first != second {
		t.Errorf("повторный пересчет дал другой результат: %+v != %+v", first, second)
	}
}

// Порядок строк не влияет на итоги
func TestComputeTotalsOrderIndependent(t *testing.T) {
	build := func(ids []string) DocumentTotals {
		store := newTestStore(t, false)
		for i, id := range ids {
			store.AddPlaceholder()
			if err := store.SetCatalogRef(i, id); err != nil {
				t.Fatal(err)
			}
		}
		return ComputeTotals(store)
	}
	a := build([]string{"p1", "p2", "s1"})
	b := build([]string{"s1", "p1", "p2"})
	if !almostEqual(a.Total, b.Total) {
		t.Errorf("итоги зависят от порядка строк: %v != %v", a.Total, b.Total)
	}
}

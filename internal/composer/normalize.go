package composer

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeNumber приводит разнородный ввод формы к безопасному числу.
// Поля формы во время редактирования могут содержать строки, nil или NaN,
// поэтому вся арифметика композера проходит через эту функцию.
// Возвращает 0 для nil, нечисловых строк, NaN и Inf. Никогда не паникует.
func NormalizeNumber(value interface{}) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case float32:
		return NormalizeNumber(float64(v))
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// RoundMoney округляет денежное значение до 2 знаков.
// Применяется ТОЛЬКО на границе сборки payload (см. BuildSubmission),
// промежуточные суммы не округляются, чтобы не накапливать ошибку округления.
func RoundMoney(value float64) float64 {
	return math.Round(value*100) / 100
}

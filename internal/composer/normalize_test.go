package composer

import (
	"math"
	"testing"
)

func TestNormalizeNumber(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  float64
	}{
		{"nil", nil, 0},
		{"float64", 12.5, 12.5},
		{"float32", float32(2.5), 2.5},
		{"int", 7, 7},
		{"int64", int64(42), 42},
		{"строка с числом", "19.99", 19.99},
		{"строка с пробелами", "  10 ", 10},
		{"пустая строка", "", 0},
		{"мусорная строка", "abc", 0},
		{"NaN", math.NaN(), 0},
		{"+Inf", math.Inf(1), 0},
		{"-Inf", math.Inf(-1), 0},
		{"неизвестный тип", struct{}{}, 0},
		{"отрицательное", -3.5, -3.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeNumber(tc.value)
			if got != tc.want {
				t.Errorf("NormalizeNumber(%v) = %v, ожидалось %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestRoundMoney(t *testing.T) {
	cases := []struct {
		value float64
		want  float64
	}{
		{13.199999999999999, 13.2},
		{123.199999999999999, 123.2},
		{0.005, 0.01},
		{10, 10},
		{0, 0},
	}
	for _, tc := range cases {
		got := RoundMoney(tc.value)
		if got != tc.want {
			t.Errorf("RoundMoney(%v) = %v, ожидалось %v", tc.value, got, tc.want)
		}
	}
}

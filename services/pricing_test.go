package services

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestComputeTotals_NoDiscount(t *testing.T) {
	lines := []PriceLine{{PrecioUnitario: 100000, Cantidad: 2}}

	got, err := ComputeTotals(lines, 0, 19)
	if err != nil {
		t.Fatalf("ComputeTotals() error = %v", err)
	}

	if !almostEqual(got.Subtotal, 200000) {
		t.Errorf("Subtotal = %f, want 200000", got.Subtotal)
	}
	if !almostEqual(got.DescuentoMonto, 0) {
		t.Errorf("DescuentoMonto = %f, want 0", got.DescuentoMonto)
	}
	if !almostEqual(got.IVAMonto, 38000) {
		t.Errorf("IVAMonto = %f, want 38000", got.IVAMonto)
	}
	if !almostEqual(got.Total, 238000) {
		t.Errorf("Total = %f, want 238000", got.Total)
	}
}

func TestComputeTotals_DiscountBeforeIVA(t *testing.T) {
	lines := []PriceLine{{PrecioUnitario: 50000, Cantidad: 3}}

	got, err := ComputeTotals(lines, 10, 19)
	if err != nil {
		t.Fatalf("ComputeTotals() error = %v", err)
	}

	if !almostEqual(got.Subtotal, 150000) {
		t.Errorf("Subtotal = %f, want 150000", got.Subtotal)
	}
	if !almostEqual(got.DescuentoMonto, 15000) {
		t.Errorf("DescuentoMonto = %f, want 15000", got.DescuentoMonto)
	}
	if !almostEqual(got.BaseImponible, 135000) {
		t.Errorf("BaseImponible = %f, want 135000", got.BaseImponible)
	}
	if !almostEqual(got.IVAMonto, 25650) {
		t.Errorf("IVAMonto = %f, want 25650", got.IVAMonto)
	}
	if !almostEqual(got.Total, 160650) {
		t.Errorf("Total = %f, want 160650", got.Total)
	}
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	got, err := ComputeTotals(nil, 10, 19)
	if err != nil {
		t.Fatalf("ComputeTotals() error = %v", err)
	}
	if got.Subtotal != 0 || got.DescuentoMonto != 0 || got.BaseImponible != 0 ||
		got.IVAMonto != 0 || got.Total != 0 {
		t.Errorf("empty cart totals = %+v, want all zeros", got)
	}
}

func TestComputeTotals_PercentBoundaries(t *testing.T) {
	lines := []PriceLine{{PrecioUnitario: 1000, Cantidad: 1}}

	// 0% discount and 0% IVA: total equals subtotal
	got, err := ComputeTotals(lines, 0, 0)
	if err != nil {
		t.Fatalf("ComputeTotals(0, 0) error = %v", err)
	}
	if !almostEqual(got.Total, 1000) {
		t.Errorf("Total at 0/0 = %f, want 1000", got.Total)
	}

	// 100% discount: base and total collapse to zero, IVA included
	got, err = ComputeTotals(lines, 100, 19)
	if err != nil {
		t.Fatalf("ComputeTotals(100, 19) error = %v", err)
	}
	if !almostEqual(got.BaseImponible, 0) || !almostEqual(got.Total, 0) {
		t.Errorf("totals at 100%% discount = %+v, want zero base and total", got)
	}

	// 100% IVA doubles the base
	got, err = ComputeTotals(lines, 0, 100)
	if err != nil {
		t.Fatalf("ComputeTotals(0, 100) error = %v", err)
	}
	if !almostEqual(got.Total, 2000) {
		t.Errorf("Total at 100%% IVA = %f, want 2000", got.Total)
	}
}

func TestComputeTotals_RejectsOutOfRangePercents(t *testing.T) {
	lines := []PriceLine{{PrecioUnitario: 1000, Cantidad: 1}}

	tests := []struct {
		name      string
		descuento float64
		iva       float64
	}{
		{"negative discount", -1, 19},
		{"discount above 100", 101, 19},
		{"negative iva", 0, -0.5},
		{"iva above 100", 0, 100.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeTotals(lines, tt.descuento, tt.iva); err == nil {
				t.Errorf("ComputeTotals(%v, %v) expected error, got nil", tt.descuento, tt.iva)
			}
		})
	}
}

func TestComputeTotals_RejectsInvalidLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []PriceLine
	}{
		{"negative price", []PriceLine{{PrecioUnitario: -100, Cantidad: 1}}},
		{"zero quantity", []PriceLine{{PrecioUnitario: 100, Cantidad: 0}}},
		{"negative quantity", []PriceLine{{PrecioUnitario: 100, Cantidad: -2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeTotals(tt.lines, 0, 19); err == nil {
				t.Errorf("expected error for %s, got nil", tt.name)
			}
		})
	}
}

func TestComputeTotals_OrderIndependent(t *testing.T) {
	a := []PriceLine{
		{PrecioUnitario: 12500, Cantidad: 3},
		{PrecioUnitario: 99000, Cantidad: 1},
		{PrecioUnitario: 4300, Cantidad: 7},
	}
	b := []PriceLine{a[2], a[0], a[1]}

	ta, err := ComputeTotals(a, 15, 19)
	if err != nil {
		t.Fatalf("ComputeTotals(a) error = %v", err)
	}
	tb, err := ComputeTotals(b, 15, 19)
	if err != nil {
		t.Fatalf("ComputeTotals(b) error = %v", err)
	}
	if !almostEqual(ta.Total, tb.Total) || !almostEqual(ta.Subtotal, tb.Subtotal) {
		t.Errorf("reordered lines changed totals: %+v vs %+v", ta, tb)
	}
}

func TestComputeTotals_DiscountMonotonic(t *testing.T) {
	lines := []PriceLine{{PrecioUnitario: 80000, Cantidad: 2}}

	prev := math.Inf(1)
	for _, d := range []float64{0, 5, 10, 25, 50, 75, 100} {
		got, err := ComputeTotals(lines, d, 19)
		if err != nil {
			t.Fatalf("ComputeTotals(d=%v) error = %v", d, err)
		}
		if got.Total > prev {
			t.Errorf("total increased when discount rose to %v%%: %f > %f", d, got.Total, prev)
		}
		prev = got.Total
	}
}

func TestComputeTotals_IVAMonotonic(t *testing.T) {
	lines := []PriceLine{{PrecioUnitario: 80000, Cantidad: 2}}

	prev := math.Inf(-1)
	for _, iva := range []float64{0, 5, 16, 19, 50, 100} {
		got, err := ComputeTotals(lines, 10, iva)
		if err != nil {
			t.Fatalf("ComputeTotals(iva=%v) error = %v", iva, err)
		}
		if got.Total < prev {
			t.Errorf("total decreased when IVA rose to %v%%: %f < %f", iva, got.Total, prev)
		}
		prev = got.Total
	}
}

func TestLineSubtotal(t *testing.T) {
	if got := LineSubtotal(12500, 4); !almostEqual(got, 50000) {
		t.Errorf("LineSubtotal(12500, 4) = %f, want 50000", got)
	}
}

func TestFormatCOP(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0"},
		{1500, "$1.500"},
		{238000, "$238.000"},
		{1234567, "$1.234.567"},
	}

	for _, tt := range tests {
		got := FormatCOP(tt.amount)
		if got != tt.want {
			t.Errorf("FormatCOP(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestFormatCOP_NoDecimals(t *testing.T) {
	got := FormatCOP(160650.4)
	if strings.Contains(got, ",") {
		t.Errorf("FormatCOP(160650.4) = %q, should not carry decimals", got)
	}
}

package services

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// PriceLine is one cart entry as the pricing engine sees it: a snapshot unit
// price and a quantity. Nothing else about the product matters here.
type PriceLine struct {
	PrecioUnitario float64
	Cantidad       int
}

// Totals carries the five figures stored on a quotation and shown on every
// rendered document.
type Totals struct {
	Subtotal       float64
	DescuentoMonto float64
	BaseImponible  float64
	IVAMonto       float64
	Total          float64
}

// ComputeTotals converts a cart plus discount/IVA percentages into quotation
// totals:
//
//	subtotal  = sum(precio_unitario * cantidad)
//	descuento = subtotal * descuento% / 100
//	base      = subtotal - descuento
//	iva       = base * iva% / 100
//	total     = base + iva
//
// No rounding happens here; display rounding is presentation-only (FormatCOP).
// An empty cart yields all zeros. Negative prices or non-positive quantities
// are caller contract violations and are rejected, never clamped.
func ComputeTotals(lines []PriceLine, descuentoPct, ivaPct float64) (Totals, error) {
	if descuentoPct < 0 || descuentoPct > 100 {
		return Totals{}, fmt.Errorf("descuento must be between 0 and 100, got %v", descuentoPct)
	}
	if ivaPct < 0 || ivaPct > 100 {
		return Totals{}, fmt.Errorf("iva must be between 0 and 100, got %v", ivaPct)
	}

	var t Totals
	for i, line := range lines {
		if line.PrecioUnitario < 0 {
			return Totals{}, fmt.Errorf("line %d: negative unit price %v", i, line.PrecioUnitario)
		}
		if line.Cantidad <= 0 {
			return Totals{}, fmt.Errorf("line %d: quantity must be positive, got %d", i, line.Cantidad)
		}
		t.Subtotal += line.PrecioUnitario * float64(line.Cantidad)
	}

	t.DescuentoMonto = t.Subtotal * descuentoPct / 100
	t.BaseImponible = t.Subtotal - t.DescuentoMonto
	t.IVAMonto = t.BaseImponible * ivaPct / 100
	t.Total = t.BaseImponible + t.IVAMonto

	return t, nil
}

// LineSubtotal keeps the line.subtotal == cantidad * precio_unitario invariant
// in one place for storage and rendering.
func LineSubtotal(precioUnitario float64, cantidad int) float64 {
	return precioUnitario * float64(cantidad)
}

// copPrinter formats numbers with Colombian grouping ("1.234.567").
var copPrinter = message.NewPrinter(language.MustParse("es-CO"))

// FormatCOP renders an amount the way the console displays pesos: dollar
// sign, thousands separators, no decimal places. Rounding to whole pesos
// happens here and only here.
func FormatCOP(amount float64) string {
	return copPrinter.Sprintf("$%v", number.Decimal(amount, number.MaxFractionDigits(0)))
}

package handlers

import (
	"strings"
	"testing"
)

func TestImportTerminalStatus(t *testing.T) {
	tests := []struct {
		processed, failed int
		want              string
	}{
		{10, 0, "completed"},
		{0, 10, "failed"},
		{7, 3, "completed_with_errors"},
		{0, 0, "completed"},
	}

	for _, tt := range tests {
		if got := importTerminalStatus(tt.processed, tt.failed); got != tt.want {
			t.Errorf("importTerminalStatus(%d, %d) = %q, want %q",
				tt.processed, tt.failed, got, tt.want)
		}
	}
}

func TestParseProductCSV(t *testing.T) {
	csvData := strings.Join([]string{
		"sku,nombre,marca,precio_cop,descripcion_corta,stock,garantia_meses",
		"TK10001,Teclado Mecanico,Logitech,185000,Switch azul,12,12",
		",Mouse Generico,Acme,35000",
	}, "\n")

	rows, err := parseProductCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("parseProductCSV() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("parseProductCSV() returned %d rows, want 2", len(rows))
	}

	if rows[0].sku != "TK10001" || rows[0].price != 185000 || rows[0].stock != 12 {
		t.Errorf("row 0 = %+v, want sku TK10001, price 185000, stock 12", rows[0])
	}
	if rows[1].sku == "" {
		t.Error("row with empty sku did not get a generated suggestion")
	}
}

func TestParseProductCSV_Rejects(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"header only", "sku,nombre,marca,precio_cop"},
		{"too few columns", "sku,nombre,marca,precio_cop\nTK1,Teclado,Acme"},
		{"bad price", "sku,nombre,marca,precio_cop\nTK1,Teclado,Acme,gratis"},
		{"negative price", "sku,nombre,marca,precio_cop\nTK1,Teclado,Acme,-5"},
		{"missing name", "sku,nombre,marca,precio_cop\nTK1,,Acme,1000"},
	}

	for _, tt := range tests {
		if _, err := parseProductCSV(strings.NewReader(tt.csv)); err == nil {
			t.Errorf("%s: parseProductCSV() accepted invalid input", tt.name)
		}
	}
}

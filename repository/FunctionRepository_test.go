package repository

import (
	"regexp"
	"testing"
)

func TestFormatQuotationFilename(t *testing.T) {
	tests := []struct {
		numero int
		ext    string
		want   string
	}{
		{1042, "pdf", "Quotation-1042.pdf"},
		{7, "jpg", "Quotation-7.jpg"},
		{33, ".pdf", "Quotation-33.pdf"},
	}

	for _, tt := range tests {
		if got := FormatQuotationFilename(tt.numero, tt.ext); got != tt.want {
			t.Errorf("FormatQuotationFilename(%d, %q) = %q, want %q", tt.numero, tt.ext, got, tt.want)
		}
	}
}

func TestGenerateSKUSuggestion(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]{2}\d{5}$`)
	for i := 0; i < 20; i++ {
		sku := GenerateSKUSuggestion()
		if !pattern.MatchString(sku) {
			t.Errorf("GenerateSKUSuggestion() = %q, want two letters plus five digits", sku)
		}
	}
}

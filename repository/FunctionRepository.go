package repository

import (
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// quotationNumberLockKey serializes quotation number allocation across
// concurrent transactions.
const quotationNumberLockKey = 815021

// NextQuotationNumber assigns the next sequential quotation number inside the
// caller's transaction. An advisory lock held until commit keeps two
// concurrent creates from reading the same MAX. Numbering is global, not per
// salesperson, matching how the console has always counted.
func NextQuotationNumber(tx *sql.Tx) (int, error) {
	if _, err := tx.Exec(`SELECT pg_advisory_xact_lock($1)`, quotationNumberLockKey); err != nil {
		return 0, fmt.Errorf("failed to lock quotation numbering: %v", err)
	}

	var numero int
	err := tx.QueryRow(`SELECT COALESCE(MAX(numero), 0) + 1 FROM cotizaciones`).Scan(&numero)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate quotation number: %v", err)
	}
	return numero, nil
}

// FormatQuotationFilename builds the export artifact name for a quotation,
// e.g. "Quotation-1042.pdf".
func FormatQuotationFilename(numero int, ext string) string {
	return fmt.Sprintf("Quotation-%d.%s", numero, strings.TrimPrefix(ext, "."))
}

// GenerateSKUSuggestion produces a candidate SKU for products imported without
// one: two letters plus a five digit number, e.g. "TK48213".
func GenerateSKUSuggestion() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	prefix := string(letters[rng.Intn(len(letters))]) + string(letters[rng.Intn(len(letters))])
	number := rng.Intn(90000) + 10000

	return fmt.Sprintf("%s%d", prefix, number)
}

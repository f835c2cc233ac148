package handlers

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"backend/models"

	"github.com/jung-kurt/gofpdf"
)

func sampleView(items []models.QuotationItemView) *models.QuotationView {
	return &models.QuotationView{
		Quotation: models.Quotation{
			ID:          1,
			Numero:      1042,
			Fecha:       time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			Subtotal:    150000,
			Descuento:   10,
			IVA:         19,
			Total:       160650,
			ValidezDias: 5,
			Estado:      models.QuotationPending,
		},
		Cliente: models.Customer{
			ID:       1,
			Nombre:   "Ferreteria El Tornillo",
			NIT:      "900123456-7",
			Telefono: "573001234567",
			Ciudad:   "Bogota",
		},
		Items: items,
	}
}

func TestBuildQuotationPDF(t *testing.T) {
	view := sampleView([]models.QuotationItemView{
		{ProductName: "Teclado Mecanico RGB", Cantidad: 3, PrecioUnitario: 50000, Subtotal: 150000},
	})

	pdf := buildQuotationPDF(view)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("pdf.Output() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("pdf.Output() produced an empty document")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header")
	}
}

func TestBuildQuotationPDF_ManyItemsPaginates(t *testing.T) {
	var items []models.QuotationItemView
	for i := 0; i < 40; i++ {
		items = append(items, models.QuotationItemView{
			ProductName:    "Producto con un nombre bastante largo que obliga a cortar la celda",
			Description:    "Descripción extendida del producto para la segunda columna",
			Cantidad:       2,
			PrecioUnitario: 12500,
			Subtotal:       25000,
		})
	}
	view := sampleView(items)

	pdf := buildQuotationPDF(view)
	if pdf.PageCount() < 2 {
		t.Errorf("PageCount() = %d, want at least 2 pages for 40 rows", pdf.PageCount())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("pdf.Output() error = %v", err)
	}
}

func TestRenderQuotationImage(t *testing.T) {
	view := sampleView([]models.QuotationItemView{
		{ProductName: "Mouse inalámbrico", Cantidad: 1, PrecioUnitario: 65000, Subtotal: 65000},
		{ProductName: "Pad XL", Cantidad: 2, PrecioUnitario: 30000, Subtotal: 60000},
	})

	img := renderQuotationImage(view)

	bounds := img.Bounds()
	if bounds.Dx() != imgWidth {
		t.Errorf("image width = %d, want %d", bounds.Dx(), imgWidth)
	}
	wantHeight := imgHeaderH + imgInfoH + imgTableHeadH + 2*imgRowH + imgTotalsH
	if bounds.Dy() != wantHeight {
		t.Errorf("image height = %d, want %d", bounds.Dy(), wantHeight)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: imgJPEGQual}); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("jpeg.Encode() produced no bytes")
	}
}

func TestRenderQuotationImage_ZeroItems(t *testing.T) {
	view := sampleView(nil)
	view.Quotation.Subtotal = 0
	view.Quotation.Total = 0

	img := renderQuotationImage(view)

	wantHeight := imgHeaderH + imgInfoH + imgTableHeadH + imgTotalsH
	if got := img.Bounds().Dy(); got != wantHeight {
		t.Errorf("zero-item image height = %d, want %d", got, wantHeight)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: imgJPEGQual}); err != nil {
		t.Fatalf("jpeg.Encode() on empty quotation error = %v", err)
	}
}

func TestTruncateClip(t *testing.T) {
	if got := clip("corto", 10); got != "corto" {
		t.Errorf("clip(short) = %q, want unchanged", got)
	}
	if got := clip("una cadena demasiado larga", 10); len(got) != 10 {
		t.Errorf("clip(long) length = %d, want 10", len(got))
	}
}

func TestClipKeepsRuneBoundaries(t *testing.T) {
	got := clip("ááááá", 4)
	if !utf8.ValidString(got) {
		t.Fatalf("clip() produced invalid UTF-8: %q", got)
	}
	if got != "á..." {
		t.Errorf("clip(%q, 4) = %q, want %q", "ááááá", got, "á...")
	}

	got = clip("Descripción extendida del artículo", 12)
	if !utf8.ValidString(got) {
		t.Errorf("clip() produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("clip() = %q, want ellipsis suffix", got)
	}
}

func TestTruncateCellKeepsRuneBoundaries(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)

	lines := truncateCell(pdf, strings.Repeat("á", 300), 40, 2)
	if len(lines) != 2 {
		t.Fatalf("truncateCell() returned %d lines, want 2", len(lines))
	}
	for i, line := range lines {
		if !utf8.ValidString(line) {
			t.Errorf("line %d is invalid UTF-8: %q", i, line)
		}
	}
	if !strings.HasSuffix(lines[1], "...") {
		t.Errorf("last line = %q, want ellipsis suffix", lines[1])
	}
}

func TestFetchThumbnail(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 5), uint8(y * 5), 128, 255})
		}
	}
	var full bytes.Buffer
	if err := png.Encode(&full, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Write(full.Bytes())
		case "/truncated.png":
			w.Write(full.Bytes()[:full.Len()/2])
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	imgType, data := fetchThumbnail(srv.URL + "/ok.png")
	if imgType != "PNG" {
		t.Errorf("fetchThumbnail(ok.png) type = %q, want PNG", imgType)
	}
	if len(data) != full.Len() {
		t.Errorf("fetchThumbnail(ok.png) returned %d bytes, want %d", len(data), full.Len())
	}

	// The half file still carries a readable header, so a config-only sniff
	// would wave it through. The fetch must reject it outright.
	truncated := full.Bytes()[:full.Len()/2]
	if _, _, err := image.DecodeConfig(bytes.NewReader(truncated)); err != nil {
		t.Fatalf("test image too small, header did not survive truncation: %v", err)
	}
	if imgType, _ = fetchThumbnail(srv.URL + "/truncated.png"); imgType != "" {
		t.Errorf("fetchThumbnail(truncated.png) type = %q, want rejection", imgType)
	}

	if imgType, _ = fetchThumbnail(srv.URL + "/missing.png"); imgType != "" {
		t.Errorf("fetchThumbnail(404) type = %q, want rejection", imgType)
	}
}

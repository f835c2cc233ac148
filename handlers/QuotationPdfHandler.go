package handlers

import (
	"bytes"
	"database/sql"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"backend/models"
	"backend/repository"
	"backend/services"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	pdfPageWidth   = 210.0 // A4 portrait, mm
	pdfMargin      = 10.0
	pdfRowHeight   = 18.0  // fixed row height; rows never grow past this
	pdfBreakAt     = 265.0 // start a new page when the next row would pass this
	pdfThumbSize   = 14.0
	companyName    = "Tintas y Tecnología"
	companyTagline = "Sistema de Cotizaciones"
)

const thumbMaxBytes = 2 << 20

var thumbnailClient = &http.Client{Timeout: 5 * time.Second}

// fetchThumbnail downloads a product image and sniffs its format. Any failure
// returns ("", nil): a missing or broken asset never aborts an export.
func fetchThumbnail(url string) (imgType string, data []byte) {
	if url == "" {
		return "", nil
	}
	resp, err := thumbnailClient.Get(url)
	if err != nil {
		log.Printf("thumbnail fetch failed for %s: %v", url, err)
		return "", nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, thumbMaxBytes+1))
	if err != nil || len(raw) > thumbMaxBytes {
		return "", nil
	}

	// Fully decode before handing the bytes to gofpdf; its error state is
	// sticky, and a header-only sniff would let a truncated body through and
	// fail the whole document at registration time.
	_, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", nil
	}
	switch format {
	case "png":
		return "PNG", raw
	case "jpeg":
		return "JPG", raw
	}
	return "", nil
}

// truncateCell fits text into width, keeping at most maxLines lines and
// marking the cut with an ellipsis.
func truncateCell(pdf *gofpdf.Fpdf, text string, width float64, maxLines int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	split := pdf.SplitText(text, width)
	if len(split) <= maxLines {
		return split
	}
	kept := split[:maxLines]
	// Cut on rune boundaries; the translator runs after this and would mangle
	// a half rune.
	if r := []rune(kept[maxLines-1]); len(r) > 3 {
		kept[maxLines-1] = string(r[:len(r)-3]) + "..."
	}
	return kept
}

func drawItemsTableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(37, 99, 235)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(18, 7, "", "1", 0, "C", true, 0, "")
	pdf.CellFormat(62, 7, "Producto", "1", 0, "L", true, 0, "")
	pdf.CellFormat(42, 7, "Descripción", "1", 0, "L", true, 0, "")
	pdf.CellFormat(14, 7, "Cant.", "1", 0, "C", true, 0, "")
	pdf.CellFormat(27, 7, "Precio Unit.", "1", 0, "R", true, 0, "")
	pdf.CellFormat(27, 7, "Subtotal", "1", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// buildQuotationPDF lays out the paginated document for one resolved
// quotation. It touches no storage; the caller already resolved everything.
func buildQuotationPDF(view *models.QuotationView) *gofpdf.Fpdf {
	q := view.Quotation
	cl := view.Cliente
	titleCaser := cases.Title(language.Spanish)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s - Cotización #%d", companyName, q.Numero)), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("Página %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	// Branded header band
	pdf.SetFillColor(37, 99, 235)
	pdf.Rect(0, 0, pdfPageWidth, 26, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 18)
	pdf.SetXY(pdfMargin, 6)
	pdf.CellFormat(120, 9, tr(companyName), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetX(pdfMargin)
	pdf.CellFormat(120, 6, tr(companyTagline), "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 14)
	pdf.SetXY(140, 8)
	pdf.CellFormat(60, 8, tr(fmt.Sprintf("COTIZACIÓN #%d", q.Numero)), "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetY(32)

	// Two-column info block: customer on the left, quotation metadata right
	infoTop := pdf.GetY()
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(95, 7, "Datos del Cliente", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(90, 5, tr(strings.Join(nonEmpty(
		cl.Nombre,
		labelIf("NIT: ", cl.NIT),
		labelIf("Tel: ", cl.Telefono),
		labelIf("Email: ", cl.Email),
		strings.TrimSpace(cl.Direccion+" "+cl.Ciudad),
	), "\n")), "", "L", false)

	pdf.SetXY(110, infoTop)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 7, tr("Datos de la Cotización"), "B", 1, "L", false, 0, "")
	pdf.SetX(110)
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(90, 5, tr(strings.Join([]string{
		"Fecha: " + q.Fecha.Format("02/01/2006"),
		fmt.Sprintf("Validez: %d días", q.ValidezDias),
		"Estado: " + titleCaser.String(q.Estado),
	}, "\n")), "", "L", false)

	if y := pdf.GetY(); y < infoTop+32 {
		pdf.SetY(infoTop + 32)
	}

	// Items table; rows overflow onto fresh pages past the break line
	drawItemsTableHeader(pdf)
	pdf.SetFont("Arial", "", 9)
	for i, item := range view.Items {
		if pdf.GetY()+pdfRowHeight > pdfBreakAt {
			pdf.AddPage()
			drawItemsTableHeader(pdf)
			pdf.SetFont("Arial", "", 9)
		}

		rowTop := pdf.GetY()
		pdf.Rect(pdfMargin, rowTop, 18, pdfRowHeight, "D")
		pdf.Rect(pdfMargin+18, rowTop, 62, pdfRowHeight, "D")
		pdf.Rect(pdfMargin+80, rowTop, 42, pdfRowHeight, "D")
		pdf.Rect(pdfMargin+122, rowTop, 14, pdfRowHeight, "D")
		pdf.Rect(pdfMargin+136, rowTop, 27, pdfRowHeight, "D")
		pdf.Rect(pdfMargin+163, rowTop, 27, pdfRowHeight, "D")

		if imgType, data := fetchThumbnail(item.ImageURL); data != nil {
			name := fmt.Sprintf("thumb-%d", i)
			opts := gofpdf.ImageOptions{ImageType: imgType}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
			if pdf.Ok() {
				pdf.ImageOptions(name, pdfMargin+2, rowTop+2, pdfThumbSize, pdfThumbSize, false, opts, 0, "")
			}
		}

		pdf.SetXY(pdfMargin+19, rowTop+2)
		for _, line := range truncateCell(pdf, item.ProductName, 60, 2) {
			pdf.CellFormat(60, 4.5, tr(line), "", 2, "L", false, 0, "")
		}

		pdf.SetXY(pdfMargin+81, rowTop+2)
		for _, line := range truncateCell(pdf, item.Description, 40, 2) {
			pdf.CellFormat(40, 4.5, tr(line), "", 2, "L", false, 0, "")
		}

		pdf.SetXY(pdfMargin+122, rowTop+2)
		pdf.CellFormat(14, 5, fmt.Sprintf("%d", item.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(27, 5, tr(services.FormatCOP(item.PrecioUnitario)), "", 0, "R", false, 0, "")
		pdf.CellFormat(27, 5, tr(services.FormatCOP(item.Subtotal)), "", 0, "R", false, 0, "")

		pdf.SetY(rowTop + pdfRowHeight)
	}

	// Totals block. The IVA line is always shown: unit prices are
	// tax-exclusive and the stored total adds IVA on the discounted base, so
	// the printed breakdown matches the arithmetic exactly.
	if pdf.GetY()+40 > pdfBreakAt {
		pdf.AddPage()
	}
	pdf.Ln(4)
	totalsX := pdfMargin + 110
	pdf.SetFont("Arial", "", 10)
	pdf.SetX(totalsX)
	pdf.CellFormat(40, 6, "Subtotal", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, tr(services.FormatCOP(q.Subtotal)), "", 1, "R", false, 0, "")
	if q.Descuento > 0 {
		pdf.SetX(totalsX)
		pdf.SetTextColor(185, 28, 28)
		pdf.CellFormat(40, 6, tr(fmt.Sprintf("Descuento (%g%%)", q.Descuento)), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, tr("-"+services.FormatCOP(q.Subtotal*q.Descuento/100)), "", 1, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.SetX(totalsX)
	pdf.CellFormat(40, 6, tr(fmt.Sprintf("IVA (%g%%)", q.IVA)), "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, tr(services.FormatCOP((q.Subtotal*(1-q.Descuento/100))*q.IVA/100)), "", 1, "R", false, 0, "")
	pdf.SetX(totalsX)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(40, 8, "TOTAL", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, tr(services.FormatCOP(q.Total)), "T", 1, "R", false, 0, "")

	// WhatsApp QR so the customer can reply from the printed page
	if cl.Telefono != "" {
		mensaje := services.BuildWhatsAppMessage(cl.Nombre, q.Numero, services.FormatCOP(q.Total), q.ValidezDias)
		if link, err := services.BuildWhatsAppLink(cl.Telefono, mensaje); err == nil {
			if png, err := qrcode.Encode(link, qrcode.Medium, 256); err == nil {
				opts := gofpdf.ImageOptions{ImageType: "PNG"}
				pdf.RegisterImageOptionsReader("whatsapp-qr", opts, bytes.NewReader(png))
				if pdf.Ok() {
					pdf.ImageOptions("whatsapp-qr", pdfMargin, pdf.GetY()-24, 24, 24, false, opts, 0, "")
				}
			}
		}
	}

	if q.Observaciones != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Observaciones:", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(q.Observaciones), "", "L", false)
	}

	return pdf
}

func labelIf(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label + value
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// GenerateQuotationPDF godoc
// @Summary      Generate quotation PDF
// @Description  Render a quotation as a paginated PDF download
// @Tags         Quotations
// @Param        id   path  int  true  "Quotation ID"
// @Success      200  "PDF file"
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotations/{id}/pdf [get]
func GenerateQuotationPDF(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id header is missing"})
			return
		}
		user, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		view, err := loadQuotationView(db, c.Param("id"), user.VendedorID)
		if err == ErrQuotationNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quotation", "details": err.Error()})
			return
		}

		pdf := buildQuotationPDF(view)

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s",
			repository.FormatQuotationFilename(view.Quotation.Numero, "pdf")))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF", "details": err.Error()})
			return
		}
	}
}

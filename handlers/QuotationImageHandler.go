package handlers

import (
	"bytes"
	"database/sql"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"

	"backend/models"
	"backend/repository"
	"backend/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	imgWidth      = 800
	imgHeaderH    = 120
	imgInfoH      = 140
	imgTableHeadH = 32
	imgRowH       = 28
	imgTotalsH    = 170
	imgJPEGQual   = 90
)

var (
	imgBrandColor = color.RGBA{37, 99, 235, 255}
	imgInkColor   = color.RGBA{30, 30, 30, 255}
	imgGrayColor  = color.RGBA{110, 110, 110, 255}
	imgLineColor  = color.RGBA{220, 220, 220, 255}
)

func drawText(img *image.RGBA, x, y int, label string, col color.RGBA, bold bool) {
	face := inconsolata.Regular8x16
	if bold {
		face = inconsolata.Bold8x16
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)},
	}
	d.DrawString(label)
}

// drawTextRight right-aligns a label so money columns line up.
func drawTextRight(img *image.RGBA, right, y int, label string, col color.RGBA, bold bool) {
	face := inconsolata.Regular8x16
	if bold {
		face = inconsolata.Bold8x16
	}
	w := font.MeasureString(face, label).Ceil()
	drawText(img, right-w, y, label, col, bold)
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	draw.Draw(img, image.Rect(x0, y0, x1, y1), &image.Uniform{col}, image.Point{}, draw.Src)
}

// clip shortens s to max characters. It cuts on rune boundaries so accented
// catalog text never turns into broken UTF-8 on the canvas.
func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// renderQuotationImage paints the whole quotation onto a single frame. The
// canvas height grows with the item count; there is no pagination. A
// quotation with zero items still renders header and totals.
func renderQuotationImage(view *models.QuotationView) *image.RGBA {
	q := view.Quotation
	cl := view.Cliente
	titleCaser := cases.Title(language.Spanish)

	height := imgHeaderH + imgInfoH + imgTableHeadH + len(view.Items)*imgRowH + imgTotalsH
	img := image.NewRGBA(image.Rect(0, 0, imgWidth, height))
	fillRect(img, 0, 0, imgWidth, height, color.RGBA{255, 255, 255, 255})

	// Header band
	fillRect(img, 0, 0, imgWidth, imgHeaderH-30, imgBrandColor)
	white := color.RGBA{255, 255, 255, 255}
	drawText(img, 30, 40, companyName, white, true)
	drawText(img, 30, 62, companyTagline, white, false)
	drawText(img, imgWidth-260, 50, fmt.Sprintf("COTIZACION #%d", q.Numero), white, true)

	// Customer and quotation metadata
	y := imgHeaderH + 10
	drawText(img, 30, y, "CLIENTE", imgGrayColor, true)
	drawText(img, 30, y+22, clip(cl.Nombre, 42), imgInkColor, true)
	line := y + 42
	if cl.NIT != "" {
		drawText(img, 30, line, "NIT: "+cl.NIT, imgInkColor, false)
		line += 20
	}
	if cl.Telefono != "" {
		drawText(img, 30, line, "Tel: "+cl.Telefono, imgInkColor, false)
	}

	drawText(img, 470, y, "COTIZACION", imgGrayColor, true)
	drawText(img, 470, y+22, "Fecha: "+q.Fecha.Format("02/01/2006"), imgInkColor, false)
	drawText(img, 470, y+42, fmt.Sprintf("Validez: %d dias", q.ValidezDias), imgInkColor, false)
	drawText(img, 470, y+62, "Estado: "+titleCaser.String(q.Estado), imgInkColor, false)

	// Items table
	tableTop := imgHeaderH + imgInfoH
	fillRect(img, 20, tableTop, imgWidth-20, tableTop+imgTableHeadH, imgBrandColor)
	headBase := tableTop + 21
	drawText(img, 30, headBase, "Producto", white, true)
	drawText(img, 430, headBase, "Cant.", white, true)
	drawTextRight(img, 640, headBase, "Precio Unit.", white, true)
	drawTextRight(img, imgWidth-30, headBase, "Subtotal", white, true)

	rowY := tableTop + imgTableHeadH
	for _, item := range view.Items {
		base := rowY + 19
		drawText(img, 30, base, clip(item.ProductName, 48), imgInkColor, false)
		drawText(img, 430, base, fmt.Sprintf("%d", item.Cantidad), imgInkColor, false)
		drawTextRight(img, 640, base, services.FormatCOP(item.PrecioUnitario), imgInkColor, false)
		drawTextRight(img, imgWidth-30, base, services.FormatCOP(item.Subtotal), imgInkColor, false)
		rowY += imgRowH
		fillRect(img, 20, rowY-1, imgWidth-20, rowY, imgLineColor)
	}

	// Totals block mirrors the stored arithmetic: discount on the subtotal,
	// IVA on the discounted base.
	totY := rowY + 30
	drawTextRight(img, 640, totY, "Subtotal", imgGrayColor, false)
	drawTextRight(img, imgWidth-30, totY, services.FormatCOP(q.Subtotal), imgInkColor, false)
	totY += 24
	if q.Descuento > 0 {
		drawTextRight(img, 640, totY, fmt.Sprintf("Descuento (%g%%)", q.Descuento), imgGrayColor, false)
		drawTextRight(img, imgWidth-30, totY, "-"+services.FormatCOP(q.Subtotal*q.Descuento/100), color.RGBA{185, 28, 28, 255}, false)
		totY += 24
	}
	drawTextRight(img, 640, totY, fmt.Sprintf("IVA (%g%%)", q.IVA), imgGrayColor, false)
	drawTextRight(img, imgWidth-30, totY, services.FormatCOP((q.Subtotal*(1-q.Descuento/100))*q.IVA/100), imgInkColor, false)
	totY += 28
	fillRect(img, 430, totY-18, imgWidth-20, totY-17, imgInkColor)
	drawTextRight(img, 640, totY+4, "TOTAL", imgInkColor, true)
	drawTextRight(img, imgWidth-30, totY+4, services.FormatCOP(q.Total), imgInkColor, true)

	drawText(img, 30, height-20, companyName+" - Documento generado automaticamente", imgGrayColor, false)

	return img
}

// GenerateQuotationJPEG godoc
// @Summary      Generate quotation JPEG
// @Description  Render a quotation as a single shareable JPEG image
// @Tags         Quotations
// @Param        id   path  int  true  "Quotation ID"
// @Success      200  "JPEG image"
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotations/{id}/jpg [get]
func GenerateQuotationJPEG(db *sql.DB) gin.HandlerFunc {
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

		img := renderQuotationImage(view)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: imgJPEGQual}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode image", "details": err.Error()})
			return
		}

		c.Header("Content-Type", "image/jpeg")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s",
			repository.FormatQuotationFilename(view.Quotation.Numero, "jpg")))
		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}

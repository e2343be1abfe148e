// Package report renders the shopping list download.
package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/pageza/foodgram/backend/internal/types"
)

// Layout in points with the origin at the bottom left of an A4 page.
const (
	pageHeight   = 841.89
	marginLeft   = 50.0
	titleY       = 740.0
	firstLineY   = 700.0
	lineStep     = 40.0
	bottomMargin = 50.0
	titleSize    = 25.0
	lineSize     = 14.0
	fontFamily   = "ShoppingList"
)

// Title is printed at the top of the first page.
const Title = "Shopping list:"

// FormatLine renders the n-th (1-based) line of the list.
func FormatLine(n int, item types.ShoppingListItem) string {
	return fmt.Sprintf("%d.  %s - %d%s", n, item.Name, item.Total, item.MeasurementUnit)
}

// RenderShoppingList writes items as a PDF document. fontPath names a TTF
// font with the glyphs of the ingredient names; the core Helvetica font is
// used when it is empty.
func RenderShoppingList(w io.Writer, items []types.ShoppingListItem, fontPath string) error {
	pdf := build(items, fontPath)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render shopping list: %w", err)
	}
	return nil
}

func build(items []types.ShoppingListItem, fontPath string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle("Shopping list", true)

	family := "Helvetica"
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath != "" {
		pdf.AddUTF8Font(fontFamily, "", fontPath)
		family = fontFamily
		translate = func(s string) string { return s }
	}

	text := func(y, size float64, s string) {
		pdf.SetFont(family, "", size)
		pdf.Text(marginLeft, pageHeight-y, translate(s))
	}

	pdf.AddPage()
	text(titleY, titleSize, Title)

	y := firstLineY
	for i, item := range items {
		if y < bottomMargin {
			pdf.AddPage()
			y = titleY
		}
		text(y, lineSize, FormatLine(i+1, item))
		y -= lineStep
	}
	return pdf
}

package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/types"
)

func items(n int) []types.ShoppingListItem {
	out := make([]types.ShoppingListItem, n)
	for i := range out {
		out[i] = types.ShoppingListItem{Name: fmt.Sprintf("item %02d", i), MeasurementUnit: "g", Total: int64(i + 1)}
	}
	return out
}

func TestFormatLine(t *testing.T) {
	line := FormatLine(3, types.ShoppingListItem{Name: "мука", MeasurementUnit: "г", Total: 250})
	assert.Equal(t, "3.  мука - 250г", line)
}

func TestRenderShoppingList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderShoppingList(&buf, items(3), ""))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderEmptyShoppingList(t *testing.T) {
	pdf := build(nil, "")
	require.NoError(t, pdf.Error())
	assert.Equal(t, 1, pdf.PageCount())
}

func TestShoppingListPageBreaks(t *testing.T) {
	tests := []struct {
		items int
		pages int
	}{
		{17, 1},
		{18, 2},
		{35, 2},
		{36, 3},
	}
	for _, tt := range tests {
		pdf := build(items(tt.items), "")
		require.NoError(t, pdf.Error())
		assert.Equal(t, tt.pages, pdf.PageCount(), "%d items", tt.items)
	}
}

func TestRenderMissingFont(t *testing.T) {
	var buf bytes.Buffer
	err := RenderShoppingList(&buf, items(1), filepath.Join(t.TempDir(), "missing.ttf"))
	assert.Error(t, err)
}

func TestRenderWithUTF8Font(t *testing.T) {
	font := os.Getenv("PDF_FONT_PATH")
	if font == "" {
		t.Skip("PDF_FONT_PATH not set")
	}
	var buf bytes.Buffer
	require.NoError(t, RenderShoppingList(&buf, []types.ShoppingListItem{{Name: "молоко", MeasurementUnit: "мл", Total: 350}}, font))
	assert.NotZero(t, buf.Len())
}

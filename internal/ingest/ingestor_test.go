package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/launchpadhq/launchpad/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestIngestor(t *testing.T) (*Ingestor, store.ProductRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Product{}))
	products := store.NewGormProductRepository(db)
	return NewIngestor(products, 0), products
}

func TestIngestTxt(t *testing.T) {
	ingestor, products := newTestIngestor(t)
	ctx := context.Background()

	doc := Upload{
		Filename: "lantern.txt",
		Data:     []byte("Solar Lantern\nA foldable solar lantern for camping."),
	}
	product, err := ingestor.Ingest(ctx, 42, doc, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "Solar Lantern", product.Name)
	assert.Equal(t, string(doc.Data), product.RawText)
	assert.Empty(t, product.ImageBase64)

	stored, err := products.GetOwned(ctx, product.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, product.RawText, stored.RawText)
}

func TestIngestRejections(t *testing.T) {
	ingestor, _ := newTestIngestor(t)
	ctx := context.Background()

	tooLarge := make([]byte, DefaultMaxDocumentBytes+1)

	tests := []struct {
		name string
		doc  Upload
	}{
		{"empty upload", Upload{Filename: "a.txt"}},
		{"unsupported extension", Upload{Filename: "a.docx", Data: []byte("hi")}},
		{"no extension", Upload{Filename: "notes", Data: []byte("hi")}},
		{"oversized document", Upload{Filename: "big.txt", Data: tooLarge}},
		{"whitespace only text", Upload{Filename: "blank.txt", Data: []byte("  \n\t  ")}},
		{"corrupt pdf", Upload{Filename: "broken.pdf", Data: []byte("not a pdf")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ingestor.Ingest(ctx, 42, tt.doc, nil, "")
			require.Error(t, err)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		})
	}
}

func TestIngestImage(t *testing.T) {
	ingestor, _ := newTestIngestor(t)
	ctx := context.Background()
	doc := Upload{Filename: "a.txt", Data: []byte("Widget")}

	product, err := ingestor.Ingest(ctx, 42, doc,
		&Upload{Filename: "photo.png", Data: []byte{0x89, 0x50, 0x4e, 0x47}}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(product.ImageBase64, "data:image/png;base64,"))

	_, err = ingestor.Ingest(ctx, 42, doc,
		&Upload{Filename: "photo.gif", Data: []byte("gif")}, "")
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = ingestor.Ingest(ctx, 42, doc,
		&Upload{Filename: "photo.png"}, "")
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestDeriveName(t *testing.T) {
	longLine := strings.Repeat("x", 60)

	tests := []struct {
		name     string
		explicit string
		text     string
		filename string
		want     string
	}{
		{"explicit wins", "My Product", "First Line\nrest", "doc.txt", "My Product"},
		{"explicit trimmed", "  My Product  ", "First Line", "doc.txt", "My Product"},
		{"first line when short", "", "Solar Lantern\ndetails", "doc.txt", "Solar Lantern"},
		{"filename when first line too long", "", longLine + "\nrest", "catalog-entry.txt", "catalog-entry"},
		{"filename strips extension only", "", longLine, "v2.final.pdf", "v2.final"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveName(tt.explicit, tt.text, tt.filename))
		})
	}
}

// Package ingest turns an uploaded document (plus an optional reference
// image) into the initial product record the pipeline runs against.
package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/launchpadhq/launchpad/internal/store"
	"github.com/launchpadhq/launchpad/pkg/common"
	"go.uber.org/zap"
)

const (
	DefaultMaxDocumentBytes = 5 * 1024 * 1024
	DefaultMaxImageBytes    = 8 * 1024 * 1024

	// Names derived from document content only qualify when shorter than this.
	maxDerivedNameLen = 50
)

var imageMimeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Upload is one incoming document plus metadata.
type Upload struct {
	Filename string
	Data     []byte
}

// Ingestor validates uploads, extracts text, and creates products.
type Ingestor struct {
	products         store.ProductRepository
	maxDocumentBytes int64
	maxImageBytes    int64
}

func NewIngestor(products store.ProductRepository, maxDocumentBytes int64) *Ingestor {
	if maxDocumentBytes <= 0 {
		maxDocumentBytes = DefaultMaxDocumentBytes
	}
	return &Ingestor{
		products:         products,
		maxDocumentBytes: maxDocumentBytes,
		maxImageBytes:    DefaultMaxImageBytes,
	}
}

// Ingest creates a product from one document and an optional reference
// image. Failures reject the whole upload; no partial product row is
// written.
func (g *Ingestor) Ingest(ctx context.Context, userID int64, doc Upload, image *Upload, explicitName string) (*domain.Product, error) {
	text, err := g.extractText(doc)
	if err != nil {
		return nil, err
	}

	var imageDataURI string
	if image != nil {
		imageDataURI, err = g.encodeImage(*image)
		if err != nil {
			return nil, err
		}
	}

	product := &domain.Product{
		ID:          common.UUIDint64(),
		UserId:      userID,
		Name:        deriveName(explicitName, text, doc.Filename),
		RawText:     text,
		ImageBase64: imageDataURI,
	}
	if err := g.products.Create(ctx, product); err != nil {
		return nil, errs.Internal("failed to store product", err)
	}

	zap.L().Info("product ingested",
		zap.Int64("product_id", product.ID),
		zap.Int64("user_id", userID),
		zap.String("name", product.Name),
		zap.Int("chars", len(text)),
		zap.Bool("has_image", imageDataURI != ""))
	return product, nil
}

func (g *Ingestor) extractText(doc Upload) (string, error) {
	if len(doc.Data) == 0 {
		return "", errs.Validation("no file uploaded")
	}
	if int64(len(doc.Data)) > g.maxDocumentBytes {
		return "", errs.Validation(fmt.Sprintf(
			"file is too large, maximum size is %d MB", g.maxDocumentBytes/(1024*1024)))
	}

	ext := strings.ToLower(filepath.Ext(doc.Filename))
	var text string
	switch ext {
	case ".txt":
		text = string(doc.Data)
	case ".pdf":
		extracted, err := extractPdfText(doc.Data)
		if err != nil {
			return "", errs.Wrap(errs.KindValidation, "failed to extract text from PDF file", err)
		}
		text = extracted
	default:
		return "", errs.Validation("only .txt and .pdf files are accepted")
	}

	if strings.TrimSpace(text) == "" {
		return "", errs.Validation("the file appears to be empty or unscannable, please add product details")
	}
	return text, nil
}

func extractPdfText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var sb strings.Builder
	for page := 0; page < doc.NumPage(); page++ {
		pageText, err := doc.Text(page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", page+1, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (g *Ingestor) encodeImage(image Upload) (string, error) {
	if len(image.Data) == 0 {
		return "", errs.Validation("image file is empty")
	}
	if int64(len(image.Data)) > g.maxImageBytes {
		return "", errs.Validation(fmt.Sprintf(
			"image is too large, maximum size is %d MB", g.maxImageBytes/(1024*1024)))
	}

	ext := strings.ToLower(filepath.Ext(image.Filename))
	mime, ok := imageMimeByExt[ext]
	if !ok {
		return "", errs.Validation("unsupported image type: " + ext)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image.Data), nil
}

// deriveName picks the display name: the explicit name when supplied, else
// the first extracted line when it is short enough, else the filename
// without its extension.
func deriveName(explicitName, text, filename string) string {
	if name := strings.TrimSpace(explicitName); name != "" {
		return name
	}
	firstLine := strings.TrimSpace(strings.SplitN(strings.TrimSpace(text), "\n", 2)[0])
	if firstLine != "" && len(firstLine) < maxDerivedNameLen {
		return firstLine
	}
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Package completion adapts the hosted generation provider to the narrow
// contract the pipeline consumes: prompt in, ordered text chunks out, one
// terminal full text or a terminal error.
package completion

import "context"

// TextRequest is a structured prompt for one generation call.
type TextRequest struct {
	SystemInstruction string
	Prompt            string
	// ImageBase64 optionally attaches a reference image, either as a raw
	// base64 string or a data URI.
	ImageBase64 string
}

// ImageRequest asks the image model for one rendering of a prompt.
type ImageRequest struct {
	Prompt      string
	AspectRatio string
	MimeType    string
	// BaseImageBase64 optionally supplies a product photo the model must
	// preserve.
	BaseImageBase64 string
}

// Image is one generated image artifact.
type Image struct {
	Base64   string
	MimeType string
}

// DataURI renders the artifact as a browser-displayable data URI.
func (i Image) DataURI() string {
	mime := i.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + i.Base64
}

// Generator is the capability consumed by the orchestrator. StreamText
// invokes onChunk zero or more times in order; concatenating the chunks
// yields the returned full text. A non-nil error from onChunk aborts the
// stream.
type Generator interface {
	StreamText(ctx context.Context, req TextRequest, onChunk func(chunk string) error) (string, error)
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	GenerateImage(ctx context.Context, req ImageRequest) (*Image, error)
}

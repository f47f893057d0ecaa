package completion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/launchpadhq/launchpad/config"
	"github.com/launchpadhq/launchpad/internal/errs"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to a Gemini-style generative language API.
type Client struct {
	apiUrl     string
	apiKey     string
	textModel  string
	imageModel string
	httpClient *http.Client
}

var _ Generator = (*Client)(nil)

// NewClient creates a provider client from application config.
func NewClient(cfg config.CompletionConfig) *Client {
	return &Client{
		apiUrl:     strings.TrimRight(cfg.ApiUrl, "/"),
		apiKey:     cfg.ApiKey,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
		httpClient: &http.Client{},
	}
}

type apiPart struct {
	Text       string         `json:"text,omitempty"`
	InlineData *apiInlineData `json:"inline_data,omitempty"`
}

type apiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type apiContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []apiPart `json:"parts"`
}

type apiRequest struct {
	SystemInstruction *apiContent `json:"system_instruction,omitempty"`
	Contents          []apiContent `json:"contents"`
}

type apiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []apiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (c *Client) buildRequest(req TextRequest) *apiRequest {
	parts := []apiPart{{Text: req.Prompt}}
	if req.ImageBase64 != "" {
		mime, data := splitDataURI(req.ImageBase64)
		parts = append(parts, apiPart{InlineData: &apiInlineData{MimeType: mime, Data: data}})
	}

	body := &apiRequest{
		Contents: []apiContent{{Role: "user", Parts: parts}},
	}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &apiContent{Parts: []apiPart{{Text: req.SystemInstruction}}}
	}
	return body
}

// splitDataURI separates an optional "data:<mime>;base64," prefix from the
// payload. Bare base64 input is assumed jpeg.
func splitDataURI(s string) (mime, data string) {
	if strings.HasPrefix(s, "data:") {
		if idx := strings.Index(s, ";base64,"); idx > 5 {
			return s[5:idx], s[idx+8:]
		}
	}
	return "image/jpeg", s
}

func (c *Client) post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(httpReq)
}

// StreamText runs a streaming generation call, relaying each text chunk to
// onChunk and returning the concatenated full text on the terminal event.
func (c *Client) StreamText(ctx context.Context, req TextRequest, onChunk func(chunk string) error) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse&key=%s",
		c.apiUrl, c.textModel, c.apiKey)

	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	resp, err := c.post(ctx, url, c.buildRequest(req))
	if err != nil {
		return "", errs.UpstreamGeneration("completion request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		zap.L().Warn("completion stream rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("model", c.textModel))
		return "", errs.UpstreamGeneration(
			fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, string(data)), nil)
	}

	var full strings.Builder
	parser := NewStreamParser(resp.Body)
	for {
		chunk, err := parser.Next()
		if err != nil {
			return "", errs.UpstreamGeneration("stream read failed", err)
		}
		if chunk.Text != "" {
			full.WriteString(chunk.Text)
			if onChunk != nil {
				if err := onChunk(chunk.Text); err != nil {
					return "", err
				}
			}
		}
		if chunk.Done {
			break
		}
	}

	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", errs.UpstreamGeneration("provider returned empty output", nil)
	}
	return text, nil
}

// GenerateText runs a blocking generation call and returns the full text.
func (c *Client) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.apiUrl, c.textModel, c.apiKey)

	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	resp, err := c.post(ctx, url, c.buildRequest(req))
	if err != nil {
		return "", errs.UpstreamGeneration("completion request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.UpstreamGeneration("response read failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errs.UpstreamGeneration(
			fmt.Sprintf("provider returned status %d: %s", resp.StatusCode, string(data)), nil)
	}

	var parsed apiResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", errs.UpstreamGeneration("malformed provider response", err)
	}
	if parsed.Error != nil {
		return "", errs.UpstreamGeneration(parsed.Error.Message, nil)
	}
	if len(parsed.Candidates) == 0 {
		return "", errs.UpstreamGeneration("provider returned no candidates", nil)
	}

	var full strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		full.WriteString(part.Text)
	}
	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", errs.UpstreamGeneration("provider returned empty output", nil)
	}
	return text, nil
}

// deadline guards against providers that accept the connection and stall.
func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 60*time.Second)
}

package completion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/launchpadhq/launchpad/internal/errs"
	"go.uber.org/zap"
)

const imageMaxRetries = 3

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount   int                    `json:"sampleCount"`
	AspectRatio   string                 `json:"aspectRatio,omitempty"`
	OutputOptions map[string]interface{} `json:"outputOptions,omitempty"`
	EditConfig    map[string]interface{} `json:"editConfig,omitempty"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
	Error *apiError `json:"error,omitempty"`
}

// GenerateImage renders one image. Rate-limit responses are retried up to
// three times with linearly increasing backoff before the failure surfaces;
// every other failure surfaces immediately.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*Image, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:predict?key=%s",
		c.apiUrl, c.imageModel, c.apiKey)

	params := predictParameters{
		SampleCount: 1,
		AspectRatio: req.AspectRatio,
	}
	if req.MimeType != "" {
		params.OutputOptions = map[string]interface{}{"mimeType": req.MimeType}
	}
	if req.BaseImageBase64 != "" {
		mime, data := splitDataURI(req.BaseImageBase64)
		params.EditConfig = map[string]interface{}{
			"editMode": "product-image",
			"baseImage": map[string]interface{}{
				"bytesBase64Encoded": data,
				"mimeType":           mime,
			},
		}
	}
	body := &predictRequest{
		Instances:  []predictInstance{{Prompt: req.Prompt}},
		Parameters: params,
	}

	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= imageMaxRetries; attempt++ {
		if attempt > 0 {
			// linear backoff: 2s, 4s, 6s
			backoff := time.Duration(attempt) * 2 * time.Second
			zap.L().Warn("image model capacity reached, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return nil, errs.UpstreamGeneration("image generation timed out", ctx.Err())
			case <-time.After(backoff):
			}
		}

		img, retryable, err := c.predictOnce(ctx, url, body)
		if err == nil {
			return img, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, errs.UpstreamGeneration("image model rate limited", lastErr)
}

func (c *Client) predictOnce(ctx context.Context, url string, body *predictRequest) (*Image, bool, error) {
	resp, err := c.post(ctx, url, body)
	if err != nil {
		return nil, false, errs.UpstreamGeneration("image request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, errs.UpstreamGeneration("image response read failed", err)
	}

	var parsed predictResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, false, errs.UpstreamGeneration(
			fmt.Sprintf("image model returned invalid JSON, status %d", resp.StatusCode), err)
	}

	if resp.StatusCode != http.StatusOK || parsed.Error != nil {
		code := resp.StatusCode
		message := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if parsed.Error != nil {
			code = parsed.Error.Code
			message = parsed.Error.Message
		}
		rateLimited := code == http.StatusTooManyRequests
		return nil, rateLimited, errs.UpstreamGeneration(message, nil)
	}

	if len(parsed.Predictions) == 0 {
		return nil, false, errs.UpstreamGeneration("no image generated", nil)
	}

	pred := parsed.Predictions[0]
	mime := pred.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return &Image{Base64: pred.BytesBase64Encoded, MimeType: mime}, false, nil
}

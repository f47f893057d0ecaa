package completion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/launchpadhq/launchpad/config"
	"github.com/launchpadhq/launchpad/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.CompletionConfig{
		ApiUrl:     serverURL,
		ApiKey:     "test-key",
		TextModel:  "text-model",
		ImageModel: "image-model",
	})
}

func TestStreamTextRelaysChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "text-model:streamGenerateContent")
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))

		var body apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotNil(t, body.SystemInstruction)
		require.Len(t, body.Contents, 1)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(chunkEvent("Hello ", "") + chunkEvent("world", "STOP")))
	}))
	defer server.Close()

	var chunks []string
	text, err := newTestClient(server.URL).StreamText(context.Background(),
		TextRequest{SystemInstruction: "be brief", Prompt: "hi"},
		func(chunk string) error {
			chunks = append(chunks, chunk)
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", text)
	assert.Equal(t, []string{"Hello ", "world"}, chunks)
}

func TestStreamTextAttachesInlineImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		parts := body.Contents[0].Parts
		require.Len(t, parts, 2)
		require.NotNil(t, parts[1].InlineData)
		assert.Equal(t, "image/png", parts[1].InlineData.MimeType)
		assert.Equal(t, "cGhvdG8=", parts[1].InlineData.Data)
		_, _ = w.Write([]byte(chunkEvent("ok", "STOP")))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).StreamText(context.Background(),
		TextRequest{Prompt: "hi", ImageBase64: "data:image/png;base64,cGhvdG8="}, nil)
	require.NoError(t, err)
}

func TestStreamTextErrors(t *testing.T) {
	t.Run("provider rejects request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusForbidden)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).StreamText(
			context.Background(), TextRequest{Prompt: "hi"}, nil)
		require.Error(t, err)
		assert.Equal(t, errs.KindUpstreamGeneration, errs.KindOf(err))
	})

	t.Run("empty stream output", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("data: [DONE]\n\n"))
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).StreamText(
			context.Background(), TextRequest{Prompt: "hi"}, nil)
		require.Error(t, err)
		assert.Equal(t, errs.KindUpstreamGeneration, errs.KindOf(err))
	})
}

func TestGenerateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "text-model:generateContent")
		_, _ = w.Write([]byte(
			`{"candidates":[{"content":{"parts":[{"text":"full "},{"text":"answer"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).GenerateText(
		context.Background(), TextRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "full answer", text)
}

func TestGenerateImageRetriesRateLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("retry backoff sleeps")
	}

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "image-model:predict")
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"code":429,"message":"rate limited"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"predictions":[{"bytesBase64Encoded":"aW1n","mimeType":"image/png"}]}`))
	}))
	defer server.Close()

	img, err := newTestClient(server.URL).GenerateImage(
		context.Background(), ImageRequest{Prompt: "a lantern"})
	require.NoError(t, err)
	assert.Equal(t, "aW1n", img.Base64)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerateImageNonRetryableFailure(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"prompt blocked"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GenerateImage(
		context.Background(), ImageRequest{Prompt: "a lantern"})
	require.Error(t, err)
	assert.Equal(t, errs.KindUpstreamGeneration, errs.KindOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSplitDataURI(t *testing.T) {
	mime, data := splitDataURI("data:image/png;base64,cGhvdG8=")
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, "cGhvdG8=", data)

	mime, data = splitDataURI("cGhvdG8=")
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, "cGhvdG8=", data)
}

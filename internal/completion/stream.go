package completion

import (
	"bufio"
	"io"
	"strings"
)

// StreamParser reads Server-Sent Events from a streaming generation response.
type StreamParser struct {
	scanner *bufio.Scanner
}

// NewStreamParser creates a parser over an SSE body.
func NewStreamParser(reader io.Reader) *StreamParser {
	scanner := bufio.NewScanner(reader)
	// Chunks carry whole candidate payloads; allow lines beyond the default
	// 64 KiB scanner cap.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &StreamParser{scanner: scanner}
}

// StreamChunk is one incremental event from the stream.
type StreamChunk struct {
	Text         string
	FinishReason string
	Done         bool
}

// Next reads the next chunk. Done is set on the terminal event; after that
// the stream carries nothing further.
func (p *StreamParser) Next() (*StreamChunk, error) {
	for p.scanner.Scan() {
		line := p.scanner.Text()

		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		if data == "[DONE]" {
			return &StreamChunk{Done: true}, nil
		}

		var resp apiResponse
		if err := json.Unmarshal([]byte(data), &resp); err != nil {
			// Skip keep-alives and partial frames
			continue
		}
		if len(resp.Candidates) == 0 {
			continue
		}

		cand := resp.Candidates[0]
		var text strings.Builder
		for _, part := range cand.Content.Parts {
			text.WriteString(part.Text)
		}
		return &StreamChunk{
			Text:         text.String(),
			FinishReason: cand.FinishReason,
			Done:         cand.FinishReason != "",
		}, nil
	}

	if err := p.scanner.Err(); err != nil {
		return nil, err
	}
	return &StreamChunk{Done: true}, nil
}

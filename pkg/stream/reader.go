// Package stream normalizes server-sent-event completion streams into a
// single chunk shape, independent of which provider produced them. The
// reader tolerates arbitrary network chunking: SSE lines split across reads,
// keep-alive comments, and malformed events are all handled without
// surfacing errors for individual bad chunks.
package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"mosaic-hq/conduit/pkg/providers"
)

// scanner buffer sizing. Some providers emit very large single events
// (full logprobs, long tool-call arguments), so the ceiling is generous.
const (
	initialBufSize = 64 << 10
	maxLineSize    = 1 << 20
)

// doneSentinel terminates an SSE completion stream.
const doneSentinel = "[DONE]"

// sseEnvelope is the superset of event shapes the providers emit. Chat
// streams populate choices[].delta; HuggingFace text-generation streams
// populate token.text. Unknown fields are ignored.
type sseEnvelope struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Token struct {
		Text string `json:"text"`
	} `json:"token"`
}

// Reader decodes one SSE response body into normalized chunks. It is not
// safe for concurrent use; wrap it with Pump for channel-based consumption.
type Reader struct {
	provider string
	model    string
	body     io.ReadCloser
	scanner  *bufio.Scanner
	done     bool
	closed   bool
}

// NewReader wraps a streaming response body. The reader owns the body and
// closes it when the stream ends, fails, or Close is called.
func NewReader(provider, model string, body io.ReadCloser) *Reader {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, initialBufSize), maxLineSize)
	return &Reader{
		provider: provider,
		model:    model,
		body:     body,
		scanner:  scanner,
	}
}

// Next returns the next normalized chunk. It returns io.EOF when the stream
// ends, whether by the [DONE] sentinel or by the body closing. Keep-alive
// comments, empty lines, non-data fields, and undecodable events are
// skipped, never surfaced.
func (r *Reader) Next() (providers.StreamChunk, error) {
	if r.done {
		return providers.StreamChunk{}, io.EOF
	}

	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		payload, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		payload = strings.TrimSpace(payload)

		if payload == doneSentinel {
			r.finish()
			return providers.StreamChunk{}, io.EOF
		}

		var env sseEnvelope
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			continue
		}

		chunk, ok := r.normalize(env)
		if !ok {
			continue
		}
		return chunk, nil
	}

	if err := r.scanner.Err(); err != nil {
		r.finish()
		return providers.StreamChunk{}, &providers.StreamError{
			Provider: r.provider,
			Message:  "reading event stream",
			Cause:    err,
		}
	}

	// Body ended without [DONE]; treat as a clean end of stream.
	r.finish()
	return providers.StreamChunk{}, io.EOF
}

// normalize maps a decoded envelope onto the chunk shape. Events carrying
// neither text nor a finish reason are dropped.
func (r *Reader) normalize(env sseEnvelope) (providers.StreamChunk, bool) {
	chunk := providers.StreamChunk{
		ID:       env.ID,
		Provider: r.provider,
		Model:    env.Model,
	}
	if chunk.Model == "" {
		chunk.Model = r.model
	}

	if len(env.Choices) > 0 {
		chunk.Delta = env.Choices[0].Delta.Content
		chunk.FinishReason = env.Choices[0].FinishReason
	} else if env.Token.Text != "" {
		chunk.Delta = env.Token.Text
	}

	if chunk.Delta == "" && chunk.FinishReason == "" {
		return providers.StreamChunk{}, false
	}
	return chunk, true
}

// finish marks the stream done and releases the body.
func (r *Reader) finish() {
	r.done = true
	r.Close()
}

// Close releases the underlying body. Safe to call more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.body.Close()
}

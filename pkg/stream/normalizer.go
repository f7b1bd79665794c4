package stream

import (
	"context"
	"io"

	"mosaic-hq/conduit/pkg/providers"
)

// Pump drains a reader into a channel. The channel closes when the stream
// ends; a mid-stream failure is delivered as a final chunk with Err set.
// Cancelling the context stops the pump and closes the reader even when the
// consumer has stopped receiving.
func Pump(ctx context.Context, r *Reader) <-chan providers.StreamChunk {
	out := make(chan providers.StreamChunk)
	go func() {
		defer close(out)
		defer r.Close()

		for {
			chunk, err := r.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				select {
				case out <- providers.StreamChunk{Provider: r.provider, Model: r.model, Err: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

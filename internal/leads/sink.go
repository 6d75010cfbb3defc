package leads

import "context"

// Sink persists leads.
type Sink interface {
	Save(ctx context.Context, lead Lead) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, lead Lead) error

// Save implements Sink.
func (f SinkFunc) Save(ctx context.Context, lead Lead) error {
	return f(ctx, lead)
}

// MultiSink saves to every sink in order and returns the first error.
type MultiSink []Sink

// Save implements Sink.
func (m MultiSink) Save(ctx context.Context, lead Lead) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Save(ctx, lead); err != nil && first == nil {
			first = err
		}
	}
	return first
}

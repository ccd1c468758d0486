package notify

import "context"

// Provider delivers a plain-text message to a transport-specific target
// (for telegram, the chat id). Delivery is not guaranteed; callers decide
// what a failed send means.
type Provider interface {
	Send(ctx context.Context, target string, text string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, target string, text string) error {
	return nil
}

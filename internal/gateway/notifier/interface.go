package notifier

// TextNotifier is the minimal outbound alert contract. Delivery is
// best-effort: callers log failures and never retry or propagate them.
type TextNotifier interface {
	SendText(text string) error
}

// Noop discards every message. Used when no notifier is configured.
type Noop struct{}

func (Noop) SendText(string) error { return nil }

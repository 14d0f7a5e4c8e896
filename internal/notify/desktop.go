package notify

import "errors"

// ErrUnsupported indicates desktop notifications are not available on this system.
var ErrUnsupported = errors.New("desktop notifications unsupported")

// NewDesktopNotifier returns a platform-specific desktop notifier.
func NewDesktopNotifier() Notifier {
	return newDesktopNotifier()
}

// Supported reports whether n can deliver notifications at all.
func Supported(n Notifier) bool {
	_, unsupported := n.(unsupportedNotifier)
	return n != nil && !unsupported
}

type unsupportedNotifier struct{}

func (unsupportedNotifier) Notify(string, string) error {
	return ErrUnsupported
}

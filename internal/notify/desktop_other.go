//go:build !linux && !darwin

package notify

func newDesktopNotifier() Notifier {
	return unsupportedNotifier{}
}

package notify

import (
	"fmt"
	"os/exec"
)

type notifySend struct {
	path string
}

func newDesktopNotifier() Notifier {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		return unsupportedNotifier{}
	}
	return &notifySend{path: path}
}

func (n *notifySend) Notify(title, body string) error {
	cmd := exec.Command(n.path, "--app-name=sprout", "--urgency=normal", title, body)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notify-send: %w: %s", err, output)
	}
	return nil
}

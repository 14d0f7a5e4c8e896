package notify

import (
	"fmt"
	"os/exec"
	"strings"
)

type osascript struct {
	path string
}

func newDesktopNotifier() Notifier {
	path, err := exec.LookPath("osascript")
	if err != nil {
		return unsupportedNotifier{}
	}
	return &osascript{path: path}
}

func (n *osascript) Notify(title, body string) error {
	script := fmt.Sprintf("display notification %s with title %s", appleScriptString(body), appleScriptString(title))
	if output, err := exec.Command(n.path, "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript: %w: %s", err, output)
	}
	return nil
}

func appleScriptString(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + replacer.Replace(value) + `"`
}

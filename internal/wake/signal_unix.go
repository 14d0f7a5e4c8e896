//go:build unix

package wake

import (
	"os"
	"syscall"
)

func resumeSignals() []os.Signal {
	return []os.Signal{syscall.SIGCONT}
}

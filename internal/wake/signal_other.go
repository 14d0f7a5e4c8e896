//go:build !unix

package wake

import "os"

func resumeSignals() []os.Signal {
	return nil
}

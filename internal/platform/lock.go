// Package platform holds process-level helpers.
package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"path/filepath"
)

// ErrAlreadyRunning indicates another process owns the same timer database.
var ErrAlreadyRunning = errors.New("sprout is already running")

const (
	lockPortMin = 20000
	lockPortMax = 39999
)

// Lock is held by the process that drives a timer database.
type Lock struct {
	listener net.Listener
	address  string
}

// AcquireLock binds a localhost port derived from dbPath. Two processes using
// the same database cannot both hold it.
func AcquireLock(dbPath string) (*Lock, error) {
	key := dbPath
	if abs, err := filepath.Abs(dbPath); err == nil {
		key = abs
	}
	address := fmt.Sprintf("127.0.0.1:%d", lockPort(key))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w (lock %s: %v)", ErrAlreadyRunning, address, err)
	}
	return &Lock{listener: listener, address: address}, nil
}

// Release frees the lock. It is safe on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.listener == nil {
		return nil
	}
	err := l.listener.Close()
	l.listener = nil
	return err
}

// Address returns the bound lock address.
func (l *Lock) Address() string {
	if l == nil {
		return ""
	}
	return l.address
}

func lockPort(key string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte("sprout:" + key))
	span := uint32(lockPortMax - lockPortMin + 1)
	return lockPortMin + int(hash.Sum32()%span)
}

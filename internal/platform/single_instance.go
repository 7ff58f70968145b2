package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
)

// ErrAlreadyRunning indicates another process already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

// InstanceGuard is a held single-instance lock. The lock is a loopback TCP
// port derived from the app name; a second process fails to bind it and
// knows to exit.
type InstanceGuard struct {
	listener net.Listener
	address  string
}

// AcquireSingleInstance takes the process-wide lock for the named app.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := fmt.Sprintf("127.0.0.1:%d", instancePort(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return &InstanceGuard{listener: listener, address: address}, nil
}

// Release frees the lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	return guard.listener.Close()
}

// Address returns the bound loopback address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

// instancePort maps the app name onto a stable port in the dynamic range.
func instancePort(appName string) int {
	const base, span = 20000, 20000
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	return base + int(hash.Sum32()%span)
}

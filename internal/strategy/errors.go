package strategy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/devsel/internal/device"
)

// ErrUnknownKind is returned by New for an unregistered strategy kind.
var ErrUnknownKind = errors.New("unknown strategy kind")

// ErrCodeNotConnected identifies NotConnectedError in machine-readable output.
const ErrCodeNotConnected = "NOT_CONNECTED"

// NotConnectedError is returned by Select when the device is not among the
// connected devices. It signals a caller bug, such as a UI offering a stale
// device, and must not be swallowed.
type NotConnectedError struct {
	Device    device.Device
	Connected []device.Device
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("%s: %s is not connected (connected: %s)",
		ErrCodeNotConnected, e.Device.Name, strings.Join(device.Names(e.Connected), ", "))
}

// IsNotConnected reports whether err wraps a NotConnectedError.
func IsNotConnected(err error) bool {
	var nc *NotConnectedError
	return errors.As(err, &nc)
}

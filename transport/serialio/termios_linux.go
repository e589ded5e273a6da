package serialio

import "golang.org/x/sys/unix"

const (
	ioctlGets = unix.TCGETS
	ioctlSets = unix.TCSETS
)

// termiosBaud maps a plain integer baud rate to the termios speed
// constant, covering the rates a KISS TNC's host side commonly uses.
func termiosBaud(baud uint32) (uint32, bool) {
	switch baud {
	case 1200:
		return unix.B1200, true
	case 2400:
		return unix.B2400, true
	case 4800:
		return unix.B4800, true
	case 9600:
		return unix.B9600, true
	case 19200:
		return unix.B19200, true
	case 38400:
		return unix.B38400, true
	case 57600:
		return unix.B57600, true
	case 115200:
		return unix.B115200, true
	default:
		return 0, false
	}
}

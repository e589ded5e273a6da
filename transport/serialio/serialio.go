// Package serialio implements the engine.ByteStream capability over a
// real serial port, using raw termios control rather than a line
// discipline (spec §6: "no line discipline assumed").
//
// Grounded on doismellburning/samoyed src/ptt.go's unix.IoctlGetInt/
// IoctlSetInt use of golang.org/x/sys/unix for TIOCM line control, and
// src/kiss_serial.go's open/configure/read loop, reworked from a
// goroutine writing into a global KISS buffer into a plain
// io.ReadWriter-backed ByteStream the Engine pulls from.
package serialio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Port is a termios-configured serial device implementing
// engine.ByteStream.
type Port struct {
	f *os.File
}

// Open opens path (e.g. "/dev/ttyUSB0") at baud, setting raw mode: no
// line discipline, no parity, one stop bit, matching the teacher's
// serial KISS transport configuration.
func Open(path string, baud uint32) (*Port, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("serialio: open %s: %w", path, err)
	}
	if err := configureRaw(f, baud); err != nil {
		f.Close()
		return nil, err
	}
	return &Port{f: f}, nil
}

func configureRaw(f *os.File, baud uint32) error {
	fd := int(f.Fd())
	t, err := unix.IoctlGetTermios(fd, ioctlGets)
	if err != nil {
		return fmt.Errorf("serialio: get termios: %w", err)
	}

	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	t.Oflag &^= unix.OPOST
	t.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	t.Cflag &^= unix.CSIZE | unix.PARENB
	t.Cflag |= unix.CS8 | unix.CLOCAL | unix.CREAD
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	rate, ok := termiosBaud(baud)
	if !ok {
		return fmt.Errorf("serialio: unsupported baud rate %d", baud)
	}
	t.Ispeed = rate
	t.Ospeed = rate

	if err := unix.IoctlSetTermios(fd, ioctlSets, t); err != nil {
		return fmt.Errorf("serialio: set termios: %w", err)
	}
	return nil
}

// ReadByte reads a single byte, reporting ok=false on EOF or error.
func (p *Port) ReadByte() (b byte, ok bool) {
	var buf [1]byte
	n, err := p.f.Read(buf[:])
	if n != 1 || err != nil {
		return 0, false
	}
	return buf[0], true
}

// WriteBytes writes p to the serial port in full.
func (p *Port) WriteBytes(data []byte) error {
	_, err := p.f.Write(data)
	return err
}

// SetRTS drives the RTS line, following the teacher's _TIOCM pattern
// for PTT-by-RTS setups.
func (p *Port) SetRTS(on bool) error {
	fd := int(p.f.Fd())
	stuff, err := unix.IoctlGetInt(fd, unix.TIOCMGET)
	if err != nil {
		return err
	}
	if on {
		stuff |= unix.TIOCM_RTS
	} else {
		stuff &^= unix.TIOCM_RTS
	}
	return unix.IoctlSetInt(fd, unix.TIOCMSET, stuff)
}

// Close releases the underlying file descriptor.
func (p *Port) Close() error { return p.f.Close() }

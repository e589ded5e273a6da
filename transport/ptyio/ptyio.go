// Package ptyio provides a pseudo-terminal-backed engine.ByteStream
// for integration tests (and the "virtual TNC" deployment mode) that
// exercise the KISS transport without real serial hardware.
//
// Grounded on doismellburning/samoyed src/kiss.go, which opens a
// pseudo terminal via github.com/creack/pty to act as a virtual KISS
// TNC for Linux client applications; reworked from the teacher's
// cgo-bound termios setup into plain creack/pty.Open.
package ptyio

import (
	"os"

	"github.com/creack/pty"
)

// PTY is a pseudo-terminal pair: Master is read/written by this
// process (the TNC side); SlavePath is the device a client application
// opens (e.g. as a virtual serial port).
type PTY struct {
	Master    *os.File
	SlavePath string

	slave *os.File
}

// Open creates a new pty pair, matching the teacher's approach of
// exposing the slave's device path for other processes to connect to.
func Open() (*PTY, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, err
	}
	return &PTY{Master: master, SlavePath: slave.Name(), slave: slave}, nil
}

// ReadByte reads one byte from the master side (bytes a connected
// client wrote to the slave).
func (p *PTY) ReadByte() (b byte, ok bool) {
	var buf [1]byte
	n, err := p.Master.Read(buf[:])
	if n != 1 || err != nil {
		return 0, false
	}
	return buf[0], true
}

// WriteBytes writes to the master side, delivered to whatever has the
// slave device open.
func (p *PTY) WriteBytes(data []byte) error {
	_, err := p.Master.Write(data)
	return err
}

// Close releases both ends of the pty pair.
func (p *PTY) Close() error {
	err1 := p.Master.Close()
	err2 := p.slave.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

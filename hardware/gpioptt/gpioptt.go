// Package gpioptt drives the PTT (push-to-talk) line on a Linux GPIO
// character device, implementing engine.SignalIO's SetPTT contract on
// single-board-computer deployments that key a radio directly rather
// than through a serial RTS/DTR line.
//
// Grounded on doismellburning/samoyed's declared (but, on its cgo-bound
// GPIO sigma-delta path, unexercised in the collected sources)
// dependency on github.com/warthog618/go-gpiocdev; this package gives
// it a concrete cgo-free home as the TX scheduler's PTT line (spec §5:
// "the PTT GPIO is owned solely by the TX scheduler").
package gpioptt

import "github.com/warthog618/go-gpiocdev"

// Line drives one GPIO output line as a PTT keying signal.
type Line struct {
	chip *gpiocdev.Chip
	req  *gpiocdev.Line
}

// Open requests offset on chipName (e.g. "gpiochip0") as a
// low-by-default output, matching a typical PTT transistor driver's
// idle-low convention.
func Open(chipName string, offset int) (*Line, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, err
	}
	line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, err
	}
	return &Line{chip: chip, req: line}, nil
}

// SetPTT drives the line high to key the transmitter, low to unkey.
func (l *Line) SetPTT(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return l.req.SetValue(v)
}

// Close releases the GPIO line and chip handle.
func (l *Line) Close() error {
	err1 := l.req.Close()
	err2 := l.chip.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

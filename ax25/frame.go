package ax25

import "fmt"

// Frame is a parsed AX.25 UI frame: address path plus payload, with
// HDLC flags, bit-stuffing and the CRC already stripped by the caller
// (internal/hdlc owns those).
type Frame struct {
	Dest Address
	Src  Address
	Path []Address // 0-8 digipeater hops, in order
	Info []byte
}

// Addresses returns the full ordered address list (dest, src, path...)
// as wire order requires.
func (f Frame) Addresses() []Address {
	out := make([]Address, 0, 2+len(f.Path))
	out = append(out, f.Dest, f.Src)
	return append(out, f.Path...)
}

// Build assembles dest, src, path and info into an unframed AX.25 UI
// frame: address field, control=0x03, PID=0xF0, info (§4.5). The
// result still needs HDLC bit-stuffing, flags and FCS from
// internal/hdlc before it can go on the air.
func Build(dest, src Address, path []Address, info []byte) ([]byte, error) {
	if len(path) > MaxRepeaters {
		return nil, fmt.Errorf("ax25: %d repeaters exceeds maximum of %d", len(path), MaxRepeaters)
	}
	if len(info) > 256 {
		return nil, fmt.Errorf("ax25: info field length %d exceeds 256", len(info))
	}
	addrs := append([]Address{dest, src}, path...)
	addrBytes, err := EncodeAddresses(addrs)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(addrBytes)+2+len(info))
	out = append(out, addrBytes...)
	out = append(out, ControlUI, PIDNoL3)
	out = append(out, info...)
	return out, nil
}

// Parse reverses Build: walks the address field, then requires
// control=0x03 and PID=0xF0 for a UI frame (§4.5), copying the
// remainder as Info. frameBytes must already have flags, bit-stuffing
// and FCS stripped and validated.
func Parse(frameBytes []byte) (Frame, error) {
	if len(frameBytes) < 15 {
		return Frame{}, fmt.Errorf("ax25: frame too short (%d bytes, need >= 15)", len(frameBytes))
	}
	addrs, consumed, err := DecodeAddresses(frameBytes)
	if err != nil {
		return Frame{}, err
	}
	rest := frameBytes[consumed:]
	if len(rest) < 2 {
		return Frame{}, fmt.Errorf("ax25: frame missing control/PID")
	}
	if rest[0] != ControlUI {
		return Frame{}, fmt.Errorf("ax25: unsupported control byte %#02x (only UI frames handled)", rest[0])
	}
	if rest[1] != PIDNoL3 {
		return Frame{}, fmt.Errorf("ax25: unsupported PID %#02x", rest[1])
	}
	f := Frame{
		Dest: addrs[0],
		Src:  addrs[1],
		Info: append([]byte(nil), rest[2:]...),
	}
	if len(addrs) > 2 {
		f.Path = append([]Address(nil), addrs[2:]...)
	}
	return f, nil
}

// RepeatedFlags reports which path entries carry the has-been-repeated
// bit, in path order (§4.5's rpt_flags bitmap, exposed as a slice
// rather than a fixed-width bitmap since MaxRepeaters is small).
func (f Frame) RepeatedFlags() []bool {
	out := make([]bool, len(f.Path))
	for i, a := range f.Path {
		out[i] = a.Repeated
	}
	return out
}

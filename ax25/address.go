// Package ax25 implements the AX.25 address/control/info frame format
// used to carry APRS UI frames: address shift-encoding, control/PID
// fields and the has-been-repeated digipeater bits.
//
// Grounded on doismellburning/samoyed src/ax25_pad.go's address field
// layout (ax25_parse_addr/ax25_set_addr/ax25_get_addr_with_ssid), with
// the cgo struct-of-bytes representation replaced by a plain Address
// value type, per the "Engine value" redesign in spec §9.
package ax25

import (
	"fmt"
	"strconv"
	"strings"
)

// Control byte and PID for an unnumbered-information frame (§3).
const (
	ControlUI = 0x03
	PIDNoL3   = 0xF0
)

// MinAddresses and MaxAddresses bound the address field: destination,
// source, and 0-8 repeater hops (§3).
const (
	MinAddresses = 2
	MaxAddresses = 10
	MaxRepeaters = MaxAddresses - MinAddresses
)

// Address is one six-character callsign plus SSID and, for repeater
// entries, the has-been-repeated flag (§3, §4.5's rpt_flags).
type Address struct {
	Call     string // up to 6 upper-case alphanumerics, no padding
	SSID     uint8  // 0-15
	Repeated bool   // bit 7 of the shifted SSID octet; repeaters only
}

// String renders an address the conventional "CALL-SSID" way, "CALL"
// when SSID is zero, with a trailing "*" if it has been repeated.
func (a Address) String() string {
	s := a.Call
	if a.SSID != 0 {
		s += "-" + strconv.Itoa(int(a.SSID))
	}
	if a.Repeated {
		s += "*"
	}
	return s
}

// ParseAddress parses "CALL", "CALL-SSID" or "CALL-SSID*" text form.
func ParseAddress(s string) (Address, error) {
	repeated := false
	if strings.HasSuffix(s, "*") {
		repeated = true
		s = s[:len(s)-1]
	}
	call, ssidText, hasSSID := strings.Cut(s, "-")
	call = strings.ToUpper(call)
	if call == "" || len(call) > 6 {
		return Address{}, fmt.Errorf("ax25: invalid callsign %q", s)
	}
	for _, c := range call {
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return Address{}, fmt.Errorf("ax25: invalid callsign character in %q", s)
		}
	}
	var ssid uint64
	if hasSSID {
		var err error
		ssid, err = strconv.ParseUint(ssidText, 10, 8)
		if err != nil || ssid > 15 {
			return Address{}, fmt.Errorf("ax25: invalid SSID in %q", s)
		}
	}
	return Address{Call: call, SSID: uint8(ssid), Repeated: repeated}, nil
}

// encode writes the 7-octet wire form of a, shifted left one bit, with
// the has-been-repeated flag in bit 7 of the SSID octet and the
// end-of-address bit set only when last is true (I4).
func encode(a Address, last bool) [7]byte {
	var out [7]byte
	padded := a.Call
	for len(padded) < 6 {
		padded += " "
	}
	for i := 0; i < 6; i++ {
		out[i] = padded[i] << 1
	}
	ssidOctet := byte(0x60) | (a.SSID << 1) // bits 5-6 reserved, set per convention
	if a.Repeated {
		ssidOctet |= 0x80
	}
	if last {
		ssidOctet |= 0x01
	}
	out[6] = ssidOctet
	return out
}

// decode reverses encode, returning the address and whether the
// end-of-address bit was set on this octet.
func decode(raw [7]byte) (addr Address, last bool) {
	var call [6]byte
	for i := 0; i < 6; i++ {
		call[i] = raw[i] >> 1
	}
	addr.Call = strings.TrimRight(string(call[:]), " ")
	addr.SSID = (raw[6] >> 1) & 0x0F
	addr.Repeated = raw[6]&0x80 != 0
	last = raw[6]&0x01 != 0
	return addr, last
}

// EncodeAddresses packs 2..10 addresses (destination, source, 0-8
// repeaters) into their on-wire shifted form, setting the end-of-address
// bit on the final octet of the final callsign only (I4).
func EncodeAddresses(addrs []Address) ([]byte, error) {
	if len(addrs) < MinAddresses || len(addrs) > MaxAddresses {
		return nil, fmt.Errorf("ax25: address count %d outside [%d,%d]", len(addrs), MinAddresses, MaxAddresses)
	}
	out := make([]byte, 0, len(addrs)*7)
	for i, a := range addrs {
		raw := encode(a, i == len(addrs)-1)
		out = append(out, raw[:]...)
	}
	return out, nil
}

// DecodeAddresses walks the address field 7 octets at a time until the
// end-of-address bit is found, returning the decoded addresses and the
// number of bytes consumed.
func DecodeAddresses(buf []byte) (addrs []Address, consumed int, err error) {
	for consumed+7 <= len(buf) && len(addrs) < MaxAddresses {
		var raw [7]byte
		copy(raw[:], buf[consumed:consumed+7])
		a, last := decode(raw)
		addrs = append(addrs, a)
		consumed += 7
		if last {
			if len(addrs) < MinAddresses {
				return nil, consumed, fmt.Errorf("ax25: end-of-address bit set after only %d addresses", len(addrs))
			}
			return addrs, consumed, nil
		}
	}
	return nil, consumed, fmt.Errorf("ax25: address field ran out without end-of-address bit")
}

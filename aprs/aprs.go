// Package aprs builds APRS application-layer payload bytes: the
// `!=`, `:message:`, status and telemetry formats that spec.md names
// as deliberately out of the core (§1) and boundary-fixed by §6 ("a
// byte-building helper"). Never imported by package engine.
//
// Grounded on original_source/components/APRSlib/aprs/APRS.c's
// APRS_sendLoc/APRS_sendMsg (the '='-prefixed position report layout,
// the PHG extension, and the space-padded, dash-SSID message
// addressee field), reworked from its malloc'd byte buffers into
// ordinary Go string building.
package aprs

import (
	"fmt"
	"strconv"
	"strings"
)

// SymbolTable and Symbol together select one of the ~200 APRS icons;
// spec's open question ("truncates latitude to 8 chars but indexes
// packet[9]") is resolved here by writing SymbolTable explicitly
// between the 8-char latitude and the 9-char longitude, matching the
// original's packet[9] placement exactly (see DESIGN.md).
type Position struct {
	Latitude    string // 8 chars, e.g. "4903.50N"
	SymbolTable byte   // packet[9] in the original: the missing byte
	Longitude   string // 9 chars, e.g. "07201.75W"
	Symbol      byte
	Comment     string
}

// PHG is the optional power/height/gain/directivity station extension.
type PHG struct {
	Power       int // 0-9
	Height      int // 0-9
	Gain        int // 0-9
	Directivity int // 0-8
}

// BuildPosition renders a §1/§6 APRS position report: '=' data type
// indicator, lat/symbol-table/lon/symbol, optional PHG, then a free
// comment, e.g. "=4903.50N/07201.75W-Test".
func BuildPosition(p Position, phg *PHG) string {
	var b strings.Builder
	b.WriteByte('=')
	b.WriteString(pad(p.Latitude, 8))
	b.WriteByte(p.SymbolTable)
	b.WriteString(pad(p.Longitude, 9))
	b.WriteByte(p.Symbol)
	if phg != nil && usablePHG(*phg) {
		fmt.Fprintf(&b, "PHG%d%d%d%d", phg.Power, phg.Height, phg.Gain, phg.Directivity)
	}
	b.WriteString(p.Comment)
	return b.String()
}

// ParsePosition extracts decimal-degree latitude/longitude from a
// position report's info field (as produced by BuildPosition, or any
// standard uncompressed "=4903.50N/07201.75W-..." style packet),
// returning ok=false if info isn't a recognized position report.
// Grounded on src/decode_aprs.go's uncompressed lat/lon field layout,
// run in reverse.
func ParsePosition(info []byte) (lat, lon float64, ok bool) {
	if len(info) < 19 {
		return 0, 0, false
	}
	if info[0] != '=' && info[0] != '!' && info[0] != '@' && info[0] != '/' {
		return 0, 0, false
	}
	body := info[1:]
	lat, ok = parseLatLon(string(body[0:8]), 2)
	if !ok {
		return 0, 0, false
	}
	lon, ok = parseLatLon(string(body[9:18]), 3)
	return lat, lon, ok
}

// parseLatLon converts a "DDMM.mm"+hemisphere (or "DDDMM.mm"+hemisphere
// for longitude, degWidth=3) field into decimal degrees, negative for
// S/W.
func parseLatLon(field string, degWidth int) (float64, bool) {
	if len(field) != degWidth+6 {
		return 0, false
	}
	hemi := field[len(field)-1]
	deg, err := strconv.Atoi(field[:degWidth])
	if err != nil {
		return 0, false
	}
	min, err := strconv.ParseFloat(field[degWidth:len(field)-1], 64)
	if err != nil {
		return 0, false
	}
	val := float64(deg) + min/60
	if hemi == 'S' || hemi == 'W' {
		val = -val
	}
	return val, true
}

func usablePHG(phg PHG) bool {
	return phg.Power < 10 && phg.Height < 10 && phg.Gain < 10 && phg.Directivity < 9
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

// BuildStatus renders a ">" status report.
func BuildStatus(text string) string {
	return ">" + text
}

// MessageSeqMax is the wraparound bound for the 3-digit `{nnn}`
// message sequence number.
const MessageSeqMax = 1000

// BuildMessage renders a ":"-format addressed message: the 9-char
// space-padded "CALL-SSID" addressee field, a colon, the message
// text, and a `{seq}` acknowledgement number that wraps at 1000,
// mirroring APRS_sendMsg's packet layout (addressee occupies bytes
// 1..9, colon at byte 10, text from byte 11, `{seq}` appended after).
func BuildMessage(recipient string, recipientSSID int, text string, seq int) string {
	if len(text) > 67 {
		text = text[:67]
	}
	addressee := recipient
	if recipientSSID >= 0 {
		addressee = fmt.Sprintf("%s-%d", recipient, recipientSSID)
	}
	addressee = pad(addressee, 9)

	seq = seq % MessageSeqMax
	return fmt.Sprintf(":%s:%s{%03d", addressee, text, seq)
}

// BuildTelemetry renders a telemetry report "T#seq,a1,a2,a3,a4,a5,b1..b8"
// where analog values a1..a5 and 8 boolean bits b1..b8 follow the
// APRS101 telemetry report format.
func BuildTelemetry(seq int, analog [5]int, digital [8]bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "T#%03d", seq%MessageSeqMax)
	for _, a := range analog {
		fmt.Fprintf(&b, ",%03d", a)
	}
	b.WriteByte(',')
	for _, d := range digital {
		if d {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

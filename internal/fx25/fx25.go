// Package fx25 wraps internal/rs with the FX.25 mode table and
// correlation-tag framing: on TX it picks a mode, pads and RS-encodes
// the bit-stuffed AX.25 frame and prepends the tag; on RX it tracks a
// 64-bit sliding window for a tag match and feeds the recovered bytes
// back to the HDLC layer.
//
// Grounded on doismellburning/samoyed src/fx25_init.go (mode table,
// fx25_pick_mode, fx25_tag_find_match) and src/fx25_rec.go (the
// receive-side tag correlator state machine), with the eleven
// hard-coded correlation tags from spec.md §4.6 kept byte-for-byte for
// interoperability.
package fx25

import (
	"fmt"
	"math/bits"

	"github.com/n0call/samoyed-core/internal/rs"
)

// BlockSize is the fixed RS block size (8-bit symbols): always 255.
const BlockSize = 255

// CloseEnough is the maximum Hamming distance (bits) between a
// received 64-bit window and a table tag still counted as a match
// (I3). Direwolf's long-running field use found 8 a safe threshold at
// 1200 bps.
const CloseEnough = 10

// Mode describes one FX.25 correlation-tag entry: its RS shape and the
// 64-bit tag value sent MSB-first (bit 63 first) ahead of the RS block.
type Mode struct {
	K      int // data bytes
	T      int // parity (check) bytes
	Tag    uint64
	Nroots int // == T, kept for clarity against the generic rs.Codec
}

// Table holds the eleven modes from spec.md §4.6, in the exact order
// interoperability requires; index order doubles as tie-break order
// for Hamming-distance ties (I3).
var Table = []Mode{
	{239, 16, 0xB74DB7DF8A532F3E, 16},
	{128, 16, 0x26FF60A600CC8FDE, 16},
	{64, 16, 0xC7DC0508F3D9B09E, 16},
	{32, 16, 0x8F056EB4369660EE, 16},
	{223, 32, 0x6E260B1AC5835FAE, 32},
	{128, 32, 0xFF94DC634F1CFF4E, 32},
	{64, 32, 0x1EB7B9CDBC09C00E, 32},
	{32, 32, 0xDBF869BD2DBB1776, 32},
	{191, 64, 0x3ADB0C13DEAE2836, 64},
	{128, 64, 0xAB69DB6A543188D6, 64},
	{64, 64, 0x4A4ABEC4A724B796, 64},
}

// codecs caches one rs.Codec per distinct Nroots value (16, 32, 64) so
// the generator polynomial is computed once, mirroring the teacher's
// three precomputed RS control blocks (§4.1's rationale).
var codecs = map[int]*rs.Codec{}

func init() {
	for _, nroots := range []int{16, 32, 64} {
		c, err := rs.NewCodec(nroots)
		if err != nil {
			panic(fmt.Sprintf("fx25: failed to build RS(%d) codec: %v", nroots, err))
		}
		codecs[nroots] = c
	}
}

func codecFor(m Mode) *rs.Codec { return codecs[m.Nroots] }

// ModeForSize selects the smallest mode whose K can hold a payload of
// dlen bytes, per the UZ7HO convention in spec.md §4.6's size table.
// Returns (Mode{}, false) if the payload doesn't fit any mode (caller
// falls back to plain AX.25).
func ModeForSize(dlen int) (Mode, bool) {
	order := []int{3, 2, 5, 8, 4, 0} // table indices in ascending-size preference
	for _, idx := range order {
		if dlen <= Table[idx].K {
			return Table[idx], true
		}
	}
	return Mode{}, false
}

// ModeForTag returns the table row matching a 64-bit correlation tag
// window within CloseEnough bits, tie-broken to the first match in
// table order (I3).
func ModeForTag(window uint64) (Mode, bool) {
	for _, m := range Table {
		if bits.OnesCount64(window^m.Tag) <= CloseEnough {
			return m, true
		}
	}
	return Mode{}, false
}

// Encode pads payload (a complete bit-stuffed AX.25 frame, including
// its own flag padding up to Mode.K bytes) with trailing 0x7E flag
// bytes to exactly m.K bytes, RS-encodes it, and returns the 64-bit
// tag followed by the full RS block — the wire representation
// transmitted as 64 raw bits then m.K+m.T raw bytes, with no HDLC
// bit-stuffing inside the RS block (§4.6).
func Encode(m Mode, payload []byte) (tag uint64, block []byte, err error) {
	if len(payload) > m.K {
		return 0, nil, fmt.Errorf("fx25: payload length %d exceeds mode K=%d", len(payload), m.K)
	}
	padded := make([]byte, m.K)
	copy(padded, payload)
	for i := len(payload); i < m.K; i++ {
		padded[i] = 0x7E
	}
	block, err = codecFor(m).Encode(padded)
	if err != nil {
		return 0, nil, err
	}
	return m.Tag, block, nil
}

// ErrUncorrectable is returned by Decode when the RS block could not
// be repaired.
var ErrUncorrectable = fmt.Errorf("fx25: RS block uncorrectable")

// Decode RS-decodes a received K+T byte block for mode m, returning
// the K data bytes (still flag-padded — callers pass them straight to
// the HDLC deframer per §4.6) and the number of corrected bytes.
func Decode(m Mode, block []byte) (data []byte, fixed int, err error) {
	if len(block) != m.K+m.T {
		return nil, 0, fmt.Errorf("fx25: block length %d, want %d", len(block), m.K+m.T)
	}
	work := append([]byte(nil), block...)
	fixed, err = codecFor(m).Decode(work, m.K)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUncorrectable, err)
	}
	return work[:m.K], fixed, nil
}

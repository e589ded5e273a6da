package engine

import (
	"testing"

	"github.com/n0call/samoyed-core/ax25"
	"github.com/n0call/samoyed-core/internal/hdlc"
	"github.com/stretchr/testify/require"
)

type fx25FakeIO struct{ now uint64 }

func (f *fx25FakeIO) ReadSamples(buf []int16) (int, error) { return 0, nil }
func (f *fx25FakeIO) WriteSample(int16) error               { return nil }
func (f *fx25FakeIO) SetPTT(bool) error                      { return nil }
func (f *fx25FakeIO) NowMS() uint64                          { return f.now }

type fx25Collector struct{ msgs []Msg }

func (c *fx25Collector) OnFrame(m Msg) { c.msgs = append(c.msgs, m) }

func buildFX25TestFrame(t *testing.T) []byte {
	dest, err := ax25.ParseAddress("APRS")
	require.NoError(t, err)
	src, err := ax25.ParseAddress("N0CALL-1")
	require.NoError(t, err)
	frame, err := ax25.Build(dest, src, nil, []byte("=4903.50N/07201.75W-Test"))
	require.NoError(t, err)
	return frame
}

// TestFX25RoundTripThroughEngine mirrors spec.md §8 scenario 3: build
// the wire bitstream EnqueueFrame would have produced with
// FX25Preferred set, corrupt a handful of RS block bytes within the
// mode's correctable range, and feed it through the same bit entry
// point the AFSK demodulator uses. The recovered AX.25 frame must
// still reach the callback and FECUncorrectable must stay at zero.
func TestFX25RoundTripThroughEngine(t *testing.T) {
	io := &fx25FakeIO{}
	cb := &fx25Collector{}
	settings := DefaultSettings()
	settings.FX25Preferred = true
	e := New(io, cb, settings)

	raw := buildFX25TestFrame(t)
	bits, ok := e.buildFX25Bits(hdlc.Encode(raw))
	require.True(t, ok)

	// bits[:64] is the 64-bit tag, fed MSB-first; everything after it
	// is the RS block's bits, packed LSB-first within each byte.
	blockBits := bits[64:]
	blockBytes := hdlc.PackBits(blockBits)
	for i := 0; i < 5; i++ {
		blockBytes[i] ^= 0xFF
	}
	corrupted := append(append([]byte(nil), bits[:64]...), hdlc.UnpackBits(blockBytes)...)

	for _, b := range corrupted {
		e.feedReceivedBit(int(b))
	}

	require.Zero(t, e.Counters.FECUncorrectable)
	require.Len(t, cb.msgs, 1)
	require.Equal(t, "N0CALL", cb.msgs[0].Src.Call)
	require.Equal(t, []byte("=4903.50N/07201.75W-Test"), cb.msgs[0].Info)
}

// TestFX25FallsBackWhenFrameTooLarge confirms buildFX25Bits reports
// ok=false (caller falls back to plain HDLC framing) for a payload too
// large for any table mode.
func TestFX25FallsBackWhenFrameTooLarge(t *testing.T) {
	io := &fx25FakeIO{}
	settings := DefaultSettings()
	settings.FX25Preferred = true
	e := New(io, nil, settings)

	huge := make([]byte, 4000)
	_, ok := e.buildFX25Bits(hdlc.Encode(huge))
	require.False(t, ok)
}

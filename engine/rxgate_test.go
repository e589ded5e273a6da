package engine

import (
	"testing"

	"github.com/n0call/samoyed-core/afsk"
	"github.com/n0call/samoyed-core/ax25"
	"github.com/n0call/samoyed-core/internal/hdlc"
	"github.com/n0call/samoyed-core/txsched"
	"github.com/stretchr/testify/require"
)

type rxgateFakeIO struct{ now uint64 }

func (f *rxgateFakeIO) ReadSamples(buf []int16) (int, error) { return 0, nil }
func (f *rxgateFakeIO) WriteSample(int16) error               { return nil }
func (f *rxgateFakeIO) SetPTT(bool) error                      { return nil }
func (f *rxgateFakeIO) NowMS() uint64                          { return f.now }

type rxgateCollector struct{ msgs []Msg }

func (c *rxgateCollector) OnFrame(m Msg) { c.msgs = append(c.msgs, m) }

func rxgateSamples(t *testing.T) []int16 {
	dest, err := ax25.ParseAddress("APRS")
	require.NoError(t, err)
	src, err := ax25.ParseAddress("N0CALL-1")
	require.NoError(t, err)
	raw, err := ax25.Build(dest, src, nil, []byte("=4903.50N/07201.75W-Test"))
	require.NoError(t, err)

	mod := afsk.NewModulator(afsk.Baud1200)
	preamble := mod.SendFlags(200)
	payload := mod.SendFrame(hdlc.Encode(raw))
	trailer := mod.SendFlags(100)
	return append(append(preamble, payload...), trailer...)
}

// TestProcessSamplesSuppressedWhileTransmittingUnlessFullDuplex checks
// invariant I6 (spec.md:67): RX must be gated off while this channel's
// TX scheduler is not Idle, unless FullDuplex is set, mirroring
// txsched_test.go's TestFullDuplexSkipsDCDCheck style.
func TestProcessSamplesSuppressedWhileTransmittingUnlessFullDuplex(t *testing.T) {
	io := &rxgateFakeIO{}
	cb := &rxgateCollector{}
	e := New(io, cb, DefaultSettings())
	e.tx.Settings.PersistenceP = 0 // only a roll of 0 wins the slot
	e.Settings.TX = e.tx.Settings

	require.NoError(t, e.EnqueueFrame([]byte{0x01}))
	e.Tick(0)
	require.NotEqual(t, txsched.Idle, e.tx.Phase(), "scheduler must have left Idle")

	samples := rxgateSamples(t)
	feedInBlocks(e, samples)
	require.Empty(t, cb.msgs, "RX must be suppressed while transmitting in half duplex")

	e.tx.Settings.FullDuplex = true
	feedInBlocks(e, samples)
	require.Len(t, cb.msgs, 1, "full duplex must let RX through while transmitting")
}

func feedInBlocks(e *Engine, samples []int16) {
	const block = 64
	for i := 0; i < len(samples); i += block {
		end := i + block
		if end > len(samples) {
			end = len(samples)
		}
		e.ProcessSamples(samples[i:end])
	}
}

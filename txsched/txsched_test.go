package txsched_test

import (
	"testing"

	"github.com/n0call/samoyed-core/txsched"
	"github.com/stretchr/testify/require"
)

type fakeModulator struct {
	flagRuns []int
	frames   [][]byte
}

func (f *fakeModulator) SendFlags(ms int)       { f.flagRuns = append(f.flagRuns, ms) }
func (f *fakeModulator) SendFrame(frame []byte) { f.frames = append(f.frames, frame) }

func TestEnqueueFullReturnsTxBusy(t *testing.T) {
	mod := &fakeModulator{}
	var ptt bool
	now := uint64(0)
	s := txsched.New(txsched.Channel{
		SetPTT:  func(on bool) { ptt = on },
		DCD:     func() bool { return false },
		NowMS:   func() uint64 { return now },
		RandPct: func() byte { return 255 }, // never wins the slot, so the queue stays full
	}, mod)
	_ = ptt

	for i := 0; i < txsched.QueueCapacity; i++ {
		require.NoError(t, s.EnqueueFrame([]byte{byte(i)}))
	}
	err := s.EnqueueFrame([]byte{0xFF})
	require.ErrorIs(t, err, txsched.ErrQueueFull)
}

func TestDCDHoldsWaitSlotUntilClear(t *testing.T) {
	mod := &fakeModulator{}
	dcd := true
	now := uint64(0)
	s := txsched.New(txsched.Channel{
		SetPTT:  func(bool) {},
		DCD:     func() bool { return dcd },
		NowMS:   func() uint64 { return now },
		RandPct: func() byte { return 0 }, // always "wins" once DCD clears
	}, mod)
	s.Settings.SlotTimeMS = 100

	require.NoError(t, s.EnqueueFrame([]byte{0x01}))
	require.Equal(t, txsched.WaitSlot, s.Phase())

	now = 100
	s.Tick(now)
	require.Equal(t, txsched.WaitSlot, s.Phase(), "DCD asserted and not full-duplex: must stay in WaitSlot")

	dcd = false
	now = 200
	s.Tick(now)
	require.Equal(t, txsched.Cooldown, s.Phase())
	require.Len(t, mod.frames, 1)
}

func TestPersistenceGatesTransmission(t *testing.T) {
	mod := &fakeModulator{}
	now := uint64(0)
	s := txsched.New(txsched.Channel{
		SetPTT:  func(bool) {},
		DCD:     func() bool { return false },
		NowMS:   func() uint64 { return now },
		RandPct: func() byte { return 200 }, // > default p=63, loses every roll
	}, mod)

	require.NoError(t, s.EnqueueFrame([]byte{0x01}))
	for i := 0; i < 5; i++ {
		now += uint64(s.Settings.SlotTimeMS)
		s.Tick(now)
	}
	require.Equal(t, txsched.WaitSlot, s.Phase())
	require.Empty(t, mod.frames)
}

func TestFullDuplexSkipsDCDCheck(t *testing.T) {
	mod := &fakeModulator{}
	now := uint64(0)
	s := txsched.New(txsched.Channel{
		SetPTT:  func(bool) {},
		DCD:     func() bool { return true }, // busy, but full duplex ignores it
		NowMS:   func() uint64 { return now },
		RandPct: func() byte { return 0 },
	}, mod)
	s.Settings.FullDuplex = true

	require.NoError(t, s.EnqueueFrame([]byte{0x01}))
	now += uint64(s.Settings.SlotTimeMS)
	s.Tick(now)
	require.Equal(t, txsched.Cooldown, s.Phase())
}

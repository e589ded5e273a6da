// Package txsched implements the p-persistence CSMA transmit scheduler
// that arbitrates a single shared channel between the KISS host's
// outbound frames: wait for a clear channel, roll the dice each slot,
// key up, drain the queue, tail off, cool down.
//
// Grounded on doismellburning/samoyed src/xmit.go (wait_for_clear_channel,
// the TXDELAY/PERSIST/SLOTTIME/TXTAIL settings and their BITS_TO_MS/
// MS_TO_BITS conversions) and src/ptt.go's PTT ownership discipline,
// reworked from the teacher's thread-plus-global-queue-per-channel
// design into an explicit state machine driven by an external Tick,
// matching spec §5's "single-threaded cooperative... polling loop" model.
package txsched

import (
	"errors"
	"math/rand"
)

// Phase is one state of the §4.8 state machine.
type Phase int

const (
	Idle Phase = iota
	WaitSlot
	KeyingUp
	Sending
	TailTx
	Cooldown
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case WaitSlot:
		return "WaitSlot"
	case KeyingUp:
		return "KeyingUp"
	case Sending:
		return "Sending"
	case TailTx:
		return "TailTx"
	case Cooldown:
		return "Cooldown"
	default:
		return "Unknown"
	}
}

// ErrQueueFull is TxBusy (§7): EnqueueFrame fails visibly to the host
// rather than blocking or silently dropping.
var ErrQueueFull = errors.New("txsched: outbound queue full")

// QueueCapacity is the recommended bound on outstanding frames (§4.8).
const QueueCapacity = 8

// Defaults per §4.8.
const (
	DefaultTXDelayMS   = 500
	DefaultTXTailMS    = 50
	DefaultSlotTimeMS  = 100
	DefaultPersistence = 63
)

// Modulator is the capability the scheduler drives once it has won the
// channel: emit a run of flag bytes (TXDelay/TXTail), then hand frames
// to the HDLC+AFSK chain one at a time.
type Modulator interface {
	SendFlags(ms int)
	SendFrame(frameBits []byte)
}

// Channel is the injected view of the shared medium and PTT line; the
// scheduler is its sole owner per spec §5 ("The PTT GPIO is owned
// solely by the TX scheduler").
type Channel struct {
	SetPTT  func(on bool)
	DCD     func() bool
	NowMS   func() uint64
	RandPct func() byte // a fresh uniform byte in [0,255], §4.8's "draw r"
}

// Settings mirrors §3's TX scheduler state fields that a KISS host can
// adjust live (§6: "Values set by KISS commands are authoritative").
type Settings struct {
	TXDelayMS    int
	TXTailMS     int
	SlotTimeMS   int
	PersistenceP byte
	FullDuplex   bool
}

// DefaultSettings returns the §4.8 defaults.
func DefaultSettings() Settings {
	return Settings{
		TXDelayMS:    DefaultTXDelayMS,
		TXTailMS:     DefaultTXTailMS,
		SlotTimeMS:   DefaultSlotTimeMS,
		PersistenceP: DefaultPersistence,
	}
}

// Scheduler owns the CSMA state machine for one channel.
type Scheduler struct {
	Settings Settings

	ch  Channel
	mod Modulator

	phase        Phase
	queue        [][]byte
	slotDeadline uint64
	tailDeadline uint64
	cooldownEnd  uint64
}

// New builds a Scheduler bound to ch and mod with default settings.
func New(ch Channel, mod Modulator) *Scheduler {
	if ch.RandPct == nil {
		ch.RandPct = func() byte { return byte(rand.Intn(256)) }
	}
	return &Scheduler{Settings: DefaultSettings(), ch: ch, mod: mod, phase: Idle}
}

// Phase reports the current state.
func (s *Scheduler) Phase() Phase { return s.phase }

// QueueLen reports frames waiting to be sent (not counting one in
// flight mid-Sending).
func (s *Scheduler) QueueLen() int { return len(s.queue) }

// EnqueueFrame adds a fully HDLC-encoded bit stream (output of
// hdlc.Encode) to the outbound queue in FIFO order, moving Idle to
// WaitSlot. Returns ErrQueueFull (TxBusy) without queuing if the
// bounded queue is already full (§4.8 back-pressure, §7).
func (s *Scheduler) EnqueueFrame(frameBits []byte) error {
	if len(s.queue) >= QueueCapacity {
		return ErrQueueFull
	}
	s.queue = append(s.queue, frameBits)
	if s.phase == Idle {
		s.phase = WaitSlot
		s.slotDeadline = s.ch.NowMS() + uint64(s.Settings.SlotTimeMS)
	}
	return nil
}

// Tick advances the state machine; call it at least as often as
// SlotTimeMS so slot boundaries aren't missed. now is the caller's
// current time in the same units as Channel.NowMS.
func (s *Scheduler) Tick(now uint64) {
	switch s.phase {
	case Idle:
		// Nothing to do; EnqueueFrame is the only way out.

	case WaitSlot:
		if now < s.slotDeadline {
			return
		}
		s.slotDeadline = now + uint64(s.Settings.SlotTimeMS)
		busy := s.ch.DCD != nil && s.ch.DCD()
		if busy && !s.Settings.FullDuplex {
			return // reschedule: stay in WaitSlot for the next slot
		}
		r := s.ch.RandPct()
		if int(r) <= int(s.Settings.PersistenceP) {
			s.beginKeyUp(now)
		}
		// else: reschedule, try again next slot

	case KeyingUp:
		// KeyingUp and Sending are driven synchronously from
		// beginKeyUp in this cooperative model; Tick has
		// nothing further to do while a transmission is in flight.

	case Sending:

	case TailTx:
		if now >= s.tailDeadline {
			s.phase = Cooldown
			s.ch.SetPTT(false)
			s.cooldownEnd = now + uint64(s.Settings.SlotTimeMS)
		}

	case Cooldown:
		if now >= s.cooldownEnd {
			s.phase = Idle
		}
	}
}

// beginKeyUp asserts PTT, emits the TXDelay flag run, drains the
// queue frame-by-frame, then hands off to the TailTx tail flags. This
// runs to completion synchronously (§5: "Cancellation: there is no
// cancellation of a frame once Sending begins").
func (s *Scheduler) beginKeyUp(now uint64) {
	s.phase = KeyingUp
	s.ch.SetPTT(true)
	s.mod.SendFlags(s.Settings.TXDelayMS)

	s.phase = Sending
	for len(s.queue) > 0 {
		frame := s.queue[0]
		s.queue = s.queue[1:]
		s.mod.SendFrame(frame)
	}

	s.phase = TailTx
	s.mod.SendFlags(s.Settings.TXTailMS)
	s.tailDeadline = now + uint64(s.Settings.TXTailMS)
}

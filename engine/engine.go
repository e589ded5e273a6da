// Package engine wires the RS, HDLC, AFSK, AX.25, FX.25, KISS and
// txsched packages into the explicit Engine value named by spec §9:
// no process-wide globals, one owned sub-value per subsystem, and
// every counter from §7 exposed as a plain field.
//
// Grounded on doismellburning/samoyed's per-channel dispatch in
// src/multi_modem.go and src/tq.go (the demod-to-HDLC-to-callback
// wiring and the transmit queue feeding the scheduler), reworked from
// MAX_RADIO_CHANS-sized global arrays into one Engine per channel,
// with charmbracelet/log sub-loggers in place of the teacher's direct
// text_color_set/dw_printf console writes.
package engine

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"

	"github.com/n0call/samoyed-core/afsk"
	"github.com/n0call/samoyed-core/ax25"
	"github.com/n0call/samoyed-core/internal/fx25"
	"github.com/n0call/samoyed-core/internal/hdlc"
	"github.com/n0call/samoyed-core/kiss"
	"github.com/n0call/samoyed-core/txsched"
)

// Msg is the parsed frame handed to the APRS callback boundary (§6).
// RSSIMV is left at zero when the SignalIO implementation doesn't
// report signal strength.
type Msg struct {
	Src    ax25.Address
	Dst    ax25.Address
	Path   []ax25.Address
	Info   []byte
	RSSIMV float64
}

// FrameCallback is the injected capability fired once per successfully
// decoded frame (§6, §9's "no return value"). Implementations must not
// block the pipeline.
type FrameCallback interface {
	OnFrame(Msg)
}

// FrameCallbackFunc adapts a plain function to FrameCallback.
type FrameCallbackFunc func(Msg)

// OnFrame implements FrameCallback.
func (f FrameCallbackFunc) OnFrame(m Msg) { f(m) }

// SignalIO is the injected hardware capability (§6): sample I/O, PTT
// and a monotonic millisecond clock.
type SignalIO interface {
	ReadSamples(buf []int16) (n int, err error)
	WriteSample(s int16) error
	SetPTT(on bool) error
	NowMS() uint64
}

// ByteStream is the injected KISS transport capability (§6).
type ByteStream interface {
	ReadByte() (b byte, ok bool)
	WriteBytes(p []byte) error
}

// Settings is the single struct both a configuration loader and KISS
// command handlers write to (§6: "any configuration loader writes to
// the same settings struct").
type Settings struct {
	Baud          afsk.Baud
	FX25Preferred bool
	TX            txsched.Settings
}

// DefaultSettings returns the §4.8 defaults at 1200 Bd with FX.25 off.
func DefaultSettings() Settings {
	return Settings{Baud: afsk.Baud1200, TX: txsched.DefaultSettings()}
}

// Counters tallies the §7 error kinds, each incremented exactly once
// per occurrence and never reset by recovery.
type Counters struct {
	BadCRC           uint64
	TooLong          uint64
	BitAbort         uint64
	FECUncorrectable uint64
	KISSProtocol     uint64
	TxBusy           uint64
}

// Engine owns every subsystem's state for one channel: the §9
// "explicit Engine value" replacing the teacher's global arrays.
type Engine struct {
	Settings Settings
	Counters Counters

	demod *afsk.Demodulator
	mod   *afsk.Modulator
	hd    *hdlc.Decoder
	fxc   *fx25.Correlator
	kiss  *kiss.Parser
	tx    *txsched.Scheduler

	io       SignalIO
	callback FrameCallback

	log      *log.Logger
	logDemod *log.Logger
	logHDLC  *log.Logger
	logFX25  *log.Logger
	logKISS  *log.Logger
	logXmit  *log.Logger
}

// noopSignalIO stands in for a caller that only feeds KISS bytes
// directly (e.g. a pure monitor with no attached radio), so New never
// has to guard against a nil SignalIO at every call site.
type noopSignalIO struct{}

func (noopSignalIO) ReadSamples(buf []int16) (int, error) { return 0, nil }
func (noopSignalIO) WriteSample(int16) error               { return nil }
func (noopSignalIO) SetPTT(bool) error                      { return nil }
func (noopSignalIO) NowMS() uint64                          { return 0 }

// hdlcBitSink adapts the Engine's receive bit dispatch into an
// afsk.BitSink.
type hdlcBitSink struct{ e *Engine }

func (s hdlcBitSink) FeedBit(bit int) { s.e.feedReceivedBit(bit) }

// New builds an Engine bound to io (samples/PTT/clock) and cb (the
// decoded-frame callback), with settings for the initial baud rate and
// TX scheduler parameters.
func New(io SignalIO, cb FrameCallback, settings Settings) *Engine {
	if io == nil {
		io = noopSignalIO{}
	}
	base := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	e := &Engine{
		Settings: settings,
		io:       io,
		callback: cb,

		demod: afsk.NewDemodulator(settings.Baud),
		mod:   afsk.NewModulator(settings.Baud),
		hd:    hdlc.NewDecoder(),
		fxc:   fx25.NewCorrelator(),
		kiss:  kiss.NewParser(),

		log:      base,
		logDemod: base.WithPrefix("engine.demod"),
		logHDLC:  base.WithPrefix("engine.hdlc"),
		logFX25:  base.WithPrefix("engine.fx25"),
		logKISS:  base.WithPrefix("engine.kiss"),
		logXmit:  base.WithPrefix("engine.xmit"),
	}

	e.tx = txsched.New(txsched.Channel{
		SetPTT: func(on bool) {
			if err := io.SetPTT(on); err != nil {
				e.logXmit.Error("set ptt failed", "err", err)
			}
		},
		DCD:   e.demod.DCD,
		NowMS: io.NowMS,
	}, modulatorAdapter{e})
	e.tx.Settings = settings.TX

	e.demod.AddSink(hdlcBitSink{e})
	e.kiss.SetHardwareHandler = func(payload []byte) {
		e.logKISS.Debug("sethardware", "len", len(payload))
	}

	return e
}

// modulatorAdapter satisfies txsched.Modulator by writing samples
// straight to the Engine's SignalIO as they're synthesized, rather
// than building the whole clip in memory first.
type modulatorAdapter struct{ e *Engine }

func (m modulatorAdapter) SendFlags(ms int) {
	for _, s := range m.e.mod.SendFlags(ms) {
		if err := m.e.io.WriteSample(s); err != nil {
			m.e.logXmit.Error("write sample failed", "err", err)
			return
		}
	}
}

func (m modulatorAdapter) SendFrame(frameBits []byte) {
	for _, s := range m.e.mod.SendFrame(frameBits) {
		if err := m.e.io.WriteSample(s); err != nil {
			m.e.logXmit.Error("write sample failed", "err", err)
			return
		}
	}
}

// feedReceivedBit dispatches one demodulated bit to both the FX.25
// tag correlator and the HDLC deframer, per §4.6: the correlator
// always sees every bit while scanning for a tag, but once a tag
// matches, the following K+T bytes are raw RS-block data that must
// NOT also reach the HDLC deframer ("HDLC stuffing does NOT apply
// inside the RS block").
func (e *Engine) feedReceivedBit(bit int) {
	wasCollecting := e.fxc.Collecting()
	res, done := e.fxc.FeedBit(bit)

	if wasCollecting {
		if done {
			e.handleFX25Result(res)
		}
		return
	}

	e.feedHDLCBit(bit)
}

// handleFX25Result processes one completed FX.25 block: on success,
// the recovered K bytes (still flag-padded) are fed bit-by-bit into
// the HDLC deframer "as if received cleanly" (§4.6); on failure,
// §7's FECUncorrectable is counted and nothing further happens here —
// there is no raw-AX.25 fallback for data that never produced a valid
// HDLC frame in the first place, since it was never HDLC-framed.
func (e *Engine) handleFX25Result(res fx25.Result) {
	if res.Err != nil {
		e.Counters.FECUncorrectable++
		e.logFX25.Debug("fx25 uncorrectable")
		return
	}
	e.logFX25.Debug("fx25 decoded", "fixed", res.Fixed)
	for _, bit := range hdlc.UnpackBits(res.Data) {
		e.feedHDLCBit(int(bit))
	}
}

// feedHDLCBit runs one bit through the HDLC deframer, counting the
// §7 recoverable error kinds and delivering any closed frame.
func (e *Engine) feedHDLCBit(bit int) {
	frame, err := e.hd.FeedBit(bit)
	if err != nil {
		switch {
		case errors.Is(err, hdlc.ErrBadCRC):
			e.Counters.BadCRC++
			e.logHDLC.Debug("bad crc")
		case errors.Is(err, hdlc.ErrTooLong):
			e.Counters.TooLong++
			e.logHDLC.Debug("frame too long")
		case errors.Is(err, hdlc.ErrBitAbort):
			e.Counters.BitAbort++
			e.logHDLC.Debug("bit abort")
		}
		return
	}
	if frame == nil {
		return
	}
	e.parseAndDeliver(frame)
}

func (e *Engine) parseAndDeliver(raw []byte) {
	f, err := ax25.Parse(raw)
	if err != nil {
		return
	}
	if e.callback != nil {
		e.callback.OnFrame(Msg{Src: f.Src, Dst: f.Dest, Path: f.Path, Info: f.Info})
	}
}

// ProcessSamples feeds one block of raw samples from SignalIO through
// the demodulator; call this from the receive loop. Per §3 invariant
// I6, samples are dropped while this channel is transmitting unless
// FullDuplex is set — the receiver mustn't hear its own transmission.
func (e *Engine) ProcessSamples(samples []int16) {
	if e.tx.Phase() != txsched.Idle && !e.tx.Settings.FullDuplex {
		return
	}
	e.demod.ProcessBlock(samples)
}

// FeedReceivedBit injects one already-recovered NRZI bit directly into
// the receive pipeline (FX.25 correlator, then HDLC deframer),
// bypassing the analog demodulator. Used by alternate SignalIO sources
// that deliver digital bits rather than samples (e.g. a direct
// baseband tap) and by tests.
func (e *Engine) FeedReceivedBit(bit int) {
	e.feedReceivedBit(bit)
}

// EnqueueFrame hands a built AX.25 frame to the HDLC encoder and TX
// scheduler, returning txsched.ErrQueueFull (TxBusy, §7) unchanged if
// the outbound queue is full. When Settings.FX25Preferred is set, the
// bit-stuffed frame is wrapped in an FX.25 correlation tag and RS block
// instead, per §4.6 — the tag is sent as 64 raw (unstuffed) bits
// immediately followed by the RS block's raw bytes, with no HDLC
// bit-stuffing inside either. If the frame doesn't fit any table mode,
// it falls back to plain HDLC framing silently.
func (e *Engine) EnqueueFrame(ax25Frame []byte) error {
	bits := hdlc.Encode(ax25Frame)

	if e.Settings.FX25Preferred {
		if fxBits, ok := e.buildFX25Bits(bits); ok {
			bits = fxBits
		}
	}

	if err := e.tx.EnqueueFrame(bits); err != nil {
		e.Counters.TxBusy++
		e.logXmit.Debug("tx busy")
		return err
	}
	return nil
}

// buildFX25Bits wraps a bit-stuffed HDLC frame (one bit per byte, as
// returned by hdlc.Encode) in an FX.25 correlation tag and RS block.
// The RS-protected payload itself carries its own opening and closing
// 0x7E flags — unstuffed, at the start and end of the bit-stuffed
// frame — so the recovered bytes reopen and close a frame in the HDLC
// deframer exactly as a normal over-the-air frame would; the remainder
// is filled with a continuing 0x7E bit-rotation (not a zero pad) so no
// partial flag byte is corrupted when the bit count doesn't land on a
// byte boundary. Returns ok=false if the frame doesn't fit any table
// mode, in which case the caller should transmit stuffedBits unwrapped.
func (e *Engine) buildFX25Bits(stuffedBits []byte) (wireBits []byte, ok bool) {
	core := append(append(hdlc.FlagBits(1), stuffedBits...), hdlc.FlagBits(1)...)
	meaningfulLen := (len(core) + 7) / 8

	mode, ok := fx25.ModeForSize(meaningfulLen)
	if !ok {
		e.logFX25.Debug("frame too large for any fx25 mode, sending plain hdlc", "len", meaningfulLen)
		return nil, false
	}

	padded := make([]byte, len(core), mode.K*8)
	copy(padded, core)
	for pos := 0; len(padded) < mode.K*8; pos = (pos + 1) % 8 {
		padded = append(padded, (flagByte>>uint(pos))&1)
	}

	tag, block, err := fx25.Encode(mode, hdlc.PackBits(padded))
	if err != nil {
		e.logFX25.Error("fx25 encode failed", "err", err)
		return nil, false
	}

	out := make([]byte, 0, 64+len(block)*8)
	for i := 63; i >= 0; i-- {
		out = append(out, byte((tag>>uint(i))&1))
	}
	out = append(out, hdlc.UnpackBits(block)...)
	return out, true
}

const flagByte = 0x7E

// Tick advances the TX scheduler's state machine; call it at least as
// often as the scheduler's SlotTimeMS.
func (e *Engine) Tick(nowMS uint64) {
	e.tx.Tick(nowMS)
}

// FeedKISSByte runs one byte from a ByteStream through the KISS
// parser, dispatching DATA frames to EnqueueFrame and parameter
// commands into Settings.TX, matching §4.7's command table.
func (e *Engine) FeedKISSByte(b byte) {
	f, err := e.kiss.Feed(b)
	if err != nil {
		e.Counters.KISSProtocol++
		e.logKISS.Debug("kiss protocol error")
		return
	}
	if f == nil {
		return
	}
	e.dispatchKISSFrame(*f)
}

// dispatchKISSFrame applies a decoded KISS frame's command, clamping
// out-of-range parameter bytes silently (§7 ConfigOutOfRange).
func (e *Engine) dispatchKISSFrame(f kiss.Frame) {
	switch f.Cmd {
	case kiss.CmdDataFrame:
		if err := e.EnqueueFrame(f.Payload); err != nil {
			e.logKISS.Debug("enqueue from kiss failed", "err", err)
		}
	case kiss.CmdTXDelay:
		if v, ok := kiss.ParamByte(f.Payload); ok {
			e.tx.Settings.TXDelayMS = int(v) * 10
		}
	case kiss.CmdPersistence:
		if v, ok := kiss.ParamByte(f.Payload); ok {
			e.tx.Settings.PersistenceP = v
		}
	case kiss.CmdSlotTime:
		if v, ok := kiss.ParamByte(f.Payload); ok {
			e.tx.Settings.SlotTimeMS = int(v) * 10
		}
	case kiss.CmdTXTail:
		if v, ok := kiss.ParamByte(f.Payload); ok {
			e.tx.Settings.TXTailMS = int(v) * 10
		}
	case kiss.CmdFullDuplex:
		if v, ok := kiss.ParamByte(f.Payload); ok {
			e.tx.Settings.FullDuplex = v != 0
		}
	case kiss.CmdSetHardware:
		if e.kiss.SetHardwareHandler != nil {
			e.kiss.SetHardwareHandler(f.Payload)
		}
	case kiss.CmdReturn:
		e.log.Debug("kiss return")
	default:
		e.Counters.KISSProtocol++
		e.logKISS.Debug("unknown kiss command", "cmd", f.Cmd)
	}
	e.Settings.TX = e.tx.Settings
}

// WriteKISSDataFrame encodes and writes a received AX.25 frame to the
// host as a KISS DATA command (single port, port nibble always 0 per
// §9's "MicroModem strips the port nibble").
func WriteKISSDataFrame(bs ByteStream, payload []byte) error {
	return bs.WriteBytes(kiss.Wrap(kiss.CmdDataFrame, 0, payload))
}

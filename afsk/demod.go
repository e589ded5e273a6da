// Package afsk implements the AFSK/FSK modem front-end: the
// demodulator (resampling is the caller's job via SampleRate; DC
// removal, AGC, tone correlation/direct slicing, NRZI recovery and
// carrier detect) and the modulator (tone synthesis, NRZI encode,
// preamble/tail framing).
//
// Grounded on doismellburning/samoyed src/demod_afsk.go (the AGC gain
// update and mark/space correlator shape) and src/demod_9600.go (the
// G3RUH scrambled path), reworked from the teacher's
// MAX_RADIO_CHANS/MAX_SUBCHANS/MAX_SLICERS global arrays into one
// Demodulator value per spec §9, with bit output delivered through an
// injected BitSink instead of a C function pointer.
package afsk

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Baud identifies one of the three supported signalling rates (§4.3).
type Baud int

const (
	Baud300  Baud = 300
	Baud1200 Baud = 1200
	Baud9600 Baud = 9600
)

// Profile bundles the tone pair and sample rate conventions for a
// baud rate, per the table in §4.3.
type Profile struct {
	Baud       Baud
	SampleRate int
	MarkHz     float64
	SpaceHz    float64
}

// Profiles are the three signalling profiles named in spec.md §4.3.
var Profiles = map[Baud]Profile{
	Baud300:  {Baud300, 28800, 1600, 1800},
	Baud1200: {Baud1200, 19200, 1200, 2200},
	Baud9600: {Baud9600, 38400, 0, 0}, // G3RUH: no tone pair, direct baseband slicing
}

// AGC constants from §4.3.
const (
	agcTarget  = 0.2
	agcAttack  = 0.02
	agcRelease = 0.001
	agcMin     = 0.1
	agcMax     = 10.0
)

// dcAvgN is TCB_AVG_N, the running-mean window for DC offset removal.
const dcAvgN = 125

// DCD thresholds, in millivolts RMS, per §4.3.
const (
	dcdAssertMV  = 10.0
	dcdDeassertMV = 5.0
)

// BitSink receives one NRZI-decoded bit at a time. The demodulator
// fans each bit out to both the HDLC deframer and the FX.25 tag
// correlator in parallel (§4.3).
type BitSink interface {
	FeedBit(bit int)
}

// Demodulator holds all per-instance receive state (§3 "Demodulator
// state"). Build one per physical channel/subchannel.
type Demodulator struct {
	profile Profile

	dcHistory [dcAvgN]float64
	dcSum     float64
	dcIdx     int
	dcFilled  bool

	gain float64

	// Correlator phase accumulators for 1200/300 Bd tone detection.
	markPhase  float64
	spacePhase float64

	lastDiff    float64
	lastSymbol  int
	symbolPhase float64
	samplesPerSymbol float64

	// 9600 Bd descrambler shift register (x^17+x^12+1, per
	// original_source/components/APRSlib/modem/afsk.c's G3RUH path).
	scramblerState uint32

	dcdCounter int
	dcdOn      bool

	sinks []BitSink
}

// NewDemodulator builds a Demodulator for the given baud rate.
func NewDemodulator(baud Baud) *Demodulator {
	p := Profiles[baud]
	return &Demodulator{
		profile:          p,
		gain:             1.0,
		samplesPerSymbol: float64(p.SampleRate) / float64(baud),
	}
}

// AddSink registers a bit consumer (HDLC deframer, FX.25 correlator, ...).
func (d *Demodulator) AddSink(s BitSink) { d.sinks = append(d.sinks, s) }

// Gain reports the current AGC gain, always within [0.1, 10] (§8).
func (d *Demodulator) Gain() float64 { return d.gain }

// DCD reports the current carrier-detect state.
func (d *Demodulator) DCD() bool {
	if d.profile.Baud == Baud9600 {
		return true // squelch-gated externally, per §4.3
	}
	return d.dcdOn
}

// removeDC updates the running mean over the last dcAvgN samples and
// returns the DC-corrected sample.
func (d *Demodulator) removeDC(sample float64) float64 {
	if d.dcFilled {
		d.dcSum -= d.dcHistory[d.dcIdx]
	}
	d.dcHistory[d.dcIdx] = sample
	d.dcSum += sample
	d.dcIdx++
	if d.dcIdx == dcAvgN {
		d.dcIdx = 0
		d.dcFilled = true
	}
	n := dcAvgN
	if !d.dcFilled {
		n = d.dcIdx
		if n == 0 {
			n = 1
		}
	}
	mean := d.dcSum / float64(n)
	return sample - mean
}

// updateAGC applies the block-RMS gain update from §4.3 and clamps to
// [0.1, 10] regardless of input (an §8 universal invariant).
func (d *Demodulator) updateAGC(blockRMS float64) {
	if blockRMS <= 0 {
		return
	}
	rate := agcRelease
	if blockRMS > agcTarget/d.gain {
		rate = agcAttack
	}
	target := d.gain * (agcTarget / blockRMS)
	d.gain = d.gain*(1-rate) + target*rate
	if d.gain < agcMin {
		d.gain = agcMin
	}
	if d.gain > agcMax {
		d.gain = agcMax
	}
}

// updateDCD adjusts the carrier-detect counter from an RMS-in-mV
// estimate, clamped 0..100 and never reset by a framing error (§4.3).
func (d *Demodulator) updateDCD(rmsMV float64) {
	switch {
	case rmsMV > dcdAssertMV:
		d.dcdCounter++
	case rmsMV < dcdDeassertMV:
		d.dcdCounter--
	}
	if d.dcdCounter < 0 {
		d.dcdCounter = 0
	}
	if d.dcdCounter > 100 {
		d.dcdCounter = 100
	}
	d.dcdOn = d.dcdCounter > 3
}

func (d *Demodulator) emit(bit int) {
	for _, s := range d.sinks {
		s.FeedBit(bit)
	}
}

// ProcessBlock runs one block of signed samples (centered near zero,
// §6's SignalIO contract) through DC removal, AGC and the baud-specific
// slicer, emitting NRZI bits to every registered sink.
func (d *Demodulator) ProcessBlock(samples []int16) {
	if len(samples) == 0 {
		return
	}

	corrected := make([]float64, len(samples))
	for i, s := range samples {
		corrected[i] = d.removeDC(float64(s))
	}
	sumSq := floats.Dot(corrected, corrected)
	rms := math.Sqrt(sumSq / float64(len(samples)))
	d.updateAGC(rms / 2048.0) // normalize 12-bit sample range to ~[0,1]
	d.updateDCD(rms / 2048.0 * 775.0) // rough 12-bit-count to mV scale for a nominal front end

	switch d.profile.Baud {
	case Baud9600:
		d.process9600(corrected)
	default:
		d.processToneCorrelated(corrected)
	}
}

// processToneCorrelated implements the 1200/300 Bd mark/space
// correlator and zero-crossing NRZI slicer with a bounded symbol-sync
// PLL correction, per §4.3.
func (d *Demodulator) processToneCorrelated(samples []float64) {
	markInc := 2 * math.Pi * d.profile.MarkHz / float64(d.profile.SampleRate)
	spaceInc := 2 * math.Pi * d.profile.SpaceHz / float64(d.profile.SampleRate)

	for _, s := range samples {
		v := s * d.gain

		markCorr := v * math.Cos(d.markPhase)
		spaceCorr := v * math.Cos(d.spacePhase)
		d.markPhase += markInc
		d.spacePhase += spaceInc
		if d.markPhase > 2*math.Pi {
			d.markPhase -= 2 * math.Pi
		}
		if d.spacePhase > 2*math.Pi {
			d.spacePhase -= 2 * math.Pi
		}

		diff := markCorr - spaceCorr

		d.symbolPhase += 1.0 / d.samplesPerSymbol
		if sign(diff) != sign(d.lastDiff) {
			// Zero crossing: nudge the symbol clock toward center,
			// bounded the way a PLL's correction is bounded.
			const adjust = 0.5
			if d.symbolPhase > 0.5 {
				d.symbolPhase -= adjust * (d.symbolPhase - 0.5)
			} else {
				d.symbolPhase += adjust * (0.5 - d.symbolPhase)
			}
		}
		d.lastDiff = diff

		if d.symbolPhase >= 1.0 {
			d.symbolPhase -= 1.0
			symbol := 0
			if diff > 0 {
				symbol = 1
			}
			// NRZI: no tone change (symbol matches last) => 1-bit;
			// tone flip => 0-bit.
			bit := 1
			if symbol != d.lastSymbol {
				bit = 0
			}
			d.lastSymbol = symbol
			d.emit(bit)
		}
	}
}

// process9600 implements the G3RUH scrambled-NRZI direct baseband
// slicer: no tone correlator, just a sign slicer on the AGC'd sample
// feeding the descrambler.
func (d *Demodulator) process9600(samples []float64) {
	for _, s := range samples {
		v := s * d.gain
		raw := 0
		if v > 0 {
			raw = 1
		}
		bit := d.descramble(raw)
		d.emit(bit)
	}
}

// descramble undoes the G3RUH self-synchronizing scrambler, polynomial
// x^17+x^12+1, matching original_source's afsk.c G3RUH path (taps 16
// and 11 of a 17-bit shift register, 0-indexed).
func (d *Demodulator) descramble(in int) int {
	out := (in ^ int(d.scramblerState>>16) ^ int(d.scramblerState>>11)) & 1
	d.scramblerState = (d.scramblerState << 1) | uint32(in&1)
	return out
}

func sign(f float64) int {
	if f >= 0 {
		return 1
	}
	return -1
}

package afsk

import "math"

// sineTableSize is the §4.4-mandated 512-sample quarter-wave sine
// table resolution (differs from the teacher's 256-entry fcos256/
// fsin256 table; spec.md is authoritative where it gives an explicit
// numeric parameter).
const sineTableSize = 512

var quarterSine [sineTableSize/4 + 1]float64

func init() {
	for i := range quarterSine {
		quarterSine[i] = math.Sin(2 * math.Pi * float64(i) / float64(sineTableSize))
	}
}

// sineLookup returns sin(2*pi*phase/512) for phase in [0, 512) using
// only the first quadrant's table and the standard quadrant symmetries.
func sineLookup(phase int) float64 {
	phase &= sineTableSize - 1
	quad := phase / (sineTableSize / 4)
	idx := phase % (sineTableSize / 4)
	switch quad {
	case 0:
		return quarterSine[idx]
	case 1:
		return quarterSine[sineTableSize/4-idx]
	case 2:
		return -quarterSine[idx]
	default:
		return -quarterSine[sineTableSize/4-idx]
	}
}

// Modulator synthesizes an AFSK (or G3RUH baseband) signal from a
// bit stream via a phase accumulator indexing the shared 512-sample
// quarter-wave sine table (§4.4). One Modulator per channel.
//
// Grounded on doismellburning/samoyed src/gen_tone.go (the phase
// accumulator and amplitude scaling approach), reworked to emit to a
// caller-provided []int16 buffer instead of writing to an audio device
// descriptor directly.
type Modulator struct {
	profile Profile

	phaseAcc   uint32 // phase as a 32-bit fraction of a cycle, wraps naturally
	markStep   uint32
	spaceStep  uint32
	lastTone   bool // true = currently on mark

	amplitude int16

	scramblerState uint32 // 9600 Bd G3RUH scrambler, mirrors descramble's LFSR

	samplesPerBit    float64
	bitAccumulator   float64
}

// NewModulator builds a Modulator for the given baud rate at the
// profile's nominal sample rate, with an amplitude of 16384 (half of
// the 16-bit signed PCM range) for a SignalIO sink.
func NewModulator(baud Baud) *Modulator {
	p := Profiles[baud]
	m := &Modulator{
		profile:       p,
		amplitude:     16384,
		samplesPerBit: float64(p.SampleRate) / float64(baud),
	}
	if p.Baud != Baud9600 {
		m.markStep = toneStep(p.MarkHz, p.SampleRate)
		m.spaceStep = toneStep(p.SpaceHz, p.SampleRate)
	}
	m.lastTone = true
	return m
}

func toneStep(hz float64, sampleRate int) uint32 {
	return uint32(hz / float64(sampleRate) * (1 << 32))
}

// SendFlags synthesizes durationMS worth of continuous HDLC flag
// pattern (0x7E repeated, NRZI-encoded) for TXDelay/TXTail preamble
// and trailer, returning the generated samples.
func (m *Modulator) SendFlags(durationMS int) []int16 {
	nBits := int(float64(durationMS) / 1000 * float64(m.profile.effectiveBaud()))
	bits := make([]byte, 0, nBits)
	for i := 0; i < nBits; i++ {
		bits = append(bits, (0x7E>>(uint(i)%8))&1)
	}
	return m.SendBits(bits)
}

// effectiveBaud reports the named Baud as a plain int for timing math.
func (p Profile) effectiveBaud() int { return int(p.Baud) }

// SendFrame synthesizes the audio for one HDLC-encoded, bit-stuffed
// frame bitstream (the output of hdlc.Encode), NRZI-modulating each
// bit onto the channel's tone pair (or the G3RUH scrambled baseband at
// 9600 Bd).
func (m *Modulator) SendFrame(frameBits []byte) []int16 {
	return m.SendBits(frameBits)
}

// SendBits renders one sample block for a sequence of raw (pre-NRZI)
// bits: each 1-bit holds the current tone, each 0-bit toggles it,
// mirroring the demodulator's NRZI convention in reverse.
func (m *Modulator) SendBits(bits []byte) []int16 {
	var out []int16
	for _, bit := range bits {
		if bit == 0 {
			m.lastTone = !m.lastTone
		}
		n := int(math.Round(m.samplesPerBit))
		for i := 0; i < n; i++ {
			out = append(out, m.nextSample())
		}
	}
	return out
}

func (m *Modulator) nextSample() int16 {
	if m.profile.Baud == Baud9600 {
		return m.next9600Sample()
	}
	step := m.spaceStep
	if m.lastTone {
		step = m.markStep
	}
	m.phaseAcc += step
	phase := int(m.phaseAcc >> 23) // top 9 bits index the 512-entry table
	return int16(float64(m.amplitude) * sineLookup(phase))
}

// next9600Sample scrambles the current NRZI bit (mark=1/space=0 maps
// directly to a ±amplitude baseband level) with the same G3RUH LFSR
// used by the demodulator's descrambler, run forward.
func (m *Modulator) next9600Sample() int16 {
	bit := 0
	if m.lastTone {
		bit = 1
	}
	scrambled := (bit ^ int(m.scramblerState>>16) ^ int(m.scramblerState>>11)) & 1
	m.scramblerState = (m.scramblerState << 1) | uint32(scrambled)
	if scrambled == 1 {
		return m.amplitude
	}
	return -m.amplitude
}

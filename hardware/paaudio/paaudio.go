// Package paaudio implements engine.SignalIO over a live sound card
// via PortAudio, for the cmd/samoyedmodem daemon running on ordinary
// desktop/SBC audio hardware instead of a dedicated ADC/DAC.
//
// Grounded on doismellburning/samoyed's declared dependency on
// github.com/gordonklaus/portaudio (the teacher's audio.go is
// ALSA/cgo-bound directly; this package gives PortAudio a cgo-free-at-
// this-layer home, since gordonklaus/portaudio itself wraps the native
// PortAudio library through its own bindings rather than this module's).
package paaudio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Stream is a duplex PortAudio stream carrying signed 16-bit samples;
// ReadSamples/WriteSample pass them through without rescaling.
type Stream struct {
	stream   *portaudio.Stream
	in       []int16
	out      chan int16
	pttState bool
	now      func() uint64
}

// Open starts a duplex stream at sampleRate with the given block size,
// initializing the PortAudio library on first use.
func Open(sampleRate float64, blockSize int, nowMS func() uint64) (*Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("paaudio: initialize: %w", err)
	}
	s := &Stream{in: make([]int16, blockSize), now: nowMS}
	stream, err := portaudio.OpenDefaultStream(1, 1, sampleRate, blockSize, s.in, s.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("paaudio: open stream: %w", err)
	}
	s.stream = stream
	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("paaudio: start stream: %w", err)
	}
	return s, nil
}

// callback is invoked by PortAudio per output block; it drains
// buffered outbound samples queued by WriteSample, padding with
// silence once the queue empties.
func (s *Stream) callback(out []int16) {
	for i := range out {
		select {
		case v := <-s.out:
			out[i] = v
		default:
			out[i] = 0
		}
	}
}

// ReadSamples copies the most recent input block into buf.
func (s *Stream) ReadSamples(buf []int16) (int, error) {
	n := copy(buf, s.in)
	return n, nil
}

// WriteSample enqueues one outbound sample for the next callback.
func (s *Stream) WriteSample(v int16) error {
	if s.out == nil {
		s.out = make(chan int16, 4096)
	}
	s.out <- v
	return nil
}

// SetPTT is a no-op at the audio layer; PTT keying on a sound-card
// deployment is wired through hardware/gpioptt or a serial RTS line,
// not the audio stream itself.
func (s *Stream) SetPTT(on bool) error {
	s.pttState = on
	return nil
}

// NowMS reports the caller-supplied monotonic clock.
func (s *Stream) NowMS() uint64 {
	if s.now == nil {
		return 0
	}
	return s.now()
}

// Close stops the stream and releases PortAudio.
func (s *Stream) Close() error {
	if err := s.stream.Stop(); err != nil {
		return err
	}
	if err := s.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}

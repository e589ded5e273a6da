// Command samoyed-wavtool bridges recorded WAV captures and the afsk
// demodulator/modulator for offline testing, without touching a sound
// card: decode a WAV file into PCM and run it through afsk.Demodulator,
// or synthesize a bitstream into PCM and write it as a WAV file.
//
// This is a CLI-only edge tool (the WAV/FFT dependencies below are
// never imported by package engine, keeping "audio file I/O" out of
// the core per spec.md's Non-goals).
//
// Grounded on ausocean-av's exp/flac/decode.go (go-audio/wav.NewEncoder
// and go-audio/audio.IntBuffer usage) and codec/pcm/filters.go
// (mjibson/go-dsp/fft for spectral analysis of a captured buffer).
package main

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mjibson/go-dsp/fft"
	"github.com/spf13/pflag"

	"github.com/n0call/samoyed-core/afsk"
	"github.com/n0call/samoyed-core/ax25"
	"github.com/n0call/samoyed-core/internal/hdlc"
)

func main() {
	inPath := pflag.StringP("in", "i", "", "Input WAV file to demodulate")
	outPath := pflag.StringP("out", "o", "", "Output WAV file for synthesized bits")
	baudFlag := pflag.IntP("baud", "b", 1200, "Baud rate: 300, 1200 or 9600")
	spectrum := pflag.Bool("spectrum", false, "Run an FFT over the input and print its bin count instead of demodulating")
	src := pflag.String("src", "N0CALL-1", "Source callsign-SSID for a synthesized frame")
	dst := pflag.String("dst", "APRS", "Destination callsign-SSID for a synthesized frame")
	info := pflag.StringP("info", "t", "", "Info field text to synthesize into an AX.25 UI frame and write to -out")
	help := pflag.Bool("help", false, "Display help text")

	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "samoyed-wavtool: WAV <-> AFSK bridge for offline demod/mod testing")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help || (*inPath == "" && *outPath == "") {
		pflag.Usage()
		return
	}

	baud := afsk.Baud(*baudFlag)

	if *inPath != "" {
		if err := runDemod(*inPath, baud, *spectrum); err != nil {
			fmt.Fprintln(os.Stderr, "demod:", err)
			os.Exit(1)
		}
	}

	if *outPath != "" {
		if err := runSynth(*outPath, baud, *src, *dst, *info); err != nil {
			fmt.Fprintln(os.Stderr, "synth:", err)
			os.Exit(1)
		}
	}
}

func runDemod(path string, baud afsk.Baud, spectrumOnly bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("not a valid WAV file")
	}

	buf := &audio.IntBuffer{Format: &audio.Format{NumChannels: 1, SampleRate: int(afsk.Profiles[baud].SampleRate)}}
	if _, err := dec.PCMBuffer(buf); err != nil {
		return err
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}

	if spectrumOnly {
		printSpectrum(samples)
		return nil
	}

	dem := afsk.NewDemodulator(baud)
	sink := &printingSink{}
	dem.AddSink(sink)

	const block = 256
	for i := 0; i < len(samples); i += block {
		end := i + block
		if end > len(samples) {
			end = len(samples)
		}
		dem.ProcessBlock(samples[i:end])
	}
	fmt.Printf("decoded %d bits, final AGC gain %.3f\n", sink.count, dem.Gain())
	return nil
}

// runSynth builds an AX.25 UI frame from src/dst/info, modulates it
// with TXDelay/TXTail flag padding, and writes the resulting PCM to
// path as a mono 16-bit WAV file at the baud's nominal sample rate.
func runSynth(path string, baud afsk.Baud, src, dst, info string) error {
	dstAddr, err := ax25.ParseAddress(dst)
	if err != nil {
		return fmt.Errorf("parse dst: %w", err)
	}
	srcAddr, err := ax25.ParseAddress(src)
	if err != nil {
		return fmt.Errorf("parse src: %w", err)
	}
	raw, err := ax25.Build(dstAddr, srcAddr, nil, []byte(info))
	if err != nil {
		return fmt.Errorf("build frame: %w", err)
	}

	mod := afsk.NewModulator(baud)
	samples := mod.SendFlags(200)
	samples = append(samples, mod.SendFrame(hdlc.Encode(raw))...)
	samples = append(samples, mod.SendFlags(50)...)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, afsk.Profiles[baud].SampleRate, 16, 1, 1)
	defer enc.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: afsk.Profiles[baud].SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	fmt.Printf("wrote %d samples (%d bits) to %s\n", len(samples), len(samples)/int(float64(afsk.Profiles[baud].SampleRate)/float64(baud)), path)
	return nil
}

type printingSink struct{ count int }

func (s *printingSink) FeedBit(bit int) { s.count++ }

// printSpectrum runs an FFT over the captured buffer and prints the
// number of bins it produced; it does not print bin magnitudes or
// identify the strongest bins.
func printSpectrum(samples []int16) {
	in := make([]complex128, len(samples))
	for i, s := range samples {
		in[i] = complex(float64(s), 0)
	}
	out := fft.FFT(in)
	fmt.Printf("fft bins: %d\n", len(out))
}

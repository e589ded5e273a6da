// Command samoyedmodem runs the full receive/transmit engine against a
// sound-card SignalIO (hardware/paaudio) and, when a serial device is
// given, bridges it to a serial KISS transport (transport/serialio).
//
// Grounded on doismellburning/samoyed cmd/direwolf/main.go's role as
// the top-level daemon, and src/kissutil.go's pflag-based option
// parsing style, reworked into a cgo-free engine.New wiring.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/n0call/samoyed-core/ax25"
	"github.com/n0call/samoyed-core/config"
	"github.com/n0call/samoyed-core/engine"
	"github.com/n0call/samoyed-core/hardware/paaudio"
	"github.com/n0call/samoyed-core/transport/serialio"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "YAML settings file")
	audioRate := pflag.Float64P("sample-rate", "r", 19200, "Audio sample rate in Hz")
	blockSize := pflag.IntP("block-size", "b", 256, "Samples per read/write block")
	kissDevice := pflag.StringP("kiss-device", "k", "", "Serial device for the KISS host connection")
	kissBaud := pflag.Uint32P("kiss-baud", "s", 9600, "Serial baud rate for the KISS host connection")
	help := pflag.Bool("help", false, "Display help text")

	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "samoyedmodem: AFSK/FX.25/AX.25 TNC engine over a sound card and a serial KISS host")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	logger := log.New(os.Stderr)

	settings := engine.DefaultSettings()
	if *configPath != "" {
		loaded, _, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal("load config", "err", err)
		}
		settings = loaded
	}

	now := func() uint64 { return uint64(time.Now().UnixMilli()) }

	audio, err := paaudio.Open(*audioRate, *blockSize, now)
	if err != nil {
		logger.Fatal("open audio", "err", err)
	}
	defer audio.Close()

	var kissPort *serialio.Port
	if *kissDevice != "" {
		kissPort, err = serialio.Open(*kissDevice, *kissBaud)
		if err != nil {
			logger.Fatal("open kiss device", "err", err)
		}
		defer kissPort.Close()
	}

	cb := engine.FrameCallbackFunc(func(m engine.Msg) {
		if kissPort == nil {
			return
		}
		if err := engine.WriteKISSDataFrame(kissPort, rebuildFrame(m)); err != nil {
			logger.Error("write kiss frame", "err", err)
		}
	})

	e := engine.New(audio, cb, settings)

	buf := make([]int16, *blockSize)
	for {
		n, err := audio.ReadSamples(buf)
		if err != nil {
			logger.Error("read samples", "err", err)
			continue
		}
		if n > 0 {
			e.ProcessSamples(buf[:n])
		}
		e.Tick(now())

		if kissPort != nil {
			if b, ok := kissPort.ReadByte(); ok {
				e.FeedKISSByte(b)
			}
		}
	}
}

// rebuildFrame re-encodes the already-parsed Msg's AX.25 addressing
// and info back into wire bytes for the host, since the engine's
// decoded-frame callback hands back structured fields rather than the
// raw octets (which HDLC already consumed).
func rebuildFrame(m engine.Msg) []byte {
	frame, err := ax25.Build(m.Dst, m.Src, m.Path, m.Info)
	if err != nil {
		return nil
	}
	return frame
}

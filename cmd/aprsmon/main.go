// Command aprsmon is a read-only monitor: it attaches to a KISS
// transport (a serial device), decodes AX.25/APRS traffic, and prints a
// heard-station log line per frame, optionally with range/bearing from
// a fixed observer position.
//
// Grounded on doismellburning/samoyed cmd/decode_aprs's role as a
// passive decode-and-print tool, reworked to consume the kiss and ax25
// packages instead of linking the teacher's decode_aprs.c directly.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/n0call/samoyed-core/aprs"
	"github.com/n0call/samoyed-core/ax25"
	"github.com/n0call/samoyed-core/engine"
	"github.com/n0call/samoyed-core/kiss"
	"github.com/n0call/samoyed-core/transport/serialio"
)

func main() {
	device := pflag.StringP("device", "d", "", "Serial KISS device to monitor")
	baud := pflag.Uint32P("baud", "s", 9600, "Serial baud rate")
	obsLat := pflag.Float64("lat", 0, "Observer latitude in decimal degrees, for range/bearing")
	obsLon := pflag.Float64("lon", 0, "Observer longitude in decimal degrees, for range/bearing")
	timestampFormat := pflag.StringP("timestamp-format", "T", "", "strftime format for the heard-station log line")
	help := pflag.Bool("help", false, "Display help text")

	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "aprsmon: passive KISS/AX.25/APRS traffic monitor")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help || *device == "" {
		pflag.Usage()
		return
	}

	port, err := serialio.Open(*device, *baud)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open device:", err)
		os.Exit(1)
	}
	defer port.Close()

	cb := engine.FrameCallbackFunc(func(m engine.Msg) {
		printHeard(m, *timestampFormat, *obsLat, *obsLon)
	})
	parser := kiss.NewParser()

	for {
		b, ok := port.ReadByte()
		if !ok {
			return
		}
		f, err := parser.Feed(b)
		if err != nil || f == nil || f.Cmd != kiss.CmdDataFrame {
			continue
		}
		if fr, err := ax25.Parse(f.Payload); err == nil {
			cb.OnFrame(engine.Msg{Src: fr.Src, Dst: fr.Dest, Path: fr.Path, Info: fr.Info})
		}
	}
}

func printHeard(m engine.Msg, timestampFormat string, obsLat, obsLon float64) {
	line, err := aprs.HeardLogLine(timestampFormat, time.Now(), m.Src.String(), string(m.Info))
	if err != nil {
		line = m.Src.String() + ": " + string(m.Info)
	}

	if obsLat != 0 || obsLon != 0 {
		if lat, lon, ok := aprs.ParsePosition(m.Info); ok {
			km, bearing := aprs.RangeBearing(obsLat, obsLon, lat, lon)
			line += fmt.Sprintf(" [%.1f km @ %.0f deg]", km, bearing)
		}
	}

	fmt.Println(line)
}

package aprs_test

import (
	"testing"
	"time"

	"github.com/n0call/samoyed-core/aprs"
	"github.com/stretchr/testify/require"
)

// TestBuildPositionMatchesScenarioOne reproduces the exact payload
// from spec.md §8 scenario 1.
func TestBuildPositionMatchesScenarioOne(t *testing.T) {
	pos := aprs.Position{
		Latitude:    "4903.50N",
		SymbolTable: '/',
		Longitude:   "07201.75W",
		Symbol:      '-',
		Comment:     "Test",
	}
	got := aprs.BuildPosition(pos, nil)
	require.Equal(t, "=4903.50N/07201.75W-Test", got)
}

func TestBuildPositionWithPHG(t *testing.T) {
	pos := aprs.Position{Latitude: "4903.50N", SymbolTable: '/', Longitude: "07201.75W", Symbol: '-'}
	got := aprs.BuildPosition(pos, &aprs.PHG{Power: 5, Height: 3, Gain: 6, Directivity: 0})
	require.Equal(t, "=4903.50N/07201.75W-PHG5360", got)
}

func TestBuildMessagePadsAddresseeAndWrapsSequence(t *testing.T) {
	got := aprs.BuildMessage("N0CALL", 1, "hello", 999)
	require.Equal(t, ":N0CALL-1 :hello{999", got)

	wrapped := aprs.BuildMessage("N0CALL", -1, "hi", aprs.MessageSeqMax)
	require.Equal(t, ":N0CALL   :hi{000", wrapped)
}

func TestBuildTelemetry(t *testing.T) {
	got := aprs.BuildTelemetry(7, [5]int{1, 2, 3, 4, 5}, [8]bool{true, false, true, false, false, false, false, true})
	require.Equal(t, "T#007,001,002,003,004,005,10100001", got)
}

// TestParsePositionInvertsBuildPosition checks ParsePosition recovers
// the same decimal coordinates BuildPosition's inputs represent, and
// that the result feeds RangeBearing sensibly (zero distance/any
// bearing from the station's own position).
func TestParsePositionInvertsBuildPosition(t *testing.T) {
	pos := aprs.Position{Latitude: "4903.50N", SymbolTable: '/', Longitude: "07201.75W", Symbol: '-', Comment: "Test"}
	packet := aprs.BuildPosition(pos, nil)

	lat, lon, ok := aprs.ParsePosition([]byte(packet))
	require.True(t, ok)
	require.InDelta(t, 49+3.50/60, lat, 1e-9)
	require.InDelta(t, -(72 + 1.75/60), lon, 1e-9)

	km, _ := aprs.RangeBearing(lat, lon, lat, lon)
	require.InDelta(t, 0, km, 1e-6)
}

func TestParsePositionRejectsNonPositionInfo(t *testing.T) {
	_, _, ok := aprs.ParsePosition([]byte(">just a status"))
	require.False(t, ok)
}

func TestHeardLogLineFormatsTimestamp(t *testing.T) {
	when := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	line, err := aprs.HeardLogLine("%Y-%m-%d", when, "N0CALL", "=4903.50N/07201.75W-Test")
	require.NoError(t, err)
	require.Equal(t, "2026-08-01 N0CALL: =4903.50N/07201.75W-Test", line)
}

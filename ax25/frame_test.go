package ax25_test

import (
	"testing"

	"github.com/n0call/samoyed-core/ax25"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBuildParseRoundTrip(t *testing.T) {
	dest := ax25.Address{Call: "APRS"}
	src := ax25.Address{Call: "N0CALL", SSID: 1}
	path := []ax25.Address{
		{Call: "WIDE1", SSID: 1},
		{Call: "WIDE2", SSID: 2, Repeated: true},
	}
	info := []byte("=4903.50N/07201.75W-Test")

	wire, err := ax25.Build(dest, src, path, info)
	require.NoError(t, err)

	got, err := ax25.Parse(wire)
	require.NoError(t, err)
	require.Equal(t, dest, got.Dest)
	require.Equal(t, src, got.Src)
	require.Equal(t, path, got.Path)
	require.Equal(t, info, got.Info)
	require.Equal(t, []bool{false, true}, got.RepeatedFlags())
}

func TestBuildParsePropertyRoundTrip(t *testing.T) {
	callGen := rapid.StringMatching(`[A-Z0-9]{1,6}`)
	addrGen := rapid.Custom(func(t *rapid.T) ax25.Address {
		return ax25.Address{
			Call: callGen.Draw(t, "call"),
			SSID: uint8(rapid.IntRange(0, 15).Draw(t, "ssid")),
		}
	})

	rapid.Check(t, func(t *rapid.T) {
		dest := addrGen.Draw(t, "dest")
		src := addrGen.Draw(t, "src")
		n := rapid.IntRange(0, ax25.MaxRepeaters).Draw(t, "n")
		path := make([]ax25.Address, n)
		for i := range path {
			path[i] = addrGen.Draw(t, "repeater")
		}
		info := rapid.SliceOfN(rapid.Byte(), 0, 200).Draw(t, "info")

		wire, err := ax25.Build(dest, src, path, info)
		require.NoError(t, err)

		got, err := ax25.Parse(wire)
		require.NoError(t, err)
		require.Equal(t, dest, got.Dest)
		require.Equal(t, src, got.Src)
		if n == 0 {
			require.Empty(t, got.Path)
		} else {
			require.Equal(t, path, got.Path)
		}
		require.Equal(t, info, got.Info)
	})
}

func TestAddressStringParse(t *testing.T) {
	a, err := ax25.ParseAddress("WIDE2-2*")
	require.NoError(t, err)
	require.Equal(t, ax25.Address{Call: "WIDE2", SSID: 2, Repeated: true}, a)
	require.Equal(t, "WIDE2-2*", a.String())

	_, err = ax25.ParseAddress("TOOLONGCALL")
	require.Error(t, err)
}

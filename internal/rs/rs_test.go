package rs_test

import (
	"testing"

	"github.com/n0call/samoyed-core/internal/rs"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c, err := rs.NewCodec(16)
	require.NoError(t, err)

	data := make([]byte, 239)
	for i := range data {
		data[i] = byte(i * 7)
	}

	block, err := c.Encode(data)
	require.NoError(t, err)
	require.Len(t, block, 255)

	fixed, err := c.Decode(block, len(data))
	require.NoError(t, err)
	require.Zero(t, fixed)
	require.Equal(t, data, block[:len(data)])
}

func TestDecodeCorrectsByteErrors(t *testing.T) {
	c, err := rs.NewCodec(16)
	require.NoError(t, err)

	data := make([]byte, 239)
	for i := range data {
		data[i] = byte(i * 3)
	}
	block, err := c.Encode(data)
	require.NoError(t, err)

	corrupted := append([]byte(nil), block...)
	for _, pos := range []int{0, 10, 50, 100, 150, 200, 230, 250} {
		corrupted[pos] ^= 0xFF
	}

	fixed, err := c.Decode(corrupted, len(data))
	require.NoError(t, err)
	require.Equal(t, 8, fixed)
	require.Equal(t, data, corrupted[:len(data)])
}

func TestDecodeUncorrectable(t *testing.T) {
	c, err := rs.NewCodec(16)
	require.NoError(t, err)

	data := make([]byte, 239)
	block, err := c.Encode(data)
	require.NoError(t, err)

	for i := 0; i < 9; i++ {
		block[i*10] ^= 0xFF
	}

	_, err = c.Decode(block, len(data))
	require.Error(t, err)
	var uncorrectable *rs.ErrUncorrectable
	require.ErrorAs(t, err, &uncorrectable)
}

func TestShortenedCode(t *testing.T) {
	c, err := rs.NewCodec(16)
	require.NoError(t, err)

	data := []byte("N0CALL>APRS:!4903.50N/07201.75W-Test")
	block, err := c.Encode(data)
	require.NoError(t, err)
	require.Len(t, block, len(data)+16)

	block[3] ^= 0x20
	fixed, err := c.Decode(block, len(data))
	require.NoError(t, err)
	require.Equal(t, 1, fixed)
	require.Equal(t, data, block[:len(data)])
}

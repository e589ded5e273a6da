package fx25_test

import (
	"math/rand"
	"testing"

	"github.com/n0call/samoyed-core/internal/fx25"
	"github.com/stretchr/testify/require"
)

func TestModeForSizeMatchesUZ7HOTable(t *testing.T) {
	cases := []struct {
		dlen int
		k    int
	}{
		{32, 32}, {64, 64}, {128, 128}, {191, 191}, {223, 223}, {239, 239},
	}
	for _, c := range cases {
		m, ok := fx25.ModeForSize(c.dlen)
		require.True(t, ok)
		require.Equal(t, c.k, m.K)
	}
	_, ok := fx25.ModeForSize(240)
	require.False(t, ok)
}

func TestModeForTagExactAndNoisy(t *testing.T) {
	for _, m := range fx25.Table {
		got, ok := fx25.ModeForTag(m.Tag)
		require.True(t, ok)
		require.Equal(t, m.Tag, got.Tag)

		noisy := m.Tag ^ 0x7 // flip 3 bits
		got, ok = fx25.ModeForTag(noisy)
		require.True(t, ok)
		require.Equal(t, m.Tag, got.Tag)
	}

	// Flipping 32 bits lands near a different (unrelated) table row or
	// matches nothing; it must never silently match the original tag.
	other := fx25.Table[0].Tag ^ 0xFFFFFFFF
	got, ok := fx25.ModeForTag(other)
	if ok {
		require.NotEqual(t, fx25.Table[0].Tag, got.Tag)
	}
}

func TestEncodeDecodeRoundTripWithErrors(t *testing.T) {
	m := fx25.Table[0] // (239,16)
	payload := make([]byte, 100)
	for i := range payload {
		payload[i] = byte(i)
	}

	tag, block, err := fx25.Encode(m, payload)
	require.NoError(t, err)
	require.Equal(t, m.Tag, tag)
	require.Len(t, block, m.K+m.T)

	rng := rand.New(rand.NewSource(1))
	positions := rng.Perm(len(block))[:8]
	for _, p := range positions {
		block[p] ^= 0xFF
	}

	data, fixed, err := fx25.Decode(m, block)
	require.NoError(t, err)
	require.Equal(t, 8, fixed)
	require.Equal(t, payload, data[:len(payload)])
}

func TestCorrelatorFindsTagAndDecodesBlock(t *testing.T) {
	m := fx25.Table[2] // (64,16)
	payload := make([]byte, m.K)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	tag, block, err := fx25.Encode(m, payload)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		block[i*3] ^= 0xFF
	}

	var bits []byte
	for i := 63; i >= 0; i-- {
		bits = append(bits, byte((tag>>uint(i))&1))
	}
	for _, by := range block {
		for i := 0; i < 8; i++ {
			bits = append(bits, (by>>uint(i))&1)
		}
	}

	c := fx25.NewCorrelator()
	var res fx25.Result
	var gotResult bool
	for _, b := range bits {
		wasCollecting := c.Collecting()
		r, done := c.FeedBit(int(b))
		if wasCollecting && done {
			res = r
			gotResult = true
		}
	}

	require.True(t, gotResult)
	require.NoError(t, res.Err)
	require.Equal(t, 3, res.Fixed)
	require.Equal(t, payload, res.Data)
}

func TestDecodeUncorrectableFails(t *testing.T) {
	m := fx25.Table[3] // (32,16), corrects up to 8 byte errors
	payload := make([]byte, 32)
	_, block, err := fx25.Encode(m, payload)
	require.NoError(t, err)

	for i := 0; i < 9; i++ {
		block[i*5] ^= 0xFF
	}
	_, _, err = fx25.Decode(m, block)
	require.Error(t, err)
}

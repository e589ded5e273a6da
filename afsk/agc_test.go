package afsk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestUpdateAGCMatchesSpecFormula checks the exact numeric update from
// §4.3 (gain <- gain*(1-rate) + gain*(target/rms)*rate), not just the
// post-clamp [0.1,10] bound, which a cancelled-out target factor would
// still satisfy silently.
func TestUpdateAGCMatchesSpecFormula(t *testing.T) {
	d := NewDemodulator(Baud1200)
	d.gain = 1.0

	blockRMS := 0.4 // > agcTarget/gain (0.2), so the attack rate applies
	d.updateAGC(blockRMS)

	rate := agcAttack
	target := 1.0 * (agcTarget / blockRMS)
	want := 1.0*(1-rate) + target*rate

	require.InDelta(t, want, d.gain, 1e-12)
	require.InDelta(t, 0.99, d.gain, 1e-9)
}

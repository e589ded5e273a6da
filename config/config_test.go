package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/n0call/samoyed-core/afsk"
	"github.com/n0call/samoyed-core/config"
	"github.com/stretchr/testify/require"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "samoyed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
baud: 9600
fx25_preferred: true
tx_delay_ms: 300
persistence: 32
`), 0o644))

	settings, _, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, afsk.Baud9600, settings.Baud)
	require.True(t, settings.FX25Preferred)
	require.Equal(t, 300, settings.TX.TXDelayMS)
	require.EqualValues(t, 32, settings.TX.PersistenceP)
	require.Equal(t, 50, settings.TX.TXTailMS, "unset fields keep the default")
}

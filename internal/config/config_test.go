package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(300), cfg.Ledger.PlatformFeeBps)
	assert.Equal(t, int64(2500), cfg.Ledger.BaseCreditPrice)
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"ledger": {"authority_id": "authority-from-file", "platform_fee_bps": 250, "base_credit_price": 3000}
	}`), 0o600))

	t.Setenv("LEDGER_AUTHORITY_ID", "authority-from-env")
	t.Setenv("LEDGER_PLATFORM_FEE_BPS", "500")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "authority-from-env", cfg.Ledger.AuthorityID)
	assert.Equal(t, int64(500), cfg.Ledger.PlatformFeeBps)
	assert.Equal(t, int64(3000), cfg.Ledger.BaseCreditPrice)
}

func TestValidateRejectsBadRates(t *testing.T) {
	cfg := &Config{Ledger: LedgerConfig{PlatformFeeBps: 10001, BaseCreditPrice: 2500}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Ledger: LedgerConfig{PlatformFeeBps: 300, BaseCreditPrice: 0}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Ledger: LedgerConfig{PlatformFeeBps: 300, BaseCreditPrice: 1}}
	assert.NoError(t, cfg.Validate())
}

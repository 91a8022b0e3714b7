package config_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordercheck/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 30, cfg.Extract.TimeoutSecs)
	assert.Equal(t, "/", cfg.Compare.POPrefixDelimiter)
	assert.True(t, cfg.Compare.Tolerance().Equal(decimal.RequireFromString("0.005")))
	assert.Equal(t, "markdown", cfg.Report.Format)
	assert.False(t, cfg.Summarizer.Enabled)
	assert.Empty(t, cfg.Summarizer.Providers())
	assert.Equal(t, 120, cfg.RunTimeoutSecs)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ORDERCHECK_LOG_FORMAT", "json")
	t.Setenv("ORDERCHECK_COMPARE_TARIFF_TOLERANCE", "0.01")
	t.Setenv("ORDERCHECK_SUMMARIZER_ENABLED", "true")
	t.Setenv("ORDERCHECK_SUMMARIZER_PRIMARY_PROVIDER", "claude")
	t.Setenv("ORDERCHECK_SUMMARIZER_PRIMARY_API_KEY", "sk-primary")
	t.Setenv("ORDERCHECK_SUMMARIZER_SECONDARY_PROVIDER", "gemini")
	t.Setenv("ORDERCHECK_SUMMARIZER_SECONDARY_API_KEY", "g-key")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Compare.Tolerance().Equal(decimal.RequireFromString("0.01")))

	providers := cfg.Summarizer.Providers()
	require.Len(t, providers, 2)
	assert.Equal(t, "claude", providers[0].Provider)
	assert.Equal(t, "gemini", providers[1].Provider)
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("ORDERCHECK_LOG_LEVEL", "loud")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate_SummarizerWithoutProvider(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Summarizer.Enabled = true
	err = config.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no provider configured")
}

func TestValidate_SummarizerProviderWithoutKey(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Summarizer.Enabled = true
	cfg.Summarizer.Primary.Provider = "openai"
	err = config.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai has no api key")
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Summarizer.Secondary.Provider = "mystery"
	assert.Error(t, config.Validate(cfg))
}

func TestSummarizerConfig_ProvidersSkipsGaps(t *testing.T) {
	cfg := config.SummarizerConfig{
		Primary:  config.SummarizerProviderConfig{Provider: "claude"},
		Tertiary: config.SummarizerProviderConfig{Provider: "openai"},
	}

	providers := cfg.Providers()
	require.Len(t, providers, 2)
	assert.Equal(t, "claude", providers[0].Provider)
	assert.Equal(t, "openai", providers[1].Provider)
}

func TestCompareConfig_ToleranceFallsBackOnGarbage(t *testing.T) {
	cfg := config.CompareConfig{TariffTolerance: "half a cent"}
	assert.True(t, cfg.Tolerance().Equal(decimal.RequireFromString("0.005")))
}

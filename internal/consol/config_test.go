package consol

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "USD", cfg.PresentationCurrency)
	require.Equal(t, 5, cfg.RateLookbackDays)
	require.True(t, cfg.RateInterpolation)
	require.True(t, cfg.Tolerance().Equal(decimal.NewFromFloat(0.01)))
	require.True(t, cfg.ReasonMultiple().Equal(decimal.NewFromInt(10)))
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CONSOL_PRESENTATION_CURRENCY", "EUR")
	t.Setenv("CONSOL_MATCH_TOLERANCE", "0.005")
	t.Setenv("CONSOL_RATE_INTERPOLATION", "false")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "EUR", cfg.PresentationCurrency)
	require.True(t, cfg.Tolerance().Equal(decimal.NewFromFloat(0.005)))
	require.False(t, cfg.StoreOptions().Interpolate)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv("CONSOL_PRESENTATION_CURRENCY", "DOLLARS")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfigFallsBackOnUnparsableDecimals(t *testing.T) {
	cfg := &Config{MatchTolerance: "not-a-number", ReasonablenessMultiple: "-3"}
	require.True(t, cfg.Tolerance().Equal(decimal.NewFromFloat(0.01)))
	require.True(t, cfg.ReasonMultiple().Equal(decimal.NewFromInt(10)))
}

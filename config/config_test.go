package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	var cfg Config
	require.NoError(t, viper.Unmarshal(&cfg))
	return cfg
}

func TestDefaultsLeaveOptionalInfrastructureOff(t *testing.T) {
	cfg := loadDefaults(t)

	assert.Empty(t, cfg.DatabaseURL, "mongo receipts are opt-in")
	assert.Empty(t, cfg.GeminiAPIKey)
	assert.Empty(t, cfg.CloudinaryCloudName)
	assert.False(t, cfg.BookingCategoryStep)
	assert.Equal(t, 15*time.Second, cfg.SalonAPITimeout)
	assert.Equal(t, 30*time.Minute, cfg.BookingSessionTTL)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "mongodb://mongo:27017")
	t.Setenv("BOOKING_CATEGORY_STEP", "true")
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.AutomaticEnv()
	SetDefaults()

	var cfg Config
	require.NoError(t, viper.Unmarshal(&cfg))
	assert.Equal(t, "mongodb://mongo:27017", cfg.DatabaseURL)
	assert.True(t, cfg.BookingCategoryStep)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.Local, Config{}.Location())
	assert.Equal(t, time.Local, Config{SalonTimezone: "Nowhere/Else"}.Location())
	assert.Equal(t, "UTC", Config{SalonTimezone: "UTC"}.Location().String())
}

package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/darijalingo/practice-engine/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "CATALOG_TIMEOUT", "FALLBACK_PLAYLIST_ENABLED", "EVENTS_PUBLISHER", "LESSON_CACHE_TTL"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.Practice.CatalogTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Practice.LessonCacheTTL)
	assert.False(t, cfg.Practice.FallbackEnabled)
	assert.Equal(t, "kafka", cfg.Events.Publisher)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("CATALOG_TIMEOUT", "3s")
	t.Setenv("SUBMIT_TIMEOUT", "45")
	t.Setenv("FALLBACK_PLAYLIST_ENABLED", "true")
	t.Setenv("LESSON_CACHE_TTL", "not-a-duration")
	t.Setenv("PRACTICE_TOPIC", "xp")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 3*time.Second, cfg.Practice.CatalogTimeout)
	assert.Equal(t, 45*time.Second, cfg.Practice.SubmitTimeout)
	assert.True(t, cfg.Practice.FallbackEnabled)
	assert.Equal(t, 10*time.Minute, cfg.Practice.LessonCacheTTL)
	assert.Equal(t, "xp", cfg.Events.PracticeTopic)
}

func TestEventConfig(t *testing.T) {
	c := EventConfig{KafkaBrokers: " a:9092, ,b:9092 "}
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.GetKafkaBrokers())

	for _, tc := range []EventConfig{
		{Enabled: false, Publisher: "kafka"},
		{Enabled: true, Publisher: "mock"},
		{Enabled: true, Publisher: "carrier-pigeon"},
	} {
		p, err := tc.CreateEventPublisher(slog.Default())
		require.NoError(t, err)
		assert.IsType(t, &events.MockEventPublisher{}, p)
	}
}

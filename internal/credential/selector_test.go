package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeWindow(t *testing.T) {
	w, err := parseTimeWindow("1:22-3:44")
	require.NoError(t, err)
	assert.Equal(t, timeWindow{start: timeOfDay{1, 22}, end: timeOfDay{3, 44}}, w)

	for _, bad := range []string{"abc", "1:22", "1:22-3", "a:00-3:00", "1:00-2:00-3:00"} {
		_, err := parseTimeWindow(bad)
		var cfgErr *ConfigError
		assert.ErrorAs(t, err, &cfgErr, bad)
	}
}

func TestTimeWindowContains(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2026, 1, 1, h, m, 0, 0, time.UTC) }

	tests := []struct {
		window string
		now    time.Time
		want   bool
	}{
		{"9:00-17:00", at(12, 0), true},
		{"9:00-17:00", at(9, 0), false},
		{"9:00-17:00", at(9, 1), true},
		{"9:00-17:00", at(17, 0), false},
		{"9:00-17:00", at(20, 0), false},
		{"22:00-6:00", at(23, 30), true},
		{"22:00-6:00", at(5, 59), true},
		{"22:00-6:00", at(6, 0), false},
		{"22:00-6:00", at(12, 0), false},
		{"0:00-0:00", at(3, 3), true},
	}
	for _, tt := range tests {
		w, err := parseTimeWindow(tt.window)
		require.NoError(t, err)
		assert.Equal(t, tt.want, w.contains(tt.now), "%s at %s", tt.window, tt.now.Format("15:04"))
	}
}

func TestSelect_UsesPoolLocation(t *testing.T) {
	h := newHarness(t)
	tokyo := time.FixedZone("JST", 9*3600)
	WithLocation(tokyo)(h.pool)
	// 12:00 UTC is 21:00 in JST.
	h.pool.AddOrUpdate(t.Context(), "alice", "a", Options{OptionTime: {"20:00-22:00"}})

	assert.True(t, h.pool.CanUse())
}

package scheduler

import (
	"testing"

	"real-estate-crm/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDailyRunTime(t *testing.T) {
	s := NewScheduler(nil, nil, config.DefaultConfig())

	assert.Equal(t, "0 6 * * *", s.parseDailyRunTime("06:00"))
	assert.Equal(t, "30 23 * * *", s.parseDailyRunTime("23:30"))
	assert.Equal(t, "0 6 * * *", s.parseDailyRunTime("25:00"))
	assert.Equal(t, "0 6 * * *", s.parseDailyRunTime("soon"))
}

func TestStart_Disabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scheduler.Enabled = false

	s := NewScheduler(nil, nil, cfg)
	require.NoError(t, s.Start())
	assert.False(t, s.isRunning)
	s.Stop()
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(nil, nil, config.DefaultConfig())
	require.NoError(t, s.Start())
	assert.True(t, s.isRunning)
	assert.Len(t, s.cron.Entries(), 1)

	s.Stop()
	assert.False(t, s.isRunning)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[logs]
level = "debug"

[storage]
driver = "memory"

[kafka]
brokers = "kafka-1:9092, kafka-2:9092,"

[holidays.static]
RU = ["2026-01-01", "2026-05-09"]

[[seed.branches]]
id = "6f1c2a1e-8d0b-4c3a-9b51-0f0d7d3c8a10"
name = "Central"
country_code = "RU"

  [[seed.branches.hours]]
  weekday = "monday"
  open = "08:00"
  close = "17:00"

  [[seed.branches.capacity]]
  day_type = "week_day"
  staff_count = 5
  slot_duration_minutes = 30
  utilization_factor = 0.8
  max_booking_capacity = 2
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(sampleConfig)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Booking.OCCMaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Booking.Backoff())
	assert.Equal(t, 2, cfg.Generator.DistributionFactor)
	assert.Equal(t, 500, cfg.Sweeper.PageSize)
	assert.Equal(t, 3, cfg.Sweeper.GraceDays)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.KafkaBrokers())
	assert.Equal(t, []string{"2026-01-01", "2026-05-09"}, cfg.Holidays.Static["RU"])

	require.Len(t, cfg.Seed.Branches, 1)
	assert.Equal(t, "08:00", cfg.Seed.Branches[0].Hours[0].Open)
	assert.Equal(t, 0.8, cfg.Seed.Branches[0].Capacity[0].UtilizationFactor)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(`
[storage]
driver = "postgres"

[sweeper]
page_size = 10000
`)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "database.host")
	assert.Contains(t, err.Error(), "sweeper.page_size")
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[database]
host = "localhost"
dbname = "appointments"
password = "${TEST_DB_PASSWORD}"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Contains(t, cfg.Database.DSN(), "sslmode=disable")
}

func TestParseWeekday(t *testing.T) {
	d, ok := ParseWeekday("Saturday")
	assert.True(t, ok)
	assert.Equal(t, time.Saturday, d)

	_, ok = ParseWeekday("someday")
	assert.False(t, ok)
}

func TestCalendarConfig_Weekend(t *testing.T) {
	cfg, err := Parse(`
[storage]
driver = "memory"

[calendar]
weekend_days = ["Friday", "saturday"]
`)
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Friday, time.Saturday}, cfg.Calendar.Weekend())
	assert.Equal(t, "RU", cfg.Calendar.DefaultCountry)
}

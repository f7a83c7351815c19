package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "/data")
		require.NoError(t, err)

		assert.Equal(t, 9, cfg.Calendar.Start)
		assert.Equal(t, 18, cfg.Calendar.End)
		assert.InDelta(t, 8, cfg.Calendar.MaxDaily, 1e-9)
		assert.Equal(t, 12, cfg.Calendar.BreakStart)
		assert.Equal(t, 13, cfg.Calendar.BreakEnd)
		assert.Equal(t, "/data", cfg.DataDir)
		assert.Equal(t, "tokyo-night", cfg.Theme)
	})

	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := Load("", "/data")
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	})
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
calendar:
  start_hour: 8
  end_hour: 17
  max_daily_hours: 6
  break_start: 12
  break_end: 13
database:
  max_open_conns: 2
theme: gruvbox
`)

	cfg, err := Load(path, "/data")
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Calendar.Start)
	assert.Equal(t, 17, cfg.Calendar.End)
	assert.InDelta(t, 6, cfg.Calendar.MaxDaily, 1e-9)
	assert.Equal(t, 2, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns, "unset fields keep defaults")
	assert.Equal(t, "gruvbox", cfg.Theme)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "bad yaml",
			content: "calendar: [not a map",
			wantErr: "parse config file",
		},
		{
			name: "capacity exceeds window",
			content: `
calendar:
  start_hour: 9
  end_hour: 12
  max_daily_hours: 8
  break_start: 10
  break_end: 11
`,
			wantErr: "calendar",
		},
		{
			name: "negative pool",
			content: `
database:
  max_open_conns: -1
`,
			wantErr: "max_open_conns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), "/data")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_EmptyDataDir(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())
}

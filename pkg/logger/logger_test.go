package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLogger_WritesDailyFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, SetupLogger("debug", "json", dir))
	Info("property %s armed", "1")
	Warning("notification dropped")
	Sync()

	data, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "property 1 armed")
	assert.Contains(t, string(data), "gbr-security-service")
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	l, err := NewLogger("verbose", "console")
	require.NoError(t, err)

	assert.False(t, l.Core().Enabled(-1))
	assert.True(t, l.Core().Enabled(0))
}

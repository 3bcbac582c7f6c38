package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"github.com/Additional-Code/buyerdesk/internal/config"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buyerdesk.log")
	cfg := config.Config{Observability: config.Observability{
		ServiceName:   "buyerdesk",
		Environment:   "test",
		LogLevel:      "info",
		LogEncoding:   "json",
		LogFile:       path,
		LogMaxSizeMB:  1,
		LogMaxBackups: 1,
		LogMaxAgeDays: 1,
	}}

	lc := fxtest.NewLifecycle(t)
	log, err := New(lc, cfg)
	require.NoError(t, err)

	log.Info("auction created")
	lc.RequireStart()
	lc.RequireStop()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "auction created")
	assert.Contains(t, string(content), `"service":"buyerdesk"`)
}

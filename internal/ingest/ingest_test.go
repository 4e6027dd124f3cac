package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/JustJay7/docket-pipeline/internal/config"
	"github.com/JustJay7/docket-pipeline/internal/database"
	"github.com/JustJay7/docket-pipeline/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "dockets.db"))
	require.NoError(t, err)
	return db
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger("error", "text")
	require.NoError(t, err)
	return log
}

func newTestResolver(t *testing.T) *EntityResolver {
	t.Helper()
	return NewEntityResolver(100, time.Minute, newTestLogger(t))
}

func newTestPipeline(t *testing.T) (*Pipeline, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	cfg := &config.Config{
		QuarantineDir:   filepath.Join(t.TempDir(), "quarantine"),
		BatchSize:       2,
		EntityCacheSize: 100,
		EntityCacheTTL:  time.Minute,
	}
	return NewPipeline(db, cfg, newTestLogger(t)), db
}

func writeSource(t *testing.T, records []RawRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw_dockets.json")
	b, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0644))
	return path
}

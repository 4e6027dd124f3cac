package ingest

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/JustJay7/docket-pipeline/internal/database"
	"github.com/JustJay7/docket-pipeline/pkg/logger"
)

// Counters are the conserved per-run outcome totals:
// read = inserted + updated + failed
type Counters struct {
	Read     int `json:"read"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Failed   int `json:"failed"`
}

// RunTracker opens and closes the audit row for one pipeline invocation.
// A run that crashes mid-processing leaves finished_at NULL, which is the
// detectable signature of an interrupted run; this component flags it by
// never writing finished_at until Finish.
type RunTracker struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRunTracker(db *gorm.DB, log *logger.Logger) *RunTracker {
	return &RunTracker{db: db, log: log}
}

// Begin opens a new ingest run. Failure here is fatal for the whole run.
func (t *RunTracker) Begin(sourceName, sourceURI string) (*database.IngestRun, error) {
	run := &database.IngestRun{
		SourceName: sourceName,
		SourceURI:  sourceURI,
		StartedAt:  time.Now().UTC(),
	}
	if err := t.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to open ingest run: %w", err)
	}
	t.log.Info("Started ingestion run", "run_id", run.RunID, "source", sourceName)
	return run, nil
}

// Finish writes the final totals and the completion timestamp
func (t *RunTracker) Finish(run *database.IngestRun, c Counters) error {
	now := time.Now().UTC()
	err := t.db.Model(&database.IngestRun{}).
		Where("run_id = ?", run.RunID).
		Updates(map[string]interface{}{
			"finished_at":    now,
			"total_read":     c.Read,
			"total_inserted": c.Inserted,
			"total_updated":  c.Updated,
			"total_failed":   c.Failed,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to finish ingest run %d: %w", run.RunID, err)
	}
	t.log.Info("Finished ingestion run", "run_id", run.RunID,
		"read", c.Read, "inserted", c.Inserted, "updated", c.Updated, "failed", c.Failed)
	return nil
}

package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/JustJay7/docket-pipeline/internal/database"
	"github.com/JustJay7/docket-pipeline/pkg/logger"
)

// ErrorSink persists the audit trail for failed records: one structured
// ingest_errors row plus one line in the per-run quarantine JSONL file.
//
// Record never swallows its own failures. Losing the audit trail is
// unacceptable, so any error from the sink is a run-level fatal condition;
// domain validation failures stop here and never abort the batch.
type ErrorSink struct {
	runID uint
	dir   string
	path  string
	file  *os.File
	log   *logger.Logger
}

func NewErrorSink(quarantineDir string, runID uint, log *logger.Logger) *ErrorSink {
	return &ErrorSink{runID: runID, dir: quarantineDir, log: log}
}

// Record persists one failed record. The database row rides on the batch
// transaction (after the record's own writes were rolled back); the
// quarantine line is appended directly to the run's file.
func (s *ErrorSink) Record(tx *gorm.DB, raw RawRecord, recErr *RecordError) error {
	hash := raw.Hash()
	now := time.Now().UTC()

	// Repeated failures of the same record within a run bump the retry
	// counter instead of duplicating the row
	res := tx.Model(&database.IngestError{}).
		Where("run_id = ? AND record_hash = ?", s.runID, hash).
		Updates(map[string]interface{}{
			"last_seen_at": now,
			"retry_count":  gorm.Expr("retry_count + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to record ingest error: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		details, derr := json.Marshal(map[string]interface{}{
			"raw":  raw,
			"why":  recErr.Message,
			"kind": recErr.Kind.String(),
		})
		if derr != nil {
			details = []byte("{}")
		}
		row := database.IngestError{
			RunID:        s.runID,
			RecordHash:   hash,
			CaseNumber:   strings.TrimSpace(raw.String("case_number")),
			ErrorCode:    recErr.Code,
			ErrorMessage: recErr.Message,
			Details:      string(details),
			FirstSeenAt:  now,
			LastSeenAt:   now,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to record ingest error: %w", err)
		}
	}

	return s.writeQuarantineLine(raw, recErr, hash, now)
}

// Path returns the quarantine file path, or "" if no record failed yet
func (s *ErrorSink) Path() string {
	return s.path
}

func (s *ErrorSink) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func (s *ErrorSink) writeQuarantineLine(raw RawRecord, recErr *RecordError, hash string, now time.Time) error {
	if s.file == nil {
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			return fmt.Errorf("failed to create quarantine directory: %w", err)
		}
		path := filepath.Join(s.dir, fmt.Sprintf("ingest_run_%d.jsonl", s.runID))
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open quarantine file: %w", err)
		}
		s.path = path
		s.file = f
	}

	line, err := json.Marshal(map[string]interface{}{
		"run_id":        s.runID,
		"error_code":    recErr.Code,
		"error_message": recErr.Message,
		"raw_record":    raw,
		"record_hash":   hash,
		"timestamp":     now.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode quarantine record: %w", err)
	}
	if _, err := s.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append quarantine record: %w", err)
	}
	return nil
}

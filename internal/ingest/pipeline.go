package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/JustJay7/docket-pipeline/internal/config"
	"github.com/JustJay7/docket-pipeline/internal/database"
	"github.com/JustJay7/docket-pipeline/internal/normalize"
	"github.com/JustJay7/docket-pipeline/pkg/logger"
)

// Pipeline drives ingestion of one source file: per record it validates,
// resolves entities, upserts the case and links parties inside a savepoint,
// and quarantines the record on any failure. Processing is strictly
// sequential; find-or-create correctness relies on transaction-local
// visibility plus the uniqueness constraints, not on locking.
type Pipeline struct {
	db       *gorm.DB
	cfg      *config.Config
	log      *logger.Logger
	resolver *EntityResolver
	tracker  *RunTracker
}

func NewPipeline(db *gorm.DB, cfg *config.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{
		db:       db,
		cfg:      cfg,
		log:      log,
		resolver: NewEntityResolver(cfg.EntityCacheSize, cfg.EntityCacheTTL, log),
		tracker:  NewRunTracker(db, log),
	}
}

// RunSummary is the completion report for one ingest run
type RunSummary struct {
	RunID          uint     `json:"run_id"`
	Summary        Counters `json:"summary"`
	QuarantinePath string   `json:"-"`
}

// Run ingests every record in the JSON source file. Per-record failures are
// quarantined and counted; only run-level conditions (unreadable source,
// unusable store, unwritable audit sink) return an error.
func (p *Pipeline) Run(sourcePath, sourceName string) (*RunSummary, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	var records []RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invalid JSON source file %s: %w", sourcePath, err)
	}

	if sourceName == "" {
		sourceName = filepath.Base(sourcePath)
	}

	run, err := p.tracker.Begin(sourceName, sourcePath)
	if err != nil {
		return nil, err
	}

	sink := NewErrorSink(p.cfg.QuarantineDir, run.RunID, p.log)
	defer sink.Close()

	p.log.Info("Loaded source records", "count", len(records), "source", sourceName)

	var counters Counters
	batch := p.cfg.BatchSize
	if batch < 1 {
		// config.Load enforces this, but a hand-built Config must not be
		// able to stall the loop
		batch = 1
	}
	for start := 0; start < len(records); start += batch {
		end := start + batch
		if end > len(records) {
			end = len(records)
		}

		err := p.db.Transaction(func(tx *gorm.DB) error {
			for _, raw := range records[start:end] {
				if err := p.processOne(tx, raw, sink, &counters); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("ingest run %d aborted: %w", run.RunID, err)
		}

		p.log.Info("Committed batch",
			"processed", end,
			"total", len(records),
			"inserted", counters.Inserted,
			"updated", counters.Updated,
			"failed", counters.Failed,
		)
	}

	if err := p.tracker.Finish(run, counters); err != nil {
		return nil, err
	}

	if sink.Path() != "" {
		p.log.Info("Quarantine file written", "path", sink.Path())
	}

	return &RunSummary{RunID: run.RunID, Summary: counters, QuarantinePath: sink.Path()}, nil
}

// processOne runs one record through the state machine inside a savepoint.
// A non-nil return aborts the whole run; record-level failures are absorbed
// here via rollback-to-savepoint plus the error sink.
func (p *Pipeline) processOne(tx *gorm.DB, raw RawRecord, sink *ErrorSink, counters *Counters) error {
	counters.Read++
	savepoint := fmt.Sprintf("record_%d", counters.Read)
	if err := tx.SavePoint(savepoint).Error; err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}
	p.resolver.BeginRecord()

	outcome, recErr := p.processRecord(tx, raw)
	if recErr != nil {
		if err := tx.RollbackTo(savepoint).Error; err != nil {
			return fmt.Errorf("failed to roll back record: %w", err)
		}
		p.resolver.DiscardRecord()
		if err := sink.Record(tx, raw, recErr); err != nil {
			return err
		}
		counters.Failed++
		p.log.Warn("Record quarantined",
			"case_number", raw.String("case_number"),
			"code", recErr.Code,
			"error", recErr.Message,
		)
		return nil
	}

	p.resolver.PromoteRecord()
	if outcome == OutcomeInserted {
		counters.Inserted++
	} else {
		counters.Updated++
	}
	return nil
}

// processRecord walks one record through
// normalized -> entities_resolved -> case_written -> parties_linked
func (p *Pipeline) processRecord(tx *gorm.DB, raw RawRecord) (Outcome, *RecordError) {
	caseNumber := strings.TrimSpace(raw.String("case_number"))
	if caseNumber == "" {
		return 0, validationErr(CodeMissingCaseNumber, "case_number is required and cannot be empty")
	}

	filedDate, err := normalize.ParseDate(raw.String("filed_date"))
	if err != nil {
		return 0, validationErr(CodeBadDate, "%s", err.Error())
	}

	courtID, recErr := p.resolver.Resolve(tx, EntityCourt, raw.String("court"))
	if recErr != nil {
		return 0, recErr
	}

	// Not every case has an assigned judge
	var judgeID *uint
	if judgeRaw := raw.String("judge"); normalize.JudgeKey(judgeRaw) != "" {
		id, recErr := p.resolver.Resolve(tx, EntityJudge, judgeRaw)
		if recErr != nil {
			return 0, recErr
		}
		judgeID = &id
	}

	caseTypeRaw := strings.TrimSpace(raw.String("case_type"))
	if caseTypeRaw == "" {
		caseTypeRaw = "civil"
	}
	caseTypeID, recErr := p.resolver.Resolve(tx, EntityCaseType, caseTypeRaw)
	if recErr != nil {
		return 0, recErr
	}

	statusRaw := raw.String("status")
	if strings.TrimSpace(statusRaw) == "" {
		statusRaw = database.StatusActive
	}
	status, err := normalize.Status(statusRaw)
	if err != nil {
		return 0, validationErr(CodeStatusUnmapped, "%s", err.Error())
	}

	caseID, outcome, recErr := upsertCase(tx, CaseFields{
		CaseNumber: caseNumber,
		Title:      raw.String("title"),
		FiledDate:  filedDate,
		DocketText: raw.String("docket_text"),
		Status:     status,
		CourtID:    courtID,
		CaseTypeID: caseTypeID,
		JudgeID:    judgeID,
	})
	if recErr != nil {
		return 0, recErr
	}

	parties := normalize.ParseParties(raw.String("parties"))
	if len(parties) == 0 {
		// Missing parties is a data-quality warning, not a failure
		p.log.Warn("No parties found for case", "case_number", caseNumber)
	} else if recErr := linkParties(tx, p.resolver, caseID, parties); recErr != nil {
		return 0, recErr
	}

	return outcome, nil
}

package ingest

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JustJay7/docket-pipeline/internal/database"
)

// CaseFields is the validated, fully-resolved field set for one case row
type CaseFields struct {
	CaseNumber string
	Title      string
	FiledDate  time.Time
	DocketText string
	Status     string
	CourtID    uint
	CaseTypeID uint
	JudgeID    *uint
}

// Outcome classifies a case write for the run counters
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeUpdated
)

func (o Outcome) String() string {
	if o == OutcomeInserted {
		return "inserted"
	}
	return "updated"
}

// upsertCase writes the case row keyed on case_number and reports whether a
// row was inserted or an existing one updated.
//
// Classification comes from an explicit existence check inside the record's
// transaction; single-writer sequencing makes the check authoritative and
// the uniqueness constraint on case_number stays as the backstop.
func upsertCase(tx *gorm.DB, f CaseFields) (uint, Outcome, *RecordError) {
	if f.CaseNumber == "" {
		return 0, 0, validationErr(CodeMissingCaseNumber, "case_number is required and cannot be empty")
	}
	if f.CourtID == 0 {
		return 0, 0, validationErr(CodeCourt, "case %s has no court reference", f.CaseNumber)
	}
	if f.CaseTypeID == 0 {
		return 0, 0, validationErr(CodeCaseType, "case %s has no case type reference", f.CaseNumber)
	}

	now := time.Now().UTC()

	var existing database.Case
	err := tx.Select("id").Where("case_number = ?", f.CaseNumber).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := database.Case{
			CaseNumber: f.CaseNumber,
			Title:      f.Title,
			FiledDate:  f.FiledDate,
			DocketText: f.DocketText,
			Status:     f.Status,
			CourtID:    f.CourtID,
			CaseTypeID: f.CaseTypeID,
			JudgeID:    f.JudgeID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "case_number"}},
			DoNothing: true,
		}).Create(&row)
		if res.Error != nil {
			return 0, 0, persistenceErr(res.Error)
		}
		if res.RowsAffected == 0 {
			// The existence check said the row was absent, so a silent
			// conflict here is not the expected dedup path
			return 0, 0, persistenceErr(errors.New("conflicting concurrent insert for case " + f.CaseNumber))
		}
		return row.ID, OutcomeInserted, nil

	case err == nil:
		updates := map[string]interface{}{
			"title":        f.Title,
			"filed_date":   f.FiledDate,
			"docket_text":  f.DocketText,
			"status":       f.Status,
			"court_id":     f.CourtID,
			"case_type_id": f.CaseTypeID,
			"judge_id":     f.JudgeID,
			"updated_at":   now,
		}
		if uerr := tx.Model(&database.Case{}).Where("id = ?", existing.ID).Updates(updates).Error; uerr != nil {
			return 0, 0, persistenceErr(uerr)
		}
		return existing.ID, OutcomeUpdated, nil

	default:
		return 0, 0, persistenceErr(err)
	}
}

package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/docket-pipeline/internal/database"
)

func TestUpsertCaseClassifiesInsertAndUpdate(t *testing.T) {
	db := newTestDB(t)

	court := database.Court{Name: "S.D.N.Y", NormalizedName: "SDNY", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&court).Error)
	caseType := database.CaseType{Name: "civil", NormalizedName: "civil", CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&caseType).Error)

	fields := CaseFields{
		CaseNumber: "2023-CV-100",
		Title:      "Smith v. Acme",
		FiledDate:  time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
		DocketText: "Initial complaint filed.",
		Status:     database.StatusActive,
		CourtID:    court.ID,
		CaseTypeID: caseType.ID,
	}

	id, outcome, recErr := upsertCase(db, fields)
	require.Nil(t, recErr)
	assert.Equal(t, OutcomeInserted, outcome)
	assert.NotZero(t, id)

	fields.Title = "Smith v. Acme Corp"
	fields.Status = database.StatusClosed
	id2, outcome2, recErr := upsertCase(db, fields)
	require.Nil(t, recErr)
	assert.Equal(t, OutcomeUpdated, outcome2)
	assert.Equal(t, id, id2)

	var row database.Case
	require.NoError(t, db.Where("case_number = ?", "2023-CV-100").First(&row).Error)
	assert.Equal(t, "Smith v. Acme Corp", row.Title)
	assert.Equal(t, database.StatusClosed, row.Status)

	var count int64
	require.NoError(t, db.Model(&database.Case{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertCaseValidation(t *testing.T) {
	db := newTestDB(t)

	_, _, recErr := upsertCase(db, CaseFields{CourtID: 1, CaseTypeID: 1})
	require.NotNil(t, recErr)
	assert.Equal(t, CodeMissingCaseNumber, recErr.Code)

	_, _, recErr = upsertCase(db, CaseFields{CaseNumber: "X-1", CaseTypeID: 1})
	require.NotNil(t, recErr)
	assert.Equal(t, CodeCourt, recErr.Code)

	_, _, recErr = upsertCase(db, CaseFields{CaseNumber: "X-1", CourtID: 1})
	require.NotNil(t, recErr)
	assert.Equal(t, CodeCaseType, recErr.Code)
}

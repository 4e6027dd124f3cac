package report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/JustJay7/docket-pipeline/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "dockets.db"))
	require.NoError(t, err)
	return db
}

func seedStore(t *testing.T, db *gorm.DB) {
	t.Helper()
	now := time.Now().UTC()
	finished := now.Add(2 * time.Second)

	run := database.IngestRun{
		SourceName:    "raw_dockets.json",
		StartedAt:     now,
		FinishedAt:    &finished,
		TotalRead:     10,
		TotalInserted: 8,
		TotalUpdated:  1,
		TotalFailed:   1,
	}
	require.NoError(t, db.Create(&run).Error)

	court := database.Court{Name: "S.D.N.Y", NormalizedName: "SDNY", CreatedAt: now}
	require.NoError(t, db.Create(&court).Error)
	caseType := database.CaseType{Name: "civil", NormalizedName: "civil", CreatedAt: now}
	require.NoError(t, db.Create(&caseType).Error)
	judge := database.Judge{FullName: "Hon. Maria Rodriguez", NormalizedName: "maria rodriguez", CreatedAt: now}
	require.NoError(t, db.Create(&judge).Error)

	withJudge := database.Case{
		CaseNumber: "2023-CV-001",
		Title:      "Smith v. Acme",
		FiledDate:  time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
		DocketText: "Initial complaint filed.",
		Status:     database.StatusActive,
		CourtID:    court.ID,
		CaseTypeID: caseType.ID,
		JudgeID:    &judge.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(&withJudge).Error)
	noJudge := database.Case{
		CaseNumber: "2023-CV-003",
		Title:      "Doe v. MegaCorp",
		FiledDate:  time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:     database.StatusPending,
		CourtID:    court.ID,
		CaseTypeID: caseType.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, db.Create(&noJudge).Error)

	plaintiff := database.Party{Name: "John Smith", NormalizedName: "john smith", CreatedAt: now}
	require.NoError(t, db.Create(&plaintiff).Error)
	defendant := database.Party{Name: "Acme Corp", NormalizedName: "acme corp", CreatedAt: now}
	require.NoError(t, db.Create(&defendant).Error)
	require.NoError(t, db.Create(&database.CaseParty{
		CaseID: withJudge.ID, PartyID: plaintiff.ID, Role: database.RolePlaintiff, CreatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&database.CaseParty{
		CaseID: withJudge.ID, PartyID: defendant.ID, Role: database.RoleDefendant, CreatedAt: now,
	}).Error)

	require.NoError(t, db.Create(&database.IngestError{
		RunID:        run.RunID,
		RecordHash:   "deadbeef",
		CaseNumber:   "2023-CV-002",
		ErrorCode:    "BAD_DATE",
		ErrorMessage: `filed_date parse failed: "INVALID-DATE"`,
		Details:      "{}",
		FirstSeenAt:  now,
		LastSeenAt:   now,
	}).Error)
}

func TestGenerateAllTime(t *testing.T) {
	db := newTestDB(t)
	seedStore(t, db)

	r, err := Generate(db, Options{})
	require.NoError(t, err)

	assert.Equal(t, Volume{TotalRecords: 10, Inserted: 8, Updated: 1, Failed: 1}, r.Volume)

	require.Len(t, r.Errors, 1)
	assert.Equal(t, "BAD_DATE", r.Errors[0].ErrorCode)
	assert.Equal(t, 1, r.Errors[0].Count)

	assert.Equal(t, 2, r.Completeness.Total)
	assert.Equal(t, 1, r.Completeness.NoJudge)
	assert.Zero(t, r.Completeness.NoCourt)
	assert.Zero(t, r.Completeness.NoCaseType)
	assert.Equal(t, 1, r.Completeness.NoDocket)

	assert.Equal(t, "2023-03-15", r.Dates.MinDate)
	assert.Equal(t, "2023-06-01", r.Dates.MaxDate)
	assert.Equal(t, 1, r.Dates.BadDates)

	assert.Equal(t, NormStats{DistinctNames: 1, DistinctNormalized: 1, Total: 1}, r.Judges)
	assert.Equal(t, NormStats{DistinctNames: 1, DistinctNormalized: 1, Total: 1}, r.Courts)

	assert.Equal(t, Coverage{CasesWithParties: 1, WithPlaintiff: 1, WithDefendant: 1}, r.Coverage)
	require.Len(t, r.Roles, 2)

	// all-time scope includes the recent-activity section
	require.NotNil(t, r.Recent)
	require.Len(t, r.Recent, 1)
	assert.Equal(t, 10, r.Recent[0].Ingested)
	assert.Equal(t, 1, r.Recent[0].Failed)
}

func TestGenerateScopedToRun(t *testing.T) {
	db := newTestDB(t)
	seedStore(t, db)

	r, err := Generate(db, Options{RunID: 1})
	require.NoError(t, err)
	assert.Equal(t, "run_id=1", r.Scope)
	assert.Equal(t, Volume{TotalRecords: 10, Inserted: 8, Updated: 1, Failed: 1}, r.Volume)
	assert.Nil(t, r.Recent)
}

func TestGenerateUnknownRun(t *testing.T) {
	db := newTestDB(t)
	seedStore(t, db)

	_, err := Generate(db, Options{RunID: 999})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run 999 not found")
}

func TestGenerateSinceScope(t *testing.T) {
	db := newTestDB(t)
	seedStore(t, db)

	r, err := Generate(db, Options{Since: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Completeness.Total)
	assert.Equal(t, "2023-06-01", r.Dates.MinDate)
	// the only case with parties was filed before the cutoff
	assert.Zero(t, r.Coverage.CasesWithParties)
}

func TestExitCodeThresholds(t *testing.T) {
	healthy := &Report{
		Volume:       Volume{TotalRecords: 100, Failed: 5},
		Completeness: Completeness{Total: 100, NoJudge: 10},
	}
	assert.Equal(t, 0, healthy.ExitCode())

	failing := &Report{Volume: Volume{TotalRecords: 100, Failed: 6}}
	assert.Equal(t, 1, failing.ExitCode())

	incomplete := &Report{
		Volume:       Volume{TotalRecords: 100, Failed: 0},
		Completeness: Completeness{Total: 100, NoCourt: 11},
	}
	assert.Equal(t, 1, incomplete.ExitCode())

	empty := &Report{}
	assert.Equal(t, 0, empty.ExitCode())
}

func TestRenderIncludesSections(t *testing.T) {
	db := newTestDB(t)
	seedStore(t, db)

	r, err := Generate(db, Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	r.Render(&buf)
	out := buf.String()
	assert.Contains(t, out, "Data Quality Report")
	assert.Contains(t, out, "Volume Summary")
	assert.Contains(t, out, "BAD_DATE")
	assert.Contains(t, out, "Missing Judge:     1 (50.0%)")
	assert.Contains(t, out, "2023-03-15")
}

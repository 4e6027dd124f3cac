// Package report generates a read-only data quality report over the docket
// store: ingest volume, error breakdown, completeness, date sanity, entity
// normalization sanity and parties coverage.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"gorm.io/gorm"
)

// Options scopes the report to one run, to cases filed since a date, or to
// all-time aggregates when both are zero
type Options struct {
	RunID uint
	Since time.Time
}

type Volume struct {
	TotalRecords int
	Inserted     int
	Updated      int
	Failed       int
}

type ErrorRow struct {
	ErrorCode  string
	Count      int
	MostRecent string
}

type Completeness struct {
	Total      int
	NoJudge    int
	NoCourt    int
	NoCaseType int
	NoDocket   int
}

type DateSanity struct {
	MinDate  string
	MaxDate  string
	BadDates int
}

type NormStats struct {
	DistinctNames      int
	DistinctNormalized int
	Total              int
}

type Coverage struct {
	CasesWithParties int
	WithPlaintiff    int
	WithDefendant    int
}

type RoleRow struct {
	Role  string
	Count int
}

type DayRow struct {
	Day      string
	Ingested int
	Failed   int
}

type Report struct {
	Scope        string
	GeneratedAt  time.Time
	Volume       Volume
	Errors       []ErrorRow
	Completeness Completeness
	Dates        DateSanity
	Judges       NormStats
	Courts       NormStats
	Coverage     Coverage
	Roles        []RoleRow
	Recent       []DayRow
}

// Generate builds the report from the store. All queries are read-only.
func Generate(db *gorm.DB, opts Options) (*Report, error) {
	r := &Report{
		Scope:       scopeDescription(opts),
		GeneratedAt: time.Now().UTC(),
	}

	if opts.RunID != 0 {
		var count int64
		if err := db.Table("ingest_runs").Where("run_id = ?", opts.RunID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to look up run: %w", err)
		}
		if count == 0 {
			return nil, fmt.Errorf("run %d not found", opts.RunID)
		}
	}

	if err := r.loadVolume(db, opts); err != nil {
		return nil, err
	}
	if err := r.loadErrors(db, opts); err != nil {
		return nil, err
	}
	if err := r.loadCompleteness(db, opts); err != nil {
		return nil, err
	}
	if err := r.loadDateSanity(db, opts); err != nil {
		return nil, err
	}
	if err := r.loadNormalization(db); err != nil {
		return nil, err
	}
	if err := r.loadCoverage(db, opts); err != nil {
		return nil, err
	}
	if opts.RunID == 0 {
		if err := r.loadRecent(db); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func scopeDescription(opts Options) string {
	switch {
	case opts.RunID != 0:
		return fmt.Sprintf("run_id=%d", opts.RunID)
	case !opts.Since.IsZero():
		return fmt.Sprintf("cases filed on/after %s", opts.Since.Format("2006-01-02"))
	default:
		return "all-time (lifetime aggregates)"
	}
}

func (r *Report) loadVolume(db *gorm.DB, opts Options) error {
	q := `
		SELECT COALESCE(SUM(total_read), 0)     AS total_records,
		       COALESCE(SUM(total_inserted), 0) AS inserted,
		       COALESCE(SUM(total_updated), 0)  AS updated,
		       COALESCE(SUM(total_failed), 0)   AS failed
		FROM ingest_runs`
	var err error
	if opts.RunID != 0 {
		err = db.Raw(q+" WHERE run_id = ?", opts.RunID).Scan(&r.Volume).Error
	} else {
		err = db.Raw(q).Scan(&r.Volume).Error
	}
	if err != nil {
		return fmt.Errorf("failed to load volume summary: %w", err)
	}
	return nil
}

func (r *Report) loadErrors(db *gorm.DB, opts Options) error {
	var q string
	var args []interface{}
	switch {
	case opts.RunID != 0:
		q = `
			SELECT error_code, COUNT(*) AS count, MAX(last_seen_at) AS most_recent
			FROM ingest_errors
			WHERE run_id = ?
			GROUP BY error_code ORDER BY count DESC LIMIT 10`
		args = []interface{}{opts.RunID}
	case !opts.Since.IsZero():
		q = `
			SELECT e.error_code, COUNT(*) AS count, MAX(e.last_seen_at) AS most_recent
			FROM ingest_errors e
			JOIN ingest_runs r ON e.run_id = r.run_id
			WHERE r.started_at >= ?
			GROUP BY e.error_code ORDER BY count DESC LIMIT 10`
		args = []interface{}{opts.Since}
	default:
		q = `
			SELECT error_code, COUNT(*) AS count, MAX(last_seen_at) AS most_recent
			FROM ingest_errors
			GROUP BY error_code ORDER BY count DESC LIMIT 10`
	}
	if err := db.Raw(q, args...).Scan(&r.Errors).Error; err != nil {
		return fmt.Errorf("failed to load error breakdown: %w", err)
	}
	return nil
}

func (r *Report) loadCompleteness(db *gorm.DB, opts Options) error {
	q := `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN judge_id IS NULL THEN 1 ELSE 0 END), 0)                      AS no_judge,
		       COALESCE(SUM(CASE WHEN court_id IS NULL OR court_id = 0 THEN 1 ELSE 0 END), 0)      AS no_court,
		       COALESCE(SUM(CASE WHEN case_type_id IS NULL OR case_type_id = 0 THEN 1 ELSE 0 END), 0) AS no_case_type,
		       COALESCE(SUM(CASE WHEN docket_text IS NULL OR docket_text = '' THEN 1 ELSE 0 END), 0)  AS no_docket
		FROM cases`
	var err error
	if !opts.Since.IsZero() {
		err = db.Raw(q+" WHERE filed_date >= ?", opts.Since).Scan(&r.Completeness).Error
	} else {
		err = db.Raw(q).Scan(&r.Completeness).Error
	}
	if err != nil {
		return fmt.Errorf("failed to load completeness checks: %w", err)
	}
	return nil
}

func (r *Report) loadDateSanity(db *gorm.DB, opts Options) error {
	type minMax struct {
		MinDate *string
		MaxDate *string
	}
	var mm minMax
	q := `SELECT MIN(filed_date) AS min_date, MAX(filed_date) AS max_date FROM cases`
	var err error
	if !opts.Since.IsZero() {
		err = db.Raw(q+" WHERE filed_date >= ?", opts.Since).Scan(&mm).Error
	} else {
		err = db.Raw(q).Scan(&mm).Error
	}
	if err != nil {
		return fmt.Errorf("failed to load date sanity: %w", err)
	}
	if mm.MinDate != nil {
		r.Dates.MinDate = trimDate(*mm.MinDate)
	}
	if mm.MaxDate != nil {
		r.Dates.MaxDate = trimDate(*mm.MaxDate)
	}

	var bad int
	switch {
	case opts.RunID != 0:
		err = db.Raw(`SELECT COUNT(*) FROM ingest_errors WHERE run_id = ? AND error_code = 'BAD_DATE'`, opts.RunID).Scan(&bad).Error
	case !opts.Since.IsZero():
		err = db.Raw(`
			SELECT COUNT(*) FROM ingest_errors e
			JOIN ingest_runs r ON e.run_id = r.run_id
			WHERE r.started_at >= ? AND e.error_code = 'BAD_DATE'`, opts.Since).Scan(&bad).Error
	default:
		err = db.Raw(`SELECT COUNT(*) FROM ingest_errors WHERE error_code = 'BAD_DATE'`).Scan(&bad).Error
	}
	if err != nil {
		return fmt.Errorf("failed to load bad date count: %w", err)
	}
	r.Dates.BadDates = bad
	return nil
}

func (r *Report) loadNormalization(db *gorm.DB) error {
	err := db.Raw(`
		SELECT COUNT(DISTINCT full_name)       AS distinct_names,
		       COUNT(DISTINCT normalized_name) AS distinct_normalized,
		       COUNT(*)                        AS total
		FROM judges`).Scan(&r.Judges).Error
	if err != nil {
		return fmt.Errorf("failed to load judge normalization stats: %w", err)
	}
	err = db.Raw(`
		SELECT COUNT(DISTINCT name)            AS distinct_names,
		       COUNT(DISTINCT normalized_name) AS distinct_normalized,
		       COUNT(*)                        AS total
		FROM courts`).Scan(&r.Courts).Error
	if err != nil {
		return fmt.Errorf("failed to load court normalization stats: %w", err)
	}
	return nil
}

func (r *Report) loadCoverage(db *gorm.DB, opts Options) error {
	q := `
		WITH per_case AS (
			SELECT cp.case_id,
			       MAX(CASE WHEN cp.role = 'plaintiff' THEN 1 ELSE 0 END) AS has_plaintiff,
			       MAX(CASE WHEN cp.role = 'defendant' THEN 1 ELSE 0 END) AS has_defendant
			FROM case_parties cp
			JOIN cases c ON cp.case_id = c.id
			%s
			GROUP BY cp.case_id
		)
		SELECT COUNT(*)                         AS cases_with_parties,
		       COALESCE(SUM(has_plaintiff), 0)  AS with_plaintiff,
		       COALESCE(SUM(has_defendant), 0)  AS with_defendant
		FROM per_case`
	var err error
	if !opts.Since.IsZero() {
		err = db.Raw(fmt.Sprintf(q, "WHERE c.filed_date >= ?"), opts.Since).Scan(&r.Coverage).Error
	} else {
		err = db.Raw(fmt.Sprintf(q, "")).Scan(&r.Coverage).Error
	}
	if err != nil {
		return fmt.Errorf("failed to load parties coverage: %w", err)
	}

	err = db.Raw(`
		SELECT role, COUNT(*) AS count
		FROM case_parties
		GROUP BY role ORDER BY count DESC LIMIT 10`).Scan(&r.Roles).Error
	if err != nil {
		return fmt.Errorf("failed to load role distribution: %w", err)
	}
	return nil
}

func (r *Report) loadRecent(db *gorm.DB) error {
	since := time.Now().UTC().AddDate(0, 0, -7)
	err := db.Raw(`
		SELECT DATE(started_at)               AS day,
		       COALESCE(SUM(total_read), 0)   AS ingested,
		       COALESCE(SUM(total_failed), 0) AS failed
		FROM ingest_runs
		WHERE started_at >= ?
		GROUP BY DATE(started_at)
		ORDER BY day DESC`, since).Scan(&r.Recent).Error
	if err != nil {
		return fmt.Errorf("failed to load recent activity: %w", err)
	}
	return nil
}

// ExitCode is 1 when the failure rate exceeds 5% or any completeness gap
// exceeds 10%, for use in scheduled quality gates
func (r *Report) ExitCode() int {
	if r.Volume.TotalRecords > 0 {
		if percent(r.Volume.Failed, r.Volume.TotalRecords) > 5 {
			return 1
		}
	}
	if r.Completeness.Total > 0 {
		t := r.Completeness.Total
		if percent(r.Completeness.NoJudge, t) > 10 ||
			percent(r.Completeness.NoCourt, t) > 10 ||
			percent(r.Completeness.NoCaseType, t) > 10 {
			return 1
		}
	}
	return 0
}

// Render writes the human-readable report
func (r *Report) Render(w io.Writer) {
	header := color.New(color.FgCyan, color.Bold)
	section := color.New(color.Bold)

	header.Fprintln(w, "Data Quality Report")
	fmt.Fprintf(w, "Scope: %s\n", r.Scope)
	fmt.Fprintf(w, "Generated: %s UTC\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	section.Fprintln(w, "\n--- Volume Summary ---")
	fmt.Fprintf(w, "Total Records: %d\n", r.Volume.TotalRecords)
	fmt.Fprintf(w, "  Inserted:    %d\n", r.Volume.Inserted)
	fmt.Fprintf(w, "  Updated:     %d\n", r.Volume.Updated)
	fmt.Fprintf(w, "  Failed:      %d", r.Volume.Failed)
	if r.Volume.TotalRecords > 0 {
		fmt.Fprintf(w, " (%.1f%%)", percent(r.Volume.Failed, r.Volume.TotalRecords))
	}
	fmt.Fprintln(w)

	section.Fprintln(w, "\n--- Error Breakdown (Top 10) ---")
	if len(r.Errors) == 0 {
		fmt.Fprintln(w, "No errors found")
	} else {
		fmt.Fprintf(w, "%-30s %10s  %s\n", "Error Code", "Count", "Most Recent")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "%-30s %10d  %s\n", e.ErrorCode, e.Count, trimDate(e.MostRecent))
		}
	}

	section.Fprintln(w, "\n--- Completeness Checks (Cases) ---")
	c := r.Completeness
	if c.Total == 0 {
		fmt.Fprintln(w, "No cases found")
	} else {
		fmt.Fprintf(w, "Total Cases:       %d\n", c.Total)
		fmt.Fprintf(w, "Missing Judge:     %d (%.1f%%)\n", c.NoJudge, percent(c.NoJudge, c.Total))
		fmt.Fprintf(w, "Missing Court:     %d (%.1f%%)\n", c.NoCourt, percent(c.NoCourt, c.Total))
		fmt.Fprintf(w, "Missing Case Type: %d (%.1f%%)\n", c.NoCaseType, percent(c.NoCaseType, c.Total))
		fmt.Fprintf(w, "Missing Docket:    %d (%.1f%%)\n", c.NoDocket, percent(c.NoDocket, c.Total))
	}

	section.Fprintln(w, "\n--- Date Sanity ---")
	if r.Dates.MinDate == "" {
		fmt.Fprintln(w, "No dates found")
	} else {
		fmt.Fprintf(w, "Min Filed Date: %s\n", r.Dates.MinDate)
		fmt.Fprintf(w, "Max Filed Date: %s\n", r.Dates.MaxDate)
	}
	fmt.Fprintf(w, "Invalid Dates:  %d\n", r.Dates.BadDates)

	section.Fprintln(w, "\n--- Entity Normalization Sanity ---")
	fmt.Fprintf(w, "Judges: %d raw names -> %d normalized (%d rows)\n",
		r.Judges.DistinctNames, r.Judges.DistinctNormalized, r.Judges.Total)
	fmt.Fprintf(w, "Courts: %d raw names -> %d normalized (%d rows)\n",
		r.Courts.DistinctNames, r.Courts.DistinctNormalized, r.Courts.Total)

	section.Fprintln(w, "\n--- Parties Coverage ---")
	cov := r.Coverage
	if cov.CasesWithParties == 0 {
		fmt.Fprintln(w, "No cases with parties found")
	} else {
		fmt.Fprintf(w, "Cases with Parties: %d\n", cov.CasesWithParties)
		fmt.Fprintf(w, "  With Plaintiff:   %d (%.1f%%)\n", cov.WithPlaintiff, percent(cov.WithPlaintiff, cov.CasesWithParties))
		fmt.Fprintf(w, "  With Defendant:   %d (%.1f%%)\n", cov.WithDefendant, percent(cov.WithDefendant, cov.CasesWithParties))
	}
	if len(r.Roles) > 0 {
		fmt.Fprintln(w, "Top Party Roles:")
		for _, role := range r.Roles {
			fmt.Fprintf(w, "  %-15s %d\n", role.Role, role.Count)
		}
	}

	if r.Recent != nil {
		section.Fprintln(w, "\n--- Recent 7 Days ---")
		if len(r.Recent) == 0 {
			fmt.Fprintln(w, "No data for last 7 days")
		} else {
			fmt.Fprintf(w, "%-12s %10s %10s\n", "Date", "Ingested", "Failed")
			for _, day := range r.Recent {
				fmt.Fprintf(w, "%-12s %10d %10d\n", day.Day, day.Ingested, day.Failed)
			}
		}
	}
}

func percent(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator) * 100
}

// trimDate reduces a stored datetime string to its date part for display
func trimDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

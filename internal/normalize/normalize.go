// Package normalize contains the pure normalization and parsing rules the
// ingestion pipeline applies to raw docket fields. Every function either
// returns a canonical value or an error; no sentinel values are produced.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	courtStripRe    = regexp.MustCompile(`[.\s]+`)
	judgeTitleRe    = regexp.MustCompile(`(?i)^(hon\.?|judge|justice)(\s+|$)`)
	mdyNumericRe    = regexp.MustCompile(`^\s*(\d{1,2})[-/](\d{1,2})[-/](\d{4})\s*$`)
	parentheticalRe = regexp.MustCompile(`\(([^)]*)\)`)
	majorSeparators = regexp.MustCompile(`[;/]`)
)

// CourtKey normalizes a court name to its canonical key.
//
// "S.D.N.Y" and "S.D.N.Y." both become "SDNY".
func CourtKey(raw string) string {
	return courtStripRe.ReplaceAllString(strings.ToUpper(raw), "")
}

// JudgeKey normalizes a judge name: honorifics stripped, case-folded,
// whitespace collapsed.
//
// "Hon. Maria Rodriguez" and "Judge Maria Rodriguez" both become
// "maria rodriguez".
func JudgeKey(raw string) string {
	s := judgeTitleRe.ReplaceAllString(strings.TrimSpace(raw), "")
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.Trim(s, " .,;:")
}

// PartyKey normalizes a party name: case-folded, whitespace collapsed.
func PartyKey(raw string) string {
	s := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	return strings.Trim(s, " .,;:")
}

// CaseTypeKey normalizes a case type name.
func CaseTypeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Statuses a case may carry, keyed by accepted input form.
var statusMap = map[string]string{
	"active":    "active",
	"closed":    "closed",
	"pending":   "pending",
	"dismissed": "dismissed",
}

// Status maps a raw status string onto its canonical form. Unmapped values
// fail validation.
func Status(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	canonical, ok := statusMap[s]
	if !ok {
		return "", fmt.Errorf("invalid status %q, must be one of: active, closed, pending, dismissed", raw)
	}
	return canonical, nil
}

// ParseDate parses docket dates assuming US ordering (month-day-year).
//
// Accepted, in priority order:
//   - ISO: 2024-10-03, 2024-1-3
//   - Numeric MDY: 10/3/2024, 10-3-2024, 10/03/2024, 10-03-2024
//   - Month name: Oct 3, 2024 / October 3, 2024
//
// The result is the calendar date at UTC midnight. Anything else fails.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("filed_date missing")
	}

	// 1) ISO, padded fields or not
	if t, err := time.Parse("2006-1-2", s); err == nil {
		return t.UTC(), nil
	}

	// 2) Numeric MDY, single-digit month/day allowed
	if m := mdyNumericRe.FindStringSubmatch(s); m != nil {
		mm, _ := strconv.Atoi(m[1])
		dd, _ := strconv.Atoi(m[2])
		yyyy, _ := strconv.Atoi(m[3])
		t := time.Date(yyyy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes overflow, so 13-40-2024 must be caught here
		if t.Year() != yyyy || t.Month() != time.Month(mm) || t.Day() != dd {
			return time.Time{}, fmt.Errorf("filed_date parse failed (mdy numeric): %q", s)
		}
		return t, nil
	}

	// 3) Named-month forms
	for _, layout := range []string{"Jan 2, 2006", "January 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("filed_date parse failed: %q", s)
}

// PartyRef is one parsed party mention with its resolved role.
type PartyRef struct {
	Name string
	Role string
}

var knownRoles = map[string]bool{
	"plaintiff":   true,
	"defendant":   true,
	"third_party": true,
	"intervenor":  true,
	"other":       true,
}

// ParseParties splits a free-text parties string into (name, role) pairs.
//
// Handles mixed separators:
//
//	"John Smith (plaintiff); Acme Corp, Jane Doe (defendants)"
//	"TechStart Inc (plaintiff), MegaCorp (defendant)"
//	"Robert Anderson (plaintiff) / HealthPlus Insurance Co. (defendant)"
//
// Semicolons and slashes are major separators; commas separate parties that
// share a role. A trailing parenthetical names the role for every party in
// its section; unrecognized role tokens map to "other".
func ParseParties(raw string) []PartyRef {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var parties []PartyRef

	for _, section := range majorSeparators.Split(raw, -1) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		// The trailing parenthetical is the role source; earlier ones are
		// part of a name, like "Acme Corp (USA) (defendant)"
		role := "other"
		if ms := parentheticalRe.FindAllStringSubmatchIndex(section, -1); ms != nil {
			last := ms[len(ms)-1]
			role = normalizeRole(section[last[2]:last[3]])
			section = strings.TrimSpace(section[:last[0]] + section[last[1]:])
		}

		for _, name := range strings.Split(section, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				parties = append(parties, PartyRef{Name: name, Role: role})
			}
		}
	}

	return parties
}

// normalizeRole maps a raw role token onto the closed role set, folding
// plural forms ("defendants" -> "defendant").
func normalizeRole(token string) string {
	role := strings.ToLower(strings.TrimSpace(token))
	if !knownRoles[role] && strings.HasSuffix(role, "s") {
		role = strings.TrimSuffix(role, "s")
	}
	if !knownRoles[role] {
		return "other"
	}
	return role
}

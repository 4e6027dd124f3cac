package ingest

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JustJay7/docket-pipeline/internal/database"
	"github.com/JustJay7/docket-pipeline/internal/normalize"
)

// linkParties resolves each parsed party and writes the (case, party, role)
// junction rows. Duplicate mentions within one record are deduplicated before
// insertion and re-ingestion of an existing triple is a no-op.
func linkParties(tx *gorm.DB, resolver *EntityResolver, caseID uint, refs []normalize.PartyRef) *RecordError {
	seen := make(map[string]bool, len(refs))

	for _, ref := range refs {
		dedupeKey := normalize.PartyKey(ref.Name) + "|" + ref.Role
		if seen[dedupeKey] {
			continue
		}
		seen[dedupeKey] = true

		partyID, recErr := resolver.Resolve(tx, EntityParty, ref.Name)
		if recErr != nil {
			return recErr
		}

		link := database.CaseParty{
			CaseID:    caseID,
			PartyID:   partyID,
			Role:      ref.Role,
			CreatedAt: time.Now().UTC(),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "case_id"}, {Name: "party_id"}, {Name: "role"}},
			DoNothing: true,
		}).Create(&link).Error
		if err != nil {
			return persistenceErr(err)
		}
	}

	return nil
}

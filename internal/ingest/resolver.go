package ingest

import (
	"errors"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JustJay7/docket-pipeline/internal/database"
	"github.com/JustJay7/docket-pipeline/internal/normalize"
	"github.com/JustJay7/docket-pipeline/pkg/logger"
)

// EntityKind selects the reference table a name resolves against
type EntityKind int

const (
	EntityCourt EntityKind = iota
	EntityJudge
	EntityCaseType
	EntityParty
)

func (k EntityKind) String() string {
	switch k {
	case EntityCourt:
		return "court"
	case EntityJudge:
		return "judge"
	case EntityCaseType:
		return "case_type"
	case EntityParty:
		return "party"
	}
	return "unknown"
}

// EntityResolver finds or creates canonical reference rows by normalized name
// and maintains the per-entity variation ledger.
//
// Resolved ids are cached across records. Ids created inside the current
// record's transaction scope stay in a pending overlay until the record
// succeeds, so a rolled-back record cannot poison the cache with ids that no
// longer exist.
type EntityResolver struct {
	cache   *gocache.Cache
	maxSize int
	pending map[string]uint
	log     *logger.Logger
}

func NewEntityResolver(maxSize int, ttl time.Duration, log *logger.Logger) *EntityResolver {
	return &EntityResolver{
		cache:   gocache.New(ttl, ttl*2),
		maxSize: maxSize,
		pending: make(map[string]uint),
		log:     log,
	}
}

// BeginRecord starts a fresh pending overlay for the next record
func (r *EntityResolver) BeginRecord() {
	r.pending = make(map[string]uint)
}

// PromoteRecord moves the pending overlay into the shared cache after the
// record's writes are known to stick
func (r *EntityResolver) PromoteRecord() {
	for key, id := range r.pending {
		if r.cache.ItemCount() >= r.maxSize {
			r.evictOldest()
		}
		r.cache.Set(key, id, gocache.DefaultExpiration)
	}
	r.pending = make(map[string]uint)
}

// DiscardRecord drops the pending overlay after a record rollback
func (r *EntityResolver) DiscardRecord() {
	r.pending = make(map[string]uint)
}

// Resolve returns the canonical entity id for a raw name, creating the
// reference row on first sighting and recording the raw form in the
// variation ledger. Idempotent for repeated raw forms of the same entity.
func (r *EntityResolver) Resolve(tx *gorm.DB, kind EntityKind, rawName string) (uint, *RecordError) {
	switch kind {
	case EntityCourt:
		return r.resolveCourt(tx, rawName)
	case EntityJudge:
		return r.resolveJudge(tx, rawName)
	case EntityCaseType:
		return r.resolveCaseType(tx, rawName)
	case EntityParty:
		return r.resolveParty(tx, rawName)
	}
	return 0, resolutionErr(CodeValidation, "unknown entity kind %d", kind)
}

func (r *EntityResolver) resolveCourt(tx *gorm.DB, rawName string) (uint, *RecordError) {
	raw := strings.TrimSpace(rawName)
	key := normalize.CourtKey(raw)
	if key == "" {
		return 0, resolutionErr(CodeCourt, "court name cannot be empty")
	}

	cacheKey := "court:" + key
	id, found := r.lookup(cacheKey)
	if !found {
		var court database.Court
		err := tx.Where("normalized_name = ?", key).First(&court).Error
		switch {
		case err == nil:
			id = court.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			court = database.Court{Name: raw, NormalizedName: key, CreatedAt: time.Now().UTC()}
			created, cerr := createConflictTolerant(tx, &court, "normalized_name", key, func() (uint, error) {
				var existing database.Court
				ferr := tx.Where("normalized_name = ?", key).First(&existing).Error
				return existing.ID, ferr
			})
			if cerr != nil {
				return 0, persistenceErr(cerr)
			}
			id = created
			r.log.Info("Created new court", "name", raw, "normalized", key)
		default:
			return 0, persistenceErr(err)
		}
		r.pending[cacheKey] = id
	}

	if err := r.recordCourtVariation(tx, id, raw); err != nil {
		return 0, persistenceErr(err)
	}
	return id, nil
}

func (r *EntityResolver) resolveJudge(tx *gorm.DB, rawName string) (uint, *RecordError) {
	raw := strings.TrimSpace(rawName)
	key := normalize.JudgeKey(raw)
	if key == "" {
		return 0, resolutionErr(CodeJudge, "judge name cannot be empty")
	}

	cacheKey := "judge:" + key
	id, found := r.lookup(cacheKey)
	if !found {
		var judge database.Judge
		err := tx.Where("normalized_name = ?", key).First(&judge).Error
		switch {
		case err == nil:
			id = judge.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			judge = database.Judge{FullName: raw, NormalizedName: key, CreatedAt: time.Now().UTC()}
			created, cerr := createConflictTolerant(tx, &judge, "normalized_name", key, func() (uint, error) {
				var existing database.Judge
				ferr := tx.Where("normalized_name = ?", key).First(&existing).Error
				return existing.ID, ferr
			})
			if cerr != nil {
				return 0, persistenceErr(cerr)
			}
			id = created
			r.log.Info("Created new judge", "name", raw, "normalized", key)
		default:
			return 0, persistenceErr(err)
		}
		r.pending[cacheKey] = id
	}

	if err := r.recordJudgeVariation(tx, id, raw); err != nil {
		return 0, persistenceErr(err)
	}
	return id, nil
}

func (r *EntityResolver) resolveCaseType(tx *gorm.DB, rawName string) (uint, *RecordError) {
	raw := strings.TrimSpace(rawName)
	key := normalize.CaseTypeKey(raw)
	if key == "" {
		return 0, resolutionErr(CodeCaseType, "case type cannot be empty")
	}

	cacheKey := "case_type:" + key
	if id, found := r.lookup(cacheKey); found {
		return id, nil
	}

	var caseType database.CaseType
	err := tx.Where("normalized_name = ?", key).First(&caseType).Error
	switch {
	case err == nil:
		r.pending[cacheKey] = caseType.ID
		return caseType.ID, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		caseType = database.CaseType{Name: raw, NormalizedName: key, CreatedAt: time.Now().UTC()}
		id, cerr := createConflictTolerant(tx, &caseType, "normalized_name", key, func() (uint, error) {
			var existing database.CaseType
			ferr := tx.Where("normalized_name = ?", key).First(&existing).Error
			return existing.ID, ferr
		})
		if cerr != nil {
			return 0, persistenceErr(cerr)
		}
		r.pending[cacheKey] = id
		r.log.Info("Created new case type", "name", key)
		return id, nil
	default:
		return 0, persistenceErr(err)
	}
}

func (r *EntityResolver) resolveParty(tx *gorm.DB, rawName string) (uint, *RecordError) {
	raw := strings.TrimSpace(rawName)
	key := normalize.PartyKey(raw)
	if key == "" {
		return 0, resolutionErr(CodeParty, "party name cannot be empty")
	}

	cacheKey := "party:" + key
	id, found := r.lookup(cacheKey)
	if !found {
		var party database.Party
		err := tx.Where("normalized_name = ?", key).First(&party).Error
		switch {
		case err == nil:
			id = party.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			party = database.Party{Name: raw, NormalizedName: key, CreatedAt: time.Now().UTC()}
			created, cerr := createConflictTolerant(tx, &party, "normalized_name", key, func() (uint, error) {
				var existing database.Party
				ferr := tx.Where("normalized_name = ?", key).First(&existing).Error
				return existing.ID, ferr
			})
			if cerr != nil {
				return 0, persistenceErr(cerr)
			}
			id = created
		default:
			return 0, persistenceErr(err)
		}
		r.pending[cacheKey] = id
	}

	if err := r.recordPartyVariation(tx, id, raw); err != nil {
		return 0, persistenceErr(err)
	}
	return id, nil
}

// createConflictTolerant inserts a reference row with ON CONFLICT DO NOTHING
// on the normalized-name constraint and falls back to re-reading the winner
// when the insert was a no-op. The uniqueness constraint is the sole guard
// against duplicate canonical rows.
func createConflictTolerant(tx *gorm.DB, model interface{}, column, key string, refetch func() (uint, error)) (uint, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: column}},
		DoNothing: true,
	}).Create(model)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return refetch()
	}
	switch m := model.(type) {
	case *database.Court:
		return m.ID, nil
	case *database.Judge:
		return m.ID, nil
	case *database.CaseType:
		return m.ID, nil
	case *database.Party:
		return m.ID, nil
	}
	return refetch()
}

func (r *EntityResolver) recordCourtVariation(tx *gorm.DB, courtID uint, raw string) error {
	now := time.Now().UTC()
	v := database.CourtNameVariation{CourtID: courtID, RawName: raw, FirstSeenAt: now, LastSeenAt: now, SeenCount: 1}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "court_id"}, {Name: "raw_name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"seen_count":   gorm.Expr("seen_count + 1"),
			"last_seen_at": now,
		}),
	}).Create(&v).Error
}

func (r *EntityResolver) recordJudgeVariation(tx *gorm.DB, judgeID uint, raw string) error {
	now := time.Now().UTC()
	v := database.JudgeNameVariation{JudgeID: judgeID, RawName: raw, FirstSeenAt: now, LastSeenAt: now, SeenCount: 1}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "judge_id"}, {Name: "raw_name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"seen_count":   gorm.Expr("seen_count + 1"),
			"last_seen_at": now,
		}),
	}).Create(&v).Error
}

func (r *EntityResolver) recordPartyVariation(tx *gorm.DB, partyID uint, raw string) error {
	now := time.Now().UTC()
	v := database.PartyNameVariation{PartyID: partyID, RawName: raw, FirstSeenAt: now, LastSeenAt: now, SeenCount: 1}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "party_id"}, {Name: "raw_name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"seen_count":   gorm.Expr("seen_count + 1"),
			"last_seen_at": now,
		}),
	}).Create(&v).Error
}

func (r *EntityResolver) lookup(key string) (uint, bool) {
	if id, ok := r.pending[key]; ok {
		return id, true
	}
	if v, ok := r.cache.Get(key); ok {
		if id, ok := v.(uint); ok {
			return id, true
		}
	}
	return 0, false
}

func (r *EntityResolver) evictOldest() {
	items := r.cache.Items()
	if len(items) == 0 {
		return
	}

	var oldestKey string
	var oldestExp int64
	for key, item := range items {
		if oldestKey == "" || item.Expiration < oldestExp {
			oldestKey = key
			oldestExp = item.Expiration
		}
	}
	if oldestKey != "" {
		r.cache.Delete(oldestKey)
	}
}

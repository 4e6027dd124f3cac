package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/docket-pipeline/internal/database"
)

func TestResolverDeduplicatesCourtVariants(t *testing.T) {
	db := newTestDB(t)
	r := newTestResolver(t)

	id1, recErr := r.Resolve(db, EntityCourt, "S.D.N.Y")
	require.Nil(t, recErr)
	id2, recErr := r.Resolve(db, EntityCourt, "S.D.N.Y.")
	require.Nil(t, recErr)
	assert.Equal(t, id1, id2)

	var courts []database.Court
	require.NoError(t, db.Find(&courts).Error)
	require.Len(t, courts, 1)
	assert.Equal(t, "SDNY", courts[0].NormalizedName)
	// display name is the first raw form seen
	assert.Equal(t, "S.D.N.Y", courts[0].Name)

	var variations []database.CourtNameVariation
	require.NoError(t, db.Order("raw_name").Find(&variations).Error)
	require.Len(t, variations, 2)
	for _, v := range variations {
		assert.Equal(t, id1, v.CourtID)
		assert.Equal(t, 1, v.SeenCount)
	}
}

func TestResolverSeenCountMonotonic(t *testing.T) {
	db := newTestDB(t)
	r := newTestResolver(t)

	for i := 0; i < 3; i++ {
		_, recErr := r.Resolve(db, EntityParty, "Acme Corp")
		require.Nil(t, recErr)
	}

	var variations []database.PartyNameVariation
	require.NoError(t, db.Find(&variations).Error)
	require.Len(t, variations, 1)
	assert.Equal(t, 3, variations[0].SeenCount)
	assert.False(t, variations[0].LastSeenAt.Before(variations[0].FirstSeenAt))
}

func TestResolverJudgeHonorifics(t *testing.T) {
	db := newTestDB(t)
	r := newTestResolver(t)

	id1, recErr := r.Resolve(db, EntityJudge, "Hon. Maria Rodriguez")
	require.Nil(t, recErr)
	id2, recErr := r.Resolve(db, EntityJudge, "Judge Maria Rodriguez")
	require.Nil(t, recErr)
	assert.Equal(t, id1, id2)

	var judges []database.Judge
	require.NoError(t, db.Find(&judges).Error)
	require.Len(t, judges, 1)
	assert.Equal(t, "maria rodriguez", judges[0].NormalizedName)

	var variations []database.JudgeNameVariation
	require.NoError(t, db.Find(&variations).Error)
	require.Len(t, variations, 2)
	for _, v := range variations {
		assert.Equal(t, 1, v.SeenCount)
	}
}

func TestResolverCaseTypeCaseFolded(t *testing.T) {
	db := newTestDB(t)
	r := newTestResolver(t)

	id1, recErr := r.Resolve(db, EntityCaseType, "Civil")
	require.Nil(t, recErr)
	id2, recErr := r.Resolve(db, EntityCaseType, "civil")
	require.Nil(t, recErr)
	assert.Equal(t, id1, id2)

	var types []database.CaseType
	require.NoError(t, db.Find(&types).Error)
	require.Len(t, types, 1)
}

func TestResolverEmptyNames(t *testing.T) {
	db := newTestDB(t)
	r := newTestResolver(t)

	tests := []struct {
		kind EntityKind
		code string
	}{
		{EntityCourt, CodeCourt},
		{EntityJudge, CodeJudge},
		{EntityCaseType, CodeCaseType},
		{EntityParty, CodeParty},
	}
	for _, tt := range tests {
		_, recErr := r.Resolve(db, tt.kind, "   ")
		require.NotNil(t, recErr, "kind %s", tt.kind)
		assert.Equal(t, tt.code, recErr.Code)
		assert.Equal(t, KindResolution, recErr.Kind)
	}
}

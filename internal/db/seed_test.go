package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/spark-match/internal/db"
	"github.com/oggyb/spark-match/internal/testutil"
)

func TestSeedTestData(t *testing.T) {
	database := testutil.DB(t)

	require.NoError(t, db.SeedTestData(database))

	var users int64
	require.NoError(t, database.Model(&db.User{}).Count(&users).Error)
	assert.EqualValues(t, 20, users)

	var matches []db.Match
	require.NoError(t, database.Find(&matches).Error)
	assert.NotEmpty(t, matches)
	for _, m := range matches {
		assert.Less(t, m.UserAID, m.UserBID, "match %d is not canonical", m.ID)
	}
}

func TestSeedMinimalTestData_Resets(t *testing.T) {
	database := testutil.SeededDB(t)

	require.NoError(t, db.SeedMinimalTestData(database))

	var users, swipes int64
	require.NoError(t, database.Model(&db.User{}).Count(&users).Error)
	require.NoError(t, database.Model(&db.Swipe{}).Count(&swipes).Error)
	assert.EqualValues(t, 4, users)
	assert.EqualValues(t, 3, swipes)
}

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/seatwheel/seatwheel/internal/fingerprint"
	"github.com/seatwheel/seatwheel/internal/seating"
)

func openArchiveTestDB(t *testing.T) *bolt.DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func shifted(by int) seating.Arrangement {
	var a seating.Arrangement
	for i := range a {
		a[i] = (i + by) % seating.SeatCount
	}
	return a
}

func TestArchive_RecordAndList(t *testing.T) {
	ar, err := NewArchive(openArchiveTestDB(t))
	require.NoError(t, err)

	clock := time.Unix(1700000000, 0)
	ar.now = func() time.Time { return clock }

	first, err := ar.Record(shifted(1))
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	second, err := ar.Record(shifted(2))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.Sequence)
	assert.Equal(t, uint64(2), second.Sequence)
	assert.Equal(t, fingerprint.Generate(shifted(1)), first.Fingerprint)

	commits, err := ar.List()
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, shifted(1), commits[0].Arrangement)
	assert.Equal(t, int64(1700000000), commits[0].CommittedAt)
	assert.Equal(t, shifted(2), commits[1].Arrangement)
	assert.Equal(t, int64(1700000060), commits[1].CommittedAt)
	n, err := ar.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestArchive_Lookup(t *testing.T) {
	ar, err := NewArchive(openArchiveTestDB(t))
	require.NoError(t, err)

	rec, err := ar.Record(shifted(4))
	require.NoError(t, err)

	got, err := ar.Lookup(rec.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = ar.Lookup(fingerprint.Generate(shifted(5)))
	assert.ErrorIs(t, err, ErrCommitNotFound)
}

func TestArchive_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	ar, err := NewArchive(db)
	require.NoError(t, err)
	_, err = ar.Record(shifted(3))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ar, err = NewArchive(db)
	require.NoError(t, err)

	commits, err := ar.List()
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, shifted(3), commits[0].Arrangement)
}

func TestArchive_RecordFailsWhenDBClosed(t *testing.T) {
	db := openArchiveTestDB(t)
	ar, err := NewArchive(db)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = ar.Record(shifted(1))
	assert.Error(t, err)

	n, err := ar.Count()
	assert.ErrorIs(t, err, bolt.ErrDatabaseNotOpen)
	assert.Zero(t, n)
}

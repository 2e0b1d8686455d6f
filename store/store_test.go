package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/facecards/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func personAt(name string, created time.Time) *models.Person {
	p := models.NewPerson(name)
	p.CreatedAt = created
	return p
}

func TestCreateGetRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	p := models.NewPerson("Ada Lovelace")
	p.Context = "Analytical Engine notes"
	p.FaceFilename = "ada.jpg"
	p.CardContextToPerson = true
	p.SourceURL = "https://ada.example.com"
	require.NoError(t, db.Create(ctx, p))
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := db.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "Analytical Engine notes", got.Context)
	assert.Equal(t, "ada.jpg", got.FaceFilename)
	assert.True(t, got.CardFaceToName)
	assert.True(t, got.CardNameToFace)
	assert.True(t, got.CardNameFaceToContext)
	assert.True(t, got.CardContextToPerson)
	assert.Equal(t, models.SourceManual, got.Source)
	assert.Equal(t, "https://ada.example.com", got.SourceURL)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestGetMissing(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAndDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	p := models.NewPerson("Grace Hopper")
	require.NoError(t, db.Create(ctx, p))

	p.Name = "Grace Brewster Hopper"
	p.CardFaceToName = false
	require.NoError(t, db.Update(ctx, p))

	got, err := db.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace Brewster Hopper", got.Name)
	assert.False(t, got.CardFaceToName)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	require.NoError(t, db.Delete(ctx, p.ID))
	_, err = db.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, db.Delete(ctx, p.ID), ErrNotFound)
	assert.ErrorIs(t, db.Update(ctx, p), ErrNotFound)
}

func TestListNewestFirstAndSearch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "100%_Real"} {
		require.NoError(t, db.Create(ctx, personAt(name, base.Add(time.Duration(i)*time.Hour))))
	}

	all, err := db.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "100%_Real", all[0].Name)
	assert.Equal(t, "Ada Lovelace", all[3].Name)

	found, err := db.List(ctx, "  LOVE ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ada Lovelace", found[0].Name)

	found, err = db.List(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, found, 4)

	found, err = db.List(ctx, "%")
	require.NoError(t, err)
	require.Len(t, found, 1, "LIKE wildcards must match literally")
	assert.Equal(t, "100%_Real", found[0].Name)
}

func TestFindDuplicate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	p := models.NewPerson("Ada Lovelace")
	require.NoError(t, db.Create(ctx, p))

	dup, err := db.FindDuplicate(ctx, "  ada lovelace ", "")
	require.NoError(t, err)
	require.NotNil(t, dup)
	assert.Equal(t, p.ID, dup.ID)

	dup, err = db.FindDuplicate(ctx, "Ada Lovelace", p.ID)
	require.NoError(t, err)
	assert.Nil(t, dup, "excluded id must not match itself")

	dup, err = db.FindDuplicate(ctx, "Ada", "")
	require.NoError(t, err)
	assert.Nil(t, dup)

	dup, err = db.FindDuplicate(ctx, "", "")
	require.NoError(t, err)
	assert.Nil(t, dup)
}

func TestListByIDs(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	a := models.NewPerson("A")
	b := models.NewPerson("B")
	c := models.NewPerson("C")
	for _, p := range []*models.Person{a, b, c} {
		require.NoError(t, db.Create(ctx, p))
	}

	got, err := db.ListByIDs(ctx, []string{a.ID, c.ID, "missing"})
	require.NoError(t, err)
	names := []string{}
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"A", "C"}, names)

	got, err = db.ListByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

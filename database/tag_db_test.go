package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagNames(tags []Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

func TestAddTagIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	added, err := AddTag(db, "holiday")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = AddTag(db, "holiday")
	require.NoError(t, err)
	assert.False(t, added)

	tags, err := ListTags(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"holiday"}, tagNames(tags))
}

func TestRenameTag(t *testing.T) {
	db := setupTestDB(t)
	_, err := AddTag(db, "holliday")
	require.NoError(t, err)

	renamed, err := RenameTag(db, "holliday", "holiday")
	require.NoError(t, err)
	assert.True(t, renamed)

	tags, err := ListTags(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"holiday"}, tagNames(tags))
}

func TestRenameTagRejectsCollisionWithoutMerging(t *testing.T) {
	db := setupTestDB(t)
	_, err := AddTag(db, "sea")
	require.NoError(t, err)
	_, err = AddTag(db, "ocean")
	require.NoError(t, err)

	renamed, err := RenameTag(db, "ocean", "sea")
	require.NoError(t, err)
	assert.False(t, renamed)

	tags, err := ListTags(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"ocean", "sea"}, tagNames(tags))
}

func TestRenameTagMissingOldName(t *testing.T) {
	db := setupTestDB(t)

	renamed, err := RenameTag(db, "ghost", "spirit")
	require.NoError(t, err)
	assert.False(t, renamed)
}

func TestRemoveTagCascadesAssociations(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestMedia(t, db, Media{Filepath: "photos/a.jpg"})
	require.NoError(t, SetMediaTags(db, id, []string{"holiday", "sea"}))

	removed, err := RemoveTag(db, "holiday")
	require.NoError(t, err)
	assert.True(t, removed)

	names, err := GetTagsForMedia(db, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"sea"}, names)
}

func TestRemoveTagMissing(t *testing.T) {
	db := setupTestDB(t)

	removed, err := RemoveTag(db, "ghost")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSetMediaTagsReplacesEntireSet(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestMedia(t, db, Media{Filepath: "photos/a.jpg"})

	require.NoError(t, SetMediaTags(db, id, []string{"holiday", "sea"}))
	require.NoError(t, SetMediaTags(db, id, []string{"hiking"}))

	names, err := GetTagsForMedia(db, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"hiking"}, names)

	// replaced tags stay in the vocabulary for other records
	tags, err := ListTags(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"hiking", "holiday", "sea"}, tagNames(tags))
}

func TestSetMediaTagsEmptyClearsAssociations(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestMedia(t, db, Media{Filepath: "photos/a.jpg"})
	require.NoError(t, SetMediaTags(db, id, []string{"holiday"}))

	require.NoError(t, SetMediaTags(db, id, []string{}))

	names, err := GetTagsForMedia(db, id)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSetMediaTagsDeduplicates(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestMedia(t, db, Media{Filepath: "photos/a.jpg"})

	require.NoError(t, SetMediaTags(db, id, []string{"sea", "sea", "sea"}))

	names, err := GetTagsForMedia(db, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"sea"}, names)
}

func TestAddTagsToMediaKeepsExistingSet(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestMedia(t, db, Media{Filepath: "photos/a.jpg"})
	require.NoError(t, SetMediaTags(db, id, []string{"holiday"}))

	require.NoError(t, AddTagsToMedia(db, id, []string{"sea", "holiday"}))

	names, err := GetTagsForMedia(db, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"holiday", "sea"}, names)
}

func TestDeleteMediaCascadesTagAssociations(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestMedia(t, db, Media{Filepath: "photos/a.jpg"})
	require.NoError(t, SetMediaTags(db, id, []string{"holiday"}))

	require.NoError(t, DeleteMedia(db, id))

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM media_tags").Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)

	// the tag itself survives
	tags, err := ListTags(db)
	require.NoError(t, err)
	assert.Equal(t, []string{"holiday"}, tagNames(tags))
}

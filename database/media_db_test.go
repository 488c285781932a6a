package database

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMediaByID(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestMedia(t, db, Media{
		Filepath:    "photos/beach.jpg",
		Filename:    "beach.jpg",
		Type:        "image",
		Filesize:    2048,
		Width:       intPtr(4000),
		Height:      intPtr(3000),
		Format:      strPtr("JPEG"),
		CameraModel: strPtr("Canon EOS R5"),
	})
	require.NoError(t, SetMediaTags(db, id, []string{"sea", "holiday"}))

	m, err := GetMediaByID(db, id)
	require.NoError(t, err)
	assert.Equal(t, "photos/beach.jpg", m.Filepath)
	assert.Equal(t, "beach.jpg", m.Filename)
	assert.Equal(t, int64(2048), m.Filesize)
	require.NotNil(t, m.Width)
	assert.Equal(t, 4000, *m.Width)
	assert.Equal(t, []string{"holiday", "sea"}, m.Tags)
}

func TestGetMediaByIDMissing(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetMediaByID(db, 999)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSetFavourite(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestMedia(t, db, Media{Filepath: "photos/a.jpg"})

	require.NoError(t, SetFavourite(db, id, true))
	m, err := GetMediaByID(db, id)
	require.NoError(t, err)
	assert.True(t, m.IsFavourite)

	require.NoError(t, SetFavourite(db, id, false))
	m, err = GetMediaByID(db, id)
	require.NoError(t, err)
	assert.False(t, m.IsFavourite)
}

func TestSetFavouriteMissing(t *testing.T) {
	db := setupTestDB(t)

	err := SetFavourite(db, 999, true)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSetFilenameLeavesFilepathAlone(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestMedia(t, db, Media{Filepath: "photos/a.jpg", Filename: "a.jpg"})

	require.NoError(t, SetFilename(db, id, "sunset at the pier"))

	m, err := GetMediaByID(db, id)
	require.NoError(t, err)
	assert.Equal(t, "sunset at the pier", m.Filename)
	assert.Equal(t, "photos/a.jpg", m.Filepath)
}

func TestSetFilenameRejectsEmpty(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestMedia(t, db, Media{Filepath: "photos/a.jpg"})

	assert.Error(t, SetFilename(db, id, "   "))
}

func TestRecordViewAccumulates(t *testing.T) {
	db := setupTestDB(t)
	id := insertTestMedia(t, db, Media{Filepath: "photos/a.jpg"})

	require.NoError(t, RecordView(db, id, 30))
	require.NoError(t, RecordView(db, id, 15))

	m, err := GetMediaByID(db, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), m.TimesViewed)
	assert.Equal(t, int64(45), m.TimeViewed)
}

func TestGetUniqueValuesNaturallySorted(t *testing.T) {
	db := setupTestDB(t)
	insertTestMedia(t, db, Media{Filepath: "a.jpg", CameraModel: strPtr("Camera 10")})
	insertTestMedia(t, db, Media{Filepath: "b.jpg", CameraModel: strPtr("Camera 2")})
	insertTestMedia(t, db, Media{Filepath: "c.jpg", CameraModel: strPtr("Camera 2")})
	insertTestMedia(t, db, Media{Filepath: "d.jpg"})

	values, err := GetUniqueValues(db, "camera_model")
	require.NoError(t, err)
	assert.Equal(t, []string{"Camera 2", "Camera 10"}, values)
}

func TestGetUniqueValuesRejectsUnknownColumn(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetUniqueValues(db, "filepath")
	assert.Error(t, err)
}

func TestGetMediaCount(t *testing.T) {
	db := setupTestDB(t)
	insertTestMedia(t, db, Media{Filepath: "a.jpg"})
	insertTestMedia(t, db, Media{Filepath: "b.jpg"})

	count, err := GetMediaCount(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

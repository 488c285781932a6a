package importer

import (
	"database/sql"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/mediagallery/database"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestScanAndImport(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()

	writePNG(t, filepath.Join(dir, "photo.png"), 8, 6)
	writeFile(t, filepath.Join(dir, "clip.mp4"), "not really a video")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))
	writePNG(t, filepath.Join(dir, "nested", "deep.png"), 4, 4)

	summary, err := ScanAndImport(db, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Scanned)
	assert.Equal(t, 3, summary.Imported)
	assert.Zero(t, summary.Skipped)
	assert.Zero(t, summary.Failed)

	count, err := database.GetMediaCount(db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	records, err := database.QueryMediaByFilter(db, database.FilterSpec{}, database.ActiveSet{})
	require.NoError(t, err)

	byName := map[string]database.Media{}
	for _, m := range records {
		byName[m.Filename] = m
	}

	photo := byName["photo.png"]
	assert.Equal(t, "image", photo.Type)
	require.NotNil(t, photo.Width)
	assert.Equal(t, 8, *photo.Width)
	require.NotNil(t, photo.Height)
	assert.Equal(t, 6, *photo.Height)
	require.NotNil(t, photo.Format)
	assert.Equal(t, "PNG", *photo.Format)
	assert.NotZero(t, photo.Filesize)
	assert.NotZero(t, photo.DateAdded)

	clip := byName["clip.mp4"]
	assert.Equal(t, "video", clip.Type)
	assert.Nil(t, clip.Width)

	_, found := byName["notes.txt"]
	assert.False(t, found)
}

func TestScanAndImportIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "photo.png"), 4, 4)

	first, err := ScanAndImport(db, dir)
	require.NoError(t, err)
	require.Equal(t, 1, first.Imported)

	second, err := ScanAndImport(db, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Scanned)
	assert.Zero(t, second.Imported)
	assert.Equal(t, 1, second.Skipped)

	count, err := database.GetMediaCount(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestScanAndImportPicksUpNewFiles(t *testing.T) {
	db := setupTestDB(t)
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "one.png"), 4, 4)

	_, err := ScanAndImport(db, dir)
	require.NoError(t, err)

	writePNG(t, filepath.Join(dir, "two.png"), 4, 4)
	summary, err := ScanAndImport(db, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 1, summary.Skipped)
}

func TestScanAndImportMissingDirectory(t *testing.T) {
	db := setupTestDB(t)

	_, err := ScanAndImport(db, "/does/not/exist")
	assert.Error(t, err)
}

func TestExtractImageMetadataWithoutExif(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.png")
	writePNG(t, path, 12, 7)

	meta, err := ExtractImageMetadata(path)
	require.NoError(t, err)
	require.NotNil(t, meta)
	require.NotNil(t, meta.Width)
	assert.Equal(t, 12, *meta.Width)
	require.NotNil(t, meta.Height)
	assert.Equal(t, 7, *meta.Height)
	require.NotNil(t, meta.Format)
	assert.Equal(t, "PNG", *meta.Format)
	assert.Nil(t, meta.CameraModel)
	assert.Nil(t, meta.DateCaptured)
}

func TestExtractImageMetadataUnreadableFile(t *testing.T) {
	_, err := ExtractImageMetadata("/does/not/exist.png")
	assert.Error(t, err)
}

package worker

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/mediagallery/database"
)

func setupWorker(t *testing.T) (*StoreWorker, *sql.DB) {
	t.Helper()
	db, err := database.InitDB(":memory:")
	require.NoError(t, err)

	w := NewStoreWorker(db, t.TempDir(), 16)
	t.Cleanup(func() {
		w.Stop()
		db.Close()
	})
	return w, db
}

func insertFixture(t *testing.T, db *sql.DB, filepath string) int64 {
	t.Helper()
	created, err := database.InsertMedia(db, database.Media{
		Filepath:  filepath,
		Filename:  filepath,
		Type:      "image",
		DateAdded: 1700000000,
	})
	require.NoError(t, err)
	require.True(t, created)

	var id int64
	require.NoError(t, db.QueryRow("SELECT id FROM media WHERE filepath = ?", filepath).Scan(&id))
	return id
}

func TestWorkerQueryMedia(t *testing.T) {
	w, db := setupWorker(t)
	insertFixture(t, db, "a.jpg")
	insertFixture(t, db, "b.jpg")

	resp := w.Do(OpQueryMedia, QueryMediaPayload{Spec: database.FilterSpec{}, Active: database.ActiveSet{}}, nil)
	require.NoError(t, resp.Err)

	records, ok := resp.Result.([]database.Media)
	require.True(t, ok)
	assert.Len(t, records, 2)
}

func TestWorkerResponseEchoesOpTokenAndContext(t *testing.T) {
	w, _ := setupWorker(t)

	reply := make(chan Response, 1)
	token, ok := w.Submit(Request{Op: OpListTags, Context: "caller-7", Reply: reply})
	require.True(t, ok)
	require.NotEmpty(t, token)

	resp := <-reply
	assert.Equal(t, OpListTags, resp.Op)
	assert.Equal(t, token, resp.Token)
	assert.Equal(t, "caller-7", resp.Context)
	assert.NoError(t, resp.Err)
}

func TestWorkerTokensAreUnique(t *testing.T) {
	w, _ := setupWorker(t)

	reply := make(chan Response, 2)
	t1, ok := w.Submit(Request{Op: OpListTags, Reply: reply})
	require.True(t, ok)
	t2, ok := w.Submit(Request{Op: OpListTags, Reply: reply})
	require.True(t, ok)

	assert.NotEqual(t, t1, t2)
	<-reply
	<-reply
}

func TestWorkerFavouriteRoundTrip(t *testing.T) {
	w, db := setupWorker(t)
	id := insertFixture(t, db, "a.jpg")

	resp := w.Do(OpToggleFavourite, ToggleFavouritePayload{ID: id, Favourite: true}, nil)
	require.NoError(t, resp.Err)

	resp = w.Do(OpGetMedia, GetMediaPayload{ID: id}, nil)
	require.NoError(t, resp.Err)
	media, ok := resp.Result.(database.Media)
	require.True(t, ok)
	assert.True(t, media.IsFavourite)
}

func TestWorkerMissingMediaPassesThroughErrNoRows(t *testing.T) {
	w, _ := setupWorker(t)

	resp := w.Do(OpToggleFavourite, ToggleFavouritePayload{ID: 999, Favourite: true}, nil)
	assert.ErrorIs(t, resp.Err, sql.ErrNoRows)
}

func TestWorkerNormalizesTagNames(t *testing.T) {
	w, db := setupWorker(t)
	id := insertFixture(t, db, "a.jpg")

	resp := w.Do(OpSetTags, SetTagsPayload{ID: id, Tags: []string{" summer holiday ", "se@a!", "   "}}, nil)
	require.NoError(t, resp.Err)

	names, err := database.GetTagsForMedia(db, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"sea", "summer_holiday"}, names)
}

func TestWorkerQueryMediaNormalizesTagFilter(t *testing.T) {
	w, db := setupWorker(t)
	id := insertFixture(t, db, "a.jpg")
	insertFixture(t, db, "b.jpg")

	resp := w.Do(OpSetTags, SetTagsPayload{ID: id, Tags: []string{"summer holiday"}}, nil)
	require.NoError(t, resp.Err)

	// the filter arrives in the same raw form writes do, and must find
	// the record stored under summer_holiday
	spec := database.FilterSpec{Tags: []string{" summer holiday "}, TagMode: database.TagModeAny}
	resp = w.Do(OpQueryMedia, QueryMediaPayload{Spec: spec, Active: database.ActiveSet{}}, nil)
	require.NoError(t, resp.Err)

	records, ok := resp.Result.([]database.Media)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
}

func TestWorkerAddTagRejectsUnusableName(t *testing.T) {
	w, _ := setupWorker(t)

	resp := w.Do(OpAddTag, TagNamePayload{Name: "!!!"}, nil)
	assert.Error(t, resp.Err)
}

func TestWorkerRenameTagNormalizesNewName(t *testing.T) {
	w, db := setupWorker(t)

	resp := w.Do(OpAddTag, TagNamePayload{Name: "vacation"}, nil)
	require.NoError(t, resp.Err)

	resp = w.Do(OpRenameTag, RenameTagPayload{OldName: "vacation", NewName: " summer trip "}, nil)
	require.NoError(t, resp.Err)
	renamed, ok := resp.Result.(bool)
	require.True(t, ok)
	assert.True(t, renamed)

	tags, err := database.ListTags(db)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "summer_trip", tags[0].Name)
}

func TestWorkerUnknownOperation(t *testing.T) {
	w, _ := setupWorker(t)

	resp := w.Do("defragment", nil, nil)
	require.Error(t, resp.Err)
	assert.Contains(t, resp.Err.Error(), "unknown operation")
}

func TestWorkerMismatchedPayload(t *testing.T) {
	w, _ := setupWorker(t)

	resp := w.Do(OpToggleFavourite, "not a payload", nil)
	require.Error(t, resp.Err)
	assert.Contains(t, resp.Err.Error(), "unexpected type")
}

func TestWorkerSubmitRejectsWhenQueueFull(t *testing.T) {
	// no run() goroutine: nothing drains the queue
	w := &StoreWorker{
		requests: make(chan Request, 1),
		stopChan: make(chan struct{}),
	}

	_, ok := w.Submit(Request{Op: OpListTags})
	require.True(t, ok)
	_, ok = w.Submit(Request{Op: OpListTags})
	assert.False(t, ok)
}

func TestWorkerSurfacesStoreFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectQuery("SELECT").WillReturnError(sql.ErrConnDone)

	w := NewStoreWorker(db, t.TempDir(), 4)
	t.Cleanup(func() {
		w.Stop()
		db.Close()
	})

	resp := w.Do(OpListTags, nil, nil)
	assert.ErrorIs(t, resp.Err, sql.ErrConnDone)
}

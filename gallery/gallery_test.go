package gallery

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/mediagallery/database"
)

func testRecords(n int) []database.Media {
	records := make([]database.Media, n)
	for i := range records {
		records[i] = database.Media{
			ID:       int64(i + 1),
			Filepath: fmt.Sprintf("photos/%03d.jpg", i+1),
			Filename: fmt.Sprintf("%03d.jpg", i+1),
			Type:     "image",
		}
	}
	return records
}

func testView() *View {
	return NewView(Config{CellsMax: 30, Columns: 4, ColumnsMax: 7, Spacing: 10, Margin: 10})
}

func TestPopulateCapsCellCount(t *testing.T) {
	v := testView()

	v.Populate(testRecords(45))
	assert.Len(t, v.Cells(), 30)

	v.Populate(testRecords(5))
	assert.Len(t, v.Cells(), 5)
}

func TestPopulatePreservesRecordOrder(t *testing.T) {
	v := testView()
	records := testRecords(10)
	// reversed input must come out reversed
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	v.Populate(records)

	cells := v.Cells()
	require.Len(t, cells, 10)
	for i, cell := range cells {
		assert.Equal(t, records[i].ID, cell.Record.ID)
	}
}

func TestPopulateReplacesPreviousCells(t *testing.T) {
	v := testView()
	v.Populate(testRecords(10))
	v.Populate(testRecords(3))

	assert.Len(t, v.Cells(), 3)
}

func TestEditCellPatchesInPlace(t *testing.T) {
	v := testView()
	v.Populate(testRecords(5))

	name := "renamed.jpg"
	ok := v.EditCell(3, &name, []string{"holiday"})
	require.True(t, ok)

	cells := v.Cells()
	assert.Equal(t, "renamed.jpg", cells[2].Record.Filename)
	assert.Equal(t, []string{"holiday"}, cells[2].Record.Tags)

	// neighbours untouched
	assert.Equal(t, "002.jpg", cells[1].Record.Filename)
	assert.Equal(t, "004.jpg", cells[3].Record.Filename)
}

func TestEditCellUnknownID(t *testing.T) {
	v := testView()
	v.Populate(testRecords(5))

	name := "x"
	assert.False(t, v.EditCell(99, &name, nil))
}

func TestSetFavouritePatchesOneCell(t *testing.T) {
	v := testView()
	v.Populate(testRecords(3))

	require.True(t, v.SetFavourite(2, true))

	cells := v.Cells()
	assert.False(t, cells[0].Record.IsFavourite)
	assert.True(t, cells[1].Record.IsFavourite)
	assert.False(t, cells[2].Record.IsFavourite)
}

func TestResizeComputesUniformCellWidth(t *testing.T) {
	v := testView()
	v.Populate(testRecords(8))

	// 1000 total - 2*10 margin - 3*10 spacing = 950 across 4 columns
	v.Resize(1000)
	assert.Equal(t, 237, v.CellWidth())

	for _, cell := range v.Cells() {
		assert.Equal(t, 237, cell.Width)
	}
}

func TestResizeNeverGoesNegative(t *testing.T) {
	v := testView()
	v.Resize(5)
	assert.Equal(t, 0, v.CellWidth())
}

func TestSetColumnsClampsAndReflows(t *testing.T) {
	v := testView()
	v.Resize(1000)

	assert.Equal(t, 7, v.SetColumns(12))
	assert.Equal(t, 1, v.SetColumns(0))

	// one column: full width minus margins
	assert.Equal(t, 980, v.CellWidth())
}

func TestToggleDetail(t *testing.T) {
	v := testView()
	v.Populate(testRecords(2))

	visible := v.ToggleDetail("filesize")
	assert.Equal(t, []string{"filesize"}, visible)
	assert.True(t, v.Cells()[0].ShowDetails)

	visible = v.ToggleDetail("camera_model")
	assert.Equal(t, []string{"filesize", "camera_model"}, visible)

	visible = v.ToggleDetail("filesize")
	assert.Equal(t, []string{"camera_model"}, visible)

	visible = v.ToggleDetail("camera_model")
	assert.Empty(t, visible)
	assert.False(t, v.Cells()[0].ShowDetails)
}

func TestToggleDetailIgnoresUnknownName(t *testing.T) {
	v := testView()

	visible := v.ToggleDetail("mood")
	assert.Empty(t, visible)
}

func TestImagePathsFollowCellOrder(t *testing.T) {
	v := testView()
	v.Populate(testRecords(3))

	assert.Equal(t, []string{"photos/001.jpg", "photos/002.jpg", "photos/003.jpg"}, v.ImagePaths())
}

func TestImagePathsEmptyView(t *testing.T) {
	v := testView()
	assert.Empty(t, v.ImagePaths())
}

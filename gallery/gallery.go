package gallery

import (
	"log"
	"sync"

	"github.com/camden-git/mediagallery/database"
)

// detail rows a cell can show under its image
var knownDetails = map[string]bool{
	"dimensions":      true,
	"filesize":        true,
	"camera_model":    true,
	"times_viewed":    true,
	"duration_viewed": true,
	"date_captured":   true,
	"date_added":      true,
}

// Cell is one materialized gallery entry: a record snapshot plus its
// rendering state
type Cell struct {
	Record      database.Media `json:"record"`
	Width       int            `json:"width"`
	ShowDetails bool           `json:"show_details"`
}

// Config fixes the view's layout parameters at construction
type Config struct {
	CellsMax   int
	Columns    int
	ColumnsMax int
	Spacing    int
	Margin     int
}

// View is a bounded presentation cache over filter query results. It
// materializes at most CellsMax cells per populate and never re-sorts:
// the compiler's record order is authoritative.
type View struct {
	mu sync.Mutex

	cellsMax   int
	columns    int
	columnsMax int
	spacing    int
	margin     int

	totalWidth int
	cellWidth  int

	cells   []*Cell
	details []string
}

func NewView(cfg Config) *View {
	if cfg.CellsMax <= 0 {
		cfg.CellsMax = 30
	}
	if cfg.ColumnsMax <= 0 {
		cfg.ColumnsMax = 7
	}
	if cfg.Columns <= 0 {
		cfg.Columns = 1
	}
	if cfg.Columns > cfg.ColumnsMax {
		cfg.Columns = cfg.ColumnsMax
	}
	return &View{
		cellsMax:   cfg.CellsMax,
		columns:    cfg.Columns,
		columnsMax: cfg.ColumnsMax,
		spacing:    cfg.Spacing,
		margin:     cfg.Margin,
		cells:      []*Cell{},
		details:    []string{},
	}
}

// Populate clears the view and rebuilds it from the given records in
// order, discarding anything beyond the cell cap
func (v *View) Populate(records []database.Media) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cells = v.cells[:0]
	for i, record := range records {
		if i >= v.cellsMax {
			break
		}
		v.cells = append(v.cells, &Cell{Record: record, Width: v.cellWidth})
	}
	log.Printf("gallery: populated %d cells from %d records", len(v.cells), len(records))
}

func (v *View) findCell(id int64) *Cell {
	for _, cell := range v.cells {
		if cell.Record.ID == id {
			return cell
		}
	}
	return nil
}

// EditCell patches a single cell in place, leaving every other cell (and
// the caller's scroll position) untouched. Nil fields are unchanged.
// Returns false when the id is not materialized.
func (v *View) EditCell(id int64, newFilename *string, newTags []string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	cell := v.findCell(id)
	if cell == nil {
		return false
	}
	if newFilename != nil && *newFilename != "" {
		cell.Record.Filename = *newFilename
	}
	if newTags != nil {
		cell.Record.Tags = append([]string(nil), newTags...)
	}
	return true
}

// SetFavourite patches the favourite flag on one cell
func (v *View) SetFavourite(id int64, favourite bool) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	cell := v.findCell(id)
	if cell == nil {
		return false
	}
	cell.Record.IsFavourite = favourite
	return true
}

// Resize recomputes the uniform cell width for a new total width and
// reflows the existing cells without rebuilding them
func (v *View) Resize(totalWidth int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.totalWidth = totalWidth
	v.reflow()
}

// SetColumns clamps the column count to [1, columnsMax] and reflows
func (v *View) SetColumns(columns int) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	if columns < 1 {
		columns = 1
	}
	if columns > v.columnsMax {
		columns = v.columnsMax
	}
	v.columns = columns
	v.reflow()
	return v.columns
}

func (v *View) reflow() {
	available := v.totalWidth - 2*v.margin - v.spacing*(v.columns-1)
	if available < 0 {
		available = 0
	}
	v.cellWidth = available / v.columns
	for _, cell := range v.cells {
		cell.Width = v.cellWidth
	}
}

// ToggleDetail flips the visibility of one detail row across all cells.
// Unknown detail names are ignored. Returns the currently visible set.
func (v *View) ToggleDetail(name string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !knownDetails[name] {
		log.Printf("gallery: unknown detail row %q ignored", name)
		return append([]string(nil), v.details...)
	}

	for i, d := range v.details {
		if d == name {
			v.details = append(v.details[:i], v.details[i+1:]...)
			v.applyDetails()
			return append([]string(nil), v.details...)
		}
	}
	v.details = append(v.details, name)
	v.applyDetails()
	return append([]string(nil), v.details...)
}

func (v *View) applyDetails() {
	show := len(v.details) > 0
	for _, cell := range v.cells {
		cell.ShowDetails = show
	}
}

// ImagePaths returns the ordered path list of the materialized cells,
// the sequence the slideshow consumes
func (v *View) ImagePaths() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	paths := make([]string, 0, len(v.cells))
	for _, cell := range v.cells {
		paths = append(paths, cell.Record.Filepath)
	}
	return paths
}

// Cells returns a snapshot of the current cells in order
func (v *View) Cells() []Cell {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]Cell, 0, len(v.cells))
	for _, cell := range v.cells {
		out = append(out, *cell)
	}
	return out
}

func (v *View) CellWidth() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cellWidth
}

func (v *View) Columns() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.columns
}

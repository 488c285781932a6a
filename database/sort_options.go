package database

// sortColumns maps filter-visible sort keys to physical columns. Sort keys
// are resolved through this table only; raw keys never reach the SQL text.
var sortColumns = map[string]string{
	"id":            "m.id",
	"filename":      "m.filename",
	"filesize":      "m.filesize",
	"height":        "m.height",
	"width":         "m.width",
	"times_viewed":  "m.times_viewed",
	"time_viewed":   "m.time_viewed",
	"date_captured": "m.date_captured",
	"date_added":    "m.date_added",
}

const DefaultSortKey = "id"

// ResolveSortColumn returns the physical column for a sort key, or false
// for keys outside the allow-list
func ResolveSortColumn(key string) (string, bool) {
	column, ok := sortColumns[key]
	return column, ok
}

package database

import (
	"fmt"
	"log"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// tag match modes
const (
	TagModeAny   = "any"
	TagModeAll   = "all"
	TagModeExact = "exact"
	TagModeNone  = "none"
)

// AnyValue is the dropdown sentinel meaning "do not constrain this field"
const AnyValue = "Any"

// Range is a half-open numeric constraint; either bound may be absent.
// Date ranges use unix seconds so comparison is numeric, never lexical.
type Range struct {
	Min *int64 `json:"min,omitempty"`
	Max *int64 `json:"max,omitempty"`
}

// FilterSpec describes what subset of the catalog the caller wants, in
// what order. It is an immutable value: build a new one per query rather
// than mutating a shared instance. Range bounds are not validated here;
// a spec with min > max simply yields the inverted (empty) range.
type FilterSpec struct {
	ID          *int64  `json:"id,omitempty"`
	Filename    *string `json:"filename,omitempty"`
	IsFavourite *bool   `json:"is_favourite,omitempty"`
	Type        *string `json:"type,omitempty"`
	Format      *string `json:"format,omitempty"`
	CameraModel *string `json:"camera_model,omitempty"`

	Filesize     Range `json:"filesize,omitempty"`
	Height       Range `json:"height,omitempty"`
	Width        Range `json:"width,omitempty"`
	TimesViewed  Range `json:"times_viewed,omitempty"`
	TimeViewed   Range `json:"time_viewed,omitempty"`
	DateCaptured Range `json:"date_captured,omitempty"`
	DateAdded    Range `json:"date_added,omitempty"`

	Tags    []string `json:"tags,omitempty"`
	TagMode string   `json:"tag_mode,omitempty"`

	SortKey        string `json:"sort_key,omitempty"`
	SortDescending bool   `json:"sort_descending,omitempty"`
}

// ActiveSet records which filter keys currently constrain the query,
// keyed by the base filter name ("height" activates both height bounds).
// A spec value may be set while inactive; only active keys compile.
type ActiveSet map[string]bool

// tag names cannot contain commas (stripped during normalization), so a
// comma-joined aggregate is unambiguous
const tagSeparator = ","

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// likeEscaper protects LIKE metacharacters so a filename filter matches
// them literally ("100%" must not match "100x")
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// tagSetPredicate expresses the requested set relationship between each
// record's tag set and the filter's tag set as a membership/count
// predicate on the association table. Returns nil when no predicate
// applies (empty tag set, or an unknown mode, which is logged and
// treated as "no tag filter").
func tagSetPredicate(tags []string, mode string) sq.Sqlizer {
	if len(tags) == 0 {
		return nil
	}

	args := make([]interface{}, len(tags))
	for i, t := range tags {
		args[i] = t
	}
	in := placeholders(len(tags))

	memberSubquery := "SELECT mt.media_id FROM media_tags mt" +
		" JOIN tags t ON t.id = mt.tag_id WHERE t.name IN (" + in + ")"

	switch mode {
	case TagModeAny:
		return sq.Expr("m.id IN ("+memberSubquery+")", args...)
	case TagModeAll:
		return sq.Expr(
			"m.id IN ("+memberSubquery+" GROUP BY mt.media_id HAVING COUNT(DISTINCT t.name) = ?)",
			append(args, len(tags))...,
		)
	case TagModeExact:
		// membership alone is not enough: the record must carry the
		// requested tags and no others, so cardinality is compared too
		return sq.And{
			sq.Expr(
				"m.id IN ("+memberSubquery+" GROUP BY mt.media_id HAVING COUNT(DISTINCT t.name) = ?)",
				append(args, len(tags))...,
			),
			sq.Expr("(SELECT COUNT(*) FROM media_tags mt2 WHERE mt2.media_id = m.id) = ?", len(tags)),
		}
	case TagModeNone:
		return sq.Expr("m.id NOT IN ("+memberSubquery+")", args...)
	default:
		log.Printf("database: unknown tag mode %q, ignoring tag filter", mode)
		return nil
	}
}

// dropdownValue returns the value of an optional equality field, skipping
// nil and the "Any" sentinel
func dropdownValue(v *string) (string, bool) {
	if v == nil || *v == AnyValue {
		return "", false
	}
	return *v, true
}

func rangePredicates(b sq.SelectBuilder, column string, r Range) sq.SelectBuilder {
	if r.Min != nil {
		b = b.Where(sq.GtOrEq{column: *r.Min})
	}
	if r.Max != nil {
		b = b.Where(sq.LtOrEq{column: *r.Max})
	}
	return b
}

// BuildMediaQuery compiles a filter spec and its active set into a
// parameterized select over the catalog, with each record's tag names
// aggregated alongside it. Every value is a bound parameter.
func BuildMediaQuery(spec FilterSpec, active ActiveSet) sq.SelectBuilder {
	b := psql.Select(
		"m.id", "m.filepath", "m.filename", "m.type", "m.is_favourite",
		"m.width", "m.height", "m.filesize", "m.format", "m.camera_model",
		"m.times_viewed", "m.time_viewed", "m.date_captured", "m.date_added",
		"COALESCE(GROUP_CONCAT(t.name, '"+tagSeparator+"'), '') AS tag_names",
	).From("media m").
		LeftJoin("media_tags mt ON mt.media_id = m.id").
		LeftJoin("tags t ON t.id = mt.tag_id").
		GroupBy("m.id")

	if active["id"] && spec.ID != nil {
		b = b.Where(sq.Eq{"m.id": *spec.ID})
	}
	if active["filename"] && spec.Filename != nil && *spec.Filename != "" {
		// substring match; case-insensitive for ASCII per SQLite's LIKE
		pattern := "%" + likeEscaper.Replace(*spec.Filename) + "%"
		b = b.Where(sq.Expr(`m.filename LIKE ? ESCAPE '\'`, pattern))
	}
	if active["is_favourite"] && spec.IsFavourite != nil {
		b = b.Where(sq.Eq{"m.is_favourite": *spec.IsFavourite})
	}
	if active["type"] {
		if v, ok := dropdownValue(spec.Type); ok {
			b = b.Where(sq.Eq{"m.type": v})
		}
	}
	if active["format"] {
		if v, ok := dropdownValue(spec.Format); ok {
			b = b.Where(sq.Eq{"m.format": v})
		}
	}
	if active["camera_model"] {
		if v, ok := dropdownValue(spec.CameraModel); ok {
			b = b.Where(sq.Eq{"m.camera_model": v})
		}
	}

	if active["filesize"] {
		b = rangePredicates(b, "m.filesize", spec.Filesize)
	}
	if active["height"] {
		b = rangePredicates(b, "m.height", spec.Height)
	}
	if active["width"] {
		b = rangePredicates(b, "m.width", spec.Width)
	}
	if active["times_viewed"] {
		b = rangePredicates(b, "m.times_viewed", spec.TimesViewed)
	}
	if active["time_viewed"] {
		b = rangePredicates(b, "m.time_viewed", spec.TimeViewed)
	}
	if active["date_captured"] {
		b = rangePredicates(b, "m.date_captured", spec.DateCaptured)
	}
	if active["date_added"] {
		b = rangePredicates(b, "m.date_added", spec.DateAdded)
	}

	if pred := tagSetPredicate(spec.Tags, spec.TagMode); pred != nil {
		b = b.Where(pred)
	}

	sortKey := spec.SortKey
	if sortKey == "" {
		sortKey = DefaultSortKey
	}
	column, ok := ResolveSortColumn(sortKey)
	if !ok {
		log.Printf("database: unrecognized sort key %q, falling back to id ascending", sortKey)
		column = sortColumns[DefaultSortKey]
		b = b.OrderBy(column + " ASC")
		return b
	}

	direction := "ASC"
	if spec.SortDescending {
		direction = "DESC"
	}
	b = b.OrderBy(column + " " + direction)
	if column != "m.id" {
		// deterministic tiebreak
		b = b.OrderBy("m.id ASC")
	}
	return b
}

// QueryMediaByFilter compiles and runs a filter spec, returning the
// ordered records with their tag lists attached
func QueryMediaByFilter(db Querier, spec FilterSpec, active ActiveSet) ([]Media, error) {
	sqlStr, args, err := BuildMediaQuery(spec, active).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for QueryMediaByFilter: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute filter query: %w", err)
	}
	defer rows.Close()

	records := []Media{}
	for rows.Next() {
		var m Media
		var tagNames string
		err := rows.Scan(
			&m.ID, &m.Filepath, &m.Filename, &m.Type, &m.IsFavourite,
			&m.Width, &m.Height, &m.Filesize, &m.Format, &m.CameraModel,
			&m.TimesViewed, &m.TimeViewed, &m.DateCaptured, &m.DateAdded,
			&tagNames,
		)
		if err != nil {
			log.Printf("database: error scanning filtered media row: %v", err)
			continue
		}
		if tagNames != "" {
			m.Tags = strings.Split(tagNames, tagSeparator)
		} else {
			m.Tags = []string{}
		}
		records = append(records, m)
	}
	if err = rows.Err(); err != nil {
		return records, fmt.Errorf("error iterating filtered media rows: %w", err)
	}
	return records, nil
}

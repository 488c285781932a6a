package database

import (
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/facette/natsort"
)

// Media is one catalog entry for an image or video file. Filepath uniquely
// identifies the record; ID is the stable handle used everywhere else.
type Media struct {
	ID           int64    `json:"id"`
	Filepath     string   `json:"filepath"`
	Filename     string   `json:"filename"`
	Type         string   `json:"type"`
	IsFavourite  bool     `json:"is_favourite"`
	Width        *int     `json:"width,omitempty"`
	Height       *int     `json:"height,omitempty"`
	Filesize     int64    `json:"filesize"`
	Format       *string  `json:"format,omitempty"`
	CameraModel  *string  `json:"camera_model,omitempty"`
	TimesViewed  int64    `json:"times_viewed"`
	TimeViewed   int64    `json:"time_viewed"`
	DateCaptured *int64   `json:"date_captured,omitempty"`
	DateAdded    int64    `json:"date_added"`
	Tags         []string `json:"tags"`
}

var mediaColumns = []string{
	"id", "filepath", "filename", "type", "is_favourite", "width", "height",
	"filesize", "format", "camera_model", "times_viewed", "time_viewed",
	"date_captured", "date_added",
}

func scanMediaRow(scanner interface {
	Scan(dest ...interface{}) error
}) (Media, error) {
	var m Media
	err := scanner.Scan(
		&m.ID, &m.Filepath, &m.Filename, &m.Type, &m.IsFavourite,
		&m.Width, &m.Height, &m.Filesize, &m.Format, &m.CameraModel,
		&m.TimesViewed, &m.TimeViewed, &m.DateCaptured, &m.DateAdded,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Media{}, sql.ErrNoRows
		}
		return Media{}, fmt.Errorf("failed to scan media row: %w", err)
	}
	return m, nil
}

// InsertMedia adds a new catalog record keyed on its unique filepath.
// Returns true if a row was inserted, false if the filepath already exists.
func InsertMedia(db Querier, m Media) (bool, error) {
	m.Filepath = filepath.ToSlash(m.Filepath)
	if m.DateAdded == 0 {
		m.DateAdded = time.Now().Unix()
	}

	queryBuilder := psql.Insert("media").
		Columns("filepath", "filename", "type", "is_favourite", "width", "height",
			"filesize", "format", "camera_model", "date_captured", "date_added").
		Values(m.Filepath, m.Filename, m.Type, m.IsFavourite, m.Width, m.Height,
			m.Filesize, m.Format, m.CameraModel, m.DateCaptured, m.DateAdded).
		Suffix("ON CONFLICT(filepath) DO NOTHING")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build SQL for InsertMedia: %w", err)
	}

	result, err := db.Exec(sqlStr, args...)
	if err != nil {
		return false, fmt.Errorf("failed to execute InsertMedia for %s: %w", m.Filepath, err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

func GetMediaByID(db Querier, id int64) (Media, error) {
	queryBuilder := psql.Select(mediaColumns...).
		From("media").
		Where(sq.Eq{"id": id}).
		Limit(1)

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return Media{}, fmt.Errorf("failed to build SQL for GetMediaByID: %w", err)
	}

	row := db.QueryRow(sqlStr, args...)
	m, err := scanMediaRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Media{}, sql.ErrNoRows
		}
		return Media{}, fmt.Errorf("GetMediaByID failed for ID %d: %w", id, err)
	}

	tags, err := GetTagsForMedia(db, id)
	if err != nil {
		return Media{}, err
	}
	m.Tags = tags
	return m, nil
}

// SetFavourite updates the favourite flag on a single record
func SetFavourite(db Querier, id int64, favourite bool) error {
	queryBuilder := psql.Update("media").
		Set("is_favourite", favourite).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for SetFavourite: %w", err)
	}

	result, err := db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to execute SetFavourite for ID %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetFilename updates the display name of a record. The filepath is left
// alone; the display name is independent of the file on disk.
func SetFilename(db Querier, id int64, filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("filename must not be empty")
	}

	queryBuilder := psql.Update("media").
		Set("filename", filename).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for SetFilename: %w", err)
	}

	result, err := db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to execute SetFilename for ID %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RecordView bumps the view counter and adds the viewing duration in
// seconds to the total
func RecordView(db Querier, id int64, seconds int64) error {
	if seconds < 0 {
		seconds = 0
	}
	queryBuilder := psql.Update("media").
		Set("times_viewed", sq.Expr("times_viewed + 1")).
		Set("time_viewed", sq.Expr("time_viewed + ?", seconds)).
		Where(sq.Eq{"id": id})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for RecordView: %w", err)
	}

	result, err := db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to execute RecordView for ID %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func DeleteMedia(db Querier, id int64) error {
	queryBuilder := psql.Delete("media").Where(sq.Eq{"id": id})
	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for DeleteMedia: %w", err)
	}
	result, err := db.Exec(sqlStr, args...)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteMedia for ID %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// columns the UI may request distinct values for
var uniqueValueColumns = map[string]bool{
	"type":         true,
	"format":       true,
	"camera_model": true,
}

// GetUniqueValues returns the distinct non-null values observed in an
// allow-listed media column, naturally sorted for dropdown display
func GetUniqueValues(db Querier, column string) ([]string, error) {
	if !uniqueValueColumns[column] {
		return nil, fmt.Errorf("column %q is not available for unique value listing", column)
	}

	queryBuilder := psql.Select(column).
		From("media").
		Where(fmt.Sprintf("%s IS NOT NULL", column)).
		GroupBy(column)

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for GetUniqueValues: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute GetUniqueValues query for %s: %w", column, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			log.Printf("database: error scanning unique value row: %v", err)
			continue
		}
		values = append(values, v)
	}
	if err = rows.Err(); err != nil {
		return values, fmt.Errorf("error iterating unique value rows: %w", err)
	}

	natsort.Sort(values)
	return values, nil
}

func GetMediaCount(db Querier) (int64, error) {
	sqlStr, args, err := psql.Select("COUNT(*)").From("media").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL for GetMediaCount: %w", err)
	}
	var count int64
	if err := db.QueryRow(sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count media rows: %w", err)
	}
	return count, nil
}

package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func isUniqueConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// AddTag inserts a tag into the global vocabulary. Returns false without
// error when the name already exists.
func AddTag(db Querier, name string) (bool, error) {
	queryBuilder := psql.Insert("tags").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT(name) DO NOTHING")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build SQL for AddTag: %w", err)
	}

	result, err := db.Exec(sqlStr, args...)
	if err != nil {
		return false, fmt.Errorf("failed to execute AddTag for %s: %w", name, err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// RenameTag renames an existing tag. Returns false when the old name is
// missing or the new name is already taken; renaming never merges tags.
func RenameTag(db Querier, oldName, newName string) (bool, error) {
	queryBuilder := psql.Update("tags").
		Set("name", newName).
		Where(sq.Eq{"name": oldName})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build SQL for RenameTag: %w", err)
	}

	result, err := db.Exec(sqlStr, args...)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to execute RenameTag %s -> %s: %w", oldName, newName, err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// RemoveTag deletes a tag by name; association rows cascade. Returns false
// when no such tag exists.
func RemoveTag(db Querier, name string) (bool, error) {
	queryBuilder := psql.Delete("tags").Where(sq.Eq{"name": name})

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build SQL for RemoveTag: %w", err)
	}

	result, err := db.Exec(sqlStr, args...)
	if err != nil {
		return false, fmt.Errorf("failed to execute RemoveTag for %s: %w", name, err)
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

func ListTags(db Querier) ([]Tag, error) {
	queryBuilder := psql.Select("id", "name").
		From("tags").
		OrderBy("name ASC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for ListTags: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute ListTags query: %w", err)
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			log.Printf("database: error scanning tag row: %v", err)
			continue
		}
		tags = append(tags, t)
	}
	if err = rows.Err(); err != nil {
		return tags, fmt.Errorf("error iterating tag rows: %w", err)
	}
	return tags, nil
}

// GetTagsForMedia returns a record's tag names sorted alphabetically. The
// order is presentational only; the tag set is semantically unordered.
func GetTagsForMedia(db Querier, mediaID int64) ([]string, error) {
	queryBuilder := psql.Select("t.name").
		From("media_tags mt").
		Join("tags t ON t.id = mt.tag_id").
		Where(sq.Eq{"mt.media_id": mediaID}).
		OrderBy("t.name ASC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL for GetTagsForMedia: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute GetTagsForMedia query for ID %d: %w", mediaID, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			log.Printf("database: error scanning media tag row: %v", err)
			continue
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return names, fmt.Errorf("error iterating media tag rows: %w", err)
	}
	return names, nil
}

// tagIDsForNames resolves tag names to ids, creating tags that are missing
func tagIDsForNames(tx *sql.Tx, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		if _, err := AddTag(tx, name); err != nil {
			return nil, err
		}

		sqlStr, args, err := psql.Select("id").From("tags").Where(sq.Eq{"name": name}).ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build SQL for tag lookup: %w", err)
		}
		var id int64
		if err := tx.QueryRow(sqlStr, args...).Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to resolve tag %s: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SetMediaTags fully replaces a record's tag associations with the given
// set (replace-all, not a merge), in a single transaction
func SetMediaTags(db *sql.DB, mediaID int64, names []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for SetMediaTags: %w", err)
	}
	defer tx.Rollback()

	delStr, delArgs, err := psql.Delete("media_tags").Where(sq.Eq{"media_id": mediaID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL for tag association delete: %w", err)
	}
	if _, err := tx.Exec(delStr, delArgs...); err != nil {
		return fmt.Errorf("failed to clear tag associations for media %d: %w", mediaID, err)
	}

	tagIDs, err := tagIDsForNames(tx, names)
	if err != nil {
		return fmt.Errorf("SetMediaTags failed for media %d: %w", mediaID, err)
	}

	for _, tagID := range tagIDs {
		insStr, insArgs, err := psql.Insert("media_tags").
			Columns("media_id", "tag_id").
			Values(mediaID, tagID).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build SQL for tag association insert: %w", err)
		}
		if _, err := tx.Exec(insStr, insArgs...); err != nil {
			return fmt.Errorf("failed to associate tag %d with media %d: %w", tagID, mediaID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit SetMediaTags for media %d: %w", mediaID, err)
	}
	return nil
}

// AddTagsToMedia adds associations without touching existing ones.
// Idempotent: already-associated tags are ignored.
func AddTagsToMedia(db *sql.DB, mediaID int64, names []string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for AddTagsToMedia: %w", err)
	}
	defer tx.Rollback()

	tagIDs, err := tagIDsForNames(tx, names)
	if err != nil {
		return fmt.Errorf("AddTagsToMedia failed for media %d: %w", mediaID, err)
	}

	for _, tagID := range tagIDs {
		insStr, insArgs, err := psql.Insert("media_tags").
			Columns("media_id", "tag_id").
			Values(mediaID, tagID).
			Suffix("ON CONFLICT(media_id, tag_id) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build SQL for tag association insert: %w", err)
		}
		if _, err := tx.Exec(insStr, insArgs...); err != nil {
			return fmt.Errorf("failed to associate tag %d with media %d: %w", tagID, mediaID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit AddTagsToMedia for media %d: %w", mediaID, err)
	}
	return nil
}

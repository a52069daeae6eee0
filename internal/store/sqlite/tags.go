package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/promptstashapp/promptstash-server/internal/domain"
	"github.com/promptstashapp/promptstash-server/internal/id"
)

// EnsureTags resolves a set of normalized tag names to live tag rows for the
// owner, creating any that are missing. The whole operation runs in one
// transaction so repeated calls with the same names are idempotent:
//   - a live tag with the name is reused as-is
//   - a soft-deleted tag with the name is revived (same ID, same row)
//   - a name with no row at all gets a fresh insert
//
// Results come back in the order of the input names.
func (s *Store) EnsureTags(ctx context.Context, ownerID string, names []string) ([]domain.TagItem, error) {
	if len(names) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Look up every name regardless of deletion state. The (user_id, name)
	// uniqueness spans soft-deleted rows, so a "missing" live tag may still
	// have a row we must revive instead of inserting a duplicate.
	args := make([]any, 0, len(names)+1)
	args = append(args, ownerID)
	for _, name := range names {
		args = append(args, name)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, name, is_deleted FROM tags
		 WHERE user_id = ? AND name IN (`+placeholders(len(names))+`)`,
		args...)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]domain.TagItem, len(names))
	var revive []string
	for rows.Next() {
		var (
			tagID   string
			name    string
			deleted int
		)
		if err := rows.Scan(&tagID, &name, &deleted); err != nil {
			rows.Close()
			return nil, err
		}
		byName[name] = domain.TagItem{ID: tagID, Name: name}
		if deleted != 0 {
			revive = append(revive, tagID)
		}
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if len(revive) > 0 {
		reviveArgs := make([]any, 0, len(revive)+1)
		reviveArgs = append(reviveArgs, formatTime(now))
		for _, tagID := range revive {
			reviveArgs = append(reviveArgs, tagID)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE tags SET is_deleted = 0, updated_at = ?
			 WHERE id IN (`+placeholders(len(revive))+`)`,
			reviveArgs...); err != nil {
			return nil, fmt.Errorf("revive tags: %w", err)
		}
	}

	for _, name := range names {
		if _, ok := byName[name]; ok {
			continue
		}
		tagID, err := id.Generate("tag")
		if err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tags (id, user_id, name, created_at, updated_at, is_deleted)
			VALUES (?, ?, ?, ?, ?, 0)`,
			tagID, ownerID, name, formatTime(now), formatTime(now))
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				// A concurrent writer created the tag between our select and
				// insert. Adopt its row and make sure it is live.
				var existingID string
				if err := tx.QueryRowContext(ctx,
					`SELECT id FROM tags WHERE user_id = ? AND name = ?`,
					ownerID, name).Scan(&existingID); err != nil {
					return nil, err
				}
				if _, err := tx.ExecContext(ctx,
					`UPDATE tags SET is_deleted = 0, updated_at = ? WHERE id = ?`,
					formatTime(now), existingID); err != nil {
					return nil, err
				}
				byName[name] = domain.TagItem{ID: existingID, Name: name}
				continue
			}
			return nil, fmt.Errorf("insert tag %q: %w", name, err)
		}
		byName[name] = domain.TagItem{ID: tagID, Name: name}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	out := make([]domain.TagItem, 0, len(names))
	for _, name := range names {
		out = append(out, byName[name])
	}
	return out, nil
}

// FindActiveTagsByNames returns the live tags among the given normalized
// names. Names with no live tag are simply absent from the result; callers
// use that to short-circuit searches that can never match.
func (s *Store) FindActiveTagsByNames(ctx context.Context, ownerID string, names []string) ([]domain.TagItem, error) {
	if len(names) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(names)+1)
	args = append(args, ownerID)
	for _, name := range names {
		args = append(args, name)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM tags
		 WHERE user_id = ? AND is_deleted = 0 AND name IN (`+placeholders(len(names))+`)
		 ORDER BY name`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []domain.TagItem
	for rows.Next() {
		var item domain.TagItem
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		tags = append(tags, item)
	}
	return tags, rows.Err()
}

// ListTags returns the owner's live tags, optionally filtered by a
// case-insensitive name substring, most recently updated first.
func (s *Store) ListTags(ctx context.Context, ownerID string, query string, limit int) ([]domain.TagItem, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, name FROM tags WHERE user_id = ? AND is_deleted = 0`)
	args := []any{ownerID}

	if query != "" {
		sb.WriteString(` AND name LIKE ?`)
		args = append(args, "%"+strings.ToLower(query)+"%")
	}

	sb.WriteString(` ORDER BY updated_at DESC, id DESC`)
	if limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []domain.TagItem
	for rows.Next() {
		var item domain.TagItem
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		tags = append(tags, item)
	}
	return tags, rows.Err()
}

// SoftDeleteUnusedTags soft-deletes the owner's live tags that no live
// prompt references. Returns the number of tags removed.
func (s *Store) SoftDeleteUnusedTags(ctx context.Context, ownerID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tags SET is_deleted = 1, updated_at = ?
		WHERE user_id = ? AND is_deleted = 0
		  AND NOT EXISTS (
			SELECT 1 FROM prompt_tags pt
			JOIN prompts p ON p.id = pt.prompt_id
			WHERE pt.tag_id = tags.id AND p.is_deleted = 0
		  )`,
		formatTime(time.Now()), ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

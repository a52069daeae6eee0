package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/promptstashapp/promptstash-server/internal/domain"
	"github.com/promptstashapp/promptstash-server/internal/store"
)

// promptColumns is the ordered list of columns selected in prompt queries.
// Must match the scan order in scanPrompt.
const promptColumns = `id, user_id, title, content, created_at, updated_at, is_deleted`

// scanPrompt scans a sql.Row (or sql.Rows) into a domain.Prompt.
func scanPrompt(scanner interface{ Scan(dest ...any) error }) (*domain.Prompt, error) {
	var p domain.Prompt

	var (
		title     sql.NullString
		createdAt string
		updatedAt string
		isDeleted int
	)

	err := scanner.Scan(
		&p.ID,
		&p.OwnerID,
		&title,
		&p.Content,
		&createdAt,
		&updatedAt,
		&isDeleted,
	)
	if err != nil {
		return nil, err
	}

	p.Title = title.String
	p.IsDeleted = isDeleted != 0

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// CreatePrompt inserts a new prompt.
func (s *Store) CreatePrompt(ctx context.Context, p *domain.Prompt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prompts (id, user_id, title, content, created_at, updated_at, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.OwnerID,
		nullString(p.Title),
		p.Content,
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
		boolToInt(p.IsDeleted),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetPrompt returns the owner's live prompt with the given ID, or
// store.ErrNotFound. Prompts belonging to other users are indistinguishable
// from missing ones.
func (s *Store) GetPrompt(ctx context.Context, ownerID, promptID string) (*domain.Prompt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+promptColumns+` FROM prompts
		 WHERE id = ? AND user_id = ? AND is_deleted = 0`,
		promptID, ownerID)

	p, err := scanPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

// UpdatePrompt persists new title and content for the owner's live prompt.
// Ownership and liveness are enforced in the statement itself; a zero row
// count means the prompt is missing, deleted, or someone else's, all of
// which surface as store.ErrNotFound.
func (s *Store) UpdatePrompt(ctx context.Context, p *domain.Prompt) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE prompts SET title = ?, content = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND is_deleted = 0`,
		nullString(p.Title),
		p.Content,
		formatTime(p.UpdatedAt),
		p.ID,
		p.OwnerID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SoftDeletePrompt marks the owner's live prompt as deleted. Deleting an
// already-deleted prompt returns store.ErrNotFound, same as a missing one.
func (s *Store) SoftDeletePrompt(ctx context.Context, ownerID, promptID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE prompts SET is_deleted = 1, updated_at = ?
		WHERE id = ? AND user_id = ? AND is_deleted = 0`,
		formatTime(time.Now()),
		promptID,
		ownerID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListPrompts returns a page of the owner's live prompts matching the
// filter, newest update first. It fetches one row beyond the page limit so
// the caller learns whether more rows exist without a second count query.
func (s *Store) ListPrompts(ctx context.Context, ownerID string, filter store.PromptFilter) (store.Page[*domain.Prompt], error) {
	filter.Page.Validate()

	var sb strings.Builder
	sb.WriteString(`SELECT ` + promptColumns + ` FROM prompts
		WHERE user_id = ? AND is_deleted = 0`)
	args := []any{ownerID}

	if filter.Query != "" {
		// COALESCE keeps untitled prompts searchable by content alone.
		sb.WriteString(` AND (LOWER(COALESCE(title, '')) LIKE ? OR LOWER(content) LIKE ?)`)
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		args = append(args, pattern, pattern)
	}

	if len(filter.TagIDs) > 0 {
		sb.WriteString(` AND EXISTS (
			SELECT 1 FROM prompt_tags pt
			WHERE pt.prompt_id = prompts.id
			  AND pt.tag_id IN (` + placeholders(len(filter.TagIDs)) + `))`)
		for _, tagID := range filter.TagIDs {
			args = append(args, tagID)
		}
	}

	// id DESC breaks ties between prompts updated in the same instant so
	// pages never overlap or skip rows.
	sb.WriteString(` ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?`)
	args = append(args, filter.Page.Limit+1, filter.Page.Offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return store.Page[*domain.Prompt]{}, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var prompts []*domain.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return store.Page[*domain.Prompt]{}, err
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return store.Page[*domain.Prompt]{}, err
	}

	return store.NewPage(prompts, filter.Page), nil
}

// ReplacePromptTags swaps a prompt's tag associations for the given set.
// Delete-then-insert in one transaction keeps the result exact regardless of
// what was attached before.
func (s *Store) ReplacePromptTags(ctx context.Context, promptID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM prompt_tags WHERE prompt_id = ?`, promptID); err != nil {
		return err
	}

	now := formatTime(time.Now())
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO prompt_tags (prompt_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			promptID, tagID, now); err != nil {
			return fmt.Errorf("attach tag %s: %w", tagID, err)
		}
	}

	return tx.Commit()
}

// TagsForPrompts returns the owner's live tags attached to each of the
// given prompts, keyed by prompt ID and ordered by tag name. One query
// serves the whole page.
func (s *Store) TagsForPrompts(ctx context.Context, ownerID string, promptIDs []string) (map[string][]domain.TagItem, error) {
	result := make(map[string][]domain.TagItem, len(promptIDs))
	if len(promptIDs) == 0 {
		return result, nil
	}

	args := make([]any, 0, len(promptIDs)+1)
	args = append(args, ownerID)
	for _, promptID := range promptIDs {
		args = append(args, promptID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT pt.prompt_id, t.id, t.name
		FROM prompt_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE t.user_id = ? AND pt.prompt_id IN (`+placeholders(len(promptIDs))+`) AND t.is_deleted = 0
		ORDER BY t.name`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			promptID string
			item     domain.TagItem
		)
		if err := rows.Scan(&promptID, &item.ID, &item.Name); err != nil {
			return nil, err
		}
		result[promptID] = append(result[promptID], item)
	}
	return result, rows.Err()
}

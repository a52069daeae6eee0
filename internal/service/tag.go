package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/promptstashapp/promptstash-server/internal/domain"
	domainerrors "github.com/promptstashapp/promptstash-server/internal/errors"
	"github.com/promptstashapp/promptstash-server/internal/normalize"
	"github.com/promptstashapp/promptstash-server/internal/store"
	"github.com/promptstashapp/promptstash-server/internal/store/sqlite"
)

// maxTagResults caps tag listings; the set is small enough that clients
// never page through it.
const maxTagResults = 200

// TagService manages the per-user tag registry.
type TagService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store *sqlite.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// List returns the owner's live tags, optionally narrowed by a
// case-insensitive substring match on the name.
func (s *TagService) List(ctx context.Context, ownerID, query string) ([]domain.TagItem, error) {
	tags, err := s.store.ListTags(ctx, ownerID, normalize.Query(query), maxTagResults)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if tags == nil {
		tags = []domain.TagItem{}
	}
	return tags, nil
}

// Ensure resolves tag names to live tags, creating or reviving as needed.
// Names are normalized and deduplicated first; an empty list is a no-op.
func (s *TagService) Ensure(ctx context.Context, ownerID string, names []string) ([]domain.TagItem, error) {
	normalized := normalize.TagNames(names)
	if len(normalized) == 0 {
		return []domain.TagItem{}, nil
	}

	tags, err := s.store.EnsureTags(ctx, ownerID, normalized)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("tag name conflict")
		}
		return nil, fmt.Errorf("ensure tags: %w", err)
	}
	return tags, nil
}

// PruneUnused soft-deletes tags no live prompt references and returns how
// many were removed.
func (s *TagService) PruneUnused(ctx context.Context, ownerID string) (int, error) {
	pruned, err := s.store.SoftDeleteUnusedTags(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("prune tags: %w", err)
	}

	if pruned > 0 && s.logger != nil {
		s.logger.Info("Pruned unused tags", "user_id", ownerID, "count", pruned)
	}
	return int(pruned), nil
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService_Ensure_NormalizesAndDeduplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := createOwner(t, env, "owner@example.com")

	tags, err := env.tags.Ensure(ctx, owner.ID, []string{"Foo", " foo ", "Bar"})
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, tagItemNames(tags))

	// Ensuring the same names again returns the same tags.
	again, err := env.tags.Ensure(ctx, owner.ID, []string{"foo", "bar"})
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, tags[0].ID, again[0].ID)
	assert.Equal(t, tags[1].ID, again[1].ID)
}

func TestTagService_Ensure_Empty(t *testing.T) {
	env := newTestEnv(t)
	owner := createOwner(t, env, "owner@example.com")

	tags, err := env.tags.Ensure(context.Background(), owner.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, tags)

	// Names that normalize to nothing are dropped too.
	tags, err = env.tags.Ensure(context.Background(), owner.ID, []string{"  ", ""})
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestTagService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := createOwner(t, env, "owner@example.com")

	// One name per call so the newest-first ordering is deterministic.
	for _, name := range []string{"golang", "python", "prompting"} {
		_, err := env.tags.Ensure(ctx, owner.ID, []string{name})
		require.NoError(t, err)
	}

	all, err := env.tags.List(ctx, owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"prompting", "python", "golang"}, tagItemNames(all))

	matched, err := env.tags.List(ctx, owner.ID, "P")
	require.NoError(t, err)
	assert.Equal(t, []string{"prompting", "python"}, tagItemNames(matched))

	none, err := env.tags.List(ctx, owner.ID, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestTagService_PruneUnused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := createOwner(t, env, "owner@example.com")

	_, err := env.prompts.Create(ctx, owner, CreateRequest{
		Content: "tagged prompt",
		Tags:    []string{"keep"},
	})
	require.NoError(t, err)
	orphans, err := env.tags.Ensure(ctx, owner.ID, []string{"orphan"})
	require.NoError(t, err)

	pruned, err := env.tags.PruneUnused(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	remaining, err := env.tags.List(ctx, owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, tagItemNames(remaining))

	// Ensuring the pruned name revives the original row.
	revived, err := env.tags.Ensure(ctx, owner.ID, []string{"orphan"})
	require.NoError(t, err)
	require.Len(t, revived, 1)
	assert.Equal(t, orphans[0].ID, revived[0].ID)
}

func TestTagService_PruneUnused_AfterPromptDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := createOwner(t, env, "owner@example.com")

	view, err := env.prompts.Create(ctx, owner, CreateRequest{
		Content: "short-lived",
		Tags:    []string{"ephemeral"},
	})
	require.NoError(t, err)

	// A tag on a live prompt survives pruning.
	pruned, err := env.tags.PruneUnused(ctx, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, pruned)

	require.NoError(t, env.prompts.Delete(ctx, owner, view.ID))

	pruned, err = env.tags.PruneUnused(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)
}

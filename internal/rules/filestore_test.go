package rules_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenloot/tokenloot/internal/rules"
)

func TestFileStore_LoadMissingFileYieldsEmptySet(t *testing.T) {
	store := rules.NewFileStore(filepath.Join(t.TempDir(), "rules.yaml"))

	rs, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rs)
	assert.Empty(t, rs.Groups)
	assert.Equal(t, 1, rs.Schema)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	store := rules.NewFileStore(path)
	ctx := context.Background()

	g := rules.NewGroup("Bandits")
	g.ActorIdentifiers = []string{"Actor.bandit"}
	g.Currency["gp"] = "2d6*10"
	block := rules.NewBlock("gear", rules.BlockChance)
	block.UseChanceBounds = true
	block.ChanceMin = 1
	block.ChanceMax = 3
	block.Items = []*rules.LootRow{
		{UUID: "Item.sword", Chance: 75, QtyMin: 1, QtyMax: 2},
	}
	g.DistributionBlocks = append(g.DistributionBlocks, block)

	rs := rules.NewRuleSet()
	rs.Groups[g.ID] = g
	require.NoError(t, store.Save(ctx, rs))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Contains(t, got.Groups, g.ID)

	loaded := got.Groups[g.ID]
	assert.Equal(t, g.Name, loaded.Name)
	assert.Equal(t, g.ActorIdentifiers, loaded.ActorIdentifiers)
	assert.Equal(t, "2d6*10", loaded.Currency["gp"])
	require.Len(t, loaded.DistributionBlocks, 1)

	lb := loaded.DistributionBlocks[0]
	assert.Equal(t, block.ID, lb.ID)
	assert.Equal(t, rules.BlockChance, lb.Type)
	assert.True(t, lb.UseChanceBounds)
	assert.Equal(t, 1, lb.ChanceMin)
	assert.Equal(t, 3, lb.ChanceMax)
	require.Len(t, lb.Items, 1)
	assert.Equal(t, 75.0, lb.Items[0].Chance)
}

func TestFileStore_SaveReplacesPreviousContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	store := rules.NewFileStore(path)
	ctx := context.Background()

	first := rules.NewRuleSet()
	g := rules.NewGroup("Bandits")
	first.Groups[g.ID] = g
	require.NoError(t, store.Save(ctx, first))

	require.NoError(t, store.Save(ctx, rules.NewRuleSet()))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Groups, "a save fully replaces the previous blob")
}

func TestFileStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := rules.NewFileStore(filepath.Join(dir, "rules.yaml"))

	require.NoError(t, store.Save(context.Background(), rules.NewRuleSet()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "rules.yaml", entries[0].Name())
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml: ["), 0o644))

	_, err := rules.NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

package award_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tokenloot/tokenloot/internal/adapter"
	"github.com/tokenloot/tokenloot/internal/award"
	"github.com/tokenloot/tokenloot/internal/currency"
	"github.com/tokenloot/tokenloot/internal/dice"
	"github.com/tokenloot/tokenloot/internal/host"
	"github.com/tokenloot/tokenloot/internal/rules"
	"github.com/tokenloot/tokenloot/internal/testutil"
)

func newService(fake *testutil.FakeHost, opts award.Options) *award.Service {
	src := dice.NewCryptoSource()
	roller := dice.NewLoggedRoller(src, zap.NewNop())
	eval := currency.NewEvaluator(src, roller)
	sys := adapter.ForSystem("dnd5e", fake)
	return award.NewService(fake, fake, sys, eval, src, zap.NewNop(), opts)
}

func fastOpts() award.Options {
	return award.Options{RetryAttempts: 3, RetryBaseDelay: time.Millisecond}
}

func itemDoc(uuid, name string) *host.Document {
	return &host.Document{
		UUID:   uuid,
		Name:   name,
		Type:   "loot",
		System: map[string]any{"quantity": 1},
	}
}

func allGroup(uuids ...string) *rules.Group {
	g := rules.NewGroup("bandits")
	block := rules.NewBlock("gear", rules.BlockAll)
	for _, u := range uuids {
		block.Items = append(block.Items, &rules.LootRow{UUID: u})
	}
	g.DistributionBlocks = append(g.DistributionBlocks, block)
	return g
}

func TestAward_GrantsItemsAndCurrency(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(itemDoc("Item.sword", "Shortsword"))
	fake.AddDocument(itemDoc("Item.shield", "Shield"))
	svc := newService(fake, fastOpts())

	g := allGroup("Item.sword", "Item.shield")
	g.Currency["gp"] = "10-10"

	actor := &host.Actor{ID: "a1", Name: "Bandit", System: "dnd5e"}
	log := award.NewGrantLog()
	require.NoError(t, svc.Award(context.Background(), actor, g, log))

	assert.Equal(t, map[string]int{"gp": 10}, fake.CurrencyFor("a1"))
	require.Len(t, fake.CreatedFor("a1"), 2)

	assert.Equal(t, 10, log.Currency["gp"], "the grant log must mirror the applied currency")
	require.Len(t, log.Items, 2)
	assert.Equal(t, "Shortsword", log.Items[0].Name)
	assert.Equal(t, 1, log.Items[0].Qty)
}

func TestAward_StampsProvenanceFlags(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(itemDoc("Item.sword", "Shortsword"))
	svc := newService(fake, fastOpts())

	g := allGroup("Item.sword")
	require.NoError(t, svc.Award(context.Background(), &host.Actor{ID: "a1"}, g, award.NewGrantLog()))

	created := fake.CreatedFor("a1")
	require.Len(t, created, 1)
	flags := created[0].Flags[award.FlagScope]
	require.NotNil(t, flags, "created items carry provenance flags")
	assert.Equal(t, true, flags["granted"])
	assert.Equal(t, g.DistributionBlocks[0].ID, flags["blockId"])
}

func TestAward_RollsQuantityWithinRange(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(itemDoc("Item.arrows", "Arrows"))
	svc := newService(fake, fastOpts())

	g := allGroup("Item.arrows")
	g.DistributionBlocks[0].Items[0].QtyMin = 5
	g.DistributionBlocks[0].Items[0].QtyMax = 10

	log := award.NewGrantLog()
	require.NoError(t, svc.Award(context.Background(), &host.Actor{ID: "a1"}, g, log))

	created := fake.CreatedFor("a1")
	require.Len(t, created, 1)
	qty, ok := created[0].System["quantity"].(int)
	require.True(t, ok)
	assert.GreaterOrEqual(t, qty, 5)
	assert.LessOrEqual(t, qty, 10)
	require.Len(t, log.Items, 1)
	assert.Equal(t, qty, log.Items[0].Qty)
}

func TestAward_UnresolvableRowSkippedSiblingsGranted(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(itemDoc("Item.sword", "Shortsword"))
	svc := newService(fake, fastOpts())

	g := allGroup("Item.deleted", "Item.sword")
	log := award.NewGrantLog()
	require.NoError(t, svc.Award(context.Background(), &host.Actor{ID: "a1"}, g, log),
		"a stale reference must not fail the award")

	created := fake.CreatedFor("a1")
	require.Len(t, created, 1)
	assert.Equal(t, "Shortsword", created[0].Name)
	require.Len(t, log.Items, 1)
}

func TestAward_UnresolvableCurrencySkippedItemsStillGranted(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(itemDoc("Item.sword", "Shortsword"))
	svc := newService(fake, fastOpts())

	g := allGroup("Item.sword")
	g.Currency["gp"] = "not a formula"
	g.Currency["sp"] = "3"

	log := award.NewGrantLog()
	require.NoError(t, svc.Award(context.Background(), &host.Actor{ID: "a1"}, g, log))

	assert.Equal(t, map[string]int{"sp": 3}, fake.CurrencyFor("a1"),
		"the bad expression is skipped, the good one applies")
	assert.Len(t, fake.CreatedFor("a1"), 1)
	_, hasGP := log.Currency["gp"]
	assert.False(t, hasGP)
}

func TestAward_RetriesTransientCreateFailure(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(itemDoc("Item.sword", "Shortsword"))
	fake.FailCreates = 1
	svc := newService(fake, fastOpts())

	log := award.NewGrantLog()
	require.NoError(t, svc.Award(context.Background(), &host.Actor{ID: "a1"}, allGroup("Item.sword"), log))

	assert.Equal(t, 2, fake.CreateCalls, "the failed attempt is retried once")
	assert.Len(t, fake.CreatedFor("a1"), 1)
	assert.Len(t, log.Items, 1)
}

func TestAward_CurrencyRetryExhaustionFailsWithoutLogging(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.FailCurrency = 10
	svc := newService(fake, fastOpts())

	g := rules.NewGroup("bandits")
	g.Currency["gp"] = "5"

	log := award.NewGrantLog()
	err := svc.Award(context.Background(), &host.Actor{ID: "a1"}, g, log)
	require.Error(t, err)
	assert.Equal(t, 3, fake.CurrencyCalls, "all configured attempts are spent")
	assert.True(t, log.Empty(), "nothing lands in the log unless the host accepted it")
}

func TestAward_ItemRetryExhaustionKeepsEarlierGrants(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(itemDoc("Item.sword", "Shortsword"))
	fake.AddDocument(itemDoc("Item.shield", "Shield"))
	fake.FailCreates = 10
	svc := newService(fake, fastOpts())

	g := allGroup("Item.sword", "Item.shield")
	g.Currency["gp"] = "10"

	log := award.NewGrantLog()
	err := svc.Award(context.Background(), &host.Actor{ID: "a1"}, g, log)
	require.Error(t, err)
	assert.Equal(t, 10, log.Currency["gp"], "currency applied before the item failure stays logged")
	assert.Empty(t, log.Items)
}

func TestAward_SpellConvertedToScroll(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(&host.Document{
		UUID:   "Item.fireball",
		Name:   "Fireball",
		Type:   "spell",
		System: map[string]any{"level": 3},
	})
	svc := newService(fake, fastOpts())

	require.NoError(t, svc.Award(context.Background(), &host.Actor{ID: "a1"}, allGroup("Item.fireball"), award.NewGrantLog()))

	created := fake.CreatedFor("a1")
	require.Len(t, created, 1)
	scroll := created[0]
	assert.Equal(t, "Scroll of Fireball", scroll.Name)
	assert.Equal(t, "consumable", scroll.Type)
	flags := scroll.Flags[award.FlagScope]
	require.NotNil(t, flags)
	assert.Equal(t, true, flags["granted"], "provenance is re-stamped on the converted payload")
	assert.Equal(t, "Item.fireball", flags["sourceSpellUuid"])
}

func TestAward_AutoEquipSetsEquippedFlag(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(&host.Document{
		UUID:   "Item.sword",
		Name:   "Shortsword",
		Type:   "weapon",
		System: map[string]any{"quantity": 1, "equipped": false},
	})
	svc := newService(fake, fastOpts())

	g := allGroup("Item.sword")
	g.DistributionBlocks[0].AutoEquip = true

	require.NoError(t, svc.Award(context.Background(), &host.Actor{ID: "a1"}, g, award.NewGrantLog()))

	created := fake.CreatedFor("a1")
	require.Len(t, created, 1)
	assert.Equal(t, true, created[0].System["equipped"])
}

func TestAward_StaggeredCreationIssuesOneCallPerItem(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(itemDoc("Item.sword", "Shortsword"))
	fake.AddDocument(itemDoc("Item.shield", "Shield"))
	opts := fastOpts()
	opts.ItemStagger = time.Millisecond
	svc := newService(fake, opts)

	require.NoError(t, svc.Award(context.Background(), &host.Actor{ID: "a1"}, allGroup("Item.sword", "Item.shield"), award.NewGrantLog()))

	assert.Equal(t, 2, fake.CreateCalls, "staggered mode creates items one call at a time")
	assert.Len(t, fake.CreatedFor("a1"), 2)
}

func TestAward_BatchedCreationIssuesOneCall(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(itemDoc("Item.sword", "Shortsword"))
	fake.AddDocument(itemDoc("Item.shield", "Shield"))
	svc := newService(fake, fastOpts())

	require.NoError(t, svc.Award(context.Background(), &host.Actor{ID: "a1"}, allGroup("Item.sword", "Item.shield"), award.NewGrantLog()))

	assert.Equal(t, 1, fake.CreateCalls, "batched mode creates all items in a single call")
}

func TestAward_CreatedItemsDoNotAliasSourceDocuments(t *testing.T) {
	fake := testutil.NewFakeHost()
	doc := itemDoc("Item.sword", "Shortsword")
	fake.AddDocument(doc)
	svc := newService(fake, fastOpts())

	require.NoError(t, svc.Award(context.Background(), &host.Actor{ID: "a1"}, allGroup("Item.sword"), award.NewGrantLog()))

	created := fake.CreatedFor("a1")
	require.Len(t, created, 1)
	created[0].System["quantity"] = 99
	assert.Equal(t, 1, doc.System["quantity"], "mutating a grant must not touch the source document")
}

func TestAward_EmptyGroupIsNoOp(t *testing.T) {
	fake := testutil.NewFakeHost()
	svc := newService(fake, fastOpts())

	log := award.NewGrantLog()
	require.NoError(t, svc.Award(context.Background(), &host.Actor{ID: "a1"}, rules.NewGroup("empty"), log))
	assert.True(t, log.Empty())
	assert.Zero(t, fake.CreateCalls)
	assert.Zero(t, fake.CurrencyCalls)
}

package plugin_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tokenloot/tokenloot/internal/config"
	"github.com/tokenloot/tokenloot/internal/host"
	"github.com/tokenloot/tokenloot/internal/plugin"
	"github.com/tokenloot/tokenloot/internal/rules"
	"github.com/tokenloot/tokenloot/internal/testutil"
)

// memStore is an in-memory rules.Store.
type memStore struct {
	mu sync.Mutex
	rs *rules.RuleSet
}

func (m *memStore) Load(context.Context) (*rules.RuleSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rs == nil {
		return rules.NewRuleSet(), nil
	}
	return m.rs, nil
}

func (m *memStore) Save(_ context.Context, rs *rules.RuleSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rs = rs
	return nil
}

func testConfig(multiGroup bool) config.Config {
	cfg := config.Default()
	cfg.System.ID = "dnd5e"
	cfg.Award.StaggerMs = 0
	cfg.Award.ItemStaggerMs = 0
	cfg.Award.RetryAttempts = 3
	cfg.Award.RetryBaseDelayMs = 1
	cfg.Award.MultiGroup = multiGroup
	return cfg
}

func buildPlugin(t *testing.T, fake *testutil.FakeHost, rs *rules.RuleSet, multiGroup bool) *plugin.Plugin {
	t.Helper()
	store := &memStore{rs: rs}
	return plugin.Build(testConfig(multiGroup), store, plugin.HostBindings{
		Documents: fake,
		Items:     fake,
		Currency:  fake,
		Roster:    fake,
		Notifier:  fake,
	}, zap.NewNop())
}

func banditRules(t *testing.T) *rules.RuleSet {
	t.Helper()
	g := rules.NewGroup("Bandits")
	g.ActorIdentifiers = []string{"Actor.bandit"}
	g.Currency["gp"] = "10-10"
	block := rules.NewBlock("gear", rules.BlockAll)
	block.Items = []*rules.LootRow{{UUID: "Item.sword"}}
	g.DistributionBlocks = append(g.DistributionBlocks, block)

	rs := rules.NewRuleSet()
	rs.Groups[g.ID] = g
	return rs
}

func swordDoc() *host.Document {
	return &host.Document{
		UUID:   "Item.sword",
		Name:   "Shortsword",
		Type:   "weapon",
		System: map[string]any{"quantity": 1},
	}
}

func banditActor() *host.Actor {
	return &host.Actor{ID: "a1", UUID: "Actor.bandit", Name: "Bandit", System: "dnd5e"}
}

func TestOnTokenCreated_AwardsMatchingGroup(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(swordDoc())
	p := buildPlugin(t, fake, banditRules(t), false)

	err := <-p.OnTokenCreated(context.Background(), plugin.TokenEvent{TokenID: "tok1", Actor: banditActor()})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"gp": 10}, fake.CurrencyFor("a1"))
	require.Len(t, fake.CreatedFor("a1"), 1)
	assert.Equal(t, "Shortsword", fake.CreatedFor("a1")[0].Name)

	summaries := fake.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, "Bandits", summaries[0].GroupName)
	assert.Equal(t, 10, summaries[0].Summary.Currency["gp"])
}

func TestOnTokenCreated_NoMatchingGroupIsQuietNoOp(t *testing.T) {
	fake := testutil.NewFakeHost()
	p := buildPlugin(t, fake, banditRules(t), false)

	stranger := &host.Actor{ID: "a2", UUID: "Actor.merchant", Name: "Merchant"}
	err := <-p.OnTokenCreated(context.Background(), plugin.TokenEvent{TokenID: "tok1", Actor: stranger})
	require.NoError(t, err)

	assert.Empty(t, fake.CreatedFor("a2"))
	assert.Empty(t, fake.Summaries(), "unmatched actors produce no chatter")
}

func TestOnTokenCreated_SameActorEventsSerialize(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(swordDoc())
	p := buildPlugin(t, fake, banditRules(t), false)

	actor := banditActor()
	first := p.OnTokenCreated(context.Background(), plugin.TokenEvent{TokenID: "tok1", Actor: actor})
	second := p.OnTokenCreated(context.Background(), plugin.TokenEvent{TokenID: "tok2", Actor: actor})

	require.NoError(t, <-first)
	require.NoError(t, <-second)

	assert.Equal(t, map[string]int{"gp": 20}, fake.CurrencyFor("a1"),
		"both placements award, one after the other")
	assert.Len(t, fake.CreatedFor("a1"), 2)
}

func TestOnTokenCreated_MultiGroupAwardsEveryMatch(t *testing.T) {
	rs := banditRules(t)
	extra := rules.NewGroup("Humanoids")
	extra.ActorIdentifiers = []string{"Actor.bandit"}
	extra.Currency["sp"] = "5"
	rs.Groups[extra.ID] = extra

	fake := testutil.NewFakeHost()
	fake.AddDocument(swordDoc())
	p := buildPlugin(t, fake, rs, true)

	err := <-p.OnTokenCreated(context.Background(), plugin.TokenEvent{TokenID: "tok1", Actor: banditActor()})
	require.NoError(t, err)

	got := fake.CurrencyFor("a1")
	assert.Equal(t, 10, got["gp"])
	assert.Equal(t, 5, got["sp"])
	assert.Len(t, fake.Summaries(), 2, "each awarded group posts its own summary")
}

func TestOnTokenCreated_SingleGroupPolicyAwardsFirstMatchOnly(t *testing.T) {
	rs := banditRules(t)
	extra := rules.NewGroup("Humanoids")
	extra.ActorIdentifiers = []string{"Actor.bandit"}
	extra.Currency["sp"] = "5"
	rs.Groups[extra.ID] = extra

	fake := testutil.NewFakeHost()
	fake.AddDocument(swordDoc())
	p := buildPlugin(t, fake, rs, false)

	err := <-p.OnTokenCreated(context.Background(), plugin.TokenEvent{TokenID: "tok1", Actor: banditActor()})
	require.NoError(t, err)

	assert.Len(t, fake.Summaries(), 1, "legacy policy stops at the first matching group")
}

func TestOnTokenCreated_GroupFailureDoesNotAbortSiblings(t *testing.T) {
	rs := banditRules(t)
	extra := rules.NewGroup("Humanoids")
	extra.ActorIdentifiers = []string{"Actor.bandit"}
	extra.Currency["sp"] = "5"
	rs.Groups[extra.ID] = extra

	fake := testutil.NewFakeHost()
	fake.AddDocument(swordDoc())
	// Enough rejections to exhaust one group's currency retries, not both.
	fake.FailCurrency = 3
	p := buildPlugin(t, fake, rs, true)

	err := <-p.OnTokenCreated(context.Background(), plugin.TokenEvent{TokenID: "tok1", Actor: banditActor()})
	require.NoError(t, err, "a failed group is logged, not surfaced")

	assert.Len(t, fake.Summaries(), 1, "the surviving group still awards and notifies")
}

func TestAwaitGrants_ResolvesAfterAward(t *testing.T) {
	fake := testutil.NewFakeHost()
	fake.AddDocument(swordDoc())
	p := buildPlugin(t, fake, banditRules(t), false)

	require.NoError(t, <-p.OnTokenCreated(context.Background(), plugin.TokenEvent{TokenID: "tok1", Actor: banditActor()}))

	select {
	case <-p.AwaitGrants("tok1"):
	case <-time.After(2 * time.Second):
		t.Fatal("grants for tok1 never settled")
	}
}

func TestAwaitGrants_UnknownTokenResolvesImmediately(t *testing.T) {
	fake := testutil.NewFakeHost()
	p := buildPlugin(t, fake, banditRules(t), false)

	select {
	case <-p.AwaitGrants("never-seen"):
	case <-time.After(time.Second):
		t.Fatal("unknown tokens must resolve immediately")
	}
}

func TestFormatSummary(t *testing.T) {
	assert.Equal(t, "nothing granted", plugin.FormatSummary(host.Summary{}))

	got := plugin.FormatSummary(host.Summary{
		Currency: map[string]int{"gp": 10, "sp": 3},
		Items: []host.GrantedItem{
			{Name: "Shortsword", Qty: 2},
			{Name: "Healing Potion", Qty: 1},
		},
	})
	assert.Equal(t, "10 GP, 3 SP; 2x Shortsword, 1x Healing Potion", got)
}

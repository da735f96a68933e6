package award

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tokenloot/tokenloot/internal/adapter"
	"github.com/tokenloot/tokenloot/internal/currency"
	"github.com/tokenloot/tokenloot/internal/dice"
	"github.com/tokenloot/tokenloot/internal/host"
	"github.com/tokenloot/tokenloot/internal/retry"
	"github.com/tokenloot/tokenloot/internal/rules"
)

// FlagScope is the flag namespace recording grant provenance on created items.
const FlagScope = "tokenloot"

// spellType is the document type that triggers consumable-scroll conversion.
const spellType = "spell"

// Options tunes the mutation behavior of a Service.
type Options struct {
	// RetryAttempts bounds each host mutation call, including the first try.
	RetryAttempts int
	// RetryBaseDelay is the linear-backoff unit between tries.
	RetryBaseDelay time.Duration
	// ItemStagger, when positive, creates items one at a time with a pause
	// between each to spread write load; zero batches them in one call.
	ItemStagger time.Duration
}

func (o Options) withDefaults() Options {
	if o.RetryAttempts == 0 {
		o.RetryAttempts = retry.DefaultAttempts
	}
	if o.RetryBaseDelay == 0 {
		o.RetryBaseDelay = retry.DefaultBaseDelay
	}
	return o
}

// Service grants a resolved group's loot to an actor. Row-level failures are
// logged and skipped; host mutation failures are retried and, on exhaustion,
// returned to the caller.
type Service struct {
	docs    host.DocumentSource
	items   host.ItemWriter
	adapter adapter.SystemAdapter
	eval    *currency.Evaluator
	src     dice.Source
	logger  *zap.Logger
	opts    Options
}

// NewService creates an award Service.
//
// Precondition: docs, items, sysAdapter, eval, src, and logger must be non-nil.
func NewService(docs host.DocumentSource, items host.ItemWriter, sysAdapter adapter.SystemAdapter, eval *currency.Evaluator, src dice.Source, logger *zap.Logger, opts Options) *Service {
	return &Service{
		docs:    docs,
		items:   items,
		adapter: sysAdapter,
		eval:    eval,
		src:     src,
		logger:  logger,
		opts:    opts.withDefaults(),
	}
}

// Award resolves the group's loot and applies it to the actor, accumulating
// applied currency and created items into log.
//
// Postcondition: log reflects only mutations that were actually accepted by
// the host. A returned error means the currency apply or an item creation
// failed after retries; earlier partial grants remain applied.
func (s *Service) Award(ctx context.Context, actor *host.Actor, g *rules.Group, log *GrantLog) error {
	loot := ResolveGroupLoot(s.src, g)

	if err := s.applyCurrency(ctx, actor, loot.Currency, log); err != nil {
		return fmt.Errorf("applying currency for group %q: %w", g.Name, err)
	}

	if len(loot.Items) == 0 {
		return nil
	}
	if err := s.grantItems(ctx, actor, loot.Items, log); err != nil {
		return fmt.Errorf("granting items for group %q: %w", g.Name, err)
	}
	return nil
}

// applyCurrency evaluates each denomination fresh and applies the positive
// amounts through the adapter. Expressions that fail to evaluate are skipped
// with a warning; only an adapter failure aborts.
func (s *Service) applyCurrency(ctx context.Context, actor *host.Actor, spec map[string]string, log *GrantLog) error {
	if len(spec) == 0 {
		return nil
	}

	denominations := make([]string, 0, len(spec))
	for d := range spec {
		denominations = append(denominations, d)
	}
	sort.Strings(denominations)

	payload := make(map[string]int)
	for _, d := range denominations {
		expr := spec[d]
		if expr == "" {
			continue
		}
		amount, err := s.eval.Evaluate(ctx, expr)
		if err != nil {
			s.logger.Warn("skipping unresolvable currency expression",
				zap.String("denomination", d),
				zap.String("expression", expr),
				zap.Error(err),
			)
			continue
		}
		if amount > 0 {
			payload[d] += amount
		}
	}
	if len(payload) == 0 {
		return nil
	}

	err := retry.Do(ctx, s.opts.RetryAttempts, s.opts.RetryBaseDelay, func(ctx context.Context) error {
		return s.adapter.ApplyCurrency(ctx, actor, payload)
	})
	if err != nil {
		return err
	}
	for d, amount := range payload {
		log.Currency.Merge(d, amount)
	}
	return nil
}

// grantItems materializes each selected row and requests creation on the
// actor, batched or staggered per Options.
func (s *Service) grantItems(ctx context.Context, actor *host.Actor, selected []SelectedRow, log *GrantLog) error {
	type staged struct {
		data *host.ItemData
		qty  int
	}
	var toCreate []staged

	for _, sel := range selected {
		data, qty, err := s.materialize(ctx, sel)
		if err != nil {
			// A single bad reference must never abort the whole award.
			s.logger.Warn("skipping unresolvable loot row",
				zap.String("uuid", sel.Row.UUID),
				zap.String("block_id", sel.BlockID),
				zap.Error(err),
			)
			continue
		}
		toCreate = append(toCreate, staged{data: data, qty: qty})
	}
	if len(toCreate) == 0 {
		return nil
	}

	create := func(batch []staged) error {
		datas := make([]*host.ItemData, len(batch))
		for i, st := range batch {
			datas[i] = st.data
		}
		err := retry.Do(ctx, s.opts.RetryAttempts, s.opts.RetryBaseDelay, func(ctx context.Context) error {
			return s.items.CreateItems(ctx, actor.ID, datas)
		})
		if err != nil {
			return err
		}
		for _, st := range batch {
			log.Items = append(log.Items, host.GrantedItem{Name: st.data.Name, Qty: st.qty})
		}
		return nil
	}

	if s.opts.ItemStagger <= 0 {
		return create(toCreate)
	}
	for i, st := range toCreate {
		if err := create([]staged{st}); err != nil {
			return err
		}
		if i < len(toCreate)-1 {
			if err := sleep(ctx, s.opts.ItemStagger); err != nil {
				return err
			}
		}
	}
	return nil
}

// materialize turns one selected row into a creation-ready payload: resolve
// the source, clone it with identity stripped, roll the quantity, stamp
// provenance, and apply scroll conversion and auto-equip.
func (s *Service) materialize(ctx context.Context, sel SelectedRow) (*host.ItemData, int, error) {
	doc, err := s.docs.ResolveDocument(ctx, sel.Row.UUID)
	if err != nil {
		return nil, 0, err
	}
	if doc == nil {
		return nil, 0, host.ErrNotFound
	}

	qtyLo, qtyHi := sel.Row.QuantityRange()
	qty := dice.IntBetween(s.src, qtyLo, qtyHi)

	data := doc.Clone()
	data.SetQuantity(qty)
	stampProvenance(data, sel.BlockID)

	if doc.Type == spellType {
		scroll, convErr := s.adapter.ConvertToConsumable(ctx, doc)
		if convErr != nil {
			// Best effort: grant the spell unchanged when conversion fails.
			s.logger.Warn("scroll conversion failed, granting spell unchanged",
				zap.String("uuid", sel.Row.UUID),
				zap.Error(convErr),
			)
		} else if scroll != nil {
			data = scroll
			data.SetQuantity(qty)
			stampProvenance(data, sel.BlockID)
			data.SetFlag(FlagScope, "sourceSpellUuid", sel.Row.UUID)
		}
	}

	if sel.AutoEquip {
		s.adapter.Equip(data)
	}
	return data, qty, nil
}

func stampProvenance(data *host.ItemData, blockID string) {
	data.SetFlag(FlagScope, "granted", true)
	data.SetFlag(FlagScope, "blockId", blockID)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package plugin

import (
	"go.uber.org/zap"

	"github.com/tokenloot/tokenloot/internal/adapter"
	"github.com/tokenloot/tokenloot/internal/award"
	"github.com/tokenloot/tokenloot/internal/config"
	"github.com/tokenloot/tokenloot/internal/currency"
	"github.com/tokenloot/tokenloot/internal/dice"
	"github.com/tokenloot/tokenloot/internal/groups"
	"github.com/tokenloot/tokenloot/internal/host"
	"github.com/tokenloot/tokenloot/internal/queue"
	"github.com/tokenloot/tokenloot/internal/rules"
)

// HostBindings collects the host-runtime capabilities the engine consumes.
type HostBindings struct {
	Documents host.DocumentSource
	Items     host.ItemWriter
	Currency  host.CurrencyWriter
	Roster    host.Roster
	// Notifier is optional; nil falls back to the structured log.
	Notifier host.Notifier
	// Roller is optional; nil falls back to the built-in dice roller.
	Roller host.FormulaRoller
}

// Build assembles a Plugin from configuration and host bindings. The adapter
// is selected once here from the configured system identifier; the queue and
// tracker are constructed once and live for the session.
//
// Precondition: store, logger, and the non-optional bindings must be non-nil.
func Build(cfg config.Config, store rules.Store, bind HostBindings, logger *zap.Logger) *Plugin {
	src := dice.NewCryptoSource()

	roller := bind.Roller
	if roller == nil {
		roller = dice.NewLoggedRoller(src, logger)
	}
	notifier := bind.Notifier
	if notifier == nil {
		notifier = &LogNotifier{Logger: logger}
	}

	sysAdapter := adapter.ForSystem(cfg.System.ID, bind.Currency)
	eval := currency.NewEvaluator(src, roller)

	svc := award.NewService(bind.Documents, bind.Items, sysAdapter, eval, src, logger, award.Options{
		RetryAttempts:  cfg.Award.RetryAttempts,
		RetryBaseDelay: cfg.Award.RetryBaseDelay(),
		ItemStagger:    cfg.Award.ItemStagger(),
	})

	return New(
		store,
		groups.NewResolver(bind.Roster),
		svc,
		queue.NewActorQueue(logger),
		award.NewTracker(),
		notifier,
		logger,
		Options{
			Stagger:    StaggerFor(cfg.Award.Stagger()),
			MultiGroup: cfg.Award.MultiGroup,
		},
	)
}

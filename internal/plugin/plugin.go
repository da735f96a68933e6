// Package plugin wires the loot engine to the host's token lifecycle: when a
// token is placed, it resolves the matching reward groups and grants their
// loot, serialized per actor and tracked per token.
package plugin

import (
	"context"

	"go.uber.org/zap"

	"github.com/tokenloot/tokenloot/internal/award"
	"github.com/tokenloot/tokenloot/internal/groups"
	"github.com/tokenloot/tokenloot/internal/host"
	"github.com/tokenloot/tokenloot/internal/queue"
	"github.com/tokenloot/tokenloot/internal/rules"
)

// TokenEvent carries the host's token-created notification.
type TokenEvent struct {
	// TokenID identifies the placed token.
	TokenID string
	// Actor is the actor the token represents.
	Actor *host.Actor
}

// Options tunes the plugin's orchestration behavior.
type Options struct {
	// Stagger delays each queued award before it starts.
	Stagger Sleeper
	// MultiGroup awards every matching group; false keeps the legacy
	// first-match-only policy.
	MultiGroup bool
}

// Plugin owns the engine's process-wide coordination state. Construct one at
// startup and never tear it down mid-session; all collaborators are injected
// so the engine stays testable in isolation.
type Plugin struct {
	store    rules.Store
	resolver *groups.Resolver
	svc      *award.Service
	queue    *queue.ActorQueue
	tracker  *award.Tracker
	notifier host.Notifier
	logger   *zap.Logger
	opts     Options
}

// New creates a Plugin.
//
// Precondition: all collaborators must be non-nil.
func New(store rules.Store, resolver *groups.Resolver, svc *award.Service, q *queue.ActorQueue, tracker *award.Tracker, notifier host.Notifier, logger *zap.Logger, opts Options) *Plugin {
	return &Plugin{
		store:    store,
		resolver: resolver,
		svc:      svc,
		queue:    q,
		tracker:  tracker,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

// OnTokenCreated reacts to a token placement. The work is enqueued on the
// actor's serial queue so near-simultaneous placements of the same actor
// never interleave their mutations; the returned channel settles when this
// event's awarding has finished.
//
// Precondition: ev.Actor must be non-nil and carry a non-empty ID.
func (p *Plugin) OnTokenCreated(ctx context.Context, ev TokenEvent) <-chan error {
	return p.queue.Enqueue(ctx, ev.Actor.ID, func(ctx context.Context) error {
		if p.opts.Stagger != nil {
			if err := p.opts.Stagger(ctx); err != nil {
				return err
			}
		}
		return p.awardToken(ctx, ev)
	})
}

// AwaitGrants returns a channel that closes once every in-flight award for
// tokenID has settled. Compatibility shims for other plugins block on this.
func (p *Plugin) AwaitGrants(tokenID string) <-chan struct{} {
	return p.tracker.Await(tokenID)
}

// awardToken loads the rule set fresh, matches groups, and awards each one.
// A failing group is logged and never aborts its siblings.
func (p *Plugin) awardToken(ctx context.Context, ev TokenEvent) error {
	rs, err := p.store.Load(ctx)
	if err != nil {
		return err
	}

	matched, err := p.matchGroups(ctx, rs, ev.Actor)
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		return nil
	}

	p.tracker.Begin(ev.TokenID)
	defer p.tracker.End(ev.TokenID)

	for _, g := range matched {
		log := award.NewGrantLog()
		if err := p.svc.Award(ctx, ev.Actor, g, log); err != nil {
			p.logger.Error("award failed",
				zap.String("actor_id", ev.Actor.ID),
				zap.String("group", g.Name),
				zap.Error(err),
			)
			continue
		}
		p.notify(ctx, ev.Actor, g, log)
	}
	return nil
}

func (p *Plugin) matchGroups(ctx context.Context, rs *rules.RuleSet, actor *host.Actor) ([]*rules.Group, error) {
	if p.opts.MultiGroup {
		return p.resolver.FindAll(ctx, rs, actor)
	}
	g, err := p.resolver.FindFirst(ctx, rs, actor)
	if err != nil || g == nil {
		return nil, err
	}
	return []*rules.Group{g}, nil
}

// notify posts the grant summary; notifier failures are logged, never fatal.
func (p *Plugin) notify(ctx context.Context, actor *host.Actor, g *rules.Group, log *award.GrantLog) {
	if err := p.notifier.GrantSummary(ctx, actor, g.Name, log.Summary()); err != nil {
		p.logger.Warn("grant summary notification failed",
			zap.String("actor_id", actor.ID),
			zap.String("group", g.Name),
			zap.Error(err),
		)
	}
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tokenloot/tokenloot/internal/rules"
)

// DefaultScope is the rule-set row key used when no scope is configured.
// Scopes keep multiple worlds' rule sets apart in one database.
const DefaultScope = "world"

// Store persists the rule set as a single JSONB row per scope. It implements
// rules.Store.
type Store struct {
	pool  *Pool
	scope string
}

// NewStore creates a Store over the given pool.
//
// Precondition: pool must be non-nil. An empty scope falls back to DefaultScope.
func NewStore(pool *Pool, scope string) *Store {
	if scope == "" {
		scope = DefaultScope
	}
	return &Store{pool: pool, scope: scope}
}

// Load reads the rule set blob for the store's scope.
//
// Postcondition: Returns an empty rule set when no row exists.
func (s *Store) Load(ctx context.Context) (*rules.RuleSet, error) {
	var blob []byte
	err := s.pool.Raw().QueryRow(ctx,
		`SELECT blob FROM rule_sets WHERE scope = $1`, s.scope,
	).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return rules.NewRuleSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading rule set for scope %q: %w", s.scope, err)
	}

	var rs rules.RuleSet
	if err := json.Unmarshal(blob, &rs); err != nil {
		return nil, fmt.Errorf("decoding rule set for scope %q: %w", s.scope, err)
	}
	if rs.Groups == nil {
		rs.Groups = make(map[string]*rules.Group)
	}
	return &rs, nil
}

// Save replaces the rule set blob for the store's scope in one upsert.
//
// Precondition: rs must be non-nil.
func (s *Store) Save(ctx context.Context, rs *rules.RuleSet) error {
	blob, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("encoding rule set: %w", err)
	}

	_, err = s.pool.Raw().Exec(ctx, `
		INSERT INTO rule_sets (scope, blob, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (scope)
		DO UPDATE SET blob = EXCLUDED.blob, updated_at = now()`,
		s.scope, blob,
	)
	if err != nil {
		return fmt.Errorf("saving rule set for scope %q: %w", s.scope, err)
	}
	return nil
}

package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"rulegate/pkg/rules/pattern"
	"rulegate/pkg/rules/store"
)

// Repository owns the rule configuration. All reads and mutations are
// serialized behind a RWMutex; every mutation rewrites the backing
// document synchronously. A save failure does not roll the mutation
// back; it is returned to the caller as a warning while the in-memory
// state keeps the change.
type Repository struct {
	mu       sync.RWMutex
	doc      *Document
	store    store.DocumentStore
	matchers *pattern.Cache
	logger   *slog.Logger
}

// NewRepository creates a repository backed by the given store. The
// persisted document is loaded immediately; a missing or corrupt
// document bootstraps the built-in defaults and persists them.
func NewRepository(ctx context.Context, st store.DocumentStore, logger *slog.Logger) (*Repository, error) {
	if st == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Repository{
		store:    st,
		matchers: pattern.NewCache(),
		logger:   logger,
	}

	if err := r.load(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

// load reads the persisted document into memory, bootstrapping defaults
// when the document is missing or unreadable. Load failures other than
// absence are logged, not raised: the engine must come up with a usable
// configuration.
func (r *Repository) load(ctx context.Context) error {
	data, err := r.store.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotExist):
		r.logger.Info("no rule document found, bootstrapping defaults")
		return r.bootstrap(ctx)
	case err != nil:
		r.logger.Error("failed to load rule document, bootstrapping defaults", "error", err)
		return r.bootstrap(ctx)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		r.logger.Error("rule document is corrupt, bootstrapping defaults", "error", err)
		return r.bootstrap(ctx)
	}
	if doc.Rules == nil {
		doc.Rules = make(map[string]*Rule)
	}
	if doc.RuleSets == nil {
		doc.RuleSets = make(map[string]*RuleSet)
	}
	if doc.DefaultRuleSet == "" {
		doc.DefaultRuleSet = DefaultRuleSetID
	}

	r.mu.Lock()
	r.doc = &doc
	r.matchers.Reset()
	r.mu.Unlock()

	r.logger.Info("loaded rule configuration",
		"rule_count", len(doc.Rules),
		"rule_set_count", len(doc.RuleSets),
	)
	return nil
}

// bootstrap installs the default document and persists it.
func (r *Repository) bootstrap(ctx context.Context) error {
	doc := DefaultDocument()

	r.mu.Lock()
	r.doc = doc
	r.matchers.Reset()
	r.mu.Unlock()

	if err := r.Save(ctx); err != nil {
		// Defaults are usable even if the first save fails.
		r.logger.Warn("failed to persist bootstrapped defaults", "error", err)
	}

	r.logger.Info("bootstrapped default rules", "rule_count", len(doc.Rules))
	return nil
}

// Reload re-reads the backing document, replacing the in-memory state.
// Used when the document changes out-of-band (e.g. edited on disk).
func (r *Repository) Reload(ctx context.Context) error {
	return r.load(ctx)
}

// Save persists the current configuration as a full document rewrite.
func (r *Repository) Save(ctx context.Context) error {
	r.mu.RLock()
	data, err := json.MarshalIndent(r.doc, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return &PersistenceError{Op: "save", Cause: err}
	}

	if err := r.store.Save(ctx, data); err != nil {
		return &PersistenceError{Op: "save", Cause: err}
	}
	return nil
}

// persist saves after a mutation. The mutation is already applied; a
// failure is logged and returned as a warning to the caller.
func (r *Repository) persist(ctx context.Context) error {
	if err := r.Save(ctx); err != nil {
		r.logger.Warn("mutation applied but not persisted", "error", err)
		return err
	}
	return nil
}

// Rule returns the rule with the given id.
func (r *Repository) Rule(id string) (*Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.doc.Rules[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	return rule.Clone(), nil
}

// Rules returns every rule in the repository, in unspecified order.
func (r *Repository) Rules() []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Rule, 0, len(r.doc.Rules))
	for _, rule := range r.doc.Rules {
		out = append(out, rule.Clone())
	}
	return out
}

// RulesBySet returns the rules of a set in membership order. An empty
// setID resolves the default set. Unknown set ids yield an empty list;
// membership entries referencing deleted rules are silently filtered.
func (r *Repository) RulesBySet(setID string) []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.rulesBySetLocked(setID)
}

func (r *Repository) rulesBySetLocked(setID string) []*Rule {
	if setID == "" {
		setID = r.doc.DefaultRuleSet
	}

	set, ok := r.doc.RuleSets[setID]
	if !ok {
		return []*Rule{}
	}

	out := make([]*Rule, 0, len(set.Rules))
	for _, id := range set.Rules {
		if rule, ok := r.doc.Rules[id]; ok {
			out = append(out, rule.Clone())
		}
	}
	return out
}

// ResolveRules unions the rules of the given sets in caller order,
// without de-duplication, falling back to the default set when no ids
// are given. This is the candidate list for a process-text call.
func (r *Repository) ResolveRules(setIDs []string) []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(setIDs) == 0 {
		return r.rulesBySetLocked("")
	}

	var out []*Rule
	for _, id := range setIDs {
		out = append(out, r.rulesBySetLocked(id)...)
	}
	return out
}

// AddRule validates and stores a new rule, returning its id. The
// condition must compile; on failure the repository is unchanged. Rules
// without an id get a server-assigned one. New rules are appended to the
// default rule set's membership.
func (r *Repository) AddRule(ctx context.Context, rule *Rule) (string, error) {
	if _, err := pattern.Compile(rule.Condition); err != nil {
		return "", err
	}

	r.mu.Lock()
	stored := rule.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Replacement == "" {
		stored.Replacement = DefaultReplacement
	}
	if stored.Parameters == nil {
		stored.Parameters = map[string]any{}
	}
	stored.Enabled = true
	now := Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.doc.Rules[stored.ID] = stored

	if set, ok := r.doc.RuleSets[r.doc.DefaultRuleSet]; ok {
		set.Rules = append(set.Rules, stored.ID)
		set.UpdatedAt = now
	}
	r.mu.Unlock()

	return stored.ID, r.persist(ctx)
}

// RuleUpdate describes a partial rule mutation; nil fields are left
// unchanged.
type RuleUpdate struct {
	Name        *string
	Description *string
	Condition   *string
	Action      *Action
	Replacement *string
	Parameters  map[string]any
	Enabled     *bool
	Priority    *int
}

// UpdateRule applies a partial update to an existing rule. A changed
// condition is re-validated before anything is touched; the rule id is
// immutable and updated_at is refreshed.
func (r *Repository) UpdateRule(ctx context.Context, id string, upd RuleUpdate) (*Rule, error) {
	if upd.Condition != nil {
		if _, err := pattern.Compile(*upd.Condition); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	rule, ok := r.doc.Rules[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}

	if upd.Name != nil {
		rule.Name = *upd.Name
	}
	if upd.Description != nil {
		rule.Description = *upd.Description
	}
	if upd.Condition != nil {
		rule.Condition = *upd.Condition
	}
	if upd.Action != nil {
		rule.Action = *upd.Action
	}
	if upd.Replacement != nil {
		rule.Replacement = *upd.Replacement
	}
	if upd.Parameters != nil {
		rule.Parameters = upd.Parameters
	}
	if upd.Enabled != nil {
		rule.Enabled = *upd.Enabled
	}
	if upd.Priority != nil {
		rule.Priority = *upd.Priority
	}
	rule.UpdatedAt = Now()

	updated := rule.Clone()
	r.mu.Unlock()

	r.matchers.Invalidate(id)
	return updated, r.persist(ctx)
}

// DeleteRule removes a rule and cascades the removal through every rule
// set's membership list.
func (r *Repository) DeleteRule(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.doc.Rules[id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}

	now := Now()
	for _, set := range r.doc.RuleSets {
		filtered := set.Rules[:0]
		removed := false
		for _, member := range set.Rules {
			if member == id {
				removed = true
				continue
			}
			filtered = append(filtered, member)
		}
		if removed {
			set.Rules = filtered
			set.UpdatedAt = now
		}
	}

	delete(r.doc.Rules, id)
	r.mu.Unlock()

	r.matchers.Invalidate(id)
	return r.persist(ctx)
}

// RuleSet returns the rule set with the given id, along with whether it
// is the current default.
func (r *Repository) RuleSet(id string) (*RuleSet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.doc.RuleSets[id]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrRuleSetNotFound, id)
	}
	return set.Clone(), id == r.doc.DefaultRuleSet, nil
}

// RuleSets returns every rule set plus the default set id.
func (r *Repository) RuleSets() (map[string]*RuleSet, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*RuleSet, len(r.doc.RuleSets))
	for id, set := range r.doc.RuleSets {
		out[id] = set.Clone()
	}
	return out, r.doc.DefaultRuleSet
}

// DefaultRuleSetID returns the id of the current default rule set.
func (r *Repository) DefaultRuleSetID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc.DefaultRuleSet
}

// AddRuleSet stores a new rule set, returning its id. Membership entries
// are not validated against existing rules; dangling ids are filtered at
// read time instead.
func (r *Repository) AddRuleSet(ctx context.Context, set *RuleSet) (string, error) {
	r.mu.Lock()
	stored := set.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Rules == nil {
		stored.Rules = []string{}
	}
	stored.Enabled = true
	now := Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.doc.RuleSets[stored.ID] = stored
	r.mu.Unlock()

	return stored.ID, r.persist(ctx)
}

// RuleSetUpdate describes a partial rule set mutation; nil fields are
// left unchanged. Rules, when set, replaces the membership list
// wholesale.
type RuleSetUpdate struct {
	Name        *string
	Description *string
	Rules       *[]string
	Enabled     *bool
}

// UpdateRuleSet applies a partial update to an existing rule set.
func (r *Repository) UpdateRuleSet(ctx context.Context, id string, upd RuleSetUpdate) (*RuleSet, error) {
	r.mu.Lock()
	set, ok := r.doc.RuleSets[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrRuleSetNotFound, id)
	}

	if upd.Name != nil {
		set.Name = *upd.Name
	}
	if upd.Description != nil {
		set.Description = *upd.Description
	}
	if upd.Rules != nil {
		set.Rules = append([]string(nil), (*upd.Rules)...)
	}
	if upd.Enabled != nil {
		set.Enabled = *upd.Enabled
	}
	set.UpdatedAt = Now()

	updated := set.Clone()
	r.mu.Unlock()

	return updated, r.persist(ctx)
}

// DeleteRuleSet removes a rule set. Deleting the default set is refused.
func (r *Repository) DeleteRuleSet(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.doc.RuleSets[id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRuleSetNotFound, id)
	}
	if id == r.doc.DefaultRuleSet {
		r.mu.Unlock()
		return ErrCannotDeleteDefault
	}

	delete(r.doc.RuleSets, id)
	r.mu.Unlock()

	return r.persist(ctx)
}

// SetDefaultRuleSet designates an existing rule set as the default.
func (r *Repository) SetDefaultRuleSet(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.doc.RuleSets[id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRuleSetNotFound, id)
	}
	r.doc.DefaultRuleSet = id
	r.mu.Unlock()

	return r.persist(ctx)
}

// Matcher returns the compiled matcher for a rule, using the repository's
// matcher cache.
func (r *Repository) Matcher(rule *Rule) (*regexp.Regexp, error) {
	return r.matchers.Get(rule.ID, rule.Condition)
}

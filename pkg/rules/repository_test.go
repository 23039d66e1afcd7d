package rules

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"rulegate/pkg/rules/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(context.Background(), store.NewMemoryStore(), testLogger())
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	return repo
}

func TestNewRepositoryBootstrapsDefaults(t *testing.T) {
	st := store.NewMemoryStore()
	repo, err := NewRepository(context.Background(), st, testLogger())
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	if got := len(repo.Rules()); got != 9 {
		t.Errorf("bootstrapped rule count = %d, want 9", got)
	}
	if repo.DefaultRuleSetID() != DefaultRuleSetID {
		t.Errorf("default set = %q, want %q", repo.DefaultRuleSetID(), DefaultRuleSetID)
	}

	// The bootstrap persists immediately.
	data, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("store load after bootstrap: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("persisted document is not valid JSON: %v", err)
	}
	if len(doc.Rules) != 9 {
		t.Errorf("persisted rule count = %d, want 9", len(doc.Rules))
	}
}

func TestNewRepositoryCorruptDocumentBootstraps(t *testing.T) {
	st := store.NewMemoryStore()
	if err := st.Save(context.Background(), []byte("{not json")); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	repo, err := NewRepository(context.Background(), st, testLogger())
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if got := len(repo.Rules()); got != 9 {
		t.Errorf("rule count after corrupt load = %d, want 9", got)
	}
}

func TestRepositoryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	ctx := context.Background()

	repo, err := NewRepository(ctx, store.NewFileStore(path), testLogger())
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	id, err := repo.AddRule(ctx, &Rule{
		Name:        "ZIP",
		Condition:   `\b\d{5}\b`,
		Action:      ActionRedact,
		Replacement: "<ZIP>",
		Priority:    10,
	})
	if err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}

	// A fresh repository over the same file sees the mutation.
	reopened, err := NewRepository(ctx, store.NewFileStore(path), testLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rule, err := reopened.Rule(id)
	if err != nil {
		t.Fatalf("Rule(%q) after reopen: %v", id, err)
	}
	if rule.Name != "ZIP" || rule.Replacement != "<ZIP>" {
		t.Errorf("reloaded rule = %+v", rule)
	}
}

func TestAddRule(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.AddRule(ctx, &Rule{
		Name:      "Test",
		Condition: `\btest\b`,
		Action:    ActionRedact,
		Priority:  5,
	})
	if err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}
	if id == "" {
		t.Fatal("AddRule() returned empty id")
	}

	rule, err := repo.Rule(id)
	if err != nil {
		t.Fatalf("Rule(%q) error = %v", id, err)
	}
	if !rule.Enabled {
		t.Error("new rules must be enabled")
	}
	if rule.Replacement != DefaultReplacement {
		t.Errorf("replacement = %q, want %q", rule.Replacement, DefaultReplacement)
	}
	if rule.CreatedAt.IsZero() || rule.UpdatedAt.IsZero() {
		t.Error("timestamps not assigned")
	}

	// New rules join the default set's membership.
	members := repo.RulesBySet("")
	found := false
	for _, m := range members {
		if m.ID == id {
			found = true
		}
	}
	if !found {
		t.Error("new rule missing from default rule set")
	}
}

func TestAddRuleInvalidPattern(t *testing.T) {
	repo := newTestRepository(t)
	before := len(repo.Rules())

	_, err := repo.AddRule(context.Background(), &Rule{
		Name:      "Broken",
		Condition: `[unclosed`,
		Action:    ActionRedact,
	})
	if err == nil {
		t.Fatal("AddRule() with invalid pattern succeeded")
	}
	if got := len(repo.Rules()); got != before {
		t.Errorf("rule count changed on failed add: %d -> %d", before, got)
	}
}

func TestUpdateRule(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.AddRule(ctx, &Rule{
		Name:      "Test",
		Condition: `\bfoo\b`,
		Action:    ActionRedact,
		Priority:  5,
	})
	if err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}

	name := "Renamed"
	priority := 99
	enabled := false
	updated, err := repo.UpdateRule(ctx, id, RuleUpdate{
		Name:     &name,
		Priority: &priority,
		Enabled:  &enabled,
	})
	if err != nil {
		t.Fatalf("UpdateRule() error = %v", err)
	}
	if updated.Name != "Renamed" || updated.Priority != 99 || updated.Enabled {
		t.Errorf("updated rule = %+v", updated)
	}
	if updated.ID != id {
		t.Errorf("id changed on update: %q -> %q", id, updated.ID)
	}
	// Untouched fields survive.
	if updated.Condition != `\bfoo\b` {
		t.Errorf("condition = %q, want unchanged", updated.Condition)
	}
}

func TestUpdateRuleInvalidCondition(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.AddRule(ctx, &Rule{
		Name:      "Test",
		Condition: `\bfoo\b`,
		Action:    ActionRedact,
	})
	if err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}

	bad := `(unclosed`
	if _, err := repo.UpdateRule(ctx, id, RuleUpdate{Condition: &bad}); err == nil {
		t.Fatal("UpdateRule() with invalid condition succeeded")
	}

	rule, err := repo.Rule(id)
	if err != nil {
		t.Fatalf("Rule(%q) error = %v", id, err)
	}
	if rule.Condition != `\bfoo\b` {
		t.Errorf("condition = %q, want unchanged after failed update", rule.Condition)
	}
}

func TestUpdateRuleNotFound(t *testing.T) {
	repo := newTestRepository(t)
	name := "x"
	_, err := repo.UpdateRule(context.Background(), "no-such-rule", RuleUpdate{Name: &name})
	if !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("error = %v, want ErrRuleNotFound", err)
	}
}

func TestDeleteRuleCascades(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	id, err := repo.AddRule(ctx, &Rule{
		Name:      "Doomed",
		Condition: `\bdoomed\b`,
		Action:    ActionFlag,
	})
	if err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}

	setID, err := repo.AddRuleSet(ctx, &RuleSet{
		Name:  "Extra",
		Rules: []string{id},
	})
	if err != nil {
		t.Fatalf("AddRuleSet() error = %v", err)
	}

	if err := repo.DeleteRule(ctx, id); err != nil {
		t.Fatalf("DeleteRule() error = %v", err)
	}

	if _, err := repo.Rule(id); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("Rule() after delete error = %v, want ErrRuleNotFound", err)
	}

	// Membership entries are removed from every set.
	set, _, err := repo.RuleSet(setID)
	if err != nil {
		t.Fatalf("RuleSet(%q) error = %v", setID, err)
	}
	for _, member := range set.Rules {
		if member == id {
			t.Error("deleted rule still referenced by rule set")
		}
	}
	for _, member := range mustRuleSet(t, repo, DefaultRuleSetID).Rules {
		if member == id {
			t.Error("deleted rule still referenced by default rule set")
		}
	}
}

func TestDeleteRuleNotFound(t *testing.T) {
	repo := newTestRepository(t)
	err := repo.DeleteRule(context.Background(), "no-such-rule")
	if !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("error = %v, want ErrRuleNotFound", err)
	}
}

func TestRulesBySetFiltersDanglingMembers(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	setID, err := repo.AddRuleSet(ctx, &RuleSet{
		Name:  "Sparse",
		Rules: []string{"ghost-rule"},
	})
	if err != nil {
		t.Fatalf("AddRuleSet() error = %v", err)
	}

	if got := repo.RulesBySet(setID); len(got) != 0 {
		t.Errorf("RulesBySet() = %d rules, want 0 (dangling filtered)", len(got))
	}
}

func TestResolveRulesFallsBackToDefault(t *testing.T) {
	repo := newTestRepository(t)

	all := repo.ResolveRules(nil)
	def := repo.RulesBySet("")
	if len(all) != len(def) {
		t.Errorf("ResolveRules(nil) = %d rules, want %d (default set)", len(all), len(def))
	}
}

func TestAddRuleSetAndDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	setID, err := repo.AddRuleSet(ctx, &RuleSet{Name: "Strict"})
	if err != nil {
		t.Fatalf("AddRuleSet() error = %v", err)
	}

	set, isDefault, err := repo.RuleSet(setID)
	if err != nil {
		t.Fatalf("RuleSet(%q) error = %v", setID, err)
	}
	if isDefault {
		t.Error("new set must not be the default")
	}
	if !set.Enabled {
		t.Error("new sets must be enabled")
	}
	if set.Rules == nil {
		t.Error("membership list must be initialized")
	}

	if err := repo.DeleteRuleSet(ctx, setID); err != nil {
		t.Fatalf("DeleteRuleSet() error = %v", err)
	}
	if _, _, err := repo.RuleSet(setID); !errors.Is(err, ErrRuleSetNotFound) {
		t.Errorf("RuleSet() after delete error = %v, want ErrRuleSetNotFound", err)
	}
}

func TestDeleteDefaultRuleSetRefused(t *testing.T) {
	repo := newTestRepository(t)
	err := repo.DeleteRuleSet(context.Background(), DefaultRuleSetID)
	if !errors.Is(err, ErrCannotDeleteDefault) {
		t.Errorf("error = %v, want ErrCannotDeleteDefault", err)
	}
	if _, _, err := repo.RuleSet(DefaultRuleSetID); err != nil {
		t.Errorf("default set disappeared: %v", err)
	}
}

func TestUpdateRuleSetReplacesMembership(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	setID, err := repo.AddRuleSet(ctx, &RuleSet{
		Name:  "Strict",
		Rules: []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("AddRuleSet() error = %v", err)
	}

	members := []string{"c"}
	updated, err := repo.UpdateRuleSet(ctx, setID, RuleSetUpdate{Rules: &members})
	if err != nil {
		t.Fatalf("UpdateRuleSet() error = %v", err)
	}
	if len(updated.Rules) != 1 || updated.Rules[0] != "c" {
		t.Errorf("membership = %v, want [c]", updated.Rules)
	}
}

func TestSetDefaultRuleSet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	setID, err := repo.AddRuleSet(ctx, &RuleSet{Name: "Strict"})
	if err != nil {
		t.Fatalf("AddRuleSet() error = %v", err)
	}

	if err := repo.SetDefaultRuleSet(ctx, setID); err != nil {
		t.Fatalf("SetDefaultRuleSet() error = %v", err)
	}
	if repo.DefaultRuleSetID() != setID {
		t.Errorf("default set = %q, want %q", repo.DefaultRuleSetID(), setID)
	}

	if err := repo.SetDefaultRuleSet(ctx, "no-such-set"); !errors.Is(err, ErrRuleSetNotFound) {
		t.Errorf("error = %v, want ErrRuleSetNotFound", err)
	}
}

func TestReloadPicksUpExternalChanges(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	repo, err := NewRepository(ctx, st, testLogger())
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	// Rewrite the document behind the repository's back.
	doc := &Document{
		Rules: map[string]*Rule{
			"only": {
				ID:        "only",
				Name:      "Only",
				Condition: `\bonly\b`,
				Action:    ActionFlag,
				Enabled:   true,
			},
		},
		RuleSets: map[string]*RuleSet{
			DefaultRuleSetID: {
				ID:      DefaultRuleSetID,
				Name:    "Default",
				Rules:   []string{"only"},
				Enabled: true,
			},
		},
		DefaultRuleSet: DefaultRuleSetID,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("encode document: %v", err)
	}
	if err := st.Save(ctx, data); err != nil {
		t.Fatalf("save document: %v", err)
	}

	if err := repo.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := len(repo.Rules()); got != 1 {
		t.Errorf("rule count after reload = %d, want 1", got)
	}
}

func TestRulesReturnsClones(t *testing.T) {
	repo := newTestRepository(t)

	all := repo.Rules()
	if len(all) == 0 {
		t.Fatal("no rules")
	}
	id := all[0].ID
	all[0].Name = "mutated"
	all[0].Parameters["sneaky"] = true

	fresh, err := repo.Rule(id)
	if err != nil {
		t.Fatalf("Rule(%q) error = %v", id, err)
	}
	if fresh.Name == "mutated" {
		t.Error("mutating a returned rule leaked into the repository")
	}
	if _, ok := fresh.Parameters["sneaky"]; ok {
		t.Error("mutating returned parameters leaked into the repository")
	}
}

// flakyStore fails saves on demand so persistence failures can be
// simulated after a healthy bootstrap.
type flakyStore struct {
	*store.MemoryStore
	failSaves bool
}

func (s *flakyStore) Save(ctx context.Context, data []byte) error {
	if s.failSaves {
		return errors.New("disk full")
	}
	return s.MemoryStore.Save(ctx, data)
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	ctx := context.Background()
	st := &flakyStore{MemoryStore: store.NewMemoryStore()}

	repo, err := NewRepository(ctx, st, testLogger())
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	st.failSaves = true

	id, err := repo.AddRule(ctx, &Rule{
		Name:      "Unsaved",
		Condition: `\bunsaved\b`,
		Action:    ActionFlag,
	})
	if err == nil {
		t.Fatal("AddRule() with failing store succeeded, want persistence error")
	}
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Errorf("error = %v, want *PersistenceError", err)
	}

	// The mutation is applied in memory even though the save failed.
	if id == "" {
		t.Fatal("AddRule() returned no id alongside the save failure")
	}
	rule, err := repo.Rule(id)
	if err != nil {
		t.Fatalf("Rule(%q) after failed save: %v", id, err)
	}
	if rule.Name != "Unsaved" {
		t.Errorf("rule name = %q, want %q", rule.Name, "Unsaved")
	}

	// Once the store recovers, the next save rewrites the full document
	// including the earlier mutation.
	st.failSaves = false
	if err := repo.Save(ctx); err != nil {
		t.Fatalf("Save() after recovery error = %v", err)
	}

	reopened, err := NewRepository(ctx, st.MemoryStore, testLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := reopened.Rule(id); err != nil {
		t.Errorf("Rule(%q) after recovery save: %v", id, err)
	}
}

func mustRuleSet(t *testing.T, repo *Repository, id string) *RuleSet {
	t.Helper()
	set, _, err := repo.RuleSet(id)
	if err != nil {
		t.Fatalf("RuleSet(%q) error = %v", id, err)
	}
	return set
}

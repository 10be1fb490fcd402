// Package resolver turns free-text utterances into a single resolved
// application identity. Matching runs through priority tiers: user-defined
// commands, exact canonical names, exact aliases, then fuzzy matching with a
// minimum-confidence threshold.
package resolver

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/voxlaunch/voxlaunch/internal/config"
	"github.com/voxlaunch/voxlaunch/internal/logging"
	"github.com/voxlaunch/voxlaunch/internal/types"
)

// Inventory is the resolver's read-only view of the application cache.
type Inventory interface {
	Snapshot() *types.Snapshot
	Aliases() map[string][]string
}

// Commands supplies user-defined trigger phrases.
type Commands interface {
	UserCommands() map[string]string
}

// Resolver matches utterances against the inventory. Results are memoized by
// normalized input; the memo is invalidated by the owner whenever the
// inventory or the alias/user-command tables change.
type Resolver struct {
	inventory Inventory
	commands  Commands
	threshold float64
	memo      *lru.Cache[string, *types.Match]
	logger    *logging.Logger
}

// New creates a resolver. MemoSize below 1 falls back to the default.
func New(inv Inventory, cmds Commands, cfg config.ResolverConfig, logger *logging.Logger) *Resolver {
	size := cfg.MemoSize
	if size < 1 {
		size = config.Default().Resolver.MemoSize
	}
	memo, _ := lru.New[string, *types.Match](size)

	return &Resolver{
		inventory: inv,
		commands:  cmds,
		threshold: cfg.Threshold,
		memo:      memo,
		logger:    logger,
	}
}

// Match resolves an utterance to an intent and application, or nil when
// nothing matches. The result is the single best candidate, never a list.
func (r *Resolver) Match(utterance string) *types.Match {
	normalized := normalize(utterance)
	if normalized == "" {
		return nil
	}

	if cached, ok := r.memo.Get(normalized); ok {
		return cached
	}

	match := r.resolve(normalized)
	r.memo.Add(normalized, match)
	return match
}

// Invalidate clears the memoization table. Must be called after every
// inventory refresh or settings change; stale-memo correctness is the
// caller's job.
func (r *Resolver) Invalidate() {
	r.memo.Purge()
}

func (r *Resolver) resolve(normalized string) *types.Match {
	intent, phrase := splitIntent(normalized)
	if intent == types.IntentUnknown || phrase == "" {
		return nil
	}

	// Tier 1: user-defined commands bypass the inventory.
	for trigger, target := range r.commands.UserCommands() {
		if strings.EqualFold(strings.TrimSpace(trigger), phrase) {
			return &types.Match{
				Intent: intent,
				App:    types.AppIdentity{Name: trigger, LaunchTarget: target},
			}
		}
	}

	aliases := r.inventory.Aliases()
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	// Tier 2: exact canonical name.
	for _, name := range names {
		if strings.ToLower(name) == phrase {
			return &types.Match{Intent: intent, App: r.identity(name)}
		}
	}

	// Tier 3: exact alias.
	for _, name := range names {
		for _, alias := range aliases[name] {
			if strings.ToLower(alias) == phrase {
				return &types.Match{Intent: intent, App: r.identity(name)}
			}
		}
	}

	// Tier 4: fuzzy match over names and aliases.
	if best, ok := r.fuzzy(phrase, names, aliases); ok {
		return &types.Match{Intent: intent, App: r.identity(best)}
	}

	r.logger.Debug("no application matched", zap.String("phrase", phrase))
	return nil
}

type candidate struct {
	name       string
	score      float64
	canonical  bool
	aliasIndex int
}

// fuzzy picks the best candidate above the confidence threshold. Canonical
// names outrank aliases at equal score; earlier-registered aliases outrank
// later ones.
func (r *Resolver) fuzzy(phrase string, names []string, aliases map[string][]string) (string, bool) {
	var best *candidate

	consider := func(c candidate) {
		if c.score < r.threshold {
			return
		}
		if best == nil || better(c, *best) {
			b := c
			best = &b
		}
	}

	for _, name := range names {
		consider(candidate{
			name:       name,
			score:      similarity(phrase, strings.ToLower(name)),
			canonical:  true,
			aliasIndex: -1,
		})
		for i, alias := range aliases[name] {
			consider(candidate{
				name:       name,
				score:      similarity(phrase, strings.ToLower(alias)),
				aliasIndex: i,
			})
		}
	}

	if best == nil {
		return "", false
	}
	return best.name, true
}

func better(a, b candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.canonical != b.canonical {
		return a.canonical
	}
	if a.aliasIndex != b.aliasIndex {
		return a.aliasIndex < b.aliasIndex
	}
	return a.name < b.name
}

// similarity is 1 minus the normalized edit distance. Containment of one
// string in the other scores at least the length ratio, so partial names
// like "chrome" still reach "google chrome".
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}

	score := 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)

	if strings.Contains(a, b) || strings.Contains(b, a) {
		shortest := min(len(a), len(b))
		if ratio := float64(shortest) / float64(longest); ratio > score {
			score = ratio
		}
	}
	return score
}

func (r *Resolver) identity(name string) types.AppIdentity {
	if snap := r.inventory.Snapshot(); snap != nil {
		if app, ok := snap.Find(name); ok {
			return app
		}
	}
	// Known by alias only; launch may still succeed by name.
	return types.AppIdentity{Name: name}
}

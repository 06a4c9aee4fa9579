// Package resolver maps noisy observed text back to the catalog entry, and
// the variable values, that most likely produced it.
package resolver

import (
	"context"
	"fmt"
	"math"

	"lang-resolver/internal/cache"
	"lang-resolver/internal/lang"
	"lang-resolver/internal/textutil"
	"lang-resolver/internal/worker"

	"github.com/rs/zerolog/log"
)

// DefaultTolerance is the score distance under which two candidates tie.
const DefaultTolerance = 1e-5

// Match is one resolved value with its similarity score.
type Match struct {
	Value *lang.Value
	Score float64
}

// Result holds every candidate tied for the best score. A Result without
// matches means nothing reached the cutoff.
type Result struct {
	Matches []Match
	Score   float64
}

// NoMatch reports that nothing reached the score cutoff.
func (r Result) NoMatch() bool { return len(r.Matches) == 0 }

// Best returns the first tied match.
func (r Result) Best() (Match, bool) {
	if len(r.Matches) == 0 {
		return Match{}, false
	}
	return r.Matches[0], true
}

// Ambiguous reports whether the tied matches disagree on text or on key.
func (r Result) Ambiguous() bool {
	_, ok := r.conflict()
	return ok
}

// conflict returns the first match that disagrees with the best one.
func (r Result) conflict() (Match, bool) {
	for i := 1; i < len(r.Matches); i++ {
		m, first := r.Matches[i].Value, r.Matches[0].Value
		if m.String() != first.String() || m.Key() != first.Key() {
			return r.Matches[i], true
		}
	}
	return Match{}, false
}

// Keys returns the distinct keys of the matches in order.
func (r Result) Keys() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range r.Matches {
		if k := m.Value.Key(); !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithScorer replaces the default Ratio scorer.
func WithScorer(s Scorer) Option {
	return func(r *Resolver) { r.scorer = s }
}

// WithTolerance replaces DefaultTolerance.
func WithTolerance(t float64) Option {
	return func(r *Resolver) { r.tolerance = t }
}

// Resolver performs staged fuzzy matching against candidate models.
type Resolver struct {
	cutoff    float64
	tolerance float64
	scorer    Scorer
	last      *cache.LastResult[string, Result]
}

// New creates a Resolver that rejects matches scoring below cutoff.
func New(cutoff float64, opts ...Option) *Resolver {
	r := &Resolver{
		cutoff:    cutoff,
		tolerance: DefaultTolerance,
		scorer:    Ratio,
		last:      cache.NewLastResult[string, Result](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cutoff returns the minimum accepted score.
func (r *Resolver) Cutoff() float64 { return r.cutoff }

// Resolve matches observed against the model.
func (r *Resolver) Resolve(observed string, m *lang.Model) Result {
	return r.resolve(observed, m.Snapshot())
}

// Cached is Resolve with a memo of the last observed text per model. The
// memo is dropped whenever the model is rebuilt.
func (r *Resolver) Cached(observed string, m *lang.Model) Result {
	st := m.Snapshot()
	return r.last.GetOrCompute(st.ModelID, st.Generation, observed, func() Result {
		return r.resolve(observed, st)
	})
}

// CacheStats reports hits and misses of Cached.
func (r *Resolver) CacheStats() (hits, misses uint64) { return r.last.Stats() }

// ResolveBatch resolves every observed text against one build of the model
// using a worker pool. Results keep the input order. If ctx is cancelled
// before every text is resolved, no results are returned.
func (r *Resolver) ResolveBatch(ctx context.Context, observed []string, m *lang.Model, workers int) ([]Result, error) {
	st := m.Snapshot()
	pool := worker.NewPool[string, Result](workers, func(ctx context.Context, text string) (Result, error) {
		return r.resolve(text, st), nil
	})
	tasks := pool.Execute(ctx, observed)

	out := make([]Result, len(tasks))
	var (
		failed   int
		firstErr error
	)
	for i, t := range tasks {
		if t.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = t.Err
			}
			continue
		}
		out[i] = t.Result
	}
	if firstErr != nil {
		return nil, fmt.Errorf("resolve batch: %d of %d texts unresolved: %w", failed, len(tasks), firstErr)
	}
	return out, nil
}

// seed identifies one narrowing run: a key, plus the sex its purge candidate
// was rendered with when the entry's sex is not fixed by the player.
type seed struct {
	key string
	sex lang.Datum
}

func (r *Resolver) resolve(observed string, st *lang.Snapshot) Result {
	purge := st.PurgeSpread()
	if len(purge) == 0 {
		return Result{}
	}

	ties, purgeBest := r.rank(observed, purge)
	log.Debug().
		Str("observed", textutil.Truncate(observed, 40)).
		Int("candidates", len(purge)).
		Int("ties", len(ties)).
		Float64("score", purgeBest).
		Msg("Purge spread ranked")

	var recorded []Match
	seen := make(map[seed]bool)
	for _, pv := range ties {
		sd := seed{key: pv.Key()}
		if sex, ok := pv.Binding().Get(lang.SexVar); ok {
			sd.sex = sex
		}
		if seen[sd] {
			continue
		}
		seen[sd] = true

		values, best, ok := r.narrow(observed, st, sd, purgeBest)
		if !ok || best < r.cutoff {
			continue
		}
		for _, v := range values {
			recorded = append(recorded, Match{Value: v, Score: best})
		}
	}

	if len(recorded) == 0 {
		return Result{}
	}

	best := recorded[0].Score
	for _, m := range recorded[1:] {
		best = math.Max(best, m.Score)
	}
	res := Result{Score: best}
	for _, m := range recorded {
		if r.tie(m.Score, best) {
			res.Matches = append(res.Matches, m)
		}
	}

	if other, ok := res.conflict(); ok {
		first := res.Matches[0].Value
		log.Warn().
			Str("observed", observed).
			Str("first_key", first.Key()).
			Str("first", first.String()).
			Str("other_key", other.Value.Key()).
			Str("other", other.Value.String()).
			Int("tied", len(res.Matches)).
			Float64("score", best).
			Msg("Ambiguous match")
	}
	return res
}

// narrow reconstructs the entry for sd and walks its spreading in declared
// order, keeping only the best-scoring expansions at each step.
func (r *Resolver) narrow(observed string, st *lang.Snapshot, sd seed, purgeBest float64) ([]*lang.Value, float64, bool) {
	value, ok := st.Value(sd.key)
	if !ok {
		return nil, 0, false
	}
	if sd.sex != nil && !value.Binding().Has(lang.SexVar) {
		bound, err := value.Bind(lang.SexVar, sd.sex)
		if err != nil {
			log.Warn().Err(err).Str("key", sd.key).Msg("Failed to bind sex from purge candidate")
			return nil, 0, false
		}
		value = bound
	}

	spreading, _ := st.Spreading(sd.key)
	values, best := []*lang.Value{value}, purgeBest
	for _, e := range spreading.Entries() {
		expanded, err := lang.Expand(values, func(v *lang.Value) ([]*lang.Value, error) {
			return v.Spread(e.Var, e.Spread)
		})
		if err != nil {
			log.Warn().Err(err).Str("key", sd.key).Str("var", e.Var.String()).Msg("Failed to spread candidate")
			return nil, 0, false
		}
		values, best = r.rank(observed, expanded)
		log.Debug().
			Str("key", sd.key).
			Str("var", e.Var.String()).
			Int("expanded", len(expanded)).
			Int("ties", len(values)).
			Float64("score", best).
			Msg("Spread narrowed")
	}
	return values, best, true
}

// rank scores every value and returns those tied for the best score, in input order.
func (r *Resolver) rank(observed string, values []*lang.Value) ([]*lang.Value, float64) {
	scores := make([]float64, len(values))
	best := math.Inf(-1)
	for i, v := range values {
		scores[i] = r.scorer(observed, v.String())
		best = math.Max(best, scores[i])
	}
	var ties []*lang.Value
	for i, v := range values {
		if r.tie(scores[i], best) {
			ties = append(ties, v)
		}
	}
	return ties, best
}

func (r *Resolver) tie(a, b float64) bool {
	return math.Abs(a-b) <= r.tolerance
}

package track

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/patchmatch/internal/frame"
)

// Request asks for the match of the patch of Reference centred at Source in
// Target, starting the search at Guess.
type Request struct {
	ID        string
	Reference frame.View
	Target    frame.View
	Source    frame.Position
	Guess     frame.Position
}

// Match is the outcome of one request. Err is set when the reference patch
// could not be sampled.
type Match struct {
	ID     string
	Source frame.Position
	Result
	Err error
}

// Matcher refines many requests concurrently.
type Matcher struct {
	refiner   *Refiner
	patchSize int
	workers   int

	// OnMatch, if set, is called for every finished request. It may be
	// called from several goroutines at once.
	OnMatch func(Match)
}

// NewMatcher creates a matcher. workers <= 0 uses GOMAXPROCS.
func NewMatcher(refiner *Refiner, patchSize, workers int) *Matcher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Matcher{refiner: refiner, patchSize: patchSize, workers: workers}
}

// Match handles a single request.
func (m *Matcher) Match(req Request) Match {
	res := Match{ID: req.ID, Source: req.Source}

	tmpl, err := NewTemplate(req.Reference, req.Source, m.patchSize)
	if err != nil {
		res.Err = fmt.Errorf("request %s: %w", req.ID, err)
		res.Position = req.Guess
		res.Cost = Unreachable
		return res
	}

	res.Result = m.refiner.Refine(tmpl, req.Target, req.Guess)
	return res
}

// MatchAll handles every request with at most workers goroutines. Results
// are returned in request order. Cancelling ctx stops requests that have not
// started yet and returns the context's error.
func (m *Matcher) MatchAll(ctx context.Context, reqs []Request) ([]Match, error) {
	results := make([]Match, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.Match(reqs[i])
			if m.OnMatch != nil {
				m.OnMatch(results[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

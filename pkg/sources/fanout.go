package sources

import (
	"context"
	"sync"

	pkgerrors "github.com/popdex/popdex/pkg/errors"
	"github.com/popdex/popdex/pkg/logging"
)

// Result is one adapter's contribution to a resolution pass.
type Result struct {
	Source  string
	Label   Label
	Records []Record
	Err     error
}

// LookupAll invokes every adapter concurrently against the same query,
// each bounded by its own timeout, and blocks until all have returned
// or timed out. Partial success is normal: a failed or timed-out
// adapter's contribution is simply omitted and the remaining results
// are returned in adapter priority order.
func LookupAll(ctx context.Context, srcs []Source, query string) []Result {
	if len(srcs) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	resultChan := make(chan Result, len(srcs))

	for _, src := range srcs {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()

			timeout := src.Timeout()
			if timeout <= 0 {
				timeout = DefaultTimeout
			}
			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			callCtx = logging.WithAdapter(callCtx, src.Name())

			records, err := src.Lookup(callCtx, query)
			if err != nil {
				adapterErr := pkgerrors.NewAdapterError(src.Name(), err)
				if adapterErr.Timeout {
					logging.Ctx(callCtx).Warn().Msg("Adapter timed out, omitting its contribution")
				} else {
					logging.Ctx(callCtx).Warn().Err(err).Msg("Adapter lookup failed")
				}
				resultChan <- Result{Source: src.Name(), Label: src.Label(), Err: adapterErr}
				return
			}

			logging.Ctx(callCtx).Debug().
				Int("records", len(records)).
				Msg("Adapter lookup completed")

			resultChan <- Result{Source: src.Name(), Label: src.Label(), Records: records}
		}(src)
	}

	wg.Wait()
	close(resultChan)

	results := make([]Result, 0, len(srcs))
	for r := range resultChan {
		results = append(results, r)
	}

	// Stable priority order: each adapter call produced an independent
	// result list, merged only after all concurrent calls joined.
	sortResults(results)
	return results
}

// sortResults orders results by label priority, then by adapter name
// for determinism. Insertion sort; adapter counts are tiny.
func sortResults(results []Result) {
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && lessResult(&results[j], &results[j-1]); j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
}

func lessResult(a, b *Result) bool {
	if a.Label.Priority() != b.Label.Priority() {
		return a.Label.Priority() < b.Label.Priority()
	}
	return a.Source < b.Source
}

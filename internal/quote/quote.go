package quote

import (
	"context"
	"sync"

	"github.com/example/portfolio-dashboard/internal/models"
)

// Source returns the current quote for one symbol. ok is false when the
// provider errored, rate-limited, or had no data; callers never see an error
// for the quote path, only absence.
type Source interface {
	Quote(ctx context.Context, symbol string) (models.Quote, bool)
}

// HistorySource returns a monthly close series for one symbol, oldest first.
type HistorySource interface {
	History(ctx context.Context, symbol string) ([]models.PricePoint, error)
}

// FetchAll fans out one Quote call per symbol and joins the results. Symbols
// whose fetch failed are simply absent from the returned map; the caller
// decides the absence policy. The join waits for every in-flight fetch, so a
// partial price map is never returned while fetches are still pending.
func FetchAll(ctx context.Context, src Source, symbols []string) map[string]models.Quote {
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	out := make(map[string]models.Quote, len(symbols))
	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			q, ok := src.Quote(ctx, sym)
			if !ok {
				return
			}
			mu.Lock()
			out[sym] = q
			mu.Unlock()
		}(sym)
	}
	wg.Wait()
	return out
}

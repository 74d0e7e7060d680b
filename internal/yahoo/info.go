package yahoo

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"yfgo/client"
)

// Info is C17's composite record: the union of quote, profile, and
// analysis/ESG fields for one symbol (spec §4.14).
type Info struct {
	Symbol                string
	Name                  string
	ISIN                  string
	Exchange              string
	MarketState           string
	Currency              string
	Last                  *client.Money
	PreviousClose         *client.Money
	Volume                uint64
	PriceTarget           *PriceTarget
	RecommendationSummary *RecommendationSummary
	ESGScores             *EsgScores
	AsOf                  time.Time
}

// GetInfo implements C17: a concurrent fan-out of quote, profile,
// price_target, recommendations_summary, and esg_scores. Profile failures
// are fatal; the other four are recoverable (spec §4.14: "Profile errors
// are fatal; the other four are recoverable").
func GetInfo(ctx context.Context, c *client.Client, symbol string) (Info, error) {
	var (
		quote       *QuoteSnapshot
		profile     interface{}
		priceTarget *PriceTarget
		recSummary  *RecommendationSummary
		esgScores   *EsgScores
		isin        string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := LoadProfile(gctx, c, symbol, c.ProfileStrategy())
		if err != nil {
			return err
		}
		profile = p
		return nil
	})

	g.Go(func() error {
		q, err := GetQuote(gctx, c, symbol)
		if err != nil {
			if debugEnabled() {
				debugLog("info: failed to fetch 'quote' for %s: %v", symbol, err)
			}
			return nil
		}
		quote = q
		return nil
	})

	g.Go(func() error {
		pt, err := FetchPriceTarget(gctx, c, symbol)
		if err != nil {
			if debugEnabled() {
				debugLog("info: failed to fetch 'price_target' for %s: %v", symbol, err)
			}
			return nil
		}
		priceTarget = &pt
		return nil
	})

	g.Go(func() error {
		rs, err := FetchRecommendationSummary(gctx, c, symbol)
		if err != nil {
			if debugEnabled() {
				debugLog("info: failed to fetch 'recommendations_summary' for %s: %v", symbol, err)
			}
			return nil
		}
		recSummary = &rs
		return nil
	})

	g.Go(func() error {
		es, err := FetchESGScores(gctx, c, symbol)
		if err != nil {
			if debugEnabled() {
				debugLog("info: failed to fetch 'esg_scores' for %s: %v", symbol, err)
			}
			return nil
		}
		esgScores = &es
		return nil
	})

	g.Go(func() error {
		// ISIN resolution is independent of quoteSummary and is best-effort
		// (spec §4.12 is silent on whether Info carries it; original_source's
		// Profile.isin field is read but never populated by the scrape/API
		// paths, so GetInfo resolves it itself rather than leaving it always
		// empty).
		id, found, err := FetchISIN(gctx, c, symbol)
		if err != nil || !found {
			return nil
		}
		isin = id
		return nil
	})

	if err := g.Wait(); err != nil {
		return Info{}, err
	}

	info := assembleInfo(symbol, quote, profile, priceTarget, recSummary, esgScores)
	if isin != "" {
		info.ISIN = isin
	}
	return info, nil
}

func assembleInfo(symbol string, quote *QuoteSnapshot, profile interface{}, priceTarget *PriceTarget, recSummary *RecommendationSummary, esgScores *EsgScores) Info {
	info := Info{
		Symbol:                symbol,
		PriceTarget:           priceTarget,
		RecommendationSummary: recSummary,
		ESGScores:             esgScores,
		AsOf:                  time.Now().UTC(),
	}

	switch p := profile.(type) {
	case Company:
		info.Name = p.Name
		info.ISIN = p.ISIN
	case Fund:
		info.Name = p.Name
		info.ISIN = p.ISIN
	}

	if quote != nil {
		info.Exchange = quote.Exchange
		info.MarketState = quote.MarketState
		info.Currency = quote.Currency
		info.Last = quote.Price
		info.PreviousClose = quote.PreviousClose
		info.Volume = quote.DayVolume
		if info.Name == "" {
			info.Name = quote.ShortName
		}
	}

	return info
}

package yahoo

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"yfgo/client"
)

// DownloadOptions carries the post-processing flags for C11 fan-out, on top
// of the per-symbol HistoryRequest template.
type DownloadOptions struct {
	BackAdjust bool
	Repair     bool
	Rounding   bool
}

// DownloadResult is spec §4.8's output shape.
type DownloadResult struct {
	Series   map[string][]Candle
	Meta     map[string]HistoryMeta
	Actions  map[string][]Action
	Adjusted bool
}

// Download implements C11: concurrent per-symbol History calls (fail-fast),
// then back-adjust/repair/rounding post-passes. Concurrency uses
// errgroup.Group rather than a hand-rolled WaitGroup+error-channel, wiring
// in golang.org/x/sync the way the teacher's own go.mod already pulls it in
// (indirectly, via pgx) — here it is load-bearing, not incidental.
func Download(ctx context.Context, c *client.Client, symbols []string, req HistoryRequest, opts DownloadOptions, mode client.CacheMode) (*DownloadResult, error) {
	if len(symbols) == 0 {
		return nil, errEmptySymbols
	}

	req.AutoAdjust = req.AutoAdjust || opts.BackAdjust

	type fetched struct {
		symbol string
		resp   HistoryResponse
	}

	results := make([]fetched, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			resp, err := History(gctx, c, symbol, req, mode)
			if err != nil {
				return err
			}
			results[i] = fetched{symbol: symbol, resp: resp}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &DownloadResult{
		Series:   make(map[string][]Candle, len(symbols)),
		Meta:     make(map[string]HistoryMeta, len(symbols)),
		Actions:  make(map[string][]Action, len(symbols)),
		Adjusted: req.AutoAdjust,
	}

	for _, f := range results {
		candles := f.resp.Candles
		if opts.BackAdjust {
			candles = backAdjust(candles, f.resp.RawClose)
		}
		if opts.Repair {
			candles = repairOutliers(candles)
		}
		if opts.Rounding {
			candles = roundCandles(candles)
		}
		out.Series[f.symbol] = candles
		out.Meta[f.symbol] = f.resp.Meta
		out.Actions[f.symbol] = f.resp.Actions
	}

	return out, nil
}

var errEmptySymbols = client.ErrInvalidParams

// backAdjust restores the raw close while keeping O/H/L adjusted (spec
// §4.8 step 4's Back-adjust bullet).
func backAdjust(candles []Candle, rawClose []float64) []Candle {
	if len(rawClose) != len(candles) {
		return candles
	}
	out := make([]Candle, len(candles))
	copy(out, candles)
	for i := range out {
		out[i].Close = rawClose[i]
	}
	return out
}

// repairOutliers implements spec §4.8's Repair heuristic exactly, including
// the asymmetric ratio-range thresholds for 100x and 0.01x scaling.
func repairOutliers(candles []Candle) []Candle {
	n := len(candles)
	if n < 3 {
		return candles
	}
	out := make([]Candle, n)
	copy(out, candles)

	for i := 1; i < n-1; i++ {
		prev, cur, next := out[i-1], out[i], out[i+1]
		if !isFinite(prev.Close) || !isFinite(cur.Close) || !isFinite(next.Close) {
			continue
		}
		baseline := (prev.Close + next.Close) / 2
		if baseline <= 0 {
			continue
		}
		ratio := cur.Close / baseline

		var scale float64
		switch {
		case ratio > 50 && ratio < 200:
			if ratio >= 80 && ratio < 125 {
				scale = 0.01
			} else {
				scale = 1 / ratio
			}
		case ratio > 0 && ratio < 0.02:
			if ratio >= 0.008 && ratio < 0.0125 {
				scale = 100
			} else {
				scale = 1 / ratio
			}
		default:
			continue
		}

		out[i].Open = cur.Open * scale
		out[i].High = cur.High * scale
		out[i].Low = cur.Low * scale
		out[i].Close = cur.Close * scale
	}
	return out
}

// roundCandles rounds each finite OHLC field to 2 decimals (spec §4.8 step
// 4's Rounding bullet).
func roundCandles(candles []Candle) []Candle {
	out := make([]Candle, len(candles))
	for i, c := range candles {
		out[i] = Candle{
			Ts:     c.Ts,
			Open:   round2(c.Open),
			High:   round2(c.High),
			Low:    round2(c.Low),
			Close:  round2(c.Close),
			Volume: c.Volume,
		}
	}
	return out
}

func round2(f float64) float64 {
	if !isFinite(f) {
		return f
	}
	return math.Round(f*100) / 100
}

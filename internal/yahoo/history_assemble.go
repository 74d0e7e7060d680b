package yahoo

import (
	"math"
	"sort"
	"strconv"

	"yfgo/client"
)

// ActionKind tags the three Action variants (spec §3).
type ActionKind int

const (
	ActionDividend ActionKind = iota
	ActionSplit
	ActionCapitalGain
)

// Action is the tagged Dividend|Split|CapitalGain variant.
type Action struct {
	Kind        ActionKind
	Ts          int64
	Amount      float64 // Dividend.amount, CapitalGain.gain
	Numerator   float64 // Split.numerator
	Denominator float64 // Split.denominator
}

// Candle is spec §3's OHLCV bar. OHLC are plain float64 (not client.Money)
// so the adjustment math in this file, and the NaN-substitution keepna
// requires, can operate directly; CloseMoney() attaches a currency at the
// point of use instead.
type Candle struct {
	Ts     int64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume *uint64
}

// CloseMoney tags the candle's close with a reporting currency.
func (c Candle) CloseMoney(currency string) client.Money {
	return client.NewMoney(c.Close, currency)
}

// HistoryMeta carries the chart response's timezone/offset (spec §3).
type HistoryMeta struct {
	Timezone        string
	GMTOffsetSecond int64
}

// HistoryResponse is spec §3's output record.
type HistoryResponse struct {
	Candles   []Candle
	Actions   []Action
	Adjusted  bool
	Meta      HistoryMeta
	RawClose  []float64
}

// splitEvent is an internal (ts, ratio) pair used for the cumulative split
// factor computation (spec §4.7.1/§4.7.2).
type splitEvent struct {
	ts    int64
	ratio float64
}

// extractActions implements spec §4.7.1: walk the events maps, deriving ts
// from the numeric map key if parseable else the inner date, and build the
// sorted actions list plus the raw split-ratio events used by assembly.
func extractActions(ev *eventsRaw) (actions []Action, splits []splitEvent) {
	if ev == nil {
		return nil, nil
	}

	for key, d := range ev.Dividends {
		ts := tsFromKeyOrDate(key, d.Date)
		amount := 0.0
		if d.Amount != nil {
			amount = *d.Amount
		}
		actions = append(actions, Action{Kind: ActionDividend, Ts: ts, Amount: amount})
	}

	for key, s := range ev.Splits {
		ts := tsFromKeyOrDate(key, s.Date)
		ratio := splitRatio(s)
		num, den := splitNumDen(s)
		actions = append(actions, Action{Kind: ActionSplit, Ts: ts, Numerator: num, Denominator: den})
		splits = append(splits, splitEvent{ts: ts, ratio: ratio})
	}

	for key, g := range ev.CapitalGains {
		ts := tsFromKeyOrDate(key, g.Date)
		gain := 0.0
		if g.Amount != nil {
			gain = *g.Amount
		}
		actions = append(actions, Action{Kind: ActionCapitalGain, Ts: ts, Amount: gain})
	}

	sort.Slice(actions, func(i, j int) bool { return actions[i].Ts < actions[j].Ts })
	sort.Slice(splits, func(i, j int) bool { return splits[i].ts < splits[j].ts })
	return actions, splits
}

func tsFromKeyOrDate(key string, date *int64) int64 {
	if n, err := strconv.ParseInt(key, 10, 64); err == nil {
		return n
	}
	if date != nil {
		return *date
	}
	return 0
}

// splitRatio computes numerator/denominator (or parses "n/d" from
// SplitRatio), defaulting to 1.0 if both are missing, and to 1.0 rather than
// dividing by zero if the denominator is zero (spec §4.7.1).
func splitRatio(s splitEventRaw) float64 {
	num, den := splitNumDen(s)
	if den == 0 {
		return 1.0
	}
	return num / den
}

func splitNumDen(s splitEventRaw) (float64, float64) {
	if s.Numerator != nil && s.Denominator != nil {
		return *s.Numerator, *s.Denominator
	}
	if s.SplitRatio != nil {
		if n, d, ok := parseSplitRatioString(*s.SplitRatio); ok {
			return n, d
		}
	}
	return 1.0, 1.0
}

func parseSplitRatioString(s string) (num, den float64, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			n, errN := strconv.ParseFloat(s[:i], 64)
			d, errD := strconv.ParseFloat(s[i+1:], 64)
			if errN == nil && errD == nil {
				return n, d, true
			}
			return 0, 0, false
		}
	}
	return 0, 0, false
}

// cumulativeSplitAfter implements spec §4.7.2: for each bar index i, the
// product of all split ratios whose ts > timestamp[i], computed
// right-to-left.
func cumulativeSplitAfter(timestamps []int64, splits []splitEvent) []float64 {
	n := len(timestamps)
	out := make([]float64, n)
	cum := 1.0
	si := len(splits) - 1
	for i := n - 1; i >= 0; i-- {
		for si >= 0 && splits[si].ts > timestamps[i] {
			cum *= splits[si].ratio
			si--
		}
		out[i] = cum
	}
	return out
}

// priceFactorForRow implements spec §4.7.3.
func priceFactorForRow(close float64, adjClose *float64, cumSplitAfter float64) float64 {
	if adjClose != nil && close != 0 {
		return *adjClose / close
	}
	denom := cumSplitAfter
	if denom < 1e-12 {
		denom = 1e-12
	}
	return 1 / denom
}

// assembleCandles implements spec §4.7: the full bar-emission pipeline.
func assembleCandles(node *chartNode, req HistoryRequest) HistoryResponse {
	actions, splits := extractActions(node.Events)
	cumAfter := cumulativeSplitAfter(node.Timestamp, splits)

	var q quoteBlock
	if len(node.Indicators.Quote) > 0 {
		q = node.Indicators.Quote[0]
	}
	var adjClose []*float64
	if len(node.Indicators.AdjClose) > 0 {
		adjClose = node.Indicators.AdjClose[0].AdjClose
	}

	var candles []Candle
	var rawClose []float64

	for i, ts := range node.Timestamp {
		c := derefAt(q.Close, i)
		o := derefAt(q.Open, i)
		h := derefAt(q.High, i)
		l := derefAt(q.Low, i)
		var vol *uint64
		if q.Volume != nil && i < len(q.Volume) && q.Volume[i] != nil {
			v := *q.Volume[i]
			vol = &v
		}

		var adj *float64
		if i < len(adjClose) {
			adj = adjClose[i]
		}

		factor := priceFactorForRow(c, adj, cumAfter[i])

		rawCloseVal := c
		if !math.IsInf(c, 0) && !math.IsNaN(c) {
			rawCloseVal = c
		} else {
			rawCloseVal = math.NaN()
		}
		rawClose = append(rawClose, rawCloseVal)

		if req.AutoAdjust {
			o *= factor
			h *= factor
			l *= factor
			c *= factor
			if vol != nil {
				scaled := float64(*vol) * cumAfter[i]
				if !math.IsNaN(scaled) && !math.IsInf(scaled, 0) {
					rv := uint64(math.Round(scaled))
					vol = &rv
				}
			}
		}

		finite := isFinite(o) && isFinite(h) && isFinite(l) && isFinite(c)
		switch {
		case finite:
			candles = append(candles, Candle{Ts: ts, Open: o, High: h, Low: l, Close: c, Volume: vol})
		case req.KeepNA:
			candles = append(candles, Candle{Ts: ts, Open: math.NaN(), High: math.NaN(), Low: math.NaN(), Close: math.NaN(), Volume: vol})
		default:
			// row skipped entirely
		}
	}

	return HistoryResponse{
		Candles:  candles,
		Actions:  actions,
		Adjusted: req.AutoAdjust,
		Meta: HistoryMeta{
			Timezone:        node.Meta.Timezone,
			GMTOffsetSecond: node.Meta.GMTOffset,
		},
		RawClose: rawClose,
	}
}

func derefAt(s []*float64, i int) float64 {
	if i >= len(s) || s[i] == nil {
		return math.NaN()
	}
	return *s[i]
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

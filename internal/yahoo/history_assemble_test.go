package yahoo

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }
func u(v uint64) *uint64   { return &v }

func newChartNode(timestamps []int64, open, high, low, close, adjclose []*float64, volume []*uint64, ev *eventsRaw) *chartNode {
	return &chartNode{
		Timestamp: timestamps,
		Indicators: indicators{
			Quote:    []quoteBlock{{Open: open, High: high, Low: low, Close: close, Volume: volume}},
			AdjClose: []adjCloseBlock{{AdjClose: adjclose}},
		},
		Events: ev,
	}
}

// TestAssembleCandlesAutoAdjustWithSplit is spec §8 scenario 1.
func TestAssembleCandlesAutoAdjustWithSplit(t *testing.T) {
	ts := []int64{1000, 2000, 3000}
	open := []*float64{f(100), f(100), f(100)}
	high := []*float64{f(101), f(101), f(101)}
	low := []*float64{f(99), f(99), f(99)}
	close := []*float64{f(100), f(100), f(100)}
	adjclose := []*float64{f(50), f(100), f(99)}
	vol := []*uint64{u(10), u(10), u(10)}

	ev := &eventsRaw{
		Splits: map[string]splitEventRaw{
			"2000": {Numerator: f(2), Denominator: f(1)},
		},
		Dividends: map[string]dividendEventRaw{
			"3000": {Amount: f(1.0)},
		},
	}

	node := newChartNode(ts, open, high, low, close, adjclose, vol, ev)
	resp := assembleCandles(node, HistoryRequest{AutoAdjust: true})

	if len(resp.Candles) != 3 {
		t.Fatalf("len(Candles) = %d, want 3", len(resp.Candles))
	}

	c0 := resp.Candles[0]
	if c0.Open != 50 || c0.High != 50.5 || c0.Low != 49.5 || c0.Close != 50.0 {
		t.Errorf("candle[0] = %+v, want open=50 high=50.5 low=49.5 close=50", c0)
	}
	if c0.Volume == nil || *c0.Volume != 20 {
		t.Errorf("candle[0].Volume = %v, want 20", c0.Volume)
	}

	if resp.Candles[1].Close != 100.0 {
		t.Errorf("candle[1].Close = %v, want 100.0", resp.Candles[1].Close)
	}
	if resp.Candles[2].Close != 99.0 {
		t.Errorf("candle[2].Close = %v, want 99.0", resp.Candles[2].Close)
	}

	if len(resp.Actions) != 2 {
		t.Fatalf("len(Actions) = %d, want 2", len(resp.Actions))
	}
	if resp.Actions[0].Kind != ActionSplit || resp.Actions[0].Ts != 2000 {
		t.Errorf("Actions[0] = %+v, want Split at ts=2000", resp.Actions[0])
	}
	if resp.Actions[1].Kind != ActionDividend || resp.Actions[1].Ts != 3000 || resp.Actions[1].Amount != 1.0 {
		t.Errorf("Actions[1] = %+v, want Dividend at ts=3000 amount=1.0", resp.Actions[1])
	}
}

// TestBackAdjustPreservesRawClose is spec §8 scenario 2.
func TestBackAdjustPreservesRawClose(t *testing.T) {
	ts := []int64{1000, 2000, 3000}
	open := []*float64{f(100), f(100), f(100)}
	high := []*float64{f(101), f(101), f(101)}
	low := []*float64{f(99), f(99), f(99)}
	close := []*float64{f(100), f(100), f(100)}
	adjclose := []*float64{f(50), f(100), f(99)}

	ev := &eventsRaw{
		Splits: map[string]splitEventRaw{"2000": {Numerator: f(2), Denominator: f(1)}},
	}
	node := newChartNode(ts, open, high, low, close, adjclose, nil, ev)
	resp := assembleCandles(node, HistoryRequest{AutoAdjust: true})

	candles := backAdjust(resp.Candles, resp.RawClose)
	if candles[0].Close != 100.0 {
		t.Errorf("candle[0].Close after back-adjust = %v, want 100.0 (raw)", candles[0].Close)
	}
	if math.Abs(candles[0].Open-50.0) > 1e-9 {
		t.Errorf("candle[0].Open after back-adjust = %v, want ~50.0 (still adjusted)", candles[0].Open)
	}
}

// TestRepairOutliers100xSpike is spec §8 scenario 3.
func TestRepairOutliers100xSpike(t *testing.T) {
	candles := []Candle{
		{Ts: 1, Open: 10, High: 11, Low: 9, Close: 10.0},
		{Ts: 2, Open: 1000, High: 1100, Low: 900, Close: 1000.0},
		{Ts: 3, Open: 10.5, High: 11, Low: 10, Close: 10.5},
	}
	repaired := repairOutliers(candles)

	mid := repaired[1]
	if math.Abs(mid.Close-10.5) > 0.5 {
		t.Errorf("repaired mid.Close = %v, want ~10.5", mid.Close)
	}
	if math.Abs(mid.Open-10.0) > 0.5 {
		t.Errorf("repaired mid.Open = %v, want ~10.0", mid.Open)
	}
	if math.Abs(mid.High-11.0) > 0.5 {
		t.Errorf("repaired mid.High = %v, want ~11.0", mid.High)
	}
	if math.Abs(mid.Low-9.0) > 0.5 {
		t.Errorf("repaired mid.Low = %v, want ~9.0", mid.Low)
	}
}

// TestKeepNARounding is spec §8 scenario 4.
func TestKeepNARounding(t *testing.T) {
	ts := []int64{1, 2, 3}
	close := []*float64{f(100.499), nil, f(99.996)}
	open := []*float64{f(100.499), nil, f(99.996)}
	high := []*float64{f(100.499), nil, f(99.996)}
	low := []*float64{f(100.499), nil, f(99.996)}

	node := newChartNode(ts, open, high, low, close, nil, nil, nil)
	resp := assembleCandles(node, HistoryRequest{KeepNA: true})

	if len(resp.Candles) != 3 {
		t.Fatalf("len(Candles) = %d, want 3", len(resp.Candles))
	}
	if math.IsNaN(resp.Candles[1].Close) == false {
		t.Errorf("candle[1].Close = %v, want NaN", resp.Candles[1].Close)
	}

	rounded := roundCandles(resp.Candles)
	if rounded[0].Close != 100.50 {
		t.Errorf("rounded candle[0].Close = %v, want 100.50", rounded[0].Close)
	}
	if !math.IsNaN(rounded[1].Close) {
		t.Errorf("rounded candle[1].Close = %v, want NaN preserved", rounded[1].Close)
	}
	if rounded[2].Close != 100.00 {
		t.Errorf("rounded candle[2].Close = %v, want 100.00", rounded[2].Close)
	}
}

func TestCandlesTimestampMonotonic(t *testing.T) {
	ts := []int64{1000, 2000, 3000}
	close := []*float64{f(1), f(2), f(3)}
	node := newChartNode(ts, close, close, close, close, nil, nil, nil)
	resp := assembleCandles(node, HistoryRequest{})

	for i := 1; i < len(resp.Candles); i++ {
		if resp.Candles[i-1].Ts > resp.Candles[i].Ts {
			t.Fatalf("candles not monotonic: %d > %d", resp.Candles[i-1].Ts, resp.Candles[i].Ts)
		}
	}
}

func TestActionsSortedAscending(t *testing.T) {
	ev := &eventsRaw{
		Dividends: map[string]dividendEventRaw{
			"5000": {Amount: f(2.0)},
			"1000": {Amount: f(1.0)},
		},
		Splits: map[string]splitEventRaw{
			"3000": {Numerator: f(3), Denominator: f(1)},
		},
	}
	actions, _ := extractActions(ev)
	for i := 1; i < len(actions); i++ {
		if actions[i-1].Ts > actions[i].Ts {
			t.Fatalf("actions not sorted: %+v before %+v", actions[i-1], actions[i])
		}
	}
}

package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"yfgo/client"
)

// Range is the closed set of wire-tokenized lookback windows (spec §3).
type Range string

const (
	Range1d  Range = "1d"
	Range5d  Range = "5d"
	Range1mo Range = "1mo"
	Range3mo Range = "3mo"
	Range6mo Range = "6mo"
	Range1y  Range = "1y"
	Range2y  Range = "2y"
	Range5y  Range = "5y"
	Range10y Range = "10y"
	RangeYTD Range = "ytd"
	RangeMax Range = "max"
)

// Interval is the closed set of wire-tokenized bar sizes (spec §3).
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval2m  Interval = "2m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval60m Interval = "60m"
	Interval90m Interval = "90m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
	Interval5d  Interval = "5d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
	Interval3mo Interval = "3mo"
)

// HistoryRequest is spec §3's HistoryRequest record. Exactly one of Range or
// Period must be set; if Period is set, Period[0] < Period[1].
type HistoryRequest struct {
	Range          Range
	Period         *[2]int64
	Interval       Interval
	IncludePrePost bool
	IncludeActions bool
	AutoAdjust     bool
	KeepNA         bool
}

// fetchChart implements C9: builds the chart v8 URL, validates the period
// before any network call, and parses the envelope into the raw series.
func fetchChart(ctx context.Context, c *client.Client, symbol string, req HistoryRequest, mode client.CacheMode) (*chartNode, error) {
	if req.Period != nil && req.Period[0] >= req.Period[1] {
		return nil, fmt.Errorf("%w: period[0]=%d >= period[1]=%d", client.ErrInvalidDates, req.Period[0], req.Period[1])
	}

	u, err := url.Parse(strings.TrimRight(c.Endpoints().Chart, "/") + "/" + symbol)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	if req.Period != nil {
		q.Set("period1", strconv.FormatInt(req.Period[0], 10))
		q.Set("period2", strconv.FormatInt(req.Period[1], 10))
	} else {
		r := req.Range
		if r == "" {
			r = Range1y
		}
		q.Set("range", string(r))
	}
	q.Set("interval", string(req.Interval))
	q.Set("includePrePost", strconv.FormatBool(req.IncludePrePost))
	if req.IncludeActions {
		q.Set("events", "div|split|capitalGains")
	}
	u.RawQuery = q.Encode()

	body, err := c.FetchText(ctx, u.String(), mode, nil)
	if err != nil {
		return nil, err
	}

	var env chartEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, fmt.Errorf("%w: chart parse: %v", client.ErrAPI, err)
	}
	if env.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", client.ErrAPI, env.Chart.Error.Description)
	}
	if len(env.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: no chart result for %s", client.ErrMissingData, symbol)
	}
	return &env.Chart.Result[0], nil
}

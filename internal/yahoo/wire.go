// Package yahoo implements the Yahoo Finance domain adapters (C7-C17):
// quotes, quoteSummary-backed modules, history fetch/assembly, multi-symbol
// download, options, currency inference, profile loading (API + scrape),
// ISIN resolution, streaming, and the info aggregator. Every adapter rides
// on the request pipeline in the sibling client package.
package yahoo

// chartEnvelope is the wire shape of the v8 chart endpoint (spec §4.6).
type chartEnvelope struct {
	Chart struct {
		Result []chartNode `json:"result"`
		Error  *chartError `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartNode struct {
	Meta       metaNode   `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
	Events     *eventsRaw `json:"events"`
}

type metaNode struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	Timezone           string  `json:"timezone"`
	GMTOffset          int64   `json:"gmtoffset"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
	FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
}

type indicators struct {
	Quote    []quoteBlock    `json:"quote"`
	AdjClose []adjCloseBlock `json:"adjclose"`
}

type quoteBlock struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*uint64  `json:"volume"`
}

type adjCloseBlock struct {
	AdjClose []*float64 `json:"adjclose"`
}

// eventsRaw mirrors the loosely-typed `events` map Yahoo sends: keys are
// stringified timestamps, values carry either a numeric `date` or rely on
// the key itself for ts (spec §4.7.1). capitalGains is a SPEC_FULL.md
// supplement grounded in the original source's actions.rs reference to
// ev.capital_gains.
type eventsRaw struct {
	Dividends    map[string]dividendEventRaw `json:"dividends"`
	Splits       map[string]splitEventRaw    `json:"splits"`
	CapitalGains map[string]capGainEventRaw  `json:"capitalGains"`
}

type dividendEventRaw struct {
	Date   *int64   `json:"date"`
	Amount *float64 `json:"amount"`
}

type splitEventRaw struct {
	Date        *int64   `json:"date"`
	Numerator   *float64 `json:"numerator"`
	Denominator *float64 `json:"denominator"`
	SplitRatio  *string  `json:"splitRatio"`
}

type capGainEventRaw struct {
	Date   *int64   `json:"date"`
	Amount *float64 `json:"amount"`
}

// quoteSummaryEnvelope is the wire shape of the v10 quoteSummary endpoint
// (spec §4.5.2): result[0] is a module-keyed object, and a failed call
// reports {quoteSummary:{error:{description}}}.
type quoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []map[string]interface{} `json:"result"`
		Error  *chartError               `json:"error"`
	} `json:"quoteSummary"`
}

// quoteV7Envelope is the wire shape of the v7 batch quote endpoint.
type quoteV7Envelope struct {
	QuoteResponse struct {
		Result []quoteV7Node `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"quoteResponse"`
}

type quoteV7Node struct {
	Symbol                     string  `json:"symbol"`
	ShortName                  string  `json:"shortName"`
	Currency                   string  `json:"currency"`
	FullExchangeName           string  `json:"fullExchangeName"`
	MarketState                string  `json:"marketState"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
	RegularMarketVolume        uint64  `json:"regularMarketVolume"`
}

package client

// Endpoints holds the named base URLs a Client dispatches to (spec §6.1).
// Every field is overridable independently via ClientBuilder so tests can
// point individual endpoints at a local fixture server.
type Endpoints struct {
	Chart          string
	QuoteSummary   string
	QuoteV7        string
	OptionsV7      string
	Search         string
	News           string
	Timeseries     string
	Cookie         string
	Crumb          string
	Stream         string
	InsiderSearch  string
}

// DefaultEndpoints returns Yahoo's production endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Chart:         "https://query1.finance.yahoo.com/v8/finance/chart/",
		QuoteSummary:  "https://query1.finance.yahoo.com/v10/finance/quoteSummary/",
		QuoteV7:       "https://query1.finance.yahoo.com/v7/finance/quote",
		OptionsV7:     "https://query1.finance.yahoo.com/v7/finance/options/",
		Search:        "https://query2.finance.yahoo.com/v1/finance/search",
		News:          "https://finance.yahoo.com/xhr/ncp",
		Timeseries:    "https://query2.finance.yahoo.com/ws/fundamentals-timeseries/v1/finance/timeseries/",
		Cookie:        "https://fc.yahoo.com/consent",
		Crumb:         "https://query1.finance.yahoo.com/v1/test/getcrumb",
		Stream:        "wss://streamer.finance.yahoo.com/?version=2",
		InsiderSearch: "https://markets.businessinsider.com/ajax/SearchController_Suggest",
	}
}

// DefaultUserAgent mirrors the desktop Chrome string the original source
// pins (current at the time the corpus was recorded); overridable per
// client since Yahoo periodically changes what it accepts.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"yfgo/client"
)

// OptionContract is the per-contract record C12 maps raw items into.
type OptionContract struct {
	ContractSymbol    string
	Strike            client.Money
	Price             *client.Money
	Bid               *client.Money
	Ask               *client.Money
	Volume            *int64
	OpenInterest      *int64
	ImpliedVolatility *float64
	InTheMoney        bool
	ExpirationDate    int64
	ExpirationAt      time.Time
	LastTradeAt       *time.Time
}

// OptionsData is spec §4.9's output shape.
type OptionsData struct {
	UnderlyingPrice client.Money
	ExpirationDates []int64
	Calls           []OptionContract
	Puts            []OptionContract
}

// optionsResponse maps the v7 options endpoint (grounded in the teacher's
// own optionsResponse wire struct in the pre-transform options.go, widened
// with the fields spec §4.9 requires: quote.currency, per-expiry date).
type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string  `json:"underlyingSymbol"`
			ExpirationDates  []int64 `json:"expirationDates"`
			Quote            struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				Currency           string  `json:"currency"`
			} `json:"quote"`
			Options []struct {
				ExpirationDate int64           `json:"expirationDate"`
				Calls          []optionRawItem `json:"calls"`
				Puts           []optionRawItem `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *chartError `json:"error"`
	} `json:"optionChain"`
}

type optionRawItem struct {
	ContractSymbol    string   `json:"contractSymbol"`
	Strike            float64  `json:"strike"`
	Currency          string   `json:"currency"`
	LastPrice         *float64 `json:"lastPrice"`
	Bid               *float64 `json:"bid"`
	Ask               *float64 `json:"ask"`
	Volume            *int64   `json:"volume"`
	OpenInterest      *int64   `json:"openInterest"`
	ImpliedVolatility *float64 `json:"impliedVolatility"`
	InTheMoney        bool     `json:"inTheMoney"`
	Expiration        int64    `json:"expiration"`
	LastTradeDate     *int64   `json:"lastTradeDate"`
}

// FetchOptionsChain implements C12: builds the options URL (with an
// optional date param for a specific expiry), uses the auth-fallback
// pattern, and resolves currency from the quote leg or, failing that, a
// live quote snapshot.
func FetchOptionsChain(ctx context.Context, c *client.Client, symbol string, expiry *int64) (*OptionsData, error) {
	base := strings.TrimRight(c.Endpoints().OptionsV7, "/") + "/" + symbol

	fetchWithCrumb := func(crumb string) (string, error) {
		u, err := url.Parse(base)
		if err != nil {
			return "", err
		}
		q := u.Query()
		if expiry != nil {
			q.Set("date", strconv.FormatInt(*expiry, 10))
		}
		if crumb != "" {
			q.Set("crumb", crumb)
		}
		u.RawQuery = q.Encode()
		return c.FetchText(ctx, u.String(), client.CacheUse, nil)
	}

	body, err := fetchWithCrumb("")
	if err != nil {
		if !client.IsAuthRetryable(err) {
			return nil, err
		}
		if err := c.EnsureCredentials(ctx); err != nil {
			return nil, err
		}
		crumb, _ := c.Crumb()
		body, err = fetchWithCrumb(crumb)
		if err != nil {
			return nil, err
		}
	}

	var env optionsResponse
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, fmt.Errorf("%w: options parse: %v", client.ErrAPI, err)
	}
	if env.OptionChain.Error != nil {
		return nil, fmt.Errorf("%w: %s", client.ErrAPI, env.OptionChain.Error.Description)
	}
	if len(env.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("%w: no options result for %s", client.ErrMissingData, symbol)
	}
	result := env.OptionChain.Result[0]

	currency := result.Quote.Currency
	underlyingPrice := result.Quote.RegularMarketPrice
	if currency == "" {
		q, qerr := GetQuote(ctx, c, symbol)
		if qerr != nil || q.Currency == "" {
			return nil, fmt.Errorf("%w: cannot resolve options currency for %s", client.ErrMissingData, symbol)
		}
		currency = q.Currency
		if q.Price != nil {
			underlyingPrice = q.Price.Float64()
		}
	}

	out := &OptionsData{
		UnderlyingPrice: client.NewMoney(underlyingPrice, currency),
		ExpirationDates: result.ExpirationDates,
	}

	for _, leg := range result.Options {
		expDate := leg.ExpirationDate
		if expDate == 0 && expiry != nil {
			expDate = *expiry
		}
		for _, raw := range leg.Calls {
			out.Calls = append(out.Calls, mapOptionContract(raw, currency, expDate))
		}
		for _, raw := range leg.Puts {
			out.Puts = append(out.Puts, mapOptionContract(raw, currency, expDate))
		}
	}
	return out, nil
}

func mapOptionContract(raw optionRawItem, currency string, expirationDate int64) OptionContract {
	currencyFor := currency
	if raw.Currency != "" {
		currencyFor = raw.Currency
	}

	c := OptionContract{
		ContractSymbol:    raw.ContractSymbol,
		Strike:            client.NewMoney(raw.Strike, currencyFor),
		InTheMoney:        raw.InTheMoney,
		ImpliedVolatility: raw.ImpliedVolatility,
		ExpirationDate:    expirationDate,
		ExpirationAt:      time.Unix(expirationDate, 0).UTC(),
	}
	if raw.LastPrice != nil {
		m := client.NewMoney(*raw.LastPrice, currencyFor)
		c.Price = &m
	}
	if raw.Bid != nil {
		m := client.NewMoney(*raw.Bid, currencyFor)
		c.Bid = &m
	}
	if raw.Ask != nil {
		m := client.NewMoney(*raw.Ask, currencyFor)
		c.Ask = &m
	}
	c.Volume = raw.Volume
	c.OpenInterest = raw.OpenInterest
	if raw.LastTradeDate != nil {
		t := time.Unix(*raw.LastTradeDate, 0).UTC()
		c.LastTradeAt = &t
	}
	return c
}

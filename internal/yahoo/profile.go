package yahoo

import (
	"context"
	"fmt"
	"strings"

	"yfgo/client"
)

// ProfileStrategy selects how LoadProfile resolves a profile (spec §4.11).
// It is an alias of the client-level type: the strategy is configured once
// on the Client (spec §6.4's `test_api_preference`), not threaded through as
// a per-call argument, mirroring the original source's `api_preference()`
// client method.
type ProfileStrategy = client.ProfileStrategy

const (
	ProfileAPIThenScrape = client.ProfileAPIThenScrape
	ProfileAPIOnly       = client.ProfileAPIOnly
	ProfileScrapeOnly    = client.ProfileScrapeOnly
)

// Address is part of spec §3's Company variant.
type Address struct {
	Street1 string
	Street2 string
	City    string
	State   string
	Country string
	Zip     string
}

// Company is spec §3's Profile.Company variant.
type Company struct {
	Name    string
	Sector  string
	Industry string
	Website string
	Summary string
	Address *Address
	ISIN    string
}

// Fund is spec §3's Profile.Fund variant.
type Fund struct {
	Name   string
	Family string
	Kind   string
	ISIN   string
}

// LoadProfile implements C14: API path then scrape fallback by default,
// pure API_ONLY / SCRAPE_ONLY available for tests (spec §4.11, §7: "API
// path failure is logged and the scrape path is attempted; both paths
// failing is fatal").
func LoadProfile(ctx context.Context, c *client.Client, symbol string, strategy ProfileStrategy) (interface{}, error) {
	switch strategy {
	case ProfileAPIOnly:
		return loadFromAPI(ctx, c, symbol)
	case ProfileScrapeOnly:
		return loadFromScrape(ctx, c, symbol)
	default:
		p, err := loadFromAPI(ctx, c, symbol)
		if err == nil {
			return p, nil
		}
		if debugEnabled() {
			debugLog("profile API path failed for %s: %v; falling back to scrape", symbol, err)
		}
		p2, err2 := loadFromScrape(ctx, c, symbol)
		if err2 != nil {
			return nil, fmt.Errorf("%w: profile unavailable for %s (api: %v, scrape: %v)", client.ErrMissingData, symbol, err, err2)
		}
		return p2, nil
	}
}

// loadFromAPI implements spec §4.11's API path.
func loadFromAPI(ctx context.Context, c *client.Client, symbol string) (interface{}, error) {
	result, err := FetchQuoteSummary(ctx, c, symbol, []string{"assetProfile", "quoteType", "fundProfile"})
	if err != nil {
		return nil, err
	}

	quoteType, _ := result["quoteType"].(map[string]interface{})
	kind, _ := quoteType["quoteType"].(string)
	name := stringName(result, quoteType, symbol)

	switch kind {
	case "EQUITY":
		ap, ok := result["assetProfile"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: assetProfile missing for %s", client.ErrMissingData, symbol)
		}
		return Company{
			Name:     name,
			Sector:   stringField(ap, "sector"),
			Industry: stringField(ap, "industry"),
			Website:  stringField(ap, "website"),
			Summary:  stringField(ap, "longBusinessSummary"),
			Address: &Address{
				Street1: stringField(ap, "address1"),
				Street2: stringField(ap, "address2"),
				City:    stringField(ap, "city"),
				State:   stringField(ap, "state"),
				Country: stringField(ap, "country"),
				Zip:     stringField(ap, "zip"),
			},
		}, nil
	case "ETF":
		fp, ok := result["fundProfile"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: fundProfile missing for %s", client.ErrMissingData, symbol)
		}
		kindStr := stringField(fp, "legalType")
		if kindStr == "" {
			kindStr = "Fund"
		}
		return Fund{
			Name:   name,
			Family: stringField(fp, "family"),
			Kind:   kindStr,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported or unknown quoteType: %s", client.ErrMissingData, kind)
	}
}

func stringName(result, quoteType map[string]interface{}, symbol string) string {
	if quoteType != nil {
		if n := stringField(quoteType, "longName"); n != "" {
			return n
		}
		if n := stringField(quoteType, "shortName"); n != "" {
			return n
		}
	}
	if price, ok := result["price"].(map[string]interface{}); ok {
		if n := stringField(price, "longName"); n != "" {
			return n
		}
		if n := stringField(price, "shortName"); n != "" {
			return n
		}
	}
	return symbol
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func debugEnabled() bool {
	return strings.TrimSpace(envDebugFlag()) == "1"
}

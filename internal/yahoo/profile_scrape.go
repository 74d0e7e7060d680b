package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"yfgo/client"
)

// loadFromScrape implements spec §4.11's scrape path: fetch the quote HTML,
// extract a bootstrap JSON object via the four strategies in
// extractBootstrapJSON, then discriminate Company vs Fund exactly as the
// API path does.
func loadFromScrape(ctx context.Context, c *client.Client, symbol string) (interface{}, error) {
	// The quote HTML page lives at finance.yahoo.com/quote/{symbol}, not
	// under any of the client's JSON API bases.
	u, err := url.Parse("https://finance.yahoo.com/quote/" + symbol)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("p", symbol)
	u.RawQuery = q.Encode()

	body, err := c.FetchText(ctx, u.String(), client.CacheUse, nil)
	if err != nil {
		return nil, err
	}

	if debugEnabled() {
		debugLog("scrape: fetched %d bytes of HTML for %s", len(body), symbol)
	}

	jsonStr, err := extractBootstrapJSON(body)
	if err != nil {
		return nil, err
	}

	if debugEnabled() {
		debugLog("scrape: extracted %d bytes of bootstrap JSON for %s", len(jsonStr), symbol)
	}

	store, err := parseQuoteSummaryStore(jsonStr)
	if err != nil {
		return nil, err
	}

	return discriminateStore(normalizeStoreLike(store), symbol)
}

// extractBootstrapJSON implements spec §4.11's four-strategy search, in the
// order the original source tries them (§9 Design Notes: "all four must be
// kept for robustness").
func extractBootstrapJSON(body string) (string, error) {
	// Strategy A: legacy root.App.main = {...};
	if jsonStr, ok := extractLegacyAppMain(body); ok {
		return jsonStr, nil
	}

	// Strategy B: literal "QuoteSummaryStore": { ... }, string-aware brace match.
	if jsonStr, ok := extractLiteralQuoteSummaryStore(body); ok {
		return jsonStr, nil
	}

	scripts := iterJSONScripts(body)

	// Strategy C: SvelteKit data-sveltekit-fetched blobs.
	for _, s := range scripts {
		if !strings.Contains(s.attrs, "data-sveltekit-fetched") {
			continue
		}
		if wrapped, ok := extractFromSvelteScript(s.body); ok {
			return wrapped, nil
		}
	}

	// Strategy D: scan ALL application/json scripts generically.
	for _, s := range scripts {
		var val interface{}
		if err := json.Unmarshal([]byte(s.body), &val); err != nil {
			continue
		}
		if qss := findQuoteSummaryStoreInValue(val); qss != nil {
			return wrapStoreLike(normalizeStoreLike(qss))
		}
		if qs := findQuoteSummaryValueInValue(val); qs != nil {
			if storeLike := extractStoreLikeFromQuoteSummaryValue(qs); storeLike != nil {
				return wrapStoreLike(storeLike)
			}
		}
		if m, ok := val.(map[string]interface{}); ok {
			if bodyVal, ok := m["body"]; ok {
				if payload, ok := asJSONPayload(bodyVal); ok {
					if qss := findQuoteSummaryStoreInValue(payload); qss != nil {
						return wrapStoreLike(normalizeStoreLike(qss))
					}
					if qs := findQuoteSummaryValueInValue(payload); qs != nil {
						if storeLike := extractStoreLikeFromQuoteSummaryValue(qs); storeLike != nil {
							return wrapStoreLike(storeLike)
						}
					}
				}
			}
		}
	}

	return "", fmt.Errorf("%w: bootstrap not found", client.ErrScrape)
}

func extractLegacyAppMain(body string) (string, bool) {
	start := strings.Index(body, "root.App.main")
	if start < 0 {
		return "", false
	}
	after := body[start:]
	eq := strings.Index(after, "=")
	if eq < 0 {
		return "", false
	}
	payload := strings.TrimLeft(after[eq+1:], " \t\n\r")
	endScript := strings.Index(payload, "</script>")
	if endScript < 0 {
		endScript = len(payload)
	}
	segment := payload[:endScript]
	semi := strings.LastIndex(segment, ";")
	if semi < 0 {
		return "", false
	}
	return strings.TrimSpace(segment[:semi]), true
}

func extractLiteralQuoteSummaryStore(body string) (string, bool) {
	const key = `"QuoteSummaryStore"`
	pos := strings.Index(body, key)
	if pos < 0 {
		return "", false
	}
	after := body[pos+len(key):]
	braceRel := strings.Index(after, "{")
	if braceRel < 0 {
		return "", false
	}
	objStart := pos + len(key) + braceRel
	objEnd, ok := findMatchingBrace(body, objStart)
	if !ok {
		return "", false
	}
	obj := body[objStart : objEnd+1]
	return fmt.Sprintf(`{"context":{"dispatcher":{"stores":{"QuoteSummaryStore":%s}}}}`, obj), true
}

func extractFromSvelteScript(innerJSON string) (string, bool) {
	var outerArray []interface{}
	if err := json.Unmarshal([]byte(innerJSON), &outerArray); err == nil {
		for _, outerObj := range outerArray {
			m, ok := outerObj.(map[string]interface{})
			if !ok {
				continue
			}
			nodes, ok := m["nodes"].([]interface{})
			if !ok {
				continue
			}
			for _, node := range nodes {
				nm, ok := node.(map[string]interface{})
				if !ok {
					continue
				}
				data, ok := nm["data"]
				if !ok {
					continue
				}
				if storeLike := extractStoreLikeFromQuoteSummaryValue(data); storeLike != nil {
					if wrapped, err := wrapStoreLike(storeLike); err == nil {
						return wrapped, true
					}
				}
			}
		}
	}

	var outerObj map[string]interface{}
	if err := json.Unmarshal([]byte(innerJSON), &outerObj); err != nil {
		return "", false
	}
	bodyVal, ok := outerObj["body"]
	if !ok {
		return "", false
	}
	payload, ok := asJSONPayload(bodyVal)
	if !ok {
		return "", false
	}
	if qss := findQuoteSummaryStoreInValue(payload); qss != nil {
		if wrapped, err := wrapStoreLike(normalizeStoreLike(qss)); err == nil {
			return wrapped, true
		}
	}
	if qs := findQuoteSummaryValueInValue(payload); qs != nil {
		if storeLike := extractStoreLikeFromQuoteSummaryValue(qs); storeLike != nil {
			if wrapped, err := wrapStoreLike(storeLike); err == nil {
				return wrapped, true
			}
		}
	}
	return "", false
}

func asJSONPayload(v interface{}) (interface{}, bool) {
	switch t := v.(type) {
	case string:
		var parsed interface{}
		if err := json.Unmarshal([]byte(t), &parsed); err != nil {
			return nil, false
		}
		return parsed, true
	case map[string]interface{}, []interface{}:
		return t, true
	default:
		return nil, false
	}
}

// findQuoteSummaryStoreInValue recursively searches for a "QuoteSummaryStore"
// key (directly, or nested under "stores"), mirroring the original's
// find_quote_summary_store_in_value.
func findQuoteSummaryStoreInValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if qss, ok := t["QuoteSummaryStore"]; ok {
			if _, isMap := qss.(map[string]interface{}); isMap {
				return qss
			}
		}
		if stores, ok := t["stores"].(map[string]interface{}); ok {
			if qss, ok := stores["QuoteSummaryStore"]; ok {
				if _, isMap := qss.(map[string]interface{}); isMap {
					return qss
				}
			}
		}
		for _, child := range t {
			if found := findQuoteSummaryStoreInValue(child); found != nil {
				return found
			}
		}
	case []interface{}:
		for _, child := range t {
			if found := findQuoteSummaryStoreInValue(child); found != nil {
				return found
			}
		}
	}
	return nil
}

func findQuoteSummaryValueInValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if qs, ok := t["quoteSummary"]; ok {
			return qs
		}
		for _, child := range t {
			if found := findQuoteSummaryValueInValue(child); found != nil {
				return found
			}
		}
	case []interface{}:
		for _, child := range t {
			if found := findQuoteSummaryValueInValue(child); found != nil {
				return found
			}
		}
	}
	return nil
}

// extractStoreLikeFromQuoteSummaryValue accepts either a raw quoteSummary
// envelope or its already-unwrapped result[0], requiring at least one of
// quoteType/assetProfile/summaryProfile/fundProfile to be present.
func extractStoreLikeFromQuoteSummaryValue(qsVal interface{}) map[string]interface{} {
	m, ok := qsVal.(map[string]interface{})
	if !ok {
		return nil
	}

	summary := m
	if inner, ok := m["quoteSummary"].(map[string]interface{}); ok {
		summary = inner
	}

	resultArr, ok := summary["result"].([]interface{})
	if !ok || len(resultArr) == 0 {
		return nil
	}
	result0, ok := resultArr[0].(map[string]interface{})
	if !ok {
		return nil
	}

	_, hasQuoteType := result0["quoteType"]
	_, hasAssetProfile := result0["assetProfile"]
	_, hasSummaryProfile := result0["summaryProfile"]
	_, hasFundProfile := result0["fundProfile"]
	if !hasQuoteType && !hasAssetProfile && !hasSummaryProfile && !hasFundProfile {
		return nil
	}

	return normalizeStoreLike(result0)
}

// normalizeStoreLike renames a bare assetProfile key to summaryProfile, the
// SPEC_FULL.md-documented explicit step grounded in the original's
// normalize_store_like.
func normalizeStoreLike(storeLike map[string]interface{}) map[string]interface{} {
	if ap, ok := storeLike["assetProfile"]; ok {
		storeLike["summaryProfile"] = ap
		delete(storeLike, "assetProfile")
	}
	return storeLike
}

func wrapStoreLike(storeLike map[string]interface{}) (string, error) {
	b, err := json.Marshal(storeLike)
	if err != nil {
		return "", fmt.Errorf("%w: re-serialize: %v", client.ErrScrape, err)
	}
	return fmt.Sprintf(`{"context":{"dispatcher":{"stores":{"QuoteSummaryStore":%s}}}}`, string(b)), nil
}

// parseQuoteSummaryStore unmarshals the wrapped bootstrap JSON into the
// QuoteSummaryStore map, matching the original's minimal serde mapping
// (Bootstrap/Ctx/Dispatch/Stores).
func parseQuoteSummaryStore(jsonStr string) (map[string]interface{}, error) {
	var boot struct {
		Context struct {
			Dispatcher struct {
				Stores struct {
					QuoteSummaryStore map[string]interface{} `json:"QuoteSummaryStore"`
				} `json:"stores"`
			} `json:"dispatcher"`
		} `json:"context"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &boot); err != nil {
		return nil, fmt.Errorf("%w: bootstrap json parse: %v", client.ErrScrape, err)
	}
	return boot.Context.Dispatcher.Stores.QuoteSummaryStore, nil
}

func discriminateStore(store map[string]interface{}, symbol string) (interface{}, error) {
	quoteType, _ := store["quoteType"].(map[string]interface{})
	name := stringName(store, quoteType, symbol)

	_, hasFundProfile := store["fundProfile"]
	_, hasSummaryProfile := store["summaryProfile"]

	kind, _ := quoteType["quoteType"].(string)
	if kind == "" {
		switch {
		case hasFundProfile:
			kind = "ETF"
		case hasSummaryProfile:
			kind = "EQUITY"
		}
	}

	switch kind {
	case "EQUITY":
		sp, ok := store["summaryProfile"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: summaryProfile missing", client.ErrScrape)
		}
		return Company{
			Name:     name,
			Sector:   stringField(sp, "sector"),
			Industry: stringField(sp, "industry"),
			Website:  stringField(sp, "website"),
			Summary:  stringField(sp, "longBusinessSummary"),
			Address: &Address{
				Street1: stringField(sp, "address1"),
				Street2: stringField(sp, "address2"),
				City:    stringField(sp, "city"),
				State:   stringField(sp, "state"),
				Country: stringField(sp, "country"),
				Zip:     stringField(sp, "zip"),
			},
		}, nil
	case "ETF":
		fp, ok := store["fundProfile"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: fundProfile missing", client.ErrScrape)
		}
		kindStr := stringField(fp, "legalType")
		if kindStr == "" {
			kindStr = "Fund"
		}
		return Fund{Name: name, Family: stringField(fp, "family"), Kind: kindStr}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported or unknown quoteType: %s", client.ErrScrape, kind)
	}
}

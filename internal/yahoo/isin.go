package yahoo

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"yfgo/client"
)

// flatSuggest is the Business-Insider suggest endpoint's flat row shape,
// tolerant of the casing variants the live endpoint has been observed to use.
type flatSuggest struct {
	Value  *string `json:"Value"`
	Value2 *string `json:"value"`
	Symbol *string `json:"Symbol"`
	Symbol2 *string `json:"symbol"`
	Isin   *string `json:"Isin"`
	Isin2  *string `json:"isin"`
	Isin3  *string `json:"ISIN"`
}

func (f flatSuggest) value() string {
	if f.Value != nil {
		return *f.Value
	}
	if f.Value2 != nil {
		return *f.Value2
	}
	return ""
}

func (f flatSuggest) symbol() string {
	if f.Symbol != nil {
		return *f.Symbol
	}
	if f.Symbol2 != nil {
		return *f.Symbol2
	}
	return ""
}

func (f flatSuggest) isin() string {
	for _, v := range []*string{f.Isin, f.Isin2, f.Isin3} {
		if v != nil {
			return *v
		}
	}
	return ""
}

// FetchISIN implements C15: resolve a ticker to its ISIN via the
// Business-Insider suggest endpoint, trying three tolerant parse shapes in
// sequence before giving up (spec §4.12, grounded in original_source's
// ticker::isin, which notes "the endpoint's shape has drifted over time and
// isn't worth depending on precisely").
func FetchISIN(ctx context.Context, c *client.Client, symbol string) (string, bool, error) {
	body, ok, err := fetchISINBody(ctx, c, symbol)
	if err != nil || !ok {
		return "", false, err
	}

	debug := debugEnabled()
	inputNorm := normalizeSym(symbol)

	if isin, ok := parseAsJSONValue(body, inputNorm, debug); ok {
		return isin, true, nil
	}
	if isin, ok := parseAsFlatSuggest(body, inputNorm); ok {
		return isin, true, nil
	}
	if isin, ok := scanRawBody(body, debug); ok {
		return isin, true, nil
	}

	if debug {
		debugLog("isin: no matching ISIN found in any response shape for %s", symbol)
	}
	return "", false, nil
}

func fetchISINBody(ctx context.Context, c *client.Client, symbol string) (string, bool, error) {
	u, err := url.Parse(c.Endpoints().InsiderSearch)
	if err != nil {
		return "", false, err
	}
	q := u.Query()
	q.Set("max_results", "5")
	q.Set("query", symbol)
	u.RawQuery = q.Encode()

	body, err := c.FetchText(ctx, u.String(), client.CacheUse, nil)
	if err != nil {
		return "", false, nil
	}
	return body, true, nil
}

func parseAsJSONValue(body, inputNorm string, debug bool) (string, bool) {
	var val interface{}
	if err := json.Unmarshal([]byte(body), &val); err != nil {
		if debug {
			debugLog("isin: failed to parse JSON response for query %q", inputNorm)
		}
		return "", false
	}
	if hit, ok := extractFromJSONValue(val, inputNorm); ok {
		if debug {
			debugLog("isin: ISIN extracted from JSON structures: %s", hit)
		}
		return hit, true
	}
	return "", false
}

func extractFromJSONValue(v interface{}, targetNorm string) (string, bool) {
	var arrays []interface{}

	switch t := v.(type) {
	case []interface{}:
		arrays = append(arrays, t)
	case map[string]interface{}:
		for _, key := range []string{"Suggestions", "suggestions", "items", "results", "Result", "data"} {
			if val, ok := t[key].([]interface{}); ok {
				arrays = append(arrays, val)
			}
		}
		if len(arrays) == 0 {
			for _, val := range t {
				if arr, ok := val.([]interface{}); ok {
					arrays = append(arrays, arr)
				} else if obj, ok := val.(map[string]interface{}); ok {
					for _, inner := range obj {
						if arr, ok := inner.([]interface{}); ok {
							arrays = append(arrays, arr)
						}
					}
				}
			}
		}
	}

	for _, arr := range arrays {
		a, ok := arr.([]interface{})
		if !ok {
			continue
		}
		for _, item := range a {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}

			for _, k := range []string{"Isin", "isin", "ISIN"} {
				isinVal, _ := obj[k].(string)
				if isinVal == "" || !looksLikeISIN(isinVal) {
					continue
				}
				sym, _ := obj["Symbol"].(string)
				if sym == "" {
					sym, _ = obj["symbol"].(string)
				}
				if sym == "" || normalizeSym(sym) == targetNorm {
					return strings.ToUpper(isinVal), true
				}
			}

			valueStr, _ := obj["Value"].(string)
			if valueStr == "" {
				valueStr, _ = obj["value"].(string)
			}
			if valueStr != "" {
				if isin, ok := pickFromParts(splitParts(valueStr), targetNorm); ok {
					return isin, true
				}
			}

			sym, _ := obj["Symbol"].(string)
			if sym == "" {
				sym, _ = obj["symbol"].(string)
			}
			if sym != "" && normalizeSym(sym) == targetNorm {
				for _, fieldVal := range obj {
					if s, ok := fieldVal.(string); ok && looksLikeISIN(s) {
						return strings.ToUpper(s), true
					}
				}
			}
		}
	}
	return "", false
}

func parseAsFlatSuggest(body, inputNorm string) (string, bool) {
	var rawArr []flatSuggest
	if err := json.Unmarshal([]byte(body), &rawArr); err != nil {
		return "", false
	}

	for _, r := range rawArr {
		if isin := r.isin(); isin != "" && looksLikeISIN(isin) && normalizeSym(r.symbol()) == inputNorm {
			return strings.ToUpper(isin), true
		}
		if value := r.value(); value != "" {
			if isin, ok := pickFromParts(splitParts(value), inputNorm); ok {
				return isin, true
			}
		}
	}
	for _, r := range rawArr {
		if isin := r.isin(); isin != "" && looksLikeISIN(isin) {
			return strings.ToUpper(isin), true
		}
		if value := r.value(); value != "" {
			for _, tok := range splitParts(value) {
				if looksLikeISIN(tok) {
					return strings.ToUpper(tok), true
				}
			}
		}
	}
	return "", false
}

func scanRawBody(body string, debug bool) (string, bool) {
	var token []byte
	for i := 0; i < len(body); i++ {
		ch := body[i]
		isAlnum := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
		if isAlnum {
			token = append(token, ch)
			if len(token) > 12 {
				token = token[1:]
			}
			if len(token) == 12 && looksLikeISIN(string(token)) {
				if debug {
					debugLog("isin: fallback raw scan found ISIN: %s", string(token))
				}
				return strings.ToUpper(string(token)), true
			}
		} else {
			token = token[:0]
		}
	}
	return "", false
}

func splitParts(value string) []string {
	raw := strings.Split(value, "|")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func pickFromParts(parts []string, targetNorm string) (string, bool) {
	if len(parts) == 0 {
		return "", false
	}
	if normalizeSym(parts[0]) != targetNorm {
		return "", false
	}
	for _, p := range parts {
		if looksLikeISIN(p) {
			return strings.ToUpper(p), true
		}
	}
	return "", false
}

// normalizeSym implements the original's normalize_sym: hyphen-to-dot, then
// truncate at the first separator, lowercased.
func normalizeSym(s string) string {
	t := strings.ReplaceAll(strings.TrimSpace(s), "-", ".")
	if idx := strings.IndexAny(t, ". :\t\n\r"); idx >= 0 {
		t = t[:idx]
	}
	return strings.ToLower(t)
}

// looksLikeISIN implements the original's looks_like_isin: 12 chars,
// 2 alphabetic, 9 alphanumeric, 1 trailing digit checksum position.
func looksLikeISIN(s string) bool {
	t := strings.TrimSpace(s)
	if len(t) != 12 {
		return false
	}
	b := []byte(t)
	if !isAsciiAlpha(b[0]) || !isAsciiAlpha(b[1]) {
		return false
	}
	for i := 2; i < 11; i++ {
		if !isAsciiAlnum(b[i]) {
			return false
		}
	}
	return b[11] >= '0' && b[11] <= '9'
}

func isAsciiAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isAsciiAlnum(b byte) bool {
	return isAsciiAlpha(b) || (b >= '0' && b <= '9')
}

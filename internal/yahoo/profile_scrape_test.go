package yahoo

import "testing"

func TestFindMatchingBraceStringAware(t *testing.T) {
	// The embedded string contains an unescaped-looking '}' that must not
	// be mistaken for the object's close (spec §9: "the brace-matcher must
	// be string-aware").
	body := `prefix {"a": "value with } brace", "b": {"nested": 1}} suffix`
	open := len("prefix ")
	end, ok := findMatchingBrace(body, open)
	if !ok {
		t.Fatal("findMatchingBrace: no match found")
	}
	if body[end] != '}' {
		t.Fatalf("findMatchingBrace landed on %q, want '}'", body[end])
	}
	obj := body[open : end+1]
	if obj != `{"a": "value with } brace", "b": {"nested": 1}}` {
		t.Errorf("matched object = %q", obj)
	}
}

func TestFindMatchingBraceEscapedQuote(t *testing.T) {
	body := `{"a": "escaped \" quote then }"}`
	end, ok := findMatchingBrace(body, 0)
	if !ok || end != len(body)-1 {
		t.Fatalf("findMatchingBrace = %d, ok=%v, want %d", end, ok, len(body)-1)
	}
}

func TestExtractLiteralQuoteSummaryStore(t *testing.T) {
	html := `<html><script>var x = {"QuoteSummaryStore": {"quoteType": {"quoteType": "EQUITY"}, "summaryProfile": {"sector": "Technology"}}};</script></html>`
	wrapped, ok := extractLiteralQuoteSummaryStore(html)
	if !ok {
		t.Fatal("extractLiteralQuoteSummaryStore: no match")
	}
	store, err := parseQuoteSummaryStore(wrapped)
	if err != nil {
		t.Fatalf("parseQuoteSummaryStore: %v", err)
	}
	profile, err := discriminateStore(store, "TEST")
	if err != nil {
		t.Fatalf("discriminateStore: %v", err)
	}
	company, ok := profile.(Company)
	if !ok {
		t.Fatalf("profile = %T, want Company", profile)
	}
	if company.Sector != "Technology" {
		t.Errorf("Sector = %q, want Technology", company.Sector)
	}
}

func TestNormalizeStoreLikeRenamesAssetProfile(t *testing.T) {
	store := map[string]interface{}{
		"assetProfile": map[string]interface{}{"sector": "Energy"},
	}
	normalized := normalizeStoreLike(store)
	if _, has := normalized["assetProfile"]; has {
		t.Error("assetProfile should be removed after normalization")
	}
	sp, ok := normalized["summaryProfile"].(map[string]interface{})
	if !ok || sp["sector"] != "Energy" {
		t.Errorf("summaryProfile = %+v, want renamed from assetProfile", normalized["summaryProfile"])
	}
}

func TestDiscriminateStoreETF(t *testing.T) {
	store := map[string]interface{}{
		"fundProfile": map[string]interface{}{"family": "Vanguard", "legalType": "ETF"},
		"quoteType":   map[string]interface{}{"quoteType": "ETF", "longName": "Vanguard S&P 500"},
	}
	profile, err := discriminateStore(store, "VOO")
	if err != nil {
		t.Fatalf("discriminateStore: %v", err)
	}
	fund, ok := profile.(Fund)
	if !ok {
		t.Fatalf("profile = %T, want Fund", profile)
	}
	if fund.Family != "Vanguard" || fund.Name != "Vanguard S&P 500" {
		t.Errorf("fund = %+v", fund)
	}
}

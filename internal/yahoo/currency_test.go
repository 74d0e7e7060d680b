package yahoo

import "testing"

func TestCurrencyForCountryExactMatch(t *testing.T) {
	cases := map[string]string{
		"United States": "USD",
		"Germany":       "EUR",
		"Japan":         "JPY",
		"Côte d'Ivoire": "XOF",
		"SWITZERLAND":   "CHF",
	}
	for country, want := range cases {
		if got := CurrencyForCountry(country); got != want {
			t.Errorf("CurrencyForCountry(%q) = %q, want %q", country, got, want)
		}
	}
}

func TestCurrencyForCountryHeuristicFallback(t *testing.T) {
	// Not an exact table entry, but should match the Americas heuristic.
	if got := CurrencyForCountry("Commonwealth of the Bahamas"); got != "BSD" {
		t.Errorf("CurrencyForCountry = %q, want BSD", got)
	}
}

func TestCurrencyForCountryTotalMissReturnsEmpty(t *testing.T) {
	if got := CurrencyForCountry("Atlantis"); got != "" {
		t.Errorf("CurrencyForCountry(unknown) = %q, want empty (caller defaults to USD)", got)
	}
}

func TestCurrencyCacheOverrideLastWriteWins(t *testing.T) {
	cc := NewCurrencyCache()
	cc.SetCurrencyOverride("AAPL", "EUR")
	if got, ok := cc.Get("AAPL"); !ok || got != "EUR" {
		t.Errorf("cache after override = %q, ok=%v, want EUR", got, ok)
	}
	cc.Set("AAPL", "GBP")
	if got, _ := cc.Get("AAPL"); got != "GBP" {
		t.Errorf("cache after second write = %q, want GBP (last-write-wins)", got)
	}
}

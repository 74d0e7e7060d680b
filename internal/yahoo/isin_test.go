package yahoo

import "testing"

func TestLooksLikeISIN(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"US0378331005", true},  // AAPL
		{"GB0002374006", true},
		{"us0378331005", true},
		{"US037833100", false},  // too short
		{"US03783310055", false}, // too long
		{"1S0378331005", false},  // first char not alpha
		{"U10378331005", false},  // second char not alpha
		{"US037833100A", false},  // last char not digit
	}
	for _, tc := range cases {
		if got := looksLikeISIN(tc.in); got != tc.want {
			t.Errorf("looksLikeISIN(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeSym(t *testing.T) {
	cases := map[string]string{
		"AAPL":     "aapl",
		"BRK-B":    "brk",
		"BRK.B":    "brk",
		"  aapl  ": "aapl",
		"AAPL:US":  "aapl",
	}
	for in, want := range cases {
		if got := normalizeSym(in); got != want {
			t.Errorf("normalizeSym(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractFromJSONValueNestedArray(t *testing.T) {
	v := map[string]interface{}{
		"Suggestions": []interface{}{
			map[string]interface{}{
				"Symbol": "AAPL",
				"Isin":   "US0378331005",
			},
		},
	}
	isin, ok := extractFromJSONValue(v, "aapl")
	if !ok || isin != "US0378331005" {
		t.Errorf("extractFromJSONValue = %q, ok=%v, want US0378331005", isin, ok)
	}
}

func TestScanRawBody(t *testing.T) {
	body := "garbage before US0378331005 garbage after"
	isin, ok := scanRawBody(body, false)
	if !ok || isin != "US0378331005" {
		t.Errorf("scanRawBody = %q, ok=%v, want US0378331005", isin, ok)
	}
}

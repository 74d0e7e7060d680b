package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"yfgo/client"
)

// FetchQuoteSummary implements C8: an authenticated quoteSummary call
// parameterized by a module list, returning the module-keyed result[0]
// object (spec §4.5.2, §4.11's API path reuses this directly).
func FetchQuoteSummary(ctx context.Context, c *client.Client, symbol string, modules []string) (map[string]interface{}, error) {
	base := strings.TrimRight(c.Endpoints().QuoteSummary, "/") + "/" + symbol

	buildURL := func(crumb string) string {
		u, _ := url.Parse(base)
		q := u.Query()
		q.Set("modules", strings.Join(modules, ","))
		if crumb != "" {
			q.Set("crumb", crumb)
		}
		u.RawQuery = q.Encode()
		return u.String()
	}

	body, err := c.FetchAuthenticatedJSON(ctx, buildURL, client.CacheUse, nil)
	if err != nil {
		return nil, err
	}

	var env quoteSummaryEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil, fmt.Errorf("%w: quoteSummary parse: %v", client.ErrAPI, err)
	}
	if env.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("%w: %s", client.ErrAPI, env.QuoteSummary.Error.Description)
	}
	if len(env.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: empty quoteSummary result for %s", client.ErrMissingData, symbol)
	}
	return env.QuoteSummary.Result[0], nil
}

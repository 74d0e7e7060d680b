package yahoo

import (
	"context"

	"yfgo/client"
)

// History composes C9 (fetchChart) and C10 (assembleCandles) into a single
// public operation: fetch the chart envelope for one symbol and assemble it
// into a HistoryResponse.
func History(ctx context.Context, c *client.Client, symbol string, req HistoryRequest, mode client.CacheMode) (HistoryResponse, error) {
	node, err := fetchChart(ctx, c, symbol, req, mode)
	if err != nil {
		return HistoryResponse{}, err
	}
	return assembleCandles(node, req), nil
}

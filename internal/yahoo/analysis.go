package yahoo

import (
	"context"

	"yfgo/client"
)

// PriceTarget is spec §4.14's analyst price-target record, grounded on
// original_source's analysis::model::PriceTarget.
type PriceTarget struct {
	Mean              *float64
	High              *float64
	Low               *float64
	NumberOfAnalysts  *uint32
}

// RecommendationSummary is the most-recent-period compact view analogous to
// yfinance's recommendations_summary(), grounded on original_source's
// analysis::model::RecommendationSummary.
type RecommendationSummary struct {
	LatestPeriod string
	StrongBuy    uint32
	Buy          uint32
	Hold         uint32
	Sell         uint32
	StrongSell   uint32
	Mean         *float64
	MeanKey      string
}

// FetchPriceTarget implements the "financialData" slice of C17's fan-out.
func FetchPriceTarget(ctx context.Context, c *client.Client, symbol string) (PriceTarget, error) {
	result, err := FetchQuoteSummary(ctx, c, symbol, []string{"financialData"})
	if err != nil {
		return PriceTarget{}, err
	}
	fd, _ := result["financialData"].(map[string]interface{})
	if fd == nil {
		return PriceTarget{}, nil
	}
	return PriceTarget{
		Mean:             rawNumField(fd, "targetMeanPrice"),
		High:             rawNumField(fd, "targetHighPrice"),
		Low:              rawNumField(fd, "targetLowPrice"),
		NumberOfAnalysts: rawNumToUint32(rawNumField(fd, "numberOfAnalystOpinions")),
	}, nil
}

// FetchRecommendationSummary implements the "recommendationTrend,
// recommendationMean" slice of C17's fan-out.
func FetchRecommendationSummary(ctx context.Context, c *client.Client, symbol string) (RecommendationSummary, error) {
	result, err := FetchQuoteSummary(ctx, c, symbol, []string{"recommendationTrend", "recommendationMean"})
	if err != nil {
		return RecommendationSummary{}, err
	}

	var summary RecommendationSummary
	if trendNode, ok := result["recommendationTrend"].(map[string]interface{}); ok {
		if trend, ok := trendNode["trend"].([]interface{}); ok && len(trend) > 0 {
			if latest, ok := trend[0].(map[string]interface{}); ok {
				summary.LatestPeriod = stringField(latest, "period")
				summary.StrongBuy = numberField(latest, "strongBuy")
				summary.Buy = numberField(latest, "buy")
				summary.Hold = numberField(latest, "hold")
				summary.Sell = numberField(latest, "sell")
				summary.StrongSell = numberField(latest, "strongSell")
			}
		}
	}
	if meanNode, ok := result["recommendationMean"].(map[string]interface{}); ok {
		summary.Mean = rawNumField(meanNode, "recommendationMean")
		summary.MeanKey = stringField(meanNode, "recommendationKey")
	}
	return summary, nil
}

func rawNumField(m map[string]interface{}, key string) *float64 {
	obj, ok := m[key].(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := obj["raw"].(float64)
	if !ok {
		return nil
	}
	return &raw
}

func rawNumToUint32(v *float64) *uint32 {
	if v == nil {
		return nil
	}
	u := uint32(*v)
	return &u
}

func numberField(m map[string]interface{}, key string) uint32 {
	v, ok := m[key].(float64)
	if !ok {
		return 0
	}
	return uint32(v)
}

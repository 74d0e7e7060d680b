// Command yfcli is a small example driver for the yfgo client runtime: it
// loads a .env the same way the teacher's TUI did (godotenv.Load before
// reading environment variables), then fetches and prints a history series
// or a quote snapshot for a symbol.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"yfgo/client"
	"yfgo/internal/yahoo"
)

func main() {
	godotenv.Load()

	var (
		symbol   = flag.String("symbol", "AAPL", "ticker symbol")
		mode     = flag.String("mode", "quote", "quote | history | info")
		rangeStr = flag.String("range", "1mo", "history range token")
		interval = flag.String("interval", "1d", "history interval token")
	)
	flag.Parse()

	c, err := client.NewClientBuilder().WithCacheTTL(time.Minute).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build client: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	switch *mode {
	case "quote":
		runQuote(ctx, c, *symbol)
	case "history":
		runHistory(ctx, c, *symbol, *rangeStr, *interval)
	case "info":
		runInfo(ctx, c, *symbol)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q (want quote|history|info)\n", *mode)
		os.Exit(1)
	}
}

func runQuote(ctx context.Context, c *client.Client, symbol string) {
	q, err := yahoo.GetQuote(ctx, c, symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "quote %s: %v\n", symbol, err)
		os.Exit(1)
	}
	price := "n/a"
	if q.Price != nil {
		price = fmt.Sprintf("%s %s", q.Price.Amount.String(), q.Price.Currency)
	}
	fmt.Printf("%s (%s): %s [%s]\n", q.Symbol, q.ShortName, price, q.MarketState)
}

func runHistory(ctx context.Context, c *client.Client, symbol, rangeStr, interval string) {
	req := yahoo.HistoryRequest{
		Range:          yahoo.Range(rangeStr),
		Interval:       yahoo.Interval(interval),
		AutoAdjust:     true,
		IncludeActions: true,
	}
	resp, err := yahoo.History(ctx, c, symbol, req, client.CacheUse)
	if err != nil {
		fmt.Fprintf(os.Stderr, "history %s: %v\n", symbol, err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d bars, %d corporate actions (%s)\n", symbol, len(resp.Candles), len(resp.Actions), resp.Meta.Timezone)
	for _, candle := range resp.Candles {
		fmt.Printf("  %d  O=%.2f H=%.2f L=%.2f C=%.2f\n", candle.Ts, candle.Open, candle.High, candle.Low, candle.Close)
	}
}

func runInfo(ctx context.Context, c *client.Client, symbol string) {
	info, err := yahoo.GetInfo(ctx, c, symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "info %s: %v\n", symbol, err)
		os.Exit(1)
	}
	fmt.Printf("%s: %s (%s, %s)\n", info.Symbol, info.Name, info.Exchange, info.Currency)
}

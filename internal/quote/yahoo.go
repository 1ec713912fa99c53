package quote

import (
	"context"
	"errors"

	"quotecollector/pkg/yahoo"
)

// BarSource is the part of the Yahoo REST client the fetcher relies on.
type BarSource interface {
	GetLatestBar(ctx context.Context, symbol string) (yahoo.Bar, error)
}

// YahooFetcher maps the latest daily Yahoo chart bar onto a Record.
type YahooFetcher struct {
	source BarSource
}

func NewYahooFetcher(source BarSource) *YahooFetcher {
	return &YahooFetcher{source: source}
}

func (f *YahooFetcher) Fetch(ctx context.Context, symbol string) (Record, error) {
	bar, err := f.source.GetLatestBar(ctx, symbol)
	if err != nil {
		return Record{}, classifyYahooError(symbol, err)
	}

	return Record{
		Symbol:    symbol,
		Timestamp: bar.Timestamp,
		Open:      bar.Open,
		Close:     bar.Close,
		AdjClose:  bar.AdjClose,
		High:      bar.High,
		Low:       bar.Low,
		Volume:    bar.Volume,
	}, nil
}

func classifyYahooError(symbol string, err error) *FetchError {
	if errors.Is(err, yahoo.ErrNoBars) {
		return NoData(symbol, err)
	}
	var apiErr *yahoo.APIError
	if errors.As(err, &apiErr) && apiErr.NotFound() {
		return NoData(symbol, err)
	}
	return ProviderUnavailable(symbol, err)
}

package quote

import (
	"context"
	"errors"
	"fmt"
)

// Record is the normalized latest quote for one configured symbol. It is only
// ever built from a successful fetch.
type Record struct {
	Symbol    string  // as configured by the operator
	Timestamp int64   // seconds since epoch, as reported by the provider
	Open      float64 // prices are passed through unmodified
	Close     float64
	AdjClose  float64
	High      float64
	Low       float64
	Volume    uint64
}

// Fetcher returns the most recent quote for a symbol. Failures are reported
// as *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) (Record, error)
}

// FetcherFunc is a function adapter for Fetcher.
type FetcherFunc func(ctx context.Context, symbol string) (Record, error)

func (f FetcherFunc) Fetch(ctx context.Context, symbol string) (Record, error) {
	return f(ctx, symbol)
}

var (
	// ErrProviderUnavailable covers network failures and unusable provider responses.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrNoData means the provider answered but had no usable latest quote.
	ErrNoData = errors.New("no usable quote")
)

// FetchError ties a failed symbol to its failure kind and cause.
type FetchError struct {
	Symbol string
	Kind   error // ErrProviderUnavailable or ErrNoData
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %v", e.Symbol, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %v: %v", e.Symbol, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func ProviderUnavailable(symbol string, err error) *FetchError {
	return &FetchError{Symbol: symbol, Kind: ErrProviderUnavailable, Err: err}
}

func NoData(symbol string, err error) *FetchError {
	return &FetchError{Symbol: symbol, Kind: ErrNoData, Err: err}
}

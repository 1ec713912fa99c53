package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"quotecollector/pkg/yahoo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBarSource struct {
	bar yahoo.Bar
	err error
}

func (s stubBarSource) GetLatestBar(context.Context, string) (yahoo.Bar, error) {
	return s.bar, s.err
}

// go test -v --run TestYahooFetcherMapsBar
func TestYahooFetcherMapsBar(t *testing.T) {
	f := NewYahooFetcher(stubBarSource{bar: yahoo.Bar{
		Timestamp: 1000, Open: 10.0, High: 12.0, Low: 9.0, Close: 11.0, AdjClose: 10.95, Volume: 500,
	}})

	rec, err := f.Fetch(context.Background(), "AAA")
	require.NoError(t, err)
	assert.Equal(t, Record{
		Symbol: "AAA", Timestamp: 1000, Open: 10.0, Close: 11.0, AdjClose: 10.95, High: 12.0, Low: 9.0, Volume: 500,
	}, rec)
}

// go test -v --run TestYahooFetcherClassifiesErrors
func TestYahooFetcherClassifiesErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"transport", fmt.Errorf("http request failed: %w", errors.New("dial tcp: refused")), ErrProviderUnavailable},
		{"server error", &yahoo.APIError{StatusCode: http.StatusInternalServerError}, ErrProviderUnavailable},
		{"rate limited", &yahoo.APIError{StatusCode: http.StatusTooManyRequests}, ErrProviderUnavailable},
		{"unknown symbol", &yahoo.APIError{StatusCode: http.StatusNotFound, Code: "Not Found"}, ErrNoData},
		{"no bars", yahoo.ErrNoBars, ErrNoData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYahooFetcher(stubBarSource{err: tt.err}).Fetch(context.Background(), "BBB")
			require.ErrorIs(t, err, tt.kind)
			require.ErrorIs(t, err, tt.err)

			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "BBB", fe.Symbol)
			assert.Contains(t, err.Error(), "BBB")
		})
	}
}

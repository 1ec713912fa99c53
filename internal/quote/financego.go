package quote

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
)

// barIterator is satisfied by *chart.Iter.
type barIterator interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// FinanceGoFetcher reads the latest bar through github.com/piquette/finance-go.
// The library decodes null chart entries as zero, so bars with a zero price
// are treated as incomplete and skipped.
type FinanceGoFetcher struct {
	interval datetime.Interval
	lookback time.Duration
	now      func() time.Time
	get      func(*chart.Params) barIterator
}

func NewFinanceGoFetcher(interval string, lookback time.Duration) *FinanceGoFetcher {
	if interval == "" {
		interval = string(datetime.OneDay)
	}
	return &FinanceGoFetcher{
		interval: datetime.Interval(interval),
		lookback: lookback,
		now:      time.Now,
		get: func(p *chart.Params) barIterator {
			return chart.Get(p)
		},
	}
}

func (f *FinanceGoFetcher) Fetch(ctx context.Context, symbol string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, ProviderUnavailable(symbol, err)
	}

	end := f.now().UTC().AddDate(0, 0, 1)
	start := end.Add(-f.lookback)
	params := &chart.Params{
		Symbol:   symbol,
		Start:    &datetime.Datetime{Month: int(start.Month()), Day: start.Day(), Year: start.Year()},
		End:      &datetime.Datetime{Month: int(end.Month()), Day: end.Day(), Year: end.Year()},
		Interval: f.interval,
	}
	params.Context = &ctx

	last, err := f.latestBar(params)
	if err != nil {
		var yErr *finance.YfinError
		if errors.As(err, &yErr) && yErr.Code == "Not Found" {
			return Record{}, NoData(symbol, err)
		}
		return Record{}, ProviderUnavailable(symbol, err)
	}
	if last == nil {
		return Record{}, NoData(symbol, errors.New("no complete bars in window"))
	}
	if last.Volume < 0 {
		return Record{}, NoData(symbol, fmt.Errorf("negative volume %d", last.Volume))
	}

	adjClose := last.AdjClose
	if adjClose.IsZero() {
		adjClose = last.Close
	}

	return Record{
		Symbol:    symbol,
		Timestamp: int64(last.Timestamp),
		Open:      toFloat(last.Open),
		Close:     toFloat(last.Close),
		AdjClose:  toFloat(adjClose),
		High:      toFloat(last.High),
		Low:       toFloat(last.Low),
		Volume:    uint64(last.Volume),
	}, nil
}

// latestBar returns the last complete bar, or nil when there is none. The
// library indexes response arrays without bounds checks, so a panic while
// decoding is reported as an error.
func (f *FinanceGoFetcher) latestBar(params *chart.Params) (last *finance.ChartBar, err error) {
	defer func() {
		if r := recover(); r != nil {
			last, err = nil, fmt.Errorf("malformed chart response: %v", r)
		}
	}()

	iter := f.get(params)
	for iter.Next() {
		if b := iter.Bar(); complete(b) {
			last = b
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return last, nil
}

func complete(b *finance.ChartBar) bool {
	if b == nil {
		return false
	}
	return !b.Open.IsZero() && !b.High.IsZero() && !b.Low.IsZero() && !b.Close.IsZero()
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// LookbackFor converts a Yahoo range such as "5d", "1mo" or "1y" into a
// duration. Unknown ranges fall back to one month.
func LookbackFor(rng string) time.Duration {
	const day = 24 * time.Hour
	rng = strings.TrimSpace(strings.ToLower(rng))

	units := []struct {
		suffix string
		size   time.Duration
	}{
		{"mo", 31 * day},
		{"wk", 7 * day},
		{"d", day},
		{"y", 366 * day},
	}
	for _, u := range units {
		if n, ok := strings.CutSuffix(rng, u.suffix); ok {
			if v, err := strconv.Atoi(n); err == nil && v > 0 {
				return time.Duration(v) * u.size
			}
		}
	}
	return 31 * day
}

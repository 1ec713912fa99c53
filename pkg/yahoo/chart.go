package yahoo

import "errors"

// ErrNoBars is returned when a chart carries no complete bar.
var ErrNoBars = errors.New("chart has no complete bars")

// Bars converts the column oriented chart result into rows. Rows with a
// missing open, high, low, close or volume are skipped. A missing adjusted
// close falls back to the close.
func (r ChartResult) Bars() []Bar {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	q := r.Indicators.Quote[0]

	var adj []*float64
	if len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}

	out := make([]Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		open, ok1 := at(q.Open, i)
		high, ok2 := at(q.High, i)
		low, ok3 := at(q.Low, i)
		closeVal, ok4 := at(q.Close, i)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue // skip incomplete row
		}
		if i >= len(q.Volume) || q.Volume[i] == nil {
			continue
		}

		adjClose, ok := at(adj, i)
		if !ok {
			adjClose = closeVal
		}

		out = append(out, Bar{
			Timestamp: ts,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closeVal,
			AdjClose:  adjClose,
			Volume:    *q.Volume[i],
		})
	}
	return out
}

// Latest returns the most recent complete bar.
func (r ChartResult) Latest() (Bar, error) {
	bars := r.Bars()
	if len(bars) == 0 {
		return Bar{}, ErrNoBars
	}
	return bars[len(bars)-1], nil
}

func at(col []*float64, i int) (float64, bool) {
	if i >= len(col) || col[i] == nil {
		return 0, false
	}
	return *col[i], true
}

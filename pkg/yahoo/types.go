package yahoo

// ChartResponse represents the envelope returned by Yahoo's v8 chart endpoint.
// Exactly one of Result or Error is normally populated.
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *ChartError   `json:"error"`
	} `json:"chart"`
}

// ChartError is the error object embedded in the chart envelope, e.g.
// {"code":"Not Found","description":"No data found, symbol may be delisted"}.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type ChartResult struct {
	Meta       ChartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"` // bar open times (seconds since epoch)
	Indicators struct {
		Quote    []QuoteIndicator    `json:"quote"`
		AdjClose []AdjCloseIndicator `json:"adjclose"`
	} `json:"indicators"`
}

type ChartMeta struct {
	Symbol            string `json:"symbol"`
	Currency          string `json:"currency"`
	ExchangeName      string `json:"exchangeName"`
	RegularMarketTime int64  `json:"regularMarketTime"`
	DataGranularity   string `json:"dataGranularity"`
	Range             string `json:"range"`
}

// QuoteIndicator holds parallel OHLCV columns. Yahoo emits null for bars
// without trades, hence the pointers.
type QuoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*uint64  `json:"volume"`
}

type AdjCloseIndicator struct {
	AdjClose []*float64 `json:"adjclose"`
}

// Bar is one complete OHLCV row extracted from a chart result.
type Bar struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	AdjClose  float64
	Volume    uint64
}

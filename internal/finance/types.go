package finance

// MutualFundNav is the latest NAV snapshot of an Indian mutual fund scheme.
type MutualFundNav struct {
	Name       string  `json:"name"`
	LatestNav  float64 `json:"latestNav"`
	Date       string  `json:"date"`
	SchemeCode string  `json:"schemeCode"`
}

// IndexQuote is the level and daily change of an exchange index.
type IndexQuote struct {
	Index   string  `json:"index"`
	Last    float64 `json:"last"`
	Change  float64 `json:"change"`
	PChange float64 `json:"pChange"`
}

// GoldPrice is the spot gold price.
type GoldPrice struct {
	Metal         string  `json:"metal"`
	Currency      string  `json:"currency"`
	PricePerOunce float64 `json:"pricePerOunce"`
	PricePerGram  float64 `json:"pricePerGram"`
}

// FxRate converts one unit of Base into Target.
type FxRate struct {
	Base   string  `json:"base"`
	Target string  `json:"target"`
	Rate   float64 `json:"rate"`
}

// CryptoPrice is the spot price of a coin in INR.
type CryptoPrice struct {
	ID         string  `json:"id"`
	Symbol     string  `json:"symbol"`
	PriceInInr float64 `json:"priceInInr"`
}

// GlobalQuote is an equity quote from the global-quote provider.
type GlobalQuote struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// MfMeta is descriptive metadata of a mutual fund scheme.
type MfMeta struct {
	SchemeCode  string `json:"schemeCode"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	SubCategory string `json:"subCategory,omitempty"`
	Risk        string `json:"risk,omitempty"`
}

// YahooQuote is a multi-market quote (NSE, BSE, US listings, indices, ETFs, crypto pairs).
type YahooQuote struct {
	Symbol        string   `json:"symbol"`
	LongName      string   `json:"longName,omitempty"`
	ShortName     string   `json:"shortName,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	Price         float64  `json:"price"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"changePercent"`
	MarketCap     *float64 `json:"marketCap,omitempty"`
}

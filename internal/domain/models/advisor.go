package models

// UserProfile describes an investor for portfolio recommendation.
type UserProfile struct {
	UserID            string
	RiskScore         int    // 1 (conservative) .. 10 (aggressive)
	Diversification   string // "concentrated", "balanced", "diversified"
	HorizonYears      int
	CapitalUSD        float64
	AutomationEnabled bool
}

// PortfolioAsset is one weighted holding in a recommendation. AmountUSD is
// the capital slice rounded to cents.
type PortfolioAsset struct {
	Ticker    string  `json:"ticker"`
	Weight    float64 `json:"weight"`
	AmountUSD float64 `json:"amount_usd"`
}

// PortfolioBacktest summarizes the historical behavior of a recommended mix.
type PortfolioBacktest struct {
	Years  int     `json:"years"`
	CAGR   float64 `json:"cagr"`
	Sharpe float64 `json:"sharpe"`
}

// Recommendation is the advisor output: a static weight allocation with the
// historical metrics of that mix and a plain-language rationale.
type Recommendation struct {
	Portfolio      []PortfolioAsset
	ExpectedReturn float64
	Volatility     float64
	MaxDrawdown    float64
	Backtest       PortfolioBacktest
	Rationale      []string
}

package models

import "math"

// Requests for the strategy HTTP endpoints. Defined in domain for consistency
// and reuse. Defaults here are the documented soft defaults of the service
// layer; the core pipeline itself rejects invalid parameters instead of
// substituting.

type RunRequest struct {
	Ticker         string  `json:"ticker" default:"SPY" validate:"required,max=10"`
	StartDate      string  `json:"start_date" default:"2018-01-01" validate:"required,datetime=2006-01-02"`
	EndDate        string  `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Model          string  `json:"model" default:"random_forest" validate:"oneof=random_forest logistic_regression"`
	Threshold      float64 `json:"threshold" default:"0.6" validate:"gte=0.5,lte=1.0"`
	InitialCapital float64 `json:"initial_capital" default:"10000" validate:"gt=0"`
	Async          bool    `query:"async" json:"async,omitempty"`
}

type HistoryRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"omitempty,max=10"`
	Limit  int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=200"`
}

type ConversationRequest struct {
	UserID string `json:"user_id" validate:"required,max=64"`
}

type MessageRequest struct {
	Message string `json:"message" validate:"required,max=500"`
}

type RecommendationRequest struct {
	UserID            string  `json:"user_id" validate:"required,max=64"`
	RiskScore         int     `json:"risk_score" validate:"gte=1,lte=10"`
	Diversification   string  `json:"diversification" default:"balanced" validate:"oneof=concentrated balanced diversified"`
	HorizonYears      int     `json:"horizon_years" default:"10" validate:"gte=1,lte=50"`
	CapitalUSD        float64 `json:"capital_usd" validate:"gt=0"`
	AutomationEnabled bool    `json:"automation_enabled"`
}

// Profile converts the request into the domain profile.
func (r RecommendationRequest) Profile() UserProfile {
	return UserProfile{
		UserID:            r.UserID,
		RiskScore:         r.RiskScore,
		Diversification:   r.Diversification,
		HorizonYears:      r.HorizonYears,
		CapitalUSD:        r.CapitalUSD,
		AutomationEnabled: r.AutomationEnabled,
	}
}

// MetricsDTO is the transport form of Metrics. SharpeRatio is a pointer so
// that the NaN sentinel (zero-variance returns) serializes as JSON null
// instead of breaking encoding.
type MetricsDTO struct {
	TotalReturn      float64  `json:"total_return"`
	BuyHoldReturn    float64  `json:"buy_hold_return"`
	AnnualizedReturn float64  `json:"annualized_return"`
	SharpeRatio      *float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64  `json:"max_drawdown"`
	NumTrades        int      `json:"num_trades"`
	ModelAccuracy    float64  `json:"model_accuracy"`
}

// ToDTO converts Metrics for transport.
func (m Metrics) ToDTO() MetricsDTO {
	dto := MetricsDTO{
		TotalReturn:      m.TotalReturn,
		BuyHoldReturn:    m.BuyHoldReturn,
		AnnualizedReturn: m.AnnualizedReturn,
		MaxDrawdown:      m.MaxDrawdown,
		NumTrades:        m.NumTrades,
		ModelAccuracy:    m.ModelAccuracy,
	}
	if !math.IsNaN(m.SharpeRatio) {
		s := m.SharpeRatio
		dto.SharpeRatio = &s
	}
	return dto
}

// RunResponse is the structured result returned by the run endpoints.
type RunResponse struct {
	Summary   RunSummary `json:"summary"`
	Metrics   MetricsDTO `json:"metrics"`
	Trades    []Trade    `json:"trades"`
	NumTrades int        `json:"num_trades"`
	ChartPath string     `json:"plot_path,omitempty"`
}

// ToResponse converts a run result for transport.
func (r *RunResult) ToResponse() *RunResponse {
	trades := r.TradePreview
	if trades == nil {
		trades = []Trade{}
	}
	return &RunResponse{
		Summary:   r.Summary,
		Metrics:   r.Metrics.ToDTO(),
		Trades:    trades,
		NumTrades: r.NumTrades,
		ChartPath: r.ChartPath,
	}
}

// ConversationResponse is returned by the dialogue endpoints.
type ConversationResponse struct {
	ConversationID string            `json:"conversation_id"`
	Response       string            `json:"response"`
	Complete       bool              `json:"complete"`
	CollectedData  map[string]string `json:"collected_data,omitempty"`
	Results        *RunResponse      `json:"strategy_results,omitempty"`
}

// RecommendationResponse is returned by the advisor endpoint.
type RecommendationResponse struct {
	Portfolio      []PortfolioAsset  `json:"portfolio"`
	ExpectedReturn float64           `json:"expected_return"`
	Volatility     float64           `json:"volatility"`
	MaxDrawdown    float64           `json:"max_drawdown"`
	Backtest       PortfolioBacktest `json:"backtest"`
	Rationale      []string          `json:"rationale"`
}

// ToResponse converts a recommendation for transport.
func (r *Recommendation) ToResponse() *RecommendationResponse {
	return &RecommendationResponse{
		Portfolio:      r.Portfolio,
		ExpectedReturn: r.ExpectedReturn,
		Volatility:     r.Volatility,
		MaxDrawdown:    r.MaxDrawdown,
		Backtest:       r.Backtest,
		Rationale:      r.Rationale,
	}
}

// JobStatus values for async runs.
const (
	JobStatusQueued  = "queued"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// JobResponse reports the state of an async run.
type JobResponse struct {
	JobID  string       `json:"job_id"`
	Status string       `json:"status"`
	Error  string       `json:"error,omitempty"`
	Result *RunResponse `json:"result,omitempty"`
}

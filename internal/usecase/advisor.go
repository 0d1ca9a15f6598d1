package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"QuantEase/internal/domain/models"
	drepo "QuantEase/internal/domain/repository"
	"QuantEase/internal/services/features"
	"QuantEase/pkg/logger"
)

// Advisor produces portfolio recommendations from a static weight lookup by
// risk score and diversification preference, backed by ten years of
// historical behavior of the recommended mix.
type Advisor struct {
	provider drepo.PriceProvider
	log      *logger.Logger
}

func NewAdvisor(provider drepo.PriceProvider, log *logger.Logger) *Advisor {
	return &Advisor{provider: provider, log: log}
}

const advisorLookbackYears = 10

// Recommend builds the allocation for one profile.
func (a *Advisor) Recommend(ctx context.Context, profile models.UserProfile) (*models.Recommendation, error) {
	if profile.RiskScore < 1 || profile.RiskScore > 10 {
		return nil, fmt.Errorf("risk score %d outside 1..10", profile.RiskScore)
	}

	weights := portfolioWeights(profile)

	series, err := a.fetchAll(ctx, weights)
	if err != nil {
		return nil, err
	}

	values := blendPortfolio(series, weights)
	if len(values) < 2 {
		return nil, fmt.Errorf("portfolio history: %w", models.ErrInsufficientHistory)
	}

	years := math.Min(advisorLookbackYears, float64(len(values))/252)
	cagr := math.Pow(values[len(values)-1]/values[0], 1/years) - 1
	vol := annualizedVol(features.ComputeReturns(values))
	sharpe := 0.0
	if vol > 0 {
		sharpe = cagr / vol
	}

	capital := decimal.NewFromFloat(profile.CapitalUSD)
	assets := make([]models.PortfolioAsset, 0, len(weights))
	for _, t := range sortedTickers(weights) {
		w := weights[t]
		amount := capital.Mul(decimal.NewFromFloat(w)).Round(2)
		assets = append(assets, models.PortfolioAsset{
			Ticker:    t,
			Weight:    w,
			AmountUSD: amount.InexactFloat64(),
		})
	}

	a.log.Info("recommendation built",
		logger.String("user_id", profile.UserID),
		logger.Int("risk_score", profile.RiskScore),
		logger.String("diversification", profile.Diversification),
		logger.Int("assets", len(assets)))

	return &models.Recommendation{
		Portfolio:      assets,
		ExpectedReturn: round3(cagr),
		Volatility:     round3(vol),
		MaxDrawdown:    round3(portfolioDrawdown(values)),
		Backtest: models.PortfolioBacktest{
			Years:  int(math.Round(years)),
			CAGR:   round3(cagr),
			Sharpe: math.Round(sharpe*100) / 100,
		},
		Rationale: rationale(profile),
	}, nil
}

func (a *Advisor) fetchAll(ctx context.Context, weights map[string]float64) (map[string]models.PriceSeries, error) {
	from := time.Now().AddDate(-advisorLookbackYears, 0, 0)
	out := make(map[string]models.PriceSeries, len(weights))
	for _, t := range sortedTickers(weights) {
		s, err := a.provider.FetchDaily(ctx, t, from, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", t, err)
		}
		out[t] = s
	}
	return out, nil
}

// blendPortfolio normalizes each component to its first close and sums the
// weighted values over the dates all components share.
func blendPortfolio(series map[string]models.PriceSeries, weights map[string]float64) []float64 {
	type normed struct {
		first  float64
		byDate map[string]float64
	}

	normeds := make(map[string]normed, len(series))
	var shared map[string]bool
	for t, s := range series {
		if s.Len() == 0 {
			return nil
		}
		byDate := make(map[string]float64, s.Len())
		dates := make(map[string]bool, s.Len())
		for _, c := range s.Candles {
			k := c.Date.Format("2006-01-02")
			byDate[k] = c.Close
			dates[k] = true
		}
		normeds[t] = normed{first: s.Candles[0].Close, byDate: byDate}
		if shared == nil {
			shared = dates
		} else {
			for k := range shared {
				if !dates[k] {
					delete(shared, k)
				}
			}
		}
	}

	keys := make([]string, 0, len(shared))
	for k := range shared {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]float64, len(keys))
	for i, k := range keys {
		v := 0.0
		for t, w := range weights {
			n := normeds[t]
			v += w * n.byDate[k] / n.first
		}
		values[i] = v
	}
	return values
}

func annualizedVol(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	varSum := 0.0
	for _, r := range returns {
		d := r - mean
		varSum += d * d
	}
	return math.Sqrt(varSum/float64(len(returns)-1)) * math.Sqrt(252)
}

func portfolioDrawdown(values []float64) float64 {
	peak := values[0]
	worst := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if dd := v/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}

func portfolioWeights(p models.UserProfile) map[string]float64 {
	switch p.Diversification {
	case "concentrated":
		switch {
		case p.RiskScore >= 8:
			return map[string]float64{"SPY": 0.9, "AGG": 0.1}
		case p.RiskScore >= 5:
			return map[string]float64{"SPY": 0.8, "AGG": 0.2}
		default:
			return map[string]float64{"SPY": 0.7, "AGG": 0.3}
		}
	case "balanced":
		switch {
		case p.RiskScore >= 8:
			return map[string]float64{"SPY": 0.7, "QQQ": 0.2, "AGG": 0.1}
		case p.RiskScore >= 5:
			return map[string]float64{"SPY": 0.6, "QQQ": 0.1, "AGG": 0.3}
		default:
			return map[string]float64{"SPY": 0.5, "QQQ": 0.1, "AGG": 0.4}
		}
	default: // diversified
		switch {
		case p.RiskScore >= 8:
			return map[string]float64{"SPY": 0.5, "QQQ": 0.2, "EFA": 0.2, "AGG": 0.1}
		case p.RiskScore >= 5:
			return map[string]float64{"SPY": 0.4, "QQQ": 0.1, "EFA": 0.2, "AGG": 0.3}
		default:
			return map[string]float64{"SPY": 0.3, "QQQ": 0.1, "EFA": 0.1, "AGG": 0.5}
		}
	}
}

func rationale(p models.UserProfile) []string {
	var out []string

	switch {
	case p.RiskScore >= 8:
		out = append(out, "Higher equity allocation matches your high risk tolerance")
	case p.RiskScore >= 5:
		out = append(out, "Balanced equity-bond mix aligns with your moderate risk profile")
	default:
		out = append(out, "Conservative allocation with higher bond exposure for lower risk")
	}

	switch p.Diversification {
	case "concentrated":
		out = append(out, "Concentrated portfolio focuses on core US market exposure")
	case "balanced":
		out = append(out, "Balanced approach with mix of broad market and growth exposure")
	default:
		out = append(out, "Diversified portfolio includes international exposure to reduce correlation")
	}

	switch {
	case p.HorizonYears >= 10:
		out = append(out, fmt.Sprintf("Long-term %d-year horizon allows for riding out market cycles", p.HorizonYears))
	case p.HorizonYears >= 5:
		out = append(out, fmt.Sprintf("Medium-term %d-year horizon balanced for growth and stability", p.HorizonYears))
	default:
		out = append(out, fmt.Sprintf("Shorter %d-year horizon prioritizes capital preservation", p.HorizonYears))
	}

	return out
}

func sortedTickers(weights map[string]float64) []string {
	out := make([]string, 0, len(weights))
	for t := range weights {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

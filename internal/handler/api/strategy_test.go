package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"QuantEase/internal/domain/models"
	"QuantEase/internal/service/cache"
	"QuantEase/internal/usecase"
	xlogger "QuantEase/pkg/logger"
)

type stubRunner struct {
	err        error
	lastParams models.RunParams
}

func (s *stubRunner) Run(ctx context.Context, params models.RunParams) (*models.RunResult, error) {
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	return &models.RunResult{
		Params:  params,
		Summary: models.RunSummary{Ticker: params.Ticker, NumTrades: 3},
		Metrics: models.Metrics{TotalReturn: 12.5, NumTrades: 3},
	}, nil
}

type stubAdvisor struct{ err error }

func (s *stubAdvisor) Recommend(ctx context.Context, p models.UserProfile) (*models.Recommendation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Recommendation{
		Portfolio: []models.PortfolioAsset{{Ticker: "SPY", Weight: 1, AmountUSD: p.CapitalUSD}},
		Rationale: []string{"all in on the index"},
	}, nil
}

func newTestHandler(t *testing.T, runner *stubRunner) (*StrategyHandler, *echo.Echo) {
	t.Helper()
	log, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatal(err)
	}
	sessions := cache.NewTTLCache()
	conv := usecase.NewConversation(runner, sessions, time.Hour, 42, log)
	jobs := usecase.NewJobTracker(cache.NewTTLCache())
	h := NewStrategyHandler(log, runner, &stubAdvisor{}, conv, nil, jobs, nil, 42)

	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRunEndpointDefaults(t *testing.T) {
	runner := &stubRunner{}
	_, e := newTestHandler(t, runner)

	rec := doJSON(e, http.MethodPost, "/api/strategy/run", `{"ticker":"MSFT"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	p := runner.lastParams
	if p.Ticker != "MSFT" {
		t.Errorf("ticker = %q", p.Ticker)
	}
	if p.Model != models.ModelRandomForest || p.Threshold != 0.6 || p.InitialCapital != 10000 {
		t.Errorf("defaults not applied: %+v", p)
	}
	if p.StartDate.Format("2006-01-02") != "2018-01-01" {
		t.Errorf("start date default = %v", p.StartDate)
	}
	if p.Seed != 42 {
		t.Errorf("seed = %d", p.Seed)
	}
}

func TestRunEndpointValidation(t *testing.T) {
	_, e := newTestHandler(t, &stubRunner{})

	cases := []struct {
		name, body string
	}{
		{"threshold below band", `{"ticker":"SPY","threshold":0.3}`},
		{"unknown model", `{"ticker":"SPY","model":"xgboost"}`},
		{"non-positive capital", `{"ticker":"SPY","initial_capital":-5}`},
		{"malformed date", `{"ticker":"SPY","start_date":"01/02/2018"}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/strategy/run", c.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("transport status = %d", rec.Code)
			}
			var resp struct {
				Status int `json:"status"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != http.StatusBadRequest {
				t.Errorf("app status = %d, want 400; body %s", resp.Status, rec.Body.String())
			}
		})
	}
}

func TestRunEndpointNoDataMapsToNotFound(t *testing.T) {
	_, e := newTestHandler(t, &stubRunner{err: models.ErrNoData})

	rec := doJSON(e, http.MethodPost, "/api/strategy/run", `{"ticker":"ZZZZ"}`)
	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusNotFound {
		t.Errorf("app status = %d, want 404; body %s", resp.Status, rec.Body.String())
	}
}

func TestConversationEndpoints(t *testing.T) {
	_, e := newTestHandler(t, &stubRunner{})

	rec := doJSON(e, http.MethodPost, "/api/conversation", `{"user_id":"u1"}`)
	var created struct {
		Data models.ConversationResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Data.ConversationID == "" {
		t.Fatalf("no conversation id in %s", rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/api/conversation/"+created.Data.ConversationID+"/message", `{"message":"AAPL"}`)
	var advanced struct {
		Data models.ConversationResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &advanced); err != nil {
		t.Fatal(err)
	}
	if got := advanced.Data.CollectedData["ticker"]; got != "AAPL" {
		t.Errorf("collected ticker = %q", got)
	}

	rec = doJSON(e, http.MethodPost, "/api/conversation/conv_missing/message", `{"message":"hi"}`)
	var missing struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &missing); err != nil {
		t.Fatal(err)
	}
	if missing.Status != http.StatusNotFound {
		t.Errorf("unknown conversation status = %d", missing.Status)
	}
}

func TestRecommendationEndpoint(t *testing.T) {
	_, e := newTestHandler(t, &stubRunner{})

	rec := doJSON(e, http.MethodPost, "/api/recommendation",
		`{"user_id":"u1","risk_score":7,"capital_usd":50000}`)
	var resp struct {
		Status int                            `json:"status"`
		Data   models.RecommendationResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Status, rec.Body.String())
	}
	if len(resp.Data.Portfolio) != 1 || resp.Data.Portfolio[0].Ticker != "SPY" {
		t.Errorf("portfolio = %+v", resp.Data.Portfolio)
	}
}

func TestHistoryDisabled(t *testing.T) {
	_, e := newTestHandler(t, &stubRunner{})

	req := httptest.NewRequest(http.MethodGet, "/api/strategy/history", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when archive disabled", resp.Status)
	}
}

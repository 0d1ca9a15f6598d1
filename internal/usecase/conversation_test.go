package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"QuantEase/internal/domain/models"
	"QuantEase/internal/service/cache"
)

type fakeRunner struct {
	lastParams models.RunParams
	err        error
}

func (f *fakeRunner) Run(ctx context.Context, params models.RunParams) (*models.RunResult, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &models.RunResult{
		Params: params,
		Summary: models.RunSummary{
			Ticker:           params.Ticker,
			Period:           "2020-03-16 to 2023-12-29",
			TotalReturn:      "25.00%",
			BuyHoldReturn:    "30.00%",
			AnnualizedReturn: "8.00%",
			SharpeRatio:      "1.10",
			MaxDrawdown:      "-12.00%",
			NumTrades:        7,
			ModelAccuracy:    "55.0%",
		},
	}, nil
}

func newTestConversation(t *testing.T, runner *fakeRunner) *Conversation {
	t.Helper()
	return NewConversation(runner, cache.NewTTLCache(), time.Hour, 42, testLogger(t))
}

func TestConversationFullScript(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestConversation(t, runner)

	created, err := c.Create("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(created.Response, "ticker symbol") {
		t.Errorf("greeting does not ask for a ticker: %q", created.Response)
	}

	ctx := context.Background()
	id := created.ConversationID

	steps := []struct {
		message  string
		wantIn   string
		field    string
		expected string
	}{
		{"aapl", "start date", "ticker", "AAPL"},
		{"use 2019-06-01 please", "ML model", "start_date", "2019-06-01"},
		{"logistic regression", "probability threshold", "model", models.ModelLogistic},
		{"let's try 0.7", "initial capital", "threshold", "0.7"},
		{"$25,000", "Is this information correct?", "initial_capital", "25000"},
	}
	for _, st := range steps {
		resp, err := c.Process(ctx, id, st.message)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(resp.Response, st.wantIn) {
			t.Fatalf("message %q: reply %q missing %q", st.message, resp.Response, st.wantIn)
		}
		if got := resp.CollectedData[st.field]; got != st.expected {
			t.Fatalf("message %q: collected %s = %q, want %q", st.message, st.field, got, st.expected)
		}
	}

	final, err := c.Process(ctx, id, "yes")
	if err != nil {
		t.Fatal(err)
	}
	if !final.Complete {
		t.Error("conversation not complete after confirmation")
	}
	if final.Results == nil {
		t.Fatal("confirmation did not attach run results")
	}
	if !strings.Contains(final.Response, "Total Return: 25.00%") {
		t.Errorf("results message missing metrics: %q", final.Response)
	}

	p := runner.lastParams
	if p.Ticker != "AAPL" || p.Model != models.ModelLogistic || p.Threshold != 0.7 || p.InitialCapital != 25000 {
		t.Errorf("runner params = %+v", p)
	}
	if p.StartDate.Format("2006-01-02") != "2019-06-01" {
		t.Errorf("start date = %v", p.StartDate)
	}
	if p.Seed != 42 {
		t.Errorf("seed = %d, want configured 42", p.Seed)
	}
}

func TestConversationDefaultsOnUnparseableInput(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestConversation(t, runner)
	created, _ := c.Create("user-2")
	ctx := context.Background()

	for _, msg := range []string{"whatever you think", "no idea", "you pick", "dunno", "something"} {
		if _, err := c.Process(ctx, created.ConversationID, msg); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := c.Process(ctx, created.ConversationID, "yes"); err != nil {
		t.Fatal(err)
	}

	p := runner.lastParams
	if p.Ticker != "SPY" || p.Model != models.ModelRandomForest || p.Threshold != 0.6 || p.InitialCapital != 10000 {
		t.Errorf("defaults not applied: %+v", p)
	}
}

func TestConversationRejectsOutOfBandThreshold(t *testing.T) {
	c := newTestConversation(t, &fakeRunner{})
	created, _ := c.Create("user-3")
	ctx := context.Background()

	c.Process(ctx, created.ConversationID, "SPY")
	c.Process(ctx, created.ConversationID, "2018-01-01")
	c.Process(ctx, created.ConversationID, "random forest")
	resp, err := c.Process(ctx, created.ConversationID, "0.95")
	if err != nil {
		t.Fatal(err)
	}
	// 0.95 is outside the accepted band, the default stands
	if got := resp.CollectedData["threshold"]; got != "0.6" {
		t.Errorf("threshold = %q, want default 0.6", got)
	}
}

func TestConversationRestartOnRejection(t *testing.T) {
	c := newTestConversation(t, &fakeRunner{})
	created, _ := c.Create("user-4")
	ctx := context.Background()

	for _, msg := range []string{"TSLA", "2020-01-01", "logistic", "0.8", "50000"} {
		c.Process(ctx, created.ConversationID, msg)
	}
	resp, err := c.Process(ctx, created.ConversationID, "no")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Response, "start over") {
		t.Errorf("rejection reply = %q", resp.Response)
	}
	if got := resp.CollectedData["ticker"]; got != "SPY" {
		t.Errorf("ticker after restart = %q, want default SPY", got)
	}
}

func TestConversationUnknownID(t *testing.T) {
	c := newTestConversation(t, &fakeRunner{})
	_, err := c.Process(context.Background(), "conv_missing", "hello")
	if !errors.Is(err, models.ErrConversationNotFound) {
		t.Fatalf("err = %v, want ErrConversationNotFound", err)
	}
}

func TestConversationRunFailureKeepsSession(t *testing.T) {
	runner := &fakeRunner{err: models.ErrNoData}
	c := newTestConversation(t, runner)
	created, _ := c.Create("user-5")
	ctx := context.Background()

	for _, msg := range []string{"ZZZZ", "2020-01-01", "forest", "0.6", "10000"} {
		c.Process(ctx, created.ConversationID, msg)
	}
	resp, err := c.Process(ctx, created.ConversationID, "yes")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Complete {
		t.Error("failed run marked the conversation complete")
	}
	if !strings.Contains(resp.Response, "error running the strategy") {
		t.Errorf("failure reply = %q", resp.Response)
	}
}

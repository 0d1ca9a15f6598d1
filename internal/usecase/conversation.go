package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"QuantEase/internal/domain/models"
	drepo "QuantEase/internal/domain/repository"
	domsvc "QuantEase/internal/domain/service"
	svccache "QuantEase/internal/service/cache"
	"QuantEase/pkg/logger"
	"QuantEase/pkg/util"
)

// Conversation runs the scripted parameter-collection dialogue: one question
// per parameter in a fixed order, then a summary and confirmation that
// triggers a pipeline run. Unparseable answers never fail a step; the
// documented default is used instead.
type Conversation struct {
	runner   domsvc.StrategyRunner
	sessions *svccache.TTLCache
	ttl      time.Duration
	seed     int64
	log      *logger.Logger
}

func NewConversation(runner domsvc.StrategyRunner, sessions *svccache.TTLCache, ttl time.Duration, seed int64, log *logger.Logger) *Conversation {
	return &Conversation{runner: runner, sessions: sessions, ttl: ttl, seed: seed, log: log}
}

type convSession struct {
	ID        string
	UserID    string
	Step      int
	Collected map[string]string
	Complete  bool
	Results   *models.RunResponse
}

// step is one question of the script. The extractor returns the parsed
// value and whether the message contained one; on false the default stands.
type step struct {
	field   string
	deflt   string
	extract func(msg string) (string, bool)
	// ack phrases the accepted value and asks the next question
	ack func(value string) string
}

var (
	datePattern      = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	thresholdPattern = regexp.MustCompile(`0\.\d+`)
	numberPattern    = regexp.MustCompile(`\d+(\.\d+)?`)
)

const greeting = "Hello! I'm your quantitative trading assistant. I'll help you create and backtest a simple trading strategy using machine learning. Let's start with which asset you'd like to analyze. Which ticker symbol would you like to use? (default: SPY)"

var dialogueSteps = []step{
	{
		field: "ticker",
		deflt: "SPY",
		extract: func(msg string) (string, bool) {
			s := strings.TrimSpace(msg)
			if len(s) > 0 && len(s) <= 5 && isAlpha(s) {
				return strings.ToUpper(s), true
			}
			return "", false
		},
		ack: func(v string) string {
			return fmt.Sprintf("I'll use %s for our analysis. What start date would you like to use for historical data? (format: YYYY-MM-DD, default: 2018-01-01)", v)
		},
	},
	{
		field: "start_date",
		deflt: "2018-01-01",
		extract: func(msg string) (string, bool) {
			m := datePattern.FindString(msg)
			if m == "" {
				return "", false
			}
			if _, err := util.ParseDate(m); err != nil {
				return "", false
			}
			return m, true
		},
		ack: func(v string) string {
			return fmt.Sprintf("I'll use %s as the start date. Which ML model would you prefer for prediction? Options are 'random_forest' or 'logistic_regression' (default: random_forest)", v)
		},
	},
	{
		field: "model",
		deflt: models.ModelRandomForest,
		extract: func(msg string) (string, bool) {
			l := strings.ToLower(msg)
			if strings.Contains(l, "logistic") || strings.Contains(l, "regression") {
				return models.ModelLogistic, true
			}
			if strings.Contains(l, "random") || strings.Contains(l, "forest") {
				return models.ModelRandomForest, true
			}
			return "", false
		},
		ack: func(v string) string {
			return fmt.Sprintf("I'll use the %s model. What probability threshold would you like to use for trading signals? (0.5-0.9, default: 0.6)", v)
		},
	},
	{
		field: "threshold",
		deflt: "0.6",
		extract: func(msg string) (string, bool) {
			m := thresholdPattern.FindString(msg)
			if m == "" {
				return "", false
			}
			v, err := strconv.ParseFloat(m, 64)
			if err != nil || v < 0.5 || v > 0.9 {
				return "", false
			}
			return m, true
		},
		ack: func(v string) string {
			return fmt.Sprintf("I'll use %s as the probability threshold. What initial capital would you like to use for backtesting? (default: $10,000)", v)
		},
	},
	{
		field: "initial_capital",
		deflt: "10000",
		extract: func(msg string) (string, bool) {
			cleaned := strings.NewReplacer("$", "", ",", "").Replace(msg)
			m := numberPattern.FindString(cleaned)
			if m == "" {
				return "", false
			}
			v, err := strconv.ParseFloat(m, 64)
			if err != nil || v <= 0 {
				return "", false
			}
			return m, true
		},
		// the last collection step flows into the summary, built separately
		ack: nil,
	},
}

// Create opens a new dialogue session and returns its first message.
func (c *Conversation) Create(userID string) (*models.ConversationResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id required")
	}

	s := &convSession{
		ID:        fmt.Sprintf("conv_%s_%s", userID, newRunID()),
		UserID:    userID,
		Collected: defaultCollected(),
	}
	c.sessions.Set(sessionKey(s.ID), s, c.ttl)

	return &models.ConversationResponse{
		ConversationID: s.ID,
		Response:       greeting,
		Complete:       false,
		CollectedData:  s.Collected,
	}, nil
}

// Process advances the dialogue with one user message.
func (c *Conversation) Process(ctx context.Context, conversationID, message string) (*models.ConversationResponse, error) {
	v, ok := c.sessions.Get(sessionKey(conversationID))
	if !ok {
		return nil, fmt.Errorf("%s: %w", conversationID, models.ErrConversationNotFound)
	}
	s, ok := v.(*convSession)
	if !ok {
		return nil, fmt.Errorf("%s: %w", conversationID, models.ErrConversationNotFound)
	}

	resp := c.advance(ctx, s, message)
	c.sessions.Set(sessionKey(conversationID), s, c.ttl)
	return resp, nil
}

func (c *Conversation) advance(ctx context.Context, s *convSession, message string) *models.ConversationResponse {
	if s.Complete {
		return c.reply(s, "Your trading strategy has been executed. Would you like to try with different parameters?")
	}

	if s.Step < len(dialogueSteps) {
		st := dialogueSteps[s.Step]
		if v, ok := st.extract(message); ok {
			s.Collected[st.field] = v
		}
		s.Step++

		if st.ack != nil {
			return c.reply(s, st.ack(s.Collected[st.field]))
		}
		return c.reply(s, c.summary(s))
	}

	// confirmation step
	l := strings.ToLower(message)
	if strings.Contains(l, "yes") || strings.Contains(l, "correct") {
		return c.execute(ctx, s)
	}
	s.Step = 0
	s.Collected = defaultCollected()
	return c.reply(s, "Let's start over. Which ticker symbol would you like to use? (default: SPY)")
}

func (c *Conversation) execute(ctx context.Context, s *convSession) *models.ConversationResponse {
	params, err := paramsFromCollected(s.Collected, c.seed)
	if err == nil {
		var result *models.RunResult
		result, err = c.runner.Run(ctx, params)
		if err == nil {
			s.Complete = true
			s.Results = result.ToResponse()
			return c.reply(s, resultsMessage(result.Summary))
		}
	}

	c.log.Warn("dialogue run failed",
		logger.String("conversation_id", s.ID),
		logger.Error(err))
	return c.reply(s, fmt.Sprintf("There was an error running the strategy: %s. Would you like to try with different parameters?", err))
}

func (c *Conversation) summary(s *convSession) string {
	capital, _ := strconv.ParseFloat(s.Collected["initial_capital"], 64)
	var b strings.Builder
	b.WriteString("Great! Here's a summary of your trading strategy parameters:\n\n")
	fmt.Fprintf(&b, "- Asset: %s\n", s.Collected["ticker"])
	fmt.Fprintf(&b, "- Start Date: %s\n", s.Collected["start_date"])
	fmt.Fprintf(&b, "- ML Model: %s\n", s.Collected["model"])
	fmt.Fprintf(&b, "- Probability Threshold: %s\n", s.Collected["threshold"])
	fmt.Fprintf(&b, "- Initial Capital: $%.2f\n\n", capital)
	b.WriteString("Is this information correct? (yes/no)")
	return b.String()
}

func resultsMessage(sum models.RunSummary) string {
	var b strings.Builder
	b.WriteString("I've run the trading strategy with your parameters. Here are the results:\n\n")
	b.WriteString("**Strategy Performance Summary**\n\n")
	fmt.Fprintf(&b, "- Asset: %s\n", sum.Ticker)
	fmt.Fprintf(&b, "- Period: %s\n", sum.Period)
	fmt.Fprintf(&b, "- Total Return: %s (Buy & Hold: %s)\n", sum.TotalReturn, sum.BuyHoldReturn)
	fmt.Fprintf(&b, "- Annualized Return: %s\n", sum.AnnualizedReturn)
	fmt.Fprintf(&b, "- Sharpe Ratio: %s\n", sum.SharpeRatio)
	fmt.Fprintf(&b, "- Maximum Drawdown: %s\n", sum.MaxDrawdown)
	fmt.Fprintf(&b, "- Number of Trades: %d\n", sum.NumTrades)
	fmt.Fprintf(&b, "- Model Accuracy: %s\n\n", sum.ModelAccuracy)
	b.WriteString("The strategy performance chart has been generated. Would you like to try different parameters?")
	return b.String()
}

func (c *Conversation) reply(s *convSession, text string) *models.ConversationResponse {
	return &models.ConversationResponse{
		ConversationID: s.ID,
		Response:       text,
		Complete:       s.Complete,
		CollectedData:  s.Collected,
		Results:        s.Results,
	}
}

func defaultCollected() map[string]string {
	m := make(map[string]string, len(dialogueSteps))
	for _, st := range dialogueSteps {
		m[st.field] = st.deflt
	}
	return m
}

func paramsFromCollected(collected map[string]string, seed int64) (models.RunParams, error) {
	start, err := util.ParseDate(collected["start_date"])
	if err != nil {
		return models.RunParams{}, fmt.Errorf("start date: %w", err)
	}
	threshold, err := strconv.ParseFloat(collected["threshold"], 64)
	if err != nil {
		return models.RunParams{}, fmt.Errorf("threshold: %w", err)
	}
	capital, err := strconv.ParseFloat(collected["initial_capital"], 64)
	if err != nil {
		return models.RunParams{}, fmt.Errorf("initial capital: %w", err)
	}
	return models.RunParams{
		Ticker:         collected["ticker"],
		StartDate:      start,
		Model:          drepo.NormalizeModelKind(collected["model"]),
		Threshold:      threshold,
		InitialCapital: capital,
		Seed:           seed,
	}, nil
}

func sessionKey(id string) string { return "conv:" + id }

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

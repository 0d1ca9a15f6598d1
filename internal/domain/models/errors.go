package models

import "errors"

// Fatal pipeline errors. Each stage wraps these with its own context; the
// pipeline surfaces them verbatim with the originating stage identified.
var (
	// ErrNoData means the provider returned nothing for the ticker/range.
	ErrNoData = errors.New("no price data for ticker/range")

	// ErrInsufficientData means the series is shorter than the longest
	// rolling window plus the labeled row it needs.
	ErrInsufficientData = errors.New("insufficient history for feature windows")

	// ErrInsufficientHistory means the equity curve spans too little time
	// to annualize.
	ErrInsufficientHistory = errors.New("insufficient history to annualize")

	// ErrUnsupportedModel means the model kind is not recognized.
	ErrUnsupportedModel = errors.New("unsupported model kind")

	// ErrInvalidThreshold means the signal threshold is outside [0.5, 1.0].
	ErrInvalidThreshold = errors.New("threshold must be within [0.5, 1.0]")

	// ErrEmptySeries means fewer than two aligned dates remain to backtest.
	ErrEmptySeries = errors.New("not enough aligned dates to backtest")

	// ErrConversationNotFound means the dialogue session expired or never
	// existed.
	ErrConversationNotFound = errors.New("conversation not found")
)

package service

import (
	"context"

	"QuantEase/internal/domain/models"
)

// StrategyRunner executes the full evaluation pipeline for one parameter set.
type StrategyRunner interface {
	Run(ctx context.Context, params models.RunParams) (*models.RunResult, error)
}

// PortfolioAdvisor builds a portfolio recommendation from a user profile.
type PortfolioAdvisor interface {
	Recommend(ctx context.Context, profile models.UserProfile) (*models.Recommendation, error)
}

package server

import (
	"context"

	"github.com/at-ishikawa/sigmareview/internal/generator"
)

//go:generate mockgen -source=generator.go -destination=../mocks/server/mock_generator.go -package=mock_server

// Generator is the generation backend used by the review service.
type Generator interface {
	Generate(ctx context.Context, blockID string, targets []string, force bool) (generator.GenerateResponse, error)
	UpdatePrompt(ctx context.Context, blockID string, assetType generator.PromptAsset, content string) (generator.UpdatePromptResponse, error)
	Health(ctx context.Context) generator.HealthResponse
}

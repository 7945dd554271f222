package zen

import (
	"context"

	"github.com/abel123/zeus/pkg/types"
)

//go:generate mockgen -destination=mocks/mock_fetcher.go -package=mocks . Fetcher

// Fetcher loads the annotations of a window from the analytics service.
type Fetcher interface {
	FetchAnnotations(ctx context.Context, request types.AnnotationRequest, historicalOnly bool) (*types.AnnotationPayload, error)
}

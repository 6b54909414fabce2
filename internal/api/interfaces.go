package api

import (
	"context"

	"github.com/yukeru/gelande/internal/recommend"
	"github.com/yukeru/gelande/internal/resort"
)

// Recommender defines the pipeline operations needed by handlers.
type Recommender interface {
	Recommend(ctx context.Context, opts recommend.Options) (recommend.Result, error)
	ResortDetails(ctx context.Context, id string) (*recommend.Item, error)
	ClosedResorts(ctx context.Context) []resort.Resort
	Ingest(ctx context.Context, records []resort.RawRecord) recommend.IngestSummary
}

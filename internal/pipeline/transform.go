package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/fire-extent-etl/internal/domain"
)

// FireTransformer implements Transformer by resolving each occurrence's fire
// extent against a shared catalog, with optional geocoding enrichment.
type FireTransformer struct {
	resolver *domain.Resolver
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates a FireTransformer. Pass a nil geocoder to disable
// geocoding enrichment.
func NewTransformer(resolver *domain.Resolver, geocoder domain.Geocoder, logger *slog.Logger) *FireTransformer {
	return &FireTransformer{
		resolver: resolver,
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *FireTransformer) Transform(ctx context.Context, occ domain.Occurrence) (domain.FireRecord, bool, error) {
	if err := occ.Validate(); err != nil {
		return domain.FireRecord{}, false, err
	}

	extent, ok := t.resolver.Resolve(occ.Lat, occ.Lng, occ.ReportDate)
	if !ok {
		return domain.FireRecord{}, false, nil
	}

	summary := domain.Summarize(extent)
	rec := domain.NewFireRecord(occ, extent, summary)
	rec = domain.EnrichWithGeocoding(ctx, rec, t.geocoder, t.logger)

	return rec, true, nil
}

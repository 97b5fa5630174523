package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/synop-etl/internal/domain"
)

// SynopTransformer implements Transformer with the domain bulletin decoder.
type SynopTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates a SynopTransformer.
func NewTransformer(logger *slog.Logger) *SynopTransformer {
	return &SynopTransformer{logger: logger}
}

func (t *SynopTransformer) Transform(_ context.Context, b domain.Bulletin) domain.DecodedBulletin {
	records, stats := domain.DecodeBulletinStats(b.Text)

	for _, d := range stats.Dropped {
		t.logger.Warn("station dropped", "station_id", d.StationID, "error", d.Reason)
	}
	if stats.UnparsedGroups > 0 {
		t.logger.Debug("unparsed groups skipped", "count", stats.UnparsedGroups, "window", b.Window.String())
	}

	return domain.DecodedBulletin{Bulletin: b, Records: records, Stats: stats}
}

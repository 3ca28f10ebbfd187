// Package source pulls the raw climbing log from the spreadsheet that holds
// it, either through the Google Sheets API or from a local .xlsx export.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"crvx/internal/config"
	apperrors "crvx/internal/errors"
	"crvx/pkg/contracts/domain"
)

// Source returns one full pull of the climbing log. Every call returns
// tables the caller owns.
type Source interface {
	Fetch(ctx context.Context) (*domain.RawTables, error)
}

// FetchRecorder counts fetches by result
type FetchRecorder interface {
	RecordFetch(result string)
}

// Fetch results reported to the FetchRecorder.
const (
	FetchHit   = "hit"
	FetchMiss  = "miss"
	FetchError = "error"
)

// New builds the source configured by cfg
func New(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger) (Source, error) {
	switch cfg.Kind {
	case config.SourceKindSheets:
		return NewSheetsSource(ctx, cfg, logger)
	case config.SourceKindWorkbook:
		return NewWorkbookSource(cfg, logger), nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown source kind %q", cfg.Kind), nil)
	}
}

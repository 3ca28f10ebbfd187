package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"crvx/internal/config"
	apperrors "crvx/internal/errors"
	"crvx/internal/infrastructure"
	"crvx/pkg/contracts/domain"
)

// SheetsSource reads the climbing log through the Google Sheets API using
// service account credentials. Calls are paced by a token bucket.
type SheetsSource struct {
	service *sheets.Service
	cfg     config.SourceConfig
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewSheetsSource creates a Sheets client from the configured credentials
// file. Without a spreadsheet id the spreadsheet is looked up by name
// through the Drive API. Extra client options, such as a test endpoint, are
// appended.
func NewSheetsSource(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger, opts ...option.ClientOption) (*SheetsSource, error) {
	if cfg.SpreadsheetID == "" && cfg.SpreadsheetName == "" {
		return nil, apperrors.NewConfigError("spreadsheet id or name is required for the sheets source", nil)
	}

	clientOpts := []option.ClientOption{option.WithScopes(config.SheetsScopes...)}
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, apperrors.NewSourceError("failed to create sheets service", err)
	}

	byName := cfg.SpreadsheetID == ""
	if byName {
		files, err := drive.NewService(ctx, clientOpts...)
		if err != nil {
			return nil, apperrors.NewSourceError("failed to create drive service", err)
		}
		if cfg.SpreadsheetID, err = LookupSpreadsheetID(ctx, files, cfg.SpreadsheetName); err != nil {
			return nil, err
		}
	}

	s := NewSheetsSourceWithService(service, cfg, logger)
	if byName {
		s.logger.InfoContext(ctx, "spreadsheet resolved by name",
			slog.String("spreadsheet_name", cfg.SpreadsheetName),
			slog.String("spreadsheet_id", cfg.SpreadsheetID))
	}
	return s, nil
}

// LookupSpreadsheetID returns the id of the spreadsheet called name among
// the files visible to the credentials. The most recently modified match
// wins.
func LookupSpreadsheetID(ctx context.Context, files *drive.Service, name string) (string, error) {
	resp, err := files.Files.List().
		Q(spreadsheetQuery(name)).
		OrderBy("modifiedTime desc").
		Fields("files(id,name)").
		PageSize(10).
		Context(ctx).
		Do()
	if err != nil {
		return "", apperrors.NewSourceError("failed to search drive for spreadsheet", err).
			WithContext("spreadsheet_name", name)
	}
	if len(resp.Files) == 0 {
		return "", apperrors.NewSourceError(fmt.Sprintf("spreadsheet %q not found", name), nil).
			WithContext("spreadsheet_name", name)
	}
	return resp.Files[0].Id, nil
}

// spreadsheetQuery builds a Drive search for native spreadsheets named name
func spreadsheetQuery(name string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(name)
	return fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escaped, config.SpreadsheetMimeType)
}

// NewSheetsSourceWithService wraps an existing Sheets service
func NewSheetsSourceWithService(service *sheets.Service, cfg config.SourceConfig, logger *slog.Logger) *SheetsSource {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = config.DefaultRequestsPerMinute
	}
	return &SheetsSource{
		service: service,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		logger:  infrastructure.WithComponent(logger, "sheets_source"),
	}
}

// Ranges returns the A1 ranges read on every fetch: the climbs and sessions
// named ranges and the whole outdoor sheet.
func (s *SheetsSource) Ranges() []string {
	return []string{
		s.cfg.ClimbsRange,
		s.cfg.SessionsRange,
		quoteSheet(s.cfg.OutdoorSheet),
	}
}

// Fetch pulls all three tables in a single batch request
func (s *SheetsSource) Fetch(ctx context.Context) (*domain.RawTables, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewSourceError("rate limiter wait aborted", err)
	}

	start := time.Now()
	ranges := s.Ranges()
	resp, err := s.service.Spreadsheets.Values.BatchGet(s.cfg.SpreadsheetID).
		Ranges(ranges...).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		s.logger.ErrorContext(ctx, "sheets batch get failed",
			slog.String("spreadsheet_id", s.cfg.SpreadsheetID),
			slog.String("error", err.Error()))
		return nil, apperrors.NewSourceError("failed to read spreadsheet", err).
			WithContext("spreadsheet_id", s.cfg.SpreadsheetID)
	}
	if len(resp.ValueRanges) != len(ranges) {
		return nil, apperrors.NewSourceError(
			fmt.Sprintf("expected %d value ranges, got %d", len(ranges), len(resp.ValueRanges)), nil)
	}

	raw := &domain.RawTables{
		Climbs:    toRawTable(resp.ValueRanges[0].Values),
		Sessions:  toRawTable(resp.ValueRanges[1].Values),
		Outdoor:   toRawTable(resp.ValueRanges[2].Values),
		FetchedAt: time.Now().UTC(),
	}

	s.logger.InfoContext(ctx, "spreadsheet fetched",
		slog.Int("climb_rows", len(raw.Climbs)),
		slog.Int("session_rows", len(raw.Sessions)),
		slog.Int("outdoor_rows", len(raw.Outdoor)),
		slog.Duration("duration", time.Since(start)))
	return raw, nil
}

// toRawTable converts API cell values to strings
func toRawTable(values [][]interface{}) domain.RawTable {
	table := make(domain.RawTable, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			switch cell := v.(type) {
			case string:
				cells[j] = cell
			case nil:
			default:
				cells[j] = fmt.Sprint(cell)
			}
		}
		table[i] = cells
	}
	return table
}

// quoteSheet turns a sheet name into an A1 range covering the whole sheet
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

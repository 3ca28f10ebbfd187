package testutil

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"crvx/internal/config"
	"crvx/pkg/contracts/domain"
)

// ClimbingLogFixtures provides a small, consistent climbing log for tests.
//
// Indoor sessions on 05/01/2023, 07/01/2023 and 02/02/2023 each have
// matching climbs. One climb row has no grade and is dropped during
// normalization. Outdoor days are 14/01/2023 and 20/02/2023.
type ClimbingLogFixtures struct {
	FetchedAt time.Time
}

// NewClimbingLogFixtures creates a new fixtures manager
func NewClimbingLogFixtures() *ClimbingLogFixtures {
	return &ClimbingLogFixtures{
		FetchedAt: time.Date(2023, 2, 21, 9, 0, 0, 0, time.UTC),
	}
}

// ClimbsTable returns the raw indoor climbs range, header first
func (f *ClimbingLogFixtures) ClimbsTable() domain.RawTable {
	return domain.RawTable{
		{config.HeaderDate, config.HeaderVGrade, config.HeaderCountMultiplier, config.HeaderAttempts, config.HeaderSent},
		{"05/01/2023", "V3", "2", "1", "TRUE"},
		{"05/01/2023", "V4-5", "1", "3", "TRUE"},
		{"05/01/2023", "V5", "1", "2", "FALSE"},
		{"07/01/2023", "VB", "3", "", "TRUE"},
		{"07/01/2023", "V6", "1", "4", "TRUE"},
		{"07/01/2023", "", "1", "1", "TRUE"},
		{"02/02/2023", "V5", "", "1", "TRUE"},
		{"02/02/2023", "V0", "2", "1", "TRUE"},
	}
}

// SessionsTable returns the raw indoor sessions range, header first
func (f *ClimbingLogFixtures) SessionsTable() domain.RawTable {
	return domain.RawTable{
		{config.HeaderDate, config.HeaderWorkoutType, config.HeaderClimbingTime, config.HeaderTotalTime},
		{"05/01/2023", "volume", "1:30", "2:00"},
		{"07/01/2023", "strength", "1:00", "1:45"},
		{"02/02/2023", "limit", "45", "90"},
	}
}

// OutdoorTable returns the raw outdoor sheet, header first
func (f *ClimbingLogFixtures) OutdoorTable() domain.RawTable {
	return domain.RawTable{
		{config.HeaderDate, config.HeaderGrade},
		{"14/01/2023", "V4"},
		{"14/01/2023", "V5"},
		{"20/02/2023", "V3"},
	}
}

// RawTables returns all three tables as a single pull
func (f *ClimbingLogFixtures) RawTables() *domain.RawTables {
	return &domain.RawTables{
		Climbs:    f.ClimbsTable(),
		Sessions:  f.SessionsTable(),
		Outdoor:   f.OutdoorTable(),
		FetchedAt: f.FetchedAt,
	}
}

// WriteWorkbook saves raw as an .xlsx file laid out like the climbing
// spreadsheet, with the climbs and sessions ranges defined as names.
func (f *ClimbingLogFixtures) WriteWorkbook(path string, raw *domain.RawTables) error {
	wb := excelize.NewFile()
	defer wb.Close()

	sheets := []struct {
		name  string
		rng   string
		table domain.RawTable
	}{
		{config.DefaultClimbsSheet, config.DefaultClimbsRange, raw.Climbs},
		{config.DefaultSessionsSheet, config.DefaultSessionsRange, raw.Sessions},
		{config.DefaultOutdoorSheet, "", raw.Outdoor},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := wb.SetSheetName(wb.GetSheetName(0), s.name); err != nil {
				return err
			}
		} else if _, err := wb.NewSheet(s.name); err != nil {
			return err
		}

		width := 0
		for r, row := range s.table {
			width = max(width, len(row))
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = v
			}
			if err := wb.SetSheetRow(s.name, cell, &values); err != nil {
				return err
			}
		}

		if s.rng == "" || len(s.table) == 0 {
			continue
		}
		last, err := excelize.ColumnNumberToName(width)
		if err != nil {
			return err
		}
		if err := wb.SetDefinedName(&excelize.DefinedName{
			Name:     s.rng,
			RefersTo: fmt.Sprintf("'%s'!$A$1:$%s$%d", s.name, last, len(s.table)),
		}); err != nil {
			return err
		}
	}

	return wb.SaveAs(path)
}

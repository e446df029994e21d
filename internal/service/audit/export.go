package audit

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/healthcare-api/internal/model"
)

const exportSheet = "Audit Log"

var exportHeaders = []string{"ID", "Entity Type", "Entity ID", "Action", "Old Value", "New Value", "Changed By", "Changed At"}

var exportWidths = []float64{10, 15, 12, 10, 60, 60, 20, 22}

// Export renders the entries matching filter as an xlsx workbook.
func (s *Service) Export(ctx context.Context, filter model.AuditFilter) ([]byte, error) {
	logs, err := s.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	data, err := WriteXLSX(logs)
	if err != nil {
		return nil, s.failure("export", err)
	}
	return data, nil
}

// WriteXLSX writes one row per entry below a frozen header row.
func WriteXLSX(logs []*model.AuditLog) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(exportSheet, col, col, exportWidths[i]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, log := range logs {
		row := []interface{}{
			log.ID,
			log.EntityType,
			log.EntityID,
			string(log.Action),
			deref(log.OldValue),
			deref(log.NewValue),
			deref(log.ChangedBy),
			log.ChangedAt.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

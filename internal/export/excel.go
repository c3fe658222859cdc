package export

import (
	"bytes"
	"fmt"
	"time"

	"real-estate-crm/internal/models"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of the generated workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type column struct {
	header string
	width  float64
}

var clientColumns = []column{
	{"ID", 8},
	{"First Name", 18},
	{"Last Name", 18},
	{"Email", 30},
	{"Phone", 16},
	{"Type", 12},
	{"Status", 12},
	{"Source", 16},
	{"Assigned Agent", 14},
	{"Created At", 20},
}

var propertyColumns = []column{
	{"ID", 8},
	{"Title", 36},
	{"Type", 12},
	{"Transaction", 12},
	{"Status", 12},
	{"Price", 14},
	{"Area (m2)", 12},
	{"Bedrooms", 10},
	{"Bathrooms", 10},
	{"Address", 36},
	{"City", 18},
	{"Postal Code", 12},
	{"Created At", 20},
}

var paymentColumns = []column{
	{"ID", 8},
	{"Contract", 10},
	{"Due Date", 14},
	{"Amount", 12},
	{"Paid Amount", 12},
	{"Paid At", 20},
	{"Method", 14},
	{"Status", 12},
	{"Reference", 20},
}

// Clients renders the client list as an xlsx workbook
func Clients(clients []models.Client) ([]byte, error) {
	rows := make([][]interface{}, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []interface{}{
			c.ID,
			c.FirstName,
			c.LastName,
			deref(c.Email),
			c.Phone,
			string(c.Type),
			string(c.Status),
			c.Source,
			derefUint(c.AssignedAgentID),
			formatTime(&c.CreatedAt),
		})
	}
	return writeSheet("Clients", clientColumns, rows)
}

// Properties renders the property list as an xlsx workbook
func Properties(properties []models.Property) ([]byte, error) {
	rows := make([][]interface{}, 0, len(properties))
	for _, p := range properties {
		rows = append(rows, []interface{}{
			p.ID,
			p.Title,
			string(p.Type),
			string(p.TransactionType),
			string(p.Status),
			p.Price,
			derefFloat(p.Area),
			derefInt(p.Bedrooms),
			derefInt(p.Bathrooms),
			p.Address,
			p.City,
			p.PostalCode,
			formatTime(&p.CreatedAt),
		})
	}
	return writeSheet("Properties", propertyColumns, rows)
}

// Payments renders rental payments as an xlsx workbook
func Payments(payments []models.RentalPayment) ([]byte, error) {
	rows := make([][]interface{}, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []interface{}{
			p.ID,
			p.ContractID,
			p.DueDate.Format("2006-01-02"),
			p.Amount,
			p.PaidAmount,
			formatTime(p.PaidAt),
			p.Method,
			string(p.Status),
			p.Reference,
		})
	}
	return writeSheet("Payments", paymentColumns, rows)
}

// writeSheet builds a single-sheet workbook with a styled header row
func writeSheet(sheetName string, columns []column, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, col.header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, name, name, col.width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		values := row
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+2, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns "<prefix>-YYYYMMDD.xlsx"
func Filename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", prefix, now.Format("20060102"))
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefUint(v *uint) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

// Package ingest parses the two inventory file formats into domain records.
// The matching core never touches files; everything enters through here.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"cardmatch/internal/common"
	"cardmatch/internal/model"
)

// Sell file column headers, as exported by the vendor's inventory tool.
const (
	colSellID          = "TCGplayer Id"
	colSellProductLine = "Product Line"
	colSellSetName     = "Set Name"
	colSellProductName = "Product Name"
	colSellRarity      = "Rarity"
	colSellMarketPrice = "TCG Market Price"
	colSellQuantity    = "Total Quantity"
)

var requiredSellColumns = []string{
	colSellID, colSellProductLine, colSellSetName, colSellProductName,
	colSellRarity, colSellMarketPrice, colSellQuantity,
}

// SellReport counts what happened to each input row.
type SellReport struct {
	TotalRows       int
	Loaded          int
	SkippedNoID     int
	SkippedNonMagic int
}

// LoadSellInventory reads a sell inventory file, dispatching on extension
// (.csv, .xlsx).
func LoadSellInventory(path string) ([]model.SellRecord, *SellReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sell inventory: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadSellCSV(f)
	case ".xlsx":
		return ReadSellXLSX(f)
	default:
		return nil, nil, fmt.Errorf("%w: unsupported sell inventory format %q", common.ErrInvalidInput, filepath.Ext(path))
	}
}

// ReadSellCSV parses sell inventory rows from CSV.
func ReadSellCSV(r io.Reader) ([]model.SellRecord, *SellReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse sell CSV: %w", err)
	}
	return sellFromRows(rows)
}

// ReadSellXLSX parses sell inventory rows from the first sheet of an XLSX
// workbook.
func ReadSellXLSX(r io.Reader) ([]model.SellRecord, *SellReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open sell XLSX: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return sellFromRows(rows)
}

func sellFromRows(rows [][]string) ([]model.SellRecord, *SellReport, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: sell inventory has no rows", common.ErrEmptyInventory)
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range requiredSellColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: missing sell columns: %s", common.ErrInvalidInput, strings.Join(missing, ", "))
	}

	cell := func(row []string, name string) string {
		idx := columns[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	report := &SellReport{TotalRows: len(rows) - 1}
	records := make([]model.SellRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		id := cell(row, colSellID)
		if id == "" || id == "0" {
			report.SkippedNoID++
			continue
		}
		// Mixed product-line exports are common; only card inventory is
		// matchable against the buy list.
		if !strings.Contains(cell(row, colSellProductLine), "Magic") {
			report.SkippedNonMagic++
			continue
		}

		records = append(records, model.SellRecord{
			ID:          id,
			ProductName: cell(row, colSellProductName),
			SetName:     cell(row, colSellSetName),
			Rarity:      cell(row, colSellRarity),
			MarketPrice: parsePrice(cell(row, colSellMarketPrice)),
			Quantity:    parseQuantity(cell(row, colSellQuantity)),
		})
		report.Loaded++
	}

	return records, report, nil
}

// parsePrice accepts "$1,234.56" style values; unparsable input yields zero
// rather than failing the whole file.
func parsePrice(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseQuantity(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// Package export writes decisions and run results to spreadsheet files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"cardmatch/internal/model"
)

var decisionHeaders = []string{
	"sell_id", "sell_product_name", "sell_set_name",
	"buy_id", "buy_card_name", "buy_edition",
	"similarity", "status", "auto_accept_threshold", "notes",
	"created_at", "updated_at",
}

// DecisionsToXLSX writes decisions to an XLSX workbook at outputPath.
func DecisionsToXLSX(decisions []model.MatchDecision, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range decisionHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, d := range decisions {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, d.SellID)
		set(2, d.SellProductName)
		set(3, d.SellSetName)
		set(4, d.BuyID)
		set(5, d.BuyCardName)
		set(6, d.BuyEdition)
		set(7, d.Similarity)
		set(8, string(d.Status))
		set(9, d.AutoAcceptThreshold)
		set(10, d.Notes)
		set(11, d.CreatedAt.Format(time.RFC3339))
		set(12, d.UpdatedAt.Format(time.RFC3339))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}

// DecisionsToCSV writes decisions as CSV.
func DecisionsToCSV(decisions []model.MatchDecision, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(decisionHeaders); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, d := range decisions {
		row := []string{
			d.SellID, d.SellProductName, d.SellSetName,
			d.BuyID, d.BuyCardName, d.BuyEdition,
			strconv.FormatFloat(d.Similarity, 'f', 4, 64),
			string(d.Status),
			strconv.FormatFloat(d.AutoAcceptThreshold, 'f', 2, 64),
			d.Notes,
			d.CreatedAt.Format(time.RFC3339),
			d.UpdatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// MatchesToXLSX writes a run's annotated candidates to an XLSX workbook.
func MatchesToXLSX(matches []model.MatchCandidate, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"sell_id", "sell_product_name", "sell_set_name", "sell_rarity",
		"sell_market_price", "sell_quantity",
		"buy_id", "buy_card_name", "buy_edition", "buy_rarity", "buy_foil",
		"buy_price", "buy_quantity",
		"similarity", "rank", "confidence", "status",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, m := range matches {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, m.Sell.ID)
		set(2, m.Sell.ProductName)
		set(3, m.Sell.SetName)
		set(4, m.Sell.Rarity)
		set(5, m.Sell.MarketPrice.String())
		set(6, m.Sell.Quantity)
		set(7, m.Buy.ID)
		set(8, m.Buy.CardName)
		set(9, m.Buy.Edition)
		set(10, m.Buy.Rarity)
		set(11, m.Buy.Foil)
		set(12, m.Buy.Price.String())
		set(13, m.Buy.Quantity)
		set(14, m.Similarity)
		set(15, m.Rank)
		set(16, string(m.Confidence))
		set(17, string(m.Status))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}

package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"cardmatch/internal/common"
	"cardmatch/internal/model"
)

// LoadBuyList reads a buy list payload from a file.
func LoadBuyList(path string) ([]model.BuyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open buy list: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadBuyList(f)
}

// ReadBuyList parses the counterparty's buy list. The payload is a JSON
// array of records with single-letter keys, usually wrapped in a JSONP
// callback which is stripped first.
func ReadBuyList(r io.Reader) ([]model.BuyRecord, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read buy list: %w", err)
	}

	payload := stripJSONP(string(raw))

	var rows []map[string]any
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		return nil, fmt.Errorf("%w: buy list is not a JSON array: %v", common.ErrInvalidInput, err)
	}

	records := make([]model.BuyRecord, 0, len(rows))
	for _, row := range rows {
		rec := model.BuyRecord{
			ID:       asString(row["i"]),
			CardName: asString(row["n"]),
			Edition:  asString(row["e"]),
			Rarity:   asString(row["r"]),
			Foil:     asBool(row["f"]),
			Price:    asDecimal(row["p"]),
			Quantity: asInt(row["q"]),
			ImageURL: asString(row["u"]),
		}
		if rec.ID == "" {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// stripJSONP removes the callback wrapper from a JSONP response. Payloads
// without a wrapper pass through unchanged.
func stripJSONP(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "ckCardList(") && strings.HasSuffix(s, ");") {
		return s[len("ckCardList(") : len(s)-2]
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		return s[1 : len(s)-1]
	}
	return s
}

// The feed is loosely typed: identifiers arrive as numbers or strings, foil
// flags as booleans or 0/1. The coercers below absorb that.

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func asBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "1" || s == "yes"
	default:
		return false
	}
}

func asDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case string:
		return parsePrice(t)
	default:
		return decimal.Zero
	}
}

func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		return parseQuantity(t)
	default:
		return 0
	}
}

package ingest

import (
	"strings"
	"testing"

	"cardmatch/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sellHeader = `TCGplayer Id,Product Line,Set Name,Product Name,Rarity,TCG Market Price,Total Quantity`

func TestReadSellCSV(t *testing.T) {
	input := sellHeader + "\n" +
		`12345,Magic: The Gathering,Alpha,Black Lotus,Rare,"$25,000.00",1` + "\n" +
		`67890,Magic,Zendikar,Goblin Guide,Rare,$12.50,4` + "\n"

	records, report, err := ReadSellCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, 2, report.Loaded)

	lotus := records[0]
	assert.Equal(t, "12345", lotus.ID)
	assert.Equal(t, "Black Lotus", lotus.ProductName)
	assert.Equal(t, "Alpha", lotus.SetName)
	assert.Equal(t, "Rare", lotus.Rarity)
	assert.Equal(t, "25000", lotus.MarketPrice.String())
	assert.Equal(t, 1, lotus.Quantity)
}

func TestReadSellCSV_SkipsRowsWithoutID(t *testing.T) {
	input := sellHeader + "\n" +
		`,Magic,Alpha,No Id Card,Rare,$1.00,1` + "\n" +
		`0,Magic,Alpha,Zero Id Card,Rare,$1.00,1` + "\n" +
		`111,Magic,Alpha,Real Card,Rare,$1.00,1` + "\n"

	records, report, err := ReadSellCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Real Card", records[0].ProductName)
	assert.Equal(t, 2, report.SkippedNoID)
}

func TestReadSellCSV_SkipsNonMagicProductLines(t *testing.T) {
	input := sellHeader + "\n" +
		`111,Pokemon,Base Set,Charizard,Rare,$400.00,1` + "\n" +
		`222,Magic: The Gathering,Alpha,Black Lotus,Rare,$25000.00,1` + "\n"

	records, report, err := ReadSellCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "222", records[0].ID)
	assert.Equal(t, 1, report.SkippedNonMagic)
}

func TestReadSellCSV_MissingColumns(t *testing.T) {
	input := "TCGplayer Id,Product Name\n123,Black Lotus\n"

	_, _, err := ReadSellCSV(strings.NewReader(input))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Set Name")
}

func TestReadSellCSV_Empty(t *testing.T) {
	_, _, err := ReadSellCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, common.ErrEmptyInventory)
}

func TestReadSellCSV_ToleratesBadNumbers(t *testing.T) {
	input := sellHeader + "\n" +
		`111,Magic,Alpha,Odd Row,Rare,not-a-price,many` + "\n"

	records, _, err := ReadSellCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].MarketPrice.IsZero())
	assert.Zero(t, records[0].Quantity)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$1,234.56", "1234.56"},
		{"12.5", "12.5"},
		{"$0.25", "0.25"},
		{"", "0"},
		{"n/a", "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePrice(tt.in).String(), "input %q", tt.in)
	}
}

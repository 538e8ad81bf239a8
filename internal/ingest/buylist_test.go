package ingest

import (
	"strings"
	"testing"

	"cardmatch/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBuyList_JSONPWrapped(t *testing.T) {
	payload := `ckCardList([
		{"i": 101, "n": "Black Lotus", "e": "Alpha", "r": "Rare", "f": false, "p": 20000.0, "q": 1, "u": "https://img.example/lotus.jpg"},
		{"i": "102", "n": "Goblin Guide", "e": "Zendikar", "r": "Rare", "f": 1, "p": "8.50", "q": "12"}
	]);`

	records, err := ReadBuyList(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, records, 2)

	lotus := records[0]
	assert.Equal(t, "101", lotus.ID)
	assert.Equal(t, "Black Lotus", lotus.CardName)
	assert.Equal(t, "Alpha", lotus.Edition)
	assert.False(t, lotus.Foil)
	assert.Equal(t, "20000", lotus.Price.String())
	assert.Equal(t, 1, lotus.Quantity)
	assert.Equal(t, "https://img.example/lotus.jpg", lotus.ImageURL)

	guide := records[1]
	assert.Equal(t, "102", guide.ID)
	assert.True(t, guide.Foil, "numeric 1 must coerce to foil")
	assert.Equal(t, "8.5", guide.Price.String())
	assert.Equal(t, 12, guide.Quantity)
}

func TestReadBuyList_BareJSON(t *testing.T) {
	payload := `[{"i": "1", "n": "Card"}]`

	records, err := ReadBuyList(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Card", records[0].CardName)
}

func TestReadBuyList_SkipsRecordsWithoutID(t *testing.T) {
	payload := `[{"n": "No Id"}, {"i": "", "n": "Empty Id"}, {"i": "1", "n": "Kept"}]`

	records, err := ReadBuyList(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Kept", records[0].CardName)
}

func TestReadBuyList_InvalidPayload(t *testing.T) {
	_, err := ReadBuyList(strings.NewReader("not json at all"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestStripJSONP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"named callback", `ckCardList([1]);`, `[1]`},
		{"generic parens", `([1])`, `[1]`},
		{"bare payload", `[1]`, `[1]`},
		{"surrounding whitespace", "  ckCardList([]);\n", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripJSONP(tt.in))
		})
	}
}

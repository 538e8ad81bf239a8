package match

import (
	"testing"

	"cardmatch/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestComposeSell(t *testing.T) {
	rec := model.SellRecord{
		ProductName: "Lightning Bolt (Foil)",
		SetName:     "Double Masters",
		Rarity:      "Uncommon",
	}

	tests := []struct {
		name string
		cfg  FeatureConfig
		want string
	}{
		{
			name: "all features",
			cfg:  DefaultFeatureConfig(),
			want: "lightning bolt foil double masters uncommon foil",
		},
		{
			name: "names only",
			cfg:  FeatureConfig{UseNames: true},
			want: "lightning bolt foil",
		},
		{
			name: "no features yields empty",
			cfg:  FeatureConfig{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComposeSell(rec, tt.cfg))
		})
	}
}

func TestComposeSellSkipsEmptyFields(t *testing.T) {
	rec := model.SellRecord{ProductName: "Sol Ring"}
	got := ComposeSell(rec, DefaultFeatureConfig())
	assert.Equal(t, "sol ring nonfoil", got, "empty set and rarity must not leave extra spaces")
}

func TestComposeBuyUsesExplicitFoilFlag(t *testing.T) {
	rec := model.BuyRecord{
		CardName: "Lightning Bolt",
		Edition:  "Double Masters",
		Rarity:   "Uncommon",
		Foil:     true,
	}
	got := ComposeBuy(rec, DefaultFeatureConfig())
	assert.Equal(t, "lightning bolt double masters uncommon foil", got)

	rec.Foil = false
	got = ComposeBuy(rec, DefaultFeatureConfig())
	assert.Equal(t, "lightning bolt double masters uncommon nonfoil", got)
}

func TestComposeAllPreservesOrder(t *testing.T) {
	sells := []model.SellRecord{
		{ProductName: "Alpha"},
		{ProductName: "Beta"},
	}
	texts := ComposeSellAll(sells, FeatureConfig{UseNames: true})
	assert.Equal(t, []string{"alpha", "beta"}, texts)
}

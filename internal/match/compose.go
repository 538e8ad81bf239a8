package match

import (
	"strings"

	"cardmatch/internal/model"
)

// FeatureConfig selects which attributes contribute to the composite
// matching text. The zero value disables everything; use
// DefaultFeatureConfig for the standard set.
type FeatureConfig struct {
	UseNames      bool
	UseSetNames   bool
	UseRarity     bool
	UseFoilStatus bool
}

// DefaultFeatureConfig enables every feature.
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		UseNames:      true,
		UseSetNames:   true,
		UseRarity:     true,
		UseFoilStatus: true,
	}
}

// ComposeSell builds the composite matching text for a sell record.
// Components appear in a fixed order (name, set, rarity, foil) so output is
// deterministic. An empty result is valid and scores zero against everything.
func ComposeSell(r model.SellRecord, cfg FeatureConfig) string {
	parts := make([]string, 0, 4)
	if cfg.UseNames {
		parts = append(parts, Normalize(r.ProductName))
	}
	if cfg.UseSetNames {
		parts = append(parts, Normalize(r.SetName))
	}
	if cfg.UseRarity {
		parts = append(parts, Normalize(r.Rarity))
	}
	if cfg.UseFoilStatus {
		parts = append(parts, foilToken(DetectFoil(r.ProductName)))
	}
	return joinComposite(parts)
}

// ComposeBuy builds the composite matching text for a buy record. Buy lists
// carry an explicit foil flag, so no keyword inference is needed.
func ComposeBuy(r model.BuyRecord, cfg FeatureConfig) string {
	parts := make([]string, 0, 4)
	if cfg.UseNames {
		parts = append(parts, Normalize(r.CardName))
	}
	if cfg.UseSetNames {
		parts = append(parts, Normalize(r.Edition))
	}
	if cfg.UseRarity {
		parts = append(parts, Normalize(r.Rarity))
	}
	if cfg.UseFoilStatus {
		parts = append(parts, foilToken(r.Foil))
	}
	return joinComposite(parts)
}

// ComposeSellAll maps ComposeSell over a full inventory.
func ComposeSellAll(records []model.SellRecord, cfg FeatureConfig) []string {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = ComposeSell(r, cfg)
	}
	return texts
}

// ComposeBuyAll maps ComposeBuy over a full inventory.
func ComposeBuyAll(records []model.BuyRecord, cfg FeatureConfig) []string {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = ComposeBuy(r, cfg)
	}
	return texts
}

func foilToken(foil bool) string {
	if foil {
		return "foil"
	}
	return "nonfoil"
}

func joinComposite(parts []string) string {
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

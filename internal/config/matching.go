// Package config provides configuration utilities for the application.
package config

import (
	"os"

	"cardmatch/internal/match"
	"cardmatch/internal/reconcile"

	"github.com/spf13/viper"
)

// DefaultDatabasePath is used when no database path is configured.
const DefaultDatabasePath = "$HOME/.local/share/cardmatch/cardmatch.db"

// DatabasePath resolves the SQLite database path from Viper configuration,
// falling back to the default location. Tilde and environment variables are
// expanded.
func DatabasePath() string {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = os.Getenv("CARDMATCH_DB_PATH")
	}
	if dbPath == "" {
		dbPath = DefaultDatabasePath
	}
	return ExpandPath(dbPath)
}

// LoadMatchOptions builds matching options from Viper configuration.
// Precedence follows Viper: flags bound by the command, then CARDMATCH_ env
// vars, then the config file, then the built-in defaults.
func LoadMatchOptions() reconcile.Options {
	opts := reconcile.DefaultOptions()

	if v := viper.GetFloat64("match.similarity_threshold"); v > 0 {
		opts.SimilarityThreshold = v
	}
	if viper.IsSet("match.matrix_threshold") {
		opts.MatrixThreshold = viper.GetFloat64("match.matrix_threshold")
	}
	if viper.IsSet("match.auto_accept_threshold") {
		opts.AutoAcceptThreshold = viper.GetFloat64("match.auto_accept_threshold")
	}
	if v := viper.GetInt("match.max_matches"); v > 0 {
		opts.MaxMatchesPerItem = v
	}
	if viper.IsSet("match.skip_decided") {
		opts.SkipDecided = viper.GetBool("match.skip_decided")
	}

	opts.Vectorizer = loadVectorizerConfig(opts.Vectorizer)
	opts.Features = loadFeatureConfig(opts.Features)

	return opts
}

func loadVectorizerConfig(cfg match.VectorizerConfig) match.VectorizerConfig {
	if v := viper.GetInt("vectorizer.max_features"); v > 0 {
		cfg.MaxFeatures = v
	}
	if v := viper.GetInt("vectorizer.ngram_min"); v > 0 {
		cfg.NGramMin = v
	}
	if v := viper.GetInt("vectorizer.ngram_max"); v > 0 {
		cfg.NGramMax = v
	}
	if v := viper.GetInt("vectorizer.min_doc_freq"); v > 0 {
		cfg.MinDocFreq = v
	}
	if v := viper.GetFloat64("vectorizer.max_doc_freq_ratio"); v > 0 {
		cfg.MaxDocFreqRatio = v
	}
	return cfg
}

func loadFeatureConfig(cfg match.FeatureConfig) match.FeatureConfig {
	if viper.IsSet("features.names") {
		cfg.UseNames = viper.GetBool("features.names")
	}
	if viper.IsSet("features.set_names") {
		cfg.UseSetNames = viper.GetBool("features.set_names")
	}
	if viper.IsSet("features.rarity") {
		cfg.UseRarity = viper.GetBool("features.rarity")
	}
	if viper.IsSet("features.foil_status") {
		cfg.UseFoilStatus = viper.GetBool("features.foil_status")
	}
	return cfg
}

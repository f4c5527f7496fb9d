package config

// Output format names accepted by ResultsConfig.Format.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Corpus.Root == "" {
		cfg.Corpus.Root = "./corpus"
	}
	if cfg.Scan.ContextWidth == 0 {
		cfg.Scan.ContextWidth = 30
	}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "./results"
	}
	if cfg.Results.Format == "" {
		cfg.Results.Format = FormatCSV
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}

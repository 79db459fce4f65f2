package config

// A catalog holds dataset, layer, metadata, and vocabulary records and is
// addressed over HTTP.
type catalogConfig struct {
	// the base URL at which the catalog is accessed
	URL string `yaml:"url"`
	// application identifiers used to scope list requests (e.g. gfw, rw)
	Applications []string `yaml:"applications"`
	// catalog environment searched by list requests (e.g. production)
	Environment string `yaml:"environment"`
	// number of records requested per page (capped at MaxPageSize)
	PageSize int `yaml:"page_size"`
}

// parameters for the CARTO SQL connector used by cartodb-backed datasets
type cartoConfig struct {
	// API key passed to the CARTO SQL endpoint (no key -> anonymous queries)
	APIKey string `yaml:"api_key"`
}

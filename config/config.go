package config

import (
	"fmt"
	"log"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// the largest page the catalog serves in a single request
const MaxPageSize = 1000

// global config variables
var Service serviceConfig
var Catalog catalogConfig
var Carto cartoConfig

// This struct performs the unmarshalling from the YAML config file and then
// copies its fields to the globals above.
type configFile struct {
	Service serviceConfig `yaml:"service"`
	Catalog catalogConfig `yaml:"catalog"`
	Carto   cartoConfig   `yaml:"carto"`
}

// This helper reads configuration data, returning an error indicating success
// or failure. All environment variables of the form ${ENV_VAR} are expanded.
func readConfig(bytes []byte) error {
	// Before we do anything else, expand any provided environment variables.
	bytes = []byte(os.ExpandEnv(string(bytes)))

	var conf configFile
	conf.Service.Port = 8080
	conf.Service.MaxConnections = 100
	conf.Catalog.PageSize = MaxPageSize
	err := yaml.Unmarshal(bytes, &conf)
	if err != nil {
		log.Printf("Couldn't parse configuration data: %s\n", err)
		return err
	}

	// copy the config data into place
	Service = conf.Service
	Catalog = conf.Catalog
	Carto = conf.Carto

	return err
}

// This helper validates the given service parameters, returning an
// error indicating success or failure.
func validateServiceParameters(params serviceConfig) error {
	if params.Port < 0 || params.Port > 65535 {
		return fmt.Errorf("Invalid port: %d (must be 0-65535)", params.Port)
	}
	if params.MaxConnections <= 0 {
		return fmt.Errorf("Invalid maxConnections: %d (must be positive)",
			params.MaxConnections)
	}
	return nil
}

// This helper validates the catalog parameters, returning an error that
// indicates success or failure.
func validateCatalogParameters(params catalogConfig) error {
	if params.URL == "" {
		return fmt.Errorf("No catalog URL was provided!")
	}
	u, err := url.ParseRequestURI(params.URL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("Invalid catalog URL: %s", params.URL)
	}
	if params.PageSize <= 0 || params.PageSize > MaxPageSize {
		return fmt.Errorf("Invalid catalog page size: %d (must be 1-%d)",
			params.PageSize, MaxPageSize)
	}
	if params.Environment == "" {
		return fmt.Errorf("No catalog environment was provided!")
	}
	if len(params.Applications) == 0 {
		return fmt.Errorf("No catalog applications were provided!")
	}
	return nil
}

// This helper validates the config globals, returning an error that indicates
// success or failure.
func validateConfig() error {
	err := validateServiceParameters(Service)
	if err != nil {
		return err
	}
	return validateCatalogParameters(Catalog)
}

// Initializes the catalog client configuration using the given YAML byte
// data.
func Init(yamlData []byte) error {

	// Read the configuration from our YAML data.
	err := readConfig(yamlData)
	if err != nil {
		return err
	}

	// Validate the configuration.
	err = validateConfig()
	return err
}

package config

// a type with service configuration parameters
type serviceConfig struct {
	// Port on which the search facade listens.
	Port int `json:"port" yaml:"port"`
	// Maximum number of allowed incoming connections.
	MaxConnections int `json:"max_connections" yaml:"max_connections"`
	// directory holding the mutation journal and the encrypted token file
	DataDirectory string `json:"data_directory" yaml:"data_directory"`
	// fernet key used to seal the API token file (base64, 32 bytes decoded)
	Secret string `json:"secret" yaml:"secret"`
}

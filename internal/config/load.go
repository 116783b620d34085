package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// NewViper returns a viper instance with the "::" key delimiter, which keeps
// dotted theme tokens like "status.error" as single keys.
func NewViper() *viper.Viper {
	return viper.NewWithOptions(viper.KeyDelimiter("::"))
}

// Decode unmarshals whatever v has read over Defaults and validates it.
func Decode(v *viper.Viper) (Config, error) {
	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return Defaults(), fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads and validates the config file at path.
func LoadFile(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Defaults(), fmt.Errorf("reading config: %w", err)
	}
	return Decode(v)
}

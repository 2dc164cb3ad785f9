package config

import (
	"encoding/json"
	"os"

	"floatbits/pkg/bitorder"

	"github.com/cockroachdb/errors"
)

// Config represents the configuration loaded from the JSON file
type Config struct {
	Values    []float32 `json:"values"`    // Values to encode
	Order     string    `json:"order"`     // Bit order: "msb" or "lsb"
	Delimiter string    `json:"delimiter"` // Separator between rendered bytes, empty for none
	DataPath  string    `json:"data_path"` // Encoding catalog directory, empty disables storage
}

// Default encodes the demonstration value with LSB-first bits and
// a space between bytes.
func Default() Config {
	return Config{
		Values:    []float32{15932.5497},
		Order:     "lsb",
		Delimiter: " ",
	}
}

// Load reads a JSON configuration file. Fields absent from the file keep
// their Default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config file")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) BitOrder() (bitorder.Order, error) {
	return bitorder.ParseOrder(c.Order)
}

// DelimiterByte returns the delimiter as a single byte, 0 when empty.
func (c Config) DelimiterByte() (byte, error) {
	switch len(c.Delimiter) {
	case 0:
		return 0, nil
	case 1:
		return c.Delimiter[0], nil
	default:
		return 0, errors.Newf("delimiter must be a single byte, got %q", c.Delimiter)
	}
}

func (c Config) Validate() error {
	if _, err := c.BitOrder(); err != nil {
		return err
	}
	if _, err := c.DelimiterByte(); err != nil {
		return err
	}
	return nil
}

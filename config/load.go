package config

import (
	"bytes"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// EnvPrefix prefixes environment overrides, e.g. HHW_GRID_XGRID=120.
const EnvPrefix = "HHW"

// ErrInvalidConfig wraps every decoding and validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// FromFile loads path over the defaults. An empty path yields the defaults
// with environment overrides applied.
func FromFile(path string) (*Scenario, error) {
	if path == "" {
		return FromReader(bytes.NewReader(nil), Default())
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrapf(err, "expanding %s", path)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, errors.Wrap(err, "opening scenario")
	}
	defer f.Close() //nolint:errcheck
	return FromReader(f, Default())
}

// FromReader decodes TOML from reader on top of def, then applies
// environment overrides.
func FromReader(reader io.Reader, def *Scenario) (*Scenario, error) {
	cfg := def
	if _, err := toml.NewDecoder(reader).Decode(cfg); err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "processing env vars overrides: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the case table; model parameters are checked when the
// scenario is priced.
func (s *Scenario) Validate() error {
	c := s.Cases
	switch {
	case len(c.Correlations) == 0 || len(c.TimeGrids) == 0:
		return errors.Wrap(ErrInvalidConfig, "no cases")
	case len(c.Published) != 0 && len(c.Published) != len(c.Correlations):
		return errors.Wrapf(ErrInvalidConfig, "%d published prices for %d correlations", len(c.Published), len(c.Correlations))
	case c.Tolerance < 0:
		return errors.Wrapf(ErrInvalidConfig, "negative tolerance %v", c.Tolerance)
	case len(s.Market.ZeroTenors) != len(s.Market.ZeroRates):
		return errors.Wrapf(ErrInvalidConfig, "%d zero tenors for %d rates", len(s.Market.ZeroTenors), len(s.Market.ZeroRates))
	}
	return nil
}

// Bytes encodes the scenario as TOML.
func Bytes(s *Scenario) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(s); err != nil {
		return nil, errors.Wrap(err, "encoding scenario")
	}
	return buf.Bytes(), nil
}

package replacement

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// A Config describes an engine in a YAML experiment file. The variant names
// one of the preset builders; every other field is optional and overrides
// the preset's value when nonzero.
type Config struct {
	Variant string `yaml:"variant"`

	NumSets int   `yaml:"num_sets,omitempty"`
	NumWays int   `yaml:"num_ways,omitempty"`
	RRPVMax uint8 `yaml:"rrpv_max,omitempty"`

	SignatureBits   int    `yaml:"signature_bits,omitempty"`
	SHiPDecayPeriod uint64 `yaml:"ship_decay_period,omitempty"`
	StreamThreshold uint8  `yaml:"stream_threshold,omitempty"`
	DeadDecayPeriod uint64 `yaml:"dead_decay_period,omitempty"`
	LeaderSets      int    `yaml:"leader_sets,omitempty"`
	NearMRUOdds     int    `yaml:"near_mru_odds,omitempty"`
	Seed            int64  `yaml:"seed,omitempty"`
}

var variantBuilders = map[string]func() Builder{
	"srrip":  SRRIPBuilder,
	"brrip":  BRRIPBuilder,
	"drrip":  DRRIPBuilder,
	"dip":    DIPBuilder,
	"hybrid": HybridBuilder,
}

// LoadConfig reads an engine configuration from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if c.Variant == "" {
		c.Variant = "hybrid"
	}

	if _, ok := variantBuilders[c.Variant]; !ok {
		return Config{}, fmt.Errorf("unknown variant %q", c.Variant)
	}

	return c, nil
}

// Builder turns the configuration into a builder, starting from the named
// variant preset and applying the overrides.
func (c Config) Builder() (Builder, error) {
	makeBuilder, ok := variantBuilders[c.Variant]
	if !ok {
		return Builder{}, fmt.Errorf("unknown variant %q", c.Variant)
	}

	b := makeBuilder()

	if c.NumSets != 0 {
		b = b.WithNumSets(c.NumSets)
	}

	if c.NumWays != 0 {
		b = b.WithNumWays(c.NumWays)
	}

	if c.RRPVMax != 0 {
		b = b.WithRRPVMax(c.RRPVMax)
	}

	if c.SignatureBits != 0 {
		b = b.WithSignatureBits(c.SignatureBits)
	}

	if c.SHiPDecayPeriod != 0 {
		b = b.WithSHiPDecayPeriod(c.SHiPDecayPeriod)
	}

	if c.StreamThreshold != 0 {
		b = b.WithStreamThreshold(c.StreamThreshold)
	}

	if c.DeadDecayPeriod != 0 {
		b = b.WithDeadDecayPeriod(c.DeadDecayPeriod)
	}

	if c.LeaderSets != 0 {
		b = b.WithLeaderSets(c.LeaderSets)
	}

	if c.NearMRUOdds != 0 {
		b = b.WithNearMRUOdds(c.NearMRUOdds)
	}

	if c.Seed != 0 {
		b = b.WithSeed(c.Seed)
	}

	return b, nil
}

package cli

import (
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/circlegraph/pkg/errors"
	"github.com/matzehuels/circlegraph/pkg/pipeline"
)

// runConfig is the TOML config file layout. Pipeline options sit at the top
// level next to the input paths, so one file can describe a whole run:
//
//	matrix = "group_a.csv"
//	atlas = "atlas.csv"
//	out = "figures"
//	thresholds = ["0.2", "0.3"]
//	title = "Group A"
//	formats = ["png", "svg"]
type runConfig struct {
	Matrix string `toml:"matrix"`
	Atlas  string `toml:"atlas"`
	pipeline.Options
}

// loadConfig decodes a run config. Unknown keys are rejected so that typos
// do not silently fall back to defaults.
func loadConfig(path string) (runConfig, error) {
	var cfg runConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return runConfig{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return runConfig{}, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

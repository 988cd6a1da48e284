// Package config normalizes a raw JSON configuration into a typed
// Config, resolving the input file set, applying defaults, and (when
// required) running the Inference Engine to fill in missing bounds,
// schema, or point-count fields. Ported from entwine::ConfigParser
// (original_source/entwine/tree/config-parser.cpp), following the
// teacher's convention of parsing raw input into a typed options
// struct (main.go's tiler.TilerOptions{...} construction).
package config

// defaults is applied key-by-key: a key already present in the raw map
// is left untouched. Ported from entwine::ConfigParser::defaults.
var defaults = map[string]interface{}{
	"input":          nil,
	"output":         nil,
	"tmp":            "tmp",
	"threads":        float64(8),
	"trustHeaders":   true,
	"prefixIds":      false,
	"pointsPerChunk": float64(262144),
	"numPointsHint":  nil,
	"bounds":         nil,
	"schema":         nil,
	"compress":       true,
	"nullDepth":      float64(7),
	"baseDepth":      float64(10),
}

// ApplyDefaults returns a copy of raw with every key in the defaults
// table present, never overwriting a key raw already specifies.
// Numeric defaults are float64 to match encoding/json's unmarshaling of
// JSON numbers into interface{}, so a caller comparing against a
// just-applied default doesn't need to special-case the literal type.
func ApplyDefaults(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw)+len(defaults))
	for k, v := range raw {
		out[k] = v
	}
	for k, v := range defaults {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

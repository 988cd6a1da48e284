package config

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hobu-go/entwine/internal/geometry"
)

// Parse decodes a raw JSON configuration document into the
// map[string]interface{} shape ApplyDefaults and Normalize operate on.
// Kept as a stateless package-level function rather than a reader
// object, matching entwine::ConfigParser's static methods.
func Parse(data []byte) (map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, invalid("malformed JSON: %v", err)
	}
	return raw, nil
}

func asBool(v interface{}, def bool) bool {
	if v == nil {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

func asUint(v interface{}, def uint64) uint64 {
	if v == nil {
		return def
	}
	f, ok := v.(float64)
	if !ok {
		return def
	}
	return uint64(f)
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

// asScalarComponent parses one scale/offset component. A string is
// parsed with decimal.NewFromString rather than rejected, so a config
// author who writes "scale": ["0.001", "0.001", "0.001"] to dodge
// binary-float round-off gets an exact parse instead of silently
// falling back to 0. Plain JSON numbers (float64 after encoding/json
// decoding) go through decimal.NewFromFloat; any other type is an error.
func asScalarComponent(v interface{}) (float64, error) {
	switch t := v.(type) {
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return 0, fmt.Errorf("not a valid decimal number: %q", t)
		}
		return d.InexactFloat64(), nil
	case float64:
		d := decimal.NewFromFloat(t)
		return d.InexactFloat64(), nil
	default:
		return 0, fmt.Errorf("expected a number or decimal string, got %T", t)
	}
}

// asPoint3 parses a JSON array of exactly three scalar components into
// a geometry.Point. Used for "scale" and "offset".
func asPoint3(v interface{}, field string) (*geometry.Point, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 3 {
		return nil, invalid("%q must be a 3-element array", field)
	}
	x, err := asScalarComponent(arr[0])
	if err != nil {
		return nil, invalid("%q[0]: %v", field, err)
	}
	y, err := asScalarComponent(arr[1])
	if err != nil {
		return nil, invalid("%q[1]: %v", field, err)
	}
	z, err := asScalarComponent(arr[2])
	if err != nil {
		return nil, invalid("%q[2]: %v", field, err)
	}
	return &geometry.Point{X: x, Y: y, Z: z}, nil
}

// asBounds parses a JSON array of exactly six numbers
// ([minX,minY,minZ,maxX,maxY,maxZ]) into a geometry.Bounds.
func asBounds(v interface{}) (*geometry.Bounds, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 6 {
		return nil, invalid(`"bounds" must be a 6-element [minX,minY,minZ,maxX,maxY,maxZ] array`)
	}
	vals := make([]float64, 6)
	for i, elem := range arr {
		f, ok := elem.(float64)
		if !ok {
			return nil, invalid(`"bounds"[%d] must be a number`, i)
		}
		vals[i] = f
	}
	return &geometry.Bounds{
		Min: geometry.Point{X: vals[0], Y: vals[1], Z: vals[2]},
		Max: geometry.Point{X: vals[3], Y: vals[4], Z: vals[5]},
	}, nil
}

// asSchema parses a JSON array of dimension objects
// ({"name","type","size"}) into a geometry.Schema.
func asSchema(v interface{}) (*geometry.Schema, error) {
	if v == nil {
		return nil, nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, invalid(`"schema" must be an array of dimension objects`)
	}
	dims := make([]geometry.DimInfo, 0, len(arr))
	for i, elem := range arr {
		m, ok := elem.(map[string]interface{})
		if !ok {
			return nil, invalid(`"schema"[%d] must be an object`, i)
		}
		name, _ := m["name"].(string)
		typ, _ := m["type"].(string)
		size, _ := m["size"].(float64)
		if name == "" || typ == "" || size <= 0 {
			return nil, invalid(`"schema"[%d] must have non-empty "name", "type" and a positive "size"`, i)
		}
		dims = append(dims, geometry.DimInfo{Name: name, BaseType: geometry.BaseType(typ), Size: int(size)})
	}
	schema := geometry.Schema{Dims: dims}
	return &schema, nil
}

func asReprojection(v interface{}) (*geometry.Reprojection, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, invalid(`"reprojection" must be an object`)
	}
	out := asString(m["out"])
	if out == "" {
		return nil, invalid(`"reprojection.out" is required when "reprojection" is present`)
	}
	return &geometry.Reprojection{
		In:     asString(m["in"]),
		Out:    out,
		Hammer: asBool(m["hammer"], false),
	}, nil
}

func asSubset(v interface{}) (*SubsetSpec, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, invalid(`"subset" must be an object with "id" and "of"`)
	}
	id, idOK := m["id"].(float64)
	of, ofOK := m["of"].(float64)
	if !idOK || !ofOK {
		return nil, invalid(`"subset" requires numeric "id" and "of"`)
	}
	return &SubsetSpec{ID: uint64(id), Of: uint64(of)}, nil
}

// asCesiumSettings reports the "formats.cesium" node, nil if absent.
func asCesiumSettings(v interface{}) map[string]interface{} {
	formats, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	cesium, ok := formats["cesium"].(map[string]interface{})
	if !ok {
		return nil
	}
	return cesium
}

package geometry

// BaseType is the fundamental storage type of a dimension's bytes.
type BaseType string

const (
	Floating BaseType = "floating"
	Signed   BaseType = "signed"
	Unsigned BaseType = "unsigned"
)

// DimInfo describes one named per-point attribute.
type DimInfo struct {
	Name     string   `json:"name"`
	BaseType BaseType `json:"type"`
	Size     int      `json:"size"`
}

// Schema is an ordered list of dimensions. Equality is by ordered dim
// list, which Go's struct/slice comparison via reflect.DeepEqual (or a
// manual loop, used here to avoid importing reflect for a hot-ish path)
// already gives us.
type Schema struct {
	Dims []DimInfo
}

// Stride is the sum of all dimension byte sizes: the per-point record size.
func (s Schema) Stride() int {
	total := 0
	for _, d := range s.Dims {
		total += d.Size
	}
	return total
}

// Equal reports whether s and other have the same ordered dimension list.
func (s Schema) Equal(other Schema) bool {
	if len(s.Dims) != len(other.Dims) {
		return false
	}
	for i, d := range s.Dims {
		if d != other.Dims[i] {
			return false
		}
	}
	return true
}

// Find returns the dimension named name, if present.
func (s Schema) Find(name string) (DimInfo, bool) {
	for _, d := range s.Dims {
		if d.Name == name {
			return d, true
		}
	}
	return DimInfo{}, false
}

// Append returns a new Schema with dims appended, leaving s untouched.
func (s Schema) Append(dims ...DimInfo) Schema {
	out := make([]DimInfo, 0, len(s.Dims)+len(dims))
	out = append(out, s.Dims...)
	out = append(out, dims...)
	return Schema{Dims: out}
}

// PointIDDim and OriginIDDim build the two trailing dimensions the Config
// Normalizer appends to an inferred schema. Sizes are chosen from
// maxPerFilePoints and fileCount respectively: 4 bytes up to 2^32-1, else 8.
func PointIDDim(maxPerFilePoints uint64) DimInfo {
	return DimInfo{Name: "PointId", BaseType: Unsigned, Size: sizeFor(maxPerFilePoints)}
}

func OriginIDDim(fileCount uint64) DimInfo {
	return DimInfo{Name: "OriginId", BaseType: Unsigned, Size: sizeFor(fileCount)}
}

func sizeFor(max uint64) int {
	const uint32Max = uint64(1)<<32 - 1
	if max <= uint32Max {
		return 4
	}
	return 8
}

// Package ply is the concrete reader.Reader implementation for the
// Stanford PLY point-cloud format, grounded on the teacher's PLY-backed
// read path (cesium_tiler consumes PLY point clouds as one of its
// principal inputs) and on the PLY wire format itself: a fixed ASCII
// header terminated by "end_header", followed by a vertex element body
// in either ascii, binary_little_endian, or binary_big_endian encoding.
//
// No retrieved example exercises github.com/cobaltgray/go-plyfile's call
// surface (its go.mod entry is never imported anywhere in the corpus),
// so its API could not be grounded; this package instead hand-rolls the
// header and body decoding against the PLY specification directly,
// matching the teacher's own precedent of a bespoke parser (tools/
// file_finder.go's manual directory walking) wherever no example shows
// a library's call shape. See DESIGN.md.
package ply

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hobu-go/entwine/internal/geometry"
	"github.com/hobu-go/entwine/internal/reader"
)

type property struct {
	name     string
	listType string // empty for a scalar property
	scalar   string
}

type element struct {
	name       string
	count      uint64
	properties []property
}

type header struct {
	format   string // "ascii", "binary_little_endian", "binary_big_endian"
	elements []element
	bodyOff  int64
}

// Reader decodes PLY point clouds.
type Reader struct{}

// New constructs a PLY reader.
func New() *Reader { return &Reader{} }

var _ reader.Reader = (*Reader)(nil)

func (r *Reader) Good(path string) bool {
	return strings.EqualFold(pathExt(path), ".ply")
}

func pathExt(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i:]
}

// Preview reads the PLY header and then scans every vertex once to
// compute real bounds: unlike LAS, a PLY header carries no stored
// bounding box to trust, so "trusting headers" for a PLY file can only
// mean trusting its declared vertex count, never its bounds. Skipping
// this scan would leave Bounds at the Expander sentinel for every PLY
// input, which fails the aggregate bounds check even under the
// default trustHeaders=true.
func (r *Reader) Preview(ctx context.Context, path string, reproj *geometry.Reprojection) (*reader.Preview, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	br := bufio.NewReader(f)
	h, err := parseHeader(br)
	if err != nil {
		return nil, nil
	}

	vertex := findElement(h, "vertex")
	if vertex == nil {
		return nil, nil
	}

	dimNames := make([]string, 0, len(vertex.properties))
	for _, p := range vertex.properties {
		dimNames = append(dimNames, canonicalDimName(p.name))
	}

	bounds := geometry.Expander
	err = scanVertices(ctx, br, h, vertex, path, func(p geometry.Point) error {
		bounds = bounds.Grow(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &reader.Preview{
		NumPoints: vertex.count,
		Bounds:    bounds,
		DimNames:  dimNames,
		Metadata:  map[string]interface{}{"plyFormat": h.format},
	}, nil
}

func (r *Reader) Run(ctx context.Context, sink reader.PointSink, path string, reproj *geometry.Reprojection, transform []float64) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, nil
	}
	defer f.Close()

	br := bufio.NewReader(f)
	h, err := parseHeader(br)
	if err != nil {
		return false, nil
	}

	vertex := findElement(h, "vertex")
	if vertex == nil {
		return false, nil
	}

	err = scanVertices(ctx, br, h, vertex, path, func(p geometry.Point) error {
		if len(transform) == 16 {
			p = applyMatrix(transform, p)
		}
		return sink(p)
	})
	if err != nil {
		return false, err
	}

	return true, nil
}

// scanVertices streams every vertex record in vertex, decoding x/y/z
// and calling fn once per point. Shared by Preview (bounds-only scan)
// and Run (full streaming scan, optionally applying a transform).
func scanVertices(ctx context.Context, br *bufio.Reader, h *header, vertex *element, path string, fn func(geometry.Point) error) error {
	xi, yi, zi := -1, -1, -1
	for i, p := range vertex.properties {
		switch canonicalDimName(p.name) {
		case "X":
			xi = i
		case "Y":
			yi = i
		case "Z":
			zi = i
		}
	}
	if xi < 0 || yi < 0 || zi < 0 {
		return fmt.Errorf("ply: %s: vertex element has no x/y/z properties", path)
	}

	for i := uint64(0); i < vertex.count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		values, err := readVertexRecord(br, h.format, vertex.properties)
		if err != nil {
			return fmt.Errorf("ply: %s: vertex %d: %w", path, i, err)
		}

		if err := fn(geometry.Point{X: values[xi], Y: values[yi], Z: values[zi]}); err != nil {
			return err
		}
	}

	return nil
}

func (r *Reader) Transform(b geometry.Bounds, matrix []float64) geometry.Bounds {
	if len(matrix) != 16 {
		return b
	}
	out := geometry.Expander
	corners := []geometry.Point{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
	for _, c := range corners {
		out = out.Grow(applyMatrix(matrix, c))
	}
	return out
}

func (r *Reader) DefaultDimensionType(name string) (geometry.BaseType, int, bool) {
	switch canonicalDimName(name) {
	case "X", "Y", "Z":
		return geometry.Floating, 8, true
	case "Red", "Green", "Blue", "Alpha", "Classification":
		return geometry.Unsigned, 1, true
	case "Intensity":
		return geometry.Unsigned, 2, true
	case "NormalX", "NormalY", "NormalZ":
		return geometry.Floating, 4, true
	default:
		return geometry.Floating, 8, false
	}
}

// canonicalDimName maps PLY's lowercase conventional vertex property
// names onto the schema's capitalized dimension names.
func canonicalDimName(name string) string {
	switch strings.ToLower(name) {
	case "x":
		return "X"
	case "y":
		return "Y"
	case "z":
		return "Z"
	case "red":
		return "Red"
	case "green":
		return "Green"
	case "blue":
		return "Blue"
	case "alpha":
		return "Alpha"
	case "intensity":
		return "Intensity"
	case "nx":
		return "NormalX"
	case "ny":
		return "NormalY"
	case "nz":
		return "NormalZ"
	case "class", "classification":
		return "Classification"
	default:
		return name
	}
}

func findElement(h *header, name string) *element {
	for i := range h.elements {
		if h.elements[i].name == name {
			return &h.elements[i]
		}
	}
	return nil
}

func applyMatrix(m []float64, p geometry.Point) geometry.Point {
	return geometry.Point{
		X: m[0]*p.X + m[1]*p.Y + m[2]*p.Z + m[3],
		Y: m[4]*p.X + m[5]*p.Y + m[6]*p.Z + m[7],
		Z: m[8]*p.X + m[9]*p.Y + m[10]*p.Z + m[11],
	}
}

func parseHeader(br *bufio.Reader) (*header, error) {
	line, err := readLine(br)
	if err != nil || line != "ply" {
		return nil, fmt.Errorf("ply: missing magic number")
	}

	h := &header{}
	var cur *element

	for {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "comment", "obj_info":
			continue
		case "format":
			if len(fields) < 2 {
				return nil, fmt.Errorf("ply: malformed format line")
			}
			h.format = fields[1]
		case "element":
			if len(fields) < 3 {
				return nil, fmt.Errorf("ply: malformed element line")
			}
			count, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("ply: element count: %w", err)
			}
			h.elements = append(h.elements, element{name: fields[1], count: count})
			cur = &h.elements[len(h.elements)-1]
		case "property":
			if cur == nil {
				return nil, fmt.Errorf("ply: property outside element")
			}
			if fields[1] == "list" {
				if len(fields) < 5 {
					return nil, fmt.Errorf("ply: malformed list property")
				}
				cur.properties = append(cur.properties, property{name: fields[4], listType: fields[3]})
			} else {
				if len(fields) < 3 {
					return nil, fmt.Errorf("ply: malformed property")
				}
				cur.properties = append(cur.properties, property{name: fields[2], scalar: fields[1]})
			}
		case "end_header":
			return h, nil
		default:
			return nil, fmt.Errorf("ply: unrecognized header line %q", line)
		}
	}
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func scalarSize(t string) int {
	switch t {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64", "int64", "uint64":
		return 8
	default:
		return 0
	}
}

func readVertexRecord(br *bufio.Reader, format string, props []property) ([]float64, error) {
	out := make([]float64, len(props))

	if format == "ascii" {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		for i := range props {
			if i >= len(fields) {
				return nil, fmt.Errorf("short vertex record")
			}
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	var order binary.ByteOrder = binary.LittleEndian
	if format == "binary_big_endian" {
		order = binary.BigEndian
	}

	for i, p := range props {
		if p.listType != "" {
			return nil, fmt.Errorf("list properties unsupported in vertex element (%s)", p.name)
		}
		size := scalarSize(p.scalar)
		if size == 0 {
			return nil, fmt.Errorf("unsupported property type %q", p.scalar)
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, err
		}
		out[i] = decodeScalar(p.scalar, buf, order)
	}
	return out, nil
}

func decodeScalar(scalarType string, buf []byte, order binary.ByteOrder) float64 {
	r := bytes.NewReader(buf)
	switch scalarType {
	case "float", "float32":
		var v float32
		binary.Read(r, order, &v)
		return float64(v)
	case "double", "float64":
		var v float64
		binary.Read(r, order, &v)
		return v
	case "char", "int8":
		return float64(int8(buf[0]))
	case "uchar", "uint8":
		return float64(buf[0])
	case "short", "int16":
		return float64(int16(order.Uint16(buf)))
	case "ushort", "uint16":
		return float64(order.Uint16(buf))
	case "int", "int32":
		return float64(int32(order.Uint32(buf)))
	case "uint", "uint32":
		return float64(order.Uint32(buf))
	case "int64":
		return float64(int64(order.Uint64(buf)))
	case "uint64":
		return float64(order.Uint64(buf))
	default:
		return 0
	}
}

package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
)

// GeometryOptions names the attributes holding the department code and name.
// GeoJSON files use the properties, shapefiles the DBF fields.
type GeometryOptions struct {
	CodeProperty string `yaml:"code_property"`
	NameProperty string `yaml:"name_property"`
	CodeField    string `yaml:"code_field"`
	NameField    string `yaml:"name_field"`
}

// DefaultGeometryOptions matches the france-geojson departements file and the
// OpenStreetMap departements shapefile.
func DefaultGeometryOptions() GeometryOptions {
	return GeometryOptions{
		CodeProperty: "code",
		NameProperty: "nom",
		CodeField:    "code_insee",
		NameField:    "nom",
	}
}

// LoadGeometry reads department boundaries from a GeoJSON feature collection
// or, for a .shp path, from an ESRI shapefile.
func LoadGeometry(path string, opts GeometryOptions) ([]DepartmentGeometry, error) {
	var (
		geoms []DepartmentGeometry
		err   error
	)
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		geoms, err = loadShapefile(path, opts)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
		}
		geoms, err = ParseGeoJSON(data, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, path, err)
	}
	return geoms, nil
}

// ParseGeoJSON decodes a FeatureCollection with one feature per department.
func ParseGeoJSON(data []byte, opts GeometryOptions) ([]DepartmentGeometry, error) {
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("no features")
	}

	geoms := make([]DepartmentGeometry, 0, len(fc.Features))
	for i, f := range fc.Features {
		code := NormalizeDepartment(propertyString(f.Properties, opts.CodeProperty))
		if code == "" {
			return nil, fmt.Errorf("feature %d: missing %q property", i, opts.CodeProperty)
		}
		g, err := newDepartmentGeometry(code, propertyString(f.Properties, opts.NameProperty), f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d (%s): %w", i, code, err)
		}
		geoms = append(geoms, g)
	}
	sortGeometries(geoms)
	return geoms, nil
}

func newDepartmentGeometry(code, name string, g geom.T) (DepartmentGeometry, error) {
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
	case nil:
		return DepartmentGeometry{}, fmt.Errorf("no geometry")
	default:
		return DepartmentGeometry{}, fmt.Errorf("unsupported geometry %T", g)
	}
	centroid, err := xy.Centroid(g)
	if err != nil {
		return DepartmentGeometry{}, fmt.Errorf("centroid: %w", err)
	}
	return DepartmentGeometry{Code: code, Name: name, Geometry: g, Centroid: centroid}, nil
}

// propertyString reads a property that may have been encoded as a string or a
// number ("1" and 1 both appear in the wild).
func propertyString(props map[string]interface{}, key string) string {
	if key == "" {
		return ""
	}
	switch v := props[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	}
	return ""
}

func sortGeometries(geoms []DepartmentGeometry) {
	sort.Slice(geoms, func(i, j int) bool {
		return geoms[i].Code < geoms[j].Code
	})
}

// Polygons returns the rings of each polygon of a polygonal geometry, outer
// ring first. Outer rings are wound counter-clockwise and holes clockwise, so
// filling all rings of a polygon as one path under the nonzero rule leaves the
// holes empty.
func Polygons(g geom.T) [][][]geom.Coord {
	var polys [][][]geom.Coord
	addPolygon := func(p *geom.Polygon) {
		rings := make([][]geom.Coord, 0, p.NumLinearRings())
		for i := 0; i < p.NumLinearRings(); i++ {
			lr := p.LinearRing(i)
			rings = append(rings, orient(lr.Coords(), xy.SignedArea(lr.Layout(), lr.FlatCoords()), i == 0))
		}
		polys = append(polys, rings)
	}
	switch v := g.(type) {
	case *geom.Polygon:
		addPolygon(v)
	case *geom.MultiPolygon:
		for i := 0; i < v.NumPolygons(); i++ {
			addPolygon(v.Polygon(i))
		}
	}
	return polys
}

// orient reverses ring when its winding is wrong for its role. A positive
// signed area is clockwise.
func orient(ring []geom.Coord, signedArea float64, outer bool) []geom.Coord {
	clockwise := signedArea > 0
	if clockwise != outer {
		return ring
	}
	out := make([]geom.Coord, len(ring))
	for i, c := range ring {
		out[len(ring)-1-i] = c
	}
	return out
}

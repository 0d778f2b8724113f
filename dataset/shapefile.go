package dataset

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// loadShapefile reads polygon shapes and their DBF attributes. Each shape
// becomes a MultiPolygon.
func loadShapefile(path string, opts GeometryOptions) ([]DepartmentGeometry, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	defer r.Close()

	codeIdx, nameIdx := -1, -1
	for i, f := range r.Fields() {
		switch strings.TrimSpace(f.String()) {
		case opts.CodeField:
			codeIdx = i
		case opts.NameField:
			nameIdx = i
		}
	}
	if codeIdx < 0 {
		return nil, fmt.Errorf("missing %q field", opts.CodeField)
	}

	var geoms []DepartmentGeometry
	for r.Next() {
		n, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}
		code := NormalizeDepartment(attribute(r, n, codeIdx))
		if code == "" {
			return nil, fmt.Errorf("shape %d: empty %q", n, opts.CodeField)
		}
		var name string
		if nameIdx >= 0 {
			name = attribute(r, n, nameIdx)
		}
		mp, err := shapeToMultiPolygon(poly)
		if err != nil {
			return nil, fmt.Errorf("shape %d (%s): %w", n, code, err)
		}
		g, err := newDepartmentGeometry(code, name, mp)
		if err != nil {
			return nil, fmt.Errorf("shape %d (%s): %w", n, code, err)
		}
		geoms = append(geoms, g)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile: %w", err)
	}
	if len(geoms) == 0 {
		return nil, fmt.Errorf("no polygon shapes")
	}
	sortGeometries(geoms)
	return geoms, nil
}

// attribute reads a DBF cell. Writers pad with spaces or NUL bytes.
func attribute(r *shp.Reader, row, field int) string {
	return strings.Trim(r.ReadAttribute(row, field), " \x00")
}

// shapeToMultiPolygon rebuilds the polygons of a shape from its parts.
// Shapefiles wind outer rings clockwise and holes counter-clockwise; each hole
// goes to the first outer ring containing it. Flat rings are dropped.
func shapeToMultiPolygon(p *shp.Polygon) (*geom.MultiPolygon, error) {
	var outers, holes [][]geom.Coord
	for i := range p.Parts {
		start := int(p.Parts[i])
		end := len(p.Points)
		if i+1 < len(p.Parts) {
			end = int(p.Parts[i+1])
		}
		if end-start < 4 {
			continue
		}
		ring := make([]geom.Coord, 0, end-start)
		for _, pt := range p.Points[start:end] {
			ring = append(ring, geom.Coord{pt.X, pt.Y})
		}
		switch area := xy.SignedArea(geom.XY, flatCoords(ring)); {
		case area > 0:
			outers = append(outers, ring)
		case area < 0:
			holes = append(holes, ring)
		}
	}
	// Some writers ignore winding and emit counter-clockwise shells only.
	if len(outers) == 0 {
		outers, holes = holes, nil
	}

	polys := make([][][]geom.Coord, len(outers))
	flatOuters := make([][]float64, len(outers))
	for i, o := range outers {
		polys[i] = [][]geom.Coord{o}
		flatOuters[i] = flatCoords(o)
	}
	for _, h := range holes {
		owner := -1
		for i, o := range flatOuters {
			if xy.IsPointInRing(geom.XY, h[0], o) {
				owner = i
				break
			}
		}
		if owner < 0 {
			polys = append(polys, [][]geom.Coord{h})
			continue
		}
		polys[owner] = append(polys[owner], h)
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for _, rings := range polys {
		poly, err := geom.NewPolygon(geom.XY).SetCoords(rings)
		if err != nil {
			return nil, err
		}
		if err := mp.Push(poly); err != nil {
			return nil, err
		}
	}
	if mp.NumPolygons() == 0 {
		return nil, fmt.Errorf("no rings")
	}
	return mp, nil
}

func flatCoords(ring []geom.Coord) []float64 {
	flat := make([]float64, 0, 2*len(ring))
	for _, c := range ring {
		flat = append(flat, c[0], c[1])
	}
	return flat
}

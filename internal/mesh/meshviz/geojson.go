package meshviz

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/banshee-data/meshpivot/internal/mesh/geom"
	"github.com/banshee-data/meshpivot/internal/mesh/pivot"
)

// ring closes pts into an orb.Ring.
func ring(pts []geom.Point2) orb.Ring {
	r := make(orb.Ring, 0, len(pts)+1)
	for _, p := range pts {
		r = append(r, orb.Point{p.X, p.Y})
	}
	if len(r) > 0 {
		r = append(r, r[0])
	}
	return r
}

// FootprintFeatures returns the hull and rectangle of r as GeoJSON
// features in object coordinates. Missing shapes are left out.
func FootprintFeatures(name string, r pivot.Result) []*geojson.Feature {
	var out []*geojson.Feature

	if len(r.Hull) > 0 {
		f := geojson.NewFeature(orb.Polygon{ring(r.Hull)})
		f.Properties["name"] = name
		f.Properties["kind"] = "hull"
		f.Properties["area"] = r.Hull.Area()
		f.Properties["wire_count"] = r.WireCount
		out = append(out, f)
	}
	if r.Rect.Valid() {
		c := r.Rect.Corners()
		f := geojson.NewFeature(orb.Polygon{ring(c[:])})
		f.Properties["name"] = name
		f.Properties["kind"] = "rect"
		f.Properties["area"] = r.Rect.Area
		f.Properties["angle"] = r.Angle()
		f.Properties["full_to_base_ratio"] = r.FullToBaseRatio
		out = append(out, f)
	}

	t := geojson.NewFeature(orb.Point{r.Translation.X, r.Translation.Y})
	t.Properties["name"] = name
	t.Properties["kind"] = "translation"
	t.Properties["z"] = r.Translation.Z
	out = append(out, t)
	return out
}

// FootprintCollection gathers the footprints of many named results.
func FootprintCollection(names []string, results []pivot.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, r := range results {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		fc.Features = append(fc.Features, FootprintFeatures(name, r)...)
	}
	return fc
}

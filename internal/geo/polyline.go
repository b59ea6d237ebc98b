package geo

import (
	"fmt"
	"strconv"

	"github.com/waymark-app/waymark/internal/model"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// ROUTE GEOMETRY
// The map widget draws the travel line between points in their slice order.
// Geometry is built in 4326 (lon/lat) and projected to 3857 for marker
// placement and length measurement, since web map tiles live in Mercator.

// ProjectWebMercator converts a WGS84 lat/lon pair to EPSG:3857 coordinates.
func ProjectWebMercator(lat, lon float64) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(lon, lat, 0)
	return x, y
}

func pointXY(p model.Point) (geom.XY, error) {
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return geom.XY{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return geom.XY{}, ErrInvalidCoordinates
	}
	return geom.XY{X: lon, Y: lat}, nil
}

// RouteLine builds the lon/lat LineString connecting the route's points in
// travel order. Routes with fewer than two points have no line.
func RouteLine(points []model.Point) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, fmt.Errorf("route line needs at least 2 points, got %d", len(points))
	}

	flat := make([]float64, 0, len(points)*2)
	for i, p := range points {
		xy, err := pointXY(p)
		if err != nil {
			return geom.LineString{}, fmt.Errorf("point %d: %w", i, err)
		}
		flat = append(flat, xy.X, xy.Y)
	}

	seq := geom.NewSequence(flat, geom.DimXY)
	return geom.NewLineString(seq), nil
}

// RouteLineWebMercator builds the 3857-projected travel line.
func RouteLineWebMercator(points []model.Point) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, fmt.Errorf("route line needs at least 2 points, got %d", len(points))
	}

	flat := make([]float64, 0, len(points)*2)
	for i, p := range points {
		xy, err := pointXY(p)
		if err != nil {
			return geom.LineString{}, fmt.Errorf("point %d: %w", i, err)
		}
		x, y := ProjectWebMercator(xy.Y, xy.X)
		flat = append(flat, x, y)
	}

	seq := geom.NewSequence(flat, geom.DimXY)
	return geom.NewLineString(seq), nil
}

// RouteLengthMeters measures the projected travel line. Zero for routes with
// fewer than two points.
func RouteLengthMeters(points []model.Point) float64 {
	ls, err := RouteLineWebMercator(points)
	if err != nil {
		return 0
	}
	return ls.Length()
}

// Package mapview derives the render model the map widget consumes from the
// application state: which markers to place, whether to draw the travel
// line, and what each marker's hover card shows. Pure; no I/O and no state
// mutation.
package mapview

import (
	"github.com/waymark-app/waymark/internal/geo"
	"github.com/waymark-app/waymark/internal/limits"
	"github.com/waymark-app/waymark/internal/model"
	"github.com/waymark-app/waymark/internal/store"
	"github.com/waymark-app/waymark/internal/util"
)

// maxThumbnails is how many images a hover card shows before collapsing the
// rest into a "+N" overflow badge.
const maxThumbnails = 3

// maxHoverDescription bounds the hover card description length.
const maxHoverDescription = 120

// Hover is the card shown when the cursor rests on a marker.
type Hover struct {
	Name        string
	Description string
	LatDMS      string
	LonDMS      string
	Thumbnails  []string
	// MoreImages is how many images did not fit into Thumbnails.
	MoreImages int
}

// Marker is one numbered map pin. Number is the 1-based travel order.
type Marker struct {
	Number int
	Lat    string
	Lon    string
	Hover  Hover
}

// Scene is everything the map widget needs for one render.
type Scene struct {
	Markers  []Marker
	DrawLine bool
	// LineWKT is the 4326 lon/lat travel line, empty when DrawLine is false.
	LineWKT string
	// LengthMeters is measured on the Mercator-projected line.
	LengthMeters float64
	// Preview is set when the scene shows a hovered list entry rather than
	// the route under edit.
	Preview bool
}

// Build derives the scene from the current state. A hovered list entry wins
// over the route under edit; with neither, the map is empty.
func Build(state store.State) Scene {
	route, preview := activeRoute(state)
	if route == nil {
		return Scene{Markers: []Marker{}}
	}

	markers := make([]Marker, 0, len(route.Points))
	placeable := make([]model.Point, 0, len(route.Points))
	for _, p := range route.Points {
		if valid, _ := geo.ValidateCoordinates(p.Lat, p.Lon); !valid {
			// a point mid-edit may not have coordinates yet
			continue
		}
		placeable = append(placeable, p)
		markers = append(markers, Marker{
			Number: len(markers) + 1,
			Lat:    p.Lat,
			Lon:    p.Lon,
			Hover:  buildHover(p),
		})
	}

	scene := Scene{
		Markers: markers,
		Preview: preview,
	}
	if len(placeable) >= 2 {
		if line, err := geo.RouteLine(placeable); err == nil {
			scene.DrawLine = true
			scene.LineWKT = line.AsText()
			scene.LengthMeters = geo.RouteLengthMeters(placeable)
		}
	}
	return scene
}

// activeRoute picks what the map shows. Hover previews only apply on the
// main list; any open form shows the route under edit.
func activeRoute(state store.State) (*model.Route, bool) {
	if state.UIMode == store.ModeMainList && state.PreviewRoute != nil {
		return state.PreviewRoute, true
	}
	if state.CurrentRoute != nil {
		return state.CurrentRoute, false
	}
	return nil, false
}

func buildHover(p model.Point) Hover {
	h := Hover{
		Name:        p.Name,
		Description: util.TruncateText(p.Description, maxHoverDescription),
		LatDMS:      geo.DecimalStringToDMS(p.Lat),
		LonDMS:      geo.DecimalStringToDMS(p.Lon),
		Thumbnails:  []string{},
	}
	for _, img := range p.Images {
		if len(h.Thumbnails) == maxThumbnails {
			break
		}
		h.Thumbnails = append(h.Thumbnails, img.Src)
	}
	if len(p.Images) > maxThumbnails {
		h.MoreImages = len(p.Images) - maxThumbnails
	}
	return h
}

// RemainingImageSlots reports how many more photos the point can take, for
// the picker hint next to the thumbnails.
func RemainingImageSlots(p model.Point) int {
	return util.RemainingCount(len(p.Images), limits.MaxImagesPerPoint())
}

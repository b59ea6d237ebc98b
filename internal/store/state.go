// Package store holds the single application state and the pure transition
// function that advances it. No action performs I/O; the lifecycle handlers
// do the backend work and dispatch plain actions here.
package store

import "github.com/waymark-app/waymark/internal/model"

// UIMode enumerates the screens of the application. Exactly one is active;
// it gates which forms render and how map clicks are interpreted.
type UIMode string

const (
	ModeMainList         UIMode = "MAIN_LIST"
	ModeCreateRoute      UIMode = "CREATE_ROUTE"
	ModeEditRoute        UIMode = "EDIT_ROUTE"
	ModeCreatePoint      UIMode = "CREATE_POINT"
	ModeEditPoint        UIMode = "EDIT_POINT"
	ModeViewRouteDetails UIMode = "VIEW_ROUTE_DETAILS"
)

// State is the whole application state. It is copied by value through the
// reducer; routes and points inside it are only ever replaced, not mutated.
type State struct {
	Routes          []model.Route
	CurrentRoute    *model.Route
	PreviewRoute    *model.Route
	PointToEdit     *model.PointDraft
	TempPointCoords *model.Coords
	UIMode          UIMode
	IsLoading       bool
	Err             string
	// WaitingForCoordinates is set while the next map click is expected to
	// supply coordinates for a new point.
	WaitingForCoordinates bool
	// QuickCreateMode is set when a route+point were started directly from a
	// map click on the main list.
	QuickCreateMode bool
}

// Initial returns the state the application boots with. IsLoading starts
// true because the first route fetch is issued on mount.
func Initial() State {
	return State{
		Routes:    []model.Route{},
		UIMode:    ModeMainList,
		IsLoading: true,
	}
}

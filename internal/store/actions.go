package store

import "github.com/waymark-app/waymark/internal/model"

// ActionType names a state transition.
type ActionType string

const (
	ActionSetLoading               ActionType = "SET_LOADING"
	ActionSetError                 ActionType = "SET_ERROR"
	ActionFetchRoutesSuccess       ActionType = "FETCH_ROUTES_SUCCESS"
	ActionSetUIMode                ActionType = "SET_UI_MODE"
	ActionSetCurrentRoute          ActionType = "SET_CURRENT_ROUTE"
	ActionClearCurrentRoute        ActionType = "CLEAR_CURRENT_ROUTE"
	ActionSetPreviewRoute          ActionType = "SET_PREVIEW_ROUTE"
	ActionClearPreviewRoute        ActionType = "CLEAR_PREVIEW_ROUTE"
	ActionSetPointToEdit           ActionType = "SET_POINT_TO_EDIT"
	ActionClearPointToEdit         ActionType = "CLEAR_POINT_TO_EDIT"
	ActionSetTempPointCoords       ActionType = "SET_TEMP_POINT_COORDS"
	ActionSetWaitingForCoordinates ActionType = "SET_WAITING_FOR_COORDINATES"
	ActionSetQuickCreateMode       ActionType = "SET_QUICK_CREATE_MODE"
	ActionUpdateCurrentRoutePoints ActionType = "UPDATE_CURRENT_ROUTE_POINTS"
)

// Action carries a transition type and its payload. Only the fields relevant
// to the type are read.
type Action struct {
	Type   ActionType
	Flag   bool
	Err    string
	Mode   UIMode
	Route  *model.Route
	Routes []model.Route
	Draft  *model.PointDraft
	Coords *model.Coords
	Points []model.Point
}

// Action constructors, one per transition.

func SetLoading(v bool) Action {
	return Action{Type: ActionSetLoading, Flag: v}
}

func SetError(message string) Action {
	return Action{Type: ActionSetError, Err: message}
}

func FetchRoutesSuccess(routes []model.Route) Action {
	return Action{Type: ActionFetchRoutesSuccess, Routes: routes}
}

func SetUIMode(mode UIMode) Action {
	return Action{Type: ActionSetUIMode, Mode: mode}
}

func SetCurrentRoute(route *model.Route) Action {
	return Action{Type: ActionSetCurrentRoute, Route: route}
}

func ClearCurrentRoute() Action {
	return Action{Type: ActionClearCurrentRoute}
}

func SetPreviewRoute(route *model.Route) Action {
	return Action{Type: ActionSetPreviewRoute, Route: route}
}

func ClearPreviewRoute() Action {
	return Action{Type: ActionClearPreviewRoute}
}

func SetPointToEdit(draft *model.PointDraft) Action {
	return Action{Type: ActionSetPointToEdit, Draft: draft}
}

func ClearPointToEdit() Action {
	return Action{Type: ActionClearPointToEdit}
}

func SetTempPointCoords(coords *model.Coords) Action {
	return Action{Type: ActionSetTempPointCoords, Coords: coords}
}

func SetWaitingForCoordinates(v bool) Action {
	return Action{Type: ActionSetWaitingForCoordinates, Flag: v}
}

func SetQuickCreateMode(v bool) Action {
	return Action{Type: ActionSetQuickCreateMode, Flag: v}
}

func UpdateCurrentRoutePoints(points []model.Point) Action {
	return Action{Type: ActionUpdateCurrentRoutePoints, Points: points}
}

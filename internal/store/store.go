package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Reduce computes the next state for an action. It is pure and synchronous;
// unknown action types return the state unchanged rather than erroring, so a
// stray dispatch can never corrupt the session.
func Reduce(state State, action Action) State {
	switch action.Type {
	// loading and errors
	case ActionSetLoading:
		state.IsLoading = action.Flag
		return state

	case ActionSetError:
		state.Err = action.Err
		state.IsLoading = false
		return state

	// routes
	case ActionFetchRoutesSuccess:
		state.Routes = action.Routes
		state.IsLoading = false
		state.Err = ""
		return state

	case ActionSetCurrentRoute:
		state.CurrentRoute = action.Route
		return state

	case ActionClearCurrentRoute:
		state.CurrentRoute = nil
		state.PointToEdit = nil
		state.TempPointCoords = nil
		state.QuickCreateMode = false
		return state

	case ActionUpdateCurrentRoutePoints:
		if state.CurrentRoute == nil {
			return state
		}
		updated := *state.CurrentRoute
		updated.Points = action.Points
		state.CurrentRoute = &updated
		return state

	// route preview
	case ActionSetPreviewRoute:
		state.PreviewRoute = action.Route
		return state

	case ActionClearPreviewRoute:
		state.PreviewRoute = nil
		return state

	// points
	case ActionSetPointToEdit:
		state.PointToEdit = action.Draft
		return state

	case ActionClearPointToEdit:
		state.PointToEdit = nil
		state.TempPointCoords = nil
		state.WaitingForCoordinates = false
		return state

	case ActionSetTempPointCoords:
		state.TempPointCoords = action.Coords
		return state

	// UI modes
	case ActionSetUIMode:
		state.UIMode = action.Mode
		return state

	case ActionSetWaitingForCoordinates:
		state.WaitingForCoordinates = action.Flag
		return state

	case ActionSetQuickCreateMode:
		state.QuickCreateMode = action.Flag
		return state

	default:
		return state
	}
}

var knownActionTypes = map[ActionType]struct{}{
	ActionSetLoading:               {},
	ActionSetError:                 {},
	ActionFetchRoutesSuccess:       {},
	ActionSetUIMode:                {},
	ActionSetCurrentRoute:          {},
	ActionClearCurrentRoute:        {},
	ActionSetPreviewRoute:          {},
	ActionClearPreviewRoute:        {},
	ActionSetPointToEdit:           {},
	ActionClearPointToEdit:         {},
	ActionSetTempPointCoords:       {},
	ActionSetWaitingForCoordinates: {},
	ActionSetQuickCreateMode:       {},
	ActionUpdateCurrentRoutePoints: {},
}

// Store owns the application state. It is constructor-injected into the
// lifecycle handlers and the view layer; created on application mount, torn
// down with it. Transitions are applied atomically under the lock.
type Store struct {
	mu          sync.RWMutex
	state       State
	log         zerolog.Logger
	subscribers []func(State)

	// OTel metrics
	dispatched metric.Int64Counter
	ignored    metric.Int64Counter
}

// New creates a Store holding the initial state.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(log zerolog.Logger) (*Store, error) {
	s := &Store{
		state: Initial(),
		log:   log,
	}

	m := meter()

	var err error
	s.dispatched, err = m.Int64Counter(
		"store.actions.dispatched",
		metric.WithDescription("Total actions dispatched"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatched counter: %w", err)
	}

	s.ignored, err = m.Int64Counter(
		"store.actions.ignored",
		metric.WithDescription("Total unknown actions ignored"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ignored counter: %w", err)
	}

	return s, nil
}

// State returns a snapshot of the current state. Callers must treat the
// contained routes as read-only and clone before editing.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies an action and notifies subscribers with the new state.
func (s *Store) Dispatch(action Action) {
	attr := metric.WithAttributes(attribute.String("action", string(action.Type)))

	s.mu.Lock()
	if _, known := knownActionTypes[action.Type]; !known {
		s.ignored.Add(context.Background(), 1, attr)
		s.log.Debug().Str("action", string(action.Type)).Msg("Ignoring unknown action")
	}
	s.state = Reduce(s.state, action)
	next := s.state
	subs := s.subscribers
	s.mu.Unlock()

	s.dispatched.Add(context.Background(), 1, attr)
	s.log.Trace().Str("action", string(action.Type)).Msg("Dispatched action")

	for _, fn := range subs {
		fn(next)
	}
}

// Subscribe registers a callback invoked after every dispatch with the new
// state. Used by the view layer and the map sync.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

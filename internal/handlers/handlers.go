// Package handlers orchestrates the route and point lifecycle: it validates
// input against the limit policy, calls the backend, and dispatches pure
// actions to the store. All I/O lives here; the reducer stays synchronous.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/waymark-app/waymark/internal/api"
	"github.com/waymark-app/waymark/internal/geo"
	"github.com/waymark-app/waymark/internal/influx"
	"github.com/waymark-app/waymark/internal/limits"
	"github.com/waymark-app/waymark/internal/model"
	"github.com/waymark-app/waymark/internal/queue"
	"github.com/waymark-app/waymark/internal/storage"
	"github.com/waymark-app/waymark/internal/store"

	"github.com/rs/zerolog"
)

// Backend is the slice of the REST client the lifecycle needs. *api.Client
// satisfies it; tests substitute fakes.
type Backend interface {
	FetchRoutes(ctx context.Context) ([]model.Route, error)
	CreateRoute(ctx context.Context, payload api.RoutePayload) (model.Route, error)
	UpdateRoute(ctx context.Context, id int64, payload api.RoutePayload) (model.Route, error)
	DeleteRoute(ctx context.Context, id int64) error
	DeleteImage(ctx context.Context, imageID int64) error
	UploadImages(ctx context.Context, pointID int64, dataURIs []string) error
}

// ConfirmFunc asks the user a yes/no question and blocks for the answer.
// Route deletion goes through it.
type ConfirmFunc func(message string) bool

// Dependencies holds everything the lifecycle service needs.
type Dependencies struct {
	Store     *store.Store
	API       Backend
	Snapshots storage.Backend
	Metrics   *influx.Manager // optional
	Confirm   ConfirmFunc
	Log       zerolog.Logger
}

// Service provides the lifecycle operations. One instance per application;
// operations run to completion one at a time.
type Service struct {
	deps Dependencies
	log  zerolog.Logger
}

// NewService creates a new lifecycle service.
func NewService(deps Dependencies) *Service {
	if deps.Confirm == nil {
		deps.Confirm = func(string) bool { return false }
	}
	return &Service{deps: deps, log: deps.Log}
}

// fail records a user-facing message in state and returns it as an error.
// SET_ERROR also clears the loading flag.
func (s *Service) fail(msg string) error {
	s.deps.Store.Dispatch(store.SetError(msg))
	return errors.New(msg)
}

// uploadJob carries the pending images of one request point, addressed by
// its position in the sent point list.
type uploadJob struct {
	index    int
	dataURIs []string
}

// FetchRoutes loads all routes from the backend. On success the list also
// goes to the snapshot cache; on failure the last snapshot is served instead,
// with the error kept in state so the UI can tell the data is stale.
func (s *Service) FetchRoutes(ctx context.Context) error {
	s.deps.Store.Dispatch(store.SetLoading(true))

	start := time.Now()
	routes, err := s.deps.API.FetchRoutes(ctx)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordAPICall("fetch_routes", time.Since(start), err)
	}
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to fetch routes")
		return s.fetchFallback(err)
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordFetch(len(routes), time.Since(start))
	}
	if s.deps.Snapshots != nil {
		if snapErr := s.deps.Snapshots.SaveSnapshot(routes); snapErr != nil {
			s.log.Warn().Err(snapErr).Msg("Failed to save route snapshot")
		}
	}

	s.deps.Store.Dispatch(store.FetchRoutesSuccess(routes))
	s.log.Debug().Int("routes", len(routes)).Dur("duration", time.Since(start)).
		Msg("Routes fetched")
	return nil
}

func (s *Service) fetchFallback(fetchErr error) error {
	msg := fmt.Sprintf("Failed to load routes: %v", fetchErr)
	if s.deps.Snapshots == nil {
		return s.fail(msg)
	}

	cached, err := s.deps.Snapshots.LoadSnapshot()
	if err != nil || cached == nil {
		if err != nil {
			s.log.Warn().Err(err).Msg("Snapshot fallback unavailable")
		}
		return s.fail(msg)
	}

	s.log.Warn().Int("routes", len(cached)).Msg("Serving cached routes after fetch failure")
	s.deps.Store.Dispatch(store.FetchRoutesSuccess(cached))
	// keep the error visible: the list on screen is stale
	return s.fail(msg)
}

// CachedRoutes returns the snapshot cache contents without touching the
// network.
func (s *Service) CachedRoutes() ([]model.Route, error) {
	if s.deps.Snapshots == nil {
		return nil, nil
	}
	return s.deps.Snapshots.LoadSnapshot()
}

// StartCreateRoute opens the create-route form with a fresh draft.
func (s *Service) StartCreateRoute() error {
	state := s.deps.Store.State()
	if !limits.CanCreateRoute(len(state.Routes)) {
		return s.fail(limits.MsgMaxRoutes())
	}

	draft := model.Route{ID: model.NewDraftRouteID(), Points: []model.Point{}}
	s.deps.Store.Dispatch(store.SetCurrentRoute(&draft))
	s.deps.Store.Dispatch(store.SetUIMode(store.ModeCreateRoute))
	return nil
}

// StartEditRoute opens the edit form on a deep copy of the stored route, so
// edits never leak into the list until saved.
func (s *Service) StartEditRoute(id model.EntityID) error {
	route, ok := s.findRoute(id)
	if !ok {
		return s.fail("Route not found")
	}

	clone := route.Clone()
	s.deps.Store.Dispatch(store.SetCurrentRoute(&clone))
	s.deps.Store.Dispatch(store.SetUIMode(store.ModeEditRoute))
	return nil
}

// StartViewRoute opens the read-only details view.
func (s *Service) StartViewRoute(id model.EntityID) error {
	route, ok := s.findRoute(id)
	if !ok {
		return s.fail("Route not found")
	}

	clone := route.Clone()
	s.deps.Store.Dispatch(store.SetCurrentRoute(&clone))
	s.deps.Store.Dispatch(store.SetUIMode(store.ModeViewRouteDetails))
	return nil
}

// ShowMainList drops any open route or point form and returns to the list.
func (s *Service) ShowMainList() {
	s.deps.Store.Dispatch(store.ClearCurrentRoute())
	s.deps.Store.Dispatch(store.SetUIMode(store.ModeMainList))
}

func (s *Service) findRoute(id model.EntityID) (model.Route, bool) {
	for _, r := range s.deps.Store.State().Routes {
		if r.ID.Equal(id) {
			return r, true
		}
	}
	return model.Route{}, false
}

// SaveRoute persists the route under edit. Pending images are stripped from
// the create/update payload and uploaded afterwards against the
// server-assigned point ids; the backend echoes points in request order, so
// jobs are correlated by position. On any failure the local draft stays as
// it was and the user can retry.
func (s *Service) SaveRoute(ctx context.Context, name, description string) error {
	state := s.deps.Store.State()
	current := state.CurrentRoute
	if current == nil {
		return s.fail("No route is being edited")
	}

	if name == "" {
		return s.fail("Route name is required")
	}
	if !limits.IsTextLengthValid(name, limits.MaxRouteNameLength()) {
		return s.fail(limits.MsgMaxRouteName())
	}
	if !limits.IsTextLengthValid(description, limits.MaxRouteDescriptionLength()) {
		return s.fail(limits.MsgMaxRouteDescription())
	}

	payload := api.RoutePayload{
		Name:        name,
		Description: description,
		Points:      make([]api.PointPayload, 0, len(current.Points)),
	}

	jobs := queue.New[uploadJob]()
	for i, p := range current.Points {
		var persisted []string
		var pending []string
		for _, img := range p.Images {
			switch img.Kind {
			case model.ImagePendingUpload:
				pending = append(pending, img.Src)
			case model.ImagePersisted:
				persisted = append(persisted, img.Src)
			}
		}
		if len(pending) > 0 {
			jobs.Push(uploadJob{index: i, dataURIs: pending})
		}
		payload.Points = append(payload.Points, api.PointPayload{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Lat:         p.Lat,
			Lon:         p.Lon,
			Images:      persisted,
		})
	}

	s.deps.Store.Dispatch(store.SetLoading(true))
	start := time.Now()

	var saved model.Route
	var err error
	if current.ID.IsSaved() {
		saved, err = s.deps.API.UpdateRoute(ctx, current.ID.Num(), payload)
	} else {
		saved, err = s.deps.API.CreateRoute(ctx, payload)
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordAPICall("save_route", time.Since(start), err)
	}
	if err != nil {
		s.log.Error().Err(err).Str("route", current.ID.String()).Msg("Failed to save route")
		return s.fail(fmt.Sprintf("Failed to save route: %v", err))
	}

	uploadStart := time.Now()
	uploadCount := jobs.Len()
	if uploadErr := s.uploadPointImages(ctx, saved, jobs); uploadErr != nil {
		s.log.Error().Err(uploadErr).Msg("Failed to upload point images")
		return s.fail(fmt.Sprintf("Failed to upload images: %v", uploadErr))
	}

	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordSave(len(payload.Points), uploadCount,
			time.Since(start), time.Since(uploadStart))
	}
	s.log.Info().
		Str("route", saved.ID.String()).
		Int("points", len(payload.Points)).
		Int("uploads", uploadCount).
		Dur("duration", time.Since(start)).
		Msg("Route saved")

	// absorb server-side state before leaving the form
	if err := s.FetchRoutes(ctx); err != nil {
		return err
	}
	s.ShowMainList()
	return nil
}

// maxUploadWorkers bounds how many image uploads run at once per save.
const maxUploadWorkers = 3

// uploadPointImages drains the job queue with a bounded worker pool and
// joins all failures. Upload order across points does not matter; each job
// is scoped to its own server-assigned point id.
func (s *Service) uploadPointImages(ctx context.Context, saved model.Route, jobs *queue.Queue[uploadJob]) error {
	pending := jobs.Len()
	if pending == 0 {
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for w := 0; w < min(maxUploadWorkers, pending); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				job, ok := jobs.TryPop()
				if !ok {
					return
				}
				if err := s.uploadJobImages(ctx, saved, job); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (s *Service) uploadJobImages(ctx context.Context, saved model.Route, job uploadJob) error {
	if job.index >= len(saved.Points) {
		return fmt.Errorf("server returned %d points, expected at least %d",
			len(saved.Points), job.index+1)
	}
	serverPoint := saved.Points[job.index]
	if !serverPoint.ID.IsSaved() {
		return fmt.Errorf("server point at index %d has no numeric id", job.index)
	}

	start := time.Now()
	err := s.deps.API.UploadImages(ctx, serverPoint.ID.Num(), job.dataURIs)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordAPICall("upload_images", time.Since(start), err)
	}
	return err
}

// DeleteRoute removes a route after an explicit confirmation. A denied
// prompt leaves everything untouched and issues no backend call.
func (s *Service) DeleteRoute(ctx context.Context, id model.EntityID) error {
	route, ok := s.findRoute(id)
	if !ok {
		return s.fail("Route not found")
	}

	if !s.deps.Confirm(fmt.Sprintf("Delete route %q and all its points?", route.Name)) {
		s.log.Debug().Str("route", id.String()).Msg("Route deletion cancelled")
		return nil
	}

	s.deps.Store.Dispatch(store.SetLoading(true))
	start := time.Now()
	err := s.deps.API.DeleteRoute(ctx, id.Num())
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordAPICall("delete_route", time.Since(start), err)
	}
	if err != nil {
		s.log.Error().Err(err).Str("route", id.String()).Msg("Failed to delete route")
		return s.fail(fmt.Sprintf("Failed to delete route: %v", err))
	}

	state := s.deps.Store.State()
	remaining := make([]model.Route, 0, len(state.Routes))
	for _, r := range state.Routes {
		if !r.ID.Equal(id) {
			remaining = append(remaining, r)
		}
	}
	s.deps.Store.Dispatch(store.FetchRoutesSuccess(remaining))

	if state.CurrentRoute != nil && state.CurrentRoute.ID.Equal(id) {
		s.ShowMainList()
	}
	s.log.Info().Str("route", id.String()).Msg("Route deleted")
	return nil
}

// StartCreatePointWithMapClick arms coordinate capture: the mode stays as it
// is until the next map click supplies the position.
func (s *Service) StartCreatePointWithMapClick() error {
	state := s.deps.Store.State()
	if state.CurrentRoute == nil {
		return s.fail("No route is being edited")
	}
	if !limits.CanAddPoint(len(state.CurrentRoute.Points)) {
		return s.fail(limits.MsgMaxPoints())
	}

	s.deps.Store.Dispatch(store.SetWaitingForCoordinates(true))
	return nil
}

// StartCreatePointManual opens a blank point form.
func (s *Service) StartCreatePointManual() error {
	state := s.deps.Store.State()
	if state.CurrentRoute != nil && !limits.CanAddPoint(len(state.CurrentRoute.Points)) {
		return s.fail(limits.MsgMaxPoints())
	}

	draft := model.PointDraft{Manual: true}
	s.deps.Store.Dispatch(store.SetPointToEdit(&draft))
	s.deps.Store.Dispatch(store.SetUIMode(store.ModeCreatePoint))
	return nil
}

// StartEditPoint opens the point form on a deep copy of an existing point.
// index is its position in the current route's point list.
func (s *Service) StartEditPoint(point model.Point, index int) error {
	state := s.deps.Store.State()
	if state.CurrentRoute == nil {
		return s.fail("No route is being edited")
	}
	if index < 0 || index >= len(state.CurrentRoute.Points) {
		return s.fail("Point not found")
	}

	idx := index
	draft := model.PointDraft{Point: point.Clone(), Index: &idx}
	s.deps.Store.Dispatch(store.SetPointToEdit(&draft))
	s.deps.Store.Dispatch(store.SetUIMode(store.ModeEditPoint))
	return nil
}

// SavePoint merges the point form into the current route: replace-in-place
// when editing an existing index, append with a fresh draft id otherwise.
// When no route exists yet (quick create), a draft route is synthesized
// first. No backend call happens here; points travel with the route save.
func (s *Service) SavePoint(name, description, lat, lon string, images []model.Image) error {
	if !limits.IsTextLengthValid(name, limits.MaxPointNameLength()) {
		return s.fail(limits.MsgMaxPointName())
	}
	if !limits.IsTextLengthValid(description, limits.MaxPointDescriptionLength()) {
		return s.fail(limits.MsgMaxPointDescription())
	}
	if valid, msg := geo.ValidateCoordinates(lat, lon); !valid {
		if msg == "" {
			// empty fields are "not yet valid"; saving still needs them
			msg = geo.MsgInvalidCoordinates
		}
		return s.fail(msg)
	}
	if len(images) > limits.MaxImagesPerPoint() {
		return s.fail(limits.MsgMaxImages())
	}

	state := s.deps.Store.State()

	var route model.Route
	if state.CurrentRoute != nil {
		route = state.CurrentRoute.Clone()
	} else {
		route = model.Route{ID: model.NewDraftRouteID(), Points: []model.Point{}}
	}

	draft := state.PointToEdit
	if draft != nil && draft.Index != nil && *draft.Index >= 0 && *draft.Index < len(route.Points) {
		existing := &route.Points[*draft.Index]
		existing.Name = name
		existing.Description = description
		existing.Lat = lat
		existing.Lon = lon
		existing.Images = append([]model.Image(nil), images...)
	} else {
		route.Points = append(route.Points, model.Point{
			ID:          model.NewDraftPointID(),
			Name:        name,
			Description: description,
			Lat:         lat,
			Lon:         lon,
			Images:      append([]model.Image(nil), images...),
		})
	}

	s.deps.Store.Dispatch(store.SetCurrentRoute(&route))
	s.deps.Store.Dispatch(store.ClearPointToEdit())
	s.deps.Store.Dispatch(store.SetUIMode(s.routeFormMode(route)))
	return nil
}

// DeletePoint filters the point out of the current route. No-op without a
// route under edit.
func (s *Service) DeletePoint(id model.EntityID) {
	state := s.deps.Store.State()
	if state.CurrentRoute == nil {
		return
	}

	remaining := make([]model.Point, 0, len(state.CurrentRoute.Points))
	for _, p := range state.CurrentRoute.Points {
		if !p.ID.Equal(id) {
			remaining = append(remaining, p.Clone())
		}
	}
	s.deps.Store.Dispatch(store.UpdateCurrentRoutePoints(remaining))
}

// DeletePointImage removes one persisted image from the backend and from the
// open point form.
func (s *Service) DeletePointImage(ctx context.Context, imageID int64, src string) error {
	start := time.Now()
	err := s.deps.API.DeleteImage(ctx, imageID)
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordAPICall("delete_image", time.Since(start), err)
	}
	if err != nil {
		s.log.Error().Err(err).Int64("image", imageID).Msg("Failed to delete image")
		return s.fail(fmt.Sprintf("Failed to delete image: %v", err))
	}

	state := s.deps.Store.State()
	if state.PointToEdit != nil {
		draft := *state.PointToEdit
		draft.Point = draft.Point.Clone()
		kept := draft.Point.Images[:0]
		for _, img := range draft.Point.Images {
			if img.Src != src {
				kept = append(kept, img)
			}
		}
		draft.Point.Images = kept
		s.deps.Store.Dispatch(store.SetPointToEdit(&draft))
	}
	return nil
}

// CancelPointForm closes the point form without saving. A quick-create
// session with nothing committed yet falls back to the main list; otherwise
// the parent route form is restored.
func (s *Service) CancelPointForm() {
	state := s.deps.Store.State()

	if state.QuickCreateMode &&
		(state.CurrentRoute == nil || len(state.CurrentRoute.Points) == 0) {
		s.ShowMainList()
		return
	}

	s.deps.Store.Dispatch(store.ClearPointToEdit())
	if state.CurrentRoute == nil {
		s.deps.Store.Dispatch(store.SetUIMode(store.ModeMainList))
		return
	}
	s.deps.Store.Dispatch(store.SetUIMode(s.routeFormMode(*state.CurrentRoute)))
}

// CancelRouteForm discards the route under edit and returns to the list.
func (s *Service) CancelRouteForm() {
	s.ShowMainList()
}

func (s *Service) routeFormMode(route model.Route) store.UIMode {
	if route.ID.IsSaved() {
		return store.ModeEditRoute
	}
	return store.ModeCreateRoute
}

// ReorderPoints replaces the current route's points with the reordered
// sequence the drag layer produced. Wholesale replacement, no index
// arithmetic here.
func (s *Service) ReorderPoints(newOrder []model.Point) {
	state := s.deps.Store.State()
	if state.CurrentRoute == nil {
		return
	}

	copied := make([]model.Point, 0, len(newOrder))
	for _, p := range newOrder {
		copied = append(copied, p.Clone())
	}
	s.deps.Store.Dispatch(store.UpdateCurrentRoutePoints(copied))
}

// PreviewRoute marks a route as hovered so the map can show it.
func (s *Service) PreviewRoute(id model.EntityID) {
	route, ok := s.findRoute(id)
	if !ok {
		return
	}
	clone := route.Clone()
	s.deps.Store.Dispatch(store.SetPreviewRoute(&clone))
}

// ClearPreview drops the hover preview.
func (s *Service) ClearPreview() {
	s.deps.Store.Dispatch(store.ClearPreviewRoute())
}

// HandleMapClick interprets a click at lat/lon (decimal degrees) against the
// current mode:
//   - armed coordinate capture: start a point at the click
//   - main list: quick-create a draft route plus its first point
//   - anything else: ignored
//
// The point-count and route-count limits are re-checked here; arming the
// capture earlier is not a reservation.
func (s *Service) HandleMapClick(lat, lon float64) error {
	state := s.deps.Store.State()

	coords := model.Coords{
		Lat: geo.FormatDecimal(lat),
		Lon: geo.FormatDecimal(lon),
	}

	switch {
	case state.WaitingForCoordinates:
		if state.CurrentRoute == nil {
			s.deps.Store.Dispatch(store.SetWaitingForCoordinates(false))
			return s.fail("No route is being edited")
		}
		if !limits.CanAddPoint(len(state.CurrentRoute.Points)) {
			s.deps.Store.Dispatch(store.SetWaitingForCoordinates(false))
			return s.fail(limits.MsgMaxPoints())
		}

		draft := model.PointDraft{Point: model.Point{Lat: coords.Lat, Lon: coords.Lon}}
		s.deps.Store.Dispatch(store.SetTempPointCoords(&coords))
		s.deps.Store.Dispatch(store.SetPointToEdit(&draft))
		s.deps.Store.Dispatch(store.SetWaitingForCoordinates(false))
		s.deps.Store.Dispatch(store.SetUIMode(store.ModeCreatePoint))
		return nil

	case state.UIMode == store.ModeMainList:
		if !limits.CanCreateRoute(len(state.Routes)) {
			return s.fail(limits.MsgMaxRoutes())
		}

		routeDraft := model.Route{ID: model.NewDraftRouteID(), Points: []model.Point{}}
		pointDraft := model.PointDraft{Point: model.Point{Lat: coords.Lat, Lon: coords.Lon}}
		s.deps.Store.Dispatch(store.SetCurrentRoute(&routeDraft))
		s.deps.Store.Dispatch(store.SetTempPointCoords(&coords))
		s.deps.Store.Dispatch(store.SetPointToEdit(&pointDraft))
		s.deps.Store.Dispatch(store.SetQuickCreateMode(true))
		s.deps.Store.Dispatch(store.SetUIMode(store.ModeCreatePoint))
		return nil

	default:
		s.log.Trace().Str("mode", string(state.UIMode)).Msg("Map click ignored")
		return nil
	}
}

package api

import (
	"encoding/json"
	"strconv"

	"github.com/waymark-app/waymark/internal/imageutil"
	"github.com/waymark-app/waymark/internal/model"
)

// RoutePayload is the create/update request body. Points carry only text
// fields, coordinates and already-persisted image URLs; inline images that
// represent new uploads are stripped by the caller and sent separately.
type RoutePayload struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Points      []PointPayload `json:"points"`
}

// PointPayload is one point in a route payload. The ID keeps its variant on
// the wire (number for persisted, temp token string for drafts) so the
// backend can match existing points on update.
type PointPayload struct {
	ID          model.EntityID `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Lat         string         `json:"lat"`
	Lon         string         `json:"lon"`
	Images      []string       `json:"images,omitempty"`
}

// wireRoute mirrors the backend's serialized route.
type wireRoute struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Points      []wirePoint `json:"points"`
}

// wirePoint mirrors the backend's serialized point. Coordinates may arrive
// as JSON strings or numbers depending on the backend's decimal handling;
// images arrive in mixed shapes and go through the normalizer once.
type wirePoint struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Lat         flexibleDecimal `json:"lat"`
	Lon         flexibleDecimal `json:"lon"`
	Images      []any           `json:"images"`
}

// flexibleDecimal decodes a JSON string or number into its string form.
type flexibleDecimal string

func (d *flexibleDecimal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = flexibleDecimal(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*d = flexibleDecimal(strconv.FormatFloat(f, 'f', 6, 64))
	return nil
}

func (wr wireRoute) toModel(norm *imageutil.Normalizer) model.Route {
	route := model.Route{
		ID:          model.SavedID(wr.ID),
		Name:        wr.Name,
		Description: wr.Description,
		Points:      make([]model.Point, 0, len(wr.Points)),
	}
	for _, wp := range wr.Points {
		route.Points = append(route.Points, model.Point{
			ID:          model.SavedID(wp.ID),
			Name:        wp.Name,
			Description: wp.Description,
			Lat:         string(wp.Lat),
			Lon:         string(wp.Lon),
			Images:      norm.Images(wp.Images),
		})
	}
	return route
}

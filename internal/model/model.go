// Package model defines the route and point domain types shared by the
// store, handlers, API client and map view.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EntityID identifies a route or point. It has exactly two variants: a
// server-assigned numeric ID (persisted) or a locally generated draft token
// (unsaved). The distinction drives create-vs-update decisions and must never
// be inferred from runtime type sniffing elsewhere.
type EntityID struct {
	num   int64
	token string
}

// SavedID wraps a server-assigned numeric identifier.
func SavedID(n int64) EntityID {
	return EntityID{num: n}
}

// DraftID wraps a locally generated draft token.
func DraftID(token string) EntityID {
	return EntityID{token: token}
}

// NewDraftRouteID generates a draft route identifier.
func NewDraftRouteID() EntityID {
	return EntityID{token: fmt.Sprintf("temp_%d", time.Now().UnixMilli())}
}

// NewDraftPointID generates a draft point identifier.
func NewDraftPointID() EntityID {
	return EntityID{token: fmt.Sprintf("temp_point_%d", time.Now().UnixMilli())}
}

// IsSaved reports whether the ID was assigned by the server.
func (id EntityID) IsSaved() bool {
	return id.token == ""
}

// Num returns the numeric identifier. Only meaningful when IsSaved.
func (id EntityID) Num() int64 {
	return id.num
}

// Token returns the draft token. Empty when IsSaved.
func (id EntityID) Token() string {
	return id.token
}

// IsZero reports whether the ID has neither variant set.
func (id EntityID) IsZero() bool {
	return id.num == 0 && id.token == ""
}

// Equal reports whether two IDs refer to the same entity.
func (id EntityID) Equal(other EntityID) bool {
	return id.num == other.num && id.token == other.token
}

func (id EntityID) String() string {
	if id.IsSaved() {
		return strconv.FormatInt(id.num, 10)
	}
	return id.token
}

// MarshalJSON encodes saved IDs as numbers and draft IDs as strings,
// matching the backend contract.
func (id EntityID) MarshalJSON() ([]byte, error) {
	if id.IsSaved() {
		return json.Marshal(id.num)
	}
	return json.Marshal(id.token)
}

// UnmarshalJSON accepts either a number (persisted) or a string (draft).
func (id *EntityID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var token string
		if err := json.Unmarshal(data, &token); err != nil {
			return err
		}
		*id = EntityID{token: token}
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = EntityID{num: n}
	return nil
}

// ImageKind tags the variants of a point image.
type ImageKind int

const (
	// ImageUnknown marks an entry the normalizer could not resolve.
	ImageUnknown ImageKind = iota
	// ImagePersisted is a server-side image addressed by absolute URL.
	ImagePersisted
	// ImagePendingUpload is a newly attached image held inline as a data URI,
	// not yet uploaded.
	ImagePendingUpload
)

// Image is a point photo in one of two usable representations. The boundary
// (imageutil.Normalize) resolves raw server payloads into this form once;
// nothing downstream re-sniffs formats.
type Image struct {
	Kind ImageKind
	// Src is an absolute URL for persisted images and a data URI for
	// pending uploads.
	Src string
}

// PersistedImage builds a persisted image from an absolute URL.
func PersistedImage(url string) Image {
	return Image{Kind: ImagePersisted, Src: url}
}

// PendingImage builds a pending-upload image from an inline data URI.
func PendingImage(dataURI string) Image {
	return Image{Kind: ImagePendingUpload, Src: dataURI}
}

// Point is a single stop on a route. Lat and Lon are held as fixed-precision
// decimal strings (six fractional digits) as entered or captured from the map.
type Point struct {
	ID          EntityID
	Name        string
	Description string
	Lat         string
	Lon         string
	Images      []Image
}

// Clone deep-copies the point.
func (p Point) Clone() Point {
	out := p
	out.Images = make([]Image, len(p.Images))
	copy(out.Images, p.Images)
	return out
}

// Route is an ordered sequence of points; slice order is the travel order.
type Route struct {
	ID          EntityID
	Name        string
	Description string
	Points      []Point
}

// Clone deep-copies the route and all its points. Points are never shared by
// reference across routes.
func (r Route) Clone() Route {
	out := r
	out.Points = make([]Point, len(r.Points))
	for i, p := range r.Points {
		out.Points[i] = p.Clone()
	}
	return out
}

// Coords is a lat/lon pair captured from a map click, already formatted to
// six decimal places.
type Coords struct {
	Lat string
	Lon string
}

// PointDraft is the transient "point being edited" slot. Index is the
// position of the point in the parent route when editing an existing point,
// nil when creating a new one. Manual marks drafts started without map
// coordinates.
type PointDraft struct {
	Point  Point
	Index  *int
	Manual bool
}

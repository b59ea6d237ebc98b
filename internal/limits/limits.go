// Package limits holds the fixed content limits and the pure predicates that
// guard every create/add operation. Violations must block the action with the
// matching user-facing message; nothing is ever truncated silently.
package limits

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AllowedImageFormats is the extension allow-list for point photos.
var AllowedImageFormats = []string{
	".jpg",
	".jpeg",
	".png",
	".gif",
	".webp",
	".bmp",
}

// Fallbacks used when the key is absent from config, so the predicates stay
// meaningful before config.Load has run.
const (
	defaultMaxRoutes                 = 15
	defaultMaxPointsPerRoute         = 30
	defaultMaxImagesPerPoint         = 4
	defaultMaxImageSizeBytes         = 1 * 1024 * 1024
	defaultMaxRouteNameLength        = 100
	defaultMaxRouteDescriptionLength = 500
	defaultMaxPointNameLength        = 100
	defaultMaxPointDescriptionLength = 1000
)

func intOr(key string, fallback int) int {
	if v := viper.GetInt(key); v > 0 {
		return v
	}
	return fallback
}

// MaxRoutes returns the maximum number of routes per user.
func MaxRoutes() int { return intOr("limits.maxRoutes", defaultMaxRoutes) }

// MaxPointsPerRoute returns the maximum number of points in one route.
func MaxPointsPerRoute() int { return intOr("limits.maxPointsPerRoute", defaultMaxPointsPerRoute) }

// MaxImagesPerPoint returns the maximum number of photos per point.
func MaxImagesPerPoint() int { return intOr("limits.maxImagesPerPoint", defaultMaxImagesPerPoint) }

// MaxImageSizeBytes returns the maximum size of a single image in bytes.
func MaxImageSizeBytes() int { return intOr("limits.maxImageSizeBytes", defaultMaxImageSizeBytes) }

// MaxRouteNameLength returns the maximum route name length.
func MaxRouteNameLength() int { return intOr("limits.maxRouteNameLength", defaultMaxRouteNameLength) }

// MaxRouteDescriptionLength returns the maximum route description length.
func MaxRouteDescriptionLength() int {
	return intOr("limits.maxRouteDescriptionLength", defaultMaxRouteDescriptionLength)
}

// MaxPointNameLength returns the maximum point name length.
func MaxPointNameLength() int { return intOr("limits.maxPointNameLength", defaultMaxPointNameLength) }

// MaxPointDescriptionLength returns the maximum point description length.
func MaxPointDescriptionLength() int {
	return intOr("limits.maxPointDescriptionLength", defaultMaxPointDescriptionLength)
}

// User-facing limit messages.
func MsgMaxRoutes() string {
	return fmt.Sprintf("Route limit reached (%d). Delete old routes to create new ones.", MaxRoutes())
}

func MsgMaxPoints() string {
	return fmt.Sprintf("Point limit per route reached (%d). Create a new route to add more points.", MaxPointsPerRoute())
}

func MsgMaxImages() string {
	return fmt.Sprintf("Photo limit per point reached (%d).", MaxImagesPerPoint())
}

func MsgMaxImageSize() string {
	return fmt.Sprintf("Image size must not exceed %d MB.", MaxImageSizeBytes()/(1024*1024))
}

func MsgMaxRouteName() string {
	return fmt.Sprintf("Route name must not exceed %d characters.", MaxRouteNameLength())
}

func MsgMaxRouteDescription() string {
	return fmt.Sprintf("Route description must not exceed %d characters.", MaxRouteDescriptionLength())
}

func MsgMaxPointName() string {
	return fmt.Sprintf("Point name must not exceed %d characters.", MaxPointNameLength())
}

func MsgMaxPointDescription() string {
	return fmt.Sprintf("Point description must not exceed %d characters.", MaxPointDescriptionLength())
}

// CanCreateRoute reports whether another route may be created.
func CanCreateRoute(currentCount int) bool {
	return currentCount < MaxRoutes()
}

// CanAddPoint reports whether another point may be added to a route.
func CanAddPoint(currentCount int) bool {
	return currentCount < MaxPointsPerRoute()
}

// CanAddImage reports whether another photo may be attached to a point.
func CanAddImage(currentCount int) bool {
	return currentCount < MaxImagesPerPoint()
}

// IsTextLengthValid reports whether text fits within max characters.
// Empty text is always valid.
func IsTextLengthValid(text string, max int) bool {
	if text == "" {
		return true
	}
	return len([]rune(text)) <= max
}

// IsImageSizeValid reports whether an image of the given size may be attached.
func IsImageSizeValid(sizeInBytes int) bool {
	return sizeInBytes <= MaxImageSizeBytes()
}

// IsImageFormatValid reports whether the filename carries an allowed image
// extension.
func IsImageFormatValid(filename string) bool {
	if filename == "" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedImageFormats {
		if ext == allowed {
			return true
		}
	}
	return false
}

// AllowedFormatsString returns the allow-list for display, e.g. "JPG, JPEG, PNG".
func AllowedFormatsString() string {
	parts := make([]string, len(AllowedImageFormats))
	for i, f := range AllowedImageFormats {
		parts[i] = strings.ToUpper(strings.TrimPrefix(f, "."))
	}
	return strings.Join(parts, ", ")
}

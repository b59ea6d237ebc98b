package store

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/waymark-app/waymark/internal/store"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

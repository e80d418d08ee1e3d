package volumetric

import "go.opentelemetry.io/otel"

// instrumentationName is the OpenTelemetry scope for spans emitted here.
const instrumentationName = "github.com/youssefsiam38/volumetric"

var tracer = otel.Tracer(instrumentationName)

// Package domain models the monitored locations, upstream observations, and
// risk outputs of the flood/landslide risk engine.
//
// # Data sources
//
// Upstream collector services fetch open geospatial/environmental APIs
// (rainfall forecasts, seismic event feeds, reservoir telemetry, elevation and
// climate-baseline lookups), normalize each record, and publish it as flat
// JSON to the Kafka observations topic. One message carries one observation
// kind for one monitored location. The engine never calls those APIs itself;
// it consumes collector output only.
//
// # Observation conventions
//
// Rainfall:
//
//	Precipitation sums in millimetres over trailing 24h/72h/7d windows plus the
//	maximum hourly rate. The optional hourly series (past and forecast hours)
//	feeds the nowcast windows; the optional daily forecast series feeds the
//	rainfall prediction summary.
//
// Seismic:
//
//	Magnitude, depth (km), epicentre coordinates, and origin time. Only events
//	at or above the significance threshold (default M4.5) within a fixed
//	latitude/longitude box around a location count as "nearby" triggers.
//
// Reservoir:
//
//	Telemetry rows are scraped from heterogeneous state dashboards, so level,
//	storage, and flow fields arrive as strings in inconsistent formats. Level
//	percentage is normalized to 0-100 from whichever of level/percentage/
//	storage-over-capacity fields is present. Records carry a provenance tag.
//
// # Scoring outputs
//
// All scores and sub-indices are clamped to [0,100] and never NaN. A missing
// input degrades the corresponding sub-index toward a neutral or conservative
// default; parse and scoring functions are total and do not return errors for
// absent or malformed fields.
//
// Confidence is a data-completeness and source-diversity signal only. It says
// nothing about forecast accuracy.
package domain

package domain

// MonitoredLocation is a fixed geographic point (typically a dam site) for
// which risk is tracked. Reference data loaded once from configuration;
// read-only to the engine.
type MonitoredLocation struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"` // known short-form display names
	Region  string   `json:"region"`            // owning administrative region (state)
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
}

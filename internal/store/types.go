package store

// Session is the header row of a journaled session.
type Session struct {
	ID       string `json:"id"`
	Strategy string `json:"strategy"`

	// Catalog is the canonical JSON of the catalog spec the session used,
	// e.g. [{"count":1,"type":"Internal"}].
	Catalog string `json:"catalog"`

	CreatedSeq int64 `json:"created_seq"`
}

// StepRecord is one journaled step.
type StepRecord struct {
	SessionID string   `json:"session_id"`
	Seq       int64    `json:"seq"`
	Index     int      `json:"index"`            // timeline index the step was stored at
	Kind      string   `json:"kind"`             // plug, unplug or select
	Device    string   `json:"device"`
	Label     string   `json:"label"`
	Active    string   `json:"active,omitempty"` // empty when no device is active
	Connected []string `json:"connected"`        // plug order
	Priority  []string `json:"priority"`         // strongest first
	Digest    string   `json:"digest"`
}

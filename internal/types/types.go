package types

import (
	"strings"
	"time"
)

// Intent classifies what the user wants done with an application.
type Intent string

const (
	IntentLaunch  Intent = "launch"
	IntentClose   Intent = "close"
	IntentUnknown Intent = "unknown"
)

// AppIdentity is the canonical handle for an installed application: a display
// name plus whatever locator is needed to act on it. Immutable once built;
// re-derived on every inventory refresh.
type AppIdentity struct {
	Name string `json:"name"`
	Path string `json:"path,omitempty"`

	// LaunchTarget is set when the identity comes from a user-defined
	// command and points directly at the thing to open, bypassing the
	// inventory.
	LaunchTarget string `json:"launch_target,omitempty"`
}

// Match is the resolver's verdict for one utterance: the intent kind plus the
// single best-matching application. Never mutated after creation.
type Match struct {
	Intent Intent      `json:"intent"`
	App    AppIdentity `json:"app"`
}

// Snapshot is the cached result of one application scan. A refresh either
// produces an entirely new snapshot or leaves the prior one intact; snapshots
// are never updated in place.
type Snapshot struct {
	Apps       []AppIdentity `json:"apps"`
	TakenAt    time.Time     `json:"taken_at"`
	Generation uint64        `json:"generation"`
}

// Find looks up an application by name, case-insensitively.
func (s *Snapshot) Find(name string) (AppIdentity, bool) {
	for _, app := range s.Apps {
		if strings.EqualFold(app.Name, name) {
			return app, true
		}
	}
	return AppIdentity{}, false
}

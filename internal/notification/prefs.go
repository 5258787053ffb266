package notification

import "context"

// Preferences is a user's notification configuration. A nil *Preferences
// (no record) means every kind is allowed and quiet hours never apply.
type Preferences struct {
	EnabledKinds []Kind      `json:"enabled_kinds"`
	QuietHours   *QuietHours `json:"quiet_hours,omitempty"`
	Timezone     string      `json:"timezone,omitempty"`
}

// KindEnabled reports whether the kind may be delivered under p.
func (p *Preferences) KindEnabled(k Kind) bool {
	if p == nil {
		return true
	}
	for _, enabled := range p.EnabledKinds {
		if enabled == k {
			return true
		}
	}
	return false
}

// PreferenceLookup is the read-only preference store collaborator.
// Implementations return (nil, nil) when the user has no record.
type PreferenceLookup interface {
	Get(ctx context.Context, userID string) (*Preferences, error)
}

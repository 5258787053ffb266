package notification

import "time"

type Kind string

const (
	KindWeatherAlert     Kind = "weather_alert"
	KindCrowdAlert       Kind = "crowd_alert"
	KindEventReminder    Kind = "event_reminder"
	KindActivityReminder Kind = "activity_reminder"
	KindSafetyAlert      Kind = "safety_alert"
	KindCulturalTip      Kind = "cultural_tip"
	KindItineraryUpdate  Kind = "itinerary_update"
)

func (k Kind) Valid() bool {
	switch k {
	case KindWeatherAlert, KindCrowdAlert, KindEventReminder, KindActivityReminder,
		KindSafetyAlert, KindCulturalTip, KindItineraryUpdate:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Expedited reports whether the priority maps to the expedited delivery lane.
func (p Priority) Expedited() bool {
	return p == PriorityHigh || p == PriorityUrgent
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusExpired   Status = "expired"
)

// Terminal reports whether the status has no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed || s == StatusExpired
}

type Notification struct {
	ID           string                 `json:"id" firestore:"id"`
	UserID       string                 `json:"user_id" firestore:"user_id"`
	Kind         Kind                   `json:"kind" firestore:"kind"`
	Title        string                 `json:"title" firestore:"title"`
	Body         string                 `json:"body" firestore:"body"`
	Data         map[string]interface{} `json:"data,omitempty" firestore:"data,omitempty"`
	Priority     Priority               `json:"priority" firestore:"priority"`
	ScheduledFor *time.Time             `json:"scheduled_for,omitempty" firestore:"scheduled_for,omitempty"`
	ExpiresAt    *time.Time             `json:"expires_at,omitempty" firestore:"expires_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at" firestore:"created_at"`
	SentAt       *time.Time             `json:"sent_at,omitempty" firestore:"sent_at,omitempty"`
	Status       Status                 `json:"status" firestore:"status"`
}

// Clone returns a deep copy so store readers never share mutable state
// with the dispatcher.
func (n *Notification) Clone() *Notification {
	c := *n
	if n.Data != nil {
		c.Data = make(map[string]interface{}, len(n.Data))
		for k, v := range n.Data {
			c.Data[k] = v
		}
	}
	if n.ScheduledFor != nil {
		t := *n.ScheduledFor
		c.ScheduledFor = &t
	}
	if n.ExpiresAt != nil {
		t := *n.ExpiresAt
		c.ExpiresAt = &t
	}
	if n.SentAt != nil {
		t := *n.SentAt
		c.SentAt = &t
	}
	return &c
}

type Request struct {
	UserID       string                 `json:"user_id"`
	Kind         Kind                   `json:"kind"`
	Title        string                 `json:"title"`
	Body         string                 `json:"body"`
	Data         map[string]interface{} `json:"data,omitempty"`
	Priority     Priority               `json:"priority,omitempty"`
	ScheduledFor *time.Time             `json:"scheduled_for,omitempty"`
	ExpiresAt    *time.Time             `json:"expires_at,omitempty"`
}

// TemplateOptions overrides template defaults for CreateFromTemplate.
type TemplateOptions struct {
	Priority     Priority   `json:"priority,omitempty"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Scheduled int `json:"scheduled"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Expired   int `json:"expired"`
}

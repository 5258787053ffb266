package notification

import (
	"errors"
	"fmt"
	"os"
)

var ErrTemplateNotFound = errors.New("no notification template for kind")

// ChannelHints carries the platform-specific delivery hints configured per
// kind: the sound to play and the Android channel to post on.
type ChannelHints struct {
	Sound   string `json:"sound"`
	Channel string `json:"channel"`
}

// Renderer maps a notification kind plus payload data to rendered text and
// per-kind delivery defaults.
type Renderer interface {
	Render(kind Kind, data map[string]interface{}) (title, body string, err error)
	DefaultPriority(kind Kind) Priority
	ChannelHints(kind Kind) ChannelHints
}

type messageTemplate struct {
	title    string
	body     string
	priority Priority
	hints    ChannelHints
}

// Catalog is the built-in Renderer. Templates use ${key} placeholders
// substituted from the payload data.
type Catalog struct {
	templates map[Kind]messageTemplate
}

func NewCatalog() *Catalog {
	return &Catalog{templates: map[Kind]messageTemplate{
		KindWeatherAlert: {
			title:    "Weather alert for ${city}",
			body:     "${condition} expected around ${time}. ${advice}",
			priority: PriorityHigh,
			hints:    ChannelHints{Sound: "alert", Channel: "weather"},
		},
		KindCrowdAlert: {
			title:    "Crowds building at ${place}",
			body:     "${place} is ${level} busier than usual right now.",
			priority: PriorityNormal,
			hints:    ChannelHints{Sound: "default", Channel: "crowds"},
		},
		KindEventReminder: {
			title:    "Reminder: ${event}",
			body:     "${event} starts at ${time} at ${place}.",
			priority: PriorityNormal,
			hints:    ChannelHints{Sound: "default", Channel: "reminders"},
		},
		KindActivityReminder: {
			title:    "Time for ${activity}",
			body:     "Your planned ${activity} is coming up at ${time}.",
			priority: PriorityNormal,
			hints:    ChannelHints{Sound: "default", Channel: "reminders"},
		},
		KindSafetyAlert: {
			title:    "Safety alert: ${area}",
			body:     "${message}",
			priority: PriorityUrgent,
			hints:    ChannelHints{Sound: "siren", Channel: "safety"},
		},
		KindCulturalTip: {
			title:    "Local tip: ${topic}",
			body:     "${tip}",
			priority: PriorityLow,
			hints:    ChannelHints{Sound: "default", Channel: "tips"},
		},
		KindItineraryUpdate: {
			title:    "Itinerary updated",
			body:     "${change}",
			priority: PriorityNormal,
			hints:    ChannelHints{Sound: "default", Channel: "itinerary"},
		},
	}}
}

func (c *Catalog) Render(kind Kind, data map[string]interface{}) (string, string, error) {
	tpl, ok := c.templates[kind]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrTemplateNotFound, kind)
	}
	expand := func(key string) string {
		if v, ok := data[key]; ok {
			return fmt.Sprint(v)
		}
		return ""
	}
	return os.Expand(tpl.title, expand), os.Expand(tpl.body, expand), nil
}

func (c *Catalog) DefaultPriority(kind Kind) Priority {
	if tpl, ok := c.templates[kind]; ok {
		return tpl.priority
	}
	return PriorityNormal
}

func (c *Catalog) ChannelHints(kind Kind) ChannelHints {
	if tpl, ok := c.templates[kind]; ok {
		return tpl.hints
	}
	return ChannelHints{Sound: "default", Channel: "general"}
}

package push

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
)

// Message is one per-token delivery: rendered text, the machine-readable
// payload, and the channel hints resolved for the notification's kind.
type Message struct {
	Title     string
	Body      string
	Data      map[string]string
	Expedited bool
	Sound     string
	Channel   string
}

// Transport is the device push gateway. Each call carries its own
// transport-level timeout; the gateway layers no additional one on top.
type Transport interface {
	Deliver(ctx context.Context, token string, msg Message) error
	DeliverDryRun(ctx context.Context, token string) error
}

// FCMTransport delivers through Firebase Cloud Messaging.
type FCMTransport struct {
	client *messaging.Client
}

func NewFCMTransport(client *messaging.Client) *FCMTransport {
	return &FCMTransport{client: client}
}

func (t *FCMTransport) Deliver(ctx context.Context, token string, msg Message) error {
	androidPriority := "normal"
	apnsPriority := "5"
	if msg.Expedited {
		androidPriority = "high"
		apnsPriority = "10"
	}
	sound := msg.Sound
	if sound == "" {
		sound = "default"
	}

	fcmMsg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: androidPriority,
			Notification: &messaging.AndroidNotification{
				Sound:     sound,
				ChannelID: msg.Channel,
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": apnsPriority},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: sound},
			},
		},
	}

	if _, err := t.client.Send(ctx, fcmMsg); err != nil {
		return fmt.Errorf("fcm send failed: %w", err)
	}
	return nil
}

// DeliverDryRun validates the token against FCM without delivering anything.
func (t *FCMTransport) DeliverDryRun(ctx context.Context, token string) error {
	msg := &messaging.Message{
		Token: token,
		Data:  map[string]string{"ping": "1"},
	}
	if _, err := t.client.SendDryRun(ctx, msg); err != nil {
		return fmt.Errorf("fcm dry run failed: %w", err)
	}
	return nil
}

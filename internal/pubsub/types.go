package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. It doubles as the topic name.
type EventType string

const (
	EventRankChanged      EventType = "ladder-rank-changed"
	EventChallengeUpdated EventType = "ladder-challenge-updated"
	EventMatchCompleted   EventType = "ladder-match-completed"
)

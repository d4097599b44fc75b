// Package events fans accepted lifecycle mutations out to live websocket
// subscribers and, when configured, a Kafka topic.
package events

import (
	"time"

	"prevplan/internal/plans/models"
)

// Event describes one accepted create, update or delete.
type Event struct {
	Kind   models.Kind   `json:"kind"`
	Action models.Action `json:"action"`
	ID     string        `json:"id"`
	At     time.Time     `json:"at"`
}

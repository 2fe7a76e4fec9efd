// Package export snapshots the experience collection into object storage.
package export

import "time"

// Trigger says what started an export run.
type Trigger string

const (
	TriggerManual   Trigger = "manual"
	TriggerSchedule Trigger = "schedule"
)

const (
	StatusReady  = "ready"
	StatusFailed = "failed"
)

// Record is the persisted metadata of one export run. URL is filled on read
// and never stored.
type Record struct {
	ID        string    `bson:"_id" json:"_id"`
	Key       string    `bson:"key" json:"key"`
	Count     int       `bson:"count" json:"count"`
	Trigger   Trigger   `bson:"trigger" json:"trigger"`
	Status    string    `bson:"status" json:"status"`
	Error     string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	URL       string    `bson:"-" json:"url,omitempty"`
}

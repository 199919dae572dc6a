package domain

import "time"

// Action is the data operation an authorization decision was made for.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry is one access decision, allowed or denied. Entries are written
// exactly once at the point of decision and never mutated; the only
// deletion path is the time-based retention sweep.
type Entry struct {
	ID                      string    `bson:"_id" json:"id"`
	CreatedAt               time.Time `bson:"createdAt" json:"createdAt"`
	UserID                  string    `bson:"userId" json:"userId"`
	UserRole                string    `bson:"userRole" json:"userRole"`
	UserEstablishmentID     string    `bson:"userEstablishmentId,omitempty" json:"userEstablishmentId,omitempty"`
	Action                  Action    `bson:"action" json:"action"`
	ResourceType            string    `bson:"resourceType" json:"resourceType"`
	ResourceID              string    `bson:"resourceId,omitempty" json:"resourceId,omitempty"`
	ResourceEstablishmentID string    `bson:"resourceEstablishmentId,omitempty" json:"resourceEstablishmentId,omitempty"`
	Allowed                 bool      `bson:"allowed" json:"allowed"`
	Reason                  string    `bson:"reason,omitempty" json:"reason,omitempty"`
	IPAddress               string    `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent               string    `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
}

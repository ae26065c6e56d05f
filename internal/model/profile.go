package model

import "time"

// Profile is the durable account-scoped state; it outlives any session.
// Only the display name shown on the results screen lives here.
type Profile struct {
	AccountID   string    `json:"accountId" bson:"_id"`
	DisplayName string    `json:"displayName" bson:"displayName"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

package models

import "github.com/google/uuid"

// ID prefixes keep identifiers readable in logs and payloads.
const (
	PrefixUser         = "u-"
	PrefixProject      = "proj-"
	PrefixColumn       = "col-"
	PrefixTask         = "t-"
	PrefixComment      = "c-"
	PrefixSubtask      = "st-"
	PrefixNotification = "notif-"
)

// NewID returns a fresh unique identifier carrying prefix.
func NewID(prefix string) string {
	return prefix + uuid.NewString()
}

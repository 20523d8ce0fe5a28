package models

import "time"

// Backup upload states.
const (
	BackupPending = "pending"
	BackupStored  = "stored"
)

// Backup is the metadata row for a device configuration snapshot. The
// content itself lives in object storage under StorageKey; clients upload
// and download it through presigned URLs.
type Backup struct {
	ID         string
	DeviceID   string
	StorageKey string
	Status     string
	TakenAt    time.Time
	CreatedAt  time.Time
}

package models

import "time"

type Device struct {
	ID        string
	Name      string
	MgmtAddr  string
	Vendor    string
	OSVersion string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeviceCredential stores the login for a managed device. The secret is
// encrypted with AES-GCM under the process credential key before it ever
// reaches the database.
type DeviceCredential struct {
	ID               string
	DeviceID         string
	Username         string
	SecretCiphertext []byte
	SecretNonce      []byte
	UpdatedAt        time.Time
}

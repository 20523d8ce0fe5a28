package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fnpsdn/netinv/internal/common"
	"github.com/fnpsdn/netinv/internal/server/models"
)

func newDeviceService(t *testing.T, rm *fakeRepoManager) *DeviceService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })

	s, err := NewDeviceService(db, rm, nopLogger{}, testConfig())
	if err != nil {
		t.Fatalf("NewDeviceService error: %v", err)
	}
	return s
}

func TestNewDeviceService_RejectsBadKey(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	cfg := testConfig()
	cfg.CredentialKeyHex = "short"
	if _, err := NewDeviceService(db, newFakeRepoManager(), nopLogger{}, cfg); err == nil {
		t.Fatalf("expected error for invalid credential key")
	}
}

func TestCredential_RoundTrip(t *testing.T) {
	rm := newFakeRepoManager()
	rm.devices.device = &models.Device{ID: "d-1", Name: "core-sw-1"}
	s := newDeviceService(t, rm)

	secret := []byte("enable-password")
	if err := s.SetCredential(context.Background(), "d-1", "netops", secret); err != nil {
		t.Fatalf("SetCredential error: %v", err)
	}

	stored := rm.credentials.stored
	if stored == nil {
		t.Fatalf("credential not stored")
	}
	if bytes.Contains(stored.SecretCiphertext, secret) {
		t.Fatalf("plaintext secret reached the repository")
	}

	username, got, err := s.GetCredential(context.Background(), "d-1")
	if err != nil {
		t.Fatalf("GetCredential error: %v", err)
	}
	if username != "netops" || !bytes.Equal(got, secret) {
		t.Fatalf("round trip mismatch: %q %q", username, got)
	}
}

func TestSetCredential_UnknownDevice(t *testing.T) {
	rm := newFakeRepoManager()
	s := newDeviceService(t, rm)

	err := s.SetCredential(context.Background(), "ghost", "netops", []byte("x"))
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetCredential_TamperedCiphertext(t *testing.T) {
	rm := newFakeRepoManager()
	rm.devices.device = &models.Device{ID: "d-1"}
	s := newDeviceService(t, rm)

	if err := s.SetCredential(context.Background(), "d-1", "netops", []byte("secret")); err != nil {
		t.Fatalf("SetCredential error: %v", err)
	}
	rm.credentials.stored.SecretCiphertext[0] ^= 0xff

	if _, _, err := s.GetCredential(context.Background(), "d-1"); err == nil {
		t.Fatalf("tampered ciphertext must not decrypt")
	}
}

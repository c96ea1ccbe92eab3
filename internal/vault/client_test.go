package vault

import (
	"context"
	"testing"

	"pattern-scanner/config"
)

// TestDisabledModeRoundTrip tests the in-memory fallback used without Vault.
func TestDisabledModeRoundTrip(t *testing.T) {
	c, err := NewClient(config.VaultConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	ctx := context.Background()

	creds := Credentials{APIKey: "key", SecretKey: "secret", Exchange: "binance"}
	if err := c.StoreCredentials(ctx, "u1", creds); err != nil {
		t.Fatalf("StoreCredentials failed: %v", err)
	}

	got, err := c.GetCredentials(ctx, "u1", "binance")
	if err != nil {
		t.Fatalf("GetCredentials failed: %v", err)
	}
	if got.APIKey != "key" || got.SecretKey != "secret" {
		t.Errorf("credentials = %+v, want the stored values", got)
	}

	if _, err := c.GetCredentials(ctx, "u2", "binance"); err == nil {
		t.Error("another user's credentials should not be found")
	}

	if err := c.DeleteCredentials(ctx, "u1", "binance"); err != nil {
		t.Fatalf("DeleteCredentials failed: %v", err)
	}
	if _, err := c.GetCredentials(ctx, "u1", "binance"); err == nil {
		t.Error("deleted credentials should not be found")
	}
}

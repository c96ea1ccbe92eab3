// Package vault stores exchange API credentials in HashiCorp Vault, with a
// local in-memory fallback when Vault is disabled (development and tests).
package vault

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/vault/api"

	"pattern-scanner/config"
)

// Credentials is the credential set stored per user and exchange.
type Credentials struct {
	APIKey    string `json:"api_key"`
	SecretKey string `json:"secret_key"`
	Exchange  string `json:"exchange"`
}

// Client wraps the HashiCorp Vault client.
type Client struct {
	client *api.Client
	config config.VaultConfig

	mu    sync.RWMutex
	cache map[string]*Credentials
}

// NewClient creates a Vault client. With Vault disabled the client keeps
// credentials only in memory.
func NewClient(cfg config.VaultConfig) (*Client, error) {
	c := &Client{
		config: cfg,
		cache:  make(map[string]*Credentials),
	}
	if !cfg.Enabled {
		return c, nil
	}

	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	c.client = client
	return c, nil
}

// StoreCredentials stores credentials for a user.
func (c *Client) StoreCredentials(ctx context.Context, userID string, creds Credentials) error {
	key := c.cacheKey(userID, creds.Exchange)

	if !c.config.Enabled {
		c.mu.Lock()
		c.cache[key] = &creds
		c.mu.Unlock()
		return nil
	}

	secretData := map[string]interface{}{
		"data": map[string]interface{}{
			"api_key":    creds.APIKey,
			"secret_key": creds.SecretKey,
			"exchange":   creds.Exchange,
		},
	}
	if _, err := c.client.Logical().WriteWithContext(ctx, c.secretPath(userID, creds.Exchange), secretData); err != nil {
		return fmt.Errorf("failed to store credentials in vault: %w", err)
	}

	c.mu.Lock()
	c.cache[key] = &creds
	c.mu.Unlock()
	return nil
}

// GetCredentials retrieves credentials for a user, preferring the cache.
func (c *Client) GetCredentials(ctx context.Context, userID, exchange string) (*Credentials, error) {
	key := c.cacheKey(userID, exchange)

	c.mu.RLock()
	if cached, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	if !c.config.Enabled {
		return nil, fmt.Errorf("credentials not found and vault is disabled")
	}

	secret, err := c.client.Logical().ReadWithContext(ctx, c.secretPath(userID, exchange))
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials from vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("credentials not found for user %s", userID)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected secret format for user %s", userID)
	}
	creds := &Credentials{
		APIKey:    stringField(data, "api_key"),
		SecretKey: stringField(data, "secret_key"),
		Exchange:  stringField(data, "exchange"),
	}

	c.mu.Lock()
	c.cache[key] = creds
	c.mu.Unlock()
	return creds, nil
}

// DeleteCredentials removes stored credentials for a user.
func (c *Client) DeleteCredentials(ctx context.Context, userID, exchange string) error {
	c.mu.Lock()
	delete(c.cache, c.cacheKey(userID, exchange))
	c.mu.Unlock()

	if !c.config.Enabled {
		return nil
	}
	if _, err := c.client.Logical().DeleteWithContext(ctx, c.secretPath(userID, exchange)); err != nil {
		return fmt.Errorf("failed to delete credentials from vault: %w", err)
	}
	return nil
}

func (c *Client) cacheKey(userID, exchange string) string {
	return userID + ":" + exchange
}

func (c *Client) secretPath(userID, exchange string) string {
	return fmt.Sprintf("%s/data/%s/%s/%s", c.config.MountPath, c.config.SecretPath, userID, exchange)
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

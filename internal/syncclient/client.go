// Package syncclient pushes records to the remote student management API and
// checks administrator credentials. Credentials only ever come from
// configuration and are logged masked.
package syncclient

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/raaihank/record-sentinel/internal/config"
	"github.com/raaihank/record-sentinel/internal/logger"
	"github.com/raaihank/record-sentinel/internal/masking"
	"github.com/raaihank/record-sentinel/internal/records"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	studentsPath   = "/api/students"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// ErrRejected is returned when the remote API answers with a non-2xx status
var ErrRejected = errors.New("remote API rejected record")

// Client syncs records with the remote API
type Client struct {
	config     config.SyncConfig
	admin      config.AdminConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
}

// New creates a sync client. A zero RequestsPerSecond disables pacing.
func New(cfg config.SyncConfig, admin config.AdminConfig, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		config:     cfg,
		admin:      admin,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     log.WithComponent("sync"),
	}
}

// SyncRecord sends a record to the remote API. When sync is disabled or no
// base URL is configured it only logs the attempt.
func (c *Client) SyncRecord(ctx context.Context, record records.Record) error {
	c.logger.Info("Syncing record with remote system",
		logger.Secret("api_key", c.config.APIKey),
		logger.Masked("national_id", masking.CategoryNationalID, record.NationalID),
		logger.Masked("address", masking.CategoryStreetAddress, record.Address),
	)

	if !c.config.Enabled || c.config.BaseURL == "" {
		c.logger.Debug("Remote sync disabled, skipping", zap.String("record_id", record.ID.String()))
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("sync rate limit: %w", err)
	}

	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + studentsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sync request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("Remote API rejected record",
			zap.String("record_id", record.ID.String()),
			zap.Int("status", resp.StatusCode),
			zap.Int("body_bytes", len(detail)))
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	c.logger.Info("Record synced",
		zap.String("record_id", record.ID.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// AuthenticateAdmin checks credentials against the configured administrator.
// An unset admin password never authenticates.
func (c *Client) AuthenticateAdmin(username, password string) bool {
	c.logger.Info("Authenticating admin",
		zap.String("username", username),
		logger.Password("password", password))

	if c.admin.Password == "" {
		c.logger.Warn("Admin password not configured, rejecting login")
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.admin.Password)) == 1
	if !userOK || !passOK {
		c.logger.Warn("Admin authentication failed", zap.String("username", username))
		return false
	}
	return true
}

// DescribeDatabase logs a database connection string with its password masked
func (c *Client) DescribeDatabase(dsn string) {
	c.logger.Info("Connecting to database",
		zap.String("connection", masking.ConnectionString(dsn)))
}

package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/logger"
	"github.com/julianstephens/softworkday/internal/models"
)

// Client talks to a running daemon through its loopback control API.
type Client struct {
	dataDir string
	http    *http.Client
	log     *log.Logger
}

func NewClient(dataDir string) *Client {
	return &Client{
		dataDir: dataDir,
		http:    &http.Client{Timeout: 5 * time.Second},
		log:     logger.Component("daemon-client"),
	}
}

// Reconcile asks the daemon to rebuild its alarms from sched. When no
// daemon is running it returns nil; the daemon reconciles on startup.
func (c *Client) Reconcile(ctx context.Context, sched models.NotificationSchedule) error {
	info, err := Find(c.dataDir)
	if errors.Is(err, ErrNotRunning) {
		c.log.Info("Daemon not running, alarms will be registered when it starts", "reason", err)
		return nil
	}
	if err != nil {
		return err
	}

	body, err := json.Marshal(sched)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < constants.DaemonMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(constants.DaemonRetryDelay):
			}
		}
		lastErr = c.post(ctx, info, "/api/reconcile", body)
		if lastErr == nil {
			return nil
		}
		var se *statusError
		if errors.As(lastErr, &se) {
			// The daemon answered; retrying will not change the answer.
			return lastErr
		}
	}
	return fmt.Errorf("daemon unreachable at %s: %w", info.BaseURL(), lastErr)
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("daemon request failed with status %d: %s", e.code, e.body)
}

func (c *Client) post(ctx context.Context, info Info, path string, body []byte) error {
	url := info.BaseURL() + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(constants.DaemonSecretHeader, info.Secret)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK || res.StatusCode == http.StatusNoContent {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return &statusError{code: res.StatusCode, body: string(bytes.TrimSpace(msg))}
}

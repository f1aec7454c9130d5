package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// DefaultUpdateURL is the endpoint queried for the latest released version.
const DefaultUpdateURL = "https://raw.githubusercontent.com/makutaku/bundlefix/master/version.json"

const (
	updateTimeout    = 10 * time.Second
	maxResponseBytes = 4096
)

// UpdateCheckError indicates the update endpoint returned a non-OK status.
type UpdateCheckError struct {
	Status int
}

func (e *UpdateCheckError) Error() string {
	return fmt.Sprintf("unexpected status code while checking for updates: %d", e.Status)
}

type latestDocument struct {
	Latest string `json:"latest"`
}

// CheckLatest fetches the latest released version string from url. Transient
// network failures are retried with exponential backoff; a non-200 response
// is not retried.
func CheckLatest(ctx context.Context, url string) (string, error) {
	client := &http.Client{Timeout: updateTimeout}

	var latest string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Debugf("update check request failed: %v", err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(&UpdateCheckError{Status: resp.StatusCode})
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return err
		}

		var doc latestDocument
		if err := json.Unmarshal(body, &doc); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to parse update response: %w", err))
		}
		latest = doc.Latest
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return latest, nil
}

// UpdateAvailable queries url and compares the advertised version against
// current. It returns the latest version string alongside the comparison.
func UpdateAvailable(ctx context.Context, url, current string) (string, bool, error) {
	latest, err := CheckLatest(ctx, url)
	if err != nil {
		return "", false, err
	}

	outOfDate, err := IsOutOfDate(current, latest)
	if err != nil {
		return latest, false, err
	}
	return latest, outOfDate, nil
}

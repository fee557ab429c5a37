package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/scrypster/kindred/internal/kinship"
)

// ErrDirectoryUnavailable is returned when the remote directory's circuit
// breaker is open and requests are being rejected to prevent cascading
// failures.
var ErrDirectoryUnavailable = errors.New("person directory unavailable")

// Remote implements kinship.Directory over the HTTP API of an external
// person-directory service. All calls go through a circuit breaker: a
// directory outage degrades edge creation quickly instead of stalling every
// request on timeouts.
type Remote struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

var _ kinship.Directory = (*Remote)(nil)

// RemoteConfig holds the configuration for the remote directory client.
type RemoteConfig struct {
	// BaseURL is the root of the directory service API.
	BaseURL string

	// Timeout is the per-request HTTP timeout. Default: 5 seconds.
	Timeout time.Duration

	// MaxFailures is the number of consecutive failures required to trip
	// the circuit. Default: 3.
	MaxFailures uint32

	// OpenTimeout is the duration the circuit stays open before allowing a
	// test request. Default: 30 seconds.
	OpenTimeout time.Duration
}

// NewRemote creates a remote directory client with circuit breaking.
func NewRemote(cfg RemoteConfig) *Remote {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    "person-directory",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	}

	return &Remote{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// personResponse is the subset of the directory's person document we read.
type personResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// spouseResponse is the directory's current-spouse document.
type spouseResponse struct {
	PersonID string `json:"person_id"`
}

// PersonExists reports whether the remote directory knows the person.
func (d *Remote) PersonExists(ctx context.Context, personID string) (bool, error) {
	_, found, err := d.fetchPerson(ctx, personID)
	if err != nil {
		return false, err
	}
	return found, nil
}

// CurrentSpouse returns the remote directory's current active spouse for the
// person, or "" when there is none.
func (d *Remote) CurrentSpouse(ctx context.Context, personID string) (string, error) {
	var resp spouseResponse
	found, err := d.getJSON(ctx, "/api/people/"+url.PathEscape(personID)+"/current-spouse", &resp)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return resp.PersonID, nil
}

// DisplayName returns the remote directory's display name for the person.
func (d *Remote) DisplayName(ctx context.Context, personID string) (string, error) {
	person, found, err := d.fetchPerson(ctx, personID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("directory: person %s not found", personID)
	}
	return person.DisplayName, nil
}

func (d *Remote) fetchPerson(ctx context.Context, personID string) (*personResponse, bool, error) {
	var resp personResponse
	found, err := d.getJSON(ctx, "/api/people/"+url.PathEscape(personID), &resp)
	if err != nil {
		return nil, false, err
	}
	return &resp, found, nil
}

// getJSON performs a circuit-broken GET and decodes the response into out.
// A 404 reports found=false without counting as a breaker failure.
func (d *Remote) getJSON(ctx context.Context, path string, out interface{}) (bool, error) {
	result, err := d.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
		if err != nil {
			return nil, err
		}

		resp, err := d.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("directory: unexpected status %d for %s", resp.StatusCode, path)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("directory: decode %s: %w", path, err)
		}
		return true, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return false, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
		return false, err
	}
	return result.(bool), nil
}

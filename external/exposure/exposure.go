package exposure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const statusOK = "ok"

// ErrDataUnavailable means the exposure collaborator could not serve the
// location. Unit-local; callers retry a bounded number of times.
var ErrDataUnavailable = fmt.Errorf("exposure data unavailable")

// Exposure resolves the normalized exposure score of a location.
type Exposure interface {
	Get(ctx context.Context, locationID string) (float64, error)
}

type client struct {
	endpoint string
	client   *http.Client
}

type jsonResponse struct {
	Status   string  `json:"status"`
	Exposure float64 `json:"exposure"`
}

// New - exposure provider backed by the asset-value lookup service
func New(endpoint string, httpClient *http.Client) Exposure {
	return &client{
		endpoint: endpoint,
		client:   httpClient,
	}
}

func (c *client) Get(ctx context.Context, locationID string) (float64, error) {
	url := fmt.Sprintf("%s/locations/%s/exposure", c.endpoint, locationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrDataUnavailable, resp.StatusCode)
	}

	var r jsonResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrDataUnavailable, err)
	}
	if r.Status != statusOK {
		return 0, fmt.Errorf("%w: status %q", ErrDataUnavailable, r.Status)
	}

	// The collaborator owns normalization; out-of-range values are its bug.
	if r.Exposure < 0 || r.Exposure > 1 {
		return 0, fmt.Errorf("exposure %f out of [0,1]", r.Exposure)
	}

	return r.Exposure, nil
}

package vulnerability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/geosure/climate-risk-api/schema"
)

const statusOK = "ok"

// ErrDataUnavailable means the vulnerability collaborator could not serve
// the location/hazard pair. Unit-local; callers retry a bounded number of
// times.
var ErrDataUnavailable = fmt.Errorf("vulnerability data unavailable")

// Vulnerability resolves the normalized vulnerability score of a location
// for one hazard type.
type Vulnerability interface {
	Get(ctx context.Context, locationID string, hazard schema.HazardType) (float64, error)
}

type client struct {
	endpoint string
	client   *http.Client
}

type jsonResponse struct {
	Status        string  `json:"status"`
	Vulnerability float64 `json:"vulnerability"`
}

// New - vulnerability provider backed by the building-attribute lookup
// service
func New(endpoint string, httpClient *http.Client) Vulnerability {
	return &client{
		endpoint: endpoint,
		client:   httpClient,
	}
}

func (c *client) Get(ctx context.Context, locationID string, hazard schema.HazardType) (float64, error) {
	url := fmt.Sprintf("%s/locations/%s/vulnerability?hazard=%s", c.endpoint, locationID, hazard)
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

	if r.Vulnerability < 0 || r.Vulnerability > 1 {
		return 0, fmt.Errorf("vulnerability %f out of [0,1]", r.Vulnerability)
	}

	return r.Vulnerability, nil
}

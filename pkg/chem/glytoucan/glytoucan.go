// Package glytoucan provides access to the GlyTouCan glycan structure
// repository: record lookup by accession and WURCS sequence retrieval.
package glytoucan

import (
	"context"
	"fmt"
	"time"

	"github.com/Glycocalex/glycowork-ab/pkg/cache"
	"github.com/Glycocalex/glycowork-ab/pkg/chem"
	"github.com/Glycocalex/glycowork-ab/pkg/errors"
)

const defaultBaseURL = "https://api.glytoucan.org"

// Entry is one registered glycan structure.
type Entry struct {
	Accession string  `json:"accession"` // e.g. "G00026MO"
	WURCS     string  `json:"wurcs"`
	Mass      float64 `json:"mass,omitempty"`
}

// Client provides access to GlyTouCan. All methods are safe for
// concurrent use.
type Client struct {
	*chem.Client
	// BaseURL overrides the API endpoint, used in tests.
	BaseURL string
}

// NewClient creates a GlyTouCan client caching responses in backend for
// ttl, with retries attempts per request.
func NewClient(backend cache.Cache, ttl time.Duration, retries int) *Client {
	return &Client{
		Client:  chem.NewClient(backend, "glytoucan", ttl, retries, nil),
		BaseURL: defaultBaseURL,
	}
}

// ByAccession retrieves the record behind a GlyTouCan accession
// (format G + five digits + two uppercase letters).
func (c *Client) ByAccession(ctx context.Context, accession string, refresh bool) (*Entry, error) {
	if err := errors.ValidateAccession(accession); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/glycans/%s", c.BaseURL, accession)
	var entry Entry
	err := c.Cached(ctx, "accession:"+accession, refresh, &entry, func() error {
		return c.Get(ctx, url, &entry)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// WURCS retrieves only the WURCS sequence of an accession.
func (c *Client) WURCS(ctx context.Context, accession string, refresh bool) (string, error) {
	entry, err := c.ByAccession(ctx, accession, refresh)
	if err != nil {
		return "", err
	}
	return entry.WURCS, nil
}

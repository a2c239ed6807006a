// Package catalog reads the list of published Elm packages.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fnsearch/internal/repocache"
)

const DefaultBaseURL = "https://package.elm-lang.org"

// Package is one entry of the package search index.
type Package struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	License string `json:"license"`
	Version string `json:"version"`
}

// Repo returns the source repository of p at its latest version. Every
// published package lives on GitHub under its own name.
func (p Package) Repo() repocache.GitRepo {
	return repocache.GitRepo{
		URL:     "https://github.com/" + strings.Trim(p.Name, "/"),
		Version: p.Version,
	}
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchPackages downloads search.json. Entries without a name or version
// are dropped.
func (c *Client) FetchPackages(ctx context.Context) ([]Package, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/search.json", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch package catalog: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch package catalog: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var all []Package
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		return nil, fmt.Errorf("decode package catalog: %w", err)
	}
	out := all[:0]
	for _, p := range all {
		p.Name = strings.TrimSpace(p.Name)
		p.Version = strings.TrimSpace(p.Version)
		if p.Name == "" || p.Version == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

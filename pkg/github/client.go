/*
Copyright 2021 Stefan Prodan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client reads git objects from a repository through the GitHub REST API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a client for the repository API base
// e.g. 'https://api.github.com/repos/<owner>/<repo>'.
func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: http.DefaultClient,
	}
}

// WithHTTPClient replaces the default HTTP client.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// TreeURL returns the API endpoint of the tree identified by revision.
func (c *Client) TreeURL(revision string) string {
	return fmt.Sprintf("%s/git/trees/%s", c.baseURL, revision)
}

// GetTree fetches the git tree identified by revision.
func (c *Client) GetTree(ctx context.Context, revision string) (*Tree, error) {
	url := c.TreeURL(revision)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request failed: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s failed: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s failed: %s", url, errorMessage(resp, body))
	}

	tree := &Tree{}
	if err := json.Unmarshal(body, tree); err != nil {
		return nil, fmt.Errorf("decoding tree %s failed: %w", revision, err)
	}
	if tree.Tree == nil {
		return nil, fmt.Errorf("decoding tree %s failed: missing field 'tree'", revision)
	}

	return tree, nil
}

// errorMessage extracts the message field of a GitHub error body, falling back to the HTTP status.
func errorMessage(resp *http.Response, body []byte) string {
	apiErr := struct {
		Message string `json:"message"`
	}{}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Sprintf("%s (%s)", apiErr.Message, resp.Status)
	}
	return resp.Status
}

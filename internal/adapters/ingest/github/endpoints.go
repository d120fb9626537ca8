// Package github provides a resilient GitHub REST v3 client for activity sync
package github

import (
	"context"
	json "encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ViewerRepos returns one page of the authenticated user's repositories,
// most recently updated first. Callers stop paging on a short page
func (c *Client) ViewerRepos(ctx context.Context, page, perPage int) ([]Repo, error) {
	p := fmt.Sprintf("/user/repos?sort=updated&direction=desc&per_page=%d&page=%d", perPage, page)
	var out []Repo
	if err := c.getJSON(ctx, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RepoCommits returns one page of commits authored by author within
// [since, until)
func (c *Client) RepoCommits(
	ctx context.Context,
	fullName, author string,
	since, until time.Time,
	page, perPage int,
) ([]Commit, error) {
	q := url.Values{}
	q.Set("author", author)
	q.Set("since", since.UTC().Format(time.RFC3339))
	q.Set("until", until.UTC().Format(time.RFC3339))
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("page", fmt.Sprint(page))
	p := fmt.Sprintf("/repos/%s/commits?%s", fullName, q.Encode())

	var out []Commit
	if err := c.getJSON(ctx, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ViewerIssues returns one page of issues visible to the authenticated
// user updated since the given instant. GitHub folds pull requests into
// this endpoint; Issue.PullRequest marks them
func (c *Client) ViewerIssues(ctx context.Context, since time.Time, page, perPage int) ([]Issue, error) {
	q := url.Values{}
	q.Set("filter", "all")
	q.Set("state", "all")
	q.Set("since", since.UTC().Format(time.RFC3339))
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("page", fmt.Sprint(page))
	p := "/issues?" + q.Encode()

	var out []Issue
	if err := c.getJSON(ctx, p, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getJSON issues a GET through Do and decodes a bounded body into v
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, "")
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("github close body failed")
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return &GHStatusError{Status: resp.StatusCode, Err: fmt.Errorf("github get %d", resp.StatusCode)}
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

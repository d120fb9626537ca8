package gitlab

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// MemberProjects returns one page of projects the token's user is a
// member of, most recently active first, plus the next page number
// (0 when exhausted)
func (c *Client) MemberProjects(ctx context.Context, page, perPage int) ([]Project, int, error) {
	q := url.Values{}
	q.Set("membership", "true")
	q.Set("simple", "true")
	q.Set("order_by", "last_activity_at")
	q.Set("sort", "desc")
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("page", fmt.Sprint(page))

	var out []Project
	next, err := c.getPage(ctx, "/projects?"+q.Encode(), &out)
	if err != nil {
		return nil, 0, err
	}
	return out, next, nil
}

// ProjectCommits returns one page of a project's commits within
// [since, until), plus the next page number
func (c *Client) ProjectCommits(
	ctx context.Context,
	projectID int64,
	since, until time.Time,
	page, perPage int,
) ([]Commit, int, error) {
	q := url.Values{}
	q.Set("since", since.UTC().Format(time.RFC3339))
	q.Set("until", until.UTC().Format(time.RFC3339))
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("page", fmt.Sprint(page))

	var out []Commit
	next, err := c.getPage(ctx, fmt.Sprintf("/projects/%d/repository/commits?%s", projectID, q.Encode()), &out)
	if err != nil {
		return nil, 0, err
	}
	return out, next, nil
}

// ViewerEvents returns one page of the token user's event feed between
// two day keys (the endpoint filters by date, not instant), plus the
// next page number
func (c *Client) ViewerEvents(ctx context.Context, after, before string, page, perPage int) ([]FeedEvent, int, error) {
	q := url.Values{}
	q.Set("after", after)
	q.Set("before", before)
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("page", fmt.Sprint(page))

	var out []FeedEvent
	next, err := c.getPage(ctx, "/events?"+q.Encode(), &out)
	if err != nil {
		return nil, 0, err
	}
	return out, next, nil
}

package github

import (
	json "encoding/json/v2"
	"strconv"
	"strings"
	"time"

	perr "devecho/internal/platform/errors"
	"devecho/internal/services/events/domain"
)

// Webhook event names we normalize; anything else is ignored upstream
const (
	EventPush         = "push"
	EventPullRequest  = "pull_request"
	EventIssues       = "issues"
	EventIssueComment = "issue_comment"
)

type pushPayload struct {
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	Commits []struct {
		ID        string    `json:"id"`
		Message   string    `json:"message"`
		Timestamp time.Time `json:"timestamp"`
		URL       string    `json:"url"`
		Author    struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"author"`
		Added    []string `json:"added"`
		Modified []string `json:"modified"`
		Removed  []string `json:"removed"`
	} `json:"commits"`
}

type prPayload struct {
	Action string `json:"action"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	PullRequest struct {
		Number    int       `json:"number"`
		Title     string    `json:"title"`
		Body      string    `json:"body"`
		State     string    `json:"state"`
		Merged    bool      `json:"merged"`
		HTMLURL   string    `json:"html_url"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	} `json:"pull_request"`
}

type issuesPayload struct {
	Action string `json:"action"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	Issue struct {
		Number    int       `json:"number"`
		Title     string    `json:"title"`
		Body      string    `json:"body"`
		State     string    `json:"state"`
		HTMLURL   string    `json:"html_url"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	} `json:"issue"`
	Comment *struct {
		ID        int64     `json:"id"`
		Body      string    `json:"body"`
		HTMLURL   string    `json:"html_url"`
		CreatedAt time.Time `json:"created_at"`
		User      struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"comment"`
}

// NormalizeEvent maps one webhook delivery into canonical incoming
// events. A push yields one event per commit; unhandled event names
// yield an empty slice and no error
func NormalizeEvent(event string, payload []byte) ([]domain.Incoming, error) {
	switch event {
	case EventPush:
		return normalizePush(payload)
	case EventPullRequest:
		return normalizePullRequest(payload)
	case EventIssues:
		return normalizeIssues(payload)
	case EventIssueComment:
		return normalizeIssueComment(payload)
	default:
		return nil, nil
	}
}

func normalizePush(payload []byte) ([]domain.Incoming, error) {
	var p pushPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "github push payload")
	}
	out := make([]domain.Incoming, 0, len(p.Commits))
	for _, c := range p.Commits {
		actor := c.Author.Name
		if actor == "" {
			actor = c.Author.Email
		}
		ts := c.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		out = append(out, domain.Incoming{
			TS:         ts,
			Actor:      actor,
			Repo:       p.Repository.FullName,
			Kind:       domain.KindCommit,
			Title:      firstLine(c.Message),
			Body:       c.Message,
			NaturalKey: c.ID,
			Meta: map[string]any{
				"sha":      c.ID,
				"added":    c.Added,
				"modified": c.Modified,
				"removed":  c.Removed,
			},
			Source:  domain.SourceGitHub,
			Channel: domain.ChannelWebhook,
		})
	}
	return out, nil
}

func normalizePullRequest(payload []byte) ([]domain.Incoming, error) {
	var p prPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "github pull_request payload")
	}
	pr := p.PullRequest
	return []domain.Incoming{{
		TS:         pickTS(pr.UpdatedAt, pr.CreatedAt),
		Actor:      p.Sender.Login,
		Repo:       p.Repository.FullName,
		Kind:       domain.KindPullRequest,
		Title:      pr.Title,
		Body:       pr.Body,
		NaturalKey: strconv.Itoa(pr.Number),
		Meta: map[string]any{
			"state":  pr.State,
			"action": p.Action,
			"number": pr.Number,
			"merged": pr.Merged,
		},
		Source:  domain.SourceGitHub,
		Channel: domain.ChannelWebhook,
	}}, nil
}

func normalizeIssues(payload []byte) ([]domain.Incoming, error) {
	var p issuesPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "github issues payload")
	}
	is := p.Issue
	return []domain.Incoming{{
		TS:         pickTS(is.UpdatedAt, is.CreatedAt),
		Actor:      p.Sender.Login,
		Repo:       p.Repository.FullName,
		Kind:       domain.KindIssue,
		Title:      is.Title,
		Body:       is.Body,
		NaturalKey: strconv.Itoa(is.Number),
		Meta: map[string]any{
			"state":  is.State,
			"action": p.Action,
			"number": is.Number,
		},
		Source:  domain.SourceGitHub,
		Channel: domain.ChannelWebhook,
	}}, nil
}

func normalizeIssueComment(payload []byte) ([]domain.Incoming, error) {
	var p issuesPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "github issue_comment payload")
	}
	if p.Comment == nil {
		return nil, nil
	}
	c := p.Comment
	return []domain.Incoming{{
		TS:         pickTS(c.CreatedAt, time.Time{}),
		Actor:      c.User.Login,
		Repo:       p.Repository.FullName,
		Kind:       domain.KindNote,
		Title:      noteTitle(c.Body),
		Body:       c.Body,
		NaturalKey: strconv.FormatInt(c.ID, 10),
		Meta: map[string]any{
			"on":     "issue",
			"number": p.Issue.Number,
		},
		Source:  domain.SourceGitHub,
		Channel: domain.ChannelWebhook,
	}}, nil
}

func pickTS(a, b time.Time) time.Time {
	if !a.IsZero() {
		return a
	}
	if !b.IsZero() {
		return b
	}
	return time.Now().UTC()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// noteTitle truncates a comment body to its first 100 runes
func noteTitle(s string) string {
	r := []rune(s)
	if len(r) > 100 {
		return string(r[:100])
	}
	return s
}

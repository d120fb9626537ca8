package gitlab

import (
	json "encoding/json/v2"
	"strconv"
	"strings"
	"time"

	perr "devecho/internal/platform/errors"
	"devecho/internal/services/events/domain"
)

// Webhook event header values we normalize
const (
	HookPush         = "Push Hook"
	HookMergeRequest = "Merge Request Hook"
	HookNote         = "Note Hook"
)

type pushHook struct {
	Project struct {
		PathWithNamespace string `json:"path_with_namespace"`
	} `json:"project"`
	Commits []struct {
		ID        string   `json:"id"`
		Message   string   `json:"message"`
		Timestamp hookTime `json:"timestamp"`
		URL       string   `json:"url"`
		Author    struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"author"`
		Added    []string `json:"added"`
		Modified []string `json:"modified"`
		Removed  []string `json:"removed"`
	} `json:"commits"`
}

type mrHook struct {
	User struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"user"`
	Project struct {
		PathWithNamespace string `json:"path_with_namespace"`
	} `json:"project"`
	ObjectAttributes struct {
		IID          int64    `json:"iid"`
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		State        string   `json:"state"`
		SourceBranch string   `json:"source_branch"`
		TargetBranch string   `json:"target_branch"`
		URL          string   `json:"url"`
		CreatedAt    hookTime `json:"created_at"`
		UpdatedAt    hookTime `json:"updated_at"`
	} `json:"object_attributes"`
}

type noteHook struct {
	User struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"user"`
	Project struct {
		PathWithNamespace string `json:"path_with_namespace"`
	} `json:"project"`
	ObjectAttributes struct {
		ID           int64    `json:"id"`
		Note         string   `json:"note"`
		NoteableType string   `json:"noteable_type"`
		URL          string   `json:"url"`
		CreatedAt    hookTime `json:"created_at"`
	} `json:"object_attributes"`
	MergeRequest *struct {
		IID int64 `json:"iid"`
	} `json:"merge_request"`
}

// hookTime tolerates the two timestamp encodings GitLab webhooks emit:
// RFC 3339 on commits and "2006-01-02 15:04:05 MST" on object attributes
type hookTime struct{ time.Time }

var hookLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05 -0700",
}

func (t *hookTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	var last error
	for _, layout := range hookLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		last = err
	}
	return last
}

// NormalizeHook maps one webhook delivery into canonical incoming
// events. A push yields one event per commit; unhandled hook names
// yield an empty slice and no error
func NormalizeHook(event string, payload []byte) ([]domain.Incoming, error) {
	switch event {
	case HookPush:
		return normalizePush(payload)
	case HookMergeRequest:
		return normalizeMergeRequest(payload)
	case HookNote:
		return normalizeNote(payload)
	default:
		return nil, nil
	}
}

func normalizePush(payload []byte) ([]domain.Incoming, error) {
	var p pushHook
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "gitlab push hook payload")
	}
	out := make([]domain.Incoming, 0, len(p.Commits))
	for _, c := range p.Commits {
		actor := c.Author.Name
		if actor == "" {
			actor = c.Author.Email
		}
		ts := c.Timestamp.Time
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		out = append(out, domain.Incoming{
			TS:         ts,
			Actor:      actor,
			Repo:       p.Project.PathWithNamespace,
			Kind:       domain.KindCommit,
			Title:      firstLine(c.Message),
			Body:       c.Message,
			NaturalKey: c.ID,
			Meta: map[string]any{
				"added":    c.Added,
				"modified": c.Modified,
				"removed":  c.Removed,
			},
			Source:  domain.SourceGitLab,
			Channel: domain.ChannelWebhook,
		})
	}
	return out, nil
}

func normalizeMergeRequest(payload []byte) ([]domain.Incoming, error) {
	var p mrHook
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "gitlab merge request hook payload")
	}
	a := p.ObjectAttributes
	actor := p.User.Name
	if actor == "" {
		actor = p.User.Username
	}
	return []domain.Incoming{{
		TS:         pickTS(a.UpdatedAt.Time, a.CreatedAt.Time),
		Actor:      actor,
		Repo:       p.Project.PathWithNamespace,
		Kind:       domain.KindMergeRequest,
		Title:      a.Title,
		Body:       a.Description,
		NaturalKey: strconv.FormatInt(a.IID, 10),
		Meta: map[string]any{
			"state":         a.State,
			"iid":           a.IID,
			"source_branch": a.SourceBranch,
			"target_branch": a.TargetBranch,
		},
		Source:  domain.SourceGitLab,
		Channel: domain.ChannelWebhook,
	}}, nil
}

func normalizeNote(payload []byte) ([]domain.Incoming, error) {
	var p noteHook
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "gitlab note hook payload")
	}
	a := p.ObjectAttributes
	actor := p.User.Name
	if actor == "" {
		actor = p.User.Username
	}
	meta := map[string]any{
		"on":  a.NoteableType,
		"ref": a.ID,
	}
	if p.MergeRequest != nil {
		meta["mr_iid"] = p.MergeRequest.IID
	}
	return []domain.Incoming{{
		TS:         pickTS(a.CreatedAt.Time, time.Time{}),
		Actor:      actor,
		Repo:       p.Project.PathWithNamespace,
		Kind:       domain.KindNote,
		Title:      noteTitle(a.Note),
		Body:       a.Note,
		NaturalKey: strconv.FormatInt(a.ID, 10),
		Meta:       meta,
		Source:     domain.SourceGitLab,
		Channel:    domain.ChannelWebhook,
	}}, nil
}

// KindForFeed classifies one user events feed entry
func KindForFeed(ev FeedEvent) domain.Kind {
	target := strings.ToLower(ev.TargetType)
	action := strings.ToLower(ev.ActionName)
	switch {
	case strings.Contains(target, "merge"):
		return domain.KindMergeRequest
	case strings.Contains(target, "issue"):
		return domain.KindIssue
	case ev.Note != nil:
		return domain.KindNote
	case strings.Contains(action, "pushed"):
		return domain.KindCommit
	default:
		return domain.KindGeneric
	}
}

// FeedIncoming maps one user events feed entry to a canonical incoming
// event. repo is the resolved project path; pass "" to fall back to the
// numeric project id
func FeedIncoming(ev FeedEvent, repo, fallbackActor string) domain.Incoming {
	if repo == "" {
		if ev.ProjectID > 0 {
			repo = strconv.FormatInt(ev.ProjectID, 10)
		} else {
			repo = "multi"
		}
	}
	actor := ev.Author.Name
	if actor == "" {
		actor = fallbackActor
	}

	kind := KindForFeed(ev)
	title := ev.TargetTitle
	var body []string
	if ev.PushData != nil {
		if ev.PushData.CommitTitle != "" {
			title = ev.PushData.CommitTitle
		}
		if ev.PushData.Ref != "" {
			body = append(body, "ref: "+ev.PushData.Ref)
		}
	}
	if title == "" {
		title = strings.TrimSpace(ev.ActionName + " " + ev.TargetType)
	}
	if ev.Note != nil && ev.Note.Body != "" {
		body = append(body, ev.Note.Body)
	}

	return domain.Incoming{
		TS:         ev.CreatedAt,
		Actor:      actor,
		Repo:       repo,
		Kind:       kind,
		Title:      title,
		Body:       strings.Join(body, "\n"),
		NaturalKey: feedNaturalKey(ev, kind),
		Meta: map[string]any{
			"action_name": ev.ActionName,
			"target_type": ev.TargetType,
			"project_id":  ev.ProjectID,
		},
		Source:  domain.SourceGitLab,
		Channel: domain.ChannelPoll,
	}
}

// feedNaturalKey picks the identifier that matches what the webhook
// path would have recorded, so poll and webhook deliveries of the same
// activity collapse to one row
func feedNaturalKey(ev FeedEvent, kind domain.Kind) string {
	switch kind {
	case domain.KindCommit:
		if ev.PushData != nil && ev.PushData.CommitTo != "" {
			return ev.PushData.CommitTo
		}
	case domain.KindNote:
		if ev.Note != nil && ev.Note.ID > 0 {
			return strconv.FormatInt(ev.Note.ID, 10)
		}
	case domain.KindMergeRequest, domain.KindIssue:
		if ev.TargetIID > 0 {
			return strconv.FormatInt(ev.TargetIID, 10)
		}
	}
	if ev.ID > 0 {
		return "feed-" + strconv.FormatInt(ev.ID, 10)
	}
	return ""
}

// MatchesAuthor filters a commit against the configured identity:
// exact email match when an email is configured, otherwise a case
// insensitive name substring match
func MatchesAuthor(c Commit, email, name string) bool {
	if email != "" {
		return strings.EqualFold(c.AuthorEmail, email)
	}
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(c.AuthorName), strings.ToLower(name))
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

// noteTitle truncates a note body to its first 100 runes
func noteTitle(s string) string {
	r := []rune(s)
	if len(r) > 100 {
		return string(r[:100])
	}
	return s
}

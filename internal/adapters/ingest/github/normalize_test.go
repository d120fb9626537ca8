package github

import (
	"testing"

	"devecho/internal/services/events/domain"
)

const pushJSON = `{
  "repository": {"full_name": "team/svc"},
  "commits": [
    {
      "id": "aaa111",
      "message": "feat: wire sync\n\nsee https://x.test/doc",
      "timestamp": "2025-03-11T10:00:00Z",
      "author": {"name": "Jihyun Shin", "email": "jihyun@x.test"},
      "added": ["a.go"],
      "modified": [],
      "removed": []
    },
    {
      "id": "bbb222",
      "message": "chore: bump deps",
      "timestamp": "2025-03-11T10:05:00Z",
      "author": {"name": "", "email": "jihyun@x.test"}
    }
  ]
}`

func TestNormalizePush_OneEventPerCommit(t *testing.T) {
	out, err := NormalizeEvent(EventPush, []byte(pushJSON))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d events, want 2", len(out))
	}

	first := out[0]
	if first.Kind != domain.KindCommit || first.NaturalKey != "aaa111" {
		t.Fatalf("first = %+v", first)
	}
	if first.Title != "feat: wire sync" {
		t.Fatalf("title should be the first message line, got %q", first.Title)
	}
	if first.Actor != "Jihyun Shin" {
		t.Fatalf("actor = %q", first.Actor)
	}
	if first.Repo != "team/svc" {
		t.Fatalf("repo = %q", first.Repo)
	}

	// email fallback when the commit author name is empty
	if out[1].Actor != "jihyun@x.test" {
		t.Fatalf("second actor = %q", out[1].Actor)
	}
}

const prJSON = `{
  "action": "opened",
  "sender": {"login": "jihyun"},
  "repository": {"full_name": "team/svc"},
  "pull_request": {
    "number": 7,
    "title": "add author filter",
    "body": "closes https://x.test/issue/3",
    "state": "open",
    "merged": false,
    "created_at": "2025-03-11T09:00:00Z",
    "updated_at": "2025-03-11T09:30:00Z"
  }
}`

func TestNormalizePullRequest(t *testing.T) {
	out, err := NormalizeEvent(EventPullRequest, []byte(prJSON))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d events, want 1", len(out))
	}
	e := out[0]
	if e.Kind != domain.KindPullRequest || e.NaturalKey != "7" {
		t.Fatalf("event = %+v", e)
	}
	if e.TS.Format("15:04") != "09:30" {
		t.Fatalf("should prefer updated_at, got %v", e.TS)
	}
	if e.Meta["action"] != "opened" {
		t.Fatalf("meta = %v", e.Meta)
	}
}

const issueCommentJSON = `{
  "sender": {"login": "someone-else"},
  "repository": {"full_name": "team/svc"},
  "issue": {"number": 3, "title": "flaky retry loop"},
  "comment": {
    "id": 9001,
    "body": "reproduced on main, see https://x.test/log",
    "created_at": "2025-03-11T12:00:00Z",
    "user": {"login": "jihyun"}
  }
}`

func TestNormalizeIssueComment(t *testing.T) {
	out, err := NormalizeEvent(EventIssueComment, []byte(issueCommentJSON))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d events, want 1", len(out))
	}
	e := out[0]
	if e.Kind != domain.KindNote || e.NaturalKey != "9001" {
		t.Fatalf("event = %+v", e)
	}
	// the comment author, not the delivery sender
	if e.Actor != "jihyun" {
		t.Fatalf("actor = %q", e.Actor)
	}
}

func TestNormalizeEvent_UnknownEventIgnored(t *testing.T) {
	out, err := NormalizeEvent("watch", []byte(`{}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("unknown events must be ignored, got %d", len(out))
	}
}

func TestNoteTitle_Truncation(t *testing.T) {
	long := make([]rune, 150)
	for i := range long {
		long[i] = 'x'
	}
	if got := noteTitle(string(long)); len([]rune(got)) != 100 {
		t.Fatalf("len = %d, want 100", len([]rune(got)))
	}
	if got := noteTitle("short"); got != "short" {
		t.Fatalf("got %q", got)
	}
}

package gitlab

import "time"

// Project is a partial GitLab project document with fields we use
type Project struct {
	ID                int64  `json:"id"`
	PathWithNamespace string `json:"path_with_namespace"`
	WebURL            string `json:"web_url"`
}

// Commit is one entry of GET /projects/{id}/repository/commits
type Commit struct {
	ID          string    `json:"id"`
	ShortID     string    `json:"short_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	CreatedAt   time.Time `json:"created_at"`
	WebURL      string    `json:"web_url"`
}

// FeedEvent is one entry of the user events feed GET /events. The feed
// mixes pushes, merge requests, issues, and comments
type FeedEvent struct {
	ID          int64     `json:"id"`
	ActionName  string    `json:"action_name"`
	TargetType  string    `json:"target_type"`
	TargetIID   int64     `json:"target_iid"`
	TargetID    int64     `json:"target_id"`
	TargetTitle string    `json:"target_title"`
	CreatedAt   time.Time `json:"created_at"`
	ProjectID   int64     `json:"project_id"`
	Author      struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"author"`
	PushData *struct {
		CommitTitle string `json:"commit_title"`
		CommitTo    string `json:"commit_to"`
		Ref         string `json:"ref"`
		CommitCount int    `json:"commit_count"`
	} `json:"push_data"`
	Note *struct {
		ID   int64  `json:"id"`
		Body string `json:"body"`
	} `json:"note"`
}

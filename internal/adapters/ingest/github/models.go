package github

import "time"

// Repo is a partial GitHub repository document with fields we use
type Repo struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	FullName string    `json:"full_name"`
	Private  bool      `json:"private"`
	Owner    User      `json:"owner"`
	Fork     bool      `json:"fork"`
	PushedAt time.Time `json:"pushed_at"`
	HTMLURL  string    `json:"html_url"`
}

// User is a partial GitHub user or org document
type User struct {
	ID      int64  `json:"id"`
	Login   string `json:"login"`
	Type    string `json:"type"`
	HTMLURL string `json:"html_url"`
}

// Commit is one entry of GET /repos/{owner}/{repo}/commits
type Commit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message string `json:"message"`
		Author  struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author *User `json:"author"`
}

// Issue is one entry of GET /repos/{owner}/{repo}/issues. GitHub returns
// pull requests on this endpoint too; PullRequest is non nil for those
type Issue struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	State       string    `json:"state"`
	HTMLURL     string    `json:"html_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        User      `json:"user"`
	Repository  *Repo     `json:"repository"`
	PullRequest *struct {
		HTMLURL string `json:"html_url"`
	} `json:"pull_request"`
}

// Package service implements polling sync of developer activity
package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	gh "devecho/internal/adapters/ingest/github"
	gl "devecho/internal/adapters/ingest/gitlab"
	"devecho/internal/core/timeband"
	"devecho/internal/platform/logger"
	evdomain "devecho/internal/services/events/domain"
	"devecho/internal/services/syncer/domain"
)

const defaultPerPage = 100

// Config for the syncer. A nil client means that source is not
// configured and is skipped with a warning, never an error
type Config struct {
	Zone    *time.Location
	PerPage int

	GitHub     *gh.Client
	GitHubUser string

	GitLab      *gl.Client
	GitLabUser  string
	GitLabEmail string
}

// Service fans over configured sources sequentially and feeds the
// events writer. Re-delivery is harmless: the writer's dedup collapses
// anything the webhook path already stored
type Service struct {
	writer evdomain.WriterPort
	cfg    Config
	log    logger.Logger
	now    func() time.Time
}

// New constructs the syncer
func New(writer evdomain.WriterPort, cfg Config) *Service {
	if writer == nil {
		panic("syncer.Service requires a non nil events writer")
	}
	if cfg.Zone == nil {
		cfg.Zone = time.UTC
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}
	return &Service{
		writer: writer,
		cfg:    cfg,
		log:    *logger.Named("syncer"),
		now:    time.Now,
	}
}

// SyncToday collects today's activity from every configured source.
// Per repository failures are logged and skipped; a source level
// failure marks that source failed and the run moves on
func (s *Service) SyncToday(ctx context.Context) domain.Summary {
	window := timeband.TodayRange(s.now(), s.cfg.Zone)
	sum := domain.Summary{
		RunID: uuid.NewString(),
		Start: window.Start,
		End:   window.End,
	}

	s.log.Info().
		Str("run_id", sum.RunID).
		Time("start", window.Start).
		Time("end", window.End).
		Msg("sync run starting")

	sum.GitHub = s.syncGitHub(ctx, window)
	sum.GitLab = s.syncGitLab(ctx, window)

	s.log.Info().
		Str("run_id", sum.RunID).
		Int("github_inserted", sum.GitHub.Inserted).
		Int("gitlab_inserted", sum.GitLab.Inserted).
		Int("failed", sum.GitHub.Failed+sum.GitLab.Failed).
		Msg("sync run finished")
	return sum
}

func (s *Service) syncGitHub(ctx context.Context, window timeband.DayRange) domain.SourceStats {
	var st domain.SourceStats
	if s.cfg.GitHub == nil || s.cfg.GitHubUser == "" {
		s.log.Warn().Msg("github credentials not configured, skipping source")
		st.Skipped = true
		return st
	}

	repos, err := s.githubRepos(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("github repo listing failed")
		st.Failed++
		return st
	}
	st.Repos = len(repos)

	for _, repo := range repos {
		ins, err := s.githubRepoCommits(ctx, repo.FullName, window)
		if err != nil {
			s.log.Warn().Err(err).Str("repo", repo.FullName).Msg("github commit sync failed, skipping repo")
			st.Failed++
			continue
		}
		res := s.writer.IngestBatch(ctx, ins)
		st.Seen += res.Seen
		st.Inserted += res.Inserted
		st.Failed += res.Failed
	}

	issues, err := s.githubIssues(ctx, window)
	if err != nil {
		s.log.Warn().Err(err).Msg("github issue sync failed")
		st.Failed++
		return st
	}
	res := s.writer.IngestBatch(ctx, issues)
	st.Seen += res.Seen
	st.Inserted += res.Inserted
	st.Failed += res.Failed
	return st
}

func (s *Service) githubRepos(ctx context.Context) ([]gh.Repo, error) {
	var out []gh.Repo
	for page := 1; ; page++ {
		batch, err := s.cfg.GitHub.ViewerRepos(ctx, page, s.cfg.PerPage)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if len(batch) < s.cfg.PerPage {
			return out, nil
		}
	}
}

func (s *Service) githubRepoCommits(ctx context.Context, fullName string, window timeband.DayRange) ([]evdomain.Incoming, error) {
	var out []evdomain.Incoming
	for page := 1; ; page++ {
		batch, err := s.cfg.GitHub.RepoCommits(ctx, fullName, s.cfg.GitHubUser, window.Start, window.End, page, s.cfg.PerPage)
		if err != nil {
			return nil, err
		}
		for _, c := range batch {
			out = append(out, commitIncoming(c, fullName, s.cfg.GitHubUser))
		}
		if len(batch) < s.cfg.PerPage {
			return out, nil
		}
	}
}

func commitIncoming(c gh.Commit, repo, fallbackActor string) evdomain.Incoming {
	actor := c.Commit.Author.Name
	if actor == "" {
		actor = fallbackActor
	}
	return evdomain.Incoming{
		TS:         c.Commit.Author.Date,
		Actor:      actor,
		Repo:       repo,
		Kind:       evdomain.KindCommit,
		Title:      firstLine(c.Commit.Message),
		Body:       c.Commit.Message,
		NaturalKey: c.SHA,
		Meta: map[string]any{
			"sha": c.SHA,
			"url": c.HTMLURL,
		},
		Source:  evdomain.SourceGitHub,
		Channel: evdomain.ChannelPoll,
	}
}

func (s *Service) githubIssues(ctx context.Context, window timeband.DayRange) ([]evdomain.Incoming, error) {
	var out []evdomain.Incoming
	for page := 1; ; page++ {
		batch, err := s.cfg.GitHub.ViewerIssues(ctx, window.Start, page, s.cfg.PerPage)
		if err != nil {
			return nil, err
		}
		for _, is := range batch {
			if is.User.Login != s.cfg.GitHubUser {
				continue
			}
			repo := evdomain.UnknownField
			if is.Repository != nil {
				repo = is.Repository.FullName
			}
			kind := evdomain.KindIssue
			if is.PullRequest != nil {
				kind = evdomain.KindPullRequest
			}
			out = append(out, evdomain.Incoming{
				TS:         is.CreatedAt,
				Actor:      s.cfg.GitHubUser,
				Repo:       repo,
				Kind:       kind,
				Title:      is.Title,
				Body:       is.Body,
				NaturalKey: strconv.Itoa(is.Number),
				Meta: map[string]any{
					"number": is.Number,
					"state":  is.State,
					"url":    is.HTMLURL,
				},
				Source:  evdomain.SourceGitHub,
				Channel: evdomain.ChannelPoll,
			})
		}
		if len(batch) < s.cfg.PerPage {
			return out, nil
		}
	}
}

func (s *Service) syncGitLab(ctx context.Context, window timeband.DayRange) domain.SourceStats {
	var st domain.SourceStats
	if s.cfg.GitLab == nil || (s.cfg.GitLabUser == "" && s.cfg.GitLabEmail == "") {
		s.log.Warn().Msg("gitlab credentials not configured, skipping source")
		st.Skipped = true
		return st
	}

	projects, err := s.gitlabProjects(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("gitlab project listing failed")
		st.Failed++
		return st
	}
	st.Repos = len(projects)

	paths := make(map[int64]string, len(projects))
	for _, p := range projects {
		paths[p.ID] = p.PathWithNamespace
	}

	for _, p := range projects {
		ins, err := s.gitlabProjectCommits(ctx, p, window)
		if err != nil {
			s.log.Warn().Err(err).Str("project", p.PathWithNamespace).Msg("gitlab commit sync failed, skipping project")
			st.Failed++
			continue
		}
		res := s.writer.IngestBatch(ctx, ins)
		st.Seen += res.Seen
		st.Inserted += res.Inserted
		st.Failed += res.Failed
	}

	feed, err := s.gitlabFeed(ctx, window, paths)
	if err != nil {
		s.log.Warn().Err(err).Msg("gitlab event feed sync failed")
		st.Failed++
		return st
	}
	res := s.writer.IngestBatch(ctx, feed)
	st.Seen += res.Seen
	st.Inserted += res.Inserted
	st.Failed += res.Failed
	return st
}

func (s *Service) gitlabProjects(ctx context.Context) ([]gl.Project, error) {
	var out []gl.Project
	for page := 1; page > 0; {
		batch, next, err := s.cfg.GitLab.MemberProjects(ctx, page, s.cfg.PerPage)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		page = next
	}
	return out, nil
}

func (s *Service) gitlabProjectCommits(ctx context.Context, p gl.Project, window timeband.DayRange) ([]evdomain.Incoming, error) {
	var out []evdomain.Incoming
	for page := 1; page > 0; {
		batch, next, err := s.cfg.GitLab.ProjectCommits(ctx, p.ID, window.Start, window.End, page, s.cfg.PerPage)
		if err != nil {
			return nil, err
		}
		for _, c := range batch {
			if !gl.MatchesAuthor(c, s.cfg.GitLabEmail, s.cfg.GitLabUser) {
				continue
			}
			actor := c.AuthorName
			if actor == "" {
				actor = s.cfg.GitLabUser
			}
			title := c.Title
			if title == "" {
				title = firstLine(c.Message)
			}
			out = append(out, evdomain.Incoming{
				TS:         c.CreatedAt,
				Actor:      actor,
				Repo:       p.PathWithNamespace,
				Kind:       evdomain.KindCommit,
				Title:      title,
				Body:       c.Message,
				NaturalKey: c.ID,
				Meta: map[string]any{
					"short_id":   c.ShortID,
					"web_url":    c.WebURL,
					"project_id": p.ID,
				},
				Source:  evdomain.SourceGitLab,
				Channel: evdomain.ChannelPoll,
			})
		}
		page = next
	}
	return out, nil
}

func (s *Service) gitlabFeed(ctx context.Context, window timeband.DayRange, paths map[int64]string) ([]evdomain.Incoming, error) {
	// the events endpoint filters by date, not instant
	after := timeband.DayKey(window.Start.AddDate(0, 0, -1), s.cfg.Zone)
	before := timeband.DayKey(window.End, s.cfg.Zone)

	var out []evdomain.Incoming
	for page := 1; page > 0; {
		batch, next, err := s.cfg.GitLab.ViewerEvents(ctx, after, before, page, s.cfg.PerPage)
		if err != nil {
			return nil, err
		}
		for _, ev := range batch {
			out = append(out, gl.FeedIncoming(ev, paths[ev.ProjectID], s.cfg.GitLabUser))
		}
		page = next
	}
	return out, nil
}

func firstLine(msg string) string {
	for i := 0; i < len(msg); i++ {
		if msg[i] == '\n' {
			return msg[:i]
		}
	}
	return msg
}

var _ domain.SyncPort = (*Service)(nil)

package module

import (
	"time"

	"devecho/internal/platform/config"
	"devecho/internal/platform/logger"
)

// Options holds configuration settings for the syncer module
type Options struct {
	Zone    *time.Location
	PerPage int

	GitHubBaseURL string
	GitHubToken   string
	GitHubUser    string

	GitLabBaseURL string
	GitLabToken   string
	GitLabUser    string
	GitLabEmail   string

	HTTPTimeout time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	name := cfg.Prefix("CORE_").MayString("TIMEZONE", "Asia/Seoul")
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Named("syncer").Warn().
			Str("timezone", name).
			Msg("unknown timezone, falling back to UTC")
		loc = time.UTC
	}

	ghf := cfg.Prefix("CORE_GITHUB_")
	glf := cfg.Prefix("CORE_GITLAB_")
	sf := cfg.Prefix("CORE_SYNC_")
	return Options{
		Zone:    loc,
		PerPage: sf.MayInt("PER_PAGE", 100),

		GitHubBaseURL: ghf.MayString("BASE_URL", "https://api.github.com"),
		GitHubToken:   ghf.MayString("TOKEN", ""),
		GitHubUser:    ghf.MayString("USERNAME", ""),

		GitLabBaseURL: glf.MayString("BASE_URL", ""),
		GitLabToken:   glf.MayString("TOKEN", ""),
		GitLabUser:    glf.MayString("USERNAME", ""),
		GitLabEmail:   glf.MayString("AUTHOR_EMAIL", ""),

		HTTPTimeout: sf.MayDuration("HTTP_TIMEOUT", 20*time.Second),
	}
}

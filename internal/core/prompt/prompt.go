// Package prompt assembles summarizer prompts and weekly rollups from
// embedded templates
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"

	perr "devecho/internal/platform/errors"
)

//go:embed templates/*.tmpl
var tmplFS embed.FS

var (
	dailyTmpl  = mustTemplate("templates/daily.tmpl")
	weeklyTmpl = mustTemplate("templates/weekly.tmpl")
)

func mustTemplate(name string) *pongo2.Template {
	raw, err := tmplFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("prompt: embedded template %s: %v", name, err))
	}
	return pongo2.Must(pongo2.FromBytes(raw))
}

// Line is one activity entry rendered into a prompt. Callers map their
// event rows into Lines so this package stays free of storage types
type Line struct {
	TS    time.Time
	Kind  string
	Repo  string
	Title string
	Links []string
}

// Daily holds everything the daily prompt needs
type Daily struct {
	Actor     string
	DayKey    string
	Important []Line
	Minor     []Line
}

// RenderDaily produces the summarizer prompt for one day of activity.
// Line order is preserved, so identical input yields identical output
func RenderDaily(d Daily) (string, error) {
	out, err := dailyTmpl.Execute(pongo2.Context{
		"actor":     d.Actor,
		"day_key":   d.DayKey,
		"important": bullets(d.Important),
		"minor":     bullets(d.Minor),
	})
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "render daily prompt")
	}
	return out, nil
}

// Weekly holds the inputs for the weekly rollup document
type Weekly struct {
	Actor    string
	StartDay string
	EndDay   string

	// Sections are the daily report markdowns for the window, oldest first
	Sections []string
}

// sectionSep joins daily sections inside the weekly rollup
const sectionSep = "\n\n---\n\n"

// RenderWeekly produces the weekly rollup markdown by stitching the
// window's daily reports together under one heading
func RenderWeekly(w Weekly) (string, error) {
	out, err := weeklyTmpl.Execute(pongo2.Context{
		"actor":     w.Actor,
		"start_day": w.StartDay,
		"end_day":   w.EndDay,
		"sections":  strings.Join(w.Sections, sectionSep),
	})
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "render weekly rollup")
	}
	return out, nil
}

// bullets renders lines as "- HH:MM [kind] title (repo) link..." with no
// source of nondeterminism
func bullets(lines []Line) string {
	if len(lines) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(l.TS.Format("15:04"))
		b.WriteString(" [")
		b.WriteString(l.Kind)
		b.WriteString("] ")
		b.WriteString(l.Title)
		if l.Repo != "" {
			b.WriteString(" (")
			b.WriteString(l.Repo)
			b.WriteString(")")
		}
		for _, u := range l.Links {
			b.WriteByte(' ')
			b.WriteString(u)
		}
	}
	return b.String()
}

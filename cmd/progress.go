package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/tasks"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// progressPrinter renders copy progress: a dot per video, or a line per event when verbose.
type progressPrinter struct {
	w       io.Writer
	verbose bool
	reading bool
	writing bool
}

func newProgressPrinter(w io.Writer, verbose bool) *progressPrinter {
	return &progressPrinter{w: w, verbose: verbose}
}

// banner announces the active modes before any work starts.
func (p *progressPrinter) banner(debug, batch, pretend bool) {
	if debug {
		p.line(dimStyle.Render("Debugging ..."))
	}
	if batch {
		p.line(dimStyle.Render("Batching ..."))
	}
	if pretend {
		p.line(dimStyle.Render("Pretending ..."))
	}
}

// consume renders updates until the channel is closed, then closes done.
func (p *progressPrinter) consume(updates <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)
	for update := range updates {
		p.render(update)
	}
}

func (p *progressPrinter) render(u tasks.ProgressUpdate) {
	switch u.Phase {
	case tasks.LookupPlaylist:
		if pl, ok := u.Data.(*models.Playlist); ok {
			p.line(titleStyle.Render("== " + pl.Title + " =="))
		}
	case tasks.ReadItem:
		if !p.reading {
			p.reading = true
			fmt.Fprint(p.w, "Reading: ")
		}
		fmt.Fprint(p.w, ".")
	case tasks.ReadComplete:
		if !p.reading {
			fmt.Fprint(p.w, "Reading: ")
		}
		p.reading = false
		fmt.Fprintln(p.w)
	case tasks.FixPosition, tasks.CreatePlaylist, tasks.WouldInsert, tasks.FillGap:
		if p.verbose {
			p.line(u.Message)
		}
	case tasks.RoundStart:
		p.startWriting()
		if p.verbose {
			p.line(dimStyle.Render(u.Message))
		}
	case tasks.Insert:
		p.startWriting()
		if p.verbose {
			p.line(okStyle.Render(u.Message))
		} else {
			fmt.Fprint(p.w, ".")
		}
	case tasks.Skip, tasks.Retry:
		if !p.verbose {
			fmt.Fprintln(p.w)
		}
		p.line(warningStyle.Render("WARNING: " + u.Message))
	case tasks.RoundComplete:
		if p.verbose {
			p.line(dimStyle.Render(u.Message))
		} else {
			fmt.Fprintln(p.w)
		}
	}
}

// finish closes the writing section, printing its header if no round ever started.
func (p *progressPrinter) finish() {
	p.startWriting()
	fmt.Fprintln(p.w)
}

func (p *progressPrinter) startWriting() {
	if p.writing {
		return
	}
	p.writing = true
	fmt.Fprint(p.w, "Writing: ")
	if p.verbose {
		fmt.Fprintln(p.w)
	}
}

func (p *progressPrinter) line(s string) {
	fmt.Fprintln(p.w, s)
}

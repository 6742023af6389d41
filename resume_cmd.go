package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dgnsrekt/typedtext/internal/progress"
	"github.com/dgnsrekt/typedtext/internal/source"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
)

const sessionTitleWidth = 36

var errNoSession = errors.New("no saved session")

var resumeCmd = &cobra.Command{
	Use:   "resume [QUERY]",
	Short: "List saved sessions or continue one",
	Long: paragraph(fmt.Sprintf("\n%s saved typing sessions. With a QUERY, continue the session whose title or source best matches it.",
		keyword("List"))),
	Example: paragraph("typedtext resume\ntypedtext resume readme"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		snaps, err := store.List()
		_ = store.Close()
		if err != nil {
			return fmt.Errorf("unable to list sessions: %w", err)
		}

		if len(args) == 0 {
			return listSessions(os.Stdout, snaps, time.Now())
		}

		snap, err := pickSession(snaps, args[0])
		if err != nil {
			return err
		}
		index := snap.Index
		if snap.Done() {
			index = 0
		}
		src := &source.Source{Text: snap.Text, Title: snap.Title}
		return typeSource(cmd.Context(), src, nil, index)
	},
}

// sessions adapts snapshots to fuzzy.Source.
type sessions []progress.Snapshot

func (s sessions) String(i int) string { return s[i].Title + " " + s[i].Source }
func (s sessions) Len() int            { return len(s) }

// pickSession returns the snapshot that best matches query.
func pickSession(snaps []progress.Snapshot, query string) (progress.Snapshot, error) {
	matches := fuzzy.FindFrom(query, sessions(snaps))
	if len(matches) == 0 {
		return progress.Snapshot{}, fmt.Errorf("%w matches %q", errNoSession, query)
	}
	return snaps[matches[0].Index], nil
}

func listSessions(w io.Writer, snaps []progress.Snapshot, now time.Time) error {
	if len(snaps) == 0 {
		_, err := fmt.Fprintln(w, "No saved sessions.")
		return err //nolint:wrapcheck
	}
	for _, s := range snaps {
		title := runewidth.Truncate(s.Title, sessionTitleWidth, ellipsis)
		_, err := fmt.Fprintf(w, "%s %5.1f%%  %s/%s  %s\n",
			runewidth.FillRight(title, sessionTitleWidth),
			s.Percent(),
			humanize.Comma(int64(s.Index)),
			humanize.Comma(int64(s.Length)),
			humanize.RelTime(s.UpdatedAt, now, "ago", "from now"),
		)
		if err != nil {
			return fmt.Errorf("unable to write session list: %w", err)
		}
	}
	return nil
}

const ellipsis = "…"

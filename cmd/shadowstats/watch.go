package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ericfisherdev/shadowstats/internal/application"
	"github.com/ericfisherdev/shadowstats/internal/domain/model"
	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

// runWatch reads usernames from stdin, one per line. Each line supersedes the
// previous load; "r" refreshes the current user and "q" quits.
func runWatch(ctx context.Context, a *app, stdin io.Reader, stdout io.Writer) error {
	var mu sync.Mutex
	viewer := application.NewViewer(a.stats, func(st application.ViewState) {
		mu.Lock()
		defer mu.Unlock()
		printState(stdout, st)
	})

	fmt.Fprintln(stdout, "enter a GitHub username (r = refresh, q = quit)")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	var last <-chan struct{}
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				// Input closed: let the latest load finish before exiting.
				if last != nil {
					select {
					case <-last:
					case <-ctx.Done():
					}
				}
				return nil
			}

			switch {
			case line == "":
			case line == "q":
				return nil
			case line == "r":
				last = viewer.Refresh(ctx)
			case !model.IsValidLogin(line):
				mu.Lock()
				fmt.Fprintf(stdout, "invalid username %q\n", line)
				mu.Unlock()
			default:
				last = viewer.Load(ctx, line)
			}
		}
	}
}

// printState writes a short text summary of st.
func printState(w io.Writer, st application.ViewState) {
	switch {
	case st.Loading:
		fmt.Fprintf(w, "loading %s...\n", st.Username)
		return
	case errors.Is(st.Err, context.Canceled):
		return
	case errors.Is(st.Err, driven.ErrUserNotFound):
		fmt.Fprintf(w, "%s: user not found\n", st.Username)
		return
	case st.Err != nil:
		fmt.Fprintf(w, "%s: failed to fetch data: %v\n", st.Username, st.Err)
		return
	case st.View == nil:
		return
	}

	p := st.View.Profile
	repos := st.View.Repositories
	fmt.Fprintf(w, "%s (%s)\n", model.DisplayName(p.Name, p.Login), p.Login)
	fmt.Fprintf(w, "  followers %d  following %d  repos %d  stars %d  forks %d\n",
		p.Followers, p.Following, repos.TotalRepos, repos.TotalStars, repos.TotalForks)

	langs := st.View.Languages.Top
	if len(langs) > 5 {
		langs = langs[:5]
	}
	parts := make([]string, 0, len(langs))
	for _, l := range langs {
		parts = append(parts, fmt.Sprintf("%s %.1f%%", l.Name, l.Percentage))
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "  languages: %s\n", strings.Join(parts, ", "))
	}
	if n := st.View.Languages.FailedRepos; n > 0 {
		fmt.Fprintf(w, "  (language data missing for %d repositories)\n", n)
	}

	if c := st.Contributions; c != nil {
		fmt.Fprintf(w, "  contributions %d  current streak %d  longest streak %d\n",
			c.TotalContributions, c.CurrentStreak, c.LongestStreak)
	} else if st.ContributionsErr != nil {
		fmt.Fprintf(w, "  contributions unavailable: %v\n", st.ContributionsErr)
	}
}

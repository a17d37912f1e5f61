package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/shadowstats/internal/application"
	"github.com/ericfisherdev/shadowstats/internal/config"
	"github.com/ericfisherdev/shadowstats/internal/domain/model"
	"github.com/ericfisherdev/shadowstats/internal/domain/port/driven"
)

func TestParseKind(t *testing.T) {
	for _, s := range []string{"overview", "user", "repos", "languages", "contributions"} {
		kind, err := parseKind(s)
		require.NoError(t, err, s)
		assert.Equal(t, model.LookupKind(s), kind)
	}

	_, err := parseKind("stars")
	assert.Error(t, err)
}

func TestPrintState(t *testing.T) {
	view := &model.CombinedUserView{
		Profile:      model.UserProfile{Login: "octocat", Name: "The Octocat", Followers: 3},
		Repositories: model.RepositoryAggregate{TotalRepos: 2, TotalStars: 10},
		Languages: model.LanguageAggregate{
			Top:         []model.LanguageShare{{Name: "Go", Percentage: 75}, {Name: "Rust", Percentage: 25}},
			FailedRepos: 1,
		},
	}

	tests := []struct {
		name  string
		state application.ViewState
		want  []string
	}{
		{
			name:  "loading",
			state: application.ViewState{Username: "octocat", Loading: true},
			want:  []string{"loading octocat..."},
		},
		{
			name:  "not found",
			state: application.ViewState{Username: "ghost", Err: fmt.Errorf("fetch: %w", driven.ErrUserNotFound)},
			want:  []string{"ghost: user not found"},
		},
		{
			name:  "failure",
			state: application.ViewState{Username: "octocat", Err: errors.New("boom")},
			want:  []string{"octocat: failed to fetch data: boom"},
		},
		{
			name: "loaded",
			state: application.ViewState{
				Username:      "octocat",
				View:          view,
				Contributions: &model.ContributionStats{TotalContributions: 9, CurrentStreak: 2, LongestStreak: 4},
			},
			want: []string{
				"The Octocat (octocat)",
				"followers 3",
				"stars 10",
				"languages: Go 75.0%, Rust 25.0%",
				"language data missing for 1 repositories",
				"contributions 9  current streak 2  longest streak 4",
			},
		},
		{
			name:  "contributions failed",
			state: application.ViewState{Username: "octocat", View: view, ContributionsErr: errors.New("graphql down")},
			want:  []string{"contributions unavailable: graphql down"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			printState(&buf, tc.state)
			for _, w := range tc.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&config.Config{LogFormat: "json"}, &buf)

	logger.Info("hello", "k", "v")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

package model_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

func TestIsValidLogin(t *testing.T) {
	tests := []struct {
		login string
		want  bool
	}{
		{login: "octocat", want: true},
		{login: "this-user-does-not-exist-xyz", want: true},
		{login: "a", want: true},
		{login: "A1-b2-C3", want: true},
		{login: strings.Repeat("a", 39), want: true},
		{login: strings.Repeat("a", 40), want: false},
		{login: "", want: false},
		{login: "-leading", want: false},
		{login: "trailing-", want: false},
		{login: "double--hyphen", want: false},
		{login: "under_score", want: false},
		{login: "dot.name", want: false},
		{login: "../etc", want: false},
		{login: "spa ce", want: false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, model.IsValidLogin(tc.login), "login %q", tc.login)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "The Octocat", model.DisplayName("The Octocat", "octocat"))
	assert.Equal(t, "octocat", model.DisplayName("", "octocat"))
}

func TestParseLookupKind(t *testing.T) {
	for _, s := range []string{"user", "repos", "languages", "contributions"} {
		kind, ok := model.ParseLookupKind(s)
		assert.True(t, ok, s)
		assert.Equal(t, model.LookupKind(s), kind)
	}

	for _, s := range []string{"", "overview", "USER", "stars"} {
		_, ok := model.ParseLookupKind(s)
		assert.False(t, ok, s)
	}
}

func TestContributionDay_Month(t *testing.T) {
	assert.Equal(t, "2026-03", model.ContributionDay{Date: "2026-03-10"}.Month())
	assert.Equal(t, "bad", model.ContributionDay{Date: "bad"}.Month())
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	httphandler "github.com/ericfisherdev/shadowstats/internal/adapter/driving/http"
	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

// runLookup fetches one data category for a user and prints it as JSON, the
// same body the HTTP API would return.
func runLookup(ctx context.Context, a *app, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	user := fs.String("user", "", "GitHub username")
	kindFlag := fs.String("kind", string(model.LookupKindOverview), "overview, user, repos, languages or contributions")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}

	kind, err := parseKind(*kindFlag)
	if err != nil {
		return err
	}
	if !model.IsValidLogin(*user) {
		return fmt.Errorf("invalid username %q", *user)
	}

	h := httphandler.NewHandler(a.stats, a.lookups, a.credentials, a.provider, a.logger)
	payload, err := h.Lookup(ctx, kind, *user)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// parseKind accepts the proxy kinds plus "overview".
func parseKind(s string) (model.LookupKind, error) {
	if model.LookupKind(s) == model.LookupKindOverview {
		return model.LookupKindOverview, nil
	}
	kind, ok := model.ParseLookupKind(s)
	if !ok {
		return "", errors.New("unknown kind " + s)
	}
	return kind, nil
}

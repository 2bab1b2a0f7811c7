package main

import (
	"strings"
	"testing"

	"github.com/uilingo/uilingo/config"
	"github.com/uilingo/uilingo/translator"
)

func resetGlobalFlags(t *testing.T) {
	t.Helper()
	old := []string{flagProfile, flagAPIKey, flagModel, flagBaseURL, flagProxy}
	oldVerbose := flagVerbose
	t.Cleanup(func() {
		flagProfile, flagAPIKey, flagModel, flagBaseURL, flagProxy = old[0], old[1], old[2], old[3], old[4]
		flagVerbose = oldVerbose
	})
	flagProfile, flagAPIKey, flagModel, flagBaseURL, flagProxy = "", "", "", "", ""
	flagVerbose = false
}

func TestSessionOptionsFlagsBeatConfig(t *testing.T) {
	resetGlobalFlags(t)

	cfg := &config.Config{
		Profile: "work",
		Model:   "model-from-config",
	}

	opts := sessionOptions(cfg)
	if opts.Profile != "work" || opts.Model != "model-from-config" {
		t.Fatalf("config values not picked up: %#v", opts)
	}

	flagProfile = "personal"
	flagModel = "model-from-flag"
	flagAPIKey = "flag-key"

	opts = sessionOptions(cfg)
	if opts.Profile != "personal" {
		t.Fatalf("profile = %q, want flag value", opts.Profile)
	}
	if opts.Model != "model-from-flag" {
		t.Fatalf("model = %q, want flag value", opts.Model)
	}
	if opts.APIKey != "flag-key" {
		t.Fatalf("api key = %q, want flag value", opts.APIKey)
	}
}

func TestGuidanceDistinguishesKinds(t *testing.T) {
	kinds := []translator.Kind{
		translator.KindConfiguration,
		translator.KindModelNotFound,
		translator.KindAccessDenied,
		translator.KindRateLimited,
		translator.KindService,
	}

	seen := make(map[string]translator.Kind)
	for _, kind := range kinds {
		hint := guidance(kind)
		if hint == "" {
			t.Fatalf("guidance(%v) is empty", kind)
		}
		if prev, ok := seen[hint]; ok {
			t.Fatalf("guidance for %v and %v is identical: %q", prev, kind, hint)
		}
		seen[hint] = kind
	}

	if !strings.Contains(guidance(translator.KindAccessDenied), "auth set") {
		t.Fatalf("access-denied guidance should point at 'uilingo auth set'")
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"translate", "detect", "languages", "auth", "version"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("command %q not registered: %v", name, err)
		}
	}

	auth, _, _ := root.Find([]string{"auth"})
	for _, name := range []string{"set", "status", "remove"} {
		sub, _, err := auth.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Fatalf("auth subcommand %q not registered: %v", name, err)
		}
	}
}

package services

import (
	"reflect"
	"testing"

	"github.com/agentic-hub/hub-core/internal/core/domain"
)

func googleConfig() *domain.ProviderConfig {
	return &domain.ProviderConfig{
		Provider:      domain.ProviderGoogle,
		DefaultScopes: []string{"profile", "email"},
		ScopeCategories: map[string][]string{
			"gmail":    {"https://www.googleapis.com/auth/gmail.send", "https://www.googleapis.com/auth/gmail.readonly"},
			"sheets":   {"https://www.googleapis.com/auth/spreadsheets"},
			"drive":    {"https://www.googleapis.com/auth/drive.readonly"},
			"calendar": {"https://www.googleapis.com/auth/calendar"},
		},
	}
}

func TestResolveScopes(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
		want      []string
	}{
		{
			name:      "no request yields defaults",
			requested: nil,
			want:      []string{"profile", "email"},
		},
		{
			name:      "category expands after defaults",
			requested: []string{"gmail"},
			want: []string{
				"profile", "email",
				"https://www.googleapis.com/auth/gmail.send",
				"https://www.googleapis.com/auth/gmail.readonly",
			},
		},
		{
			name:      "categories expand in input order",
			requested: []string{"sheets", "gmail"},
			want: []string{
				"profile", "email",
				"https://www.googleapis.com/auth/spreadsheets",
				"https://www.googleapis.com/auth/gmail.send",
				"https://www.googleapis.com/auth/gmail.readonly",
			},
		},
		{
			name:      "unknown entry passes through as literal scope",
			requested: []string{"https://www.googleapis.com/auth/tasks"},
			want:      []string{"profile", "email", "https://www.googleapis.com/auth/tasks"},
		},
		{
			name:      "literals come after category expansions regardless of input position",
			requested: []string{"https://www.googleapis.com/auth/tasks", "drive"},
			want: []string{
				"profile", "email",
				"https://www.googleapis.com/auth/drive.readonly",
				"https://www.googleapis.com/auth/tasks",
			},
		},
		{
			name:      "duplicates collapse",
			requested: []string{"gmail", "gmail", "profile", "https://www.googleapis.com/auth/gmail.send"},
			want: []string{
				"profile", "email",
				"https://www.googleapis.com/auth/gmail.send",
				"https://www.googleapis.com/auth/gmail.readonly",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveScopes(googleConfig(), tt.requested)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveScopes() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Defaults must survive any request: resolved scopes are always a superset
// of the provider's default set.
func TestResolveScopes_DefaultsAlwaysIncluded(t *testing.T) {
	cfg := googleConfig()
	requests := [][]string{
		nil,
		{"gmail"},
		{"nonsense", "more-nonsense"},
		{"gmail", "sheets", "drive", "calendar"},
		{"profile"},
	}

	for _, req := range requests {
		got := ResolveScopes(cfg, req)
		set := make(map[string]bool, len(got))
		for _, s := range got {
			set[s] = true
		}
		for _, def := range cfg.DefaultScopes {
			if !set[def] {
				t.Errorf("ResolveScopes(%v) missing default scope %q", req, def)
			}
		}
	}
}

func TestResolveScopes_ProviderWithoutCategories(t *testing.T) {
	cfg := &domain.ProviderConfig{
		Provider:      domain.ProviderGitHub,
		DefaultScopes: []string{"user:email", "read:user"},
	}

	got := ResolveScopes(cfg, []string{"repo"})
	want := []string{"user:email", "read:user", "repo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ResolveScopes() = %v, want %v", got, want)
	}
}

func TestSplitScopes(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"repo", []string{"repo"}},
		{"repo read:user", []string{"repo", "read:user"}},
		{"repo,read:user", []string{"repo", "read:user"}},
		{"repo, read:user", []string{"repo", "read:user"}},
	}
	for _, tt := range tests {
		if got := splitScopes(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitScopes(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

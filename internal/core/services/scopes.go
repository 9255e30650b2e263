package services

import "github.com/agentic-hub/hub-core/internal/core/domain"

// ResolveScopes expands caller-requested scope entries into the concrete
// scope strings for a provider.
//
// The provider's default scopes always come first. Each requested entry is
// then tried as a category name; entries that name no category are passed
// through verbatim as literal scopes, so a typo degrades to an unknown scope
// the provider rejects rather than failing the flow here. Output order is
// deterministic: defaults, then category expansions in input order, then
// literals in input order, de-duplicated.
func ResolveScopes(cfg *domain.ProviderConfig, requested []string) []string {
	seen := make(map[string]bool)
	scopes := make([]string, 0, len(cfg.DefaultScopes)+len(requested))

	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		scopes = append(scopes, s)
	}

	for _, s := range cfg.DefaultScopes {
		add(s)
	}

	var literals []string
	for _, entry := range requested {
		if expansion, ok := cfg.ScopeCategories[entry]; ok {
			for _, s := range expansion {
				add(s)
			}
			continue
		}
		literals = append(literals, entry)
	}
	for _, s := range literals {
		add(s)
	}

	return scopes
}

// splitScopes splits a provider's space- or comma-delimited scope string.
func splitScopes(scope string) []string {
	if scope == "" {
		return nil
	}
	var scopes []string
	var current string
	for _, c := range scope {
		if c == ' ' || c == ',' {
			if current != "" {
				scopes = append(scopes, current)
				current = ""
			}
		} else {
			current += string(c)
		}
	}
	if current != "" {
		scopes = append(scopes, current)
	}
	return scopes
}

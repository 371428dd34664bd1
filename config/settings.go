// Package config defines the per-index settings accepted by the settings API.
package config

import (
	"fmt"
	"strings"
)

const DefaultHitsPerPage = 20

// Settings mirrors the subset of Algolia index settings the emulator honors.
// CustomRanking supplies the default result order when no replica-style sort
// applies; HitsPerPage sets the default page size. The attribute lists are
// accepted and stored so configuration round-trips, but matching itself
// always considers every attribute.
type Settings struct {
	SearchableAttributes  []string `json:"searchableAttributes,omitempty"`
	AttributesForFaceting []string `json:"attributesForFaceting,omitempty"`
	CustomRanking         []string `json:"customRanking,omitempty"`
	HitsPerPage           int      `json:"hitsPerPage,omitempty"`
}

// DefaultSettings returns the settings an index carries before any were set.
func DefaultSettings() Settings {
	return Settings{HitsPerPage: DefaultHitsPerPage}
}

// Validate reports every problem with the settings. An empty slice means the
// settings are acceptable.
func (s *Settings) Validate() []string {
	var problems []string

	problems = append(problems, checkAttributes("searchableAttributes", s.SearchableAttributes)...)
	problems = append(problems, checkAttributes("attributesForFaceting", s.AttributesForFaceting)...)

	for _, entry := range s.CustomRanking {
		if _, _, err := ParseRankingEntry(entry); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if s.HitsPerPage < 0 {
		problems = append(problems, "hitsPerPage cannot be negative")
	}

	return problems
}

// ParseRankingEntry splits a customRanking entry of the form "asc(attr)" or
// "desc(attr)" into its attribute and direction.
func ParseRankingEntry(entry string) (attribute string, desc bool, err error) {
	switch {
	case strings.HasPrefix(entry, "asc(") && strings.HasSuffix(entry, ")"):
		attribute = entry[len("asc(") : len(entry)-1]
	case strings.HasPrefix(entry, "desc(") && strings.HasSuffix(entry, ")"):
		attribute = entry[len("desc(") : len(entry)-1]
		desc = true
	default:
		return "", false, fmt.Errorf("customRanking entry %q must have the form asc(attribute) or desc(attribute)", entry)
	}
	if strings.TrimSpace(attribute) == "" {
		return "", false, fmt.Errorf("customRanking entry %q names no attribute", entry)
	}
	return attribute, desc, nil
}

func checkAttributes(list string, attributes []string) []string {
	var problems []string
	seen := make(map[string]bool, len(attributes))
	for _, attr := range attributes {
		if strings.TrimSpace(attr) == "" {
			problems = append(problems, fmt.Sprintf("%s contains an empty attribute name", list))
			continue
		}
		if seen[attr] {
			problems = append(problems, fmt.Sprintf("%s lists %q twice", list, attr))
		}
		seen[attr] = true
	}
	return problems
}

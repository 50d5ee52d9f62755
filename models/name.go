// ABOUTME: Parser for the comma-delimited opportunity name convention
// ABOUTME: Splits "Customer, Location, preference..." names into parts
package models

import "strings"

// ParsedName is the decomposition of an opportunity name. The name field
// encodes customer, location and free-text preferences by comma-delimited
// convention. Names are parsed for display, never re-encoded.
type ParsedName struct {
	Customer    string   `json:"customer"`
	Location    string   `json:"location,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
}

// ParseName decomposes an opportunity name. The first segment is the
// customer, the second (if present) the location, and any remaining
// segments are free-text preferences.
func ParseName(name string) ParsedName {
	parts := strings.Split(name, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	parsed := ParsedName{Customer: parts[0]}
	if len(parts) > 1 {
		parsed.Location = parts[1]
	}
	for _, p := range parts[2:] {
		if p != "" {
			parsed.Preferences = append(parsed.Preferences, p)
		}
	}
	return parsed
}

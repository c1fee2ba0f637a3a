// Package directory provides the search and filter projections used by
// the contractor and user list views. All filters are pure: they read
// already-loaded slices and return fresh ones.
package directory

import (
	"strings"

	"opsdesk/internal/database"
)

// FilterContractors matches query as a case-insensitive substring of the
// contractor's name, nickname or city, and customerType as an exact
// categorical match. An empty query matches every contractor; an empty
// customerType disables the categorical filter.
func FilterContractors(contractors []database.Contractor, query, customerType string) []database.Contractor {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]database.Contractor, 0, len(contractors))
	for _, c := range contractors {
		if customerType != "" && c.CustomerType != customerType {
			continue
		}
		if query != "" && !contractorMatches(c, query) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func contractorMatches(c database.Contractor, query string) bool {
	if strings.Contains(strings.ToLower(c.Name), query) {
		return true
	}
	if c.Nickname.IsSet && strings.Contains(strings.ToLower(c.Nickname.Val), query) {
		return true
	}
	return strings.Contains(strings.ToLower(c.City), query)
}

// FilterUsers matches query against name and email, and role as an exact
// match. Same conventions as FilterContractors.
func FilterUsers(users []database.User, query, role string) []database.User {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]database.User, 0, len(users))
	for _, u := range users {
		if role != "" && u.Role != role {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(u.Name), query) &&
			!strings.Contains(strings.ToLower(u.Email), query) {
			continue
		}
		out = append(out, u)
	}
	return out
}

package store

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/iliyamo/connection-monitor/internal/model"
)

// Criteria is the filter/sort input of the derived connection view.
type Criteria struct {
	SearchTerm    string
	Type          model.ConnectionType
	Status        model.Status
	SortByAddress bool
}

// Criteria extracts the query part of the UI state.
func (u UIState) Criteria() Criteria {
	return Criteria{
		SearchTerm:    u.SearchTerm,
		Type:          u.FilterType,
		Status:        u.FilterStatus,
		SortByAddress: u.SortByAddress,
	}
}

// Matches reports whether c passes all three predicates: case-insensitive
// substring of the search term in client name, address or contact, and exact
// type and status when those filters are set.
func (q Criteria) Matches(c model.Connection) bool {
	if q.SearchTerm != "" {
		term := strings.ToLower(q.SearchTerm)
		if !strings.Contains(strings.ToLower(c.ClientName), term) &&
			!strings.Contains(strings.ToLower(c.Address), term) &&
			!strings.Contains(strings.ToLower(c.Contact), term) {
			return false
		}
	}
	if q.Type != "" && c.ConnectionType != q.Type {
		return false
	}
	if q.Status != "" && c.Status != q.Status {
		return false
	}
	return true
}

// Filter returns the connections matching q, sorted by address when
// q.SortByAddress is set and in input order otherwise.  The input slice is
// not modified.
func Filter(conns []model.Connection, q Criteria) []model.Connection {
	out := make([]model.Connection, 0, len(conns))
	for _, c := range conns {
		if q.Matches(c) {
			out = append(out, c)
		}
	}
	if q.SortByAddress {
		SortByAddress(out)
	}
	return out
}

// SortByAddress orders conns ascending by address using Ukrainian collation.
// Equal addresses keep their relative order.
func SortByAddress(conns []model.Connection) {
	// collate.Collator is not safe for concurrent use.
	col := collate.New(language.Ukrainian)
	sort.SliceStable(conns, func(i, j int) bool {
		return col.CompareString(conns[i].Address, conns[j].Address) < 0
	})
}

package directory_test

import (
	"testing"

	"opsdesk/internal/database"
	"opsdesk/internal/directory"
	"opsdesk/internal/util"

	"github.com/stretchr/testify/assert"
)

func contractorFixtures() []database.Contractor {
	return []database.Contractor{
		{Name: "Sharma Constructions", Nickname: util.Some("Sharma Bhai"), City: "Mumbai", CustomerType: "dealer"},
		{Name: "Verma Interiors", City: "Delhi", CustomerType: "retail"},
		{Name: "Apex Builders", Nickname: util.Some("Apex"), City: "Mumbai", CustomerType: "dealer"},
		{Name: "Coastal Traders", City: "Chennai", CustomerType: "wholesale"},
	}
}

func TestFilterContractors(t *testing.T) {
	tests := []struct {
		name          string
		query         string
		customerType  string
		expectedNames []string
	}{
		{
			name:          "empty_query_matches_all",
			query:         "",
			expectedNames: []string{"Sharma Constructions", "Verma Interiors", "Apex Builders", "Coastal Traders"},
		},
		{
			name:          "substring_of_name_case_insensitive",
			query:         "sharma",
			expectedNames: []string{"Sharma Constructions"},
		},
		{
			name:          "substring_of_nickname",
			query:         "apex",
			expectedNames: []string{"Apex Builders"},
		},
		{
			name:          "substring_of_city",
			query:         "mumbai",
			expectedNames: []string{"Sharma Constructions", "Apex Builders"},
		},
		{
			name:          "customer_type_is_exact_match",
			customerType:  "dealer",
			expectedNames: []string{"Sharma Constructions", "Apex Builders"},
		},
		{
			name:          "query_and_type_combine",
			query:         "apex",
			customerType:  "dealer",
			expectedNames: []string{"Apex Builders"},
		},
		{
			name:          "no_match",
			query:         "zzz",
			expectedNames: []string{},
		},
		{
			name:          "whitespace_query_matches_all",
			query:         "   ",
			expectedNames: []string{"Sharma Constructions", "Verma Interiors", "Apex Builders", "Coastal Traders"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := directory.FilterContractors(contractorFixtures(), tt.query, tt.customerType)
			names := make([]string, 0, len(got))
			for _, c := range got {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.expectedNames, names)
		})
	}
}

func TestFilterContractorsDoesNotMutateInput(t *testing.T) {
	contractors := contractorFixtures()
	original := append([]database.Contractor(nil), contractors...)

	_ = directory.FilterContractors(contractors, "mumbai", "dealer")

	assert.Equal(t, original, contractors)
}

func TestFilterUsers(t *testing.T) {
	users := []database.User{
		{Name: "John Smith", Email: "john@opsdesk.in", Role: "admin"},
		{Name: "Priya Rao", Email: "priya@opsdesk.in", Role: "sales"},
		{Name: "Anil Gupta", Email: "anil@opsdesk.in", Role: "sales"},
	}

	t.Run("matches_email_substring", func(t *testing.T) {
		got := directory.FilterUsers(users, "priya@", "")
		assert.Len(t, got, 1)
		assert.Equal(t, "Priya Rao", got[0].Name)
	})

	t.Run("role_filter", func(t *testing.T) {
		got := directory.FilterUsers(users, "", "sales")
		assert.Len(t, got, 2)
	})

	t.Run("query_and_role", func(t *testing.T) {
		got := directory.FilterUsers(users, "anil", "sales")
		assert.Len(t, got, 1)
		assert.Equal(t, "Anil Gupta", got[0].Name)
	})

	t.Run("empty_filters_match_all", func(t *testing.T) {
		got := directory.FilterUsers(users, "", "")
		assert.Len(t, got, 3)
	})
}

package ident_test

import (
	"testing"
	"time"

	"opsdesk/internal/ident"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	createdAt := time.Date(2025, time.March, 14, 10, 30, 0, 0, time.UTC)
	creator := ident.Creator{ID: "u-1", Name: "John Smith"}

	tests := []struct {
		name        string
		prefix      string
		at          time.Time
		city        string
		creator     ident.Creator
		count       int
		expected    string
		expectedErr error
	}{
		{
			name:     "lead_id_for_mumbai",
			prefix:   ident.PrefixLead,
			at:       createdAt,
			city:     "Mumbai",
			creator:  creator,
			count:    0,
			expected: "L/0325/MUM/JS-01",
		},
		{
			name:     "order_id_for_pune",
			prefix:   ident.PrefixOrder,
			at:       createdAt,
			city:     "Pune",
			creator:  creator,
			count:    8,
			expected: "O/0325/PUN/JS-09",
		},
		{
			name:     "unknown_city_falls_back_to_first_letters",
			prefix:   ident.PrefixLead,
			at:       createdAt,
			city:     "Thane",
			creator:  creator,
			count:    0,
			expected: "L/0325/THA/JS-01",
		},
		{
			name:     "sequence_crosses_two_digits",
			prefix:   ident.PrefixLead,
			at:       createdAt,
			city:     "Mumbai",
			creator:  creator,
			count:    99,
			expected: "L/0325/MUM/JS-100",
		},
		{
			name:     "december_wraps_month_and_year",
			prefix:   ident.PrefixOrder,
			at:       time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC),
			city:     "Delhi",
			creator:  creator,
			count:    2,
			expected: "O/1224/DEL/JS-03",
		},
		{
			name:     "creator_without_name_uses_id",
			prefix:   ident.PrefixLead,
			at:       createdAt,
			city:     "Mumbai",
			creator:  ident.Creator{ID: "ab-42"},
			count:    0,
			expected: "L/0325/MUM/AB-01",
		},
		{
			name:        "empty_city",
			prefix:      ident.PrefixLead,
			at:          createdAt,
			city:        "  ",
			creator:     creator,
			count:       0,
			expectedErr: ident.ErrInvalidInput,
		},
		{
			name:        "empty_creator",
			prefix:      ident.PrefixLead,
			at:          createdAt,
			city:        "Mumbai",
			creator:     ident.Creator{},
			count:       0,
			expectedErr: ident.ErrInvalidInput,
		},
		{
			name:        "negative_count",
			prefix:      ident.PrefixLead,
			at:          createdAt,
			city:        "Mumbai",
			creator:     creator,
			count:       -1,
			expectedErr: ident.ErrInvalidInput,
		},
		{
			name:        "empty_prefix",
			prefix:      "",
			at:          createdAt,
			city:        "Mumbai",
			creator:     creator,
			count:       0,
			expectedErr: ident.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ident.Generate(tt.prefix, tt.at, tt.city, tt.creator, tt.count)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGenerateDeterminism(t *testing.T) {
	at := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	creator := ident.Creator{ID: "u-7", Name: "Priya Rao"}

	first, err := ident.Generate(ident.PrefixLead, at, "Hyderabad", creator, 4)
	require.NoError(t, err)
	second, err := ident.Generate(ident.PrefixLead, at, "Hyderabad", creator, 4)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerateSequencing(t *testing.T) {
	at := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	creator := ident.Creator{ID: "u-7", Name: "Priya Rao"}

	current, err := ident.Generate(ident.PrefixOrder, at, "Chennai", creator, 4)
	require.NoError(t, err)
	next, err := ident.Generate(ident.PrefixOrder, at, "Chennai", creator, 5)
	require.NoError(t, err)

	// Consecutive counts differ only in the zero-padded suffix.
	assert.Equal(t, "O/0625/CHE/PR-05", current)
	assert.Equal(t, "O/0625/CHE/PR-06", next)
}

func TestCityCode(t *testing.T) {
	tests := []struct {
		name     string
		city     string
		expected string
	}{
		{name: "known_city", city: "Mumbai", expected: "MUM"},
		{name: "known_city_mixed_case", city: "bEnGaLuRu", expected: "BLR"},
		{name: "alias_resolves_to_same_code", city: "Bangalore", expected: "BLR"},
		{name: "unknown_city_first_three_letters", city: "Kochi", expected: "KOC"},
		{name: "strips_non_letters", city: "Navi-Mumbai", expected: "NAV"},
		{name: "short_name", city: "Ib", expected: "IB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ident.CityCode(tt.city))
		})
	}
}

func TestUserCode(t *testing.T) {
	tests := []struct {
		name     string
		creator  ident.Creator
		expected string
	}{
		{name: "two_part_name", creator: ident.Creator{Name: "John Smith"}, expected: "JS"},
		{name: "three_part_name", creator: ident.Creator{Name: "Anil Kumar Gupta"}, expected: "AKG"},
		{name: "four_parts_capped_at_three", creator: ident.Creator{Name: "A B C D"}, expected: "ABC"},
		{name: "single_name", creator: ident.Creator{Name: "Madonna"}, expected: "M"},
		{name: "fallback_to_id", creator: ident.Creator{ID: "xy-99"}, expected: "XY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ident.UserCode(tt.creator))
		})
	}
}

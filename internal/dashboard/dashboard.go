// Package dashboard turns fetched rows into the totals and chart series
// shown on the sales dashboard. Aggregation happens in memory over the
// slices the database returns; nothing here writes.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"opsdesk/internal/database"
)

type Summary struct {
	TotalLeads       int            `json:"total_leads"`
	TotalOrders      int            `json:"total_orders"`
	TotalContractors int            `json:"total_contractors"`
	TotalUsers       int            `json:"total_users"`
	RevenuePaise     int64          `json:"revenue_paise"`
	LeadsByStatus    map[string]int `json:"leads_by_status"`
	OrdersByStatus   map[string]int `json:"orders_by_status"`
	OrderSeries      []MonthBucket  `json:"order_series"`
	LeadSeries       []MonthBucket  `json:"lead_series"`
	TopCities        []CityCount    `json:"top_cities"`
}

// MonthBucket is one point of a 12-month chart series.
type MonthBucket struct {
	Month       string `json:"month"` // formatted as 2006-01
	Count       int    `json:"count"`
	AmountPaise int64  `json:"amount_paise"`
}

type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// Store is the persistence collaborator. *database.Database satisfies it.
type Store interface {
	ListLeads(ctx context.Context, params database.ListLeadsParams) ([]database.Lead, error)
	ListOrders(ctx context.Context, params database.ListOrdersParams) ([]database.Order, error)
	ListContractors(ctx context.Context, params database.ListContractorsParams) ([]database.Contractor, error)
	ListUsers(ctx context.Context, params database.ListUsersParams) ([]database.User, error)
}

type Manager struct {
	logger *slog.Logger
	store  Store
}

func NewManager(logger *slog.Logger, store Store) Manager {
	return Manager{logger: logger, store: store}
}

// Summary fetches all rows once and aggregates them client-side.
func (m *Manager) Summary(ctx context.Context) (Summary, error) {
	var summary Summary

	leads, err := m.store.ListLeads(ctx, database.ListLeadsParams{})
	if err != nil {
		return summary, fmt.Errorf("failed to load leads: %w", err)
	}
	orders, err := m.store.ListOrders(ctx, database.ListOrdersParams{})
	if err != nil {
		return summary, fmt.Errorf("failed to load orders: %w", err)
	}
	contractors, err := m.store.ListContractors(ctx, database.ListContractorsParams{})
	if err != nil {
		return summary, fmt.Errorf("failed to load contractors: %w", err)
	}
	users, err := m.store.ListUsers(ctx, database.ListUsersParams{})
	if err != nil {
		return summary, fmt.Errorf("failed to load users: %w", err)
	}

	now := time.Now().UTC()
	return Summary{
		TotalLeads:       len(leads),
		TotalOrders:      len(orders),
		TotalContractors: len(contractors),
		TotalUsers:       len(users),
		RevenuePaise:     Revenue(orders),
		LeadsByStatus:    LeadsByStatus(leads),
		OrdersByStatus:   OrdersByStatus(orders),
		OrderSeries:      OrderSeries(orders, now, 12),
		LeadSeries:       LeadSeries(leads, now, 12),
		TopCities:        TopCities(orders, 5),
	}, nil
}

// Revenue sums every order that was not cancelled.
func Revenue(orders []database.Order) int64 {
	var total int64
	for _, o := range orders {
		if o.Status == "cancelled" {
			continue
		}
		total += o.AmountPaise
	}
	return total
}

func LeadsByStatus(leads []database.Lead) map[string]int {
	counts := make(map[string]int)
	for _, l := range leads {
		counts[l.Status]++
	}
	return counts
}

func OrdersByStatus(orders []database.Order) map[string]int {
	counts := make(map[string]int)
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}

// OrderSeries buckets orders by creation month over the trailing window,
// oldest bucket first. Months with no orders still appear, so the chart
// has a fixed x-axis.
func OrderSeries(orders []database.Order, now time.Time, months int) []MonthBucket {
	buckets, index := emptyBuckets(now, months)
	for _, o := range orders {
		key := o.CreatedAt.UTC().Format("2006-01")
		if i, ok := index[key]; ok {
			buckets[i].Count++
			buckets[i].AmountPaise += o.AmountPaise
		}
	}
	return buckets
}

// LeadSeries buckets leads by creation month over the trailing window.
func LeadSeries(leads []database.Lead, now time.Time, months int) []MonthBucket {
	buckets, index := emptyBuckets(now, months)
	for _, l := range leads {
		key := l.CreatedAt.UTC().Format("2006-01")
		if i, ok := index[key]; ok {
			buckets[i].Count++
		}
	}
	return buckets
}

func emptyBuckets(now time.Time, months int) ([]MonthBucket, map[string]int) {
	buckets := make([]MonthBucket, months)
	index := make(map[string]int, months)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	for i := range months {
		key := first.AddDate(0, i, 0).Format("2006-01")
		buckets[i] = MonthBucket{Month: key}
		index[key] = i
	}
	return buckets, index
}

// TopCities returns the n cities with the most orders, ties broken by
// city name so the result is stable.
func TopCities(orders []database.Order, n int) []CityCount {
	counts := make(map[string]int)
	for _, o := range orders {
		counts[o.City]++
	}

	cities := make([]CityCount, 0, len(counts))
	for city, count := range counts {
		cities = append(cities, CityCount{City: city, Count: count})
	}
	sort.Slice(cities, func(i, j int) bool {
		if cities[i].Count != cities[j].Count {
			return cities[i].Count > cities[j].Count
		}
		return cities[i].City < cities[j].City
	})

	if len(cities) > n {
		cities = cities[:n]
	}
	return cities
}

package scoring

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// BenchmarkProvider supplies typical monthly income for a business type.
// The validation algorithm is generic over the provider; the bundled table
// is deployment data, not core logic, and can be swapped out wholesale.
type BenchmarkProvider interface {
	BenchmarkIncome(businessType string) float64
}

// StaticBenchmarks is a substring-matched lookup table of typical monthly
// incomes per trade. Lookup walks entries in insertion order so a business
// type matching several keys always resolves to the same one.
type StaticBenchmarks struct {
	keys          []string
	incomes       map[string]float64
	DefaultIncome float64
}

// NewStaticBenchmarks returns an empty table with the given default income.
func NewStaticBenchmarks(defaultIncome float64) *StaticBenchmarks {
	return &StaticBenchmarks{
		incomes:       make(map[string]float64),
		DefaultIncome: defaultIncome,
	}
}

// Set adds or updates a benchmark entry. New keys keep insertion order.
func (b *StaticBenchmarks) Set(key string, income float64) {
	if _, ok := b.incomes[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.incomes[key] = income
}

// DefaultBenchmarks returns the bundled benchmark table for rural
// Indonesian micro-businesses (monthly income in Rupiah).
func DefaultBenchmarks() *StaticBenchmarks {
	b := NewStaticBenchmarks(DefaultBenchmarkIncome)
	b.Set("Warung Kelontong", 3500000)
	b.Set("Warung Gorengan", 2500000)
	b.Set("Jahit Pakaian", 3000000)
	b.Set("Jualan Sayur", 2000000)
	b.Set("Catering", 4500000)
	b.Set("Salon", 3000000)
	b.Set("Toko Pulsa", 3200000)
	b.Set("Warung Nasi", 3800000)
	b.Set("Industri Kerupuk", 2800000)
	return b
}

// LoadBenchmarks reads a benchmark overrides file and merges it over the
// bundled table. The file holds {"incomes": {...}, "default_income": n};
// either key may be omitted. An empty path returns the bundled table.
func LoadBenchmarks(path string) (*StaticBenchmarks, error) {
	benchmarks := DefaultBenchmarks()
	if path == "" {
		return benchmarks, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark overrides: %w", err)
	}

	var overrides struct {
		Incomes       map[string]float64 `json:"incomes"`
		DefaultIncome float64            `json:"default_income"`
	}
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse benchmark overrides: %w", err)
	}

	// Override keys are applied in sorted order so keys new to the table
	// get a stable position.
	keys := make([]string, 0, len(overrides.Incomes))
	for key := range overrides.Incomes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		benchmarks.Set(key, overrides.Incomes[key])
	}

	if overrides.DefaultIncome > 0 {
		benchmarks.DefaultIncome = overrides.DefaultIncome
	}

	return benchmarks, nil
}

// BenchmarkIncome returns the income for the first entry whose key is
// contained in businessType, or the default when nothing matches.
func (b *StaticBenchmarks) BenchmarkIncome(businessType string) float64 {
	for _, key := range b.keys {
		if strings.Contains(businessType, key) {
			return b.incomes[key]
		}
	}
	return b.DefaultIncome
}

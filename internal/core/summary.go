package core

import (
	"sort"
	"strings"
)

// CategoryAmount represents an amount aggregated by category label.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Overview is a compact financial summary for one user's whole ledger.
type Overview struct {
	TotalBalance     Money // sum of stored account balances
	TotalIn          Money
	TotalOut         Money
	Net              Money // TotalIn - TotalOut, derived from the journal
	TransactionCount int
}

// SplitCategories splits a comma-joined multi-label category string into
// trimmed labels, dropping empties. "Food, Travel" -> ["Food", "Travel"].
func SplitCategories(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinCategories is the inverse of SplitCategories.
func JoinCategories(labels []string) string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, ", ")
}

// TopCategories aggregates transaction amounts per category label and returns
// the n largest. Multi-label transactions count their full amount toward each
// of their labels.
func TopCategories(txs []Transaction, n int) []CategoryAmount {
	sums := make(map[string]int64)
	for _, t := range txs {
		for _, label := range SplitCategories(t.Category) {
			sums[label] += t.Amount.Cents
		}
	}
	out := make([]CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

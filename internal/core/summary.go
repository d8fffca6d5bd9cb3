package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthLayout formats the year-month a summary covers.
const MonthLayout = "2006-01"

// MonthlySummary holds per-category totals for one calendar month. The three
// slices are aligned by index.
type MonthlySummary struct {
	Month      string
	Categories []string
	Expenses   []float64
	Incomes    []float64
}

// Title is the chart title for the summary.
func (s MonthlySummary) Title() string {
	return "Expenses and incomes for " + s.Month
}

type categoryTotals struct {
	expense decimal.Decimal
	income  decimal.Decimal
}

// Summarize totals expenses and incomes per category for the month that
// contains today. Categories keep first-seen order, expenses scanned first.
// ok is false when neither collection has a record in that month.
func Summarize(expenses, incomes []Transaction, today time.Time) (summary MonthlySummary, ok bool) {
	summary.Month = today.Format(MonthLayout)

	totals := map[string]*categoryTotals{}
	var order []string
	bucket := func(category string) *categoryTotals {
		ct, seen := totals[category]
		if !seen {
			ct = &categoryTotals{}
			totals[category] = ct
			order = append(order, category)
		}
		return ct
	}

	for _, t := range expenses {
		if t.Date.InMonth(today) {
			ct := bucket(t.Category)
			ct.expense = ct.expense.Add(t.Amount)
		}
	}
	for _, t := range incomes {
		if t.Date.InMonth(today) {
			ct := bucket(t.Category)
			ct.income = ct.income.Add(t.Amount)
		}
	}
	if len(order) == 0 {
		return summary, false
	}

	summary.Categories = order
	summary.Expenses = make([]float64, len(order))
	summary.Incomes = make([]float64, len(order))
	for i, name := range order {
		summary.Expenses[i] = totals[name].expense.InexactFloat64()
		summary.Incomes[i] = totals[name].income.InexactFloat64()
	}
	return summary, true
}

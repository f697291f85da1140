package ledger

import (
	"strings"

	"chantierbook/models"
)

// Pure rollups over a site snapshot. Nothing here mutates the site, so the
// same snapshot always yields the same numbers.

// Indicators are the headline figures of a site: what was spent, what is
// still owed on credit purchases and rentals, and what remains of the
// initial budget.
type Indicators struct {
	InitialBudget             float64 `json:"initial_budget"`
	SARRate                   float64 `json:"sar_rate"`
	InitialBudgetSAR          float64 `json:"initial_budget_sar"`
	ExpensesTotal             float64 `json:"expenses_total"`
	MaterialCreditTotal       float64 `json:"material_credit_total"`
	LocationCreditOutstanding float64 `json:"location_credit_outstanding"`
	Debts                     float64 `json:"debts"`
	Balance                   float64 `json:"balance"`
	PaidTotal                 float64 `json:"paid_total"`
}

func ComputeIndicators(site *models.Site) Indicators {
	var ind Indicators
	ind.SARRate = 1
	if site.Budget != nil {
		ind.InitialBudget = site.Budget.InitialBudget
		if site.Budget.SARRate != 0 {
			ind.SARRate = site.Budget.SARRate
		}
	}
	for _, t := range site.Transactions {
		ind.ExpensesTotal += t.Amount
	}
	for _, m := range site.Materials {
		if m.Payment == "credit" {
			ind.MaterialCreditTotal += m.Amount
		}
	}
	for _, l := range site.Locations {
		if l.Mode == "credit" {
			ind.LocationCreditOutstanding += l.Price - l.Paid
		}
	}
	ind.Debts = ind.MaterialCreditTotal + ind.LocationCreditOutstanding
	ind.Balance = ind.InitialBudget - ind.ExpensesTotal - ind.Debts
	ind.PaidTotal = ind.ExpensesTotal - ind.Debts
	ind.InitialBudgetSAR = ToSAR(ind.InitialBudget, ind.SARRate)
	return ind
}

// ToSAR converts an XOF amount into SAR for display. A zero rate is treated
// as 1 so a half-filled budget form can never divide by zero.
func ToSAR(amount, rate float64) float64 {
	if rate == 0 {
		rate = 1
	}
	return amount / rate
}

// Inventory groups material spend by category and worker spend by trade.
// Rows without a category land in "Autre", workers without a trade in
// "Divers".
type Inventory struct {
	MaterialsByCategory map[string]float64 `json:"materials_by_category"`
	WorkersByTrade      map[string]float64 `json:"workers_by_trade"`
	MaterialsTotal      float64            `json:"materials_total"`
	WorkersTotal        float64            `json:"workers_total"`
	GrandTotal          float64            `json:"grand_total"`
}

func ComputeInventory(site *models.Site) Inventory {
	inv := Inventory{
		MaterialsByCategory: map[string]float64{},
		WorkersByTrade:      map[string]float64{},
	}
	for _, m := range site.Materials {
		cat := m.Category
		if cat == "" {
			cat = "Autre"
		}
		inv.MaterialsByCategory[cat] += m.Amount
		inv.MaterialsTotal += m.Amount
	}
	for _, w := range site.Workers {
		trade := w.Trade
		if trade == "" {
			trade = "Divers"
		}
		inv.WorkersByTrade[trade] += w.Amount
		inv.WorkersTotal += w.Amount
	}
	inv.GrandTotal = inv.MaterialsTotal + inv.WorkersTotal
	for _, t := range site.Transactions {
		inv.GrandTotal += t.Amount
	}
	return inv
}

// Unforeseen lists the "diverse" transactions and their total.
type Unforeseen struct {
	Total        float64              `json:"total"`
	Transactions []models.Transaction `json:"transactions"`
}

func ComputeUnforeseen(site *models.Site) Unforeseen {
	out := Unforeseen{Transactions: []models.Transaction{}}
	for _, t := range site.Transactions {
		if t.TargetType == "diverse" {
			out.Transactions = append(out.Transactions, t)
			out.Total += t.Amount
		}
	}
	return out
}

// DonorSummary reports what remains of the donor budget after all
// disbursement slices.
type DonorSummary struct {
	Remaining    float64 `json:"remaining"`
	ActiveSlices int     `json:"active_slices"`
}

func ComputeDonorSummary(site *models.Site) DonorSummary {
	var sum DonorSummary
	if site.Donor.Budget != nil {
		sum.Remaining = site.Donor.Budget.Amount
	}
	for _, sl := range site.Donor.Slices {
		sum.Remaining -= sl.Amount
	}
	sum.ActiveSlices = len(site.Donor.Slices)
	return sum
}

// FilterHistory applies the history view filters: entry type, substring of
// the detail (case-insensitive) and an inclusive date range. Empty filters
// match everything.
func FilterHistory(entries []models.HistoryEntry, entryType, name, from, to string) []models.HistoryEntry {
	out := []models.HistoryEntry{}
	for _, h := range entries {
		if entryType != "" && h.Type != entryType {
			continue
		}
		if name != "" && !containsFold(h.Detail, name) {
			continue
		}
		if from != "" && h.Date < from {
			continue
		}
		if to != "" && h.Date > to {
			continue
		}
		out = append(out, h)
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

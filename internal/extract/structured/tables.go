package structured

import (
	"strings"

	"fieldlens/internal/domain"
	"fieldlens/internal/normalize"
	"fieldlens/internal/typeconfig"
)

// header row cells commonly seen on pay stubs and receipts; a first row made
// of these is skipped rather than classified.
var headerTerms = []string{
	"description", "amount", "earnings", "deductions", "type",
	"hours", "rate", "current", "ytd", "item", "price", "qty", "quantity",
	"date", "balance", "debit", "credit", "withdrawal", "deposit",
}

// LineItemsFromGrid classifies table rows into earning/deduction/item line
// items. This is the deterministic two-bucket classifier: rows whose first
// cell matches a deduction term go to deductions, earning terms to earnings,
// everything else stays a plain item. Rows without a parseable amount are
// skipped.
func LineItemsFromGrid(grid [][]string, rules typeconfig.TableRules) []domain.LineItem {
	var items []domain.LineItem
	for i, row := range grid {
		if len(row) < 2 {
			continue
		}
		if i == 0 && isHeaderRow(row) {
			continue
		}
		rawAmount, ok := lastAmountCell(row)
		if !ok {
			continue
		}
		desc := strings.TrimSpace(row[0])
		if desc == "" {
			continue
		}
		item := domain.LineItem{
			Description: desc,
			RawAmount:   rawAmount,
			Category:    bucketRow(desc, rules),
		}
		if amt := normalize.Money(rawAmount); amt != nil {
			item.Amount = *amt
		}
		items = append(items, item)
	}
	return items
}

// TransactionsFromGrid maps table rows onto bank-statement transactions:
// first column date, last parseable money column amount, the middle joined
// as description.
func TransactionsFromGrid(grid [][]string) []domain.Transaction {
	var txns []domain.Transaction
	for i, row := range grid {
		if len(row) < 3 {
			continue
		}
		if i == 0 && isHeaderRow(row) {
			continue
		}
		rawAmount, ok := lastAmountCell(row)
		if !ok {
			continue
		}
		txn := domain.Transaction{
			Description: strings.TrimSpace(strings.Join(row[1:len(row)-1], " ")),
			RawAmount:   rawAmount,
		}
		if d := normalize.Date(row[0]); d != nil {
			txn.Date = *d
		}
		if amt := normalize.Money(rawAmount); amt != nil {
			txn.Amount = *amt
		}
		txns = append(txns, txn)
	}
	return txns
}

func bucketRow(desc string, rules typeconfig.TableRules) domain.LineItemCategory {
	lowered := strings.ToLower(desc)
	for _, term := range rules.DeductionTerms {
		if strings.Contains(lowered, term) {
			return domain.CategoryDeduction
		}
	}
	for _, term := range rules.EarningTerms {
		if strings.Contains(lowered, term) {
			return domain.CategoryEarning
		}
	}
	return domain.CategoryItem
}

func isHeaderRow(row []string) bool {
	matched := 0
	for _, cell := range row {
		lowered := strings.ToLower(strings.TrimSpace(cell))
		for _, term := range headerTerms {
			if lowered == term {
				matched++
				break
			}
		}
	}
	return matched*2 >= len(row) && matched > 0
}

// lastAmountCell scans a row right-to-left for the first money-parseable cell.
func lastAmountCell(row []string) (string, bool) {
	for i := len(row) - 1; i >= 1; i-- {
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		if normalize.Money(cell) != nil {
			return cell, true
		}
	}
	return "", false
}

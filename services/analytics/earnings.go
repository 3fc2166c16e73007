package analytics

import (
	"sort"
	"time"

	"timeslice/models"

	"github.com/shopspring/decimal"
)

const (
	transactionEarn  = "earn"
	transactionSpend = "spend"

	uncategorized = "uncategorized"
)

// averageCredits divides a credit total by a count, rounded to two decimal places.
func averageCredits(total, count int) float64 {
	if count == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(total)).
		Div(decimal.NewFromInt(int64(count))).
		Round(2).
		InexactFloat64()
}

// completedTaskIDs returns the distinct task ids of completed bookings in [start, end).
func completedTaskIDs(bookings []models.Booking, start, end time.Time) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, b := range bookings {
		if b.Status != models.BookingCompleted || !inRange(b.CreatedAt, start, end) {
			continue
		}
		if _, ok := seen[b.TaskID]; ok {
			continue
		}
		seen[b.TaskID] = struct{}{}
		ids = append(ids, b.TaskID)
	}
	return ids
}

// buildEarnings summarises helper-side credits over [start, end). Transactions on both sides
// are listed newest first when detailed is set.
func buildEarnings(userID string, bookings []models.Booking, tasks map[string]models.Task, start, end time.Time, detailed bool) models.Earnings {
	total := decimal.Zero
	count := 0
	byCategory := make(map[string]decimal.Decimal)
	var txs []models.EarningTransaction

	for _, b := range bookings {
		if b.Status != models.BookingCompleted || !inRange(b.CreatedAt, start, end) {
			continue
		}
		task, known := tasks[b.TaskID]
		category := uncategorized
		if known && task.Category != "" {
			category = task.Category
		}
		credits := decimal.NewFromInt(int64(b.AgreedCredits))

		if b.Helper == userID {
			total = total.Add(credits)
			count++
			byCategory[category] = byCategory[category].Add(credits)
			if detailed {
				txs = append(txs, transaction(b, task, category, transactionEarn))
			}
		}
		if b.TaskProvider == userID && detailed {
			txs = append(txs, transaction(b, task, category, transactionSpend))
		}
	}

	earnings := models.Earnings{
		Total:      int(total.IntPart()),
		ByCategory: make(map[string]int, len(byCategory)),
	}
	if count > 0 {
		earnings.Average = total.Div(decimal.NewFromInt(int64(count))).Round(2).InexactFloat64()
	}
	for cat, v := range byCategory {
		earnings.ByCategory[cat] = int(v.IntPart())
	}
	if detailed {
		sort.SliceStable(txs, func(i, j int) bool { return txs[i].At.After(txs[j].At) })
		earnings.Transactions = txs
	}
	return earnings
}

func transaction(b models.Booking, task models.Task, category, kind string) models.EarningTransaction {
	return models.EarningTransaction{
		BookingID: b.ID,
		TaskID:    b.TaskID,
		TaskTitle: task.Title,
		Category:  category,
		Credits:   b.AgreedCredits,
		Type:      kind,
		At:        b.SettledAt(),
	}
}

package projector

import (
	"context"
	"time"

	"blackvant/internal/models"
)

// LedgerReader is the slice of the ledger store the projector needs.
type LedgerReader interface {
	EntriesForUser(ctx context.Context, userID string, from, to time.Time) ([]models.LedgerEntry, error)
}

// Projector derives every balance figure by replaying the ledger. There is
// no stored balance counter anywhere: the fold IS the balance, so history
// and balance can never drift apart.
type Projector struct {
	ledger LedgerReader
}

func New(ledger LedgerReader) *Projector {
	return &Projector{ledger: ledger}
}

// Summary holds the projected pools in minor units. Capital is the
// deposit-derived pool ("active investment"), Profit the accrual-derived
// pool. TodayProfit counts PROFIT entries posted during the current UTC
// day, matching the 00:00 UTC accrual schedule.
type Summary struct {
	TotalMinor       int64
	CapitalMinor     int64
	ProfitMinor      int64
	TodayProfitMinor int64
}

// SourceBalance returns the pool a withdrawal source draws from.
func (s Summary) SourceBalance(source string) int64 {
	if source == models.SourceProfit {
		return s.ProfitMinor
	}
	return s.CapitalMinor
}

func (p *Projector) Summary(ctx context.Context, userID string, now time.Time) (Summary, error) {
	entries, err := p.ledger.EntriesForUser(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return Summary{}, err
	}
	return Fold(entries, now), nil
}

// Fold replays entries into a Summary. Exported so tests can assert the
// replay-determinism property directly against entry slices.
func Fold(entries []models.LedgerEntry, now time.Time) Summary {
	dayStart := now.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	var summary Summary
	for _, entry := range entries {
		signed := entry.AmountMinor
		if entry.Direction == models.DirectionDebit {
			signed = -signed
		}
		if entry.Pool == models.PoolProfit {
			summary.ProfitMinor += signed
		} else {
			summary.CapitalMinor += signed
		}
		if entry.ReferenceType == models.ReferenceProfit {
			at := entry.CreatedAt.UTC()
			if !at.Before(dayStart) && at.Before(dayEnd) {
				summary.TodayProfitMinor += signed
			}
		}
	}
	summary.TotalMinor = summary.CapitalMinor + summary.ProfitMinor
	return summary
}

// EquityPoint is one day bucket of the equity curve.
type EquityPoint struct {
	Date             time.Time
	TotalMinor       int64
	CapitalMinor     int64
	ProfitMinor      int64
	DailyProfitMinor int64
}

// EquityHistory computes one point per UTC day over the trailing window,
// each point being the cumulative fold up to that day's end. Days before
// the user's first ledger entry produce no point; a series with fewer than
// two points is insufficient for charting and is returned as-is, never
// padded.
func (p *Projector) EquityHistory(ctx context.Context, userID string, days int, now time.Time) ([]EquityPoint, error) {
	if days < 1 {
		days = 1
	}
	todayStart := now.UTC().Truncate(24 * time.Hour)
	rangeStart := todayStart.AddDate(0, 0, -(days - 1))

	entries, err := p.ledger.EntriesForUser(ctx, userID, time.Time{}, todayStart.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	firstDay := entries[0].CreatedAt.UTC().Truncate(24 * time.Hour)
	if firstDay.After(rangeStart) {
		rangeStart = firstDay
	}

	points := make([]EquityPoint, 0, days)
	idx := 0
	var capital, profit int64
	// opening position: everything before the first bucket
	for idx < len(entries) && entries[idx].CreatedAt.UTC().Before(rangeStart) {
		capital, profit = accumulate(capital, profit, entries[idx])
		idx++
	}
	for day := rangeStart; !day.After(todayStart); day = day.Add(24 * time.Hour) {
		dayEnd := day.Add(24 * time.Hour)
		var dailyProfit int64
		for idx < len(entries) && entries[idx].CreatedAt.UTC().Before(dayEnd) {
			entry := entries[idx]
			capital, profit = accumulate(capital, profit, entry)
			if entry.ReferenceType == models.ReferenceProfit {
				signed := entry.AmountMinor
				if entry.Direction == models.DirectionDebit {
					signed = -signed
				}
				dailyProfit += signed
			}
			idx++
		}
		points = append(points, EquityPoint{
			Date:             day,
			TotalMinor:       capital + profit,
			CapitalMinor:     capital,
			ProfitMinor:      profit,
			DailyProfitMinor: dailyProfit,
		})
	}
	return points, nil
}

func accumulate(capital, profit int64, entry models.LedgerEntry) (int64, int64) {
	signed := entry.AmountMinor
	if entry.Direction == models.DirectionDebit {
		signed = -signed
	}
	if entry.Pool == models.PoolProfit {
		return capital, profit + signed
	}
	return capital + signed, profit
}

package projector

import (
	"context"
	"testing"
	"time"

	"blackvant/internal/models"

	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	base := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func entry(amount int64, direction, refType, pool string, at time.Time) models.LedgerEntry {
	return models.LedgerEntry{
		AmountMinor:   amount,
		Direction:     direction,
		ReferenceType: refType,
		Pool:          pool,
		CreatedAt:     at,
	}
}

func TestFoldSeparatesPools(t *testing.T) {
	now := day(3).Add(12 * time.Hour)
	entries := []models.LedgerEntry{
		entry(50000, models.DirectionCredit, models.ReferenceDeposit, models.PoolCapital, day(0)),
		entry(1500, models.DirectionCredit, models.ReferenceProfit, models.PoolProfit, day(1)),
		entry(1500, models.DirectionCredit, models.ReferenceProfit, models.PoolProfit, day(3).Add(time.Hour)),
		entry(10000, models.DirectionDebit, models.ReferenceWithdrawal, models.PoolCapital, day(2)),
	}
	summary := Fold(entries, now)
	require.Equal(t, int64(40000), summary.CapitalMinor)
	require.Equal(t, int64(3000), summary.ProfitMinor)
	require.Equal(t, int64(43000), summary.TotalMinor)
	require.Equal(t, int64(1500), summary.TodayProfitMinor)
}

// Replaying the same entries always produces the same summary; the fold is
// the balance, there is no counter to drift.
func TestFoldReplayDeterminism(t *testing.T) {
	now := day(5)
	entries := []models.LedgerEntry{
		entry(100000, models.DirectionCredit, models.ReferenceDeposit, models.PoolCapital, day(0)),
		entry(2000, models.DirectionCredit, models.ReferenceProfit, models.PoolProfit, day(1)),
		entry(40000, models.DirectionDebit, models.ReferenceWithdrawal, models.PoolCapital, day(2)),
		entry(500, models.DirectionDebit, models.ReferenceAdjustment, models.PoolCapital, day(3)),
	}
	first := Fold(entries, now)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Fold(entries, now))
	}
	require.Equal(t, first.CapitalMinor+first.ProfitMinor, first.TotalMinor)
}

func TestSourceBalance(t *testing.T) {
	summary := Summary{CapitalMinor: 40000, ProfitMinor: 3000}
	require.Equal(t, int64(3000), summary.SourceBalance(models.SourceProfit))
	require.Equal(t, int64(40000), summary.SourceBalance(models.SourceCapital))
}

type stubLedger struct {
	entries []models.LedgerEntry
}

func (s stubLedger) EntriesForUser(ctx context.Context, userID string, from, to time.Time) ([]models.LedgerEntry, error) {
	return s.entries, nil
}

func TestEquityHistoryCumulative(t *testing.T) {
	entries := []models.LedgerEntry{
		entry(50000, models.DirectionCredit, models.ReferenceDeposit, models.PoolCapital, day(0).Add(time.Hour)),
		entry(1000, models.DirectionCredit, models.ReferenceProfit, models.PoolProfit, day(1).Add(time.Hour)),
		entry(1000, models.DirectionCredit, models.ReferenceProfit, models.PoolProfit, day(2).Add(time.Hour)),
		entry(20000, models.DirectionDebit, models.ReferenceWithdrawal, models.PoolCapital, day(2).Add(2*time.Hour)),
	}
	p := New(stubLedger{entries: entries})
	now := day(2).Add(12 * time.Hour)
	points, err := p.EquityHistory(context.Background(), "u1", 7, now)
	require.NoError(t, err)
	require.Len(t, points, 3)

	require.Equal(t, day(0), points[0].Date)
	require.Equal(t, int64(50000), points[0].TotalMinor)
	require.Equal(t, int64(0), points[0].DailyProfitMinor)

	require.Equal(t, int64(51000), points[1].TotalMinor)
	require.Equal(t, int64(1000), points[1].DailyProfitMinor)

	require.Equal(t, int64(32000), points[2].TotalMinor)
	require.Equal(t, int64(30000), points[2].CapitalMinor)
	require.Equal(t, int64(2000), points[2].ProfitMinor)
	require.Equal(t, int64(1000), points[2].DailyProfitMinor)
}

func TestEquityHistoryOpeningPosition(t *testing.T) {
	// entries older than the window still seed the opening balance
	entries := []models.LedgerEntry{
		entry(50000, models.DirectionCredit, models.ReferenceDeposit, models.PoolCapital, day(-30)),
		entry(1000, models.DirectionCredit, models.ReferenceProfit, models.PoolProfit, day(1).Add(time.Hour)),
	}
	p := New(stubLedger{entries: entries})
	points, err := p.EquityHistory(context.Background(), "u1", 3, day(2))
	require.NoError(t, err)
	require.Len(t, points, 3)
	require.Equal(t, int64(50000), points[0].TotalMinor)
	require.Equal(t, int64(51000), points[1].TotalMinor)
	require.Equal(t, int64(51000), points[2].TotalMinor)
}

func TestEquityHistoryNoEntries(t *testing.T) {
	p := New(stubLedger{})
	points, err := p.EquityHistory(context.Background(), "u1", 30, day(0))
	require.NoError(t, err)
	require.Empty(t, points)
}

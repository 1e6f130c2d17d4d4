package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/govenue/pkg/report"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func sampleOrderStatus(ts time.Time) report.OrderStatusReport {
	return report.OrderStatusReport{
		AccountID:     "POLYMARKET-001",
		InstrumentID:  "BTC-UPDOWN-YES",
		ClientOrderID: "client-1",
		VenueOrderID:  "0xorder",
		Side:          report.OrderSideBuy,
		OrderType:     report.OrderTypeLimit,
		Contingency:   report.ContingencyNone,
		TimeInForce:   report.TimeInForceGTC,
		Status:        report.OrderStatusAccepted,
		Price:         decimal.RequireFromString("0.37"),
		Quantity:      decimal.RequireFromString("10.5"),
		FilledQty:     decimal.RequireFromString("2"),
		TsAccepted:    ts,
		TsLast:        ts,
		ReportID:      uuid.New(),
		TsInit:        ts,
	}
}

func sampleFill(ts time.Time) report.FillReport {
	return report.FillReport{
		AccountID:     "POLYMARKET-001",
		InstrumentID:  "BTC-UPDOWN-YES",
		VenueOrderID:  "0xorder",
		TradeID:       "trade-1",
		Side:          report.OrderSideSell,
		LiquiditySide: report.LiquiditySideMaker,
		LastQty:       decimal.RequireFromString("2"),
		LastPx:        decimal.RequireFromString("0.37"),
		TsEvent:       ts,
		ReportID:      uuid.New(),
		TsInit:        ts,
	}
}

func TestOrderStatusRoundTrip(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	older := sampleOrderStatus(time.UnixMilli(1695000001000).UTC())
	expire := time.UnixMilli(1695000300000).UTC()
	newer := sampleOrderStatus(time.UnixMilli(1695000005000).UTC())
	newer.Status = report.OrderStatusFilled
	newer.ExpireTime = &expire
	newer.OrderListID = "list-9"

	require.NoError(t, j.InsertOrderStatus(ctx, older))
	require.NoError(t, j.InsertOrderStatus(ctx, newer))

	got, err := j.RecentOrderStatus(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, newer.ReportID, first.ReportID)
	assert.Equal(t, report.OrderStatusFilled, first.Status)
	assert.Equal(t, "list-9", first.OrderListID)
	require.NotNil(t, first.ExpireTime)
	assert.True(t, first.ExpireTime.Equal(expire))
	assert.True(t, first.TsLast.Equal(newer.TsLast))

	second := got[1]
	assert.Equal(t, older.ReportID, second.ReportID)
	assert.Nil(t, second.ExpireTime)
	assert.Equal(t, report.OrderSideBuy, second.Side)
	assert.Equal(t, report.TimeInForceGTC, second.TimeInForce)
	assert.True(t, second.Price.Equal(decimal.RequireFromString("0.37")))
	assert.True(t, second.Quantity.Equal(decimal.RequireFromString("10.5")))
	assert.True(t, second.FilledQty.Equal(decimal.RequireFromString("2")))
}

func TestRecentOrderStatusLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	base := time.UnixMilli(1695000000000).UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, j.InsertOrderStatus(ctx, sampleOrderStatus(base.Add(time.Duration(i)*time.Second))))
	}

	got, err := j.RecentOrderStatus(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].TsLast.After(got[1].TsLast))
	assert.True(t, got[1].TsLast.After(got[2].TsLast))
}

func TestFillRoundTrip(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	fill := sampleFill(time.UnixMilli(1695000009000).UTC())
	require.NoError(t, j.InsertFill(ctx, fill))

	got, err := j.RecentFills(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, fill.ReportID, got[0].ReportID)
	assert.Equal(t, "trade-1", got[0].TradeID)
	assert.Equal(t, report.LiquiditySideMaker, got[0].LiquiditySide)
	assert.True(t, got[0].LastQty.Equal(fill.LastQty))
	assert.True(t, got[0].LastPx.Equal(fill.LastPx))
	assert.True(t, got[0].TsEvent.Equal(fill.TsEvent))
}

func TestRedeliveredTradeKeepsBothRows(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	ts := time.UnixMilli(1695000009000).UTC()
	first := sampleFill(ts)
	redelivered := sampleFill(ts)
	require.Equal(t, first.TradeID, redelivered.TradeID)

	require.NoError(t, j.InsertFill(ctx, first))
	require.NoError(t, j.InsertFill(ctx, redelivered))

	got, err := j.RecentFills(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCountByStatus(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	ts := time.UnixMilli(1695000000000).UTC()
	accepted := sampleOrderStatus(ts)
	filled := sampleOrderStatus(ts)
	filled.Status = report.OrderStatusFilled
	canceled := sampleOrderStatus(ts)
	canceled.Status = report.OrderStatusCanceled
	canceledAgain := sampleOrderStatus(ts)
	canceledAgain.Status = report.OrderStatusCanceled

	require.NoError(t, j.InsertOrderStatus(ctx, accepted))
	require.NoError(t, j.InsertOrderStatus(ctx, filled))
	require.NoError(t, j.InsertOrderStatus(ctx, canceled))
	require.NoError(t, j.InsertOrderStatus(ctx, canceledAgain))

	counts, err := j.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[report.OrderStatusAccepted])
	assert.Equal(t, int64(1), counts[report.OrderStatusFilled])
	assert.Equal(t, int64(2), counts[report.OrderStatusCanceled])
}

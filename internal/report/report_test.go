package report_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/atacadao/internal/order"
	"github.com/MrJamesThe3rd/atacadao/internal/report"
)

var saoPaulo = time.FixedZone("BRT", -3*60*60)

func mkOrder(created time.Time, status order.Status, total string, client, seller uuid.UUID) *order.Order {
	o := &order.Order{
		ID:         uuid.New(),
		ClientID:   client,
		ClientName: client.String()[:4],
		Status:     status,
		Total:      decimal.RequireFromString(total),
		CreatedAt:  created,
	}

	if seller != uuid.Nil {
		o.SellerID = &seller
		o.SellerName = seller.String()[:4]
	}

	return o
}

func TestMonthly(t *testing.T) {
	clientA, clientB := uuid.New(), uuid.New()
	sellerA, sellerB := uuid.New(), uuid.New()
	march := time.Date(2024, 3, 10, 12, 0, 0, 0, saoPaulo)

	orders := []*order.Order{
		mkOrder(march, order.StatusFinished, "100.00", clientA, sellerA),
		mkOrder(march, order.StatusInvoiced, "50.00", clientB, sellerB),
		mkOrder(march, order.StatusGenerated, "25.00", clientB, uuid.Nil),
		mkOrder(march, order.StatusCancelled, "1000.00", clientB, sellerB),
		// 2024-04-01 01:00 UTC is still March in São Paulo.
		mkOrder(time.Date(2024, 4, 1, 1, 0, 0, 0, time.UTC), order.StatusSent, "10.00", clientA, sellerA),
		mkOrder(time.Date(2024, 4, 2, 12, 0, 0, 0, saoPaulo), order.StatusSent, "999.00", clientA, sellerA),
	}

	got := report.Monthly(orders, report.Period{Year: 2024, Month: time.March}, saoPaulo)

	assert.Equal(t, "185.00", got.Revenue.StringFixed(2))
	assert.Equal(t, 4, got.OrderCount)
	assert.Equal(t, "46.25", got.AverageTicket.StringFixed(2))
	assert.Equal(t, map[order.Status]int{
		order.StatusFinished:  1,
		order.StatusInvoiced:  1,
		order.StatusGenerated: 1,
		order.StatusCancelled: 1,
		order.StatusSent:      1,
	}, got.ByStatus)

	require.NotNil(t, got.TopSeller)
	assert.Equal(t, sellerA, got.TopSeller.ID)
	assert.Equal(t, "110.00", got.TopSeller.Revenue.StringFixed(2))

	require.NotNil(t, got.TopClient)
	assert.Equal(t, clientA, got.TopClient.ID)
}

func TestMonthly_Empty(t *testing.T) {
	got := report.Monthly(nil, report.Period{Year: 2024, Month: time.January}, time.UTC)

	assert.True(t, got.Revenue.IsZero())
	assert.True(t, got.AverageTicket.IsZero())
	assert.Zero(t, got.OrderCount)
	assert.Nil(t, got.TopSeller)
	assert.Nil(t, got.TopClient)
	assert.Empty(t, got.ByStatus)
}

func TestMonthly_OnlyCancelled(t *testing.T) {
	created := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	orders := []*order.Order{mkOrder(created, order.StatusCancelled, "80.00", uuid.New(), uuid.New())}

	got := report.Monthly(orders, report.Period{Year: 2024, Month: time.January}, time.UTC)

	assert.True(t, got.Revenue.IsZero())
	assert.True(t, got.AverageTicket.IsZero())
	assert.Nil(t, got.TopClient)
	assert.Equal(t, 1, got.ByStatus[order.StatusCancelled])
}

func TestMonthly_TieKeepsFirst(t *testing.T) {
	created := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	first, second := uuid.New(), uuid.New()

	orders := []*order.Order{
		mkOrder(created, order.StatusGenerated, "30.00", first, uuid.Nil),
		mkOrder(created, order.StatusGenerated, "30.00", second, uuid.Nil),
	}

	got := report.Monthly(orders, report.Period{Year: 2024, Month: time.January}, time.UTC)
	require.NotNil(t, got.TopClient)
	assert.Equal(t, first, got.TopClient.ID)
	assert.Nil(t, got.TopSeller)
}

func TestMonthly_OrderIndependentTotals(t *testing.T) {
	created := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	statuses := order.Statuses

	var orders []*order.Order
	for i := range 40 {
		total := decimal.NewFromInt(int64(i + 1)).Div(decimal.NewFromInt(3)).Round(2)
		orders = append(orders, mkOrder(created, statuses[i%len(statuses)], total.String(), uuid.New(), uuid.New()))
	}

	period := report.Period{Year: 2024, Month: time.June}
	want := report.Monthly(orders, period, time.UTC)

	r := rand.New(rand.NewPCG(1, 2))
	for range 10 {
		r.Shuffle(len(orders), func(i, j int) { orders[i], orders[j] = orders[j], orders[i] })

		got := report.Monthly(orders, period, time.UTC)
		assert.True(t, want.Revenue.Equal(got.Revenue))
		assert.Equal(t, want.OrderCount, got.OrderCount)
		assert.True(t, want.AverageTicket.Equal(got.AverageTicket))
		assert.Equal(t, want.ByStatus, got.ByStatus)
	}
}

func TestHistory(t *testing.T) {
	c := uuid.New()
	orders := []*order.Order{
		mkOrder(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), order.StatusFinished, "1.00", c, uuid.Nil),
		mkOrder(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), order.StatusFinished, "2.00", c, uuid.Nil),
		mkOrder(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), order.StatusFinished, "3.00", c, uuid.Nil),
		mkOrder(time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC), order.StatusFinished, "4.00", c, uuid.Nil),
	}

	got := report.History(orders, time.UTC)
	require.Len(t, got, 3)

	assert.Equal(t, report.Period{Year: 2024, Month: time.February}, got[0].Period)
	assert.Equal(t, "6.00", got[0].Revenue.StringFixed(2))
	assert.Equal(t, report.Period{Year: 2024, Month: time.January}, got[1].Period)
	assert.Equal(t, report.Period{Year: 2023, Month: time.December}, got[2].Period)
}

func TestPeriod_Bounds(t *testing.T) {
	start, end := report.Period{Year: 2024, Month: time.December}.Bounds(time.UTC)

	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

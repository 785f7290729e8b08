package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodcart-routing-service/internal/domain"
	"foodcart-routing-service/internal/platform/db"
)

func int64p(v int64) *int64 { return &v }

func newSeededSqlite(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, InitSqliteSchema(conn))
	require.NoError(t, SeedSqlite(context.Background(), conn, testSeed()))
	return conn
}

func testSeed() *Seed {
	created := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	return &Seed{
		Categories: []CategorySeed{{ID: 1, Name: "Pizza"}},
		Products: []ProductSeed{
			{ID: 1, Name: "Pizza", CategoryID: int64p(1), Price: decimal.RequireFromString("450.00")},
			{ID: 2, Name: "Cola", Price: decimal.RequireFromString("90.50")},
		},
		Restaurants: []RestaurantSeed{
			{ID: 1, Name: "Zeta", Address: "Moscow, Tverskaya 1"},
			{ID: 2, Name: "Alpha", Address: "Moscow, Arbat 2"},
		},
		MenuItems: []MenuItemSeed{
			{RestaurantID: 1, ProductID: 1, Available: true},
			{RestaurantID: 1, ProductID: 2, Available: false},
			{RestaurantID: 2, ProductID: 1, Available: true},
		},
		Orders: []OrderSeed{
			{
				ID: 3, FirstName: "Oleg", LastName: "Ivanov", Phone: "+79160001122",
				Address: "Moscow, Arbat 10", Status: "PR", PaymentMethod: "CS",
				CreatedAt: &created, RestaurantID: int64p(2),
				Positions: []OrderLineSeed{{ProductID: 1, Quantity: 1, Price: decimal.RequireFromString("450.00")}},
			},
			{
				ID: 5, FirstName: "Ivan", LastName: "Petrov", Phone: "+79161234567",
				Address: "Moscow, Tverskaya 7", Status: "NW", PaymentMethod: "CD",
				CreatedAt: &created,
				Positions: []OrderLineSeed{
					{ProductID: 1, Quantity: 1, Price: decimal.RequireFromString("450.00")},
					{ProductID: 2, Quantity: 2, Price: decimal.RequireFromString("90.50")},
				},
			},
			{
				ID: 4, FirstName: "Anna", LastName: "Smirnova", Phone: "+79169876543",
				Address: "Moscow, Lubyanka 5", Status: "CP", PaymentMethod: "CD",
				CreatedAt: &created,
			},
			{
				ID: 7, FirstName: "Maria", LastName: "Kuznetsova", Phone: "+79163334455",
				Address: "Moscow, Marksistskaya 3", Status: "NW", PaymentMethod: "EL",
				CreatedAt: &created,
			},
		},
	}
}

func TestSqliteListActiveOrders(t *testing.T) {
	repo := NewSqliteRepository(newSeededSqlite(t))

	orders, err := repo.ListActiveOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 3)

	ids := []int64{orders[0].ID, orders[1].ID, orders[2].ID}
	assert.Equal(t, []int64{5, 7, 3}, ids, "new orders first, then by id")

	first := orders[0]
	assert.Equal(t, domain.StatusNew, first.Status)
	assert.Equal(t, domain.PaymentCard, first.PaymentMethod)
	assert.Equal(t, "Moscow, Tverskaya 7", first.Address)
	assert.False(t, first.Assigned())
	require.Len(t, first.Lines, 2)
	assert.Equal(t, int64(2), first.Lines[1].ProductID)
	assert.Equal(t, 2, first.Lines[1].Quantity)
	assert.True(t, first.Total().Equal(decimal.RequireFromString("631.00")))
	assert.True(t, first.CreatedAt.Equal(time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)))

	assert.Empty(t, orders[1].Lines)

	prepared := orders[2]
	require.True(t, prepared.Assigned())
	assert.Equal(t, int64(2), *prepared.RestaurantID)
	assert.Nil(t, prepared.CalledAt)
}

func TestSqliteListRestaurantsOrderedByName(t *testing.T) {
	repo := NewSqliteRepository(newSeededSqlite(t))

	restaurants, err := repo.ListRestaurants(context.Background())
	require.NoError(t, err)
	require.Len(t, restaurants, 2)
	assert.Equal(t, "Alpha", restaurants[0].Name)
	assert.Equal(t, "Zeta", restaurants[1].Name)
	assert.Equal(t, "Moscow, Tverskaya 1", restaurants[1].Address)
}

func TestSqliteListMenuItemsAndProducts(t *testing.T) {
	repo := NewSqliteRepository(newSeededSqlite(t))
	ctx := context.Background()

	items, err := repo.ListMenuItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.MenuItem{
		{RestaurantID: 1, ProductID: 1, Available: true},
		{RestaurantID: 1, ProductID: 2, Available: false},
		{RestaurantID: 2, ProductID: 1, Available: true},
	}, items)

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.NotNil(t, products[0].CategoryID)
	assert.Equal(t, int64(1), *products[0].CategoryID)
	assert.Nil(t, products[1].CategoryID)
	assert.True(t, products[1].Price.Equal(decimal.RequireFromString("90.5")))
}

func TestSeedSqliteIsRepeatable(t *testing.T) {
	conn := newSeededSqlite(t)
	require.NoError(t, SeedSqlite(context.Background(), conn, testSeed()))

	var positions int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM order_positions;`).Scan(&positions))
	assert.Equal(t, 3, positions)
}

func TestSqliteCreateOrder(t *testing.T) {
	repo := NewSqliteRepository(newSeededSqlite(t))
	ctx := context.Background()

	o := &domain.Order{
		FirstName:     "Olga",
		LastName:      "Ivanova",
		Phone:         "+79160000000",
		Address:       "Moscow, Arbat 1",
		Status:        domain.StatusNew,
		PaymentMethod: domain.PaymentCash,
		CreatedAt:     time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		Lines: []domain.OrderLine{
			{ProductID: 1, Quantity: 3, Price: decimal.RequireFromString("450")},
		},
	}
	require.NoError(t, repo.CreateOrder(ctx, o))
	assert.Equal(t, int64(8), o.ID)

	orders, err := repo.ListActiveOrders(ctx)
	require.NoError(t, err)

	var stored *domain.Order
	for _, got := range orders {
		if got.ID == o.ID {
			stored = got
		}
	}
	require.NotNil(t, stored)
	assert.Equal(t, "Olga", stored.FirstName)
	assert.True(t, stored.CreatedAt.Equal(o.CreatedAt))
	assert.True(t, stored.Total().Equal(decimal.RequireFromString("1350")))
}

func TestSqliteCreateOrderRollsBackOnBadLine(t *testing.T) {
	conn := newSeededSqlite(t)
	repo := NewSqliteRepository(conn)

	err := repo.CreateOrder(context.Background(), &domain.Order{
		Address:   "Moscow, Arbat 1",
		Status:    domain.StatusNew,
		CreatedAt: time.Now(),
		Lines: []domain.OrderLine{
			{ProductID: 1, Quantity: 1, Price: decimal.RequireFromString("450")},
			{ProductID: 404, Quantity: 1, Price: decimal.RequireFromString("1")},
		},
	})
	require.Error(t, err)

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM orders;`).Scan(&count))
	assert.Equal(t, 4, count)
}

func TestSqliteRepositoryNilDB(t *testing.T) {
	repo := NewSqliteRepository(nil)
	_, err := repo.ListActiveOrders(context.Background())
	assert.Error(t, err)
	_, err = repo.ListRestaurants(context.Background())
	assert.Error(t, err)
	assert.Error(t, repo.CreateOrder(context.Background(), &domain.Order{}))
}

package cart

import (
	"testing"

	"cicli-volante/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(id int64, price string) Snapshot {
	return Snapshot{
		ID:       id,
		Name:     "Bike",
		Price:    decimal.RequireFromString(price),
		Category: domain.CategoryEMTB,
	}
}

func TestAddItem_MergesSameProduct(t *testing.T) {
	c := New()
	c.AddItem(snapshot(3, "300"), 1)
	c.AddItem(snapshot(3, "300"), 2)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, c.Total().Equal(decimal.NewFromInt(900)))
}

func TestAddItem_DefaultsToOneUnit(t *testing.T) {
	c := New()
	c.AddItem(snapshot(1, "10"), 0)
	assert.Equal(t, 1, c.ItemCount())
}

func TestAddItem_KeepsSnapshotPrice(t *testing.T) {
	c := New()
	p := &domain.Product{ID: 7, Name: "Trek Rail", Price: decimal.NewFromInt(100), MainImage: "/img/7.jpg"}
	c.AddItem(SnapshotOf(p), 1)

	p.Price = decimal.NewFromInt(999)
	assert.True(t, c.Total().Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "/img/7.jpg", c.Lines()[0].Product.Image)
}

func TestUpdateQuantity(t *testing.T) {
	c := New()
	c.AddItem(snapshot(1, "10"), 2)
	c.AddItem(snapshot(2, "5"), 1)

	c.UpdateQuantity(1, 4)
	assert.True(t, c.Total().Equal(decimal.NewFromInt(45)))

	c.UpdateQuantity(1, 0)
	assert.Equal(t, 1, c.Len())

	c.UpdateQuantity(99, 3)
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Total().Equal(decimal.NewFromInt(5)))
}

func TestRemoveAndClear(t *testing.T) {
	c := New()
	c.AddItem(snapshot(1, "10"), 1)
	c.AddItem(snapshot(2, "20"), 1)
	c.AddItem(snapshot(3, "30"), 1)

	c.RemoveItem(2)
	c.RemoveItem(42)
	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].Product.ID)
	assert.Equal(t, int64(3), lines[1].Product.ID)

	c.Clear()
	assert.Zero(t, c.Len())
	assert.True(t, c.Total().IsZero())
}

func TestOrderLinesAndQuote(t *testing.T) {
	c := New()
	c.AddItem(snapshot(3, "300"), 2)

	assert.Equal(t, []domain.OrderLine{{ProductID: 3, Quantity: 2}}, c.OrderLines())

	q := c.Quote()
	assert.True(t, q.Shipping.IsZero())
	assert.True(t, q.Total.Equal(decimal.NewFromInt(600)))
}

func TestSessions(t *testing.T) {
	s := NewSessions()
	a := s.Get("a")
	a.AddItem(snapshot(1, "10"), 1)

	assert.Same(t, a, s.Get("a"))
	assert.Zero(t, s.Get("b").Len())
	assert.Equal(t, 2, s.Len())

	s.End("a")
	assert.Zero(t, s.Get("a").Len())
}

// Feature: storefront-cart, Property: total equals the sum over remaining lines
func TestProperty_TotalMatchesRemainingLines(t *testing.T) {
	prices := map[int64]decimal.Decimal{}
	for id := int64(1); id <= 5; id++ {
		prices[id] = decimal.New(id*1999, -2)
	}

	properties := gopter.NewProperties(nil)

	properties.Property("any sequence of operations keeps total consistent", prop.ForAll(
		func(ops []int) bool {
			c := New()
			model := map[int64]int{}

			for _, op := range ops {
				id := int64(op%5) + 1
				qty := (op / 5) % 6
				switch (op / 30) % 3 {
				case 0:
					c.AddItem(Snapshot{ID: id, Price: prices[id]}, qty)
					if qty < 1 {
						qty = 1
					}
					model[id] += qty
				case 1:
					c.UpdateQuantity(id, qty)
					if _, ok := model[id]; ok {
						if qty <= 0 {
							delete(model, id)
						} else {
							model[id] = qty
						}
					}
				case 2:
					c.RemoveItem(id)
					delete(model, id)
				}
			}

			want := decimal.Zero
			for id, qty := range model {
				if qty < 1 {
					return false
				}
				want = want.Add(prices[id].Mul(decimal.NewFromInt(int64(qty))))
			}

			if c.Len() != len(model) {
				return false
			}
			for _, line := range c.Lines() {
				if line.Quantity < 1 || model[line.Product.ID] != line.Quantity {
					return false
				}
			}
			return c.Total().Equal(want)
		},
		gen.SliceOf(gen.IntRange(0, 89)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCartJSONRoundTripKeepsOrder(t *testing.T) {
	c := New()
	c.AddItem(snapshot(2, "20"), 1)
	c.AddItem(snapshot(1, "10.50"), 3)

	raw, err := c.MarshalJSON()
	require.NoError(t, err)

	restored := New()
	require.NoError(t, restored.UnmarshalJSON(raw))

	lines := restored.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(2), lines[0].Product.ID)
	assert.Equal(t, 3, lines[1].Quantity)
	assert.True(t, restored.Total().Equal(c.Total()))
}

func TestCartUnmarshalDropsInvalidLines(t *testing.T) {
	c := New()
	raw := `[{"product":{"id":1,"price":"10"},"quantity":0},{"product":{"id":2,"price":"5"},"quantity":2},{"product":{"id":2,"price":"5"},"quantity":1}]`
	require.NoError(t, c.UnmarshalJSON([]byte(raw)))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestPersistentSessions(t *testing.T) {
	dir := t.TempDir()

	s, err := NewPersistentSessions(dir)
	require.NoError(t, err)

	c, err := s.Open("browser-1")
	require.NoError(t, err)
	c.AddItem(snapshot(3, "300"), 2)
	require.NoError(t, s.Save("browser-1"))

	// A new process sees the same cart
	again, err := NewPersistentSessions(dir)
	require.NoError(t, err)
	restored, err := again.Open("browser-1")
	require.NoError(t, err)
	assert.Equal(t, 2, restored.ItemCount())

	require.NoError(t, again.End("browser-1"))
	fresh, err := NewPersistentSessions(dir)
	require.NoError(t, err)
	assert.Zero(t, fresh.Get("browser-1").Len())

	_, err = fresh.Open("../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidSessionID)
}

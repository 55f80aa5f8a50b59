package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/pos-register/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) (*CartLedger, *CatalogStore, *memoryKV) {
	t.Helper()

	kv := newMemoryKV()
	catalog := NewCatalogStore(kv)
	ledger := NewCartLedger(kv, catalog)

	_, err := catalog.Seed(context.Background(), domain.DefaultCatalog())
	require.NoError(t, err)
	require.NoError(t, ledger.Seed(context.Background()))

	return ledger, catalog, kv
}

func TestCartLedgerReserveAndReleaseInOneWrite(t *testing.T) {
	ledger, catalog, kv := newTestLedger(t)
	ctx := context.Background()

	writes := kv.writes
	line, err := ledger.AddItem(ctx, "P002", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, writes+1, kv.writes)

	p, err := catalog.FindByCode(ctx, "P002")
	require.NoError(t, err)
	assert.Equal(t, 26, p.Stock)

	writes = kv.writes
	require.NoError(t, ledger.Clear(ctx))
	assert.Equal(t, writes+1, kv.writes)

	p, err = catalog.FindByCode(ctx, "P002")
	require.NoError(t, err)
	assert.Equal(t, 30, p.Stock)

	cart, err := ledger.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestCartLedgerClearSkipsMissingProducts(t *testing.T) {
	ledger, catalog, kv := newTestLedger(t)
	ctx := context.Background()

	_, err := ledger.AddItem(ctx, "P001", 3)
	require.NoError(t, err)
	require.NoError(t, catalog.Remove(ctx, "P001"))

	kv.data[CartKey] = `[{"code":"P001","name":"Shampoo","price":50,"quantity":3,"subtotal":150},` +
		`{"code":"P003","name":"Toothpaste","price":40,"quantity":2,"subtotal":80}]`

	require.NoError(t, ledger.Clear(ctx))

	products, err := catalog.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, products.FindByCode("P001"))
	assert.Equal(t, 17, products.FindByCode("P003").Stock)
}

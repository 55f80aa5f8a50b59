package redis

import (
	"context"
	"io"
	"testing"

	"github.com/DRSN-tech/pos-register/internal/usecase"
	"github.com/DRSN-tech/pos-register/pkg/clients"
	"github.com/DRSN-tech/pos-register/pkg/logger"
	miniredis "github.com/alicebob/miniredis/v2"
	r "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T, session string) (*KVRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := &clients.RedisClient{Client: r.NewClient(&r.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { _ = client.Close() })

	return NewKVRepo(client, session, logger.NewSlogLoggerWithWriter(io.Discard, "text", "info")), mr
}

func TestKVRepoGetMissing(t *testing.T) {
	repo, _ := newTestRepo(t, "s1")

	val, ok, err := repo.Get(context.Background(), "products")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)
}

func TestKVRepoSetAndGetUseSessionNamespace(t *testing.T) {
	repo, mr := newTestRepo(t, "s1")
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "cart", "[]"))

	got, err := mr.Get("pos:s1:cart")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)

	val, ok, err := repo.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", val)
}

func TestKVRepoSetMany(t *testing.T) {
	repo, mr := newTestRepo(t, "s1")

	require.NoError(t, repo.SetMany(context.Background(), map[string]string{
		"products": `[{"code":"P1"}]`,
		"cart":     `[]`,
	}))

	assert.True(t, mr.Exists("pos:s1:products"))
	assert.True(t, mr.Exists("pos:s1:cart"))
}

func TestKVRepoClearOnlyTouchesSession(t *testing.T) {
	repo, mr := newTestRepo(t, "s1")
	ctx := context.Background()

	require.NoError(t, repo.SetMany(ctx, map[string]string{"products": "[]", "cart": "[]"}))
	require.NoError(t, mr.Set("pos:s2:products", "[]"))

	require.NoError(t, repo.Clear(ctx))

	assert.False(t, mr.Exists("pos:s1:products"))
	assert.False(t, mr.Exists("pos:s1:cart"))
	assert.True(t, mr.Exists("pos:s2:products"))

	require.NoError(t, repo.Clear(ctx))
}

func TestKVRepoClearEscapesSessionPattern(t *testing.T) {
	for _, session := range []string{"till*", "till?", "till[2]", `till\`} {
		t.Run(session, func(t *testing.T) {
			repo, mr := newTestRepo(t, session)
			ctx := context.Background()

			require.NoError(t, repo.SetMany(ctx, map[string]string{"products": "[]", "cart": "[]"}))
			require.NoError(t, mr.Set("pos:till-2:products", "[]"))
			require.NoError(t, mr.Set("pos:till2:cart", "[]"))

			require.NoError(t, repo.Clear(ctx))

			assert.False(t, mr.Exists("pos:"+session+":products"))
			assert.False(t, mr.Exists("pos:"+session+":cart"))
			assert.True(t, mr.Exists("pos:till-2:products"))
			assert.True(t, mr.Exists("pos:till2:cart"))
		})
	}
}

func TestKVRepoErrorsWhenRedisDown(t *testing.T) {
	repo, mr := newTestRepo(t, "s1")
	mr.Close()

	_, _, err := repo.Get(context.Background(), "cart")
	require.Error(t, err)
}

func TestRegisterOverRedis(t *testing.T) {
	repo, _ := newTestRepo(t, "till-1")
	ctx := context.Background()
	uc := usecase.NewRegisterUC(repo, nil, nil, logger.NewSlogLoggerWithWriter(io.Discard, "text", "info"))

	_, err := uc.Init(ctx)
	require.NoError(t, err)

	_, err = uc.AddToCart(ctx, usecase.NewAddToCartReq("P002", 5))
	require.NoError(t, err)

	res, err := uc.ClearCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, res.View.Products.FindByCode("P002").Stock)

	_, err = uc.AddToCart(ctx, usecase.NewAddToCartReq("P003", 2))
	require.NoError(t, err)
	res, err = uc.Checkout(ctx, usecase.NewCheckoutReq(decimal.NewFromInt(100)))
	require.NoError(t, err)
	assert.Equal(t, "20.00", res.Receipt.Change.StringFixed(2))
	assert.Equal(t, 13, res.View.Products.FindByCode("P003").Stock)
}

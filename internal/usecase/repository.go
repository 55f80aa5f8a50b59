package usecase

import "context"

// Ключи, под которыми хранятся коллекции в KVStore.
const (
	ProductsKey = "products"
	CartKey     = "cart"
)

// KVStore хранит строки по ключу в пределах одной сессии кассы.
type KVStore interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetMany записывает несколько ключей одной атомарной операцией.
	SetMany(ctx context.Context, values map[string]string) error
	// Clear удаляет все ключи сессии.
	Clear(ctx context.Context) error
}

package usecase

import (
	"context"
	"encoding/json"

	"github.com/DRSN-tech/pos-register/pkg/e"
)

// loadJSON читает коллекцию по ключу. Отсутствующий ключ дает пустую коллекцию.
func loadJSON[T any](ctx context.Context, kv KVStore, key string, dst *T) error {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}

	if !ok || raw == "" {
		return nil
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return e.Wrap(key, e.ErrCorruptedState)
	}

	return nil
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

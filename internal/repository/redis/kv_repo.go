package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DRSN-tech/pos-register/pkg/clients"
	"github.com/DRSN-tech/pos-register/pkg/e"
	"github.com/DRSN-tech/pos-register/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// globEscaper экранирует метасимволы шаблона SCAN MATCH.
var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// KVRepo хранит состояние кассы в Redis под ключами pos:<session>:<key>.
type KVRepo struct {
	client  *clients.RedisClient
	session string
	logger  logger.Logger
}

func NewKVRepo(client *clients.RedisClient, session string, logger logger.Logger) *KVRepo {
	return &KVRepo{
		client:  client,
		session: session,
		logger:  logger,
	}
}

// Get возвращает значение ключа; отсутствие ключа не является ошибкой.
func (k *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := k.client.Client.Get(ctx, k.sessionKey(key)).Result()
	if errors.Is(err, r.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, e.Wrap(whereami.WhereAmI(), err)
	}

	return val, true, nil
}

func (k *KVRepo) Set(ctx context.Context, key, value string) error {
	if err := k.client.Client.Set(ctx, k.sessionKey(key), value, 0).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// SetMany записывает ключи в одном MULTI/EXEC.
func (k *KVRepo) SetMany(ctx context.Context, values map[string]string) error {
	_, err := k.client.Client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		for key, value := range values {
			pipe.Set(ctx, k.sessionKey(key), value, 0)
		}
		return nil
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Clear удаляет все ключи сессии, не затрагивая другие сессии.
func (k *KVRepo) Clear(ctx context.Context) error {
	const scanBatch = 100

	var keys []string
	iter := k.client.Client.Scan(ctx, 0, k.sessionPattern(), scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := k.client.Client.Del(ctx, keys...).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	k.logger.Debugf("Cleared %d redis keys for session %s", len(keys), k.session)
	return nil
}

// sessionKey возвращает Redis-ключ в пространстве сессии
func (k *KVRepo) sessionKey(key string) string {
	return fmt.Sprintf("pos:%s:%s", k.session, key)
}

// sessionPattern возвращает шаблон SCAN, совпадающий только с ключами этой сессии,
// даже если имя сессии содержит метасимволы.
func (k *KVRepo) sessionPattern() string {
	return fmt.Sprintf("pos:%s:*", globEscaper.Replace(k.session))
}

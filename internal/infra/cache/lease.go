package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/agendaflow/scheduling/internal/calsync"
)

// releaseScript só apaga a chave se o token ainda for nosso, para uma
// instância lenta não soltar o lease de outra.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLease é o single-flight das varreduras periódicas entre instâncias
// da API: SETNX com TTL, cada instância com token próprio.
type RedisLease struct {
	client *redis.Client
	key    string
	token  string
}

func NewRedisLease(client *redis.Client, key string) *RedisLease {
	return &RedisLease{
		client: client,
		key:    key,
		token:  uuid.NewString(),
	}
}

func (l *RedisLease) TryAcquire(ctx context.Context, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.token, ttl).Result()
}

func (l *RedisLease) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}

var _ calsync.Lease = (*RedisLease)(nil)

package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// runLockKey is shared by every worker replica; whoever sets it first owns
// the billing cycle until release or TTL expiry.
const runLockKey = "billing:run_lock"

// releaseScript deletes the lock only while this holder's token is still in
// it. A replica whose lock already expired must not free a newer holder's.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RunLock implements usecase.RunLock using Redis. Billing passes mutate
// shared state, so at most one worker replica may run a cycle at a time.
type RunLock struct {
	client *redis.Client
	token  string
}

// NewRunLock creates a new RunLock with a per-instance holder token.
func NewRunLock(client *redis.Client) *RunLock {
	return &RunLock{
		client: client,
		token:  uuid.New().String(),
	}
}

// Acquire takes the lock for at most ttl. It reports false without error
// when another holder already has it.
func (l *RunLock) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, runLockKey, l.token, ttl).Result()
}

// Release frees the lock if this instance still holds it.
func (l *RunLock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{runLockKey}, l.token).Err()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"exquisitos/internal/domain"
	"exquisitos/pkg/e"

	"github.com/redis/go-redis/v9"
)

// MailQueue buffers password-reset notifications between the auth service and
// the SMTP sender worker.
type MailQueue struct {
	client *redis.Client
	key    string
}

func NewMailQueue(client *redis.Client, key string) *MailQueue {
	return &MailQueue{client: client, key: key}
}

func (q *MailQueue) Enqueue(ctx context.Context, mail domain.ResetMail) error {
	b, err := json.Marshal(mail)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, b).Err()
}

func (q *MailQueue) BRPop(ctx context.Context, timeout time.Duration) (domain.ResetMail, error) {
	var m domain.ResetMail

	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return m, e.ErrMailQueueEmpty
		}
		return m, err
	}
	if len(res) < 2 {
		return m, redis.Nil
	}
	if err := json.Unmarshal([]byte(res[1]), &m); err != nil {
		return m, err
	}
	return m, nil
}

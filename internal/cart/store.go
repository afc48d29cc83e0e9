package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// Store abstracts cart session persistence.
type Store interface {
	Get(ctx context.Context, id string) (Cart, error)
	Save(ctx context.Context, c Cart) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps each cart as a JSON document with a sliding TTL. Carts are
// per-session state; saving touches the expiry.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s RedisStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

// Get loads a cart by id.
func (s RedisStore) Get(ctx context.Context, id string) (Cart, error) {
	if s.Client == nil {
		return Cart{}, errors.New("cart store not configured")
	}
	data, err := s.Client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, err
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Save persists the cart and refreshes its expiry.
func (s RedisStore) Save(ctx context.Context, c Cart) error {
	if s.Client == nil {
		return errors.New("cart store not configured")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, key(c.ID), data, s.ttl()).Err()
}

// Delete removes the cart. Deleting an absent cart is not an error.
func (s RedisStore) Delete(ctx context.Context, id string) error {
	if s.Client == nil {
		return errors.New("cart store not configured")
	}
	return s.Client.Del(ctx, key(id)).Err()
}

func key(id string) string {
	return "cart:" + id
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

var ErrIdentityNotFound = errors.New("identity not found")

// IdentityRepository remembers who this client joined as, per server, so it can re-join.
type IdentityRepository interface {
	Save(ctx context.Context, identity entity.Identity) error
	Get(ctx context.Context, server string) (entity.Identity, error)
	Delete(ctx context.Context, server string) error
}

func identityKey(server string) string {
	return "identity:" + server
}

type redisIdentity struct {
	client *redis.Client
}

func NewIdentityRepository(client *redis.Client) IdentityRepository {
	return &redisIdentity{
		client: client,
	}
}

func (that *redisIdentity) Save(ctx context.Context, identity entity.Identity) error {
	identityJSON, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err = that.client.Set(ctx, identityKey(identity.Server), identityJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set identity: %w", err)
	}

	return nil
}

func (that *redisIdentity) Get(ctx context.Context, server string) (entity.Identity, error) {
	response, err := that.client.Get(ctx, identityKey(server)).Result()

	if errors.Is(err, redis.Nil) {
		return entity.Identity{}, ErrIdentityNotFound
	}

	if err != nil {
		return entity.Identity{}, fmt.Errorf("failed to get identity: %w", err)
	}

	var identity entity.Identity
	if err = json.Unmarshal([]byte(response), &identity); err != nil {
		return entity.Identity{}, fmt.Errorf("failed to unmarshal identity: %w", err)
	}

	return identity, nil
}

func (that *redisIdentity) Delete(ctx context.Context, server string) error {
	if err := that.client.Del(ctx, identityKey(server)).Err(); err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}

	return nil
}

type memoryIdentity struct {
	mu         sync.RWMutex
	identities map[string]entity.Identity
}

// NewMemoryIdentityRepository keeps identities for the lifetime of the process only.
func NewMemoryIdentityRepository() IdentityRepository {
	return &memoryIdentity{
		identities: make(map[string]entity.Identity),
	}
}

func (that *memoryIdentity) Save(_ context.Context, identity entity.Identity) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.identities[identityKey(identity.Server)] = identity
	return nil
}

func (that *memoryIdentity) Get(_ context.Context, server string) (entity.Identity, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	identity, ok := that.identities[identityKey(server)]
	if !ok {
		return entity.Identity{}, ErrIdentityNotFound
	}
	return identity, nil
}

func (that *memoryIdentity) Delete(_ context.Context, server string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.identities, identityKey(server))
	return nil
}

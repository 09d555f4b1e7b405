package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"cinerec/internal/config"

	"github.com/redis/go-redis/v9"
)

// Cache es el contrato que consume el motor de recomendaciones.
// La implementación Redis vive acá; los tests usan un fake en memoria.
type Cache interface {
	// GetJSON deserializa la key en dest; devuelve false si no existe.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	// SetJSON serializa value y lo guarda con el TTL dado.
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	// DeleteByPattern borra best-effort todas las keys que matcheen el
	// patrón glob (SCAN + DEL). Nunca debe romper al que invalida.
	DeleteByPattern(ctx context.Context, pattern string) error
}

type Redis struct {
	client *redis.Client
}

func InitRedis(cfg *config.Config) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// sin Redis el sistema sigue andando, solo sin memoización
		log.Printf("[redis] no disponible (%v), cache deshabilitado", err)
		return &Redis{client: nil}
	}

	log.Println("[redis] OK")
	return &Redis{client: client}
}

func (r *Redis) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if r.client == nil {
		return false, nil
	}

	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// no existe la clave
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, b, ttl).Err()
}

// DeleteByPattern recorre las keys con SCAN y las borra. Si el cliente no
// está disponible es un no-op explícito y logueado, no un error: la
// invalidación es fire-and-forget.
func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		log.Printf("[redis] invalidación omitida (sin conexión): %s", pattern)
		return nil
	}

	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

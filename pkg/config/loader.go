package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.Mutex
	loaded = make(map[string]any)

	dotenvOnce sync.Once
)

// Load parses environment variables into the config struct based on its
// `env` field tags. A .env file in the working directory is loaded into the
// process environment first, once per process. Each config type is parsed
// once; later calls return the cached copy, so every caller observes the
// same configuration.
//
//	type StoreConfig struct {
//		URL     string        `env:"PERMALINK_DB_URL,required"`
//		Timeout time.Duration `env:"PERMALINK_DB_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg StoreConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() {
		// Missing .env is fine; the environment may be set directly.
		_ = godotenv.Load()
	})

	key := typeName[T]()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := loaded[key]; ok {
		*v = cached.(T)
		return nil
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	loaded[key] = *v // cache a copy, callers may mutate theirs
	return nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// typeName keys the cache by the concrete config type.
func typeName[T any]() string {
	var zero T
	if t := reflect.TypeOf(zero); t != nil {
		return t.String()
	}
	return fmt.Sprintf("%T", *new(T))
}

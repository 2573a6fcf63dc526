package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CacheService - in-memory кэш с TTL. Хранит редко меняющиеся данные (страницы справочника навыков).
type CacheService struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	cache map[string]cacheEntry
}

type cacheEntry struct {
	data      any
	expiresAt time.Time
}

// NewCacheService создает кэш. ttl <= 0 отключает кэширование.
func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cacheEntry),
	}
}

func (cs *CacheService) Get(key string) (any, bool) {
	if cs == nil {
		return nil, false
	}
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	entry, ok := cs.cache[key]
	if !ok || cs.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (cs *CacheService) Set(key string, value any) {
	if cs == nil || cs.ttl <= 0 {
		return
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache[key] = cacheEntry{data: value, expiresAt: cs.now().Add(cs.ttl)}
}

// InvalidateByPrefix удаляет все ключи с префиксом.
func (cs *CacheService) InvalidateByPrefix(prefix string) {
	if cs == nil {
		return
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key := range cs.cache {
		if strings.HasPrefix(key, prefix) {
			delete(cs.cache, key)
		}
	}
}

// GetOrSet возвращает значение из кэша или вычисляет и сохраняет его.
// Ошибки fn не кэшируются.
func (cs *CacheService) GetOrSet(key string, fn func() (any, error)) (any, error) {
	if value, ok := cs.Get(key); ok {
		return value, nil
	}
	value, err := fn()
	if err != nil {
		return nil, err
	}
	cs.Set(key, value)
	return value, nil
}

// Sweep удаляет просроченные записи и возвращает их количество.
func (cs *CacheService) Sweep() int {
	if cs == nil {
		return 0
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()

	now := cs.now()
	removed := 0
	for key, entry := range cs.cache {
		if now.After(entry.expiresAt) {
			delete(cs.cache, key)
			removed++
		}
	}
	return removed
}

// RunCleanup периодически чистит просроченные записи до отмены ctx.
func (cs *CacheService) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cs.Sweep()
		}
	}
}

const skillPagePrefix = "skills:page:"

func skillPageCacheKey(page int) string {
	return skillPagePrefix + strconv.Itoa(page)
}

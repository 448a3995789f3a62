// Пакет service — бизнес-логика sheetcheck.
// SnapshotCache — LRU-кэш снимков табличных источников с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sc_cache_hits_total",
		Help: "Общее количество попаданий в кэш снимков.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sc_cache_misses_total",
		Help: "Общее количество промахов кэша снимков.",
	})
)

// SnapshotCache — LRU-кэш снимков с автоматическим TTL.
// Ключ — пара (источник, диапазон). Истёкшие записи не возвращаются.
// Кэш локален для экземпляра сервиса.
type SnapshotCache struct {
	cache *expirable.LRU[string, *model.TableSnapshot]
}

// NewSnapshotCache создаёт кэш с указанным максимальным размером и TTL.
func NewSnapshotCache(maxSize int, ttl time.Duration) *SnapshotCache {
	cache := expirable.NewLRU[string, *model.TableSnapshot](maxSize, nil, ttl)
	return &SnapshotCache{cache: cache}
}

// cacheKey формирует ключ записи кэша.
func cacheKey(sourceID, rangeExpr string) string {
	return sourceID + "|" + rangeExpr
}

// Get возвращает снимок из кэша.
// Обновляет Prometheus-метрики hit/miss.
func (c *SnapshotCache) Get(sourceID, rangeExpr string) (*model.TableSnapshot, bool) {
	val, ok := c.cache.Get(cacheKey(sourceID, rangeExpr))
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или заменяет снимок; срок жизни отсчитывается заново.
func (c *SnapshotCache) Set(sourceID, rangeExpr string, snap *model.TableSnapshot) {
	c.cache.Add(cacheKey(sourceID, rangeExpr), snap)
}

// InvalidateSource удаляет все диапазоны источника.
func (c *SnapshotCache) InvalidateSource(sourceID string) {
	prefix := sourceID + "|"
	for _, key := range c.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Remove(key)
		}
	}
}

// Len возвращает количество записей (включая ещё не вычищенные истёкшие).
func (c *SnapshotCache) Len() int {
	return c.cache.Len()
}

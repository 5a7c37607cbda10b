package cvedb

import (
	"database/sql"
	"encoding/json"
	"time"

	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/utils"
)

// Cache 漏洞查询结果的SQLite缓存
// 命中缓存可以避免重复访问外部搜索接口，缓存故障时直接穿透
type Cache struct {
	db     *sql.DB
	ttl    time.Duration
	logger *utils.Logger
}

// NewCache 在给定数据库连接上创建查询缓存并初始化表
func NewCache(db *sql.DB, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	cache := &Cache{
		db:     db,
		ttl:    ttl,
		logger: utils.NewLogger("cve-cache"),
	}

	if err := cache.initTables(); err != nil {
		return nil, err
	}
	return cache, nil
}

func (c *Cache) initTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cve_query_cache (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT UNIQUE NOT NULL,
		results_json TEXT NOT NULL,
		fetched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_cve_query ON cve_query_cache(query);
	`

	_, err := c.db.Exec(schema)
	return err
}

// Get 查缓存，过期或未命中返回ok=false
func (c *Cache) Get(query string) ([]model.CVEEntry, bool) {
	var resultsJSON string
	var fetchedAt time.Time

	err := c.db.QueryRow(`
		SELECT results_json, fetched_at FROM cve_query_cache WHERE query = ?`,
		query,
	).Scan(&resultsJSON, &fetchedAt)
	if err != nil {
		return nil, false
	}

	if time.Since(fetchedAt) > c.ttl {
		return nil, false
	}

	var entries []model.CVEEntry
	if err := json.Unmarshal([]byte(resultsJSON), &entries); err != nil {
		c.logger.Debug("缓存内容损坏，忽略: %q", query)
		return nil, false
	}

	return entries, true
}

// Put 写入缓存，失败只记日志
func (c *Cache) Put(query string, entries []model.CVEEntry) {
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}

	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO cve_query_cache (query, results_json, fetched_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)`,
		query, string(data),
	)
	if err != nil {
		c.logger.Debug("写入缓存失败 %q: %v", query, err)
	}
}

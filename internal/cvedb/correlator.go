package cvedb

import (
	"context"
	"fmt"
	"strings"

	"ZhaoYaoJing/internal/model"
	"ZhaoYaoJing/internal/utils"
)

// 所有查询都未命中时的固定说明
const gapReason = "No CVEs matched (may be hardened or API lookup mismatch)."

// DefaultServiceLimit 默认最多关联的服务数
const DefaultServiceLimit = 12

// Searcher 漏洞搜索接口，失败约定为返回空结果
type Searcher interface {
	Search(ctx context.Context, query string) []model.CVEEntry
}

// Correlator 把指纹识别出的服务映射到漏洞记录
// 每个服务按优先级尝试多个查询串，第一个命中的生效
type Correlator struct {
	searcher Searcher
	cache    *Cache
	limit    int
	logger   *utils.Logger
}

// NewCorrelator 创建关联器，cache可为nil
func NewCorrelator(searcher Searcher, cache *Cache, limit int) *Correlator {
	if limit <= 0 {
		limit = DefaultServiceLimit
	}
	return &Correlator{
		searcher: searcher,
		cache:    cache,
		limit:    limit,
		logger:   utils.NewLogger("cve-correlator"),
	}
}

// BuildQuery 按优先级组装首选查询串
// product+version > product > name > extrainfo，全部为空时返回空串
func BuildQuery(svc model.ServiceRecord) string {
	name := strings.TrimSpace(svc.Name)
	product := strings.TrimSpace(svc.Product)
	version := strings.TrimSpace(svc.Version)
	extra := strings.TrimSpace(svc.ExtraInfo)

	switch {
	case product != "" && version != "":
		return fmt.Sprintf("%s %s", product, version)
	case product != "":
		return product
	case name != "":
		return name
	case extra != "":
		return extra
	}
	return ""
}

// Correlate 对前limit个服务做漏洞关联
// 首选查询未命中时回退到服务name，仍无结果则记一条CVEGapNote
func (c *Correlator) Correlate(ctx context.Context, services []model.ServiceRecord) ([]model.CVEMatch, []model.CVEGapNote) {
	var matches []model.CVEMatch
	var notes []model.CVEGapNote

	limit := c.limit
	if len(services) < limit {
		limit = len(services)
	}

	for _, svc := range services[:limit] {
		queries := candidateQueries(svc)

		found := false
		for _, q := range queries {
			entries := c.search(ctx, q)
			if len(entries) == 0 {
				continue
			}

			matches = append(matches, model.CVEMatch{
				Query:   q,
				Service: svc.Name,
				Product: svc.Product,
				Version: svc.Version,
				Port:    svc.Port,
				CVEs:    entries,
			})
			found = true
			break
		}

		if !found {
			notes = append(notes, model.CVEGapNote{
				Service: svc.Name,
				Port:    svc.Port,
				Reason:  gapReason,
			})
		}
	}

	c.logger.Info("漏洞关联完成: 命中 %d 个服务, 未命中 %d 个", len(matches), len(notes))
	return matches, notes
}

// candidateQueries 首选查询加name回退，name与首选相同时不重复
func candidateQueries(svc model.ServiceRecord) []string {
	var queries []string

	if primary := BuildQuery(svc); primary != "" {
		queries = append(queries, primary)
	}

	name := strings.TrimSpace(svc.Name)
	if name != "" && (len(queries) == 0 || queries[0] != name) {
		queries = append(queries, name)
	}

	return queries
}

// search 先查缓存，未命中走外部搜索并回填
func (c *Correlator) search(ctx context.Context, query string) []model.CVEEntry {
	if c.cache != nil {
		if entries, ok := c.cache.Get(query); ok {
			c.logger.Debug("缓存命中: %q", query)
			return entries
		}
	}

	entries := c.searcher.Search(ctx, query)
	if c.cache != nil && len(entries) > 0 {
		c.cache.Put(query, entries)
	}
	return entries
}

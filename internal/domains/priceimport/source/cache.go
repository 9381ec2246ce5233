package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"pricebook-backend/internal/domains/priceimport/model"
	"pricebook-backend/pkg/cache"

	"github.com/rs/zerolog/log"
)

const tableCachePrefix = "import:table:"

// CachedReader cache bảng đã parse theo hash nội dung file + options.
// Chỉ cache bảng nguồn, không bao giờ cache dòng đã derive.
type CachedReader struct {
	next  Reader
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedReader(next Reader, c cache.Cache, ttl time.Duration) *CachedReader {
	return &CachedReader{next: next, cache: c, ttl: ttl}
}

func (r *CachedReader) Read(ctx context.Context, data []byte, opts model.ReadOptions) (*model.Document, error) {
	key := TableCacheKey(data, opts)

	var doc model.Document
	found, err := r.cache.Get(ctx, key, &doc)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Parsed table cache read failed")
	} else if found {
		return &doc, nil
	}

	parsed, err := r.next.Read(ctx, data, opts)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, parsed, r.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Parsed table cache write failed")
	}
	return parsed, nil
}

// TableCacheKey = sha256(file) + các option ảnh hưởng tới bảng được chọn
func TableCacheKey(data []byte, opts model.ReadOptions) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s%s:%s:%d:%d:%t:%d:%d",
		tableCachePrefix, hex.EncodeToString(sum[:]),
		opts.SourceType, opts.SheetIndex, opts.TableIndex, opts.HasHeader, opts.PageFrom, opts.PageTo)
}

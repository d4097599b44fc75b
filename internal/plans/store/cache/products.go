// Package cache decorates the product store with a Redis read-through cache.
// Products are read on every plan and rescue request but change rarely.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"prevplan/internal/plans/metrics"
	"prevplan/internal/plans/models"
	id "prevplan/pkg/domain"
	"prevplan/pkg/platform/circuit"
)

const productKeyPrefix = "prevplan:product:"

// ProductStore is the persistence port the cache wraps.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, productID id.ProductID) error
	FindProduct(ctx context.Context, productID id.ProductID) (*models.Product, error)
	FindProductsByName(ctx context.Context, name string) ([]*models.Product, error)
	ListProducts(ctx context.Context) ([]*models.Product, error)
}

// Products caches FindProduct results. Writes go to the wrapped store first
// and then evict the key. Redis failures never fail a request; the lookup
// falls through to the store. After repeated Redis failures the breaker
// opens and lookups skip Redis until its cooldown elapses.
type Products struct {
	next    ProductStore
	client  redis.Cmdable
	ttl     time.Duration
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures Products.
type Option func(*Products)

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Products) { p.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Products) { p.logger = logger }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Products) { p.breaker = b }
}

// NewProducts wraps next with a cache stored in client for ttl.
func NewProducts(next ProductStore, client redis.Cmdable, ttl time.Duration, opts ...Option) *Products {
	p := &Products{
		next:    next,
		client:  client,
		ttl:     ttl,
		breaker: circuit.New("product-cache"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func productKey(productID id.ProductID) string {
	return productKeyPrefix + productID.String()
}

func (p *Products) FindProduct(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	if !p.breaker.Allow() {
		p.metrics.IncrementProductCache(metrics.CacheBypass)
		return p.next.FindProduct(ctx, productID)
	}

	key := productKey(productID)
	raw, err := p.client.Get(ctx, key).Bytes()
	p.observe(ctx, err)
	switch {
	case err == nil:
		var product models.Product
		if jsonErr := json.Unmarshal(raw, &product); jsonErr == nil {
			p.metrics.IncrementProductCache(metrics.CacheHit)
			return &product, nil
		}
		p.metrics.IncrementProductCache(metrics.CacheError)
		p.logger.WarnContext(ctx, "discarding undecodable cached product", "product_id", productID.String())
	case errors.Is(err, redis.Nil):
		p.metrics.IncrementProductCache(metrics.CacheMiss)
	default:
		p.metrics.IncrementProductCache(metrics.CacheError)
		p.logger.WarnContext(ctx, "product cache read failed", "product_id", productID.String(), "error", err)
	}

	product, err := p.next.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	p.store(ctx, key, product)
	return product, nil
}

func (p *Products) store(ctx context.Context, key string, product *models.Product) {
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	err = p.client.Set(ctx, key, raw, p.ttl).Err()
	p.observe(ctx, err)
	if err != nil {
		p.logger.WarnContext(ctx, "product cache write failed", "key", key, "error", err)
	}
}

// evict always attempts the delete, even with the breaker open, so a
// recovering Redis does not serve a product older than the last write.
func (p *Products) evict(ctx context.Context, productID id.ProductID) {
	err := p.client.Del(ctx, productKey(productID)).Err()
	p.observe(ctx, err)
	if err != nil {
		p.logger.WarnContext(ctx, "product cache eviction failed", "product_id", productID.String(), "error", err)
	}
}

// observe feeds a Redis outcome to the breaker. A cache miss is a healthy reply.
func (p *Products) observe(ctx context.Context, err error) {
	if err == nil || errors.Is(err, redis.Nil) {
		p.breaker.RecordSuccess()
		return
	}
	if p.breaker.RecordFailure() {
		p.logger.WarnContext(ctx, "product cache disabled after repeated redis failures", "breaker", p.breaker.Name())
	}
}

func (p *Products) CreateProduct(ctx context.Context, product *models.Product) error {
	return p.next.CreateProduct(ctx, product)
}

func (p *Products) UpdateProduct(ctx context.Context, product *models.Product) error {
	if err := p.next.UpdateProduct(ctx, product); err != nil {
		return err
	}
	p.evict(ctx, product.ID)
	return nil
}

func (p *Products) DeleteProduct(ctx context.Context, productID id.ProductID) error {
	if err := p.next.DeleteProduct(ctx, productID); err != nil {
		return err
	}
	p.evict(ctx, productID)
	return nil
}

func (p *Products) FindProductsByName(ctx context.Context, name string) ([]*models.Product, error) {
	return p.next.FindProductsByName(ctx, name)
}

func (p *Products) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return p.next.ListProducts(ctx)
}

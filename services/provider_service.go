package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gilded-grove/concierge-api/config"
	"github.com/gilded-grove/concierge-api/models"
	"gorm.io/gorm"
)

// remoteQueryTimeout bounds a single remote catalog call
const remoteQueryTimeout = 8 * time.Second

// ProviderError is a typed failure from a product provider
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// ProductProvider is the single query contract every catalog backend
// implements. The variant is chosen once at startup; handlers never care
// which one they talk to.
type ProductProvider interface {
	QueryProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
}

var productProviderInstance ProductProvider

// InitProductProvider selects and constructs the provider variant named in
// the configuration
func InitProductProvider(cfg *config.Config, db *gorm.DB) (ProductProvider, error) {
	switch cfg.ProductProvider {
	case config.ProviderStub:
		productProviderInstance = NewStubProvider()
	case config.ProviderRemote:
		productProviderInstance = NewRemoteProvider(cfg)
	case config.ProviderLocalDB:
		productProviderInstance = NewLocalDBProvider(db)
	default:
		return nil, fmt.Errorf("unknown product provider %q", cfg.ProductProvider)
	}
	return productProviderInstance, nil
}

// GetProductProvider returns the initialized provider instance
func GetProductProvider() ProductProvider {
	return productProviderInstance
}

// SetProductProvider sets the provider instance (primarily for testing)
func SetProductProvider(p ProductProvider) {
	productProviderInstance = p
}

// StubProvider serves a fixed in-memory sample set. Used in demos and local
// development where no catalog exists.
type StubProvider struct {
	products []models.Product
	latency  time.Duration
}

// NewStubProvider creates a stub provider over the built-in sample catalog
func NewStubProvider() *StubProvider {
	return &StubProvider{
		products: stubCatalog(),
		latency:  50 * time.Millisecond,
	}
}

func stubCatalog() []models.Product {
	sample := []struct {
		sku, title, category, metal string
		priceCents                  int64
		tags                        string
		ready, featured             bool
	}{
		{"GG-R-001", "Aurora Solitaire Ring", "ring", "platinum", 189000, "ring,solitaire,engagement", true, true},
		{"GG-R-002", "Halo Pave Ring", "ring", "18k-gold", 249000, "ring,halo,pave", false, true},
		{"GG-R-003", "Slim Eternity Band", "ring", "14k-gold", 99000, "ring,band,eternity", true, false},
		{"GG-N-001", "Floating Diamond Pendant", "necklace", "14k-gold", 69000, "necklace,pendant", true, true},
		{"GG-B-001", "Classic Tennis Bracelet", "bracelet", "14k-gold", 319000, "bracelet,tennis", false, true},
		{"GG-E-001", "Round Stud Earrings", "earrings", "14k-gold", 89000, "earrings,studs", true, false},
		{"GG-E-002", "Drop Halo Earrings", "earrings", "platinum", 159000, "earrings,halo,drop", false, false},
	}

	products := make([]models.Product, 0, len(sample))
	for i, s := range sample {
		products = append(products, models.Product{
			ID:               uint(i + 1),
			SKU:              s.sku,
			Title:            s.title,
			Category:         s.category,
			Metal:            s.metal,
			PriceCents:       s.priceCents,
			Tags:             s.tags,
			ReadyToShip:      s.ready,
			FeaturedInWidget: s.featured,
		})
	}
	return products
}

// QueryProducts applies the filter predicate in-process over the sample set
func (p *StubProvider) QueryProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	// Simulated latency, still cancellable
	select {
	case <-time.After(p.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	results := make([]models.Product, 0)
	for _, product := range p.products {
		if !matchesFilter(&product, filter) {
			continue
		}
		results = append(results, product)
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
	}
	return results, nil
}

// matchesFilter is the in-process predicate shared by the stub provider.
// Tag matching is overlap, never all-of.
func matchesFilter(product *models.Product, filter ProductFilter) bool {
	if filter.Category != "" && product.Category != filter.Category {
		return false
	}
	if len(filter.Tags) > 0 && !product.HasAnyTag(filter.Tags) {
		return false
	}
	if filter.PriceMinCents > 0 && product.PriceCents < filter.PriceMinCents {
		return false
	}
	if filter.PriceMaxCents > 0 && product.PriceCents > filter.PriceMaxCents {
		return false
	}
	if filter.ReadyToShip != nil && product.ReadyToShip != *filter.ReadyToShip {
		return false
	}
	if filter.FeaturedOnly && !product.FeaturedInWidget {
		return false
	}
	if filter.Query != "" && !strings.Contains(strings.ToLower(product.Title), strings.ToLower(filter.Query)) {
		return false
	}
	return true
}

// RemoteProvider queries an external catalog service over HTTP
type RemoteProvider struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewRemoteProvider creates a remote provider from the configured base URL
// and bearer token
func NewRemoteProvider(cfg *config.Config) *RemoteProvider {
	return &RemoteProvider{
		baseURL: strings.TrimSuffix(cfg.RemoteProviderURL, "/"),
		token:   cfg.RemoteProviderToken,
		httpClient: &http.Client{
			Timeout: remoteQueryTimeout,
		},
	}
}

// QueryProducts issues an authenticated GET with an 8 second deadline.
// Timeouts and non-2xx responses surface as typed provider errors; there is
// no retry.
func (p *RemoteProvider) QueryProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteQueryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/products?"+encodeFilter(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	if p.token != "" {
		req.Header.Add("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &ProviderError{Code: "UPSTREAM_TIMEOUT", Message: "Catalog service did not respond in time"}
		}
		return nil, &ProviderError{Code: "UPSTREAM_ERROR", Message: fmt.Sprintf("Catalog request failed: %v", err)}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			_ = closeErr
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{
			Code:    "UPSTREAM_ERROR",
			Message: fmt.Sprintf("Catalog service returned status %d", resp.StatusCode),
		}
	}

	var payload struct {
		Products []models.Product `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &ProviderError{Code: "UPSTREAM_ERROR", Message: "Failed to decode catalog response"}
	}
	return payload.Products, nil
}

// encodeFilter renders the filter as catalog-service query parameters
func encodeFilter(filter ProductFilter) string {
	values := url.Values{}
	if filter.Category != "" {
		values.Set("category", filter.Category)
	}
	if len(filter.Tags) > 0 {
		values.Set("tags", strings.Join(filter.Tags, ","))
	}
	if filter.PriceMinCents > 0 {
		values.Set("priceGte", strconv.FormatInt(filter.PriceMinCents, 10))
	}
	if filter.PriceMaxCents > 0 {
		values.Set("priceLt", strconv.FormatInt(filter.PriceMaxCents, 10))
	}
	if filter.ReadyToShip != nil {
		values.Set("readyToShip", strconv.FormatBool(*filter.ReadyToShip))
	}
	if filter.FeaturedOnly {
		values.Set("featured", "true")
	}
	if filter.Query != "" {
		values.Set("q", filter.Query)
	}
	if filter.Sort != "" {
		values.Set("sort", filter.Sort)
	}
	if filter.Limit > 0 {
		values.Set("limit", strconv.Itoa(filter.Limit))
	}
	return values.Encode()
}

// LocalDBProvider queries the persisted product catalog
type LocalDBProvider struct {
	db *gorm.DB
}

// NewLocalDBProvider creates a provider over the local products table
func NewLocalDBProvider(db *gorm.DB) *LocalDBProvider {
	return &LocalDBProvider{db: db}
}

// QueryProducts translates the filter into SQL predicates. Tags match on
// overlap: any shared tag qualifies, mirroring an $in lookup rather than
// $all.
func (p *LocalDBProvider) QueryProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := p.db.WithContext(ctx).Model(&models.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if len(filter.Tags) > 0 {
		// Overlap semantics over the serialized column: one LIKE per tag,
		// OR'd together
		tagQuery := p.db.Where("',' || tags || ',' LIKE ?", "%,"+strings.ToLower(strings.TrimSpace(filter.Tags[0]))+",%")
		for _, tag := range filter.Tags[1:] {
			tagQuery = tagQuery.Or("',' || tags || ',' LIKE ?", "%,"+strings.ToLower(strings.TrimSpace(tag))+",%")
		}
		query = query.Where(tagQuery)
	}
	if filter.PriceMinCents > 0 {
		query = query.Where("price_cents >= ?", filter.PriceMinCents)
	}
	if filter.PriceMaxCents > 0 {
		query = query.Where("price_cents <= ?", filter.PriceMaxCents)
	}
	if filter.ReadyToShip != nil {
		query = query.Where("ready_to_ship = ?", *filter.ReadyToShip)
	}
	if filter.FeaturedOnly {
		query = query.Where("featured_in_widget = ?", true)
	}
	if filter.Query != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(filter.Query)+"%")
	}

	switch filter.Sort {
	case "price-asc":
		query = query.Order("price_cents ASC")
	case "price-desc":
		query = query.Order("price_cents DESC")
	case "newest":
		query = query.Order("created_at DESC")
	default:
		query = query.Order("featured_in_widget DESC, price_cents ASC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return products, nil
}

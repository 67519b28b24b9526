package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"basketwise/internal/bundle"
	cmodels "basketwise/internal/catalog/models"
	dmodels "basketwise/internal/directory/models"
	"basketwise/internal/platform/metrics"
	"basketwise/internal/prefs"
	"basketwise/internal/pricing"
	"basketwise/pkg/domain"
	dErrors "basketwise/pkg/domain-errors"
)

// Directory resolves regions and scoped store sets.
type Directory interface {
	RegionBySlug(ctx context.Context, slug string) (*dmodels.Region, error)
	StoresInScope(ctx context.Context, region *dmodels.Region, subArea string) []*dmodels.Store
}

// Catalog lists priced products.
type Catalog interface {
	Products(ctx context.Context, regionID domain.RegionID, category string) []*cmodels.Product
	AllProducts(ctx context.Context) []*cmodels.Product
}

// Service owns the live session set. Sessions are in-process state: a
// restart drops them, which matches their lifetime (one browsing visit).
type Service struct {
	directory Directory
	catalog   Catalog
	matcher   *bundle.Matcher
	prefs     prefs.Store
	metrics   *metrics.Metrics
	logger    *slog.Logger

	defaultRegion string

	mu       sync.RWMutex
	sessions map[domain.SessionID]*Session
}

func New(
	directory Directory,
	catalog Catalog,
	matcher *bundle.Matcher,
	prefStore prefs.Store,
	defaultRegion string,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		directory:     directory,
		catalog:       catalog,
		matcher:       matcher,
		prefs:         prefStore,
		metrics:       m,
		logger:        logger,
		defaultRegion: defaultRegion,
		sessions:      make(map[domain.SessionID]*Session),
	}
}

// Create opens a session in the named region, or the default region when
// slug is empty. The initial product and store snapshots are fetched in
// parallel before the session becomes visible.
func (s *Service) Create(ctx context.Context, slug string) (*Session, error) {
	if slug == "" {
		if saved, ok := s.prefs.Get(ctx, prefs.KeySelectedRegion); ok {
			slug = saved
		} else {
			slug = s.defaultRegion
		}
	}
	region, err := s.directory.RegionBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	sess := newSession(domain.SessionID(uuid.New()), region, pricing.NewEvaluator(s.metrics))
	sess.refreshSeq = 1
	if err := s.refresh(ctx, sess, region, dmodels.SubAreaAll, 1); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session created",
		"session_id", sess.ID,
		"region", region.Slug,
	)
	return sess, nil
}

// Get returns the live session or CodeNotFound.
func (s *Service) Get(id domain.SessionID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	return sess, nil
}

// SelectRegion switches the session to a new region. The cart is discarded:
// entries reference region-scoped products and pinned stores that have no
// meaning in the new region. Product and store snapshots are refetched
// concurrently.
func (s *Service) SelectRegion(ctx context.Context, id domain.SessionID, slug string) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	region, err := s.directory.RegionBySlug(ctx, slug)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	sess.region = region
	sess.subArea = dmodels.SubAreaAll
	sess.cart.Clear()
	sess.refreshSeq++
	token := sess.refreshSeq
	sess.mu.Unlock()

	s.prefs.Set(ctx, prefs.KeySelectedRegion, slug)
	s.logger.InfoContext(ctx, "region selected",
		"session_id", id,
		"region", region.Slug,
	)
	return s.refresh(ctx, sess, region, dmodels.SubAreaAll, token)
}

// SetSubArea narrows the store scope to one locality (or SubAreaAll to
// clear the filter). The cart survives: narrowing the scope only changes
// which prices are realizable, not what the shopper picked.
func (s *Service) SetSubArea(ctx context.Context, id domain.SessionID, subArea string) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	if subArea == "" {
		subArea = dmodels.SubAreaAll
	}

	sess.mu.Lock()
	region := sess.region
	sess.subArea = subArea
	sess.refreshSeq++
	token := sess.refreshSeq
	sess.mu.Unlock()

	return s.refresh(ctx, sess, region, subArea, token)
}

// refresh fetches the region's products and scoped stores in parallel and
// installs them, unless a newer refresh started while this one was in
// flight. The fetches themselves never fail (the services degrade to their
// fallback datasets), so the group exists for shared cancellation.
func (s *Service) refresh(
	ctx context.Context,
	sess *Session,
	region *dmodels.Region,
	subArea string,
	token uint64,
) error {
	g, gctx := errgroup.WithContext(ctx)

	var (
		products []*cmodels.Product
		scope    []*dmodels.Store
	)
	g.Go(func() error {
		products = s.catalog.Products(gctx, region.ID, "")
		return nil
	})
	g.Go(func() error {
		scope = s.directory.StoresInScope(gctx, region, subArea)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if token != sess.refreshSeq {
		s.logger.DebugContext(ctx, "stale refresh discarded",
			"session_id", sess.ID,
			"token", token,
			"current", sess.refreshSeq,
		)
		return nil
	}
	sess.products = products
	sess.scope = scope
	sess.catalogVersion++
	return nil
}

// AddToCart adds one unit of the product, optionally pinned to a store.
// The product must exist in the session's current catalog snapshot.
func (s *Service) AddToCart(ctx context.Context, id domain.SessionID, productID domain.ProductID, pin domain.StoreID) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if _, ok := sess.productIndex()[productID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "product not in catalog")
	}
	sess.cart.Add(productID, pin)
	if s.metrics != nil {
		s.metrics.ObserveCartMutation("add")
	}
	return nil
}

// SetQuantity sets the line quantity; zero or negative removes the line.
func (s *Service) SetQuantity(ctx context.Context, id domain.SessionID, productID domain.ProductID, quantity int) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if quantity > 0 {
		if _, ok := sess.productIndex()[productID]; !ok {
			return dErrors.New(dErrors.CodeNotFound, "product not in catalog")
		}
	}
	sess.cart.SetQuantity(productID, quantity)
	if s.metrics != nil {
		s.metrics.ObserveCartMutation("set_quantity")
	}
	return nil
}

// RemoveFromCart removes the product's line. Removing an absent product is
// a no-op, not an error.
func (s *Service) RemoveFromCart(ctx context.Context, id domain.SessionID, productID domain.ProductID) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.cart.Remove(productID)
	if s.metrics != nil {
		s.metrics.ObserveCartMutation("remove")
	}
	return nil
}

// AddBundle matches the bundle against the full catalog and adds every
// matched product pinned to its cheapest store. All-or-nothing: if any
// keyword is unmatched the cart is untouched and CodeNotFound is returned.
func (s *Service) AddBundle(ctx context.Context, id domain.SessionID, bundleID domain.BundleID) (bundle.Result, error) {
	sess, err := s.Get(id)
	if err != nil {
		return bundle.Result{}, err
	}

	result, err := s.matcher.Match(ctx, bundleID, s.catalog.AllProducts(ctx))
	if err != nil {
		return bundle.Result{}, err
	}

	sess.mu.Lock()
	for _, m := range result.Matches {
		sess.cart.Add(m.ProductID, m.Store.StoreID)
	}
	sess.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ObserveCartMutation("add_bundle")
	}
	s.logger.InfoContext(ctx, "bundle added to cart",
		"session_id", id,
		"bundle", result.Definition.Name,
		"items", len(result.Matches),
	)
	return result, nil
}

// SetAlert registers (or replaces) a price alert for the product.
func (s *Service) SetAlert(ctx context.Context, id domain.SessionID, productID domain.ProductID, target domain.Cents) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	if target < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "target price must not be negative")
	}
	sess.alerts.Set(productID, target)
	return nil
}

// RemoveAlert drops the alert for the product, if any.
func (s *Service) RemoveAlert(ctx context.Context, id domain.SessionID, productID domain.ProductID) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	sess.alerts.Remove(productID)
	return nil
}

// SavedProducts returns the persisted saved-product list. An empty or
// failing preference store yields an empty list, never an error.
func (s *Service) SavedProducts(ctx context.Context, id domain.SessionID) ([]domain.ProductID, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSaved(ctx), nil
}

// SaveProduct adds the product to the persisted saved list. Saving an
// already-saved product is a no-op. Persistence is best effort: a failing
// preference store loses the save but the call still succeeds.
func (s *Service) SaveProduct(ctx context.Context, id domain.SessionID, productID domain.ProductID) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	_, known := sess.productIndex()[productID]
	sess.mu.Unlock()
	if !known {
		return dErrors.New(dErrors.CodeNotFound, "product not in catalog")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	saved := s.loadSaved(ctx)
	for _, pid := range saved {
		if pid == productID {
			return nil
		}
	}
	s.storeSaved(ctx, append(saved, productID))
	return nil
}

// UnsaveProduct drops the product from the saved list; idempotent.
func (s *Service) UnsaveProduct(ctx context.Context, id domain.SessionID, productID domain.ProductID) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	saved := s.loadSaved(ctx)
	kept := saved[:0]
	for _, pid := range saved {
		if pid != productID {
			kept = append(kept, pid)
		}
	}
	if len(kept) == len(saved) {
		return nil
	}
	s.storeSaved(ctx, kept)
	return nil
}

// loadSaved decodes the comma-joined saved-product preference. Entries that
// no longer parse are dropped silently. Caller holds s.mu.
func (s *Service) loadSaved(ctx context.Context) []domain.ProductID {
	raw, ok := s.prefs.Get(ctx, prefs.KeySavedProducts)
	if !ok || raw == "" {
		return nil
	}
	var ids []domain.ProductID
	for _, part := range strings.Split(raw, ",") {
		pid, err := domain.ParseProductID(part)
		if err != nil {
			continue
		}
		ids = append(ids, pid)
	}
	return ids
}

func (s *Service) storeSaved(ctx context.Context, ids []domain.ProductID) {
	parts := make([]string, len(ids))
	for i, pid := range ids {
		parts[i] = pid.String()
	}
	s.prefs.Set(ctx, prefs.KeySavedProducts, strings.Join(parts, ","))
}

// Snapshot materializes the session's full derived view: cart items with
// scoped price ranges, best/worst/savings totals through the memoized
// evaluator, per-store cart totals, and fired alerts.
func (s *Service) Snapshot(ctx context.Context, id domain.SessionID) (*Snapshot, error) {
	sess, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	idx := sess.productIndex()
	lines := sess.cart.Lines()

	snap := &Snapshot{
		ID:        sess.ID,
		Region:    sess.region,
		SubArea:   sess.subArea,
		Products:  sess.products,
		Stores:    sess.scope,
		ItemCount: sess.cart.ItemCount(),
		Alerts:    sess.alerts.List(),
		Fired:     sess.alerts.Check(idx, sess.scope),
	}

	for _, entry := range sess.cart.Entries() {
		item := Item{Entry: entry}
		if p, ok := idx[entry.ProductID]; ok {
			item.Name = p.Name
			if r, ok := pricing.PriceRange(p, sess.scope); ok {
				item.Range = r
				item.Priced = true
			}
		}
		snap.Items = append(snap.Items, item)
	}

	snap.Totals = sess.evaluator.CartTotals(ctx, lines, idx, sess.scope,
		sess.cart.Version(), sess.catalogVersion)

	for _, st := range sess.scope {
		snap.StoreTotals = append(snap.StoreTotals, StoreTotal{
			Store:    st,
			Total:    pricing.StoreTotal(lines, idx, st.ID),
			Complete: storeCovers(lines, idx, st.ID),
		})
	}
	return snap, nil
}

// storeCovers reports whether the store prices every cart line.
func storeCovers(lines []pricing.Line, idx map[domain.ProductID]*cmodels.Product, storeID domain.StoreID) bool {
	for _, line := range lines {
		p, ok := idx[line.ProductID]
		if !ok {
			return false
		}
		if _, ok := p.PriceAt(storeID); !ok {
			return false
		}
	}
	return true
}

// Close discards a session. Unknown IDs are a no-op.
func (s *Service) Close(id domain.SessionID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

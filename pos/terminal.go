// Package pos owns the state of one till: catalog, cart, sales ledger,
// checkout session and admin PIN. Every mutation goes through Terminal and is
// written back to the store before the method returns.
package pos

import (
	"context"
	"strings"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/foodpos/config"
	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/store"
	"bitbucket.org/mmdatafocus/foodpos/utils"
	"github.com/sirupsen/logrus"
)

const defaultAdminPin = "1234"

// SyncRequester receives fire-and-forget sync requests. Implementations must not block.
type SyncRequester interface {
	RequestSalesPush()
	RequestCatalogPush()
}

type Options struct {
	Store      *store.Store
	Logger     *logrus.Logger
	Guard      CheckoutGuard
	DefaultPin string
	Now        func() time.Time
}

type Terminal struct {
	mu sync.Mutex

	store      *store.Store
	logger     *logrus.Logger
	guard      CheckoutGuard
	defaultPin string
	now        func() time.Time

	syncMu sync.RWMutex
	sync   SyncRequester

	products []models.Product
	cart     []models.CartLine
	sales    []models.Sale
	pin      string
	checkout checkoutSession
}

// NewTerminal loads every record from the store, installing defaults where needed.
func NewTerminal(ctx context.Context, opts Options) (*Terminal, error) {
	t := &Terminal{
		store:      opts.Store,
		logger:     opts.Logger,
		guard:      opts.Guard,
		defaultPin: strings.TrimSpace(opts.DefaultPin),
		now:        opts.Now,
	}
	if t.logger == nil {
		t.logger = config.GetLogger()
	}
	if t.guard == nil {
		t.guard = NewLocalGuard()
	}
	if t.defaultPin == "" {
		t.defaultPin = defaultAdminPin
	}
	if t.now == nil {
		t.now = time.Now
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.loadLocked(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// SetSyncRequester wires the sync engine after construction.
func (t *Terminal) SetSyncRequester(r SyncRequester) {
	t.syncMu.Lock()
	t.sync = r
	t.syncMu.Unlock()
}

func (t *Terminal) requestSalesPush() {
	t.syncMu.RLock()
	r := t.sync
	t.syncMu.RUnlock()
	if r != nil {
		r.RequestSalesPush()
	}
}

func (t *Terminal) requestCatalogPush() {
	t.syncMu.RLock()
	r := t.sync
	t.syncMu.RUnlock()
	if r != nil {
		r.RequestCatalogPush()
	}
}

func (t *Terminal) loadLocked(ctx context.Context) error {
	if err := t.initializeCatalogLocked(ctx); err != nil {
		return err
	}

	cart := store.Load(ctx, t.store, store.KeyCart, []models.CartLine{})
	t.cart = make([]models.CartLine, 0, len(cart))
	for _, l := range cart {
		if strings.TrimSpace(l.ProductId) == "" || l.Quantity <= 0 {
			continue
		}
		t.cart = append(t.cart, l)
	}

	t.sales = store.Load(ctx, t.store, store.KeySales, []models.Sale{})

	t.pin = strings.TrimSpace(store.Load(ctx, t.store, store.KeyAdminPin, ""))
	if t.pin == "" {
		hashed, err := utils.HashPassword(t.defaultPin)
		if err != nil {
			return err
		}
		t.pin = string(hashed)
		if err := t.store.Save(ctx, store.KeyAdminPin, t.pin); err != nil {
			return err
		}
	}

	t.checkout = checkoutSession{}
	return nil
}

// persist writes value under key. The write outlives a cancelled request:
// once memory has changed, the store must follow.
func (t *Terminal) persist(ctx context.Context, funcName, key string, value any) error {
	if err := t.store.Save(context.WithoutCancel(ctx), key, value); err != nil {
		config.LogError(t.logger, "pos", funcName, "persist "+key, nil, err)
		return err
	}
	return nil
}

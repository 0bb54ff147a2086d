// Package sheetsync reconciles the till with the spreadsheet endpoint: it
// pushes unsynced sales, pulls the central catalog and publishes local
// catalog edits. Every failure is logged and left for the next trigger.
package sheetsync

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"bitbucket.org/mmdatafocus/foodpos/config"
	"bitbucket.org/mmdatafocus/foodpos/models"
	"bitbucket.org/mmdatafocus/foodpos/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "bitbucket.org/mmdatafocus/foodpos/sheetsync"

// What started a sync operation, carried in the context for logs and spans.
const (
	TriggerStartup = "startup"
	TriggerTimer   = "timer"
	TriggerRequest = "request"
	TriggerAdmin   = "admin"
)

// Local is the till state the engine reads and updates.
type Local interface {
	PendingSales() []models.Sale
	MarkSynced(ctx context.Context, saleIds []string) (int, error)
	Products() []models.Product
	ReplaceCatalog(ctx context.Context, products []models.Product) error
}

type Options struct {
	Endpoint        string
	Local           Local
	Logger          *logrus.Logger
	HTTPClient      *http.Client
	Prober          Prober
	SalesInterval   time.Duration
	CatalogInterval time.Duration
	ProbeInterval   time.Duration
	Now             func() time.Time
}

// Status is a snapshot for the status badge.
type Status struct {
	Online          bool       `json:"online"`
	Configured      bool       `json:"endpoint_configured"`
	LastSalesPush   *time.Time `json:"last_sales_push,omitempty"`
	LastCatalogPull *time.Time `json:"last_catalog_pull,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
}

type Engine struct {
	local      Local
	client     *sheetClient
	configured bool
	logger     *logrus.Logger
	prober     Prober
	tracer     trace.Tracer
	now        func() time.Time

	salesInterval   time.Duration
	catalogInterval time.Duration
	probeInterval   time.Duration

	online     atomic.Bool
	salesReq   chan struct{}
	catalogReq chan struct{}

	// opMu keeps the worker and a forced sync from sending the same batch twice.
	opMu sync.Mutex

	statusMu        sync.Mutex
	lastSalesPush   time.Time
	lastCatalogPull time.Time
	lastError       string
}

func NewEngine(opts Options) *Engine {
	e := &Engine{
		local:           opts.Local,
		configured:      IsConfigured(opts.Endpoint),
		logger:          opts.Logger,
		prober:          opts.Prober,
		tracer:          otel.Tracer(tracerName),
		now:             opts.Now,
		salesInterval:   opts.SalesInterval,
		catalogInterval: opts.CatalogInterval,
		probeInterval:   opts.ProbeInterval,
		salesReq:        make(chan struct{}, 1),
		catalogReq:      make(chan struct{}, 1),
	}
	if e.logger == nil {
		e.logger = config.GetLogger()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.salesInterval <= 0 {
		e.salesInterval = 30 * time.Second
	}
	if e.catalogInterval <= 0 {
		e.catalogInterval = 60 * time.Second
	}
	if e.probeInterval <= 0 {
		e.probeInterval = 10 * time.Second
	}
	e.client = newSheetClient(opts.Endpoint, opts.HTTPClient, e.now)
	// without a prober there is nothing to tell us we are offline
	e.online.Store(e.prober == nil)
	return e
}

func (e *Engine) Online() bool {
	return e.online.Load()
}

func (e *Engine) Configured() bool {
	return e.configured
}

// SetOnline records connectivity. Going from offline to online requests a
// sales push.
func (e *Engine) SetOnline(online bool) {
	was := e.online.Swap(online)
	if was == online {
		return
	}
	e.logger.WithField("online", online).Info("sheetsync: connectivity changed")
	if online {
		e.RequestSalesPush()
	}
}

// RequestSalesPush asks the worker for a sales push. Requests coalesce.
func (e *Engine) RequestSalesPush() {
	select {
	case e.salesReq <- struct{}{}:
	default:
	}
}

// RequestCatalogPush asks the worker to publish the local catalog.
func (e *Engine) RequestCatalogPush() {
	select {
	case e.catalogReq <- struct{}{}:
	default:
	}
}

func (e *Engine) Status() Status {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	s := Status{
		Online:     e.Online(),
		Configured: e.configured,
		LastError:  e.lastError,
	}
	if !e.lastSalesPush.IsZero() {
		t := e.lastSalesPush
		s.LastSalesPush = &t
	}
	if !e.lastCatalogPull.IsZero() {
		t := e.lastCatalogPull
		s.LastCatalogPull = &t
	}
	return s
}

// SyncNow pushes pending sales right away on the caller's goroutine.
func (e *Engine) SyncNow(ctx context.Context) Status {
	e.PushPendingSales(utils.SetTriggerInContext(ctx, TriggerAdmin))
	return e.Status()
}

func triggerOf(ctx context.Context) string {
	if t, ok := utils.GetTriggerFromContext(ctx); ok {
		return t
	}
	return TriggerRequest
}

func (e *Engine) ready() bool {
	return e.configured && e.Online()
}

// PushPendingSales sends every unsynced sale in one request and marks exactly
// those sales synced once the request went out.
func (e *Engine) PushPendingSales(ctx context.Context) {
	if !e.ready() {
		return
	}
	e.opMu.Lock()
	defer e.opMu.Unlock()

	ctx, span := e.tracer.Start(ctx, "sheetsync.PushPendingSales", trace.WithAttributes(attribute.String("sync.trigger", triggerOf(ctx))))
	defer span.End()

	pending := e.local.PendingSales()
	span.SetAttributes(attribute.Int("sales.pending", len(pending)))
	if len(pending) == 0 {
		return
	}

	status, err := e.client.postForm(ctx, actionSales, salesPayload{Sales: pending})
	if err != nil {
		e.fail(span, "PushPendingSales", "post sales", len(pending), err)
		return
	}
	span.SetAttributes(attribute.Int("http.status_code", status))

	ids := make([]string, 0, len(pending))
	for _, s := range pending {
		ids = append(ids, s.ID)
	}
	marked, err := e.local.MarkSynced(ctx, ids)
	if err != nil {
		e.fail(span, "PushPendingSales", "mark synced", ids, err)
		return
	}

	e.statusMu.Lock()
	e.lastSalesPush = e.now()
	e.lastError = ""
	e.statusMu.Unlock()
	e.logger.WithFields(logrus.Fields{
		"sent":    len(pending),
		"marked":  marked,
		"status":  status,
		"trigger": triggerOf(ctx),
	}).Info("sheetsync: sales pushed")
}

// PullCatalog replaces the local catalog with the central one. An answer
// that is not ok or does not validate leaves the local catalog alone.
func (e *Engine) PullCatalog(ctx context.Context) {
	if !e.ready() {
		return
	}
	e.opMu.Lock()
	defer e.opMu.Unlock()

	ctx, span := e.tracer.Start(ctx, "sheetsync.PullCatalog", trace.WithAttributes(attribute.String("sync.trigger", triggerOf(ctx))))
	defer span.End()

	resp, err := e.client.getCatalog(ctx)
	if err != nil {
		e.fail(span, "PullCatalog", "get catalog", nil, err)
		return
	}
	if err := resp.check(); err != nil {
		e.fail(span, "PullCatalog", "reject catalog", utils.ProcessValidationErrors(err), err)
		return
	}
	span.SetAttributes(attribute.Int("products.count", len(resp.Products)))

	if err := e.local.ReplaceCatalog(ctx, resp.Products); err != nil {
		e.fail(span, "PullCatalog", "replace catalog", len(resp.Products), err)
		return
	}

	e.statusMu.Lock()
	e.lastCatalogPull = e.now()
	e.lastError = ""
	e.statusMu.Unlock()
	e.logger.WithField("products", len(resp.Products)).Info("sheetsync: catalog pulled")
}

// PushCatalog publishes the whole local catalog.
func (e *Engine) PushCatalog(ctx context.Context) {
	if !e.ready() {
		return
	}
	e.opMu.Lock()
	defer e.opMu.Unlock()

	ctx, span := e.tracer.Start(ctx, "sheetsync.PushCatalog", trace.WithAttributes(attribute.String("sync.trigger", triggerOf(ctx))))
	defer span.End()

	products := e.local.Products()
	span.SetAttributes(attribute.Int("products.count", len(products)))
	if _, err := e.client.postForm(ctx, actionProducts, productsPayload{Products: products}); err != nil {
		e.fail(span, "PushCatalog", "post products", len(products), err)
		return
	}
	e.logger.WithField("products", len(products)).Info("sheetsync: catalog pushed")
}

func (e *Engine) fail(span trace.Span, funcName, what string, data interface{}, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	e.statusMu.Lock()
	e.lastError = err.Error()
	e.statusMu.Unlock()
	config.LogError(e.logger, "sheetsync", funcName, what, data, err)
}

func (e *Engine) probe(ctx context.Context) {
	if e.prober == nil {
		return
	}
	e.SetOnline(e.prober.Probe(ctx))
}

// Run is the worker loop. It probes, pulls the catalog once, then serves
// timers and requests until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	e.logger.WithFields(logrus.Fields{
		"configured":       e.configured,
		"sales_interval":   e.salesInterval.String(),
		"catalog_interval": e.catalogInterval.String(),
	}).Info("sheetsync: worker started")

	e.probe(ctx)
	e.PullCatalog(utils.SetTriggerInContext(ctx, TriggerStartup))
	timerCtx := utils.SetTriggerInContext(ctx, TriggerTimer)
	requestCtx := utils.SetTriggerInContext(ctx, TriggerRequest)

	salesTicker := time.NewTicker(e.salesInterval)
	defer salesTicker.Stop()
	catalogTicker := time.NewTicker(e.catalogInterval)
	defer catalogTicker.Stop()

	var probeC <-chan time.Time
	if e.prober != nil {
		probeTicker := time.NewTicker(e.probeInterval)
		defer probeTicker.Stop()
		probeC = probeTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("sheetsync: worker stopped")
			return
		case <-probeC:
			e.probe(ctx)
		case <-salesTicker.C:
			e.PushPendingSales(timerCtx)
		case <-catalogTicker.C:
			e.PullCatalog(timerCtx)
		case <-e.salesReq:
			e.PushPendingSales(requestCtx)
		case <-e.catalogReq:
			e.PushCatalog(requestCtx)
		}
	}
}

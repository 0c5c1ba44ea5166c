package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bobmcallan/gripvest/internal/common"
	"github.com/bobmcallan/gripvest/internal/interfaces"
	"github.com/bobmcallan/gripvest/internal/models"
	"github.com/bobmcallan/gripvest/internal/services/portfolio"
)

// ErrSuperseded is returned by a refresh that a newer refresh replaced.
var ErrSuperseded = errors.New("refresh superseded by a newer refresh")

// Snapshot is a consistent, caller-owned copy of the dashboard state.
type Snapshot struct {
	Session           *models.Session
	Products          []*models.Product
	Investments       []*models.Investment
	Summary           models.PortfolioSummary
	RiskDistribution  models.RiskDistribution
	RiskProfile       models.RiskProfile
	ProductsSource    common.Source
	InvestmentsSource common.Source
	RefreshedAt       time.Time
}

// dashState is replaced wholesale on every change.
type dashState struct {
	session           *models.Session
	products          []*models.Product
	investments       []*models.Investment
	summary           models.PortfolioSummary
	productsSource    common.Source
	investmentsSource common.Source
	refreshedAt       time.Time
}

// Dashboard holds one session's in-memory state. Mutations are serialised
// and each is applied as a single swap, then mirrored to the state store.
type Dashboard struct {
	catalog   interfaces.CatalogService
	repo      interfaces.InvestmentRepository
	ledger    interfaces.LedgerService
	lifecycle interfaces.LifecycleService
	insights  interfaces.InsightsService
	store     interfaces.StateStore
	logger    *common.Logger
	now       func() time.Time

	opMu sync.Mutex // one writer at a time

	mu    sync.RWMutex
	state *dashState

	refreshMu     sync.Mutex
	refreshGen    uint64
	refreshCancel context.CancelFunc
}

// NewDashboard creates a dashboard for session over the app's services.
func NewDashboard(session *models.Session, a *App) *Dashboard {
	return &Dashboard{
		catalog:   a.CatalogService,
		repo:      a.InvestmentRepository,
		ledger:    a.LedgerService,
		lifecycle: a.LifecycleService,
		insights:  a.InsightsService,
		store:     a.Store,
		logger:    a.Logger,
		now:       time.Now,
		state:     &dashState{session: session.Clone()},
	}
}

// Snapshot returns a deep copy of the current state.
func (d *Dashboard) Snapshot() *Snapshot {
	d.mu.RLock()
	st := d.state
	d.mu.RUnlock()

	products := make([]*models.Product, 0, len(st.products))
	for _, p := range st.products {
		products = append(products, p.Clone())
	}
	distribution := portfolio.RiskDistribution(st.investments)
	return &Snapshot{
		Session:           st.session.Clone(),
		Products:          products,
		Investments:       models.CloneInvestments(st.investments),
		Summary:           st.summary,
		RiskDistribution:  distribution,
		RiskProfile:       portfolio.ProfileFor(distribution),
		ProductsSource:    st.productsSource,
		InvestmentsSource: st.investmentsSource,
		RefreshedAt:       st.refreshedAt,
	}
}

func (d *Dashboard) current() *dashState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// swap installs next as the new state. next must not be shared.
func (d *Dashboard) swap(next *dashState) {
	next.summary = portfolio.Aggregate(next.investments)
	d.mu.Lock()
	d.state = next
	d.mu.Unlock()
}

// beginRefresh cancels any refresh in flight and returns the new generation.
func (d *Dashboard) beginRefresh(ctx context.Context) (context.Context, uint64) {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()
	if d.refreshCancel != nil {
		d.refreshCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	d.refreshGen++
	d.refreshCancel = cancel
	return ctx, d.refreshGen
}

// finishRefresh releases gen's context unless a newer refresh already did.
func (d *Dashboard) finishRefresh(gen uint64) {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()
	if gen == d.refreshGen && d.refreshCancel != nil {
		d.refreshCancel()
		d.refreshCancel = nil
	}
}

func (d *Dashboard) superseded(gen uint64) bool {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()
	return gen != d.refreshGen
}

// Refresh reloads the catalog and investments and re-aggregates. When the
// investments cannot be fetched the mirrored state is used instead. Offline
// investments from the mirror are kept alongside remote ones. A newer
// Refresh cancels this one and its results are discarded.
func (d *Dashboard) Refresh(ctx context.Context) (*Snapshot, error) {
	ctx, gen := d.beginRefresh(ctx)
	defer d.finishRefresh(gen)

	d.opMu.Lock()
	defer d.opMu.Unlock()

	if d.superseded(gen) {
		return nil, ErrSuperseded
	}

	session := d.current().session

	products := d.catalog.Load(ctx)
	if products.Failed() {
		return nil, d.refreshErr(gen, fmt.Errorf("failed to load products: %w", products.Err()))
	}

	mirror := d.loadMirror(ctx, session.UserID())
	investments := common.Attempt(ctx, func(ctx context.Context) ([]*models.Investment, error) {
		return d.repo.Fetch(ctx, session)
	}).UseFallbackIf(d.logger, "investments", models.IsFallbackEligible, func() []*models.Investment {
		if mirror == nil {
			return nil
		}
		return models.CloneInvestments(mirror.Investments)
	})
	if investments.Failed() {
		return nil, d.refreshErr(gen, investments.Err())
	}

	if d.superseded(gen) {
		return nil, ErrSuperseded
	}

	merged := investments.Value()
	if investments.Source() == common.SourceRemote {
		merged = mergeLocal(merged, mirror.LocalInvestments())
	}

	next := &dashState{
		session:           session,
		products:          products.Value(),
		investments:       merged,
		productsSource:    products.Source(),
		investmentsSource: investments.Source(),
		refreshedAt:       d.now(),
	}
	d.swap(next)
	d.persistPortfolio(ctx, next)

	d.logger.Debug().
		Int("products", len(next.products)).
		Int("investments", len(next.investments)).
		Str("source", string(next.investmentsSource)).
		Msg("Dashboard refreshed")
	return d.Snapshot(), nil
}

// refreshErr reports ErrSuperseded when gen was replaced, else err.
func (d *Dashboard) refreshErr(gen uint64, err error) error {
	if d.superseded(gen) {
		return ErrSuperseded
	}
	return err
}

// mergeLocal appends offline investments the server does not know about.
func mergeLocal(remote, local []*models.Investment) []*models.Investment {
	if len(local) == 0 {
		return remote
	}
	seen := make(map[string]bool, len(remote))
	for _, inv := range remote {
		seen[inv.ID] = true
	}
	for _, inv := range local {
		if !seen[inv.ID] {
			remote = append(remote, inv.Clone())
		}
	}
	return remote
}

// Purchase buys amount of productID. The balance debit and the new
// investment are applied together or not at all.
func (d *Dashboard) Purchase(ctx context.Context, productID string, amount float64) (*models.Investment, error) {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	cur := d.current()
	draft := cur.session.Clone()

	inv, err := d.lifecycle.Purchase(ctx, draft, productID, amount)
	if err != nil {
		return nil, err
	}
	if err := d.ledger.Debit(draft, amount); err != nil {
		return nil, err
	}

	next := cur.clone()
	next.session = draft
	next.investments = append(next.investments, inv.Clone())
	d.swap(next)
	d.persistSession(ctx, draft)
	d.persistPortfolio(ctx, next)

	d.logger.Info().Str("id", inv.ID).Bool("local", inv.Local).Float64("balance", draft.User.Balance).Msg("Purchase applied")
	return inv, nil
}

// Cancel cancels the investment with id, then re-fetches so the aggregates
// reflect the server. Amounts are untouched.
func (d *Dashboard) Cancel(ctx context.Context, id string) (*models.Investment, error) {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	cur := d.current()
	idx := -1
	for i, inv := range cur.investments {
		if inv.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("investment %s: %w", id, models.ErrNotFound)
	}

	updated, err := d.lifecycle.Cancel(ctx, cur.session, cur.investments[idx])
	if err != nil {
		return nil, err
	}

	next := cur.clone()
	next.investments[idx] = updated
	if !updated.Local {
		if fetched, err := d.repo.Fetch(ctx, cur.session); err == nil {
			next.investments = mergeLocal(fetched, localOf(next.investments))
			next.investmentsSource = common.SourceRemote
		} else {
			d.logger.Warn().Err(err).Msg("Re-fetch after cancel failed, keeping local update")
		}
	}
	d.swap(next)
	d.persistPortfolio(ctx, next)
	return updated.Clone(), nil
}

// AddFunds credits the session balance.
func (d *Dashboard) AddFunds(ctx context.Context, amount float64) (float64, error) {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	cur := d.current()
	draft := cur.session.Clone()
	balance, err := d.ledger.AddFunds(draft, amount)
	if err != nil {
		return cur.session.User.Balance, err
	}

	next := cur.clone()
	next.session = draft
	d.swap(next)
	d.persistSession(ctx, draft)
	return balance, nil
}

// Insights analyses the current investments.
func (d *Dashboard) Insights(ctx context.Context) common.Result[*models.Insights] {
	st := d.current()
	return d.insights.Insights(ctx, st.session, models.CloneInvestments(st.investments))
}

// Recommendations returns products suited to the session user.
func (d *Dashboard) Recommendations(ctx context.Context) common.Result[[]*models.Product] {
	return d.catalog.Recommendations(ctx, d.current().session)
}

func (st *dashState) clone() *dashState {
	c := *st
	c.investments = models.CloneInvestments(st.investments)
	return &c
}

func localOf(investments []*models.Investment) []*models.Investment {
	var out []*models.Investment
	for _, inv := range investments {
		if inv.Local {
			out = append(out, inv)
		}
	}
	return out
}

func (d *Dashboard) loadMirror(ctx context.Context, userID string) *models.PortfolioState {
	state, err := d.store.LoadPortfolio(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			d.logger.Warn().Err(err).Msg("Failed to load portfolio mirror")
		}
		return nil
	}
	return state
}

func (d *Dashboard) persistSession(ctx context.Context, session *models.Session) {
	if err := d.store.SaveSession(ctx, session); err != nil {
		d.logger.Error().Err(err).Msg("Failed to mirror session")
	}
}

func (d *Dashboard) persistPortfolio(ctx context.Context, st *dashState) {
	state := &models.PortfolioState{
		UserID:      st.session.UserID(),
		Investments: models.CloneInvestments(st.investments),
		UpdatedAt:   d.now(),
	}
	if err := d.store.SavePortfolio(ctx, state); err != nil {
		d.logger.Error().Err(err).Msg("Failed to mirror portfolio")
	}
}

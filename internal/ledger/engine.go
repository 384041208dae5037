// Package ledger computes fridge balances and records settlements.
//
// Nothing is cached: every call reloads the household from its
// storage.HouseholdSource and rebuilds the pairwise ledger.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/fridgeshare/internal/calculator"
	"github.com/mmynk/fridgeshare/internal/clock"
	"github.com/mmynk/fridgeshare/internal/lock"
	"github.com/mmynk/fridgeshare/internal/metrics"
	"github.com/mmynk/fridgeshare/internal/models"
	"github.com/mmynk/fridgeshare/internal/storage"
)

// ErrNotMember is returned when the target user does not belong to the fridge.
var ErrNotMember = errors.New("user is not a member of this fridge")

// Engine wires the calculator to a data source.
type Engine struct {
	source        storage.HouseholdSource
	locker        lock.Locker
	clock         clock.Clock
	ids           clock.IDGenerator
	logger        *slog.Logger
	metrics       *metrics.Metrics
	maxIterations int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocker sets the lock that serializes clears per fridge.
func WithLocker(l lock.Locker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithClock sets the clock used for cleared_at timestamps.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithIDGenerator sets the generator for settlement IDs.
func WithIDGenerator(g clock.IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithLogger sets the logger for integrity warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the collectors the engine reports to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMaxIterations caps the debt simplifier loop.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// NewEngine creates an Engine reading from source.
func NewEngine(source storage.HouseholdSource, opts ...Option) *Engine {
	e := &Engine{
		source:        source,
		locker:        lock.NewLocal(),
		clock:         clock.RealClock{},
		ids:           clock.UUIDGenerator{},
		logger:        slog.Default(),
		maxIterations: calculator.DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot is one consistent load of a fridge plus the ledger built from it.
type Snapshot struct {
	FridgeID    string
	Members     []*models.User
	Purchases   []*models.Purchase
	Settlements []*models.Settlement
	Ledger      *calculator.Ledger
}

// IsMember reports whether userID is a current member.
func (s *Snapshot) IsMember(userID string) bool {
	for _, m := range s.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// ClearResult is the outcome of ClearUserBalance.
type ClearResult struct {
	Report *Report
	// Recorded holds the settlements written by this call.
	Recorded []*models.Settlement
	// AlreadySettled is true when the user had nothing to clear.
	AlreadySettled bool
}

// ComputeLedger loads the fridge and builds its pairwise ledger.
func (e *Engine) ComputeLedger(ctx context.Context, fridgeID string) (*Snapshot, error) {
	start := time.Now()

	members, err := e.source.ListMembers(ctx, fridgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	purchases, err := e.source.ListPurchases(ctx, fridgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	settlements, err := e.source.ListSettlements(ctx, fridgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.ID
	}

	l := calculator.BuildLedger(memberIDs, toLedgerPurchases(purchases), toLedgerSettlements(settlements))
	for _, u := range l.Unapplied {
		e.integrityWarning(metrics.KindUnapplied, "Settlement amount found no outstanding debt",
			"fridge_id", fridgeID,
			"settlement_id", u.ID,
			"from", u.FromUserID,
			"to", u.ToUserID,
			"amount", u.Amount,
		)
	}

	e.metrics.ObserveBuild(time.Since(start).Seconds())

	return &Snapshot{
		FridgeID:    fridgeID,
		Members:     members,
		Purchases:   purchases,
		Settlements: settlements,
		Ledger:      l,
	}, nil
}

// GetBalances returns the balance report for a fridge.
func (e *Engine) GetBalances(ctx context.Context, fridgeID string) (*Report, error) {
	snap, err := e.ComputeLedger(ctx, fridgeID)
	if err != nil {
		return nil, err
	}
	return e.buildReport(snap), nil
}

// ClearUserBalance settles everything userID owes or is owed in the fridge.
// One settlement is written per non-zero pairwise total, in either direction.
// actorID is recorded as the creator of the settlements.
func (e *Engine) ClearUserBalance(ctx context.Context, fridgeID, userID, actorID string) (*ClearResult, error) {
	members, err := e.source.ListMembers(ctx, fridgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	if !containsUser(members, userID) {
		return nil, fmt.Errorf("%w: %s", ErrNotMember, userID)
	}

	unlock, err := e.locker.Lock(ctx, "fridge:"+fridgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock fridge: %w", err)
	}
	defer unlock()

	snap, err := e.ComputeLedger(ctx, fridgeID)
	if err != nil {
		return nil, err
	}
	// Membership may have changed while waiting for the lock.
	if !snap.IsMember(userID) {
		return nil, fmt.Errorf("%w: %s", ErrNotMember, userID)
	}

	now := e.clock.Now()
	var pending []*models.Settlement
	for _, c := range snap.Ledger.Counterparts(userID) {
		if owed := snap.Ledger.PairTotal(userID, c); !calculator.IsZero(owed) {
			pending = append(pending, e.newSettlement(fridgeID, userID, c, owed, now, actorID))
		}
		if owing := snap.Ledger.PairTotal(c, userID); !calculator.IsZero(owing) {
			pending = append(pending, e.newSettlement(fridgeID, c, userID, owing, now, actorID))
		}
	}

	if len(pending) == 0 {
		e.metrics.NothingToSettle()
		e.logger.Info("Balance already settled", "fridge_id", fridgeID, "user_id", userID)
		return &ClearResult{Report: e.buildReport(snap), AlreadySettled: true}, nil
	}

	if err := e.source.InsertSettlements(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to record settlements: %w", err)
	}
	e.metrics.SettlementsRecorded(len(pending))
	e.logger.Info("Cleared balance",
		"fridge_id", fridgeID,
		"user_id", userID,
		"actor_id", actorID,
		"settlements", len(pending),
	)

	fresh, err := e.ComputeLedger(ctx, fridgeID)
	if err != nil {
		// The write is committed; answer from what we already hold.
		e.logger.Error("Failed to reload ledger after clearing balance, using in-memory ledger",
			"fridge_id", fridgeID,
			"user_id", userID,
			"error", err,
		)
		for _, s := range pending {
			snap.Ledger.Apply(toLedgerSettlement(s))
		}
		snap.Settlements = append(snap.Settlements, pending...)
		fresh = snap
	}

	return &ClearResult{Report: e.buildReport(fresh), Recorded: pending}, nil
}

func (e *Engine) newSettlement(fridgeID, from, to string, amount float64, at time.Time, actorID string) *models.Settlement {
	return &models.Settlement{
		ID:         e.ids.New(),
		FridgeID:   fridgeID,
		FromUserID: from,
		ToUserID:   to,
		Amount:     amount,
		ClearedAt:  at,
		CreatedBy:  actorID,
	}
}

// integrityWarning logs a data problem and counts it. Processing continues.
func (e *Engine) integrityWarning(kind, msg string, args ...any) {
	e.metrics.IntegrityWarning(kind)
	e.logger.Warn(msg, append([]any{"kind", kind}, args...)...)
}

func containsUser(users []*models.User, userID string) bool {
	for _, u := range users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

func toLedgerPurchases(purchases []*models.Purchase) []calculator.PurchaseForLedger {
	out := make([]calculator.PurchaseForLedger, len(purchases))
	for i, p := range purchases {
		out[i] = calculator.PurchaseForLedger{
			ID:          p.ID,
			Title:       p.Title,
			Price:       p.Price,
			PurchaserID: p.AddedBy,
			SharedBy:    p.SharedBy,
			CreatedAt:   p.CreatedAt,
		}
	}
	return out
}

func toLedgerSettlement(s *models.Settlement) calculator.SettlementForLedger {
	return calculator.SettlementForLedger{
		ID:         s.ID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		ClearedAt:  s.ClearedAt,
	}
}

func toLedgerSettlements(settlements []*models.Settlement) []calculator.SettlementForLedger {
	out := make([]calculator.SettlementForLedger, len(settlements))
	for i, s := range settlements {
		out[i] = toLedgerSettlement(s)
	}
	return out
}

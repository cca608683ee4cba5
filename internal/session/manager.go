package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/charmcart-backend/internal/cart"
	"github.com/angelmondragon/charmcart-backend/internal/design"
	"github.com/angelmondragon/charmcart-backend/internal/events"
	"github.com/angelmondragon/charmcart-backend/internal/inventory"
	"github.com/angelmondragon/charmcart-backend/internal/reconcile"
	"github.com/angelmondragon/charmcart-backend/pkg/logger"
	"github.com/angelmondragon/charmcart-backend/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"
)

const defaultIdleTTL = 2 * time.Hour

// AttachFunc subscribes an extra listener to a new session's bus and
// returns its unsubscribe handle.
type AttachFunc func(bus *events.Bus) func()

// Params wires a Manager.
type Params struct {
	Cart    cart.Config
	History design.HistoryConfig
	Oracle  inventory.Oracle
	Gateway cart.PersistenceGateway
	Logger  *logger.Logger
	Metrics *metrics.CartMetrics
	Attach  []AttachFunc
	IdleTTL time.Duration
	Clock   func() time.Time
}

// Manager owns the live sessions of this process.
type Manager struct {
	params  Params
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	opening  singleflight.Group
}

func NewManager(p Params) (*Manager, error) {
	if p.Oracle == nil {
		return nil, fmt.Errorf("inventory oracle required")
	}
	if p.Gateway == nil {
		return nil, fmt.Errorf("persistence gateway required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	idle := p.IdleTTL
	if idle <= 0 {
		idle = defaultIdleTTL
	}
	clock := p.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		params:   p,
		idleTTL:  idle,
		now:      clock,
		sessions: map[string]*Session{},
	}, nil
}

// Open returns the live session for id, restoring its guest cart from the
// store when it is not in memory. An empty id starts a new session.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	if s, ok := m.Get(id); ok {
		return s, nil
	}
	v, err, _ := m.opening.Do(id, func() (any, error) {
		if s, ok := m.Get(id); ok {
			return s, nil
		}
		s, err := m.build(ctx, id)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.sessions[id] = s
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Get returns a live session without touching the store.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		s.touch()
	}
	return s, ok
}

func (m *Manager) build(ctx context.Context, id string) (*Session, error) {
	logg := m.params.Logger
	ctx = logg.WithSessionID(ctx, id)

	initial := cart.NewState(id, nil)
	stored, err := m.params.Gateway.Load(ctx, cart.GuestScope(id))
	switch {
	case err != nil:
		logg.Warn(ctx, "guest cart restore failed, starting empty: "+err.Error())
	case stored != nil:
		initial = stored.Clone()
		initial.SessionID = id
		initial.IdentityID = nil
	}

	engine, err := cart.NewEngine(cart.Params{
		Config:  m.params.Cart,
		Oracle:  m.params.Oracle,
		Gateway: m.params.Gateway,
		Logger:  logg,
		Metrics: m.params.Metrics,
		Initial: initial,
		Clock:   m.now,
	})
	if err != nil {
		return nil, err
	}
	hist := design.NewHistoryStack(m.params.History)
	coord, err := reconcile.NewCoordinator(reconcile.Params{
		Engine:        engine,
		History:       hist,
		Oracle:        m.params.Oracle,
		DesignBaseFee: engine.Config().DesignBaseFee,
		Logger:        logg,
	})
	if err != nil {
		return nil, err
	}
	coord.Attach(engine.Bus())

	s := &Session{
		id:      id,
		engine:  engine,
		history: hist,
		coord:   coord,
		gateway: m.params.Gateway,
		logg:    logg,
		now:     m.now,
	}
	for _, attach := range m.params.Attach {
		s.detach = append(s.detach, attach(engine.Bus()))
	}
	s.touch()
	logg.Debug(ctx, "session opened")
	return s, nil
}

// End saves and drops a session. Unknown ids are ignored.
func (m *Manager) End(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Close(ctx)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) snapshot() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// FlushDirty saves every cart whose last background save failed or has
// not finished. It returns how many carts were written.
func (m *Manager) FlushDirty(ctx context.Context) (int, error) {
	var (
		flushed int
		errs    error
	)
	for _, s := range m.snapshot() {
		if ctx.Err() != nil {
			return flushed, multierr.Append(errs, ctx.Err())
		}
		if !s.engine.Dirty() {
			continue
		}
		if err := s.engine.Flush(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", s.id, err))
			continue
		}
		flushed++
	}
	return flushed, errs
}

// EvictIdle ends sessions unused for longer than the idle TTL.
func (m *Manager) EvictIdle(ctx context.Context) (int, error) {
	cutoff := m.now().Add(-m.idleTTL)
	var (
		evicted int
		errs    error
	)
	for _, s := range m.snapshot() {
		if !s.LastSeen().Before(cutoff) {
			continue
		}
		if err := m.End(ctx, s.id); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", s.id, err))
		}
		evicted++
	}
	return evicted, errs
}

// Shutdown ends every live session.
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs error
	for _, s := range m.snapshot() {
		errs = multierr.Append(errs, m.End(ctx, s.id))
	}
	return errs
}

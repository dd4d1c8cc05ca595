// Package viz holds the view state of the network screen: the injected
// category store, the memoized topology and the current probability vector.
package viz

import (
	"math/rand/v2"
	"sync"

	"go.uber.org/zap"

	"github.com/ziadkadry99/netviz/internal/activation"
	"github.com/ziadkadry99/netviz/internal/category"
	"github.com/ziadkadry99/netviz/internal/probability"
	"github.com/ziadkadry99/netviz/internal/topology"
)

// FrameListener receives every new frame.
type FrameListener func(*activation.Frame)

// Session combines topology and encoding for one category store. Category
// changes and probability changes are independent triggers; each produces a
// fresh frame for subscribers.
type Session struct {
	store   *category.Store
	cache   *topology.Cache
	encoder *activation.Encoder
	logger  *zap.Logger

	mu        sync.RWMutex
	probs     probability.Vector
	rng       *rand.Rand
	listeners map[int]FrameListener
	nextID    int

	onHit, onMiss func()
	unsubscribe   func()
}

// Option configures a Session.
type Option func(*Session)

// WithLayout overrides the default canvas layout.
func WithLayout(l topology.Layout) Option {
	return func(s *Session) { s.cache = topology.NewCache(l) }
}

// WithStyle overrides the default encoding style.
func WithStyle(st activation.Style) Option {
	return func(s *Session) { s.encoder = &activation.Encoder{Style: st} }
}

// WithRand sets the source used by Simulate.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithCacheHooks registers topology cache hit/miss callbacks.
func WithCacheHooks(onHit, onMiss func()) Option {
	return func(s *Session) { s.onHit, s.onMiss = onHit, onMiss }
}

// NewSession creates a session bound to store. The probability vector starts
// uniform over the current categories.
func NewSession(store *category.Store, opts ...Option) *Session {
	s := &Session{
		store:     store,
		cache:     topology.NewCache(topology.DefaultLayout()),
		encoder:   activation.NewEncoder(),
		logger:    zap.NewNop(),
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		listeners: make(map[int]FrameListener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache.OnHit, s.cache.OnMiss = s.onHit, s.onMiss
	s.probs = probability.Uniform(len(store.Get()))
	s.unsubscribe = store.Subscribe(func(version uint64, cats []category.Category) {
		s.logger.Debug("categories changed", zap.Uint64("version", version), zap.Int("count", len(cats)))
		s.publish()
	})
	return s
}

// Close detaches the session from its store.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Store returns the category store the session reads from.
func (s *Session) Store() *category.Store { return s.store }

// Topology returns the topology for the current category list.
func (s *Session) Topology() *topology.Topology {
	cats, version := s.store.Snapshot()
	return s.cache.Get(version, cats)
}

// Frame returns the current diagram state.
func (s *Session) Frame() *activation.Frame {
	cats, version := s.store.Snapshot()
	topo := s.cache.Get(version, cats)
	s.mu.RLock()
	probs := s.probs
	s.mu.RUnlock()
	return s.encoder.Encode(topo, probs, cats)
}

// Probabilities returns a copy of the current vector.
func (s *Session) Probabilities() probability.Vector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(probability.Vector(nil), s.probs...)
}

// SetProbabilities replaces the vector wholesale.
func (s *Session) SetProbabilities(v probability.Vector) *activation.Frame {
	s.mu.Lock()
	s.probs = append(probability.Vector(nil), v...)
	s.mu.Unlock()
	return s.publish()
}

// Simulate replaces the vector with random normalized values, one per
// category.
func (s *Session) Simulate() *activation.Frame {
	n := len(s.store.Get())
	s.mu.Lock()
	s.probs = probability.Simulate(s.rng, n)
	s.mu.Unlock()
	return s.publish()
}

// ApplyPrediction merges a label-keyed probability map into a vector aligned
// with the current categories and applies it. A nil map means the response
// carried no probabilities; the current state is kept and returned.
func (s *Session) ApplyPrediction(m map[string]float64) *activation.Frame {
	if m == nil {
		return s.Frame()
	}
	return s.SetProbabilities(probability.FromMap(m, s.store.Get()))
}

// Subscribe registers l for new frames and returns a function removing it.
func (s *Session) Subscribe(l FrameListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) publish() *activation.Frame {
	frame := s.Frame()
	s.mu.RLock()
	listeners := make([]FrameListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()
	for _, l := range listeners {
		l(frame)
	}
	return frame
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/saint2706/Games-sub001/server/agent"
	"github.com/saint2706/Games-sub001/server/engine"
	"github.com/saint2706/Games-sub001/server/equity"
	"github.com/saint2706/Games-sub001/server/opponent"
	"github.com/saint2706/Games-sub001/server/store"
	"github.com/saint2706/Games-sub001/server/strategy"
)

// session is the opponent memory of one match. Decisions within a match are
// serialised on mu.
type session struct {
	mu    sync.Mutex
	model *opponent.Model
}

type Server struct {
	reg     *strategy.Registry
	db      *store.DB // nil disables the persistence routes
	workers int

	mu       sync.Mutex
	seeds    *engine.SeedStream
	sessions map[string]*session
}

func NewServer(reg *strategy.Registry, db *store.DB, workers int, seed uint64) *Server {
	return &Server{
		reg:      reg,
		db:       db,
		workers:  workers,
		seeds:    engine.NewSeedStream(seed),
		sessions: map[string]*session{},
	}
}

func (s *Server) nextSeed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seeds.NextInt64()
}

func (s *Server) session(matchID string, create bool) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[matchID]
	if !ok && create {
		ss = &session{model: opponent.NewModel(opponent.DefaultCapacity)}
		s.sessions[matchID] = ss
	}
	return ss
}

func (s *Server) dropSession(matchID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[matchID]
	delete(s.sessions, matchID)
	return ok
}

func Router(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/profiles", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"rows": s.reg.All()})
		})
		r.Post("/decide", s.handleDecide)
		r.Post("/equity", s.handleEquity)

		r.Route("/matches/{id}", func(r chi.Router) {
			r.Get("/session", s.handleSession)
			r.Delete("/session", func(w http.ResponseWriter, r *http.Request) {
				if !s.dropSession(chi.URLParam(r, "id")) {
					http.Error(w, "no such session", http.StatusNotFound)
					return
				}
				w.WriteHeader(http.StatusNoContent)
			})
			r.Post("/observe", s.handleObserve)

			r.With(s.needDB).Get("/", s.handleMatch)
			r.With(s.needDB).Get("/decisions", s.handleDecisions)
		})
		r.With(s.needDB).Get("/matches", s.handleMatches)
		r.With(s.needDB).Get("/leaderboard", s.handleLeaderboard)
	})
	return r
}

func (s *Server) needDB(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.db == nil {
			http.Error(w, "database not configured", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"ok": true, "db": s.db != nil}
	if s.db != nil {
		ctx, cancel := withTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			out["ok"] = false
			out["db_error"] = err.Error()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(out)
			return
		}
	}
	writeJSON(w, out)
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	var obs agent.Observation
	if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	prof, err := s.reg.Get(obs.Profile)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sit, err := obs.Situation()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var model *opponent.Profile
	if obs.MatchID != "" && obs.Opponent != "" {
		ss := s.session(obs.MatchID, true)
		ss.mu.Lock()
		defer ss.mu.Unlock()
		model = ss.model.Profile(obs.Opponent)
	}

	sel := strategy.NewSelectorRand(prof, rand.New(rand.NewSource(s.nextSeed())))
	sel.Workers = s.workers
	d, err := sel.Choose(sit, model)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, strategy.ErrNoLegalActions) || errors.Is(err, strategy.ErrMissingPayload) ||
			errors.Is(err, engine.ErrTerminalPosition) || errors.Is(err, equity.ErrDuplicateCard) ||
			errors.Is(err, equity.ErrInsufficientDeck) || errors.Is(err, equity.ErrBadSpot) {
			code = http.StatusBadRequest
		}
		http.Error(w, err.Error(), code)
		return
	}
	out := agent.NewActionOut(d)
	if err := agent.Validate(sit, out); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, out)
}

type equityReq struct {
	Hole      []string `json:"hole_cards"`
	Board     []string `json:"community"`
	Dead      []string `json:"dead"`
	Opponents int      `json:"opponents"`
	Trials    int      `json:"trials"`
	Seed      *int64   `json:"seed,omitempty"`
	Exact     bool     `json:"exact,omitempty"`
}

const maxTrials = 200000

func (s *Server) handleEquity(w http.ResponseWriter, r *http.Request) {
	var req equityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	var spot equity.Spot
	var err error
	if spot.Hole, err = engine.ParseCards(req.Hole); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if spot.Board, err = engine.ParseCards(req.Board); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if spot.Dead, err = engine.ParseCards(req.Dead); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	spot.Opponents = req.Opponents
	if spot.Opponents < 1 {
		spot.Opponents = 1
	}
	trials := req.Trials
	if trials <= 0 {
		trials = 10000
	}
	if trials > maxTrials {
		trials = maxTrials
	}
	seed := s.nextSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	ctx, cancel := withTimeout(r.Context(), 10*time.Second)
	defer cancel()
	var res equity.Result
	switch {
	case req.Exact:
		res, err = equity.Exact(spot)
	case s.workers > 1:
		res, err = equity.EstimateParallel(ctx, spot, trials, s.workers, seed)
	default:
		res, err = equity.Estimate(spot, trials, rand.New(rand.NewSource(seed)))
	}
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, context.DeadlineExceeded) {
			code = http.StatusGatewayTimeout
		}
		http.Error(w, err.Error(), code)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ss := s.session(chi.URLParam(r, "id"), false)
	if ss == nil {
		http.Error(w, "no such session", http.StatusNotFound)
		return
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	writeJSON(w, map[string]any{"rows": ss.model.Snapshots()})
}

type observeReq struct {
	Opponent string `json:"opponent"`
	Category string `json:"category"`
}

func (s *Server) handleObserve(w http.ResponseWriter, r *http.Request) {
	var req observeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	c, err := opponent.ParseCategory(req.Category)
	if err != nil || req.Opponent == "" {
		http.Error(w, "need opponent and a known category", http.StatusBadRequest)
		return
	}
	ss := s.session(chi.URLParam(r, "id"), true)
	ss.mu.Lock()
	defer ss.mu.Unlock()
	writeJSON(w, ss.model.Observe(req.Opponent, c).Snapshot())
}

func matchID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "bad match id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.db.ListMatches(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if rows == nil {
		rows = []store.Match{}
	}
	writeJSON(w, map[string]any{"rows": rows})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(w, r)
	if !ok {
		return
	}
	m, err := s.db.GetMatch(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if m == nil {
		http.Error(w, "no such match", http.StatusNotFound)
		return
	}
	acc, err := s.db.MatchJudgeAccuracy(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, map[string]any{"match": m, "judge": acc})
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	id, ok := matchID(w, r)
	if !ok {
		return
	}
	rows, err := s.db.ListDecisions(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if rows == nil {
		rows = []store.Decision{}
	}
	writeJSON(w, map[string]any{"rows": rows})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Leaderboard(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if rows == nil {
		rows = []store.LeaderRow{}
	}
	writeJSON(w, map[string]any{"rows": rows})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

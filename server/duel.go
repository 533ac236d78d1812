package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/saint2706/Games-sub001/server/agent"
	"github.com/saint2706/Games-sub001/server/config"
	"github.com/saint2706/Games-sub001/server/engine"
	"github.com/saint2706/Games-sub001/server/judge"
	"github.com/saint2706/Games-sub001/server/opponent"
	"github.com/saint2706/Games-sub001/server/rating"
	"github.com/saint2706/Games-sub001/server/store"
	"github.com/saint2706/Games-sub001/server/strategy"
)

// side is one duellist. Model is what this side has learned about the other.
type side struct {
	Label     string
	Prof      strategy.Profile
	Sel       *strategy.Selector
	Model     *opponent.Model
	Rec       rating.Record
	Mix       map[strategy.Kind]int
	ProfileID int64
}

func newSide(label string, p strategy.Profile, seed int64, workers int) *side {
	sel := strategy.NewSelector(p, seed)
	sel.Workers = workers
	if debugState {
		sel.Logger = log.New(log.Writer(), "["+label+"] ", log.LstdFlags|log.Lmicroseconds)
	}
	return &side{Label: label, Prof: p, Sel: sel, Model: opponent.NewModel(opponent.DefaultCapacity), Mix: map[strategy.Kind]int{}}
}

// outcome of one game from the seats' point of view. Seat 0 moves first
// (small blind in hold'em).
type outcome struct {
	Winner int // seat index, -1 for a draw
	Chips  int // hold'em: seat 0's net chips
	Pot    int
}

type duel struct {
	game    string
	cfg     config.Settings
	db      *store.DB
	matchID int64
	index   int // 1-based game number being played
}

// decide asks actor for a move and logs it. rec carries the game-specific
// columns (street, cards) for persistence.
func (m *duel) decide(actor, other *side, sit strategy.Situation, rec store.Decision) (strategy.Decision, error) {
	d, err := actor.Sel.Choose(sit, actor.Model.Profile(other.Label))
	if err != nil {
		return d, fmt.Errorf("%s (%s): %w", actor.Label, actor.Prof.Name, err)
	}
	actor.Mix[d.Action.Kind]++
	if debugState {
		tag := ""
		if d.Mistake {
			tag = warn(" [mistake]")
		}
		fmt.Printf("  %s %s%s %s\n", bold(actor.Label), d.Action, tag, dim(d.Explanation))
	}
	if m.db != nil && m.matchID != 0 {
		rec.MatchID = m.matchID
		rec.GameIndex = m.index
		rec.ActorLabel = actor.Label
		rec.Profile = actor.Prof.Name
		rec.Algorithm = d.Algorithm.String()
		rec.Action = d.Action
		rec.Explanation = d.Explanation
		rec.Mistake = d.Mistake
		switch d.Algorithm {
		case strategy.MonteCarlo:
			eq := d.Equity
			rec.Equity = &eq
		case strategy.Minimax:
			sc := d.Score
			rec.Score = &sc
		}
		if _, err := m.db.InsertDecision(context.Background(), rec); err != nil {
			log.Printf("InsertDecision failed: %v", err)
		}
	}
	return d, nil
}

func (m *duel) playBoard(pos engine.Position, seats [2]*side) (outcome, error) {
	for !pos.Terminal() {
		me := pos.ToMove()
		sit := strategy.Situation{Algorithm: strategy.Minimax, Board: pos, Legal: strategy.PositionActions(pos)}
		d, err := m.decide(seats[me], seats[1-me], sit, store.Decision{})
		if err != nil {
			return outcome{}, err
		}
		if _, err := pos.Play(engine.Move(d.Action.Cell)); err != nil {
			return outcome{}, err
		}
	}
	return outcome{Winner: pos.Winner()}, nil
}

// randomHeaps deals three to five heaps of one to seven counters.
func randomHeaps(rng *rand.Rand) []uint {
	heaps := make([]uint, 3+rng.Intn(3))
	for i := range heaps {
		heaps[i] = uint(1 + rng.Intn(7))
	}
	return heaps
}

// playNim plays to the last counter: the taker wins normal play and loses
// misère play.
func (m *duel) playNim(heaps []uint, misere bool, seats [2]*side) (outcome, error) {
	if debugState {
		fmt.Printf("  heaps %v misère=%v\n", heaps, misere)
	}
	me := 0
	for {
		sit := strategy.Situation{Algorithm: strategy.NimSum, Heaps: heaps, Misere: misere, Legal: strategy.HeapActions(heaps)}
		d, err := m.decide(seats[me], seats[1-me], sit, store.Decision{})
		if err != nil {
			return outcome{}, err
		}
		heaps, err = engine.ApplyNim(heaps, engine.NimMove{Heap: d.Action.Heap, Count: uint(d.Action.Count)})
		if err != nil {
			return outcome{}, err
		}
		if empty(heaps) {
			if misere {
				return outcome{Winner: 1 - me}, nil
			}
			return outcome{Winner: me}, nil
		}
		me = 1 - me
	}
}

func empty(heaps []uint) bool {
	for _, h := range heaps {
		if h > 0 {
			return false
		}
	}
	return true
}

var holdemCategory = map[strategy.Kind]opponent.Category{
	strategy.Fold:  opponent.Fold,
	strategy.Check: opponent.Check,
	strategy.Call:  opponent.Call,
	strategy.Raise: opponent.Raise,
}

// playHoldem plays one heads-up hand; seats[0] posts the small blind. Each
// action is also observed by the other side's opponent model.
func (m *duel) playHoldem(id string, deck []engine.Card, seats [2]*side) (outcome, error) {
	cfg := engine.Config{SB: m.cfg.SB, BB: m.cfg.BB, StartStack: m.cfg.StartStack}
	h := engine.NewHand(id, cfg, deck)
	bySeat := map[engine.Seat]int{engine.SB: 0, engine.BB: 1}

	for !h.Done() {
		if h.RoundDone() {
			h.NextStreet()
			continue
		}
		seat := h.ToAct
		me := bySeat[seat]
		obs := agent.BuildObservation(h, seat)
		sit, err := obs.Situation()
		if err != nil {
			return outcome{}, err
		}
		rec := store.Decision{Street: h.Street, Pot: h.Pot, ToCall: obs.ToCall, BigBlind: h.Cfg.BB,
			Board: obs.Community, Hole: obs.HoleCards}
		d, err := m.decide(seats[me], seats[1-me], sit, rec)
		if err != nil {
			return outcome{}, err
		}
		if err := h.Apply(engine.ActionKind(d.Action.Kind), d.Action.Amount); err != nil {
			return outcome{}, err
		}
		seats[1-me].Model.Observe(seats[me].Label, holdemCategory[d.Action.Kind])
	}
	if !h.SB.Folded && !h.BB.Folded {
		h.RunOut()
	}
	pot := h.Pot
	netSB, _ := h.Settle(cfg.StartStack, cfg.StartStack)
	o := outcome{Winner: -1, Chips: netSB, Pot: pot}
	switch {
	case netSB > 0:
		o.Winner = 0
	case netSB < 0:
		o.Winner = 1
	}
	if debugState {
		fmt.Printf("  board %s → SB %+d\n", strings.Join(engine.CardsToStrings(h.Board), " "), netSB)
	}
	return o, nil
}

// play runs game number i. A moves first on odd games; hold'em pairs of
// games share a deck with the seats swapped.
func (m *duel) play(i int, a, b *side, seeds []int64) (o outcome, aFirst bool, err error) {
	aFirst = i%2 == 1
	seats := [2]*side{b, a}
	if aFirst {
		seats = [2]*side{a, b}
	}
	seed := seeds[(i-1)/2]
	switch m.game {
	case "tictactoe":
		o, err = m.playBoard(engine.NewTicTacToe(), seats)
	case "connect4":
		o, err = m.playBoard(engine.NewConnectFour(), seats)
	case "holdem":
		o, err = m.playHoldem(fmt.Sprintf("duel-%d", i), engine.NewDeck(seed), seats)
	default:
		rng := rand.New(rand.NewSource(seed))
		o, err = m.playNim(randomHeaps(rng), (i-1)/2%2 == 1, seats)
	}
	return o, aFirst, err
}

func runDuel(ctx context.Context, cfg config.Settings, reg *strategy.Registry, db *store.DB) error {
	section("DUEL")
	pa, err := reg.Get(cfg.ProfileA)
	if err != nil {
		return err
	}
	pb, err := reg.Get(cfg.ProfileB)
	if err != nil {
		return err
	}
	switch cfg.DuelGame {
	case "nim", "tictactoe", "connect4", "holdem":
	default:
		return fmt.Errorf("DUEL_GAME %q: want nim, tictactoe, connect4 or holdem", cfg.DuelGame)
	}
	games := cfg.DuelGames
	if games <= 0 {
		games = 10
	}

	sm := engine.NewSeedStream(cfg.DeckSeed)
	a := newSide("A", pa, sm.NextInt64(), cfg.MCWorkers)
	b := newSide("B", pb, sm.NextInt64(), cfg.MCWorkers)
	seeds := make([]int64, (games+1)/2)
	for i := range seeds {
		seeds[i] = sm.NextInt64()
	}

	elo := rating.NewElo(cfg.EloStart, cfg.EloK)
	gA, gB := rating.NewGlicko2(), rating.NewGlicko2()
	var scores []float64

	log.Printf("Duel %s: A=%s vs B=%s, %d games, seed base %d", cfg.DuelGame, pa.Name, pb.Name, games, cfg.DeckSeed)
	fmt.Println(dim("Ctrl+C → stop after the current game."))

	m := &duel{game: cfg.DuelGame, cfg: cfg, db: db}

	// ---- DB: register profiles, seed ratings, create match
	if db != nil {
		m.setupDB(a, b, &elo, gA, gB, games)
	}

	for i := 1; i <= games; i++ {
		if ctx.Err() != nil || stopFlag.Load() {
			fmt.Println(warn("Stop requested; ending match after previous game."))
			break
		}
		m.index = i
		if debugState {
			sub(fmt.Sprintf("Game %d", i))
		}
		o, aFirst, err := m.play(i, a, b, seeds)
		if err != nil {
			return fmt.Errorf("game %d: %w", i, err)
		}

		sa, sG, chipsA := scoreGame(m.game, o, aFirst, cfg.StartStack)
		a.Rec.Add(sa, aFirst)
		b.Rec.Add(1-sa, !aFirst)
		scores = append(scores, sa)

		var dA float64
		if m.game == "holdem" {
			dA, _ = elo.UpdateFromChips(chipsA, o.Pot, cfg.BB)
		} else {
			dA, _ = elo.Update(sa)
		}
		oldA, oldB := gA.Copy(), gB.Copy()
		gA.UpdatePair(oldB, sG, rating.DefaultTau)
		gB.UpdatePair(oldA, 1-sG, rating.DefaultTau)

		result := good("A wins")
		switch sa {
		case 0:
			result = bad("B wins")
		case 0.5:
			result = dim("draw")
		}
		fmt.Printf("%s game %d/%d %s → Elo A:%.1f (%+.1f) B:%.1f | Glicko A:%.0f±%.0f B:%.0f±%.0f\n",
			dim("▶"), i, games, result, elo.A, dA, elo.B, gA.Rating, gA.RD, gB.Rating, gB.RD)

		if db != nil && m.matchID != 0 {
			idx := i
			if err := db.InsertRatingPoint(context.Background(), m.matchID, "after_game", &idx,
				elo.A, elo.B, gA.Rating, gA.RD, gA.Volatility, gB.Rating, gB.RD, gB.Volatility); err != nil {
				log.Printf("InsertRatingPoint(game %d) failed: %v", i, err)
			}
		}
	}

	// ----- summary
	played := a.Rec.Games()
	fmt.Printf("\n%s A(%s) %d-%d-%d B(%s)\n", bold("RESULTS →"), pa.Name, a.Rec.Wins, a.Rec.Draws, a.Rec.Losses, pb.Name)
	fmt.Printf("%s A moving first: %d/%d won | B moving first: %d/%d won\n",
		bold("Seats →"), a.Rec.FirstWins, a.Rec.FirstGames, b.Rec.FirstWins, b.Rec.FirstGames)
	fmt.Printf("%s A:%.1f | B:%.1f (games=%d)\n", bold("Elo final →"), elo.A, elo.B, elo.Games)
	lo, hi := rating.WilsonCI95(a.Rec.Wins, a.Rec.Draws, played)
	fmt.Printf("%s A score 95%% CI=[%.3f, %.3f]\n", bold("CI (Wilson) →"), lo, hi)
	blo, bhi := rating.BootstrapCI95(scores, 1000, rand.New(rand.NewSource(int64(cfg.DeckSeed>>1))))
	fmt.Printf("%s A score mean 95%% CI=[%.3f, %.3f]\n", bold("CI (bootstrap) →"), blo, bhi)
	fmt.Printf("%s A:r=%.1f RD=%.0f | B:r=%.1f RD=%.0f\n", bold("Glicko2 final →"), gA.Rating, gA.RD, gB.Rating, gB.RD)
	printMix(a, b)
	printModels(a, b)

	if db != nil && m.matchID != 0 {
		m.finishDB(a, b, elo, gA, gB, played)
	}
	return nil
}

// scoreGame converts a game outcome to A's point of view: sa is the win/draw/loss
// score, sG the Glicko-2 score (chip margin for hold'em) and chipsA A's net.
func scoreGame(game string, o outcome, aFirst bool, startStack int) (sa, sG float64, chipsA int) {
	aSeat := 1
	if aFirst {
		aSeat = 0
	}
	sa = rating.ScoreFromOutcome(o.Winner == aSeat, o.Winner < 0)
	if game != "holdem" {
		return sa, sa, 0
	}
	chipsA = o.Chips
	if !aFirst {
		chipsA = -chipsA
	}
	return sa, rating.ScoreFromMargin(chipsA, float64(startStack), 1), chipsA
}

// careerGlicko restores a stored rating. A profile with earlier matches has
// sat out at least one period since, so its RD is widened once.
func careerGlicko(r store.Ratings) *rating.Glicko2 {
	g := rating.NewGlicko2With(r.GRating, r.GRD, r.GSigma)
	if r.Matches > 0 {
		g.Age()
	}
	return g
}

func (m *duel) setupDB(a, b *side, elo *rating.Elo, gA, gB *rating.Glicko2, games int) {
	ctx := context.Background()
	var err error
	if a.ProfileID, err = m.db.UpsertProfile(ctx, a.Prof); err != nil {
		log.Printf("UpsertProfile(A) failed: %v (disabling DB this run)", err)
		m.db = nil
		return
	}
	if b.ProfileID, err = m.db.UpsertProfile(ctx, b.Prof); err != nil {
		log.Printf("UpsertProfile(B) failed: %v (disabling DB this run)", err)
		m.db = nil
		return
	}
	// Same-profile duels share one career row, so only seed distinct profiles.
	if a.ProfileID != b.ProfileID {
		ra, errA := m.db.GetOrInitRatings(ctx, a.ProfileID)
		rb, errB := m.db.GetOrInitRatings(ctx, b.ProfileID)
		if errA == nil && errB == nil {
			elo.A, elo.B = ra.Elo, rb.Elo
			*gA = *careerGlicko(ra)
			*gB = *careerGlicko(rb)
			log.Printf("Seeding ratings → A: Elo=%.1f Glicko=%.1f/%.0f | B: Elo=%.1f Glicko=%.1f/%.0f",
				elo.A, gA.Rating, gA.RD, elo.B, gB.Rating, gB.RD)
		}
	}
	id, err := m.db.CreateMatch(ctx, m.game, a.ProfileID, b.ProfileID, games, int64(m.cfg.DeckSeed>>1), m.cfg.EloStart, m.cfg.EloK)
	if err != nil {
		log.Printf("CreateMatch failed: %v (disabling DB this run)", err)
		m.db = nil
		return
	}
	m.matchID = id
	if err := m.db.InsertRatingPoint(ctx, id, "start", nil,
		elo.A, elo.B, gA.Rating, gA.RD, gA.Volatility, gB.Rating, gB.RD, gB.Volatility); err != nil {
		log.Printf("InsertRatingPoint(start) failed: %v", err)
	}
}

func (m *duel) finishDB(a, b *side, elo rating.Elo, gA, gB *rating.Glicko2, played int) {
	ctx := context.Background()
	if err := m.db.InsertRatingPoint(ctx, m.matchID, "end", nil,
		elo.A, elo.B, gA.Rating, gA.RD, gA.Volatility, gB.Rating, gB.RD, gB.Volatility); err != nil {
		log.Printf("InsertRatingPoint(end) failed: %v", err)
	}

	var accA, accB store.JudgeAccuracy
	if m.game == "holdem" {
		if n, err := judge.EvaluateMatch(ctx, m.db, m.matchID); err != nil {
			log.Printf("judge failed for match %d: %v", m.matchID, err)
		} else {
			log.Printf("judge priced %d river decisions for match %d", n, m.matchID)
			if acc, err := m.db.MatchJudgeAccuracy(ctx, m.matchID); err != nil {
				log.Printf("MatchJudgeAccuracy failed for match %d: %v", m.matchID, err)
			} else {
				accA, accB = acc[a.Label], acc[b.Label]
				fmt.Printf("%s A %d/%d (%.0f%%) | B %d/%d (%.0f%%)\n", bold("Judge →"),
					accA.Good, accA.Total, 100*accA.Ratio(), accB.Good, accB.Total, 100*accB.Ratio())
			}
		}
	}

	if a.ProfileID != b.ProfileID {
		if err := m.db.UpdateProfileRatings(ctx, a.ProfileID, elo.A, gA.Rating, gA.RD, gA.Volatility, 1, played, accA.Good, accA.Total); err != nil {
			log.Printf("UpdateProfileRatings(A) failed: %v", err)
		}
		if err := m.db.UpdateProfileRatings(ctx, b.ProfileID, elo.B, gB.Rating, gB.RD, gB.Volatility, 1, played, accB.Good, accB.Total); err != nil {
			log.Printf("UpdateProfileRatings(B) failed: %v", err)
		}
	}
	if err := m.db.CompleteMatch(ctx, m.matchID, a.Rec.Wins, a.Rec.Losses, a.Rec.Draws); err != nil {
		log.Printf("CompleteMatch failed: %v", err)
	} else {
		log.Printf("match %d persisted.", m.matchID)
	}
}

func printMix(a, b *side) {
	fmt.Println()
	fmt.Println(bold("Action mix by side:"))
	for _, s := range []*side{a, b} {
		total := 0
		for _, n := range s.Mix {
			total += n
		}
		var parts []string
		for _, k := range []strategy.Kind{strategy.Place, strategy.Take, strategy.Fold, strategy.Check, strategy.Call, strategy.Raise} {
			if n := s.Mix[k]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s:%d(%.0f%%)", k, n, 100*float64(n)/float64(total)))
			}
		}
		fmt.Printf("  %s (%s) → %s | total:%d\n", s.Label, dim(s.Prof.Name), strings.Join(parts, "  "), total)
	}
}

func printModels(a, b *side) {
	for _, s := range []*side{a, b} {
		for _, snap := range s.Model.Snapshots() {
			if snap.Observations == 0 {
				continue
			}
			fmt.Printf("  %s reads %s: trust %.2f aggression %.2f tightness %.2f over %d actions\n",
				s.Label, snap.Name, snap.Trust, snap.Aggression, snap.Tightness, snap.Observations)
		}
	}
}

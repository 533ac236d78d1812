package store

import (
	"context"
	"embed"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saint2706/Games-sub001/server/strategy"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

/* -----------------------------
   Profiles & ratings
------------------------------*/

// UpsertProfile stores the profile's current configuration and returns its id.
func (db *DB) UpsertProfile(ctx context.Context, p strategy.Profile) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `
        INSERT INTO profiles(name, config)
        VALUES ($1,$2)
        ON CONFLICT (name) DO UPDATE
          SET config = EXCLUDED.config
        RETURNING id
    `, strings.ToLower(p.Name), p).Scan(&id)
	return id, err
}

type Ratings struct {
	Elo        float64 `json:"elo"`
	GRating    float64 `json:"g_rating"`
	GRD        float64 `json:"g_rd"`
	GSigma     float64 `json:"g_sigma"`
	Matches    int     `json:"matches"`
	Games      int     `json:"games"`
	JudgeGood  int     `json:"judge_good"`
	JudgeTotal int     `json:"judge_total"`
}

// GetOrInitRatings ensures a profile_ratings row exists and returns it.
func (db *DB) GetOrInitRatings(ctx context.Context, profileID int64) (Ratings, error) {
	var r Ratings
	if _, err := db.Exec(ctx, `INSERT INTO profile_ratings(profile_id) VALUES ($1) ON CONFLICT (profile_id) DO NOTHING`, profileID); err != nil {
		return r, err
	}
	err := db.QueryRow(ctx, `
		SELECT elo, g_rating, g_rd, g_sigma, matches, games, judge_good, judge_total
		  FROM profile_ratings WHERE profile_id = $1
	`, profileID).Scan(&r.Elo, &r.GRating, &r.GRD, &r.GSigma, &r.Matches, &r.Games, &r.JudgeGood, &r.JudgeTotal)
	return r, err
}

// UpdateProfileRatings persists final ratings and increments career counters.
func (db *DB) UpdateProfileRatings(ctx context.Context, profileID int64, elo, gR, gRD, gSigma float64, matchesInc, gamesInc, judgeGoodInc, judgeTotalInc int) error {
	_, err := db.Exec(ctx, `
		UPDATE profile_ratings
		   SET elo = $2,
		       g_rating = $3,
		       g_rd = $4,
		       g_sigma = $5,
		       matches = matches + $6,
		       games = games + $7,
		       judge_good = judge_good + $8,
		       judge_total = judge_total + $9,
		       updated_at = now()
		 WHERE profile_id = $1
	`, profileID, elo, gR, gRD, gSigma, matchesInc, gamesInc, judgeGoodInc, judgeTotalInc)
	return err
}

type LeaderRow struct {
	Profile string `json:"profile"`
	Ratings
	JudgeAccuracy float64 `json:"judge_accuracy"`
}

// Leaderboard lists every rated profile by Elo, best first.
func (db *DB) Leaderboard(ctx context.Context) ([]LeaderRow, error) {
	rows, err := db.Query(ctx, `
		SELECT p.name, r.elo, r.g_rating, r.g_rd, r.g_sigma, r.matches, r.games, r.judge_good, r.judge_total
		  FROM profile_ratings r
		  JOIN profiles p ON p.id = r.profile_id
		 ORDER BY r.elo DESC, p.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LeaderRow
	for rows.Next() {
		var lr LeaderRow
		r := &lr.Ratings
		if err := rows.Scan(&lr.Profile, &r.Elo, &r.GRating, &r.GRD, &r.GSigma, &r.Matches, &r.Games, &r.JudgeGood, &r.JudgeTotal); err != nil {
			return nil, err
		}
		lr.JudgeAccuracy = JudgeAccuracy{Good: r.JudgeGood, Total: r.JudgeTotal}.Ratio()
		out = append(out, lr)
	}
	return out, rows.Err()
}

/* -----------------------------
   Matches
------------------------------*/

type Match struct {
	ID           int64      `json:"id"`
	Game         string     `json:"game"`
	ProfileA     string     `json:"profile_a"`
	ProfileB     string     `json:"profile_b"`
	Games        int        `json:"games"`
	DeckSeedBase int64      `json:"deck_seed_base"`
	WinsA        int        `json:"wins_a"`
	WinsB        int        `json:"wins_b"`
	Draws        int        `json:"draws"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

// CreateMatch inserts a match row and returns the id.
func (db *DB) CreateMatch(
	ctx context.Context,
	game string,
	profileA, profileB int64,
	games int,
	deckSeedBase int64,
	eloStart, eloK float64,
) (int64, error) {
	var id int64
	err := db.QueryRow(ctx, `
		INSERT INTO matches(game, profile_a_id, profile_b_id, games, deck_seed_base, elo_start, elo_k)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, game, profileA, profileB, games, deckSeedBase, eloStart, eloK).Scan(&id)
	return id, err
}

// Add a rating history point (stage=start|after_game|end).
func (db *DB) InsertRatingPoint(
	ctx context.Context,
	matchID int64,
	stage string,
	gameIndex *int, // nil for start/end
	eloA, eloB float64,
	gAr, gArd, gAsigma float64,
	gBr, gBrd, gBsigma float64,
) error {
	var gi any
	if gameIndex != nil {
		gi = *gameIndex
	}
	_, err := db.Exec(ctx, `
        INSERT INTO rating_history(
            match_id, stage, game_index,
            elo_a, elo_b,
            g_a_rating, g_a_rd, g_a_sigma,
            g_b_rating, g_b_rd, g_b_sigma
        )
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    `, matchID, stage, gi,
		eloA, eloB,
		gAr, gArd, gAsigma,
		gBr, gBrd, gBsigma,
	)
	return err
}

func (db *DB) CompleteMatch(ctx context.Context, matchID int64, winsA, winsB, draws int) error {
	_, err := db.Exec(ctx, `
		UPDATE matches SET ended_at = now(), wins_a = $2, wins_b = $3, draws = $4 WHERE id = $1
	`, matchID, winsA, winsB, draws)
	return err
}

// ListMatches returns the most recent matches first.
func (db *DB) ListMatches(ctx context.Context, limit int) ([]Match, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
		SELECT m.id, m.game, COALESCE(a.name, ''), COALESCE(b.name, ''), m.games, m.deck_seed_base,
		       m.wins_a, m.wins_b, m.draws, m.started_at, m.ended_at
		  FROM matches m
		  LEFT JOIN profiles a ON a.id = m.profile_a_id
		  LEFT JOIN profiles b ON b.id = m.profile_b_id
		 ORDER BY m.id DESC
		 LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Game, &m.ProfileA, &m.ProfileB, &m.Games, &m.DeckSeedBase,
			&m.WinsA, &m.WinsB, &m.Draws, &m.StartedAt, &m.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

/* -----------------------------
   Decisions
------------------------------*/

// Decision is one logged selector decision. Poker fields are zero for other games.
type Decision struct {
	ID          int64           `json:"id"`
	MatchID     int64           `json:"match_id"`
	GameIndex   int             `json:"game_index"`
	ActorLabel  string          `json:"actor"`
	Profile     string          `json:"profile"`
	Algorithm   string          `json:"algorithm"`
	Action      strategy.Action `json:"action"`
	Explanation string          `json:"explanation"`
	Mistake     bool            `json:"mistake"`
	Equity      *float64        `json:"equity,omitempty"`
	Score       *int            `json:"score,omitempty"`
	Street      string          `json:"street,omitempty"`
	Pot         int             `json:"pot,omitempty"`
	ToCall      int             `json:"to_call,omitempty"`
	BigBlind    int             `json:"bb,omitempty"`
	Board       []string        `json:"board,omitempty"`
	Hole        []string        `json:"hole,omitempty"`
}

func (db *DB) InsertDecision(ctx context.Context, d Decision) (int64, error) {
	if d.Board == nil {
		d.Board = []string{}
	}
	if d.Hole == nil {
		d.Hole = []string{}
	}
	var id int64
	err := db.QueryRow(ctx, `
        INSERT INTO decisions(
            match_id, game_index, actor_label, profile, algorithm,
            action_kind, action, explanation, mistake, equity, score,
            street, pot, to_call, big_blind, board, hole
        ) VALUES (
            $1,$2,$3,$4,$5,
            $6,$7,$8,$9,$10,$11,
            $12,$13,$14,$15,$16,$17
        )
        RETURNING id
    `,
		d.MatchID, d.GameIndex, d.ActorLabel, d.Profile, d.Algorithm,
		string(d.Action.Kind), d.Action, d.Explanation, d.Mistake, d.Equity, d.Score,
		d.Street, d.Pot, d.ToCall, d.BigBlind, d.Board, d.Hole,
	).Scan(&id)
	return id, err
}

const decisionCols = `id, match_id, game_index, actor_label, profile, algorithm, action, explanation,
       mistake, equity, score, street, pot, to_call, big_blind, board, hole`

func scanDecisions(rows pgx.Rows) ([]Decision, error) {
	defer rows.Close()
	var out []Decision
	for rows.Next() {
		var d Decision
		if err := rows.Scan(&d.ID, &d.MatchID, &d.GameIndex, &d.ActorLabel, &d.Profile, &d.Algorithm,
			&d.Action, &d.Explanation, &d.Mistake, &d.Equity, &d.Score, &d.Street, &d.Pot, &d.ToCall,
			&d.BigBlind, &d.Board, &d.Hole); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (db *DB) ListDecisions(ctx context.Context, matchID int64) ([]Decision, error) {
	rows, err := db.Query(ctx, `SELECT `+decisionCols+` FROM decisions WHERE match_id = $1 ORDER BY id`, matchID)
	if err != nil {
		return nil, err
	}
	return scanDecisions(rows)
}

// RiverDecisions returns hold'em river decisions the judge can price exactly:
// call or fold facing a bet, check or raise when unopened.
func (db *DB) RiverDecisions(ctx context.Context, matchID int64) ([]Decision, error) {
	rows, err := db.Query(ctx, `
		SELECT `+decisionCols+`
		  FROM decisions
		 WHERE match_id = $1
		   AND street = 'river'
		   AND action_kind IN ('call', 'fold', 'check', 'raise')
		   AND cardinality(board) = 5
		   AND cardinality(hole) = 2
		 ORDER BY id
	`, matchID)
	if err != nil {
		return nil, err
	}
	return scanDecisions(rows)
}

/* -----------------------------
   Judge
------------------------------*/

type DecisionEval struct {
	DecisionID  int64
	Solver      string
	Equity      float64
	BestAction  string
	EVChosen    float64
	EVBest      float64
	EVGapBB     float64
	IsTopAction bool
	ComputeMS   int
}

func (db *DB) InsertDecisionEval(ctx context.Context, e DecisionEval) error {
	_, err := db.Exec(ctx, `
        INSERT INTO decision_eval(
            decision_id, solver, equity, best_action,
            ev_chosen, ev_best, ev_gap_bb, is_top_action, compute_ms
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        ON CONFLICT (decision_id) DO UPDATE SET
            solver = EXCLUDED.solver,
            equity = EXCLUDED.equity,
            best_action = EXCLUDED.best_action,
            ev_chosen = EXCLUDED.ev_chosen,
            ev_best = EXCLUDED.ev_best,
            ev_gap_bb = EXCLUDED.ev_gap_bb,
            is_top_action = EXCLUDED.is_top_action,
            compute_ms = EXCLUDED.compute_ms
    `, e.DecisionID, e.Solver, e.Equity, e.BestAction, e.EVChosen, e.EVBest, e.EVGapBB, e.IsTopAction, e.ComputeMS)
	return err
}

type JudgeAccuracy struct {
	Good  int
	Total int
}

func (ja JudgeAccuracy) Ratio() float64 {
	if ja.Total <= 0 {
		return 0
	}
	return float64(ja.Good) / float64(ja.Total)
}

// MatchJudgeAccuracy tallies judged decisions per actor label.
func (db *DB) MatchJudgeAccuracy(ctx context.Context, matchID int64) (map[string]JudgeAccuracy, error) {
	rows, err := db.Query(ctx, `
                SELECT d.actor_label,
                       SUM(CASE WHEN e.is_top_action THEN 1 ELSE 0 END)::int AS good,
                       COUNT(*)::int AS total
                  FROM decision_eval e
                  JOIN decisions d ON d.id = e.decision_id
                 WHERE d.match_id = $1
                 GROUP BY d.actor_label`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]JudgeAccuracy)
	for rows.Next() {
		var label string
		var good, total int
		if err := rows.Scan(&label, &good, &total); err != nil {
			return nil, err
		}
		out[label] = JudgeAccuracy{Good: good, Total: total}
	}
	return out, rows.Err()
}

// GetMatch returns nil, nil when the match does not exist.
func (db *DB) GetMatch(ctx context.Context, id int64) (*Match, error) {
	var m Match
	err := db.QueryRow(ctx, `
		SELECT m.id, m.game, COALESCE(a.name, ''), COALESCE(b.name, ''), m.games, m.deck_seed_base,
		       m.wins_a, m.wins_b, m.draws, m.started_at, m.ended_at
		  FROM matches m
		  LEFT JOIN profiles a ON a.id = m.profile_a_id
		  LEFT JOIN profiles b ON b.id = m.profile_b_id
		 WHERE m.id = $1
	`, id).Scan(&m.ID, &m.Game, &m.ProfileA, &m.ProfileB, &m.Games, &m.DeckSeedBase,
		&m.WinsA, &m.WinsB, &m.Draws, &m.StartedAt, &m.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

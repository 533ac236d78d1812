package agent

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/saint2706/Games-sub001/server/engine"
	"github.com/saint2706/Games-sub001/server/strategy"
)

func decode(t *testing.T, body string) Observation {
	t.Helper()
	var o Observation
	if err := json.Unmarshal([]byte(body), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return o
}

func TestNimObservationDerivesLegal(t *testing.T) {
	sit, err := decode(t, `{"profile":"expert","game":"nim","heaps":[1,2,3]}`).Situation()
	if err != nil {
		t.Fatalf("Situation: %v", err)
	}
	if sit.Algorithm != strategy.NimSum || len(sit.Legal) != 6 {
		t.Fatalf("unexpected situation %+v", sit)
	}
}

func TestBoardObservations(t *testing.T) {
	sit, err := decode(t, `{"game":"tictactoe","board":"XXO/OO./X.X"}`).Situation()
	if err != nil {
		t.Fatalf("Situation: %v", err)
	}
	if sit.Board == nil || sit.Board.ToMove() != 1 || len(sit.Legal) != 2 {
		t.Fatalf("unexpected tictactoe situation %+v", sit)
	}
	sit, err = decode(t, `{"game":"connect4","moves":"3333"}`).Situation()
	if err != nil {
		t.Fatalf("Situation: %v", err)
	}
	if len(sit.Legal) != engine.C4Cols {
		t.Fatalf("expected all columns open, got %v", sit.Legal)
	}
	if _, err := decode(t, `{"game":"tictactoe","board":"XXX/XX./..."}`).Situation(); !errors.Is(err, ErrBadObservation) {
		t.Fatalf("expected ErrBadObservation, got %v", err)
	}
}

func TestHoldemObservation(t *testing.T) {
	o := decode(t, `{"game":"holdem","hole_cards":["As","Kd"],"community":["2c","7h","Td"],
		"pot":300,"to_call":100,"cur_bet":200,"bb":100,"min_raise_to":300,"max_raise_to":5000}`)
	sit, err := o.Situation()
	if err != nil {
		t.Fatalf("Situation: %v", err)
	}
	if sit.Poker == nil || len(sit.Poker.Board) != 3 || sit.Poker.Opponents != 1 {
		t.Fatalf("unexpected spot %+v", sit.Poker)
	}
	want := []strategy.Action{
		{Kind: strategy.Fold}, {Kind: strategy.Call},
		{Kind: strategy.Raise, Amount: 300}, {Kind: strategy.Raise, Amount: 600}, {Kind: strategy.Raise, Amount: 5000},
	}
	if len(sit.Legal) != len(want) {
		t.Fatalf("legal %v, want %v", sit.Legal, want)
	}
	for i := range want {
		if sit.Legal[i] != want[i] {
			t.Fatalf("legal %v, want %v", sit.Legal, want)
		}
	}
	o.HoleCards = []string{"Zz", "Kd"}
	if _, err := o.Situation(); !errors.Is(err, ErrBadObservation) {
		t.Fatalf("expected ErrBadObservation, got %v", err)
	}
}

func TestClaimObservation(t *testing.T) {
	sit, err := decode(t, `{"game":"claim","hand":[9,9,4],"claim_rank":9,"claim_count":3}`).Situation()
	if err != nil {
		t.Fatalf("Situation: %v", err)
	}
	if sit.Claim.Against == nil || len(sit.Legal) != 2 {
		t.Fatalf("expected a response decision, got %+v", sit)
	}
	sit, err = decode(t, `{"game":"claim","hand":[9,9,4],"target":9}`).Situation()
	if err != nil {
		t.Fatalf("Situation: %v", err)
	}
	if len(sit.Legal) != 3 || !sit.Legal[2].Bluff || sit.Legal[2].Count != 3 {
		t.Fatalf("expected two honest claims and one bluff, got %v", sit.Legal)
	}
}

func TestUnknownGameAndAlgorithm(t *testing.T) {
	if _, err := decode(t, `{"game":"chess"}`).Situation(); !errors.Is(err, ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", err)
	}
	if _, err := decode(t, `{"game":"nim","algorithm":"magic","heaps":[1]}`).Situation(); !errors.Is(err, ErrBadObservation) {
		t.Fatalf("expected ErrBadObservation, got %v", err)
	}
}

func TestBuildObservationFromTable(t *testing.T) {
	h := engine.NewHand("t1", engine.Config{SB: 50, BB: 100, StartStack: 1000}, engine.NewDeck(7))
	o := BuildObservation(h, engine.SB)
	if o.ToCall != 50 || o.Pot != 150 || len(o.HoleCards) != 2 || o.MaxRaiseTo != 1000 {
		t.Fatalf("unexpected observation %+v", o)
	}
	sit, err := o.Situation()
	if err != nil {
		t.Fatalf("Situation: %v", err)
	}
	if len(sit.Legal) != len(strategy.HoldemActions(h)) {
		t.Fatalf("table legal actions should pass through unchanged")
	}
}

func TestValidate(t *testing.T) {
	sit := strategy.Situation{Legal: []strategy.Action{{Kind: strategy.Check}, {Kind: strategy.Raise, Amount: 200}}}
	if err := Validate(sit, ActionOut{Action: strategy.Action{Kind: strategy.Raise, Amount: 200}}); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := Validate(sit, ActionOut{Action: strategy.Action{Kind: strategy.Raise, Amount: 250}}); err == nil {
		t.Fatalf("off-menu raise accepted")
	}
}

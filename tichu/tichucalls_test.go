package tichu

import (
	"errors"
	"testing"
)

func newGrandTichuGame(t *testing.T) *Game {
	t.Helper()
	g, err := newTeamsGame(t).StartGrandTichu("a")
	if err != nil {
		t.Fatalf("start err: %v", err)
	}
	return g
}

func TestCallGrandTichuFlow(t *testing.T) {
	g := newGrandTichuGame(t)
	g, err := g.CallGrandTichu("a", DecisionCall)
	if err != nil {
		t.Fatalf("call err: %v", err)
	}
	if _, err := g.CallGrandTichu("a", DecisionDecline); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("second decision: %v, want ErrAlreadyDecided", err)
	}
	for _, id := range []string{"b", "c"} {
		g, err = g.CallGrandTichu(id, DecisionDecline)
		if err != nil {
			t.Fatalf("decline(%s) err: %v", id, err)
		}
	}
	if g.Stage.Kind() != StageGrandTichu {
		t.Fatalf("stage advanced before all decided: %v", g.Stage.Kind())
	}

	g, err = g.CallGrandTichu("d", DecisionDecline)
	if err != nil {
		t.Fatalf("last decline err: %v", err)
	}
	st, ok := g.Stage.(*TradeStage)
	if !ok {
		t.Fatalf("stage %v, want trade", g.Stage.Kind())
	}
	for _, u := range g.Participants {
		if u.Hand.Count() != HandCount {
			t.Fatalf("%s holds %d cards after final deal", u.UserID, u.Hand.Count())
		}
	}
	if st.GrandTichus["a"] != CallStatusCalled {
		t.Fatalf("a grand status %v", st.GrandTichus["a"])
	}
	if len(st.Trades) != 0 {
		t.Fatalf("trades must start empty")
	}
}

func TestCallSmallTichu(t *testing.T) {
	g := newGrandTichuGame(t)
	g, err := g.CallSmallTichu("b")
	if err != nil {
		t.Fatalf("small call err: %v", err)
	}
	small, _, _ := stageCallMaps(g.Stage)
	if small["b"] != CallStatusCalled {
		t.Fatalf("b small status %v", small["b"])
	}
	if _, err := g.CallSmallTichu("b"); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("second small call: %v, want ErrAlreadyDecided", err)
	}

	// 同一注: 已叫小不能再叫大, 反之亦然
	if _, err := g.CallGrandTichu("b", DecisionCall); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("grand after small: %v, want ErrAlreadyDecided", err)
	}
	g, err = g.CallGrandTichu("c", DecisionCall)
	if err != nil {
		t.Fatalf("grand call err: %v", err)
	}
	if _, err := g.CallSmallTichu("c"); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("small after grand: %v, want ErrAlreadyDecided", err)
	}
	// 拒绝大地主不拦小地主
	g, err = g.CallGrandTichu("d", DecisionDecline)
	if err != nil {
		t.Fatalf("decline err: %v", err)
	}
	if _, err := g.CallSmallTichu("d"); err != nil {
		t.Fatalf("small after declined grand: %v", err)
	}
}

func TestCallSmallTichuAfterFirstPlay(t *testing.T) {
	g := newPlayGame(t, "a", nil)
	g.Participants[0].HasPlayedFirstCard = true
	if _, err := g.CallSmallTichu("a"); !errors.Is(err, ErrWrongStage) {
		t.Fatalf("small call past first play: %v, want ErrWrongStage", err)
	}
	if _, err := g.CallSmallTichu("b"); err != nil {
		t.Fatalf("small call in play stage: %v", err)
	}
}

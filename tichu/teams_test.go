package tichu

import (
	"errors"
	"testing"

	"tichu-lite/card"
)

// newTeamsGame 四人坐齐并分成 a,c 对 b,d
func newTeamsGame(t *testing.T) *Game {
	t.Helper()
	g := newLobbyGame(t, "b", "c", "d")
	var err error
	for _, move := range []struct {
		id   string
		team TeamOption
	}{{"a", TeamOptionA}, {"c", TeamOptionA}, {"b", TeamOptionB}, {"d", TeamOptionB}} {
		g, err = g.MoveToTeam(move.id, move.team)
		if err != nil {
			t.Fatalf("MoveToTeam(%s) err: %v", move.id, err)
		}
	}
	return g
}

func TestMoveToTeamRules(t *testing.T) {
	g := newTeamsGame(t)
	if _, err := g.MoveToTeam("a", TeamOptionA); !errors.Is(err, ErrAlreadyOnTeam) {
		t.Fatalf("same team move: %v, want ErrAlreadyOnTeam", err)
	}
	if _, err := g.MoveToTeam("a", TeamOptionB); !errors.Is(err, ErrTeamFull) {
		t.Fatalf("full team move: %v, want ErrTeamFull", err)
	}

	// 换边会先从原队移除
	g2 := newLobbyGame(t, "b", "c", "d")
	g2, _ = g2.MoveToTeam("a", TeamOptionA)
	g2, err := g2.MoveToTeam("a", TeamOptionB)
	if err != nil {
		t.Fatalf("switch team err: %v", err)
	}
	st := g2.Stage.(*TeamsStage)
	if len(st.Teams[0].UserIDs) != 0 || len(st.Teams[1].UserIDs) != 1 {
		t.Fatalf("switch left stale membership: %+v", st.Teams)
	}
}

func TestRenameTeam(t *testing.T) {
	g := newTeamsGame(t)
	g, err := g.RenameTeam("a", TeamOptionA, "  The Dragons  ")
	if err != nil {
		t.Fatalf("rename err: %v", err)
	}
	if got := g.Stage.(*TeamsStage).Teams[0].Name; got != "The Dragons" {
		t.Fatalf("team name %q", got)
	}
	if _, err := g.RenameTeam("a", TeamOptionB, "Nope"); !errors.Is(err, ErrNotOnTeam) {
		t.Fatalf("rename other team: %v, want ErrNotOnTeam", err)
	}
	if _, err := g.RenameTeam("a", TeamOptionA, "   "); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("blank rename: %v, want ErrInvalidName", err)
	}
}

func TestStartGrandTichuDealsNine(t *testing.T) {
	g := newTeamsGame(t)
	if _, err := g.StartGrandTichu("b"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("non-owner start: %v, want ErrNotOwner", err)
	}
	g, err := g.StartGrandTichu("a")
	if err != nil {
		t.Fatalf("start err: %v", err)
	}
	st, ok := g.Stage.(*GrandTichuStage)
	if !ok {
		t.Fatalf("stage %v, want grand tichu", g.Stage.Kind())
	}
	for _, u := range g.Participants {
		if u.Hand.Count() != FirstDealCount {
			t.Fatalf("%s dealt %d cards, want %d", u.UserID, u.Hand.Count(), FirstDealCount)
		}
	}
	if st.Deck.Count() != TotalCards-MaxParticipants*FirstDealCount {
		t.Fatalf("deck holds %d, want 20", st.Deck.Count())
	}
	for id, s := range st.GrandTichus {
		if s != CallStatusUndecided {
			t.Fatalf("%s grand status %v", id, s)
		}
	}
	assertCardConservation(t, g)
}

func TestStartGrandTichuUnbalanced(t *testing.T) {
	g := newLobbyGame(t, "b", "c", "d")
	g, _ = g.MoveToTeam("a", TeamOptionA)
	g, _ = g.MoveToTeam("b", TeamOptionA)
	g, _ = g.MoveToTeam("c", TeamOptionB)
	// d 未选队
	if _, err := g.StartGrandTichu("a"); !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("unbalanced start: %v, want ErrUnbalanced", err)
	}
}

func TestSkipToPlayDealsFullHands(t *testing.T) {
	g := newTeamsGame(t)
	g, err := g.SkipToPlay("a")
	if err != nil {
		t.Fatalf("skip err: %v", err)
	}
	st, ok := g.Stage.(*PlayStage)
	if !ok {
		t.Fatalf("stage %v, want play", g.Stage.Kind())
	}
	for _, u := range g.Participants {
		if u.Hand.Count() != HandCount {
			t.Fatalf("%s dealt %d cards", u.UserID, u.Hand.Count())
		}
	}
	holder := g.userByID(st.TurnUserID)
	if holder == nil || !holder.Hand.Contains(card.CardMahJong) {
		t.Fatalf("turn %s does not hold the mah jong", st.TurnUserID)
	}
	assertCardConservation(t, g)
}

// assertCardConservation 手牌+墩+桌面+底牌恰好是整副 56 张
func assertCardConservation(t *testing.T, g *Game) {
	t.Helper()
	seen := make(map[card.Card]int, TotalCards)
	add := func(cs card.CardList) {
		for _, c := range cs {
			seen[c]++
		}
	}
	for _, u := range g.Participants {
		add(u.Hand)
		add(u.Tricks)
	}
	switch st := g.Stage.(type) {
	case *GrandTichuStage:
		add(st.Deck)
	case *PlayStage:
		for _, tp := range st.Table {
			add(tp.Combo.Cards)
		}
	}
	if len(seen) != TotalCards {
		t.Fatalf("%d distinct cards in flight, want %d", len(seen), TotalCards)
	}
	for c, n := range seen {
		if n != 1 {
			t.Fatalf("card %s appears %d times", c, n)
		}
	}
}

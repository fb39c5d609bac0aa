package tichu

import (
	"errors"
	"testing"
)

func newLobbyGame(t *testing.T, joiners ...string) *Game {
	t.Helper()
	g, err := NewGame("g1", "code42", "a", "Alice", Config{Seed: 1})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	for _, id := range joiners {
		g, err = g.Join(id, "Player "+id)
		if err != nil {
			t.Fatalf("Join(%s) err: %v", id, err)
		}
	}
	return g
}

func TestNewGameValidation(t *testing.T) {
	if _, err := NewGame("g1", "code", "a", "   ", Config{}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("blank owner name: %v, want ErrInvalidName", err)
	}
	g, err := NewGame("g1", "code42", "a", "  Alice  ", Config{Seed: 1})
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	if g.GameCode != "CODE42" {
		t.Fatalf("game code not folded upper: %s", g.GameCode)
	}
	if len(g.Participants) != 1 || g.Participants[0].DisplayName != "Alice" || g.Participants[0].Role != RoleOwner {
		t.Fatalf("owner not seated: %+v", g.Participants)
	}
	if g.Stage.Kind() != StageLobby {
		t.Fatalf("fresh game stage %v", g.Stage.Kind())
	}
}

func TestJoinFourthAdvancesToTeams(t *testing.T) {
	g := newLobbyGame(t, "b", "c")
	if g.Stage.Kind() != StageLobby {
		t.Fatalf("stage %v after 3 joins", g.Stage.Kind())
	}
	g, err := g.Join("d", "Player d")
	if err != nil {
		t.Fatalf("4th join err: %v", err)
	}
	st, ok := g.Stage.(*TeamsStage)
	if !ok {
		t.Fatalf("stage %v, want teams", g.Stage.Kind())
	}
	if len(st.Teams[0].UserIDs) != 0 || len(st.Teams[1].UserIDs) != 0 {
		t.Fatalf("teams must start empty: %+v", st.Teams)
	}
	if _, err := g.Join("e", "Player e"); !errors.Is(err, ErrWrongStage) {
		t.Fatalf("join after teams: %v, want ErrWrongStage", err)
	}
}

func TestJoinDuplicateUser(t *testing.T) {
	g := newLobbyGame(t, "b")
	if _, err := g.Join("b", "Bob again"); !errors.Is(err, ErrInvalidTargets) {
		t.Fatalf("duplicate join: %v, want ErrInvalidTargets", err)
	}
}

func TestJoinDoesNotMutatePrev(t *testing.T) {
	g := newLobbyGame(t)
	next, err := g.Join("b", "Bob")
	if err != nil {
		t.Fatalf("join err: %v", err)
	}
	if len(g.Participants) != 1 {
		t.Fatalf("prev record mutated: %d participants", len(g.Participants))
	}
	if len(next.Participants) != 2 {
		t.Fatalf("next record wrong: %d participants", len(next.Participants))
	}
}

func TestLeaveReassignsOwner(t *testing.T) {
	g := newLobbyGame(t, "b", "c")
	g, err := g.Leave("a")
	if err != nil {
		t.Fatalf("leave err: %v", err)
	}
	if g.OwnerID != "b" {
		t.Fatalf("owner after leave: %s, want b", g.OwnerID)
	}
	if g.Participants[0].Role != RoleOwner {
		t.Fatalf("new owner role not set")
	}
}

func TestLeaveLastEmptiesGame(t *testing.T) {
	g := newLobbyGame(t)
	g, err := g.Leave("a")
	if err != nil {
		t.Fatalf("leave err: %v", err)
	}
	if len(g.Participants) != 0 || g.OwnerID != "" {
		t.Fatalf("game not emptied: %+v owner=%q", g.Participants, g.OwnerID)
	}
}

func TestLeaveOutsideLobby(t *testing.T) {
	g := newLobbyGame(t, "b", "c", "d")
	if _, err := g.Leave("b"); !errors.Is(err, ErrWrongStage) {
		t.Fatalf("leave in teams: %v, want ErrWrongStage", err)
	}
}

func TestDropDisconnectedShrinksToLobby(t *testing.T) {
	g := newLobbyGame(t, "b", "c", "d")
	g, err := g.DropDisconnected([]string{"a", "c"})
	if err != nil {
		t.Fatalf("drop err: %v", err)
	}
	if g.Stage.Kind() != StageLobby {
		t.Fatalf("stage after drop %v", g.Stage.Kind())
	}
	if len(g.Participants) != 2 {
		t.Fatalf("participants after drop: %v", g.UserIDs())
	}
	if g.OwnerID != "b" {
		t.Fatalf("owner after drop: %s", g.OwnerID)
	}
}

package gateway

import (
	"testing"

	"cosmossdk.io/log"

	"tichu-lite/apps/server/internal/codec"
	"tichu-lite/apps/server/internal/room"
	"tichu-lite/card"
	"tichu-lite/tichu"
)

// The dispatch layer never touches the socket, so handlers can be driven
// directly against an attached conn and asserted on its send queue.

func newGateway(t *testing.T) (*Gateway, *room.Manager) {
	t.Helper()
	m := room.NewManager(log.NewNopLogger(), tichu.Config{Seed: 1})
	return New(log.NewNopLogger(), m), m
}

func drain(t *testing.T, c *room.Conn) []codec.STC {
	t.Helper()
	var out []codec.STC
	for {
		select {
		case frame := <-c.Send:
			m, err := codec.DecodeSTC(frame)
			if err != nil {
				t.Fatalf("queued frame does not decode: %v", err)
			}
			out = append(out, m)
		default:
			return out
		}
	}
}

func attachFour(t *testing.T, m *room.Manager) map[string]*room.Conn {
	t.Helper()
	conns := make(map[string]*room.Conn, 4)
	for _, id := range []string{"a", "b", "c", "d"} {
		conns[id] = m.Attach(id)
	}
	return conns
}

func drainAll(t *testing.T, conns map[string]*room.Conn) {
	t.Helper()
	for _, c := range conns {
		drain(t, c)
	}
}

func TestCreateAndJoinFlow(t *testing.T) {
	gw, m := newGateway(t)
	conns := attachFour(t, m)

	gw.dispatch(conns["a"], codec.CreateGame{DisplayName: "Ada"})
	msgs := drain(t, conns["a"])
	if len(msgs) != 2 {
		t.Fatalf("creator got %d frames, want GameCreated and GameState", len(msgs))
	}
	created, ok := msgs[0].(codec.GameCreated)
	if !ok || created.GameCode == "" {
		t.Fatalf("first frame %#v", msgs[0])
	}
	if state, ok := msgs[1].(codec.GameState); !ok || state.State == nil || state.State.OwnerID != "a" {
		t.Fatalf("second frame %#v", msgs[1])
	}

	for _, id := range []string{"b", "c"} {
		gw.dispatch(conns[id], codec.JoinGameWithGameCode{DisplayName: "P " + id, GameCode: created.GameCode})
	}
	drainAll(t, conns)

	// The fourth join flips the game into team building for everyone.
	gw.dispatch(conns["d"], codec.JoinGameWithGameCode{DisplayName: "P d", GameCode: created.GameCode})
	msgs = drain(t, conns["a"])
	if len(msgs) != 3 {
		t.Fatalf("observer got %d frames, want UserJoined, GameStageChanged, GameState", len(msgs))
	}
	if joined, ok := msgs[0].(codec.UserJoined); !ok || joined.UserID != "d" {
		t.Fatalf("first frame %#v", msgs[0])
	}
	if stage, ok := msgs[1].(codec.GameStageChanged); !ok || stage.Stage.Kind != tichu.StageTeams {
		t.Fatalf("second frame %#v", msgs[1])
	}
}

func TestJoinRandomCreatesAndAnnounces(t *testing.T) {
	gw, m := newGateway(t)
	c := m.Attach("a")
	drain(t, c)
	gw.dispatch(c, codec.JoinRandomGame{DisplayName: "Ada"})
	msgs := drain(t, c)
	if len(msgs) != 2 {
		t.Fatalf("%d frames, want GameCreated and GameState", len(msgs))
	}
	if _, ok := msgs[0].(codec.GameCreated); !ok {
		t.Fatalf("first frame %#v", msgs[0])
	}
}

func TestRejectAnswersUnexpected(t *testing.T) {
	gw, m := newGateway(t)
	c := m.Attach("a")
	drain(t, c)
	gw.dispatch(c, codec.Pass{})
	msgs := drain(t, c)
	if len(msgs) != 1 {
		t.Fatalf("%d frames, want one rejection", len(msgs))
	}
	if _, ok := msgs[0].(codec.UnexpectedMessageReceived); !ok {
		t.Fatalf("frame %#v, want UnexpectedMessageReceived", msgs[0])
	}
}

func TestPingPongAndEcho(t *testing.T) {
	gw, m := newGateway(t)
	c := m.Attach("a")
	drain(t, c)

	gw.dispatch(c, codec.Ping{})
	msgs := drain(t, c)
	if len(msgs) != 1 {
		t.Fatalf("%d frames after Ping", len(msgs))
	}
	if _, ok := msgs[0].(codec.Pong); !ok {
		t.Fatalf("frame %#v, want Pong", msgs[0])
	}

	gw.dispatch(c, codec.Test{Text: "echo me"})
	msgs = drain(t, c)
	if len(msgs) != 1 {
		t.Fatalf("%d frames after Test", len(msgs))
	}
	if echo, ok := msgs[0].(codec.Test); !ok || echo.Text != "echo me" {
		t.Fatalf("frame %#v", msgs[0])
	}
}

// buildTeams drives a filled game through team selection.
func buildTeams(t *testing.T, gw *Gateway, conns map[string]*room.Conn) {
	t.Helper()
	gw.dispatch(conns["a"], codec.CreateGame{DisplayName: "Ada"})
	code := drain(t, conns["a"])[0].(codec.GameCreated).GameCode
	for _, id := range []string{"b", "c", "d"} {
		gw.dispatch(conns[id], codec.JoinGameWithGameCode{DisplayName: "P " + id, GameCode: code})
	}
	gw.dispatch(conns["a"], codec.MoveToTeam{Team: tichu.TeamOptionA})
	gw.dispatch(conns["b"], codec.MoveToTeam{Team: tichu.TeamOptionA})
	gw.dispatch(conns["c"], codec.MoveToTeam{Team: tichu.TeamOptionB})
	gw.dispatch(conns["d"], codec.MoveToTeam{Team: tichu.TeamOptionB})
	drainAll(t, conns)
}

func TestTeamStageEvents(t *testing.T) {
	gw, m := newGateway(t)
	conns := attachFour(t, m)
	buildTeams(t, gw, conns)

	gw.dispatch(conns["c"], codec.RenameTeam{Team: tichu.TeamOptionB, Name: "Dragons"})
	msgs := drain(t, conns["a"])
	if len(msgs) != 2 {
		t.Fatalf("%d frames after rename", len(msgs))
	}
	if renamed, ok := msgs[0].(codec.TeamBRenamed); !ok || renamed.Name != "Dragons" {
		t.Fatalf("first frame %#v", msgs[0])
	}
	drainAll(t, conns)

	gw.dispatch(conns["a"], codec.StartGrandTichu{})
	msgs = drain(t, conns["b"])
	if len(msgs) != 3 {
		t.Fatalf("%d frames after deal, want GameStageChanged, FirstCardsDealt, GameState", len(msgs))
	}
	if stage, ok := msgs[0].(codec.GameStageChanged); !ok || stage.Stage.Kind != tichu.StageGrandTichu {
		t.Fatalf("first frame %#v", msgs[0])
	}
	if _, ok := msgs[1].(codec.FirstCardsDealt); !ok {
		t.Fatalf("second frame %#v", msgs[1])
	}
	state := msgs[2].(codec.GameState)
	for _, pu := range state.State.Participants {
		if pu.UserID == "b" && pu.Hand.Count() != tichu.FirstDealCount {
			t.Fatalf("viewer hand %d cards after the first deal", pu.Hand.Count())
		}
		if pu.UserID != "b" && pu.Hand != nil {
			t.Fatalf("%s's hand leaked to viewer b", pu.UserID)
		}
	}
}

func TestGrandTichuDecisionsOpenTrade(t *testing.T) {
	gw, m := newGateway(t)
	conns := attachFour(t, m)
	buildTeams(t, gw, conns)
	gw.dispatch(conns["a"], codec.StartGrandTichu{})
	drainAll(t, conns)

	for _, id := range []string{"a", "b", "c"} {
		gw.dispatch(conns[id], codec.CallGrandTichu{Decision: tichu.DecisionDecline})
	}
	drainAll(t, conns)

	gw.dispatch(conns["d"], codec.CallGrandTichu{Decision: tichu.DecisionCall})
	msgs := drain(t, conns["a"])
	if len(msgs) != 4 {
		t.Fatalf("%d frames after the final decision", len(msgs))
	}
	if called, ok := msgs[0].(codec.GrandTichuCalled); !ok || called.UserID != "d" || called.Decision != tichu.DecisionCall {
		t.Fatalf("first frame %#v", msgs[0])
	}
	if stage, ok := msgs[1].(codec.GameStageChanged); !ok || stage.Stage.Kind != tichu.StageTrade {
		t.Fatalf("second frame %#v", msgs[1])
	}
	if _, ok := msgs[2].(codec.DealFinalCards); !ok {
		t.Fatalf("third frame %#v", msgs[2])
	}
}

func TestDragonAwardedTo(t *testing.T) {
	dragonTable := []tichu.TablePlay{{
		UserID: "a",
		Combo: tichu.Combo{
			Cards:    card.CardList{card.CardDragon},
			Kind:     tichu.ComboSingle,
			LeadRank: 30,
			Length:   1,
		},
	}}
	prev := &tichu.Game{Stage: &tichu.PlayStage{Table: dragonTable, GiveDragonTo: "b"}}
	resolved := &tichu.Game{Stage: &tichu.PlayStage{}}
	if got := dragonAwardedTo(prev, resolved); got != "b" {
		t.Fatalf("dragonAwardedTo = %q, want b", got)
	}

	// Trick not resolved yet.
	open := &tichu.Game{Stage: &tichu.PlayStage{Table: dragonTable, GiveDragonTo: "b"}}
	if got := dragonAwardedTo(prev, open); got != "" {
		t.Fatalf("unresolved trick reported %q", got)
	}

	// No recipient chosen.
	noPick := &tichu.Game{Stage: &tichu.PlayStage{Table: dragonTable}}
	if got := dragonAwardedTo(noPick, resolved); got != "" {
		t.Fatalf("missing recipient reported %q", got)
	}

	// Ordinary single on top.
	plain := &tichu.Game{Stage: &tichu.PlayStage{
		Table: []tichu.TablePlay{{
			UserID: "a",
			Combo: tichu.Combo{
				Cards:    card.CardList{card.CardStarK},
				Kind:     tichu.ComboSingle,
				LeadRank: 26,
				Length:   1,
			},
		}},
		GiveDragonTo: "b",
	}}
	if got := dragonAwardedTo(plain, resolved); got != "" {
		t.Fatalf("plain single reported %q", got)
	}
}

// Package gateway upgrades WebSocket clients, decodes their frames and
// dispatches them against the room manager. Every handler runs one pure
// game transition and then broadcasts the resulting event frames followed
// by each viewer's GameState snapshot.
package gateway

import (
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/websocket"

	"tichu-lite/apps/server/internal/codec"
	"tichu-lite/apps/server/internal/room"
	"tichu-lite/card"
	"tichu-lite/tichu"
)

const (
	maxFrameBytes = 64 * 1024
	writeTimeout  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// Gateway bridges WebSocket clients and the room manager.
type Gateway struct {
	logger log.Logger
	rooms  *room.Manager
}

func New(logger log.Logger, rooms *room.Manager) *Gateway {
	return &Gateway{logger: logger, rooms: rooms}
}

// HandleWebSocket upgrades the request and runs the read loop. The client
// identifies itself with ?user_id=<token>; the no_id sentinel mints a new
// identity.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("upgrade failed", "err", err)
		return
	}
	conn := g.rooms.Attach(r.URL.Query().Get("user_id"))
	g.logger.Info("client connected", "user_id", conn.UserID, "remote", r.RemoteAddr)

	go g.writePump(ws, conn)
	g.readPump(ws, conn)
}

func (g *Gateway) readPump(ws *websocket.Conn, conn *room.Conn) {
	defer func() {
		g.rooms.Detach(conn)
		ws.Close()
		g.logger.Info("client disconnected", "user_id", conn.UserID)
	}()

	ws.SetReadLimit(maxFrameBytes)
	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				g.logger.Error("read failed", "user_id", conn.UserID, "err", err)
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			g.logger.Info("ignoring non-binary frame", "user_id", conn.UserID, "type", messageType)
			continue
		}
		msg, err := codec.DecodeCTS(data)
		if err != nil {
			g.logger.Info("undecodable frame", "user_id", conn.UserID, "err", err)
			g.reject(conn, err.Error())
			continue
		}
		g.dispatch(conn, msg)
	}
}

// writePump drains the send queue. The protocol-level ping is unused; the
// app-level Ping/Pong pair is the heartbeat.
func (g *Gateway) writePump(ws *websocket.Conn, conn *room.Conn) {
	defer ws.Close()
	for {
		select {
		case frame := <-conn.Send:
			ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				conn.Close()
				return
			}
		case <-conn.Done():
			ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (g *Gateway) dispatch(conn *room.Conn, msg codec.CTS) {
	switch m := msg.(type) {
	case codec.CreateGame:
		g.handleCreate(conn, m.DisplayName)
	case codec.JoinGameWithGameCode:
		g.handleJoinWithCode(conn, m.DisplayName, m.GameCode)
	case codec.JoinRandomGame:
		g.handleJoinRandom(conn, m.DisplayName)
	case codec.LeaveGame:
		g.handleLeave(conn)
	case codec.MoveToTeam:
		g.handleMoveToTeam(conn, m.Team)
	case codec.RenameTeam:
		g.handleRenameTeam(conn, m.Team, m.Name)
	case codec.StartGrandTichu:
		g.handleStartGrandTichu(conn)
	case codec.CallGrandTichu:
		g.handleCallGrandTichu(conn, m.Decision)
	case codec.CallSmallTichu:
		g.handleCallSmallTichu(conn)
	case codec.SubmitTrade:
		g.handleSubmitTrade(conn, m.Trades)
	case codec.PlayCards:
		g.handlePlayCards(conn, m)
	case codec.Pass:
		g.handlePass(conn)
	case codec.GiveDragon:
		g.handleGiveDragon(conn, m.UserID)
	case codec.AdminSkipToPlay:
		g.handleSkipToPlay(conn)
	case codec.Ping:
		g.rooms.SendTo(conn.UserID, codec.EncodeSTC(codec.Pong{}))
	case codec.Pong:
		conn.MarkAlive()
	case codec.Test:
		g.rooms.SendTo(conn.UserID, codec.EncodeSTC(codec.Test{Text: m.Text}))
	default:
		g.reject(conn, "unhandled message")
	}
}

// reject answers a request the current state cannot accept.
func (g *Gateway) reject(conn *room.Conn, debug string) {
	g.rooms.SendTo(conn.UserID, codec.EncodeSTC(codec.UnexpectedMessageReceived{Debug: debug}))
}

func (g *Gateway) handleCreate(conn *room.Conn, displayName string) {
	next, err := g.rooms.CreateGame(conn.UserID, displayName)
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	g.rooms.SendTo(conn.UserID, codec.EncodeSTC(codec.GameCreated{GameID: next.GameID, GameCode: next.GameCode}))
	g.rooms.BroadcastState(next)
}

func (g *Gateway) handleJoinWithCode(conn *room.Conn, displayName, code string) {
	next, err := g.rooms.JoinWithCode(conn.UserID, displayName, code)
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	g.announceJoin(conn, next, false)
}

func (g *Gateway) handleJoinRandom(conn *room.Conn, displayName string) {
	next, err := g.rooms.JoinRandom(conn.UserID, displayName)
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	created := next.OwnerID == conn.UserID && len(next.Participants) == 1
	g.announceJoin(conn, next, created)
}

func (g *Gateway) announceJoin(conn *room.Conn, next *tichu.Game, created bool) {
	if created {
		g.rooms.SendTo(conn.UserID, codec.EncodeSTC(codec.GameCreated{GameID: next.GameID, GameCode: next.GameCode}))
	} else {
		frames := [][]byte{codec.EncodeSTC(codec.UserJoined{UserID: conn.UserID})}
		// The fourth seat flips the lobby into team building.
		if next.Stage.Kind() == tichu.StageTeams {
			frames = append(frames, codec.EncodeSTC(codec.GameStageChanged{Stage: next.PublicStageView()}))
		}
		g.rooms.Broadcast(next, frames...)
	}
	g.rooms.BroadcastState(next)
}

func (g *Gateway) handleLeave(conn *room.Conn) {
	if err := g.rooms.Leave(conn.UserID); err != nil {
		g.reject(conn, err.Error())
		return
	}
	g.rooms.SendTo(conn.UserID, codec.EncodeSTC(codec.GameState{}))
}

func (g *Gateway) handleMoveToTeam(conn *room.Conn, team tichu.TeamOption) {
	next, err := g.rooms.Mutate(conn.UserID, func(prev *tichu.Game) (*tichu.Game, error) {
		return prev.MoveToTeam(conn.UserID, team)
	})
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	moved := codec.EncodeSTC(codec.UserMovedToTeamA{UserID: conn.UserID})
	if team == tichu.TeamOptionB {
		moved = codec.EncodeSTC(codec.UserMovedToTeamB{UserID: conn.UserID})
	}
	g.rooms.Broadcast(next, moved)
	g.rooms.BroadcastState(next)
}

func (g *Gateway) handleRenameTeam(conn *room.Conn, team tichu.TeamOption, name string) {
	next, err := g.rooms.Mutate(conn.UserID, func(prev *tichu.Game) (*tichu.Game, error) {
		return prev.RenameTeam(conn.UserID, team, name)
	})
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	renamed := codec.EncodeSTC(codec.TeamARenamed{Name: name})
	if team == tichu.TeamOptionB {
		renamed = codec.EncodeSTC(codec.TeamBRenamed{Name: name})
	}
	g.rooms.Broadcast(next, renamed)
	g.rooms.BroadcastState(next)
}

func (g *Gateway) handleStartGrandTichu(conn *room.Conn) {
	next, err := g.rooms.Mutate(conn.UserID, func(prev *tichu.Game) (*tichu.Game, error) {
		return prev.StartGrandTichu(conn.UserID)
	})
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	g.rooms.Broadcast(next,
		codec.EncodeSTC(codec.GameStageChanged{Stage: next.PublicStageView()}),
		codec.EncodeSTC(codec.FirstCardsDealt{}),
	)
	g.rooms.BroadcastState(next)
}

func (g *Gateway) handleCallGrandTichu(conn *room.Conn, decision tichu.GrandTichuDecision) {
	next, err := g.rooms.Mutate(conn.UserID, func(prev *tichu.Game) (*tichu.Game, error) {
		return prev.CallGrandTichu(conn.UserID, decision)
	})
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	frames := [][]byte{codec.EncodeSTC(codec.GrandTichuCalled{UserID: conn.UserID, Decision: decision})}
	// The final decision deals the remaining cards and opens the trade.
	if next.Stage.Kind() == tichu.StageTrade {
		frames = append(frames,
			codec.EncodeSTC(codec.GameStageChanged{Stage: next.PublicStageView()}),
			codec.EncodeSTC(codec.DealFinalCards{}),
		)
	}
	g.rooms.Broadcast(next, frames...)
	g.rooms.BroadcastState(next)
}

func (g *Gateway) handleCallSmallTichu(conn *room.Conn) {
	next, err := g.rooms.Mutate(conn.UserID, func(prev *tichu.Game) (*tichu.Game, error) {
		return prev.CallSmallTichu(conn.UserID)
	})
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	g.rooms.Broadcast(next, codec.EncodeSTC(codec.SmallTichuCalled{UserID: conn.UserID}))
	g.rooms.BroadcastState(next)
}

func (g *Gateway) handleSubmitTrade(conn *room.Conn, trades [3]tichu.CardTrade) {
	next, err := g.rooms.Mutate(conn.UserID, func(prev *tichu.Game) (*tichu.Game, error) {
		return prev.SubmitTrade(conn.UserID, trades)
	})
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	frames := [][]byte{codec.EncodeSTC(codec.TradeSubmitted{UserID: conn.UserID})}
	if next.Stage.Kind() == tichu.StagePlay {
		frames = append(frames, codec.EncodeSTC(codec.GameStageChanged{Stage: next.PublicStageView()}))
	}
	g.rooms.Broadcast(next, frames...)
	g.rooms.BroadcastState(next)
}

func (g *Gateway) handlePlayCards(conn *room.Conn, m codec.PlayCards) {
	next, err := g.rooms.Mutate(conn.UserID, func(prev *tichu.Game) (*tichu.Game, error) {
		return prev.PlayCards(conn.UserID, m.Cards, m.WishedFor, m.GiveDragonTo)
	})
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	frames := [][]byte{codec.EncodeSTC(codec.CardsPlayed{})}
	if st, ok := next.Stage.(*tichu.ScoreboardStage); ok {
		ended := codec.EncodeSTC(codec.GameEnded{})
		if st.Final {
			ended = codec.EncodeSTC(codec.GameEndedFinal{})
		}
		frames = append(frames, ended, codec.EncodeSTC(codec.GameStageChanged{Stage: next.PublicStageView()}))
	}
	g.rooms.Broadcast(next, frames...)
	g.rooms.BroadcastState(next)
}

func (g *Gateway) handlePass(conn *room.Conn) {
	var prev *tichu.Game
	next, err := g.rooms.Mutate(conn.UserID, func(cur *tichu.Game) (*tichu.Game, error) {
		prev = cur
		return cur.Pass(conn.UserID)
	})
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	frames := [][]byte{codec.EncodeSTC(codec.UserPassed{UserID: conn.UserID})}
	if recipient := dragonAwardedTo(prev, next); recipient != "" {
		frames = append(frames,
			codec.EncodeSTC(codec.DragonWasWon{}),
			codec.EncodeSTC(codec.PlayerReceivedDragon{UserID: recipient}),
		)
	}
	g.rooms.Broadcast(next, frames...)
	g.rooms.BroadcastState(next)
}

// dragonAwardedTo reports the opponent who received a dragon trick resolved
// by this pass, or "".
func dragonAwardedTo(prev, next *tichu.Game) string {
	before, ok := prev.Stage.(*tichu.PlayStage)
	if !ok || len(before.Table) == 0 || before.GiveDragonTo == "" {
		return ""
	}
	top := before.Table[len(before.Table)-1].Combo
	if top.Kind != tichu.ComboSingle || top.Cards.Count() != 1 || top.Cards[0] != card.CardDragon {
		return ""
	}
	after, ok := next.Stage.(*tichu.PlayStage)
	if !ok || len(after.Table) != 0 {
		return ""
	}
	return before.GiveDragonTo
}

func (g *Gateway) handleGiveDragon(conn *room.Conn, recipientID string) {
	next, err := g.rooms.Mutate(conn.UserID, func(prev *tichu.Game) (*tichu.Game, error) {
		return prev.GiveDragon(conn.UserID, recipientID)
	})
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	g.rooms.BroadcastState(next)
}

func (g *Gateway) handleSkipToPlay(conn *room.Conn) {
	next, err := g.rooms.Mutate(conn.UserID, func(prev *tichu.Game) (*tichu.Game, error) {
		return prev.SkipToPlay(conn.UserID)
	})
	if err != nil {
		g.reject(conn, err.Error())
		return
	}
	g.rooms.Broadcast(next, codec.EncodeSTC(codec.GameStageChanged{Stage: next.PublicStageView()}))
	g.rooms.BroadcastState(next)
}

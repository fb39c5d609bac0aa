package codec

import (
	"tichu-lite/card"
	"tichu-lite/tichu"
)

// CTS is a client-to-server message.
type CTS interface{ isCTS() }

// STC is a server-to-client message.
type STC interface{ isSTC() }

// Client-to-server variants. The wire opcode is the position in this list.

type JoinGameWithGameCode struct {
	UserID      string
	DisplayName string
	GameCode    string
}

type JoinRandomGame struct {
	UserID      string
	DisplayName string
}

type CreateGame struct {
	UserID      string
	DisplayName string
}

type LeaveGame struct{}

type MoveToTeam struct {
	Team tichu.TeamOption
}

type RenameTeam struct {
	Team tichu.TeamOption
	Name string
}

type StartGrandTichu struct{}

type CallGrandTichu struct {
	Decision tichu.GrandTichuDecision
}

type CallSmallTichu struct{}

type SubmitTrade struct {
	Trades [3]tichu.CardTrade
}

type PlayCards struct {
	Cards        []card.Card
	WishedFor    int    // 0 = no wish
	GiveDragonTo string // "" = not set
}

type GiveDragon struct {
	UserID string
}

type Pass struct{}

// Ping, Pong and Test travel in both directions.
type Ping struct{}
type Pong struct{}
type Test struct {
	Text string
}

type AdminSkipToPlay struct{}

func (JoinGameWithGameCode) isCTS() {}
func (JoinRandomGame) isCTS()       {}
func (CreateGame) isCTS()           {}
func (LeaveGame) isCTS()            {}
func (MoveToTeam) isCTS()           {}
func (RenameTeam) isCTS()           {}
func (StartGrandTichu) isCTS()      {}
func (CallGrandTichu) isCTS()       {}
func (CallSmallTichu) isCTS()       {}
func (SubmitTrade) isCTS()          {}
func (PlayCards) isCTS()            {}
func (GiveDragon) isCTS()           {}
func (Pass) isCTS()                 {}
func (Ping) isCTS()                 {}
func (Pong) isCTS()                 {}
func (Test) isCTS()                 {}
func (AdminSkipToPlay) isCTS()      {}

// Server-to-client variants.

type UserIdAssigned struct {
	UserID string
}

type GameCreated struct {
	GameID   string
	GameCode string
}

// GameState carries a per-viewer projection; nil means "no game".
type GameState struct {
	State *tichu.PublicGameState
}

type OwnerReassigned struct {
	UserID string
}

type GameStageChanged struct {
	Stage tichu.PublicStage
}

type TeamARenamed struct {
	Name string
}

type TeamBRenamed struct {
	Name string
}

type UserJoined struct {
	UserID string
}

type UserLeft struct {
	UserID string
}

type UserMovedToTeamA struct {
	UserID string
}

type UserMovedToTeamB struct {
	UserID string
}

type SmallTichuCalled struct {
	UserID string
}

type GrandTichuCalled struct {
	UserID   string
	Decision tichu.GrandTichuDecision
}

type FirstCardsDealt struct{}

type DealFinalCards struct{}

type TradeSubmitted struct {
	UserID string
}

type CardsPlayed struct{}

type UserPassed struct {
	UserID string
}

type DragonWasWon struct{}

type PlayerReceivedDragon struct {
	UserID string
}

type GameEnded struct{}

type GameEndedFinal struct{}

type UnexpectedMessageReceived struct {
	Debug string
}

type UserDisconnected struct {
	UserID string
}

type UserReconnected struct {
	UserID string
}

func (UserIdAssigned) isSTC()            {}
func (GameCreated) isSTC()               {}
func (GameState) isSTC()                 {}
func (OwnerReassigned) isSTC()           {}
func (GameStageChanged) isSTC()          {}
func (TeamARenamed) isSTC()              {}
func (TeamBRenamed) isSTC()              {}
func (UserJoined) isSTC()                {}
func (UserLeft) isSTC()                  {}
func (UserMovedToTeamA) isSTC()          {}
func (UserMovedToTeamB) isSTC()          {}
func (SmallTichuCalled) isSTC()          {}
func (GrandTichuCalled) isSTC()          {}
func (FirstCardsDealt) isSTC()           {}
func (DealFinalCards) isSTC()            {}
func (TradeSubmitted) isSTC()            {}
func (CardsPlayed) isSTC()               {}
func (UserPassed) isSTC()                {}
func (DragonWasWon) isSTC()              {}
func (PlayerReceivedDragon) isSTC()      {}
func (GameEnded) isSTC()                 {}
func (GameEndedFinal) isSTC()            {}
func (Ping) isSTC()                      {}
func (Pong) isSTC()                      {}
func (Test) isSTC()                      {}
func (UnexpectedMessageReceived) isSTC() {}
func (UserDisconnected) isSTC()          {}
func (UserReconnected) isSTC()           {}

package tichu

import "tichu-lite/card"

// TablePlay 桌面上的一手及其出牌者
type TablePlay struct {
	UserID string
	Combo  Combo
}

func (tp TablePlay) clone() TablePlay {
	return TablePlay{UserID: tp.UserID, Combo: tp.Combo.clone()}
}

// Stage 阶段标签联合; 每个阶段只携带本阶段的负载,
// 不可能的状态不可表达
type Stage interface {
	Kind() StageKind
	cloneStage() Stage
}

type LobbyStage struct{}

func (*LobbyStage) Kind() StageKind { return StageLobby }

func (s *LobbyStage) cloneStage() Stage { return &LobbyStage{} }

type TeamsStage struct {
	Teams [2]Team
}

func (*TeamsStage) Kind() StageKind { return StageTeams }

func (s *TeamsStage) cloneStage() Stage {
	return &TeamsStage{Teams: cloneTeams(s.Teams)}
}

type GrandTichuStage struct {
	SmallTichus map[string]TichuCallStatus
	GrandTichus map[string]TichuCallStatus
	Teams       [2]Team
	Deck        card.CardList // 未发的后 5 张×4
}

func (*GrandTichuStage) Kind() StageKind { return StageGrandTichu }

func (s *GrandTichuStage) cloneStage() Stage {
	return &GrandTichuStage{
		SmallTichus: cloneStatusMap(s.SmallTichus),
		GrandTichus: cloneStatusMap(s.GrandTichus),
		Teams:       cloneTeams(s.Teams),
		Deck:        s.Deck.Clone(),
	}
}

type TradeStage struct {
	SmallTichus map[string]TichuCallStatus
	GrandTichus map[string]TichuCallStatus
	Teams       [2]Team
	Trades      map[string]*SubmittedTrade // 按提交者
}

func (*TradeStage) Kind() StageKind { return StageTrade }

func (s *TradeStage) cloneStage() Stage {
	trades := make(map[string]*SubmittedTrade, len(s.Trades))
	for id, tr := range s.Trades {
		cp := *tr
		trades[id] = &cp
	}
	return &TradeStage{
		SmallTichus: cloneStatusMap(s.SmallTichus),
		GrandTichus: cloneStatusMap(s.GrandTichus),
		Teams:       cloneTeams(s.Teams),
		Trades:      trades,
	}
}

type PlayStage struct {
	SmallTichus  map[string]TichuCallStatus
	GrandTichus  map[string]TichuCallStatus
	Teams        [2]Team
	Table        []TablePlay
	TurnUserID   string
	WishedFor    int    // 0 = 无许愿
	GiveDragonTo string // "" = 未指定
	PassesInRow  int
	FinishOrder  []string
}

func (*PlayStage) Kind() StageKind { return StagePlay }

func (s *PlayStage) cloneStage() Stage {
	table := make([]TablePlay, 0, len(s.Table))
	for _, tp := range s.Table {
		table = append(table, tp.clone())
	}
	return &PlayStage{
		SmallTichus:  cloneStatusMap(s.SmallTichus),
		GrandTichus:  cloneStatusMap(s.GrandTichus),
		Teams:        cloneTeams(s.Teams),
		Table:        table,
		TurnUserID:   s.TurnUserID,
		WishedFor:    s.WishedFor,
		GiveDragonTo: s.GiveDragonTo,
		PassesInRow:  s.PassesInRow,
		FinishOrder:  append([]string(nil), s.FinishOrder...),
	}
}

type ScoreboardStage struct {
	SmallTichus map[string]TichuCallStatus
	GrandTichus map[string]TichuCallStatus
	Teams       [2]Team
	Final       bool
}

func (*ScoreboardStage) Kind() StageKind { return StageScoreboard }

func (s *ScoreboardStage) cloneStage() Stage {
	return &ScoreboardStage{
		SmallTichus: cloneStatusMap(s.SmallTichus),
		GrandTichus: cloneStatusMap(s.GrandTichus),
		Teams:       cloneTeams(s.Teams),
		Final:       s.Final,
	}
}

func cloneTeams(teams [2]Team) [2]Team {
	return [2]Team{teams[0].clone(), teams[1].clone()}
}

func cloneStatusMap(m map[string]TichuCallStatus) map[string]TichuCallStatus {
	out := make(map[string]TichuCallStatus, len(m))
	for id, st := range m {
		out[id] = st
	}
	return out
}

func newStatusMap(users []User) map[string]TichuCallStatus {
	out := make(map[string]TichuCallStatus, len(users))
	for _, u := range users {
		out[u.UserID] = CallStatusUndecided
	}
	return out
}

func defaultTeams() [2]Team {
	return [2]Team{{Name: "Team A"}, {Name: "Team B"}}
}

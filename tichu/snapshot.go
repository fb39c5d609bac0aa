package tichu

import (
	"sort"

	"tichu-lite/card"
)

// PublicUser 对外可见的参与者; 手牌只在 viewer 是本人时携带,
// 其余人只公开张数。墩是明牌, 原样给出。
type PublicUser struct {
	UserID             string
	DisplayName        string
	Role               Role
	HandSize           int
	Hand               card.CardList
	Tricks             card.CardList
	HasPlayedFirstCard bool
}

// PublicStage 与 viewer 无关的阶段投影: 底牌不外泄,
// 交换阶段只公开已提交者的集合
type PublicStage struct {
	Kind         StageKind
	Teams        []Team
	SmallTichus  map[string]TichuCallStatus
	GrandTichus  map[string]TichuCallStatus
	TradesBy     []string
	Table        []TablePlay
	TurnUserID   string
	WishedFor    int
	GiveDragonTo string
	FinishOrder  []string
	Final        bool
}

// PublicGameState 发给单个 viewer 的完整投影
type PublicGameState struct {
	GameID       string
	GameCode     string
	OwnerID      string
	Participants []PublicUser
	Stage        PublicStage
}

// PublicStageView 可广播的阶段投影 (GameStageChanged 的负载)
func (g *Game) PublicStageView() PublicStage {
	out := PublicStage{Kind: g.Stage.Kind()}
	switch st := g.Stage.(type) {
	case *TeamsStage:
		out.Teams = publicTeams(st.Teams)
	case *GrandTichuStage:
		out.Teams = publicTeams(st.Teams)
		out.SmallTichus = cloneStatusMap(st.SmallTichus)
		out.GrandTichus = cloneStatusMap(st.GrandTichus)
	case *TradeStage:
		out.Teams = publicTeams(st.Teams)
		out.SmallTichus = cloneStatusMap(st.SmallTichus)
		out.GrandTichus = cloneStatusMap(st.GrandTichus)
		out.TradesBy = make([]string, 0, len(st.Trades))
		for id := range st.Trades {
			out.TradesBy = append(out.TradesBy, id)
		}
		sort.Strings(out.TradesBy)
	case *PlayStage:
		out.Teams = publicTeams(st.Teams)
		out.SmallTichus = cloneStatusMap(st.SmallTichus)
		out.GrandTichus = cloneStatusMap(st.GrandTichus)
		out.Table = make([]TablePlay, 0, len(st.Table))
		for _, tp := range st.Table {
			out.Table = append(out.Table, tp.clone())
		}
		out.TurnUserID = st.TurnUserID
		out.WishedFor = st.WishedFor
		out.GiveDragonTo = st.GiveDragonTo
		out.FinishOrder = append([]string(nil), st.FinishOrder...)
	case *ScoreboardStage:
		out.Teams = publicTeams(st.Teams)
		out.SmallTichus = cloneStatusMap(st.SmallTichus)
		out.GrandTichus = cloneStatusMap(st.GrandTichus)
		out.Final = st.Final
	}
	return out
}

// PublicFor 给指定 viewer 的投影; 除 viewer 本人外所有手牌都被抹去
func (g *Game) PublicFor(viewerID string) PublicGameState {
	out := PublicGameState{
		GameID:   g.GameID,
		GameCode: g.GameCode,
		OwnerID:  g.OwnerID,
		Stage:    g.PublicStageView(),
	}
	out.Participants = make([]PublicUser, 0, len(g.Participants))
	for _, u := range g.Participants {
		pu := PublicUser{
			UserID:             u.UserID,
			DisplayName:        u.DisplayName,
			Role:               u.Role,
			HandSize:           u.Hand.Count(),
			Tricks:             u.Tricks.Clone(),
			HasPlayedFirstCard: u.HasPlayedFirstCard,
		}
		if u.UserID == viewerID {
			pu.Hand = u.Hand.Clone()
		}
		out.Participants = append(out.Participants, pu)
	}
	return out
}

func publicTeams(teams [2]Team) []Team {
	return []Team{teams[0].clone(), teams[1].clone()}
}

package tichu

import (
	"fmt"

	"tichu-lite/card"
)

// MoveToTeam 组队阶段自行选队
func (g *Game) MoveToTeam(userID string, team TeamOption) (*Game, error) {
	st, ok := g.Stage.(*TeamsStage)
	if !ok {
		return nil, fmt.Errorf("move to team during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}
	if g.userIndex(userID) < 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if team != TeamOptionA && team != TeamOptionB {
		return nil, fmt.Errorf("team %d: %w", team, ErrInvalidTargets)
	}
	tgt := int(team)
	if st.Teams[tgt].Contains(userID) {
		return nil, fmt.Errorf("user %s on %s: %w", userID, st.Teams[tgt].Name, ErrAlreadyOnTeam)
	}
	if len(st.Teams[tgt].UserIDs) >= TeamSize {
		return nil, fmt.Errorf("%s: %w", st.Teams[tgt].Name, ErrTeamFull)
	}

	next := g.clone()
	ns := next.Stage.(*TeamsStage)
	other := &ns.Teams[1-tgt]
	for i, id := range other.UserIDs {
		if id == userID {
			other.UserIDs = append(other.UserIDs[:i], other.UserIDs[i+1:]...)
			break
		}
	}
	ns.Teams[tgt].UserIDs = append(ns.Teams[tgt].UserIDs, userID)
	return next, nil
}

// RenameTeam 只能改自己所在队伍的名字
func (g *Game) RenameTeam(userID string, team TeamOption, name string) (*Game, error) {
	st, ok := g.Stage.(*TeamsStage)
	if !ok {
		return nil, fmt.Errorf("rename team during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}
	if g.userIndex(userID) < 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if team != TeamOptionA && team != TeamOptionB {
		return nil, fmt.Errorf("team %d: %w", team, ErrInvalidTargets)
	}
	if !st.Teams[int(team)].Contains(userID) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotOnTeam)
	}
	clean, err := normalizeDisplayName(name)
	if err != nil {
		return nil, err
	}

	next := g.clone()
	next.Stage.(*TeamsStage).Teams[int(team)].Name = clean
	return next, nil
}

// StartGrandTichu 房主开局发牌; 也用于结算后开下一手 (队伍与比分保留)
func (g *Game) StartGrandTichu(userID string) (*Game, error) {
	if userID != g.OwnerID {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotOwner)
	}
	var teams [2]Team
	switch st := g.Stage.(type) {
	case *TeamsStage:
		if len(st.Teams[0].UserIDs) != TeamSize || len(st.Teams[1].UserIDs) != TeamSize {
			return nil, fmt.Errorf("split %d/%d: %w",
				len(st.Teams[0].UserIDs), len(st.Teams[1].UserIDs), ErrUnbalanced)
		}
		teams = st.Teams
	case *ScoreboardStage:
		if st.Final {
			return nil, fmt.Errorf("game is over: %w", ErrWrongStage)
		}
		teams = st.Teams
	default:
		return nil, fmt.Errorf("start during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}

	next := g.clone()
	deck := next.shuffledDeck()
	for i := range next.Participants {
		hand, ok := deck.PopCards(FirstDealCount)
		if !ok {
			panic("deck underflow")
		}
		next.Participants[i].Hand = hand
		next.Participants[i].Tricks = nil
		next.Participants[i].HasPlayedFirstCard = false
	}
	next.Stage = &GrandTichuStage{
		SmallTichus: newStatusMap(next.Participants),
		GrandTichus: newStatusMap(next.Participants),
		Teams:       cloneTeams(teams),
		Deck:        deck,
	}
	return next, nil
}

// SkipToPlay 房主调试用: 直接发满 14 张进入出牌阶段
func (g *Game) SkipToPlay(userID string) (*Game, error) {
	if userID != g.OwnerID {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotOwner)
	}
	st, ok := g.Stage.(*TeamsStage)
	if !ok {
		return nil, fmt.Errorf("skip during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}
	if len(st.Teams[0].UserIDs) != TeamSize || len(st.Teams[1].UserIDs) != TeamSize {
		return nil, fmt.Errorf("split %d/%d: %w",
			len(st.Teams[0].UserIDs), len(st.Teams[1].UserIDs), ErrUnbalanced)
	}

	next := g.clone()
	deck := next.shuffledDeck()
	for i := range next.Participants {
		hand, ok := deck.PopCards(HandCount)
		if !ok {
			panic("deck underflow")
		}
		next.Participants[i].Hand = hand
		next.Participants[i].Tricks = nil
		next.Participants[i].HasPlayedFirstCard = false
	}
	next.Stage = &PlayStage{
		SmallTichus: newStatusMap(next.Participants),
		GrandTichus: newStatusMap(next.Participants),
		Teams:       cloneTeams(st.Teams),
		TurnUserID:  next.mahJongHolder(),
	}
	return next, nil
}

func (g *Game) shuffledDeck() card.CardList {
	var deck card.CardList
	deck.Init(TichuCards)
	deck.Shuffle(g.rng)
	return deck
}

// mahJongHolder 麻雀在谁手里谁先出
func (g *Game) mahJongHolder() string {
	for _, u := range g.Participants {
		if u.Hand.Contains(card.CardMahJong) {
			return u.UserID
		}
	}
	return ""
}

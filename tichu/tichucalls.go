package tichu

import "fmt"

// CallGrandTichu 大地主决定; 四人全部决定后发余下 5 张并进入交换阶段
func (g *Game) CallGrandTichu(userID string, decision GrandTichuDecision) (*Game, error) {
	st, ok := g.Stage.(*GrandTichuStage)
	if !ok {
		return nil, fmt.Errorf("grand tichu during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}
	if g.userIndex(userID) < 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if decision != DecisionCall && decision != DecisionDecline {
		return nil, fmt.Errorf("decision %d: %w", decision, ErrInvalidTargets)
	}
	if st.GrandTichus[userID] != CallStatusUndecided {
		return nil, fmt.Errorf("user %s grand tichu: %w", userID, ErrAlreadyDecided)
	}
	// 大小地主是同一注, 已叫小就不能再叫大
	if decision == DecisionCall && st.SmallTichus[userID] == CallStatusCalled {
		return nil, fmt.Errorf("user %s already called small tichu: %w", userID, ErrAlreadyDecided)
	}

	next := g.clone()
	ns := next.Stage.(*GrandTichuStage)
	if decision == DecisionCall {
		ns.GrandTichus[userID] = CallStatusCalled
	} else {
		ns.GrandTichus[userID] = CallStatusDeclined
	}
	if !allDecided(ns.GrandTichus) {
		return next, nil
	}

	// 发最后 5 张, 进入交换
	for i := range next.Participants {
		more, ok := ns.Deck.PopCards(HandCount - FirstDealCount)
		if !ok {
			panic("deck underflow")
		}
		next.Participants[i].Hand.Add(more...)
	}
	next.Stage = &TradeStage{
		SmallTichus: ns.SmallTichus,
		GrandTichus: ns.GrandTichus,
		Teams:       ns.Teams,
		Trades:      make(map[string]*SubmittedTrade, MaxParticipants),
	}
	return next, nil
}

// CallSmallTichu 小地主: 发牌后、自己第一张牌出手前都可以叫
func (g *Game) CallSmallTichu(userID string) (*Game, error) {
	small, grand, ok := stageCallMaps(g.Stage)
	if !ok {
		return nil, fmt.Errorf("small tichu during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}
	u := g.userByID(userID)
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if u.HasPlayedFirstCard {
		return nil, fmt.Errorf("user %s already played a card: %w", userID, ErrWrongStage)
	}
	if small[userID] != CallStatusUndecided {
		return nil, fmt.Errorf("user %s small tichu: %w", userID, ErrAlreadyDecided)
	}
	if grand[userID] == CallStatusCalled {
		return nil, fmt.Errorf("user %s already called grand tichu: %w", userID, ErrAlreadyDecided)
	}

	next := g.clone()
	nsmall, _, _ := stageCallMaps(next.Stage)
	nsmall[userID] = CallStatusCalled
	return next, nil
}

// stageCallMaps 可以叫牌的三个阶段的状态表
func stageCallMaps(st Stage) (small, grand map[string]TichuCallStatus, ok bool) {
	switch s := st.(type) {
	case *GrandTichuStage:
		return s.SmallTichus, s.GrandTichus, true
	case *TradeStage:
		return s.SmallTichus, s.GrandTichus, true
	case *PlayStage:
		return s.SmallTichus, s.GrandTichus, true
	}
	return nil, nil, false
}

func allDecided(m map[string]TichuCallStatus) bool {
	for _, st := range m {
		if st == CallStatusUndecided {
			return false
		}
	}
	return true
}

package tichu

import (
	"fmt"

	"tichu-lite/card"
)

// SubmitTrade 提交交换: 给其余三人各送一张。第四人提交后同时交换,
// 交换后麻雀持有者领出, 进入出牌阶段。
func (g *Game) SubmitTrade(userID string, trades [3]CardTrade) (*Game, error) {
	st, ok := g.Stage.(*TradeStage)
	if !ok {
		return nil, fmt.Errorf("trade during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}
	u := g.userByID(userID)
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if _, dup := st.Trades[userID]; dup {
		return nil, fmt.Errorf("user %s: %w", userID, ErrAlreadySubmitted)
	}

	seen := make(map[string]bool, 3)
	for _, tr := range trades {
		if g.userIndex(tr.ToUserID) < 0 {
			return nil, fmt.Errorf("recipient %s not in game: %w", tr.ToUserID, ErrInvalidTargets)
		}
		seen[tr.ToUserID] = true
	}
	if len(seen) != 3 || seen[userID] {
		return nil, fmt.Errorf("recipients must be the three other players: %w", ErrInvalidTargets)
	}

	out := []card.Card{trades[0].Card, trades[1].Card, trades[2].Card}
	if out[0] == out[1] || out[0] == out[2] || out[1] == out[2] {
		return nil, fmt.Errorf("card offered twice: %w", ErrCardsNotHeld)
	}
	if !u.Hand.ContainsAll(out) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrCardsNotHeld)
	}

	next := g.clone()
	ns := next.Stage.(*TradeStage)
	ns.Trades[userID] = &SubmittedTrade{Trades: trades}
	if len(ns.Trades) < len(next.Participants) {
		return next, nil
	}

	// 全员已提交: 同时交换 (牌面字节唯一, 先收后送不影响结果)
	for senderID, sub := range ns.Trades {
		sender := next.userByID(senderID)
		for _, tr := range sub.Trades {
			if !sender.Hand.Remove(tr.Card) {
				return nil, ErrInvalidState(fmt.Sprintf("trade card %v missing from %s", tr.Card, senderID))
			}
			next.userByID(tr.ToUserID).Hand.Add(tr.Card)
		}
	}

	next.Stage = &PlayStage{
		SmallTichus: ns.SmallTichus,
		GrandTichus: ns.GrandTichus,
		Teams:       ns.Teams,
		TurnUserID:  next.mahJongHolder(),
	}
	return next, nil
}

package tichu

import (
	"fmt"

	"tichu-lite/card"
)

// PlayCards 出牌。轮到自己时可出任意压得过的牌型; 炸弹可在他人回合
// 炸入未结的墩。狗只能领出并把牌权交给队友。出麻雀可许愿 (2..A),
// 龙单出必须指定送墩的对手。
func (g *Game) PlayCards(userID string, cards []card.Card, wishedFor int, giveDragonTo string) (*Game, error) {
	st, ok := g.Stage.(*PlayStage)
	if !ok {
		return nil, fmt.Errorf("play during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}
	uIdx := g.userIndex(userID)
	if uIdx < 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	u := &g.Participants[uIdx]
	if !u.Hand.ContainsAll(cards) {
		return nil, fmt.Errorf("user %s: %w", userID, ErrCardsNotHeld)
	}
	combo, err := FindCombo(cards)
	if err != nil {
		return nil, err
	}

	onTurn := st.TurnUserID == userID
	if !combo.IsBomb() && !onTurn {
		return nil, fmt.Errorf("turn belongs to %s: %w", st.TurnUserID, ErrNotYourTurn)
	}
	if combo.IsBomb() && !onTurn && len(st.Table) == 0 {
		return nil, fmt.Errorf("bomb needs a live trick: %w", ErrNotYourTurn)
	}

	// 许愿义务只约束按轮次出牌的人
	if onTurn && st.WishedFor != 0 && holdsRank(u.Hand, st.WishedFor) &&
		!combo.ContainsRank(st.WishedFor) && canFulfillWish(u.Hand, st.WishedFor, st.Table) {
		return nil, fmt.Errorf("wish for %d in force: %w", st.WishedFor, ErrMustFulfillWish)
	}

	if combo.isDogSingle() {
		if len(st.Table) != 0 {
			return nil, fmt.Errorf("dog can only lead: %w", ErrDoesNotBeat)
		}
		return g.playDog(uIdx), nil
	}

	if !combo.Beats(st.Table) {
		return nil, fmt.Errorf("%v does not beat the table: %w", combo.Kind, ErrDoesNotBeat)
	}

	if wishedFor != 0 {
		if !combo.Cards.Contains(card.CardMahJong) {
			return nil, fmt.Errorf("wish requires the mah jong: %w", ErrInvalidTargets)
		}
		if wishedFor < 2 || wishedFor > 14 {
			return nil, fmt.Errorf("wish value %d: %w", wishedFor, ErrInvalidTargets)
		}
	}

	if combo.isDragonSingle() {
		if giveDragonTo == "" {
			return nil, ErrMissingDragonRecipient
		}
		if err := validateDragonRecipient(st.Teams, userID, giveDragonTo); err != nil {
			return nil, err
		}
	} else if giveDragonTo != "" {
		return nil, fmt.Errorf("dragon recipient without the dragon: %w", ErrInvalidTargets)
	}

	next := g.clone()
	ns := next.Stage.(*PlayStage)
	nu := &next.Participants[uIdx]
	if !nu.Hand.Remove(cards...) {
		return nil, ErrInvalidState("held cards vanished during play")
	}
	nu.HasPlayedFirstCard = true
	ns.Table = append(ns.Table, TablePlay{UserID: userID, Combo: combo})
	ns.PassesInRow = 0

	if ns.WishedFor != 0 && combo.ContainsRank(ns.WishedFor) {
		ns.WishedFor = 0 // 许愿达成
	}
	if wishedFor != 0 {
		ns.WishedFor = wishedFor
	}
	if combo.isDragonSingle() {
		ns.GiveDragonTo = giveDragonTo
	}

	if nu.Hand.Count() == 0 {
		ns.FinishOrder = append(ns.FinishOrder, userID)
	}

	if next.handOver(ns) {
		return next.settleHand(ns), nil
	}

	nextIdx := next.nextWithCards(uIdx)
	if nextIdx < 0 {
		return nil, ErrInvalidState("no player with cards after a live play")
	}
	ns.TurnUserID = next.Participants[nextIdx].UserID
	return next, nil
}

// playDog 狗: 清桌领出权给队友, 狗本身进自己的墩 (0 分)
func (g *Game) playDog(uIdx int) *Game {
	next := g.clone()
	ns := next.Stage.(*PlayStage)
	nu := &next.Participants[uIdx]
	nu.Hand.Remove(card.CardDog)
	nu.HasPlayedFirstCard = true
	nu.Tricks.Add(card.CardDog)
	ns.PassesInRow = 0

	if nu.Hand.Count() == 0 {
		ns.FinishOrder = append(ns.FinishOrder, nu.UserID)
	}
	if next.handOver(ns) {
		return next.settleHand(ns)
	}

	partner := partnerOf(ns.Teams, nu.UserID)
	pIdx := next.userIndex(partner)
	if pIdx >= 0 && next.Participants[pIdx].Hand.Count() > 0 {
		ns.TurnUserID = partner
	} else {
		// 队友已打完, 顺延到其后第一个有牌的
		ni := next.nextWithCards(pIdx)
		ns.TurnUserID = next.Participants[ni].UserID
	}
	return next
}

// Pass 过牌; 领出不能过, 有许愿义务不能过。其余有牌玩家全部过后本墩
// 结束: 桌面归最后出牌者 (龙单赢墩则送其指定的对手), 赢家领出下一墩。
func (g *Game) Pass(userID string) (*Game, error) {
	st, ok := g.Stage.(*PlayStage)
	if !ok {
		return nil, fmt.Errorf("pass during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}
	uIdx := g.userIndex(userID)
	if uIdx < 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if st.TurnUserID != userID {
		return nil, fmt.Errorf("turn belongs to %s: %w", st.TurnUserID, ErrNotYourTurn)
	}
	if len(st.Table) == 0 {
		return nil, ErrCannotPassOnLead
	}
	u := &g.Participants[uIdx]
	if st.WishedFor != 0 && holdsRank(u.Hand, st.WishedFor) && canFulfillWish(u.Hand, st.WishedFor, st.Table) {
		return nil, fmt.Errorf("wish for %d in force: %w", st.WishedFor, ErrMustFulfillWish)
	}

	next := g.clone()
	ns := next.Stage.(*PlayStage)
	ns.PassesInRow++

	leaderID := ns.Table[len(ns.Table)-1].UserID
	leader := next.userByID(leaderID)
	nextIdx := next.nextWithCards(uIdx)
	if nextIdx < 0 {
		return nil, ErrInvalidState("no player with cards after a pass")
	}

	trickDone := false
	if leader.Hand.Count() > 0 {
		trickDone = next.Participants[nextIdx].UserID == leaderID
	} else {
		// 出完牌的领家等不到自己的轮次, 改为数过牌人数
		trickDone = ns.PassesInRow >= next.playersWithCards()
	}
	if !trickDone {
		ns.TurnUserID = next.Participants[nextIdx].UserID
		return next, nil
	}

	next.awardTrick(ns)
	return next, nil
}

// GiveDragon 改选龙墩的受赠对手; 龙单仍在桌面上赢着才有效
func (g *Game) GiveDragon(userID, recipientID string) (*Game, error) {
	st, ok := g.Stage.(*PlayStage)
	if !ok {
		return nil, fmt.Errorf("give dragon during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}
	if g.userIndex(userID) < 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	if len(st.Table) == 0 {
		return nil, fmt.Errorf("no dragon on the table: %w", ErrInvalidTargets)
	}
	top := st.Table[len(st.Table)-1]
	if !top.Combo.isDragonSingle() || top.UserID != userID {
		return nil, fmt.Errorf("no winning dragon single by %s: %w", userID, ErrInvalidTargets)
	}
	if err := validateDragonRecipient(st.Teams, userID, recipientID); err != nil {
		return nil, err
	}

	next := g.clone()
	next.Stage.(*PlayStage).GiveDragonTo = recipientID
	return next, nil
}

// awardTrick 收墩: 桌面全部牌进赢家的墩 (龙单赢墩送指定对手), 赢家领出
func (g *Game) awardTrick(st *PlayStage) {
	top := st.Table[len(st.Table)-1]
	winnerID := top.UserID
	recipientID := winnerID
	if top.Combo.isDragonSingle() && st.GiveDragonTo != "" {
		recipientID = st.GiveDragonTo
	}
	recipient := g.userByID(recipientID)
	for _, tp := range st.Table {
		recipient.Tricks.Add(tp.Combo.Cards...)
	}
	st.Table = nil
	st.PassesInRow = 0
	st.GiveDragonTo = ""

	winner := g.userByID(winnerID)
	if winner.Hand.Count() > 0 {
		st.TurnUserID = winnerID
		return
	}
	if ni := g.nextWithCards(g.userIndex(winnerID)); ni >= 0 {
		st.TurnUserID = g.Participants[ni].UserID
	}
}

// handOver 双胜 (前两名同队) 或三人打完
func (g *Game) handOver(st *PlayStage) bool {
	if len(st.FinishOrder) >= MaxParticipants-1 {
		return true
	}
	if len(st.FinishOrder) == 2 {
		return teamIndexOf(st.Teams, st.FinishOrder[0]) == teamIndexOf(st.Teams, st.FinishOrder[1])
	}
	return false
}

func (g *Game) playersWithCards() int {
	n := 0
	for _, u := range g.Participants {
		if u.Hand.Count() > 0 {
			n++
		}
	}
	return n
}

func validateDragonRecipient(teams [2]Team, userID, recipientID string) error {
	ti := teamIndexOf(teams, userID)
	ri := teamIndexOf(teams, recipientID)
	if ti < 0 || ri < 0 {
		return fmt.Errorf("recipient %s: %w", recipientID, ErrInvalidTargets)
	}
	if ti == ri {
		return fmt.Errorf("recipient %s is not an opponent: %w", recipientID, ErrInvalidTargets)
	}
	return nil
}

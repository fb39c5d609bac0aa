package tichu

// settleHand 结算一手并进入计分板。调用方已持有克隆后的记录,
// st 指向其出牌阶段。
//
// 双胜 (前两名同队): 该队 +200, 双方墩分都不计。
// 否则: 末游手牌分给对方, 末游的墩给头游, 再按各队成员的墩计分。
// 大小地主注按叫者是否头游逐人结算 (±200 / ±100)。
func (g *Game) settleHand(st *PlayStage) *Game {
	// 桌面余牌按最后出牌者收墩 (龙单仍送其指定的对手)
	if len(st.Table) > 0 {
		g.awardTrick(st)
	}

	teams := cloneTeams(st.Teams)
	firstOut := st.FinishOrder[0]
	doubleWin := len(st.FinishOrder) == 2

	if doubleWin {
		teams[teamIndexOf(teams, firstOut)].Score += DoubleWinBonus
	} else {
		// 末游: 唯一还有手牌的人
		lastIdx := -1
		for i := range g.Participants {
			if g.Participants[i].Hand.Count() > 0 {
				lastIdx = i
			}
		}
		if lastIdx >= 0 {
			last := &g.Participants[lastIdx]
			oppTeam := 1 - teamIndexOf(teams, last.UserID)
			opp := g.userByID(teams[oppTeam].UserIDs[0])
			opp.Tricks.Add(last.Hand...)
			last.Hand = nil
			g.userByID(firstOut).Tricks.Add(last.Tricks...)
			last.Tricks = nil
		}
		for ti := range teams {
			for _, id := range teams[ti].UserIDs {
				teams[ti].Score += g.userByID(id).Tricks.Points()
			}
		}
	}

	for _, u := range g.Participants {
		id := u.UserID
		if st.GrandTichus[id] == CallStatusCalled {
			if id == firstOut {
				st.GrandTichus[id] = CallStatusAchieved
				teams[teamIndexOf(teams, id)].Score += GrandTichuBonus
			} else {
				st.GrandTichus[id] = CallStatusFailed
				teams[teamIndexOf(teams, id)].Score -= GrandTichuBonus
			}
		}
		if st.SmallTichus[id] == CallStatusCalled {
			if id == firstOut {
				st.SmallTichus[id] = CallStatusAchieved
				teams[teamIndexOf(teams, id)].Score += SmallTichuBonus
			} else {
				st.SmallTichus[id] = CallStatusFailed
				teams[teamIndexOf(teams, id)].Score -= SmallTichuBonus
			}
		}
	}

	g.Stage = &ScoreboardStage{
		SmallTichus: st.SmallTichus,
		GrandTichus: st.GrandTichus,
		Teams:       teams,
		Final:       g.scoreIsFinal(teams),
	}
	return g
}

// scoreIsFinal 领先队达到分数线且严格领先; 线上打平继续打
func (g *Game) scoreIsFinal(teams [2]Team) bool {
	a, b := teams[0].Score, teams[1].Score
	if a == b {
		return false
	}
	limit := g.cfg.scoreLimit()
	return a >= limit || b >= limit
}

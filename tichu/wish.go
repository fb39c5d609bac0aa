package tichu

import "tichu-lite/card"

// holdsRank 手里是否有指定点数的牌
func holdsRank(hand card.CardList, v int) bool {
	for _, c := range hand {
		if int(c.Rank()) == v {
			return true
		}
	}
	return false
}

// canFulfillWish 许愿义务判定: 持有许愿点数的玩家能否出一手
// 含该点数且压得过桌面的牌。搜索范围是桌面牌型的同型同长组合,
// 外加该点数的四条炸弹; 不强拆同花顺。领出时单张即可, 恒为真。
func canFulfillWish(hand card.CardList, wish int, table []TablePlay) bool {
	var counts [15]int
	phoenix := false
	for _, c := range hand {
		if c == card.CardPhoenix {
			phoenix = true
			continue
		}
		if r := c.Rank(); r > 0 {
			counts[r]++
		}
	}
	if counts[wish] == 0 {
		return false
	}
	if len(table) == 0 {
		return true
	}

	top := table[len(table)-1].Combo
	if top.IsBomb() {
		// 只有更大的炸弹能压; 只考虑许愿点数的四条
		if counts[wish] != 4 {
			return false
		}
		return top.Kind == ComboBombFour && scaledRank(byte(wish)) > top.LeadRank
	}
	if counts[wish] == 4 {
		return true // 四条炸弹压一切非炸弹
	}

	avail := 0
	if phoenix {
		avail = 1
	}
	switch top.Kind {
	case ComboSingle:
		return scaledRank(byte(wish)) > effectiveSingleRank(table, len(table)-1)
	case ComboPair:
		return counts[wish]+avail >= 2 && scaledRank(byte(wish)) > top.LeadRank
	case ComboTriple:
		return counts[wish]+avail >= 3 && scaledRank(byte(wish)) > top.LeadRank
	case ComboFullHouse:
		return canFullHouseWith(&counts, phoenix, wish, top.LeadRank)
	case ComboSequence:
		return canSequenceWith(&counts, phoenix, wish, top.Length, top.LeadRank)
	case ComboPairSequence:
		return canPairSequenceWith(&counts, phoenix, wish, top.Length, top.LeadRank)
	}
	return false
}

// canFullHouseWith 三条点数必须压过 minLead; 许愿点数做三条或对子均可
func canFullHouseWith(counts *[15]int, phoenix bool, wish, minLead int) bool {
	for t := 2; t <= 14; t++ {
		if scaledRank(byte(t)) <= minLead {
			continue
		}
		for p := 2; p <= 14; p++ {
			if p == t || (t != wish && p != wish) {
				continue
			}
			need := 0
			if counts[t] < 3 {
				need += 3 - counts[t]
			}
			if counts[p] < 2 {
				need += 2 - counts[p]
			}
			if counts[t] == 0 || counts[p] == 0 {
				continue // 凤凰只有一张, 两张以上的缺口补不上
			}
			if need == 0 || (need == 1 && phoenix) {
				return true
			}
		}
	}
	return false
}

// canSequenceWith 找一段含许愿点数、压过 minLead 的连张窗口;
// 凤凰可补一个洞, 但许愿点数那张必须是真牌
func canSequenceWith(counts *[15]int, phoenix bool, wish, length, minLead int) bool {
	for lo := 1; lo+length-1 <= 14; lo++ {
		hi := lo + length - 1
		if wish < lo || wish > hi || scaledRank(byte(hi)) <= minLead {
			continue
		}
		missing := 0
		ok := true
		for r := lo; r <= hi; r++ {
			if counts[r] > 0 {
				continue
			}
			if r == wish {
				ok = false
				break
			}
			missing++
		}
		if !ok {
			continue
		}
		if missing == 0 || (missing == 1 && phoenix) {
			return true
		}
	}
	return false
}

// canPairSequenceWith 连对窗口; 凤凰最多补一张
func canPairSequenceWith(counts *[15]int, phoenix bool, wish, length, minLead int) bool {
	pairs := length / 2
	for lo := 2; lo+pairs-1 <= 14; lo++ {
		hi := lo + pairs - 1
		if wish < lo || wish > hi || scaledRank(byte(hi)) <= minLead {
			continue
		}
		deficit := 0
		ok := true
		for r := lo; r <= hi; r++ {
			switch {
			case counts[r] >= 2:
			case counts[r] == 1:
				deficit++
			default:
				ok = false
			}
		}
		if !ok {
			continue
		}
		if deficit == 0 || (deficit == 1 && phoenix) {
			return true
		}
	}
	return false
}

package tichu

import (
	"fmt"

	"tichu-lite/card"
)

// ComboKind 牌型
type ComboKind byte

const (
	ComboInvalid           ComboKind = 0
	ComboSingle            ComboKind = 1
	ComboPair              ComboKind = 2
	ComboTriple            ComboKind = 3
	ComboSequence          ComboKind = 4
	ComboFullHouse         ComboKind = 5
	ComboPairSequence      ComboKind = 6
	ComboBombFour          ComboKind = 7
	ComboBombStraightFlush ComboKind = 8
)

var ComboKindDictionary = map[ComboKind]string{
	ComboInvalid:           "INVALID",
	ComboSingle:            "SINGLE",
	ComboPair:              "PAIR",
	ComboTriple:            "TRIPLE",
	ComboSequence:          "SEQUENCE",
	ComboFullHouse:         "FULLHOUSE",
	ComboPairSequence:      "PAIRSEQUENCE",
	ComboBombFour:          "BOMB4",
	ComboBombStraightFlush: "BOMBFLUSH",
}

func (k ComboKind) String() string {
	if s, ok := ComboKindDictionary[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// 比较用的缩放点数: 普通点数×2, 凤凰单张在两者之间取奇数
// 麻雀=2, 2=4 ... A=28, 龙=30, 领出的凤凰=3
const (
	phoenixLeadBase = 3
	dragonLead      = 30
)

func scaledRank(rank byte) int { return int(rank) * 2 }

// Combo 一手牌型; LeadRank 为缩放点数, Length 为张数
type Combo struct {
	Cards    card.CardList
	Kind     ComboKind
	LeadRank int
	Length   int
}

func (c Combo) IsBomb() bool {
	return c.Kind == ComboBombFour || c.Kind == ComboBombStraightFlush
}

func (c Combo) isPhoenixSingle() bool {
	return c.Kind == ComboSingle && len(c.Cards) == 1 && c.Cards[0] == card.CardPhoenix
}

func (c Combo) isDragonSingle() bool {
	return c.Kind == ComboSingle && len(c.Cards) == 1 && c.Cards[0] == card.CardDragon
}

func (c Combo) isDogSingle() bool {
	return c.Kind == ComboSingle && len(c.Cards) == 1 && c.Cards[0] == card.CardDog
}

// ContainsRank 牌型中是否含指定点数 (许愿判定)
func (c Combo) ContainsRank(v int) bool {
	for _, cc := range c.Cards {
		if int(cc.Rank()) == v {
			return true
		}
	}
	return false
}

func (c Combo) clone() Combo {
	out := c
	out.Cards = c.Cards.Clone()
	return out
}

// FindCombo 识别牌型
//
// 单张/对子/三条/顺子(≥5)/葫芦/连对(≥2对)/炸弹(四条, 同花顺)。
// 凤凰可替任意普通牌但不能入炸弹; 麻雀只能做顺子最底的 1;
// 狗和龙只能单出。
func FindCombo(cards []card.Card) (Combo, error) {
	n := len(cards)
	if n == 0 {
		return Combo{}, fmt.Errorf("empty play: %w", ErrBadCombo)
	}

	var cs card.CardList
	cs.Init(cards)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if cs[i] == cs[j] {
				return Combo{}, fmt.Errorf("duplicate card %v: %w", cs[i], ErrBadCombo)
			}
		}
	}

	if n == 1 {
		return Combo{Cards: cs, Kind: ComboSingle, LeadRank: singleLead(cs[0]), Length: 1}, nil
	}

	var counts [15]int // 1..14, 麻雀计在 1
	phoenix := false
	for _, c := range cs {
		switch c {
		case card.CardDog, card.CardDragon:
			return Combo{}, fmt.Errorf("%v only plays alone: %w", c, ErrBadCombo)
		case card.CardPhoenix:
			phoenix = true
		default:
			counts[c.Rank()]++
		}
	}

	switch {
	case n == 2 || n == 3:
		if lead, ok := allOfAKind(&counts, phoenix, n); ok {
			kind := ComboPair
			if n == 3 {
				kind = ComboTriple
			}
			return Combo{Cards: cs, Kind: kind, LeadRank: lead, Length: n}, nil
		}
	case n == 4:
		if lead, ok := allOfAKind(&counts, phoenix, n); ok && !phoenix {
			return Combo{Cards: cs, Kind: ComboBombFour, LeadRank: lead, Length: n}, nil
		}
		if lead, ok := pairSequenceLead(&counts, phoenix, n); ok {
			return Combo{Cards: cs, Kind: ComboPairSequence, LeadRank: lead, Length: n}, nil
		}
	default:
		if lead, ok := straightFlushLead(cs, phoenix, &counts); ok {
			return Combo{Cards: cs, Kind: ComboBombStraightFlush, LeadRank: lead, Length: n}, nil
		}
		if n == 5 {
			if lead, ok := fullHouseLead(&counts, phoenix); ok {
				return Combo{Cards: cs, Kind: ComboFullHouse, LeadRank: lead, Length: n}, nil
			}
		}
		if lead, ok := sequenceLead(&counts, phoenix, n); ok {
			return Combo{Cards: cs, Kind: ComboSequence, LeadRank: lead, Length: n}, nil
		}
		if n%2 == 0 {
			if lead, ok := pairSequenceLead(&counts, phoenix, n); ok {
				return Combo{Cards: cs, Kind: ComboPairSequence, LeadRank: lead, Length: n}, nil
			}
		}
	}

	return Combo{}, fmt.Errorf("%d cards form no combo: %w", n, ErrBadCombo)
}

func singleLead(c card.Card) int {
	switch c {
	case card.CardDog:
		return 0
	case card.CardPhoenix:
		return phoenixLeadBase
	case card.CardDragon:
		return dragonLead
	default:
		return scaledRank(c.Rank()) // 麻雀 Rank()=1 => 2
	}
}

// allOfAKind 全部同点 (凤凰可补一张); 麻雀不能成对
func allOfAKind(counts *[15]int, phoenix bool, n int) (int, bool) {
	if counts[1] > 0 {
		return 0, false
	}
	rank := 0
	for r := 2; r <= 14; r++ {
		if counts[r] == 0 {
			continue
		}
		if rank != 0 {
			return 0, false
		}
		rank = r
	}
	if rank == 0 {
		return 0, false
	}
	need := n
	if phoenix {
		need--
	}
	if counts[rank] != need {
		return 0, false
	}
	return scaledRank(byte(rank)), true
}

// fullHouseLead 3+2; 凤凰补三条或对子, 取三条点数大的解释
func fullHouseLead(counts *[15]int, phoenix bool) (int, bool) {
	if counts[1] > 0 {
		return 0, false
	}
	var ranks []int
	for r := 2; r <= 14; r++ {
		if counts[r] > 0 {
			ranks = append(ranks, r)
		}
	}
	if !phoenix {
		if len(ranks) != 2 {
			return 0, false
		}
		for _, r := range ranks {
			if counts[r] == 3 {
				return scaledRank(byte(r)), true
			}
		}
		return 0, false
	}
	// 凤凰在手: 四张普通牌分布 3+1 或 2+2
	if len(ranks) != 2 {
		return 0, false
	}
	a, b := ranks[0], ranks[1]
	switch {
	case counts[a] == 3 && counts[b] == 1:
		return scaledRank(byte(a)), true
	case counts[a] == 1 && counts[b] == 3:
		return scaledRank(byte(b)), true
	case counts[a] == 2 && counts[b] == 2:
		if b > a {
			return scaledRank(byte(b)), true
		}
		return scaledRank(byte(a)), true
	}
	return 0, false
}

// sequenceLead 连续单张 ≥5; 麻雀可垫底(1), 凤凰补一洞或延伸一端(取高)
func sequenceLead(counts *[15]int, phoenix bool, n int) (int, bool) {
	lo, hi := 0, 0
	present := 0
	for r := 1; r <= 14; r++ {
		if counts[r] == 0 {
			continue
		}
		if counts[r] > 1 {
			return 0, false
		}
		if lo == 0 {
			lo = r
		}
		hi = r
		present++
	}
	if lo == 0 {
		return 0, false
	}
	span := hi - lo + 1
	if !phoenix {
		if span != n || present != n {
			return 0, false
		}
		return scaledRank(byte(hi)), true
	}
	if present != n-1 {
		return 0, false
	}
	switch span {
	case n - 1: // 连续, 凤凰延伸一端
		if hi < 14 {
			return scaledRank(byte(hi + 1)), true
		}
		return scaledRank(byte(hi)), true
	case n: // 中间一个洞
		return scaledRank(byte(hi)), true
	}
	return 0, false
}

// pairSequenceLead 连对 ≥2对; 凤凰最多补一张
func pairSequenceLead(counts *[15]int, phoenix bool, n int) (int, bool) {
	if counts[1] > 0 || n%2 != 0 {
		return 0, false
	}
	pairs := n / 2
	lo, hi := 0, 0
	deficit := 0
	present := 0
	for r := 2; r <= 14; r++ {
		switch counts[r] {
		case 0:
			continue
		case 1:
			deficit++
		case 2:
		default:
			return 0, false
		}
		if lo == 0 {
			lo = r
		}
		hi = r
		present++
	}
	if lo == 0 || hi-lo+1 != pairs || present != pairs {
		return 0, false
	}
	if phoenix {
		if deficit != 1 {
			return 0, false
		}
	} else if deficit != 0 {
		return 0, false
	}
	return scaledRank(byte(hi)), true
}

// straightFlushLead 同花顺炸弹: 同花、连续、无特殊牌
func straightFlushLead(cs card.CardList, phoenix bool, counts *[15]int) (int, bool) {
	if phoenix || counts[1] > 0 {
		return 0, false
	}
	suit := cs[0].Suit()
	if suit == card.SuitNone {
		return 0, false
	}
	for _, c := range cs {
		if c.Suit() != suit {
			return 0, false
		}
	}
	lo, hi := 0, 0
	present := 0
	for r := 2; r <= 14; r++ {
		if counts[r] == 0 {
			continue
		}
		if counts[r] > 1 {
			return 0, false
		}
		if lo == 0 {
			lo = r
		}
		hi = r
		present++
	}
	if present != len(cs) || hi-lo+1 != len(cs) {
		return 0, false
	}
	return scaledRank(byte(hi)), true
}

// Beats 是否压过桌面; 空桌任意领出
//
// 炸弹压一切非炸弹; 同花顺压四条; 同花顺间先比长度再比点;
// 非炸弹须同型同长且点数更大。凤凰单张大过除龙外的任何单张。
func (c Combo) Beats(table []TablePlay) bool {
	if len(table) == 0 {
		return true
	}
	last := table[len(table)-1].Combo
	if c.IsBomb() {
		if !last.IsBomb() {
			return true
		}
		if c.Kind != last.Kind {
			return c.Kind == ComboBombStraightFlush
		}
		if c.Kind == ComboBombStraightFlush && c.Length != last.Length {
			return c.Length > last.Length
		}
		return c.LeadRank > last.LeadRank
	}
	if last.IsBomb() {
		return false
	}
	if c.Kind != last.Kind || c.Length != last.Length {
		return false
	}
	if c.Kind == ComboSingle {
		lastEff := effectiveSingleRank(table, len(table)-1)
		if c.isPhoenixSingle() {
			return lastEff < dragonLead
		}
		return c.LeadRank > lastEff
	}
	return c.LeadRank > last.LeadRank
}

// effectiveSingleRank 解析桌面单张的实际点数; 凤凰取其前一张+1
func effectiveSingleRank(table []TablePlay, idx int) int {
	co := table[idx].Combo
	if !co.isPhoenixSingle() {
		return co.LeadRank
	}
	if idx == 0 {
		return phoenixLeadBase
	}
	return effectiveSingleRank(table, idx-1) + 1
}

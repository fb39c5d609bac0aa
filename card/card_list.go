package card

import "math/rand"

type CardList []Card

func (ds *CardList) Init(cards []Card) {
	*ds = make([]Card, len(cards))
	copy(*ds, cards)
}

// Count 获取总牌数
func (ds CardList) Count() int {
	return len(ds)
}

func (ds CardList) CardsBytes() []byte {
	return Cards2bytes(ds)
}

func (ds CardList) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(ds), func(i, j int) {
		ds[i], ds[j] = ds[j], ds[i]
	})
}

func (ds *CardList) Add(cards ...Card) {
	*ds = append(*ds, cards...)
}

func (ds *CardList) PopCards(size int) ([]Card, bool) {
	if size > ds.Count() {
		return nil, false
	}
	cards := make([]Card, size)
	copy(cards, (*ds)[:size])
	*ds = (*ds)[size:]
	return cards, true
}

func (ds CardList) Contains(c Card) bool {
	for _, have := range ds {
		if have == c {
			return true
		}
	}
	return false
}

// ContainsAll 牌是否全部在手 (全副牌无重复, 按字节判等即可)
func (ds CardList) ContainsAll(cards []Card) bool {
	for _, c := range cards {
		if !ds.Contains(c) {
			return false
		}
	}
	return true
}

// Remove 移除给定的牌, 任何一张不在列表则返回 false 且不修改
func (ds *CardList) Remove(cards ...Card) bool {
	if !ds.ContainsAll(cards) {
		return false
	}
	for _, c := range cards {
		for i, have := range *ds {
			if have == c {
				*ds = append((*ds)[:i], (*ds)[i+1:]...)
				break
			}
		}
	}
	return true
}

// Points 列表计分总和
func (ds CardList) Points() int {
	total := 0
	for _, c := range ds {
		total += c.Points()
	}
	return total
}

func (ds CardList) Clone() CardList {
	if ds == nil {
		return nil
	}
	out := make(CardList, len(ds))
	copy(out, ds)
	return out
}

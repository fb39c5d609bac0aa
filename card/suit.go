package card

type Suit byte

const (
	Sword  Suit = iota // ⚔️
	Jade               // 🟢
	Pagoda             // 🏯
	Star               // ⭐
	SuitNone Suit = 0xF
)

func (s Suit) String() string {
	switch s {
	case Sword:
		return "⚔️"
	case Jade:
		return "🟢"
	case Pagoda:
		return "🏯"
	case Star:
		return "⭐"
	}
	return "?"
}

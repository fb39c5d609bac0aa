package card

import "fmt"

// Card 牌枚举
//
// 编码规则:
// - 普通牌高4位: 花色 (0:Sword, 1:Jade, 2:Pagoda, 3:Star)
// - 普通牌低4位: 点数 (2..10, 11:J, 12:Q, 13:K, 14:A)
// - 特殊牌占用 0x40 区段 (狗/麻雀/凤凰/龙)
type Card byte

func (c Card) String() string {
	if c == CardInvalid {
		return "Invalid"
	}
	switch c {
	case CardDog:
		return "Dog"
	case CardMahJong:
		return "MahJong"
	case CardPhoenix:
		return "Phoenix"
	case CardDragon:
		return "Dragon"
	}

	suit := Suit(c >> 4) // 高4位表示花色
	rank := c & 0x0F     // 低4位表示点数

	rankStr := ""
	switch rank {
	case 10:
		rankStr = "T"
	case 11:
		rankStr = "J"
	case 12:
		rankStr = "Q"
	case 13:
		rankStr = "K"
	case 14:
		rankStr = "A"
	default:
		rankStr = fmt.Sprintf("%d", rank)
	}

	return fmt.Sprintf("%s%s", suit, rankStr)
}

// IsSpecial 是否特殊牌 (狗/麻雀/凤凰/龙)
func (c Card) IsSpecial() bool {
	return c >= CardDog && c <= CardDragon
}

// IsRegular 是否普通花色牌
func (c Card) IsRegular() bool {
	return c != CardInvalid && !c.IsSpecial()
}

// Rank 获取牌面值:
// - 普通牌 2-14 (J=11, Q=12, K=13, A=14)
// - 麻雀视为 1
// - 狗/凤凰/龙返回 0, 其大小由牌型比较决定
func (c Card) Rank() byte {
	if c == CardMahJong {
		return 1
	}
	if !c.IsRegular() {
		return 0
	}
	return byte(c & 0x0F)
}

// Suit 花色 (0:Sword, 1:Jade, 2:Pagoda, 3:Star), 特殊牌无花色
func (c Card) Suit() Suit {
	if !c.IsRegular() {
		return SuitNone
	}
	return Suit(c >> 4)
}

// Points 计分牌分值: 5=5分, 10/K=10分, 龙=+25, 凤凰=-25, 其余 0
func (c Card) Points() int {
	switch {
	case c == CardDragon:
		return 25
	case c == CardPhoenix:
		return -25
	case c.Rank() == 5:
		return 5
	case c.Rank() == 10 || c.Rank() == 13:
		return 10
	}
	return 0
}

package card

const (
	CardInvalid Card = 0
)

// 特殊牌
const (
	CardDog     Card = iota + 0x40 // 狗: 让牌权给队友
	CardMahJong                    // 麻雀: 点数 1, 可许愿
	CardPhoenix                    // 凤凰: 百搭, 单张时大半级
	CardDragon                     // 龙: 最大单张, 赢墩送对手
)

// Sword 剑
const (
	CardSword2 Card = iota + 0x02
	CardSword3
	CardSword4
	CardSword5
	CardSword6
	CardSword7
	CardSword8
	CardSword9
	CardSwordT
	CardSwordJ
	CardSwordQ
	CardSwordK
	CardSwordA
)

// Jade 玉
const (
	CardJade2 Card = iota + 0x12
	CardJade3
	CardJade4
	CardJade5
	CardJade6
	CardJade7
	CardJade8
	CardJade9
	CardJadeT
	CardJadeJ
	CardJadeQ
	CardJadeK
	CardJadeA
)

// Pagoda 塔
const (
	CardPagoda2 Card = iota + 0x22
	CardPagoda3
	CardPagoda4
	CardPagoda5
	CardPagoda6
	CardPagoda7
	CardPagoda8
	CardPagoda9
	CardPagodaT
	CardPagodaJ
	CardPagodaQ
	CardPagodaK
	CardPagodaA
)

// Star 星
const (
	CardStar2 Card = iota + 0x32
	CardStar3
	CardStar4
	CardStar5
	CardStar6
	CardStar7
	CardStar8
	CardStar9
	CardStarT
	CardStarJ
	CardStarQ
	CardStarK
	CardStarA
)

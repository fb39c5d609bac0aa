package tichu

import "tichu-lite/card"

// StageKind 游戏阶段
type StageKind byte

const (
	StageLobby      StageKind = 0
	StageTeams      StageKind = 1
	StageGrandTichu StageKind = 2
	StageTrade      StageKind = 3
	StagePlay       StageKind = 4
	StageScoreboard StageKind = 5
)

var StageKindDictionary = map[StageKind]string{
	StageLobby:      "lobby",
	StageTeams:      "teams",
	StageGrandTichu: "grandtichu",
	StageTrade:      "trade",
	StagePlay:       "play",
	StageScoreboard: "scoreboard",
}

func (k StageKind) String() string {
	if s, ok := StageKindDictionary[k]; ok {
		return s
	}
	return "unknown"
}

// TichuCallStatus 叫牌状态：0-未决定 1-已叫 2-拒绝 3-达成 4-失败
type TichuCallStatus byte

const (
	CallStatusUndecided TichuCallStatus = 0
	CallStatusCalled    TichuCallStatus = 1
	CallStatusDeclined  TichuCallStatus = 2
	CallStatusAchieved  TichuCallStatus = 3
	CallStatusFailed    TichuCallStatus = 4
)

var CallStatusDictionary = map[TichuCallStatus]string{
	CallStatusUndecided: "UNDECIDED",
	CallStatusCalled:    "CALLED",
	CallStatusDeclined:  "DECLINED",
	CallStatusAchieved:  "ACHIEVED",
	CallStatusFailed:    "FAILED",
}

// GrandTichuDecision 大地主叫牌决定
type GrandTichuDecision byte

const (
	DecisionCall    GrandTichuDecision = 0
	DecisionDecline GrandTichuDecision = 1
)

// TeamOption 队伍选项
type TeamOption byte

const (
	TeamOptionA TeamOption = 0
	TeamOptionB TeamOption = 1
)

// Role 玩家角色
type Role byte

const (
	RoleParticipant Role = 0
	RoleOwner       Role = 1
)

const (
	MaxParticipants = 4
	TeamSize        = 2
	FirstDealCount  = 9  // 大地主决定前先发 9 张
	HandCount       = 14 // 每人整手 14 张
	TotalCards      = 56

	DefaultScoreLimit = 1000

	SmallTichuBonus = 100
	GrandTichuBonus = 200
	DoubleWinBonus  = 200

	MaxDisplayNameRunes = 32
)

// WishedForCardValues 麻雀可许愿的点数 (2..A)
var WishedForCardValues = []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14}

// Team 队伍; Teams 阶段人数可变, 发牌后固定两人
type Team struct {
	Name    string
	UserIDs []string
	Score   int
}

func (t Team) Contains(userID string) bool {
	for _, id := range t.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (t Team) clone() Team {
	out := t
	out.UserIDs = append([]string(nil), t.UserIDs...)
	return out
}

// User 参与者
type User struct {
	UserID             string
	DisplayName        string
	Role               Role
	Hand               card.CardList
	Tricks             card.CardList
	HasPlayedFirstCard bool
}

func (u User) clone() User {
	out := u
	out.Hand = u.Hand.Clone()
	out.Tricks = u.Tricks.Clone()
	return out
}

// CardTrade 单张交换: 把 Card 送给 ToUserID
type CardTrade struct {
	Card     card.Card
	ToUserID string
}

// SubmittedTrade 一名玩家提交的三张交换
type SubmittedTrade struct {
	Trades [3]CardTrade
}

// TichuCards 整副 56 张: 四色 2..A 加四张特殊牌
var TichuCards = []card.Card{
	card.CardSword2, card.CardSword3, card.CardSword4, card.CardSword5, card.CardSword6, card.CardSword7,
	card.CardSword8, card.CardSword9, card.CardSwordT, card.CardSwordJ, card.CardSwordQ, card.CardSwordK, card.CardSwordA,
	card.CardJade2, card.CardJade3, card.CardJade4, card.CardJade5, card.CardJade6, card.CardJade7,
	card.CardJade8, card.CardJade9, card.CardJadeT, card.CardJadeJ, card.CardJadeQ, card.CardJadeK, card.CardJadeA,
	card.CardPagoda2, card.CardPagoda3, card.CardPagoda4, card.CardPagoda5, card.CardPagoda6, card.CardPagoda7,
	card.CardPagoda8, card.CardPagoda9, card.CardPagodaT, card.CardPagodaJ, card.CardPagodaQ, card.CardPagodaK, card.CardPagodaA,
	card.CardStar2, card.CardStar3, card.CardStar4, card.CardStar5, card.CardStar6, card.CardStar7,
	card.CardStar8, card.CardStar9, card.CardStarT, card.CardStarJ, card.CardStarQ, card.CardStarK, card.CardStarA,
	card.CardDog, card.CardMahJong, card.CardPhoenix, card.CardDragon,
}

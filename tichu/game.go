package tichu

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"
)

// Game 一局游戏的权威记录
//
// 所有操作为纯转换: 克隆上一代记录, 在副本上推进并返回 (prev, args) -> (next, error)。
// 失败时返回 nil, 原记录不变。rng 由各代记录共享, 同一局的转换串行执行
// (房间层持写锁)。
type Game struct {
	GameID       string
	GameCode     string
	OwnerID      string
	Participants []User // 入座顺序即出牌顺序
	Stage        Stage
	CreatedAt    time.Time

	cfg Config
	rng *rand.Rand
}

func NewGame(gameID, gameCode, ownerID, ownerName string, cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if gameID == "" || ownerID == "" {
		return nil, ErrInvalidState("empty game or owner id")
	}
	name, err := normalizeDisplayName(ownerName)
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		GameID:       gameID,
		GameCode:     strings.ToUpper(gameCode),
		OwnerID:      ownerID,
		Participants: []User{{UserID: ownerID, DisplayName: name, Role: RoleOwner}},
		Stage:        &LobbyStage{},
		CreatedAt:    time.Now(),
		cfg:          cfg,
		rng:          rand.New(rand.NewSource(seed)),
	}
	return g, nil
}

func (g *Game) clone() *Game {
	next := &Game{
		GameID:    g.GameID,
		GameCode:  g.GameCode,
		OwnerID:   g.OwnerID,
		Stage:     g.Stage.cloneStage(),
		CreatedAt: g.CreatedAt,
		cfg:       g.cfg,
		rng:       g.rng,
	}
	next.Participants = make([]User, len(g.Participants))
	for i, u := range g.Participants {
		next.Participants[i] = u.clone()
	}
	return next
}

// Join 大厅加入; 第四人加入后自动进入组队阶段
func (g *Game) Join(userID, displayName string) (*Game, error) {
	if g.Stage.Kind() != StageLobby {
		return nil, fmt.Errorf("join during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}
	if len(g.Participants) >= MaxParticipants {
		return nil, ErrFull
	}
	if g.userIndex(userID) >= 0 {
		return nil, fmt.Errorf("user %s already joined: %w", userID, ErrInvalidTargets)
	}
	name, err := normalizeDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	next := g.clone()
	next.Participants = append(next.Participants, User{UserID: userID, DisplayName: name})
	if len(next.Participants) == MaxParticipants {
		next.Stage = &TeamsStage{Teams: defaultTeams()}
	}
	return next, nil
}

// Leave 大厅离开; 房主离开由下一位顶替, 走空由调用方销毁记录
func (g *Game) Leave(userID string) (*Game, error) {
	if g.Stage.Kind() != StageLobby {
		return nil, fmt.Errorf("leave during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}
	idx := g.userIndex(userID)
	if idx < 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	next := g.clone()
	next.Participants = append(next.Participants[:idx], next.Participants[idx+1:]...)
	if len(next.Participants) == 0 {
		next.OwnerID = ""
		return next, nil
	}
	if userID == g.OwnerID {
		next.OwnerID = next.Participants[0].UserID
		next.Participants[0].Role = RoleOwner
	}
	return next, nil
}

// DropDisconnected 宽限期到期: 把断线玩家移出组队阶段并退回大厅。
// 发牌后的阶段无法少人继续, 由调用方直接销毁。
func (g *Game) DropDisconnected(userIDs []string) (*Game, error) {
	if g.Stage.Kind() != StageTeams {
		return nil, fmt.Errorf("drop during %s: %w", g.Stage.Kind(), ErrWrongStage)
	}
	next := g.clone()
	for _, id := range userIDs {
		idx := next.userIndex(id)
		if idx < 0 {
			continue
		}
		next.Participants = append(next.Participants[:idx], next.Participants[idx+1:]...)
	}
	next.Stage = &LobbyStage{}
	if len(next.Participants) == 0 {
		next.OwnerID = ""
		return next, nil
	}
	if next.userIndex(g.OwnerID) < 0 {
		next.OwnerID = next.Participants[0].UserID
		next.Participants[0].Role = RoleOwner
	}
	return next, nil
}

func (g *Game) userIndex(userID string) int {
	for i, u := range g.Participants {
		if u.UserID == userID {
			return i
		}
	}
	return -1
}

func (g *Game) userByID(userID string) *User {
	idx := g.userIndex(userID)
	if idx < 0 {
		return nil
	}
	return &g.Participants[idx]
}

// UserIDs 按入座顺序
func (g *Game) UserIDs() []string {
	out := make([]string, 0, len(g.Participants))
	for _, u := range g.Participants {
		out = append(out, u.UserID)
	}
	return out
}

// nextWithCards 从 fromIdx 顺时针找下一个有手牌的玩家, 没有则 -1
func (g *Game) nextWithCards(fromIdx int) int {
	n := len(g.Participants)
	for step := 1; step <= n; step++ {
		idx := (fromIdx + step) % n
		if g.Participants[idx].Hand.Count() > 0 {
			return idx
		}
	}
	return -1
}

func teamIndexOf(teams [2]Team, userID string) int {
	for i := range teams {
		if teams[i].Contains(userID) {
			return i
		}
	}
	return -1
}

// partnerOf 同队另一人
func partnerOf(teams [2]Team, userID string) string {
	ti := teamIndexOf(teams, userID)
	if ti < 0 {
		return ""
	}
	for _, id := range teams[ti].UserIDs {
		if id != userID {
			return id
		}
	}
	return ""
}

func normalizeDisplayName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || !utf8.ValidString(name) {
		return "", fmt.Errorf("display name %q: %w", raw, ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameRunes {
		return "", fmt.Errorf("display name too long (%d runes): %w", utf8.RuneCountInString(name), ErrInvalidName)
	}
	return name, nil
}

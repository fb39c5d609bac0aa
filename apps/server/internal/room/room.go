// Package room tracks live connections and game records. A game record is
// immutable; every transition produces a successor and the manager swaps the
// pointer under the games write lock. Locks are always taken in the order
// connections, games, game codes, and every frame is written after all locks
// are released.
package room

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"
	"github.com/google/uuid"

	"tichu-lite/apps/server/internal/codec"
	"tichu-lite/tichu"
)

// NoIDToken is the sentinel a first-time client sends instead of a user id.
const NoIDToken = "no_id"

const (
	sendQueueSize   = 256
	heartbeatPeriod = 5 * time.Second
	reconnectGrace  = 60 * time.Second
	graceSweepEvery = time.Second

	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ23456789"
)

var (
	ErrNoGame        = errors.New("user is not in a game")
	ErrUnknownCode   = errors.New("unknown game code")
	ErrAlreadyInGame = errors.New("user is already in a game")
)

// Conn is one live WebSocket client. The writer goroutine drains Send and
// exits when done closes. alive is the app-level heartbeat flag: the sweep
// clears it, a Pong sets it, and a second miss closes the conn.
type Conn struct {
	UserID string
	Send   chan []byte

	mu    sync.Mutex
	alive bool

	closeOnce sync.Once
	done      chan struct{}
}

func newConn(userID string) *Conn {
	return &Conn{
		UserID: userID,
		Send:   make(chan []byte, sendQueueSize),
		alive:  true,
		done:   make(chan struct{}),
	}
}

// MarkAlive records an app-level Pong.
func (c *Conn) MarkAlive() {
	c.mu.Lock()
	c.alive = true
	c.mu.Unlock()
}

// sweepAlive clears the flag and reports whether it was set.
func (c *Conn) sweepAlive() bool {
	c.mu.Lock()
	was := c.alive
	c.alive = false
	c.mu.Unlock()
	return was
}

// Close is idempotent and only signals; the pumps tear the socket down.
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done closes when the conn should be torn down.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// enqueue is non-blocking: a full queue means a consumer too slow to keep,
// so the conn is closed instead of blocking the broadcaster.
func (c *Conn) enqueue(frame []byte) {
	select {
	case c.Send <- frame:
	default:
		c.Close()
	}
}

// entry pairs the current game record with its reconnect bookkeeping.
type entry struct {
	game *tichu.Game
	// detached user id -> grace deadline; cleared on reconnect.
	detached map[string]time.Time
}

// Manager owns the three tables.
type Manager struct {
	logger log.Logger
	cfg    tichu.Config

	connsMu sync.RWMutex
	conns   map[string]*Conn

	gamesMu sync.RWMutex
	games   map[string]*entry
	byUser  map[string]string // user id -> game id

	codesMu sync.RWMutex
	codes   map[string]string // game code -> game id
}

func NewManager(logger log.Logger, cfg tichu.Config) *Manager {
	return &Manager{
		logger: logger,
		cfg:    cfg,
		conns:  make(map[string]*Conn),
		games:  make(map[string]*entry),
		byUser: make(map[string]string),
		codes:  make(map[string]string),
	}
}

// Attach registers a connection. The no_id sentinel (or an empty token)
// mints a fresh uuid and answers UserIdAssigned; a known id replaces any
// stale conn and, if the user sits in a game, clears the grace deadline and
// announces the reconnect.
func (m *Manager) Attach(requestedID string) *Conn {
	userID := requestedID
	minted := userID == "" || userID == NoIDToken
	if minted {
		userID = uuid.NewString()
	}
	c := newConn(userID)

	m.connsMu.Lock()
	stale := m.conns[userID]
	m.conns[userID] = c
	m.connsMu.Unlock()
	if stale != nil {
		stale.Close()
	}

	if minted {
		c.enqueue(codec.EncodeSTC(codec.UserIdAssigned{UserID: userID}))
		m.logger.Info("assigned user id", "user_id", userID)
		return c
	}

	var g *tichu.Game
	m.gamesMu.Lock()
	if gameID, ok := m.byUser[userID]; ok {
		e := m.games[gameID]
		delete(e.detached, userID)
		g = e.game
	}
	m.gamesMu.Unlock()

	if g != nil {
		m.logger.Info("user reconnected", "user_id", userID, "game_id", g.GameID)
		m.Broadcast(g, codec.EncodeSTC(codec.UserReconnected{UserID: userID}))
		m.BroadcastState(g)
	}
	return c
}

// Detach drops the connection. In the lobby that is a full leave; in any
// later stage the seat is kept and a grace deadline is armed so the user
// can reconnect.
func (m *Manager) Detach(c *Conn) {
	c.Close()
	m.connsMu.Lock()
	if m.conns[c.UserID] != c {
		// Replaced by a reconnect; the new conn owns the user now.
		m.connsMu.Unlock()
		return
	}
	delete(m.conns, c.UserID)
	m.connsMu.Unlock()

	m.gamesMu.Lock()
	gameID, ok := m.byUser[c.UserID]
	if !ok {
		m.gamesMu.Unlock()
		return
	}
	e := m.games[gameID]
	if e.game.Stage.Kind() == tichu.StageLobby {
		frames, err := m.leaveLocked(e, c.UserID)
		m.gamesMu.Unlock()
		if err != nil {
			m.logger.Error("leave on detach failed", "game_id", gameID, "user_id", c.UserID, "err", err)
			return
		}
		m.deliver(frames)
		return
	}
	e.detached[c.UserID] = time.Now().Add(reconnectGrace)
	g := e.game
	m.gamesMu.Unlock()

	m.logger.Info("user disconnected", "user_id", c.UserID, "game_id", gameID, "stage", g.Stage.Kind())
	m.Broadcast(g, codec.EncodeSTC(codec.UserDisconnected{UserID: c.UserID}))
}

// CreateGame makes a fresh game owned by userID.
func (m *Manager) CreateGame(userID, displayName string) (*tichu.Game, error) {
	gameID := uuid.NewString()

	m.gamesMu.Lock()
	defer m.gamesMu.Unlock()
	if _, ok := m.byUser[userID]; ok {
		return nil, ErrAlreadyInGame
	}
	code, err := m.newCodeLocked(gameID)
	if err != nil {
		return nil, err
	}
	g, err := tichu.NewGame(gameID, code, userID, displayName, m.cfg)
	if err != nil {
		m.releaseCode(code)
		return nil, err
	}
	m.games[gameID] = &entry{game: g, detached: make(map[string]time.Time)}
	m.byUser[userID] = gameID
	m.logger.Info("game created", "game_id", gameID, "game_code", code, "owner", userID)
	return g, nil
}

// JoinWithCode seats userID in the game behind the (case-folded) code.
func (m *Manager) JoinWithCode(userID, displayName, code string) (*tichu.Game, error) {
	folded := foldCode(code)

	m.gamesMu.Lock()
	defer m.gamesMu.Unlock()
	if _, ok := m.byUser[userID]; ok {
		return nil, ErrAlreadyInGame
	}

	m.codesMu.RLock()
	gameID, ok := m.codes[folded]
	m.codesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("code %s: %w", folded, ErrUnknownCode)
	}
	return m.joinLocked(gameID, userID, displayName)
}

// JoinRandom seats userID in the oldest joinable game, creating one when
// none is open.
func (m *Manager) JoinRandom(userID, displayName string) (*tichu.Game, error) {
	m.gamesMu.Lock()
	if _, ok := m.byUser[userID]; ok {
		m.gamesMu.Unlock()
		return nil, ErrAlreadyInGame
	}
	var pick *entry
	var pickID string
	for gameID, e := range m.games {
		if e.game.Stage.Kind() != tichu.StageLobby || len(e.game.Participants) >= tichu.MaxParticipants {
			continue
		}
		if pick == nil || e.game.CreatedAt.Before(pick.game.CreatedAt) {
			pick, pickID = e, gameID
		}
	}
	if pick != nil {
		defer m.gamesMu.Unlock()
		return m.joinLocked(pickID, userID, displayName)
	}
	m.gamesMu.Unlock()
	return m.CreateGame(userID, displayName)
}

// joinLocked needs the games write lock.
func (m *Manager) joinLocked(gameID, userID, displayName string) (*tichu.Game, error) {
	e, ok := m.games[gameID]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrUnknownCode)
	}
	next, err := e.game.Join(userID, displayName)
	if err != nil {
		return nil, err
	}
	e.game = next
	m.byUser[userID] = gameID
	m.logger.Info("user joined", "game_id", gameID, "user_id", userID, "seats", len(next.Participants))
	return next, nil
}

// Leave removes userID from its lobby game and broadcasts the fallout to
// the remaining players. The caller tells the leaver itself.
func (m *Manager) Leave(userID string) error {
	m.gamesMu.Lock()
	gameID, ok := m.byUser[userID]
	if !ok {
		m.gamesMu.Unlock()
		return ErrNoGame
	}
	frames, err := m.leaveLocked(m.games[gameID], userID)
	m.gamesMu.Unlock()
	if err != nil {
		return err
	}
	m.deliver(frames)
	return nil
}

// leaveLocked applies a lobby leave, destroying the game when it empties.
// It returns the frames to deliver after the lock is dropped. Needs the
// games write lock.
func (m *Manager) leaveLocked(e *entry, userID string) ([]addressedFrame, error) {
	prevOwner := e.game.OwnerID
	next, err := e.game.Leave(userID)
	if err != nil {
		return nil, err
	}
	e.game = next
	delete(m.byUser, userID)
	delete(e.detached, userID)
	m.logger.Info("user left", "game_id", next.GameID, "user_id", userID, "seats", len(next.Participants))

	if len(next.Participants) == 0 {
		m.destroyLocked(next.GameID)
		return nil, nil
	}
	frames := make([]addressedFrame, 0, 3*len(next.Participants))
	frames = appendToAll(frames, next, codec.EncodeSTC(codec.UserLeft{UserID: userID}))
	if next.OwnerID != prevOwner {
		frames = appendToAll(frames, next, codec.EncodeSTC(codec.OwnerReassigned{UserID: next.OwnerID}))
	}
	frames = appendStates(frames, next)
	return frames, nil
}

// destroyLocked removes a game and its code. Needs the games write lock.
func (m *Manager) destroyLocked(gameID string) {
	e, ok := m.games[gameID]
	if !ok {
		return
	}
	for _, id := range e.game.UserIDs() {
		delete(m.byUser, id)
	}
	delete(m.games, gameID)
	m.releaseCode(e.game.GameCode)
	m.logger.Info("game destroyed", "game_id", gameID)
}

// Mutate runs one pure transition against the game userID sits in and swaps
// the record on success.
func (m *Manager) Mutate(userID string, op func(*tichu.Game) (*tichu.Game, error)) (*tichu.Game, error) {
	m.gamesMu.Lock()
	defer m.gamesMu.Unlock()
	gameID, ok := m.byUser[userID]
	if !ok {
		return nil, ErrNoGame
	}
	e := m.games[gameID]
	next, err := op(e.game)
	if err != nil {
		return nil, err
	}
	e.game = next
	return next, nil
}

// Game returns the current record for the game userID sits in, or nil.
func (m *Manager) Game(userID string) *tichu.Game {
	m.gamesMu.RLock()
	defer m.gamesMu.RUnlock()
	if gameID, ok := m.byUser[userID]; ok {
		return m.games[gameID].game
	}
	return nil
}

// SendTo enqueues one frame for a single user.
func (m *Manager) SendTo(userID string, frame []byte) {
	m.connsMu.RLock()
	c := m.conns[userID]
	m.connsMu.RUnlock()
	if c != nil {
		c.enqueue(frame)
	}
}

// Broadcast enqueues the frames, in order, for every participant of g.
func (m *Manager) Broadcast(g *tichu.Game, frames ...[]byte) {
	ids := g.UserIDs()
	m.connsMu.RLock()
	conns := make([]*Conn, 0, len(ids))
	for _, id := range ids {
		if c := m.conns[id]; c != nil {
			conns = append(conns, c)
		}
	}
	m.connsMu.RUnlock()
	for _, c := range conns {
		for _, frame := range frames {
			c.enqueue(frame)
		}
	}
}

// BroadcastState sends each participant their own view of g.
func (m *Manager) BroadcastState(g *tichu.Game) {
	for _, id := range g.UserIDs() {
		state := g.PublicFor(id)
		m.SendTo(id, codec.EncodeSTC(codec.GameState{State: &state}))
	}
}

// addressedFrame defers a send until all locks are released.
type addressedFrame struct {
	userID string
	frame  []byte
}

func appendToAll(frames []addressedFrame, g *tichu.Game, frame []byte) []addressedFrame {
	for _, id := range g.UserIDs() {
		frames = append(frames, addressedFrame{userID: id, frame: frame})
	}
	return frames
}

func appendStates(frames []addressedFrame, g *tichu.Game) []addressedFrame {
	for _, id := range g.UserIDs() {
		state := g.PublicFor(id)
		frames = append(frames, addressedFrame{userID: id, frame: codec.EncodeSTC(codec.GameState{State: &state})})
	}
	return frames
}

func (m *Manager) deliver(frames []addressedFrame) {
	for _, af := range frames {
		m.SendTo(af.userID, af.frame)
	}
}

// RunHeartbeat pings every conn on a fixed period and closes the ones that
// missed the previous round.
func (m *Manager) RunHeartbeat(ctx context.Context) error {
	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()
	ping := codec.EncodeSTC(codec.Ping{})
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		m.connsMu.RLock()
		conns := make([]*Conn, 0, len(m.conns))
		for _, c := range m.conns {
			conns = append(conns, c)
		}
		m.connsMu.RUnlock()
		for _, c := range conns {
			if !c.sweepAlive() {
				m.logger.Info("heartbeat missed, closing", "user_id", c.UserID)
				c.Close()
				continue
			}
			c.enqueue(ping)
		}
	}
}

// RunGraceSweeper enforces reconnect deadlines: a Teams game shrinks back to
// the lobby without the missing users, a dealt game cannot continue short-
// handed and is destroyed.
func (m *Manager) RunGraceSweeper(ctx context.Context) error {
	ticker := time.NewTicker(graceSweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		m.sweepGrace(time.Now())
	}
}

func (m *Manager) sweepGrace(now time.Time) {
	var frames []addressedFrame

	m.gamesMu.Lock()
	for gameID, e := range m.games {
		var expired []string
		for id, deadline := range e.detached {
			if !now.Before(deadline) {
				expired = append(expired, id)
			}
		}
		if len(expired) == 0 {
			continue
		}
		if e.game.Stage.Kind() == tichu.StageTeams {
			frames = append(frames, m.dropExpiredLocked(e, expired)...)
			continue
		}
		// Cards are out; the game cannot continue short-handed.
		m.logger.Info("grace expired on a dealt game", "game_id", gameID, "missing", expired)
		gone := codec.EncodeSTC(codec.GameState{})
		for _, id := range e.game.UserIDs() {
			frames = append(frames, addressedFrame{userID: id, frame: gone})
		}
		m.destroyLocked(gameID)
	}
	m.gamesMu.Unlock()

	m.deliver(frames)
}

// dropExpiredLocked shrinks a Teams game back to the lobby. Needs the games
// write lock.
func (m *Manager) dropExpiredLocked(e *entry, expired []string) []addressedFrame {
	prevOwner := e.game.OwnerID
	next, err := e.game.DropDisconnected(expired)
	if err != nil {
		m.logger.Error("drop failed", "game_id", e.game.GameID, "err", err)
		return nil
	}
	e.game = next
	for _, id := range expired {
		delete(m.byUser, id)
		delete(e.detached, id)
	}
	m.logger.Info("dropped disconnected users", "game_id", next.GameID, "users", expired)

	if len(next.Participants) == 0 {
		m.destroyLocked(next.GameID)
		return nil
	}
	var frames []addressedFrame
	for _, id := range expired {
		frames = appendToAll(frames, next, codec.EncodeSTC(codec.UserLeft{UserID: id}))
	}
	if next.OwnerID != prevOwner {
		frames = appendToAll(frames, next, codec.EncodeSTC(codec.OwnerReassigned{UserID: next.OwnerID}))
	}
	frames = appendStates(frames, next)
	return frames
}

// newCodeLocked draws 6-char codes until one is free. Needs the games write
// lock (lock order puts codes after games).
func (m *Manager) newCodeLocked(gameID string) (string, error) {
	m.codesMu.Lock()
	defer m.codesMu.Unlock()
	for attempt := 0; attempt < 64; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		if _, taken := m.codes[code]; taken {
			continue
		}
		m.codes[code] = gameID
		return code, nil
	}
	return "", errors.New("room: game code space exhausted")
}

func (m *Manager) releaseCode(code string) {
	m.codesMu.Lock()
	delete(m.codes, code)
	m.codesMu.Unlock()
}

func randomCode() (string, error) {
	raw := make([]byte, codeLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("room: game code entropy: %w", err)
	}
	out := make([]byte, codeLength)
	for i, b := range raw {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}

func foldCode(code string) string {
	out := []byte(code)
	for i, b := range out {
		if 'a' <= b && b <= 'z' {
			out[i] = b - 'a' + 'A'
		}
	}
	return string(out)
}

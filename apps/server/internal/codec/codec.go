// Package codec frames every WebSocket message as one discriminant byte
// followed by the variant payload: little-endian fixed-width scalars,
// u16-length-prefixed UTF-8 strings and lists, a presence byte for options,
// one byte per card. An unknown discriminant or a truncated payload is a
// hard decode error, never a guess.
package codec

import (
	"encoding/binary"
	"fmt"
	"sort"

	"tichu-lite/card"
	"tichu-lite/tichu"
)

// Client-to-server opcodes.
const (
	opJoinGameWithGameCode byte = iota
	opJoinRandomGame
	opCreateGame
	opLeaveGame
	opMoveToTeam
	opRenameTeam
	opStartGrandTichu
	opCallGrandTichu
	opCallSmallTichu
	opSubmitTrade
	opPlayCards
	opGiveDragon
	opPass
	opCTSPing
	opCTSPong
	opCTSTest
	opAdminSkipToPlay
)

// Server-to-client opcodes.
const (
	opUserIdAssigned byte = iota
	opGameCreated
	opGameState
	opOwnerReassigned
	opGameStageChanged
	opTeamARenamed
	opTeamBRenamed
	opUserJoined
	opUserLeft
	opUserMovedToTeamA
	opUserMovedToTeamB
	opSmallTichuCalled
	opGrandTichuCalled
	opFirstCardsDealt
	opDealFinalCards
	opTradeSubmitted
	opCardsPlayed
	opUserPassed
	opDragonWasWon
	opPlayerReceivedDragon
	opGameEnded
	opGameEndedFinal
	opSTCPing
	opSTCPong
	opSTCTest
	opUnexpectedMessageReceived
	opUserDisconnected
	opUserReconnected
)

// EncodeCTS serializes a client-to-server message into one frame.
func EncodeCTS(m CTS) []byte {
	w := &writer{}
	switch v := m.(type) {
	case JoinGameWithGameCode:
		w.u8(opJoinGameWithGameCode)
		w.str(v.UserID)
		w.str(v.DisplayName)
		w.str(v.GameCode)
	case JoinRandomGame:
		w.u8(opJoinRandomGame)
		w.str(v.UserID)
		w.str(v.DisplayName)
	case CreateGame:
		w.u8(opCreateGame)
		w.str(v.UserID)
		w.str(v.DisplayName)
	case LeaveGame:
		w.u8(opLeaveGame)
	case MoveToTeam:
		w.u8(opMoveToTeam)
		w.u8(byte(v.Team))
	case RenameTeam:
		w.u8(opRenameTeam)
		w.u8(byte(v.Team))
		w.str(v.Name)
	case StartGrandTichu:
		w.u8(opStartGrandTichu)
	case CallGrandTichu:
		w.u8(opCallGrandTichu)
		w.u8(byte(v.Decision))
	case CallSmallTichu:
		w.u8(opCallSmallTichu)
	case SubmitTrade:
		w.u8(opSubmitTrade)
		for _, tr := range v.Trades {
			w.u8(byte(tr.Card))
			w.str(tr.ToUserID)
		}
	case PlayCards:
		w.u8(opPlayCards)
		w.cards(v.Cards)
		w.u8(byte(v.WishedFor))
		w.str(v.GiveDragonTo)
	case GiveDragon:
		w.u8(opGiveDragon)
		w.str(v.UserID)
	case Pass:
		w.u8(opPass)
	case Ping:
		w.u8(opCTSPing)
	case Pong:
		w.u8(opCTSPong)
	case Test:
		w.u8(opCTSTest)
		w.str(v.Text)
	case AdminSkipToPlay:
		w.u8(opAdminSkipToPlay)
	default:
		panic(fmt.Sprintf("codec: unencodable CTS %T", m))
	}
	return w.buf
}

// DecodeCTS parses one client-to-server frame.
func DecodeCTS(data []byte) (CTS, error) {
	r := newReader(data)
	op, err := r.u8()
	if err != nil {
		return nil, err
	}
	var m CTS
	switch op {
	case opJoinGameWithGameCode:
		v := JoinGameWithGameCode{}
		if v.UserID, err = r.str(); err == nil {
			if v.DisplayName, err = r.str(); err == nil {
				v.GameCode, err = r.str()
			}
		}
		m = v
	case opJoinRandomGame:
		v := JoinRandomGame{}
		if v.UserID, err = r.str(); err == nil {
			v.DisplayName, err = r.str()
		}
		m = v
	case opCreateGame:
		v := CreateGame{}
		if v.UserID, err = r.str(); err == nil {
			v.DisplayName, err = r.str()
		}
		m = v
	case opLeaveGame:
		m = LeaveGame{}
	case opMoveToTeam:
		var b byte
		b, err = r.u8()
		m = MoveToTeam{Team: tichu.TeamOption(b)}
	case opRenameTeam:
		v := RenameTeam{}
		var b byte
		if b, err = r.u8(); err == nil {
			v.Team = tichu.TeamOption(b)
			v.Name, err = r.str()
		}
		m = v
	case opStartGrandTichu:
		m = StartGrandTichu{}
	case opCallGrandTichu:
		var b byte
		b, err = r.u8()
		m = CallGrandTichu{Decision: tichu.GrandTichuDecision(b)}
	case opCallSmallTichu:
		m = CallSmallTichu{}
	case opSubmitTrade:
		v := SubmitTrade{}
		for i := 0; i < 3 && err == nil; i++ {
			var b byte
			if b, err = r.u8(); err == nil {
				v.Trades[i].Card = card.Card(b)
				v.Trades[i].ToUserID, err = r.str()
			}
		}
		m = v
	case opPlayCards:
		v := PlayCards{}
		if v.Cards, err = r.cards(); err == nil {
			var b byte
			if b, err = r.u8(); err == nil {
				v.WishedFor = int(b)
				v.GiveDragonTo, err = r.str()
			}
		}
		m = v
	case opGiveDragon:
		v := GiveDragon{}
		v.UserID, err = r.str()
		m = v
	case opPass:
		m = Pass{}
	case opCTSPing:
		m = Ping{}
	case opCTSPong:
		m = Pong{}
	case opCTSTest:
		v := Test{}
		v.Text, err = r.str()
		m = v
	case opAdminSkipToPlay:
		m = AdminSkipToPlay{}
	default:
		return nil, fmt.Errorf("codec: unknown CTS opcode %d", op)
	}
	if err != nil {
		return nil, err
	}
	if !r.done() {
		return nil, fmt.Errorf("codec: %d trailing bytes after CTS opcode %d", r.remaining(), op)
	}
	return m, nil
}

// EncodeSTC serializes a server-to-client message into one frame.
func EncodeSTC(m STC) []byte {
	w := &writer{}
	switch v := m.(type) {
	case UserIdAssigned:
		w.u8(opUserIdAssigned)
		w.str(v.UserID)
	case GameCreated:
		w.u8(opGameCreated)
		w.str(v.GameID)
		w.str(v.GameCode)
	case GameState:
		w.u8(opGameState)
		if v.State == nil {
			w.u8(0)
		} else {
			w.u8(1)
			putGameState(w, v.State)
		}
	case OwnerReassigned:
		w.u8(opOwnerReassigned)
		w.str(v.UserID)
	case GameStageChanged:
		w.u8(opGameStageChanged)
		putStage(w, &v.Stage)
	case TeamARenamed:
		w.u8(opTeamARenamed)
		w.str(v.Name)
	case TeamBRenamed:
		w.u8(opTeamBRenamed)
		w.str(v.Name)
	case UserJoined:
		w.u8(opUserJoined)
		w.str(v.UserID)
	case UserLeft:
		w.u8(opUserLeft)
		w.str(v.UserID)
	case UserMovedToTeamA:
		w.u8(opUserMovedToTeamA)
		w.str(v.UserID)
	case UserMovedToTeamB:
		w.u8(opUserMovedToTeamB)
		w.str(v.UserID)
	case SmallTichuCalled:
		w.u8(opSmallTichuCalled)
		w.str(v.UserID)
	case GrandTichuCalled:
		w.u8(opGrandTichuCalled)
		w.str(v.UserID)
		w.u8(byte(v.Decision))
	case FirstCardsDealt:
		w.u8(opFirstCardsDealt)
	case DealFinalCards:
		w.u8(opDealFinalCards)
	case TradeSubmitted:
		w.u8(opTradeSubmitted)
		w.str(v.UserID)
	case CardsPlayed:
		w.u8(opCardsPlayed)
	case UserPassed:
		w.u8(opUserPassed)
		w.str(v.UserID)
	case DragonWasWon:
		w.u8(opDragonWasWon)
	case PlayerReceivedDragon:
		w.u8(opPlayerReceivedDragon)
		w.str(v.UserID)
	case GameEnded:
		w.u8(opGameEnded)
	case GameEndedFinal:
		w.u8(opGameEndedFinal)
	case Ping:
		w.u8(opSTCPing)
	case Pong:
		w.u8(opSTCPong)
	case Test:
		w.u8(opSTCTest)
		w.str(v.Text)
	case UnexpectedMessageReceived:
		w.u8(opUnexpectedMessageReceived)
		w.str(v.Debug)
	case UserDisconnected:
		w.u8(opUserDisconnected)
		w.str(v.UserID)
	case UserReconnected:
		w.u8(opUserReconnected)
		w.str(v.UserID)
	default:
		panic(fmt.Sprintf("codec: unencodable STC %T", m))
	}
	return w.buf
}

// DecodeSTC parses one server-to-client frame.
func DecodeSTC(data []byte) (STC, error) {
	r := newReader(data)
	op, err := r.u8()
	if err != nil {
		return nil, err
	}
	var m STC
	switch op {
	case opUserIdAssigned:
		v := UserIdAssigned{}
		v.UserID, err = r.str()
		m = v
	case opGameCreated:
		v := GameCreated{}
		if v.GameID, err = r.str(); err == nil {
			v.GameCode, err = r.str()
		}
		m = v
	case opGameState:
		v := GameState{}
		var present byte
		if present, err = r.u8(); err == nil && present != 0 {
			var gs tichu.PublicGameState
			if gs, err = takeGameState(r); err == nil {
				v.State = &gs
			}
		}
		m = v
	case opOwnerReassigned:
		v := OwnerReassigned{}
		v.UserID, err = r.str()
		m = v
	case opGameStageChanged:
		v := GameStageChanged{}
		v.Stage, err = takeStage(r)
		m = v
	case opTeamARenamed:
		v := TeamARenamed{}
		v.Name, err = r.str()
		m = v
	case opTeamBRenamed:
		v := TeamBRenamed{}
		v.Name, err = r.str()
		m = v
	case opUserJoined:
		v := UserJoined{}
		v.UserID, err = r.str()
		m = v
	case opUserLeft:
		v := UserLeft{}
		v.UserID, err = r.str()
		m = v
	case opUserMovedToTeamA:
		v := UserMovedToTeamA{}
		v.UserID, err = r.str()
		m = v
	case opUserMovedToTeamB:
		v := UserMovedToTeamB{}
		v.UserID, err = r.str()
		m = v
	case opSmallTichuCalled:
		v := SmallTichuCalled{}
		v.UserID, err = r.str()
		m = v
	case opGrandTichuCalled:
		v := GrandTichuCalled{}
		if v.UserID, err = r.str(); err == nil {
			var b byte
			b, err = r.u8()
			v.Decision = tichu.GrandTichuDecision(b)
		}
		m = v
	case opFirstCardsDealt:
		m = FirstCardsDealt{}
	case opDealFinalCards:
		m = DealFinalCards{}
	case opTradeSubmitted:
		v := TradeSubmitted{}
		v.UserID, err = r.str()
		m = v
	case opCardsPlayed:
		m = CardsPlayed{}
	case opUserPassed:
		v := UserPassed{}
		v.UserID, err = r.str()
		m = v
	case opDragonWasWon:
		m = DragonWasWon{}
	case opPlayerReceivedDragon:
		v := PlayerReceivedDragon{}
		v.UserID, err = r.str()
		m = v
	case opGameEnded:
		m = GameEnded{}
	case opGameEndedFinal:
		m = GameEndedFinal{}
	case opSTCPing:
		m = Ping{}
	case opSTCPong:
		m = Pong{}
	case opSTCTest:
		v := Test{}
		v.Text, err = r.str()
		m = v
	case opUnexpectedMessageReceived:
		v := UnexpectedMessageReceived{}
		v.Debug, err = r.str()
		m = v
	case opUserDisconnected:
		v := UserDisconnected{}
		v.UserID, err = r.str()
		m = v
	case opUserReconnected:
		v := UserReconnected{}
		v.UserID, err = r.str()
		m = v
	default:
		return nil, fmt.Errorf("codec: unknown STC opcode %d", op)
	}
	if err != nil {
		return nil, err
	}
	if !r.done() {
		return nil, fmt.Errorf("codec: %d trailing bytes after STC opcode %d", r.remaining(), op)
	}
	return m, nil
}

// Aggregate converters, one per projection type.

func putGameState(w *writer, s *tichu.PublicGameState) {
	w.str(s.GameID)
	w.str(s.GameCode)
	w.str(s.OwnerID)
	w.u16(uint16(len(s.Participants)))
	for _, u := range s.Participants {
		w.str(u.UserID)
		w.str(u.DisplayName)
		w.u8(byte(u.Role))
		w.u16(uint16(u.HandSize))
		if u.Hand == nil {
			w.u8(0)
		} else {
			w.u8(1)
			w.cards(u.Hand)
		}
		w.cards(u.Tricks)
		w.bool(u.HasPlayedFirstCard)
	}
	putStage(w, &s.Stage)
}

func takeGameState(r *reader) (tichu.PublicGameState, error) {
	var s tichu.PublicGameState
	var err error
	if s.GameID, err = r.str(); err != nil {
		return s, err
	}
	if s.GameCode, err = r.str(); err != nil {
		return s, err
	}
	if s.OwnerID, err = r.str(); err != nil {
		return s, err
	}
	n, err := r.u16()
	if err != nil {
		return s, err
	}
	for i := 0; i < int(n); i++ {
		var u tichu.PublicUser
		if u.UserID, err = r.str(); err != nil {
			return s, err
		}
		if u.DisplayName, err = r.str(); err != nil {
			return s, err
		}
		role, err := r.u8()
		if err != nil {
			return s, err
		}
		u.Role = tichu.Role(role)
		size, err := r.u16()
		if err != nil {
			return s, err
		}
		u.HandSize = int(size)
		present, err := r.u8()
		if err != nil {
			return s, err
		}
		if present != 0 {
			cs, err := r.cards()
			if err != nil {
				return s, err
			}
			u.Hand = card.CardList(cs)
			if u.Hand == nil {
				u.Hand = card.CardList{}
			}
		}
		tricks, err := r.cards()
		if err != nil {
			return s, err
		}
		u.Tricks = card.CardList(tricks)
		if u.HasPlayedFirstCard, err = r.bool(); err != nil {
			return s, err
		}
		s.Participants = append(s.Participants, u)
	}
	s.Stage, err = takeStage(r)
	return s, err
}

func putStage(w *writer, st *tichu.PublicStage) {
	w.u8(byte(st.Kind))
	w.u8(byte(len(st.Teams)))
	for _, tm := range st.Teams {
		w.str(tm.Name)
		w.strs(tm.UserIDs)
		w.i32(int32(tm.Score))
	}
	putStatusMap(w, st.SmallTichus)
	putStatusMap(w, st.GrandTichus)
	w.strs(st.TradesBy)
	w.u16(uint16(len(st.Table)))
	for _, tp := range st.Table {
		w.str(tp.UserID)
		w.cards(tp.Combo.Cards)
		w.u8(byte(tp.Combo.Kind))
		w.u8(byte(tp.Combo.LeadRank))
		w.u8(byte(tp.Combo.Length))
	}
	w.str(st.TurnUserID)
	w.u8(byte(st.WishedFor))
	w.str(st.GiveDragonTo)
	w.strs(st.FinishOrder)
	w.bool(st.Final)
}

func takeStage(r *reader) (tichu.PublicStage, error) {
	var st tichu.PublicStage
	kind, err := r.u8()
	if err != nil {
		return st, err
	}
	st.Kind = tichu.StageKind(kind)
	teams, err := r.u8()
	if err != nil {
		return st, err
	}
	for i := 0; i < int(teams); i++ {
		var tm tichu.Team
		if tm.Name, err = r.str(); err != nil {
			return st, err
		}
		if tm.UserIDs, err = r.strs(); err != nil {
			return st, err
		}
		score, err := r.i32()
		if err != nil {
			return st, err
		}
		tm.Score = int(score)
		st.Teams = append(st.Teams, tm)
	}
	if st.SmallTichus, err = takeStatusMap(r); err != nil {
		return st, err
	}
	if st.GrandTichus, err = takeStatusMap(r); err != nil {
		return st, err
	}
	if st.TradesBy, err = r.strs(); err != nil {
		return st, err
	}
	n, err := r.u16()
	if err != nil {
		return st, err
	}
	for i := 0; i < int(n); i++ {
		var tp tichu.TablePlay
		if tp.UserID, err = r.str(); err != nil {
			return st, err
		}
		cs, err := r.cards()
		if err != nil {
			return st, err
		}
		tp.Combo.Cards = card.CardList(cs)
		kind, err := r.u8()
		if err != nil {
			return st, err
		}
		tp.Combo.Kind = tichu.ComboKind(kind)
		lead, err := r.u8()
		if err != nil {
			return st, err
		}
		tp.Combo.LeadRank = int(lead)
		length, err := r.u8()
		if err != nil {
			return st, err
		}
		tp.Combo.Length = int(length)
		st.Table = append(st.Table, tp)
	}
	if st.TurnUserID, err = r.str(); err != nil {
		return st, err
	}
	wish, err := r.u8()
	if err != nil {
		return st, err
	}
	st.WishedFor = int(wish)
	if st.GiveDragonTo, err = r.str(); err != nil {
		return st, err
	}
	if st.FinishOrder, err = r.strs(); err != nil {
		return st, err
	}
	st.Final, err = r.bool()
	return st, err
}

// putStatusMap writes map entries sorted by user id so that encoding is
// deterministic.
func putStatusMap(w *writer, m map[string]tichu.TichuCallStatus) {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	w.u16(uint16(len(ids)))
	for _, id := range ids {
		w.str(id)
		w.u8(byte(m[id]))
	}
}

func takeStatusMap(r *reader) (map[string]tichu.TichuCallStatus, error) {
	n, err := r.u16()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make(map[string]tichu.TichuCallStatus, n)
	for i := 0; i < int(n); i++ {
		id, err := r.str()
		if err != nil {
			return nil, err
		}
		st, err := r.u8()
		if err != nil {
			return nil, err
		}
		out[id] = tichu.TichuCallStatus(st)
	}
	return out, nil
}

// writer appends little-endian fields to a growing frame.
type writer struct {
	buf []byte
}

func (w *writer) u8(v byte) {
	w.buf = append(w.buf, v)
}

func (w *writer) u16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *writer) i32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

func (w *writer) bool(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *writer) str(s string) {
	w.u16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) strs(ss []string) {
	w.u16(uint16(len(ss)))
	for _, s := range ss {
		w.str(s)
	}
}

func (w *writer) cards(cs []card.Card) {
	w.u16(uint16(len(cs)))
	w.buf = append(w.buf, card.Cards2bytes(cs)...)
}

// reader walks a frame with bounds checks; any overrun is an error.
type reader struct {
	bytes []byte
	off   int
}

func newReader(b []byte) *reader {
	return &reader{bytes: b}
}

func (r *reader) take(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.bytes) {
		return nil, fmt.Errorf("codec: frame truncated at offset %d", r.off)
	}
	out := r.bytes[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *reader) u8() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) i32() (int32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *reader) bool() (bool, error) {
	b, err := r.u8()
	return b != 0, err
}

func (r *reader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) strs() ([]string, error) {
	n, err := r.u16()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]string, 0, n)
	for i := 0; i < int(n); i++ {
		s, err := r.str()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *reader) cards() ([]card.Card, error) {
	n, err := r.u16()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	return card.Bytes2cards(b), nil
}

func (r *reader) done() bool {
	return r.off == len(r.bytes)
}

func (r *reader) remaining() int {
	return len(r.bytes) - r.off
}

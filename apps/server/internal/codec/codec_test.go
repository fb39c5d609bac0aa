package codec

import (
	"reflect"
	"testing"

	"tichu-lite/card"
	"tichu-lite/tichu"
)

func roundTripCTS(t *testing.T, m CTS) {
	t.Helper()
	got, err := DecodeCTS(EncodeCTS(m))
	if err != nil {
		t.Fatalf("decode %T: %v", m, err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Fatalf("round trip %T:\n got  %#v\n want %#v", m, got, m)
	}
}

func roundTripSTC(t *testing.T, m STC) {
	t.Helper()
	got, err := DecodeSTC(EncodeSTC(m))
	if err != nil {
		t.Fatalf("decode %T: %v", m, err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Fatalf("round trip %T:\n got  %#v\n want %#v", m, got, m)
	}
}

func TestCTSRoundTrip(t *testing.T) {
	for _, m := range []CTS{
		JoinGameWithGameCode{UserID: "u-1", DisplayName: "Ada", GameCode: "ABC234"},
		JoinGameWithGameCode{UserID: "no_id", DisplayName: "Ada", GameCode: ""},
		JoinRandomGame{UserID: "u-2", DisplayName: "Grace"},
		CreateGame{UserID: "u-3", DisplayName: "Édith 🀄"},
		LeaveGame{},
		MoveToTeam{Team: tichu.TeamOptionB},
		RenameTeam{Team: tichu.TeamOptionA, Name: "The Dragons"},
		StartGrandTichu{},
		CallGrandTichu{Decision: tichu.DecisionCall},
		CallGrandTichu{Decision: tichu.DecisionDecline},
		CallSmallTichu{},
		SubmitTrade{Trades: [3]tichu.CardTrade{
			{Card: card.CardSword5, ToUserID: "u-1"},
			{Card: card.CardPhoenix, ToUserID: "u-2"},
			{Card: card.CardJadeA, ToUserID: "u-4"},
		}},
		PlayCards{Cards: []card.Card{card.CardMahJong}, WishedFor: 11},
		PlayCards{Cards: []card.Card{card.CardDragon}, GiveDragonTo: "u-2"},
		PlayCards{Cards: []card.Card{card.CardStar8, card.CardJade8}},
		GiveDragon{UserID: "u-2"},
		Pass{},
		Ping{},
		Pong{},
		Test{Text: "hello"},
		AdminSkipToPlay{},
	} {
		roundTripCTS(t, m)
	}
}

func TestSTCRoundTripSimple(t *testing.T) {
	for _, m := range []STC{
		UserIdAssigned{UserID: "u-9"},
		GameCreated{GameID: "g-1", GameCode: "QQRSTU"},
		GameState{},
		OwnerReassigned{UserID: "u-2"},
		TeamARenamed{Name: "North"},
		TeamBRenamed{Name: "South"},
		UserJoined{UserID: "u-1"},
		UserLeft{UserID: "u-1"},
		UserMovedToTeamA{UserID: "u-3"},
		UserMovedToTeamB{UserID: "u-3"},
		SmallTichuCalled{UserID: "u-4"},
		GrandTichuCalled{UserID: "u-4", Decision: tichu.DecisionCall},
		FirstCardsDealt{},
		DealFinalCards{},
		TradeSubmitted{UserID: "u-1"},
		CardsPlayed{},
		UserPassed{UserID: "u-2"},
		DragonWasWon{},
		PlayerReceivedDragon{UserID: "u-3"},
		GameEnded{},
		GameEndedFinal{},
		Ping{},
		Pong{},
		Test{Text: "echo"},
		UnexpectedMessageReceived{Debug: "wrong_stage"},
		UserDisconnected{UserID: "u-1"},
		UserReconnected{UserID: "u-1"},
	} {
		roundTripSTC(t, m)
	}
}

func TestGameStateRoundTrip(t *testing.T) {
	state := &tichu.PublicGameState{
		GameID:   "g-7",
		GameCode: "WXYZ22",
		OwnerID:  "u-1",
		Participants: []tichu.PublicUser{
			{
				UserID:             "u-1",
				DisplayName:        "Ada",
				Role:               tichu.RoleOwner,
				HandSize:           3,
				Hand:               card.CardList{card.CardSword5, card.CardPhoenix, card.CardJadeA},
				Tricks:             card.CardList{card.CardStarK},
				HasPlayedFirstCard: true,
			},
			{
				UserID:      "u-2",
				DisplayName: "Grace",
				HandSize:    14,
			},
		},
		Stage: tichu.PublicStage{
			Kind: tichu.StagePlay,
			Teams: []tichu.Team{
				{Name: "Team A", UserIDs: []string{"u-1", "u-3"}, Score: -120},
				{Name: "Team B", UserIDs: []string{"u-2", "u-4"}, Score: 415},
			},
			SmallTichus: map[string]tichu.TichuCallStatus{
				"u-1": tichu.CallStatusCalled,
				"u-2": tichu.CallStatusUndecided,
			},
			GrandTichus: map[string]tichu.TichuCallStatus{
				"u-4": tichu.CallStatusFailed,
			},
			Table: []tichu.TablePlay{
				{
					UserID: "u-2",
					Combo: tichu.Combo{
						Cards:    card.CardList{card.CardStar8, card.CardJade8},
						Kind:     tichu.ComboPair,
						LeadRank: 16,
						Length:   2,
					},
				},
			},
			TurnUserID:  "u-3",
			WishedFor:   11,
			FinishOrder: []string{"u-4"},
		},
	}
	roundTripSTC(t, GameState{State: state})
	roundTripSTC(t, GameStageChanged{Stage: state.Stage})
}

func TestStatusMapEncodingIsDeterministic(t *testing.T) {
	stage := tichu.PublicStage{
		Kind: tichu.StageGrandTichu,
		SmallTichus: map[string]tichu.TichuCallStatus{
			"zz": tichu.CallStatusCalled,
			"aa": tichu.CallStatusUndecided,
			"mm": tichu.CallStatusAchieved,
		},
	}
	first := EncodeSTC(GameStageChanged{Stage: stage})
	for i := 0; i < 20; i++ {
		if again := EncodeSTC(GameStageChanged{Stage: stage}); !reflect.DeepEqual(again, first) {
			t.Fatal("same stage encoded to different bytes")
		}
	}
}

func TestDecodeRejectsMalformedFrames(t *testing.T) {
	if _, err := DecodeCTS(nil); err == nil {
		t.Fatal("empty CTS frame accepted")
	}
	if _, err := DecodeCTS([]byte{0xEE}); err == nil {
		t.Fatal("unknown CTS opcode accepted")
	}
	if _, err := DecodeSTC([]byte{0xEE}); err == nil {
		t.Fatal("unknown STC opcode accepted")
	}

	// Truncate a valid frame at every possible length.
	full := EncodeCTS(JoinGameWithGameCode{UserID: "u-1", DisplayName: "Ada", GameCode: "ABC234"})
	for n := 0; n < len(full); n++ {
		if _, err := DecodeCTS(full[:n]); err == nil {
			t.Fatalf("truncated frame of %d bytes accepted", n)
		}
	}

	// Trailing garbage after a complete message.
	if _, err := DecodeCTS(append(EncodeCTS(Pass{}), 0x00)); err == nil {
		t.Fatal("trailing bytes after Pass accepted")
	}
	if _, err := DecodeSTC(append(EncodeSTC(GameEnded{}), 0x01, 0x02)); err == nil {
		t.Fatal("trailing bytes after GameEnded accepted")
	}
}

package network

import (
	"fmt"

	"tricktable/internal/game/card"
	"tricktable/internal/game/engine"
)

type LoginAction int

const (
	NewUser LoginAction = iota + 1
	LoginUser
)

type RequestKind int

const (
	RequestAvailableGames RequestKind = iota + 1
	RequestGameStatus
	RequestLobbyStatus
	RequestNewLobby
	RequestJoinLobby
	RequestLeaveLobby
)

func (r RequestKind) String() string {
	switch r {
	case RequestAvailableGames:
		return "AvailableGames"
	case RequestGameStatus:
		return "GameStatus"
	case RequestLobbyStatus:
		return "LobbyStatus"
	case RequestNewLobby:
		return "NewLobby"
	case RequestJoinLobby:
		return "JoinLobby"
	case RequestLeaveLobby:
		return "LeaveLobby"
	}
	return fmt.Sprintf("RequestKind(%d)", int(r))
}

type ResponseCode int

const (
	ResponseFail ResponseCode = iota + 1
	ResponseUnauthorized
	ResponseOK
)

type Heartbeat struct {
	Header
}

func (*Heartbeat) Type() MessageType { return TypeHeartbeat }

// UserLogin opens a session. The password travels as the hex MD5 digest
// the client computed.
type UserLogin struct {
	Header
	Action          LoginAction `validate:"oneof=1 2"`
	Username        string      `validate:"required,max=32,printascii"`
	PasswordHashHex string      `validate:"required,len=32,hexadecimal"`
}

func (*UserLogin) Type() MessageType { return TypeUserLogin }

// ClientRequest asks for a listing, a status or a lobby change. Data holds
// request-specific arguments such as Seat and GameType.
type ClientRequest struct {
	Header
	Request RequestKind    `validate:"min=1,max=6"`
	GameID  int            `validate:"gte=0"`
	Data    map[string]any `json:",omitempty"`
}

func (*ClientRequest) Type() MessageType { return TypeClientRequest }

// GamePlay is a card or bid for a running game.
type GamePlay struct {
	Header
	GameID int       `validate:"gte=0"`
	Player string    `validate:"required"`
	Card   card.Card `validate:"-"`
}

func (*GamePlay) Type() MessageType { return TypeGamePlay }

func (g *GamePlay) Validate() error { return g.Card.Validate() }

// GameStatus is one seat's view of a table.
type GameStatus struct {
	Header
	GameID            int             `validate:"gte=0"`
	GameType          engine.GameType `validate:"min=1,max=2"`
	Players           [engine.NumSeats]string
	Hands             [engine.NumSeats][]card.Card
	HandSizes         [engine.NumSeats]int
	PlayedCardsBySeat [engine.NumSeats]*card.Card
	CenterActionCards []card.Card
	Scores            [engine.NumSeats][]int
	CurrentGameStatus string
	CurrentPlayer     int `validate:"gte=0,lt=4"`
	Dealer            int
	Round             int
	TrumpSuit         *card.Suit `json:",omitempty"`
}

func (*GameStatus) Type() MessageType { return TypeGameStatus }

// NewGameStatus wraps a table projection for the wire.
func NewGameStatus(st engine.Status) *GameStatus {
	return &GameStatus{
		GameID:            st.GameID,
		GameType:          st.GameType,
		Players:           st.Players,
		Hands:             st.Hands,
		HandSizes:         st.HandSizes,
		PlayedCardsBySeat: st.PlayedCardsBySeat,
		CenterActionCards: st.CenterActionCards,
		Scores:            st.Scores,
		CurrentGameStatus: st.CurrentGameStatus,
		CurrentPlayer:     st.CurrentPlayer,
		Dealer:            st.Dealer,
		Round:             st.Round,
		TrumpSuit:         st.Trump,
	}
}

type LobbyStatus struct {
	Header
	GameID     int `validate:"gte=0"`
	Players    [engine.NumSeats]*string
	GameType   engine.GameType `validate:"min=1,max=2"`
	LobbyReady bool
}

func (*LobbyStatus) Type() MessageType { return TypeLobbyStatus }

type GameSummary struct {
	ID       int
	GameType engine.GameType
}

type GameList struct {
	Header
	Games   []GameSummary
	Lobbies []GameSummary
}

func (*GameList) Type() MessageType { return TypeGameList }

type ServerResponse struct {
	Header
	ResponseCode ResponseCode `validate:"min=1,max=3"`
	User         string
	Message      string `json:",omitempty"`
}

func (*ServerResponse) Type() MessageType { return TypeServerResponse }

// Response builds a ServerResponse addressed to user.
func Response(code ResponseCode, user, format string, args ...any) *ServerResponse {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &ServerResponse{ResponseCode: code, User: user, Message: msg}
}

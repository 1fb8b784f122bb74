package network

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// MessageType is the integer tag every envelope carries in its
// "MessageType" field.
type MessageType int

const (
	TypeInvalid MessageType = iota
	TypeHeartbeat
	TypeUserLogin
	TypeClientRequest
	TypeGamePlay
	TypeGameStatus
	TypeLobbyStatus
	TypeGameList
	TypeServerResponse
)

func (t MessageType) String() string {
	switch t {
	case TypeHeartbeat:
		return "Heartbeat"
	case TypeUserLogin:
		return "UserLogin"
	case TypeClientRequest:
		return "ClientRequest"
	case TypeGamePlay:
		return "GamePlay"
	case TypeGameStatus:
		return "GameStatus"
	case TypeLobbyStatus:
		return "LobbyStatus"
	case TypeGameList:
		return "GameList"
	case TypeServerResponse:
		return "ServerResponse"
	}
	return fmt.Sprintf("MessageType(%d)", int(t))
}

var (
	ErrMalformed   = errors.New("malformed envelope")
	ErrUnknownType = errors.New("unknown message type")
	ErrInvalid     = errors.New("invalid message")
)

// Message is one envelope kind.
type Message interface {
	Type() MessageType
	stamp(MessageType)
}

// Header carries the envelope tag. It is embedded by every message.
type Header struct {
	MessageType MessageType `json:"MessageType"`
}

func (h *Header) stamp(t MessageType) { h.MessageType = t }

// selfValidator is implemented by messages with checks struct tags cannot
// express.
type selfValidator interface {
	Validate() error
}

var validate = validator.New()

type tagPeek struct {
	MessageType *MessageType `json:"MessageType"`
}

// Decode reads the tag of frame, decodes it into the matching message kind
// and validates it. Any error means the frame carries no usable message.
func Decode(frame []byte) (Message, error) {
	var peek tagPeek
	if err := json.Unmarshal(frame, &peek); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if peek.MessageType == nil {
		return nil, fmt.Errorf("%w: missing MessageType", ErrUnknownType)
	}

	var m Message
	switch *peek.MessageType {
	case TypeHeartbeat:
		m = &Heartbeat{}
	case TypeUserLogin:
		m = &UserLogin{}
	case TypeClientRequest:
		m = &ClientRequest{}
	case TypeGamePlay:
		m = &GamePlay{}
	case TypeGameStatus:
		m = &GameStatus{}
	case TypeLobbyStatus:
		m = &LobbyStatus{}
	case TypeGameList:
		m = &GameList{}
	case TypeServerResponse:
		m = &ServerResponse{}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(*peek.MessageType))
	}

	if err := json.Unmarshal(frame, m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, m.Type(), err)
	}
	if err := validate.Struct(m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, m.Type(), err)
	}
	if v, ok := m.(selfValidator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, m.Type(), err)
		}
	}
	return m, nil
}

// Encode stamps the tag of m and marshals it.
func Encode(m Message) ([]byte, error) {
	m.stamp(m.Type())
	return json.Marshal(m)
}

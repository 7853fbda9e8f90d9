package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/DoyleJ11/guesswho/internal/catalog"
)

var ErrBadMessage = errors.New("bad message")
var ErrUnknownType = errors.New("unknown message type")

const (
	MaxNameRunes   = 32
	MaxAvatarBytes = 2 << 20
)

// Envelope is the frame every message travels in.
type Envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func EncodeClient(m ClientMessage) ([]byte, error) { return encode(m.MessageType(), m) }

func EncodeServer(m ServerMessage) ([]byte, error) { return encode(m.MessageType(), m) }

func encode(t Type, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", t, err)
	}
	return json.Marshal(Envelope{Type: t, Data: data})
}

// DecodeClient parses and validates a frame sent by a player. Anything that
// comes back without error is safe to hand to the room.
func DecodeClient(raw []byte) (ClientMessage, error) {
	env, err := open(raw)
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case TypeJoinRoom:
		var m JoinRoom
		if err := unmarshal(env, &m); err != nil {
			return nil, err
		}
		m.PlayerName = strings.TrimSpace(m.PlayerName)
		if err := ValidateName(m.PlayerName); err != nil {
			return nil, err
		}
		if len(m.PlayerAvatar) > MaxAvatarBytes {
			return nil, fmt.Errorf("%w: avatar larger than %d bytes", ErrBadMessage, MaxAvatarBytes)
		}
		return m, nil

	case TypeLeaveRoom:
		return LeaveRoom{}, nil

	case TypeRoomInfo:
		return RoomInfoRequest{}, nil

	case TypeStartGame:
		var raw struct {
			Mode             string          `json:"mode"`
			CustomCharacters json.RawMessage `json:"customCharacters"`
		}
		if err := unmarshal(env, &raw); err != nil {
			return nil, err
		}
		m := StartGame{Mode: strings.TrimSpace(raw.Mode)}
		if len(raw.CustomCharacters) > 0 {
			custom, err := catalog.DecodeRoster(raw.CustomCharacters)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBadMessage, err)
			}
			if len(custom) > 0 {
				if err := catalog.ValidateRoster(custom); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrBadMessage, err)
				}
				m.CustomCharacters = custom
			}
		}
		return m, nil

	case TypeGuessCharacter:
		var m struct {
			CharacterID *int `json:"characterId"`
		}
		if err := unmarshal(env, &m); err != nil {
			return nil, err
		}
		if m.CharacterID == nil {
			return nil, fmt.Errorf("%w: %s: characterId is required", ErrBadMessage, env.Type)
		}
		return GuessCharacter{CharacterID: *m.CharacterID}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

// DecodeServer parses a frame sent by the host.
func DecodeServer(raw []byte) (ServerMessage, error) {
	env, err := open(raw)
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case TypePlayerJoined:
		return decodeAs[PlayerJoined](env)
	case TypePlayerLeft:
		return decodeAs[PlayerLeft](env)
	case TypeRoomInfo:
		return decodeAs[RoomInfo](env)
	case TypeGameStarted:
		return decodeAs[GameStarted](env)
	case TypeGuessWrong:
		return decodeAs[GuessWrong](env)
	case TypeGameOver:
		return decodeAs[GameOver](env)
	case TypeError:
		return decodeAs[Error](env)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decodeAs[T ServerMessage](env Envelope) (ServerMessage, error) {
	var v T
	if err := unmarshal(env, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 {
		return fmt.Errorf("%w: player name is required", ErrBadMessage)
	}
	if n > MaxNameRunes {
		return fmt.Errorf("%w: player name longer than %d characters", ErrBadMessage, MaxNameRunes)
	}
	return nil
}

func open(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadMessage, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrBadMessage)
	}
	return env, nil
}

func unmarshal(env Envelope, v any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadMessage, env.Type, err)
	}
	return nil
}

package protocol

import "github.com/DoyleJ11/guesswho/internal/catalog"

type Type string

const (
	TypeJoinRoom       Type = "join-room"
	TypeLeaveRoom      Type = "leave-room"
	TypePlayerJoined   Type = "player-joined"
	TypePlayerLeft     Type = "player-left"
	TypeRoomInfo       Type = "room-info"
	TypeStartGame      Type = "start-game"
	TypeGameStarted    Type = "game-started"
	TypeGuessCharacter Type = "guess-character"
	TypeGuessWrong     Type = "guess-wrong"
	TypeGameOver       Type = "game-over"
	TypeError          Type = "error"
)

// User-facing rejection texts. Clients match on these.
const (
	MsgRoomFull     = "Room is full"
	MsgRoomNotFound = "Room not found"
)

// ClientMessage is anything a player sends to the host.
type ClientMessage interface {
	MessageType() Type
	isClientMessage()
}

type JoinRoom struct {
	PlayerName   string `json:"playerName"`
	PlayerAvatar string `json:"playerAvatar,omitempty"`
}

type LeaveRoom struct{}

type RoomInfoRequest struct{}

type StartGame struct {
	Mode             string              `json:"mode"`
	CustomCharacters []catalog.Character `json:"customCharacters,omitempty"`
}

type GuessCharacter struct {
	CharacterID int `json:"characterId"`
}

func (JoinRoom) MessageType() Type        { return TypeJoinRoom }
func (LeaveRoom) MessageType() Type       { return TypeLeaveRoom }
func (RoomInfoRequest) MessageType() Type { return TypeRoomInfo }
func (StartGame) MessageType() Type       { return TypeStartGame }
func (GuessCharacter) MessageType() Type  { return TypeGuessCharacter }

func (JoinRoom) isClientMessage()        {}
func (LeaveRoom) isClientMessage()       {}
func (RoomInfoRequest) isClientMessage() {}
func (StartGame) isClientMessage()       {}
func (GuessCharacter) isClientMessage()  {}

// ServerMessage is anything the host sends to a player.
type ServerMessage interface {
	MessageType() Type
	isServerMessage()
}

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Ready  bool   `json:"ready"`
}

type PlayerJoined struct {
	Players []Player `json:"players"`
}

type PlayerLeft struct {
	Players []Player `json:"players"`
}

// RoomInfo is both the reply to a room-info request and the confirmation a
// player receives right after being admitted.
type RoomInfo struct {
	Host      string     `json:"host"`
	Players   []Player   `json:"players"`
	Mode      string     `json:"mode"`
	GameState *GameState `json:"gameState"`
	YourID    string     `json:"yourId,omitempty"`
}

// GameState is the recipient's view of the current round. It never carries
// the opponent's character while the round is running.
type GameState struct {
	Characters    []catalog.Character `json:"characters"`
	YourCharacter *catalog.Character  `json:"yourCharacter,omitempty"`
	Winner        string              `json:"winner,omitempty"`
}

type Opponent struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type GameStarted struct {
	Characters    []catalog.Character `json:"characters"`
	YourCharacter catalog.Character   `json:"yourCharacter"`
	YourID        string              `json:"yourId"`
	OpponentID    string              `json:"opponentId"`
	Opponent      Opponent            `json:"opponent"`
}

type GuessWrong struct {
	Message     string `json:"message"`
	CharacterID int    `json:"characterId"`
}

type GameOver struct {
	Winner            string            `json:"winner"`
	GuesserCharacter  catalog.Character `json:"guesser_character"`
	GuesserName       string            `json:"guesser_name"`
	OpponentCharacter catalog.Character `json:"opponent_character"`
	OpponentName      string            `json:"opponent_name"`
}

type Error struct {
	Message string `json:"message"`
}

func (PlayerJoined) MessageType() Type { return TypePlayerJoined }
func (PlayerLeft) MessageType() Type   { return TypePlayerLeft }
func (RoomInfo) MessageType() Type     { return TypeRoomInfo }
func (GameStarted) MessageType() Type  { return TypeGameStarted }
func (GuessWrong) MessageType() Type   { return TypeGuessWrong }
func (GameOver) MessageType() Type     { return TypeGameOver }
func (Error) MessageType() Type        { return TypeError }

func (PlayerJoined) isServerMessage() {}
func (PlayerLeft) isServerMessage()   {}
func (RoomInfo) isServerMessage()     {}
func (GameStarted) isServerMessage()  {}
func (GuessWrong) isServerMessage()   {}
func (GameOver) isServerMessage()     {}
func (Error) isServerMessage()        {}

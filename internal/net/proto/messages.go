package proto

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"mech-arena/server/internal/visibility"
)

const (
	// Version tracks the feed protocol revision expected by clients.
	Version = 1

	typeFeed      = "feed"
	typeHeartbeat = "heartbeat"
	typeCadence   = "cadence"
	typeError     = "error"
)

// Client message type identifiers.
const (
	TypeHeartbeat = typeHeartbeat
	TypeCadence   = typeCadence
	TypeFollow    = "follow"
)

// Exported aliases for outbound message type identifiers.
const (
	TypeFeed  = typeFeed
	TypeError = typeError
)

// Tile is one exterior mask entry on the wire.
type Tile struct {
	X          int     `json:"x" msgpack:"x"`
	Y          int     `json:"y" msgpack:"y"`
	Visibility float64 `json:"v" msgpack:"v"`
}

// InteriorTile is one interior sighting on the wire.
type InteriorTile struct {
	Structure  string  `json:"s" msgpack:"s"`
	Floor      int     `json:"f" msgpack:"f"`
	X          int     `json:"x" msgpack:"x"`
	Y          int     `json:"y" msgpack:"y"`
	Visibility float64 `json:"v" msgpack:"v"`
}

// FeedFrame is one viewer's visibility as streamed by the debug feed.
type FeedFrame struct {
	Ver       int            `json:"ver" msgpack:"ver"`
	Type      string         `json:"type" msgpack:"type"`
	Tick      uint64         `json:"tick" msgpack:"tick"`
	Viewer    string         `json:"viewer" msgpack:"viewer"`
	X         float64        `json:"x" msgpack:"x"`
	Y         float64        `json:"y" msgpack:"y"`
	Computed  uint64         `json:"computed" msgpack:"computed"`
	Threshold float64        `json:"threshold" msgpack:"threshold"`
	Tiles     []Tile         `json:"tiles" msgpack:"tiles"`
	Interiors []InteriorTile `json:"interiors,omitempty" msgpack:"interiors,omitempty"`
}

// NewFeedFrame flattens snap for transmission at tick. Tiles and interiors
// keep the snapshot's deterministic order.
func NewFeedFrame(tick uint64, snap visibility.Snapshot) FeedFrame {
	frame := FeedFrame{
		Ver:       Version,
		Type:      typeFeed,
		Tick:      tick,
		Viewer:    snap.Viewer.String(),
		X:         snap.Position.X,
		Y:         snap.Position.Y,
		Computed:  snap.Tick,
		Threshold: snap.Threshold,
	}
	tiles := snap.Tiles()
	frame.Tiles = make([]Tile, len(tiles))
	for i, t := range tiles {
		frame.Tiles[i] = Tile{X: t.Tile.X, Y: t.Tile.Y, Visibility: t.Visibility}
	}
	for _, s := range snap.Interiors() {
		frame.Interiors = append(frame.Interiors, InteriorTile{
			Structure:  s.Structure.String(),
			Floor:      s.Floor,
			X:          s.Tile.X,
			Y:          s.Tile.Y,
			Visibility: s.Visibility,
		})
	}
	return frame
}

// Encoding selects the feed frame wire format.
type Encoding string

const (
	EncodingMsgpack Encoding = "msgpack"
	EncodingJSON    Encoding = "json"
)

// ParseEncoding maps a query value to an Encoding. Empty selects msgpack.
func ParseEncoding(value string) (Encoding, error) {
	switch Encoding(value) {
	case "", EncodingMsgpack:
		return EncodingMsgpack, nil
	case EncodingJSON:
		return EncodingJSON, nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", value)
	}
}

// Binary reports whether frames in this encoding go out as binary messages.
func (e Encoding) Binary() bool {
	return e != EncodingJSON
}

// EncodeFeedFrame renders frame in the requested encoding.
func EncodeFeedFrame(frame FeedFrame, enc Encoding) ([]byte, error) {
	if enc == EncodingJSON {
		return json.Marshal(frame)
	}
	return msgpack.Marshal(&frame)
}

// DecodeFeedFrame parses a frame produced by EncodeFeedFrame.
func DecodeFeedFrame(data []byte, enc Encoding) (FeedFrame, error) {
	var frame FeedFrame
	var err error
	if enc == EncodingJSON {
		err = json.Unmarshal(data, &frame)
	} else {
		err = msgpack.Unmarshal(data, &frame)
	}
	if err != nil {
		return frame, err
	}
	if frame.Ver != Version {
		return frame, fmt.Errorf("unsupported feed protocol version %d", frame.Ver)
	}
	return frame, nil
}

// ClientMessage captures an inbound websocket message from a feed client.
type ClientMessage struct {
	Ver      int    `json:"ver,omitempty"`
	Type     string `json:"type"`
	SentAt   int64  `json:"sentAt,omitempty"`
	Interval *int   `json:"interval,omitempty"`
	Viewer   string `json:"viewer,omitempty"`
}

// DecodeClientMessage converts raw websocket payloads into a structured message.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// Heartbeat answers a client heartbeat.
type Heartbeat struct {
	ServerTime int64
	ClientTime int64
	RTTMillis  int64
}

// EncodeHeartbeat renders a heartbeat acknowledgement.
func EncodeHeartbeat(msg Heartbeat) ([]byte, error) {
	frame := struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		ServerTime int64  `json:"serverTime"`
		ClientTime int64  `json:"clientTime"`
		RTTMillis  int64  `json:"rtt"`
	}{
		Ver:        Version,
		Type:       typeHeartbeat,
		ServerTime: msg.ServerTime,
		ClientTime: msg.ClientTime,
		RTTMillis:  msg.RTTMillis,
	}
	return json.Marshal(frame)
}

// CadenceAck confirms the interval the feed applied.
type CadenceAck struct {
	Interval int
}

// EncodeCadenceAck renders a cadence acknowledgement.
func EncodeCadenceAck(msg CadenceAck) ([]byte, error) {
	frame := struct {
		Ver      int    `json:"ver"`
		Type     string `json:"type"`
		Interval int    `json:"interval"`
	}{
		Ver:      Version,
		Type:     typeCadence,
		Interval: msg.Interval,
	}
	return json.Marshal(frame)
}

// ErrorMessage tells the client a request was refused.
type ErrorMessage struct {
	Reason string
}

// EncodeError renders an error notification.
func EncodeError(msg ErrorMessage) ([]byte, error) {
	frame := struct {
		Ver    int    `json:"ver"`
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}{
		Ver:    Version,
		Type:   typeError,
		Reason: msg.Reason,
	}
	return json.Marshal(frame)
}

package conversation

import (
	"fmt"
	"time"

	"github.com/justestif/go-mood-music/internal/lexicon"
	"github.com/justestif/go-mood-music/internal/search"
)

// Stage is the conversation stage.
type Stage int

// Stages. Confirmed is terminal until a new external emotion arrives.
const (
	Initial Stage = iota
	Confirming
	Confirmed
)

func (s Stage) String() string {
	switch s {
	case Initial:
		return "initial"
	case Confirming:
		return "confirming"
	case Confirmed:
		return "confirmed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// MarshalText encodes the stage by name.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Sender tags a message.
type Sender string

// Message senders.
const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// Message is one chat log entry. IDs increase monotonically per session.
type Message struct {
	ID     int64     `json:"id"`
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// State is the mutable conversation record.
type State struct {
	Stage           Stage            `json:"stage"`
	DetectedEmotion *lexicon.Emotion `json:"detected_emotion"`
	Intensity       lexicon.Tier     `json:"intensity"`
	MoodConfirmed   bool             `json:"mood_confirmed"`
	// Suggested is the emotion awaiting confirmation, if any.
	Suggested *lexicon.Emotion `json:"suggested_emotion"`
	// AwaitingAnswer is set after the bot asked an explicit yes/no question.
	AwaitingAnswer bool      `json:"awaiting_answer"`
	Messages       []Message `json:"messages"`
}

func (s State) clone() State {
	s.DetectedEmotion = cloneEmotion(s.DetectedEmotion)
	s.Suggested = cloneEmotion(s.Suggested)
	s.Messages = append([]Message(nil), s.Messages...)
	return s
}

func cloneEmotion(e *lexicon.Emotion) *lexicon.Emotion {
	if e == nil {
		return nil
	}
	v := *e
	return &v
}

// Snapshot is an immutable copy of a session for presentation layers.
type Snapshot struct {
	State
	Query   string         `json:"query"`
	Tracks  []search.Track `json:"tracks"`
	Current *search.Track  `json:"current_track"`
	Index   int            `json:"index"`
	Playing bool           `json:"playing"`
	Busy    bool           `json:"busy"`
}

// Emitter receives presentation events. Implementations must not block
// and must not call back into the session.
type Emitter interface {
	AppendMessage(m Message)
	SetSearchResults(tracks []search.Track)
	SetCurrentTrack(t search.Track)
	PlaybackStateChanged(playing bool)
}

// NopEmitter discards every event.
type NopEmitter struct{}

func (NopEmitter) AppendMessage(Message)           {}
func (NopEmitter) SetSearchResults([]search.Track) {}
func (NopEmitter) SetCurrentTrack(search.Track)    {}
func (NopEmitter) PlaybackStateChanged(bool)       {}

var _ Emitter = NopEmitter{}

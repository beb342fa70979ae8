package domain

import "time"

// ConversationState is the position of a chat session in the scheduling flow.
type ConversationState string

const (
	StateAwaitingIntent       ConversationState = "awaiting_intent"
	StateAwaitingRegion       ConversationState = "awaiting_region"
	StateAwaitingExamType     ConversationState = "awaiting_exam_type"
	StateAwaitingDate         ConversationState = "awaiting_date"
	StateAwaitingTime         ConversationState = "awaiting_time"
	StateAwaitingConfirmation ConversationState = "awaiting_confirmation"
	StateCompleted            ConversationState = "completed"
)

func ParseConversationState(s string) (ConversationState, bool) {
	switch ConversationState(s) {
	case StateAwaitingIntent, StateAwaitingRegion, StateAwaitingExamType,
		StateAwaitingDate, StateAwaitingTime, StateAwaitingConfirmation,
		StateCompleted:
		return ConversationState(s), true
	default:
		return "", false
	}
}

// BookingDraft accumulates the data collected across a conversation. Fields
// fill in progressively; the zero value is an empty draft.
type BookingDraft struct {
	Region     string   `json:"region,omitempty"`
	ExamType   string   `json:"exam_type,omitempty"`
	Date       string   `json:"date,omitempty"` // DateLayout, normalized
	Offered    []string `json:"offered,omitempty"`
	Instant    string   `json:"instant,omitempty"` // InstantLayout
	ClientName string   `json:"client_name,omitempty"`
}

// Session is the per-conversation record handed to the state machine by value
// each turn and written back once per inbound message.
type Session struct {
	State     ConversationState `json:"state"`
	Draft     BookingDraft      `json:"draft"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewSession returns the default session a fresh conversation starts from.
func NewSession() Session {
	return Session{State: StateAwaitingIntent}
}

package domain

import "time"

// Match statuses for either side of a request.
const (
	MatchPending  = "pending"
	MatchAccepted = "accepted"
	MatchRejected = "rejected"
)

// Match is a pairwise connection between two developers. A match is
// mutual once both statuses are accepted; each accepted match backs one
// direct-message conversation.
type Match struct {
	ID             int64     `json:"id"`
	SenderID       int64     `json:"senderId"`
	ReceiverID     int64     `json:"receiverId"`
	SenderStatus   string    `json:"senderStatus"`
	ReceiverStatus string    `json:"receiverStatus"`
	LastMessage    string    `json:"lastMessage,omitempty"`
	LastMessageAt  time.Time `json:"lastMessageTimestamp,omitempty"`
	UnreadSender   int       `json:"-"`
	UnreadReceiver int       `json:"-"`
	Sender         *User     `json:"sender,omitempty"`
	Receiver       *User     `json:"receiver,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IsAccepted reports whether both sides have accepted.
func (m *Match) IsAccepted() bool {
	return m.SenderStatus == MatchAccepted && m.ReceiverStatus == MatchAccepted
}

// ActiveChat is the per-match chat listing shape: the match id doubles
// as the direct-message conversation id.
type ActiveChat struct {
	ID                   int64     `json:"id"`
	OtherUserID          int64     `json:"otherUserId"`
	OtherUserName        string    `json:"otherUserName"`
	OtherUserAvatar      string    `json:"otherUserAvatar"`
	LastMessage          string    `json:"lastMessage,omitempty"`
	LastMessageTimestamp time.Time `json:"lastMessageTimestamp,omitempty"`
	UnreadCount          int       `json:"unreadCount"`
}

// MatchProfile is the flattened counterpart profile returned by the
// friends and received-requests listings.
type MatchProfile struct {
	ID         int64    `json:"id"`
	MatchID    int64    `json:"matchId"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	AvatarURL  string   `json:"avatarUrl"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
	Interests  []string `json:"interests"`
	Experience string   `json:"experience"`
	Location   string   `json:"location"`
}

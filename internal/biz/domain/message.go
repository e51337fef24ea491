package domain

import "time"

// Author represents which side of the conversation wrote a message
type Author string

const (
	AuthorUser        Author = "user"
	AuthorCounterpart Author = "counterpart"
)

// MessageKind represents the message kind
type MessageKind string

const (
	KindText  MessageKind = "text"
	KindOffer MessageKind = "offer"
)

// OfferStatus represents the resolution state of an offer message
type OfferStatus string

const (
	OfferStatusNone     OfferStatus = ""
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

// Message represents one entry in the conversation log
type Message struct {
	ID        string
	Text      string
	Author    Author
	CreatedAt time.Time
	MsgKind   MessageKind

	// Offer fields, meaningful only when MsgKind is KindOffer
	OfferAmount    float64
	ActionsVisible bool // whether Accept/Reject/Counter actions are shown
	OfferStatus    OfferStatus
}

// IsOffer checks if the message is an offer
func (m *Message) IsOffer() bool {
	return m.MsgKind == KindOffer
}

// IsFromUser checks if the message was authored locally
func (m *Message) IsFromUser() bool {
	return m.Author == AuthorUser
}

// IsActionable checks whether Accept/Reject/Counter may still be applied.
// Self-authored offers are never actionable.
func (m *Message) IsActionable() bool {
	return m.IsOffer() && m.Author == AuthorCounterpart && m.ActionsVisible && m.OfferStatus == OfferStatusPending
}

// Resolve applies a terminal accept/reject transition to a pending offer.
// Returns false without mutating when the message is not actionable or the
// target status is not terminal, so repeated calls are no-ops.
func (m *Message) Resolve(status OfferStatus) bool {
	if status != OfferStatusAccepted && status != OfferStatusRejected {
		return false
	}
	if !m.IsActionable() {
		return false
	}
	m.OfferStatus = status
	m.ActionsVisible = false
	return true
}

// Retract hides the offer actions without resolving the offer
// (supersession by a newer offer).
func (m *Message) Retract() bool {
	if !m.IsOffer() || !m.ActionsVisible {
		return false
	}
	m.ActionsVisible = false
	return true
}

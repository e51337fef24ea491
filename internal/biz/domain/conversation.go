package domain

// Conversation represents the conversation aggregate root: an append-only,
// chronologically ordered message log. Messages are never reordered or
// deleted while the session is open.
type Conversation struct {
	ID       string
	Messages []Message
}

// NewConversation creates an empty conversation
func NewConversation(id string) *Conversation {
	return &Conversation{ID: id}
}

// Append adds a message at the end of the log
func (c *Conversation) Append(m Message) {
	c.Messages = append(c.Messages, m)
}

// Len returns the number of messages
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// Find returns the message with the given ID, or nil
func (c *Conversation) Find(id string) *Message {
	for i := range c.Messages {
		if c.Messages[i].ID == id {
			return &c.Messages[i]
		}
	}
	return nil
}

// Last returns the most recent message, or nil for an empty log
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}

// RetractOfferActions hides the actions of every offer message currently
// showing them. Sending or receiving a new offer supersedes all prior
// offers, so at most one offer ever has visible actions.
func (c *Conversation) RetractOfferActions() int {
	retracted := 0
	for i := range c.Messages {
		if c.Messages[i].Retract() {
			retracted++
		}
	}
	return retracted
}

// ActionableOffer returns the single offer message whose actions are
// visible, or nil when none is pending
func (c *Conversation) ActionableOffer() *Message {
	for i := range c.Messages {
		if c.Messages[i].IsActionable() {
			return &c.Messages[i]
		}
	}
	return nil
}

// ShowTimestampAt reports whether the message at index i ends a run of
// consecutive same-author messages: true for the last message, and for any
// message whose successor has a different author. Consumers use this to
// show one timestamp per authorship run.
func (c *Conversation) ShowTimestampAt(i int) bool {
	if i < 0 || i >= len(c.Messages) {
		return false
	}
	if i == len(c.Messages)-1 {
		return true
	}
	return c.Messages[i].Author != c.Messages[i+1].Author
}

// Snapshot returns a copy of the message log
func (c *Conversation) Snapshot() []Message {
	out := make([]Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}

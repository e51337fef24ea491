package domain

import (
	"testing"
	"time"
)

func TestConversation_AppendKeepsOrder(t *testing.T) {
	conv := NewConversation("c1")
	now := time.Now()

	conv.Append(Message{ID: "1", Text: "First", Author: AuthorUser, CreatedAt: now})
	conv.Append(Message{ID: "2", Text: "Second", Author: AuthorCounterpart, CreatedAt: now.Add(time.Second)})
	conv.Append(Message{ID: "3", Text: "Third", Author: AuthorUser, CreatedAt: now.Add(2 * time.Second)})

	if conv.Len() != 3 {
		t.Fatalf("Expected 3 messages, got %d", conv.Len())
	}
	if conv.Messages[0].ID != "1" || conv.Messages[1].ID != "2" || conv.Messages[2].ID != "3" {
		t.Error("Expected messages in insertion order")
	}
	if conv.Last().ID != "3" {
		t.Errorf("Expected last message '3', got %q", conv.Last().ID)
	}
}

func TestConversation_Find(t *testing.T) {
	conv := NewConversation("c1")
	conv.Append(Message{ID: "a", Text: "hello", Author: AuthorUser})

	if msg := conv.Find("a"); msg == nil || msg.Text != "hello" {
		t.Error("Expected to find message 'a'")
	}
	if msg := conv.Find("missing"); msg != nil {
		t.Error("Expected nil for unknown message ID")
	}
}

func TestConversation_RetractOfferActions(t *testing.T) {
	conv := NewConversation("c1")
	conv.Append(Message{ID: "1", Author: AuthorUser, MsgKind: KindText, Text: "hi"})
	conv.Append(Message{ID: "2", Author: AuthorUser, MsgKind: KindOffer, OfferAmount: 100})
	conv.Append(Message{ID: "3", Author: AuthorCounterpart, MsgKind: KindOffer, OfferAmount: 70, ActionsVisible: true, OfferStatus: OfferStatusPending})

	retracted := conv.RetractOfferActions()

	if retracted != 1 {
		t.Fatalf("Expected 1 retracted offer, got %d", retracted)
	}
	for i := range conv.Messages {
		if conv.Messages[i].ActionsVisible {
			t.Errorf("Expected no visible actions after supersession, message %s still visible", conv.Messages[i].ID)
		}
	}
	if conv.ActionableOffer() != nil {
		t.Error("Expected no actionable offer after supersession")
	}
}

func TestConversation_ActionableOffer_AtMostOne(t *testing.T) {
	conv := NewConversation("c1")
	conv.Append(Message{ID: "1", Author: AuthorCounterpart, MsgKind: KindOffer, OfferAmount: 70, ActionsVisible: true, OfferStatus: OfferStatusPending})

	offer := conv.ActionableOffer()
	if offer == nil || offer.ID != "1" {
		t.Fatal("Expected offer '1' to be actionable")
	}

	// A new counter-offer supersedes the old one before showing its own actions
	conv.RetractOfferActions()
	conv.Append(Message{ID: "2", Author: AuthorCounterpart, MsgKind: KindOffer, OfferAmount: 80, ActionsVisible: true, OfferStatus: OfferStatusPending})

	offer = conv.ActionableOffer()
	if offer == nil || offer.ID != "2" {
		t.Fatal("Expected only offer '2' to be actionable")
	}
}

func TestConversation_ShowTimestampAt(t *testing.T) {
	conv := NewConversation("c1")
	conv.Append(Message{ID: "1", Author: AuthorUser})
	conv.Append(Message{ID: "2", Author: AuthorUser})
	conv.Append(Message{ID: "3", Author: AuthorCounterpart})
	conv.Append(Message{ID: "4", Author: AuthorCounterpart})

	// One timestamp per authorship run, shown at the run's last message
	expected := []bool{false, true, false, true}
	for i, want := range expected {
		if got := conv.ShowTimestampAt(i); got != want {
			t.Errorf("ShowTimestampAt(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestConversation_ShowTimestampAt_LastAlwaysTrue(t *testing.T) {
	conv := NewConversation("c1")
	conv.Append(Message{ID: "1", Author: AuthorUser})

	if !conv.ShowTimestampAt(0) {
		t.Error("Expected the final message to always show its timestamp")
	}

	conv.Append(Message{ID: "2", Author: AuthorUser})
	if !conv.ShowTimestampAt(1) {
		t.Error("Expected the final message to always show its timestamp")
	}
}

func TestConversation_ShowTimestampAt_OutOfRange(t *testing.T) {
	conv := NewConversation("c1")
	if conv.ShowTimestampAt(0) {
		t.Error("Expected false for an empty log")
	}
	if conv.ShowTimestampAt(-1) {
		t.Error("Expected false for a negative index")
	}
}

func TestConversation_SnapshotIsACopy(t *testing.T) {
	conv := NewConversation("c1")
	conv.Append(Message{ID: "1", Text: "original", Author: AuthorUser})

	snap := conv.Snapshot()
	snap[0].Text = "mutated"

	if conv.Messages[0].Text != "original" {
		t.Error("Expected snapshot mutation not to affect the log")
	}
}

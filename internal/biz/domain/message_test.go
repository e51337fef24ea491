package domain

import "testing"

func TestMessage_Resolve_PendingOffer(t *testing.T) {
	msg := &Message{
		ID:             "m1",
		Author:         AuthorCounterpart,
		MsgKind:        KindOffer,
		OfferAmount:    70,
		ActionsVisible: true,
		OfferStatus:    OfferStatusPending,
	}

	if !msg.Resolve(OfferStatusAccepted) {
		t.Fatal("Expected Resolve to succeed on a pending offer")
	}
	if msg.OfferStatus != OfferStatusAccepted {
		t.Errorf("Expected status accepted, got %q", msg.OfferStatus)
	}
	if msg.ActionsVisible {
		t.Error("Expected actions to be hidden after resolve")
	}
}

func TestMessage_Resolve_Terminal(t *testing.T) {
	msg := &Message{
		ID:             "m1",
		Author:         AuthorCounterpart,
		MsgKind:        KindOffer,
		ActionsVisible: true,
		OfferStatus:    OfferStatusPending,
	}

	if !msg.Resolve(OfferStatusRejected) {
		t.Fatal("Expected first Resolve to succeed")
	}

	// Accepted and rejected are terminal states
	if msg.Resolve(OfferStatusAccepted) {
		t.Error("Expected Resolve to be a no-op after a terminal transition")
	}
	if msg.OfferStatus != OfferStatusRejected {
		t.Errorf("Expected status to stay rejected, got %q", msg.OfferStatus)
	}
}

func TestMessage_Resolve_SelfAuthoredOffer(t *testing.T) {
	// A party cannot accept or reject its own offer
	msg := &Message{
		ID:          "m1",
		Author:      AuthorUser,
		MsgKind:     KindOffer,
		OfferAmount: 100,
	}

	if msg.Resolve(OfferStatusAccepted) {
		t.Error("Expected Resolve to fail on a self-authored offer")
	}
	if msg.OfferStatus != OfferStatusNone {
		t.Errorf("Expected status unset, got %q", msg.OfferStatus)
	}
}

func TestMessage_Resolve_InvalidTarget(t *testing.T) {
	msg := &Message{
		Author:         AuthorCounterpart,
		MsgKind:        KindOffer,
		ActionsVisible: true,
		OfferStatus:    OfferStatusPending,
	}

	if msg.Resolve(OfferStatusPending) {
		t.Error("Expected Resolve to reject a non-terminal target status")
	}
	if msg.Resolve(OfferStatusNone) {
		t.Error("Expected Resolve to reject an empty target status")
	}
}

func TestMessage_Retract(t *testing.T) {
	msg := &Message{
		Author:         AuthorCounterpart,
		MsgKind:        KindOffer,
		ActionsVisible: true,
		OfferStatus:    OfferStatusPending,
	}

	if !msg.Retract() {
		t.Fatal("Expected Retract to succeed while actions are visible")
	}
	if msg.ActionsVisible {
		t.Error("Expected actions hidden after retract")
	}

	// A superseded offer can no longer be resolved
	if msg.Resolve(OfferStatusAccepted) {
		t.Error("Expected Resolve to fail on a retracted offer")
	}

	if msg.Retract() {
		t.Error("Expected second Retract to be a no-op")
	}
}

func TestMessage_Retract_TextMessage(t *testing.T) {
	msg := &Message{Author: AuthorUser, MsgKind: KindText, Text: "hi"}
	if msg.Retract() {
		t.Error("Expected Retract to be a no-op for text messages")
	}
}

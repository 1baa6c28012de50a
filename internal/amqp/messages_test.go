package amqp

import (
	"testing"
	"time"
)

func TestNewRecordSyncMessage(t *testing.T) {
	msg := NewRecordSyncMessage(OpSync, "tx-123", "user-1")

	if msg.Op != OpSync {
		t.Errorf("NewRecordSyncMessage() Op = %v, want %v", msg.Op, OpSync)
	}
	if msg.ID != "tx-123" {
		t.Errorf("NewRecordSyncMessage() ID = %v, want tx-123", msg.ID)
	}
	if msg.UserID != "user-1" {
		t.Errorf("NewRecordSyncMessage() UserID = %v, want user-1", msg.UserID)
	}
	if time.Since(msg.Timestamp) > time.Minute {
		t.Errorf("NewRecordSyncMessage() Timestamp too old: %v", msg.Timestamp)
	}
}

func TestRecordSyncMessage_JSONRoundTrip(t *testing.T) {
	original := NewRecordSyncMessage(OpDelete, "tx-456", "user-2")

	body, err := original.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	decoded, err := RecordSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("RecordSyncMessageFromJSON() error = %v", err)
	}

	if decoded.Op != original.Op {
		t.Errorf("round trip Op = %v, want %v", decoded.Op, original.Op)
	}
	if decoded.ID != original.ID {
		t.Errorf("round trip ID = %v, want %v", decoded.ID, original.ID)
	}
	if decoded.UserID != original.UserID {
		t.Errorf("round trip UserID = %v, want %v", decoded.UserID, original.UserID)
	}
}

func TestRecordSyncMessageFromJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{"empty", []byte("")},
		{"not json", []byte("not json at all")},
		{"truncated", []byte(`{"op":"sync",`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RecordSyncMessageFromJSON(tt.body); err == nil {
				t.Error("RecordSyncMessageFromJSON() expected error, got nil")
			}
		})
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "WithoutCause",
			err:  New(ErrCodeInvalidEdge, "target room does not exist: %s", "vault"),
			want: "INVALID_EDGE: target room does not exist: vault",
		},
		{
			name: "WithCause",
			err:  Wrap(ErrCodePersistence, stderrors.New("connection refused"), "save change-set"),
			want: "PERSIST_FAILED: save change-set: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeRoomNotFound, "no such room")

	if !Is(err, ErrCodeRoomNotFound) {
		t.Error("Is should match the error's code")
	}
	if Is(err, ErrCodeEdgeNotFound) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeRoomNotFound) {
		t.Error("Is should not match plain errors")
	}
}

func TestIsUnwrapsChain(t *testing.T) {
	inner := New(ErrCodePersistence, "redis write failed")
	wrapped := fmt.Errorf("session save: %w", inner)

	if !Is(wrapped, ErrCodePersistence) {
		t.Error("Is should unwrap wrapped errors")
	}
	if GetCode(wrapped) != ErrCodePersistence {
		t.Errorf("GetCode = %q, want PERSIST_FAILED", GetCode(wrapped))
	}
}

func TestUserMessage(t *testing.T) {
	structured := New(ErrCodeInvalidEdge, "an edge with this direction already exists")
	if got := UserMessage(structured); strings.Contains(got, "INVALID_EDGE") {
		t.Errorf("UserMessage should strip the code prefix, got %q", got)
	}

	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestGetCodeNonStructured(t *testing.T) {
	if got := GetCode(stderrors.New("x")); got != "" {
		t.Errorf("GetCode = %q, want empty", got)
	}
}

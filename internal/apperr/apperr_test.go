package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		err    *Error
		kind   Kind
		status int
	}{
		{Validation("bad"), KindValidation, http.StatusBadRequest},
		{Unauthorized("who"), KindUnauthorized, http.StatusUnauthorized},
		{Forbidden("no"), KindForbidden, http.StatusForbidden},
		{NotFound("gone"), KindNotFound, http.StatusNotFound},
		{Conflict("dup", nil), KindConflict, http.StatusConflict},
		{Gateway(http.StatusBadGateway, "down", nil), KindGateway, http.StatusBadGateway},
	}
	for _, tt := range tests {
		if tt.err.Kind != tt.kind || tt.err.Status != tt.status {
			t.Fatalf("got kind=%s status=%d want %s %d", tt.err.Kind, tt.err.Status, tt.kind, tt.status)
		}
	}
}

func TestAsThroughWrapping(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	wrapped := fmt.Errorf("create order: %w", Gateway(http.StatusBadGateway, "payment provider unavailable", cause))

	ae, ok := As(wrapped)
	if !ok {
		t.Fatalf("expected operational error in chain")
	}
	if ae.Status != http.StatusBadGateway {
		t.Fatalf("status=%d", ae.Status)
	}
	if !errors.Is(wrapped, cause) {
		t.Fatalf("cause lost")
	}
	if !IsKind(wrapped, KindGateway) || IsKind(wrapped, KindNotFound) {
		t.Fatalf("IsKind mismatch")
	}
	if _, ok := As(errors.New("plain")); ok {
		t.Fatalf("plain error must not match")
	}
}

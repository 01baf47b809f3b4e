package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessageFallsBackToKind(t *testing.T) {
	err := E(KindSpawnFailed, "")
	if err.Error() != string(KindSpawnFailed) {
		t.Fatalf("expected kind as message, got %q", err.Error())
	}
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	inner := E(KindInvalidSelection, "bad pair")
	wrapped := fmt.Errorf("launch: %w", inner)
	if got := KindOf(wrapped); got != KindInvalidSelection {
		t.Fatalf("expected invalid_selection, got %q", got)
	}
}

func TestKindOfUntypedError(t *testing.T) {
	if got := KindOf(fmt.Errorf("boom")); got != KindUnknown {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindInvalidInput, http.StatusBadRequest},
		{KindInvalidSelection, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindCollaboratorUnavailable, http.StatusServiceUnavailable},
		{KindCollaboratorTimeout, http.StatusGatewayTimeout},
		{KindSpawnFailed, http.StatusInternalServerError},
		{KindStore, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(E(tc.kind, "x")); got != tc.want {
			t.Fatalf("kind %s: expected %d, got %d", tc.kind, tc.want, got)
		}
	}
	if got := HTTPStatus(nil); got != http.StatusOK {
		t.Fatalf("expected 200 for nil error, got %d", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(KindStore, "insert play", cause)
	var appErr Error
	if !stderrors.As(err, &appErr) {
		t.Fatal("expected typed error")
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause preserved in chain")
	}
}

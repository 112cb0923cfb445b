package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dockwise/scheduler/internal/httperr"
)

func TestTimeoutErr_TranslatesDeadline(t *testing.T) {
	err := timeoutErr(context.DeadlineExceeded)

	var terr *httperr.TimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("timeoutErr(DeadlineExceeded) = %v, want TimeoutError", err)
	}
}

func TestTimeoutErr_TranslatesWrappedDeadline(t *testing.T) {
	wrapped := fmt.Errorf("query failed: %w", context.DeadlineExceeded)
	err := timeoutErr(wrapped)

	var terr *httperr.TimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("timeoutErr(wrapped deadline) = %v, want TimeoutError", err)
	}
}

func TestTimeoutErr_PassesOtherErrorsThrough(t *testing.T) {
	boom := errors.New("boom")
	if got := timeoutErr(boom); got != boom {
		t.Fatalf("timeoutErr(boom) = %v, want the original error", got)
	}
	if got := timeoutErr(nil); got != nil {
		t.Fatalf("timeoutErr(nil) = %v, want nil", got)
	}
}

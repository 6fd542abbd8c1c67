package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodeSurvivesWrapping(t *testing.T) {
	base := NewError(CodeInvalidTransition, "progress.complete_day", "day 3 is not the current day", nil)
	wrapped := fmt.Errorf("handler: %w", base)

	if !IsCode(wrapped, CodeInvalidTransition) {
		t.Fatalf("expected invalid_transition, got %q", CodeOf(wrapped))
	}
	if got := base.Error(); got != "progress.complete_day: day 3 is not the current day (invalid_transition)" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestWrapKeepsExistingCode(t *testing.T) {
	inner := NewError(CodeNotFound, "progress.get", "missing", nil)
	if got := CodeOf(Wrap(CodeInternal, "outer", inner)); got != CodeNotFound {
		t.Fatalf("Wrap overrode code: %q", got)
	}
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
	plain := errors.New("boom")
	wrapped := Wrap(CodeInternal, "op", plain)
	if !errors.Is(wrapped, plain) {
		t.Fatalf("Wrap should keep cause")
	}
	if CodeOf(plain) != "" {
		t.Fatalf("plain error should have no code")
	}
}

func TestContractOwns(t *testing.T) {
	c := Contract{Name: "progress", WriteTxOwnership: WriteTxOwnedByAggregate, Operations: []string{"progress.init"}}
	if !c.RequiresAggregateOwnedTx() {
		t.Fatalf("expected aggregate-owned tx")
	}
	if !c.Owns("progress.init") || c.Owns("progress.reset") {
		t.Fatalf("Owns: %+v", c)
	}
}

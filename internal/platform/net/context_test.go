package net

import (
	"context"
	"testing"
)

func TestWithRequest(t *testing.T) {
	base := context.Background()
	if WithRequest(base, "") != base {
		t.Fatalf("empty id should return ctx unchanged")
	}
	if got := RequestID(base); got != "" {
		t.Fatalf("RequestID(empty ctx) = %q", got)
	}
	ctx := WithRequest(base, "req-42")
	if got := RequestID(ctx); got != "req-42" {
		t.Fatalf("RequestID = %q, want req-42", got)
	}
}

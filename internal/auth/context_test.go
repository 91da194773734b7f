package auth

import (
	"context"
	"testing"
)

func TestWithIdentityAndFromContext(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: "u-1"})
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected Identity in context")
	}
	if got.UserID != "u-1" {
		t.Errorf("UserID = %q, want %q", got.UserID, "u-1")
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected false for missing Identity")
	}
}

func TestUserID(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: "u-7"})
	if UserID(ctx) != "u-7" {
		t.Errorf("UserID = %q, want u-7", UserID(ctx))
	}
}

func TestUserIDMissing(t *testing.T) {
	if UserID(context.Background()) != "" {
		t.Error("expected empty string for missing context")
	}
}

package flood

import (
	"fmt"
	"testing"
)

func TestAllowUnderLimit(t *testing.T) {
	fg := New(5)
	defer fg.Stop()

	for i := 0; i < 5; i++ {
		if !fg.Allow("user1") {
			t.Fatalf("event %d blocked under limit", i+1)
		}
	}
}

func TestBlockOverLimit(t *testing.T) {
	fg := New(3)
	defer fg.Stop()

	for i := 0; i < 3; i++ {
		if !fg.Allow("user1") {
			t.Fatalf("event %d blocked under limit", i+1)
		}
	}
	if fg.Allow("user1") {
		t.Error("event over limit was allowed")
	}
}

func TestUsersIndependent(t *testing.T) {
	fg := New(1)
	defer fg.Stop()

	if !fg.Allow("user1") {
		t.Fatal("first user blocked")
	}
	if !fg.Allow("user2") {
		t.Error("second user blocked by first user's events")
	}
	if fg.Allow("user1") {
		t.Error("first user allowed over limit")
	}
}

func TestManyUsers(t *testing.T) {
	fg := New(2)
	defer fg.Stop()

	for i := 0; i < 100; i++ {
		userID := fmt.Sprintf("user%d", i)
		if !fg.Allow(userID) {
			t.Fatalf("user %s blocked on first event", userID)
		}
	}
}

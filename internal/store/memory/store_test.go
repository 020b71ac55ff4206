package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tumorvision/tumorvision/internal/domain/analysis"
	"github.com/tumorvision/tumorvision/internal/domain/user"
	"github.com/tumorvision/tumorvision/internal/store"
)

func historyItem(id string) analysis.HistoryItem {
	return analysis.HistoryItem{
		AnalysisResult: analysis.AnalysisResult{
			ID:       id,
			FileName: id + ".png",
			Result:   analysis.ScenarioNoTumor,
		},
		UserID:    "u1",
		Timestamp: time.Now().UTC(),
	}
}

func TestCurrentUserLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.CurrentUser(ctx)
	if !errors.Is(err, store.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	u := user.User{ID: "u1", Name: "Test", Email: "t@example.com", Role: user.RolePatient}
	if err := s.SaveCurrentUser(ctx, u); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if got.ID != "u1" || got.Email != "t@example.com" {
		t.Fatalf("got %+v", got)
	}

	if err := s.ClearCurrentUser(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	_, err = s.CurrentUser(ctx)
	if !errors.Is(err, store.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after clear, got %v", err)
	}
}

func TestHistoryNewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < analysis.MaxHistoryItems+1; i++ {
		item := historyItem(fmt.Sprintf("item-%d", i))
		if err := s.AppendHistory(ctx, "u1", item); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	items, err := s.History(ctx, "u1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	if len(items) != analysis.MaxHistoryItems {
		t.Fatalf("got %d items, want %d", len(items), analysis.MaxHistoryItems)
	}

	// newest first: the 51st insert leads, the very first insert is evicted
	if items[0].ID != fmt.Sprintf("item-%d", analysis.MaxHistoryItems) {
		t.Fatalf("head = %s", items[0].ID)
	}
	for _, it := range items {
		if it.ID == "item-0" {
			t.Fatal("oldest item should have been evicted")
		}
	}
}

func TestHistoryIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.AppendHistory(ctx, "u1", historyItem("a")); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendHistory(ctx, "u2", historyItem("b")); err != nil {
		t.Fatal(err)
	}

	u1, _ := s.History(ctx, "u1")
	u2, _ := s.History(ctx, "u2")

	if len(u1) != 1 || u1[0].ID != "a" {
		t.Fatalf("u1 history = %+v", u1)
	}
	if len(u2) != 1 || u2[0].ID != "b" {
		t.Fatalf("u2 history = %+v", u2)
	}
}

func TestRegisteredUsersAppendAndList(t *testing.T) {
	ctx := context.Background()
	s := New()

	ru := user.RegisteredUser{
		User:     user.User{ID: "u1", Email: "new@example.com", Role: user.RolePatient},
		Password: "secret1",
	}

	if err := s.AppendRegisteredUser(ctx, ru); err != nil {
		t.Fatalf("append: %v", err)
	}

	list, err := s.RegisteredUsers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Email != "new@example.com" || list[0].Password != "secret1" {
		t.Fatalf("list = %+v", list)
	}
}

package repository

import (
	"context"
	"testing"
	"time"

	appErrors "github.com/unclebandit/customer-service/internal/errors"
	"github.com/unclebandit/customer-service/internal/model"
)

// exerciseSQL runs the store contract against a real SQL database.
func exerciseSQL(t *testing.T, repo *CustomerRepository) {
	t.Helper()
	ctx := context.Background()

	bob, err := repo.Create(ctx, &model.Customer{Name: "Bob", DateOfBirth: model.NewDate(1985, time.March, 14)})
	if err != nil {
		t.Fatalf("create err: %v", err)
	}
	alice, err := repo.Create(ctx, &model.Customer{Name: "Alice", DateOfBirth: model.NewDate(1990, time.January, 1), Interests: "chess"})
	if err != nil {
		t.Fatalf("create err: %v", err)
	}

	lower, err := repo.Create(ctx, &model.Customer{Name: "alice", DateOfBirth: model.NewDate(1992, time.June, 6)})
	if err != nil {
		t.Fatalf("create err: %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	// bytewise: upper case sorts before lower case
	if len(all) != 3 || all[0].Name != "Alice" || all[1].Name != "Bob" || all[2].Name != "alice" {
		t.Fatalf("expected [Alice Bob alice], got %+v", all)
	}
	if _, err := repo.Delete(ctx, lower.ID); err != nil {
		t.Fatalf("delete err: %v", err)
	}

	got, err := repo.GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("get err: %v", err)
	}
	if got.DateOfBirth.String() != "1990-01-01" || got.Interests != "chess" {
		t.Fatalf("unexpected customer: %+v", got)
	}

	updated, err := repo.Update(ctx, &model.Customer{ID: alice.ID, Name: "Alice", DateOfBirth: model.NewDate(1990, time.January, 2)})
	if err != nil {
		t.Fatalf("update err: %v", err)
	}
	if updated.DateOfBirth.String() != "1990-01-02" || updated.Interests != "" {
		t.Fatalf("expected replaced fields, got %+v", updated)
	}

	if _, err := repo.Delete(ctx, bob.ID); err != nil {
		t.Fatalf("delete err: %v", err)
	}
	if _, err := repo.Delete(ctx, bob.ID); !appErrors.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "no-such-id"); !appErrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

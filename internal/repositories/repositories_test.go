package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/nmdb/internal/models"
	"github.com/desertthunder/nmdb/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "runs")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for unknown sequence table")
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun("en-US")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence())
		}
	})

	t.Run("Create Invalid", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		if err := repo.Create(models.NewRun("")); err == nil {
			t.Error("expected validation error for empty locale")
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun("ja-JP")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Locale != "ja-JP" || got.Status != models.RunRunning {
			t.Errorf("unexpected run: %+v", got)
		}
		if got.FinishedAt != nil {
			t.Error("expected running run to have no finish time")
		}
	})

	t.Run("Get Not Found", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		_, err := NewRunRepository(db).Get("nope")
		if !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		run := models.NewRun("zh-CN")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.GamesTotal = 3
		run.TracksTotal = 12
		run.TablesWritten = 2
		run.TablesSkipped = 1
		run.WorkbookPath = "output/book.xlsx"
		run.Finish(errors.New("boom"))

		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Status != models.RunFailed || got.ErrorMessage != "boom" {
			t.Errorf("expected failed run with message, got %+v", got)
		}
		if got.GamesTotal != 3 || got.TracksTotal != 12 || got.TablesWritten != 2 || got.TablesSkipped != 1 {
			t.Errorf("unexpected counts: %+v", got)
		}
		if got.WorkbookPath != "output/book.xlsx" {
			t.Errorf("unexpected workbook path: %s", got.WorkbookPath)
		}
		if got.FinishedAt == nil {
			t.Error("expected finish time")
		}
	})

	t.Run("Update Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		run := models.NewRun("en-US")
		run.SetID("ghost")
		err := NewRunRepository(db).Update(run)
		if !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewRunRepository(db)
		for _, locale := range []string{"en-US", "ja-JP", "en-US"} {
			if err := repo.Create(models.NewRun(locale)); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
		}

		all, err := repo.List("", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(all))
		}
		if all[0].Sequence() != 3 || all[2].Sequence() != 1 {
			t.Errorf("expected newest first, got %d..%d", all[0].Sequence(), all[2].Sequence())
		}

		limited, err := repo.List("", 2)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(limited) != 2 {
			t.Errorf("expected 2 runs, got %d", len(limited))
		}

		english, err := repo.List("en-US", 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(english) != 2 {
			t.Errorf("expected 2 en-US runs, got %d", len(english))
		}
	})
}

package bank_test

import (
	"context"
	"errors"
	"testing"

	"github.com/playperu/geoquest/internal/bank"
	"github.com/playperu/geoquest/internal/geoquest"
)

func testDoc() geoquest.QuestionBank {
	return geoquest.QuestionBank{
		Version:     "1.0.0",
		LastUpdated: "2025-01-15",
		Questions: []geoquest.Question{
			{
				ID:         "b",
				Type:       geoquest.TypeMultipleChoice,
				Difficulty: geoquest.DifficultyMedium,
				Category:   geoquest.CategoryCapitals,
				Prompt:     "Capital of Peru?",
				Options:    []string{"Lima", "Cusco", "Arequipa", "Trujillo"},
				Correct:    geoquest.Text("Lima"),
			},
			{
				ID:             "a",
				Type:           geoquest.TypeClick,
				Difficulty:     geoquest.DifficultyHard,
				Category:       geoquest.CategoryCities,
				Prompt:         "Click Machu Picchu",
				Correct:        geoquest.Point{Lat: -13.16, Lon: -72.54},
				TargetLocation: &geoquest.Coordinates{Lat: -13.16, Lon: -72.54, RadiusKm: 75},
			},
		},
	}
}

func TestStoreImportAndRead(t *testing.T) {
	ctx := context.Background()
	store := bank.NewStore(openTestDB(t))

	if err := store.Import(ctx, testDoc()); err != nil {
		t.Fatalf("import: %v", err)
	}

	qs, err := store.Questions(ctx)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want 2", len(qs))
	}
	if qs[0].ID != "a" || qs[1].ID != "b" {
		t.Errorf("order = %s, %s; want a, b", qs[0].ID, qs[1].ID)
	}

	click := qs[0]
	p, ok := click.Correct.(geoquest.Point)
	if !ok {
		t.Fatalf("correct answer = %T, want Point", click.Correct)
	}
	if p.Lat != -13.16 || p.Lon != -72.54 {
		t.Errorf("point = %+v", p)
	}
	if click.TargetLocation == nil || click.TargetLocation.RadiusKm != 75 {
		t.Errorf("target = %+v, want radius 75", click.TargetLocation)
	}

	if q := qs[1]; q.Correct != geoquest.Text("Lima") || len(q.Options) != 4 {
		t.Errorf("question = %+v", q)
	}
}

func TestStoreEmpty(t *testing.T) {
	store := bank.NewStore(openTestDB(t))

	if qs, err := store.Questions(context.Background()); err != nil || len(qs) != 0 {
		t.Errorf("questions = %d, %v; want none", len(qs), err)
	}
	if _, err := store.Version(context.Background()); !errors.Is(err, bank.ErrNotFound) {
		t.Errorf("version err = %v, want ErrNotFound", err)
	}
}

func TestStoreImportUpserts(t *testing.T) {
	ctx := context.Background()
	store := bank.NewStore(openTestDB(t))

	if err := store.Import(ctx, testDoc()); err != nil {
		t.Fatalf("first import: %v", err)
	}

	doc := testDoc()
	doc.Version = "1.1.0"
	doc.Questions[0].Prompt = "What is the capital of Peru?"
	if err := store.Import(ctx, doc); err != nil {
		t.Fatalf("second import: %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	qs, err := store.Questions(ctx)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if q := qs[1]; q.Prompt != "What is the capital of Peru?" {
		t.Errorf("prompt = %q, want updated text", q.Prompt)
	}

	v, _ := store.Version(ctx)
	if v != "1.1.0" {
		t.Errorf("version = %q, want 1.1.0", v)
	}
}

func TestSeedIdempotent(t *testing.T) {
	ctx := context.Background()
	store := bank.NewStore(openTestDB(t))

	if err := bank.Seed(ctx, discardLogger(), store, testDoc()); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	other := testDoc()
	other.Version = "9.9.9"
	other.Questions = other.Questions[:1]
	other.Questions[0].ID = "c"
	if err := bank.Seed(ctx, discardLogger(), store, other); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	n, _ := store.Count(ctx)
	if n != 2 {
		t.Errorf("count = %d, want 2 after second seed", n)
	}
	v, _ := store.Version(ctx)
	if v != "1.0.0" {
		t.Errorf("version = %q, second seed should be a no-op", v)
	}
}

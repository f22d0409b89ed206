package archive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/julianstephens/softworkday/internal/constants"
	"github.com/julianstephens/softworkday/internal/models"
	"github.com/julianstephens/softworkday/internal/storage"
)

func sample(id string, ts int64) models.StoredMessage {
	return models.StoredMessage{
		ID:        id,
		Text:      "Breathe before the next meeting.",
		Mood:      models.MoodCalm,
		TimeOfDay: models.TimeMorning,
		Timestamp: ts,
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := New(storage.NewMemoryStore())

	msg := sample("gen_1700000000000", 1700000000000)
	if err := a.ArchiveMessage(ctx, msg); err != nil {
		t.Fatalf("ArchiveMessage failed: %v", err)
	}
	got, err := a.GetMessageByID(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetMessageByID failed: %v", err)
	}
	if got == nil || *got != msg {
		t.Errorf("GetMessageByID() = %+v, want %+v", got, msg)
	}
}

func TestGetMessageByID_Absent(t *testing.T) {
	got, err := New(storage.NewMemoryStore()).GetMessageByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetMessageByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("GetMessageByID() = %+v, want nil", got)
	}
}

func TestArchiveMessage_FullReplace(t *testing.T) {
	ctx := context.Background()
	a := New(storage.NewMemoryStore())

	first := sample("gen_1", 1)
	first.Reflection = "felt ok"
	if err := a.ArchiveMessage(ctx, first); err != nil {
		t.Fatalf("ArchiveMessage failed: %v", err)
	}
	second := sample("gen_1", 2)
	second.Text = "Another perspective."
	if err := a.ArchiveMessage(ctx, second); err != nil {
		t.Fatalf("ArchiveMessage failed: %v", err)
	}
	got, _ := a.GetMessageByID(ctx, "gen_1")
	if got.Reflection != "" || got.Text != second.Text {
		t.Errorf("entry was merged instead of replaced: %+v", got)
	}
}

func TestUpdateReflection_MergesBySpread(t *testing.T) {
	ctx := context.Background()
	a := New(storage.NewMemoryStore())

	msg := sample("note_morning_1700000000000", 1700000000000)
	if err := a.ArchiveMessage(ctx, msg); err != nil {
		t.Fatalf("ArchiveMessage failed: %v", err)
	}
	if err := a.UpdateReflection(ctx, msg.ID, "I slowed down."); err != nil {
		t.Fatalf("UpdateReflection failed: %v", err)
	}

	got, _ := a.GetMessageByID(ctx, msg.ID)
	want := msg
	want.Reflection = "I slowed down."
	if *got != want {
		t.Errorf("after UpdateReflection = %+v, want %+v", *got, want)
	}
}

func TestUpdateReflection_Missing(t *testing.T) {
	err := New(storage.NewMemoryStore()).UpdateReflection(context.Background(), "gen_404", "x")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateReflection() = %v, want ErrNotFound", err)
	}
}

func TestArchiveMessage_Invalid(t *testing.T) {
	err := New(storage.NewMemoryStore()).ArchiveMessage(context.Background(), models.StoredMessage{})
	if err == nil {
		t.Error("expected error for message without id")
	}
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	a := New(storage.NewMemoryStore())
	for _, ts := range []int64{20, 10, 30} {
		if err := a.ArchiveMessage(ctx, sample(fmt.Sprintf("gen_%d", ts), ts)); err != nil {
			t.Fatalf("ArchiveMessage failed: %v", err)
		}
	}
	got, err := a.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 3 || got[0].Timestamp != 30 || got[2].Timestamp != 10 {
		t.Errorf("List order = %+v", got)
	}
}

func TestArchive_JSONShape(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	a := New(kv)
	if err := a.ArchiveMessage(ctx, sample("gen_5", 5)); err != nil {
		t.Fatalf("ArchiveMessage failed: %v", err)
	}
	raw, _, _ := kv.Get(ctx, constants.ArchiveStorageKey)
	want := `{"gen_5":{"id":"gen_5","text":"Breathe before the next meeting.","mood":"calm","timeOfDay":"morning","timestamp":5}}`
	if string(raw) != want {
		t.Errorf("archive blob = %s\nwant %s", raw, want)
	}
}

func TestArchive_ConcurrentWritersInProcess(t *testing.T) {
	ctx := context.Background()
	a := New(storage.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := a.ArchiveMessage(ctx, sample(fmt.Sprintf("gen_%d", i), int64(i))); err != nil {
				t.Errorf("ArchiveMessage failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := a.List(ctx)
	if len(got) != 20 {
		t.Errorf("List() has %d entries, want 20 (lost update)", len(got))
	}
}

package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mathquest/mathquest/game/engine"
	"github.com/mathquest/mathquest/game/service"
)

func newTestSession(id string) *service.Session {
	opts := engine.DefaultOptions()
	opts.Name = "Test Rules"

	eng := engine.New()
	eng.SetOptions(opts)

	return &service.Session{
		ID:             id,
		Engine:         eng,
		Options:        &opts,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
}

func TestFilePersistence(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "session_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	session := newTestSession("test1")

	t.Run("Save and Load Session", func(t *testing.T) {
		err := persistence.Save(session)
		if err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		if !persistence.Exists("test1") {
			t.Error("Session file should exist after save")
		}

		loadedSession, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		if loadedSession.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, loadedSession.ID)
		}
		if loadedSession.Options.Name != session.Options.Name {
			t.Errorf("Expected options name %s, got %s", session.Options.Name, loadedSession.Options.Name)
		}
		if loadedSession.Engine.State().Screen != session.Engine.State().Screen {
			t.Errorf("Expected screen %s, got %s",
				session.Engine.State().Screen, loadedSession.Engine.State().Screen)
		}
	})

	t.Run("Save State Changes", func(t *testing.T) {
		// Start a game and play one mutation, then round-trip
		session.Engine.StartGame(2, nil, nil)
		session.Engine.AwardPlayerCoins(0, 42)

		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		state := loaded.Engine.State()
		if state.Screen != engine.ScreenPlaying {
			t.Errorf("Expected playing screen, got %s", state.Screen)
		}
		if len(state.Players) != 2 {
			t.Fatalf("Expected 2 players, got %d", len(state.Players))
		}
		if state.Players[0].Coins != 42 {
			t.Errorf("Expected 42 coins restored, got %d", state.Players[0].Coins)
		}
		if len(state.Tiles) != engine.DefaultBoardSize {
			t.Errorf("Expected %d tiles restored, got %d", engine.DefaultBoardSize, len(state.Tiles))
		}
	})

	t.Run("Load Missing Session", func(t *testing.T) {
		_, err := persistence.Load("missing")
		if err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("ListAll", func(t *testing.T) {
		other := newTestSession("test2")
		if err := persistence.Save(other); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("Expected 2 persisted sessions, got %d", len(ids))
		}

		found := make(map[string]bool)
		for _, id := range ids {
			found[id] = true
		}
		if !found["test1"] || !found["test2"] {
			t.Errorf("Expected test1 and test2, got %v", ids)
		}
	})

	t.Run("Non-JSON files ignored", func(t *testing.T) {
		os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("notes"), 0644)

		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}
		for _, id := range ids {
			if strings.Contains(id, "notes") {
				t.Error("Non-JSON files must be ignored")
			}
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := persistence.Delete("test2"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if persistence.Exists("test2") {
			t.Error("Session file should be removed after delete")
		}

		if err := persistence.Delete("test2"); err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound on double delete, got %v", err)
		}
	})

	t.Run("Save Nil Session", func(t *testing.T) {
		if err := persistence.Save(nil); err == nil {
			t.Error("Expected error saving nil session")
		}
	})
}

package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"liveability/internal/user"
)

func TestSessionStoreHydration(t *testing.T) {
	u := &user.User{ID: 1, Email: "a@x.com"}
	data, err := json.Marshal(&Session{Token: "tok-1", User: u})
	if err != nil {
		t.Fatal(err)
	}

	storage := NewMemoryStorage()
	if err := storage.Save(data); err != nil {
		t.Fatal(err)
	}

	store := NewSessionStore(storage)
	sess := store.Current()
	if !sess.Authenticated() {
		t.Fatal("stored session should hydrate as authenticated")
	}
	if sess.Token != "tok-1" || sess.User.Email != "a@x.com" {
		t.Errorf("hydrated session = %+v", sess)
	}
}

func TestSessionStoreHydrationDiscardsGarbage(t *testing.T) {
	cases := map[string]string{
		"malformed JSON": `{"token": "tok-1", "user"`,
		"token only":     `{"token": "tok-1"}`,
		"user only":      `{"user": {"id": 1, "email": "a@x.com"}}`,
	}

	for name, stored := range cases {
		t.Run(name, func(t *testing.T) {
			storage := NewMemoryStorage()
			if err := storage.Save([]byte(stored)); err != nil {
				t.Fatal(err)
			}

			store := NewSessionStore(storage)
			if store.Current().Authenticated() {
				t.Error("store should start unauthenticated")
			}

			// The bad entry must not survive for the next startup.
			data, err := storage.Load()
			if err != nil {
				t.Fatal(err)
			}
			if len(data) != 0 {
				t.Errorf("storage still holds %q after hydration rejected it", data)
			}
		})
	}
}

func TestSessionStoreEmptyStorage(t *testing.T) {
	store := NewSessionStore(NewMemoryStorage())
	if store.Current().Authenticated() {
		t.Error("empty storage should hydrate as unauthenticated")
	}
}

func TestSessionStoreSetPersists(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewSessionStore(storage)

	u := &user.User{ID: 7, Email: "b@x.com"}
	if err := store.Set("tok-7", u); err != nil {
		t.Fatal(err)
	}

	// A second store over the same storage sees the session.
	restored := NewSessionStore(storage).Current()
	if !restored.Authenticated() || restored.Token != "tok-7" {
		t.Errorf("restored session = %+v", restored)
	}
}

func TestSessionStoreSetUser(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewSessionStore(storage)

	// No-op while unauthenticated
	if err := store.SetUser(&user.User{ID: 1}); err != nil {
		t.Fatal(err)
	}
	if store.Current().Authenticated() {
		t.Error("SetUser must not authenticate a store with no token")
	}

	if err := store.Set("tok-1", &user.User{ID: 1, Email: "a@x.com"}); err != nil {
		t.Fatal(err)
	}

	updated := &user.User{ID: 1, Email: "a@x.com", Commute: &user.CommutePreferences{MaxCommuteTime: 20}}
	if err := store.SetUser(updated); err != nil {
		t.Fatal(err)
	}

	sess := store.Current()
	if sess.Token != "tok-1" {
		t.Error("SetUser must keep the token")
	}
	if sess.User.Commute == nil || sess.User.Commute.MaxCommuteTime != 20 {
		t.Errorf("SetUser did not replace the user: %+v", sess.User)
	}
}

func TestSessionStoreClearOnce(t *testing.T) {
	store := NewSessionStore(NewMemoryStorage())
	if err := store.Set("tok-1", &user.User{ID: 1}); err != nil {
		t.Fatal(err)
	}

	const callers = 16
	var wg sync.WaitGroup
	results := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.Clear()
		}()
	}
	wg.Wait()
	close(results)

	cleared := 0
	for got := range results {
		if got {
			cleared++
		}
	}
	if cleared != 1 {
		t.Errorf("%d callers observed the clear, want exactly 1", cleared)
	}
	if store.Current().Authenticated() {
		t.Error("store should be unauthenticated after Clear")
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "session.json")
	storage := NewFileStorage(path)

	// Missing file reads as empty, not an error
	data, err := storage.Load()
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("missing file yielded %q", data)
	}

	if err := storage.Save([]byte(`{"token":"tok-1"}`)); err != nil {
		t.Fatal(err)
	}
	data, err = storage.Load()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"token":"tok-1"}` {
		t.Errorf("Load = %q", data)
	}

	if err := storage.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Clear should remove the session file")
	}

	// Clearing again is fine
	if err := storage.Clear(); err != nil {
		t.Errorf("Clear on missing file: %v", err)
	}
}

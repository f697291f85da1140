package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"chantierbook/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	backend, err := NewFileBackend(path)
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	st, err := Open(backend, quietLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	err = st.Mutate(func(doc *models.Document) error {
		doc.Accounts = append(doc.Accounts, &models.Account{
			ID:    "amadou",
			Role:  "admin",
			Theme: "clair",
			Sites: []*models.Site{models.NewSite("s1", "Chantier A")},
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}

	// A fresh store over the same file sees the flushed document.
	backend2, _ := NewFileBackend(path)
	st2, err := Open(backend2, quietLogger())
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	err = st2.View(func(doc *models.Document) error {
		if len(doc.Accounts) != 1 || doc.Accounts[0].ID != "amadou" {
			t.Errorf("Reloaded document = %+v", doc)
		}
		if len(doc.Accounts[0].Sites) != 1 || doc.Accounts[0].Sites[0].Name != "Chantier A" {
			t.Errorf("Reloaded sites = %+v", doc.Accounts[0].Sites)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	backend, _ := NewFileBackend(filepath.Join(t.TempDir(), "absent.json"))
	st, err := Open(backend, quietLogger())
	if err != nil {
		t.Fatalf("Open on a missing file should succeed, got %v", err)
	}
	st.View(func(doc *models.Document) error {
		if len(doc.Accounts) != 0 {
			t.Errorf("Fresh document should be empty, got %d accounts", len(doc.Accounts))
		}
		return nil
	})
}

func TestOpenCorruptedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte("{pas du json"), 0o600); err != nil {
		t.Fatal(err)
	}
	backend, _ := NewFileBackend(path)
	st, err := Open(backend, quietLogger())
	if err != nil {
		t.Fatalf("Corrupted blob should not fail Open, got %v", err)
	}
	st.View(func(doc *models.Document) error {
		if len(doc.Accounts) != 0 {
			t.Errorf("Corrupted blob should yield an empty document, got %+v", doc)
		}
		return nil
	})
}

func TestMutateFailureDoesNotFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	backend, _ := NewFileBackend(path)
	st, _ := Open(backend, quietLogger())

	boom := errors.New("rejected")
	err := st.Mutate(func(doc *models.Document) error {
		doc.Accounts = append(doc.Accounts, &models.Account{ID: "fantome"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Mutate should return fn's error, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("Failed mutation must not write the file")
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	backend, _ := NewFileBackend(filepath.Join(t.TempDir(), "doc.json"))
	st, _ := Open(backend, quietLogger())
	st.Mutate(func(doc *models.Document) error {
		doc.Accounts = append(doc.Accounts, &models.Account{ID: "amadou", Sites: []*models.Site{models.NewSite("s1", "A")}})
		return nil
	})

	snap := st.Snapshot()
	snap.Accounts[0].Sites[0].Name = "Modifié"

	st.View(func(doc *models.Document) error {
		if doc.Accounts[0].Sites[0].Name != "A" {
			t.Error("Mutating a snapshot leaked into the live document")
		}
		return nil
	})
}

func TestReplacePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	backend, _ := NewFileBackend(path)
	st, _ := Open(backend, quietLogger())

	imported := models.NewDocument()
	imported.Accounts = append(imported.Accounts, &models.Account{ID: "importé"})
	if err := st.Replace(imported); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	backend2, _ := NewFileBackend(path)
	st2, _ := Open(backend2, quietLogger())
	st2.View(func(doc *models.Document) error {
		if len(doc.Accounts) != 1 || doc.Accounts[0].ID != "importé" {
			t.Errorf("Replaced document not persisted: %+v", doc)
		}
		return nil
	})
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.db")
	backend, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("NewSQLiteBackend failed: %v", err)
	}
	st, err := Open(backend, quietLogger())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	err = st.Mutate(func(doc *models.Document) error {
		doc.Accounts = append(doc.Accounts, &models.Account{ID: "amadou"})
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	// Two saves exercise the single-row upsert.
	st.Mutate(func(doc *models.Document) error {
		doc.Accounts[0].Theme = "sombre"
		return nil
	})
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	backend2, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatal(err)
	}
	defer backend2.Close()
	st2, err := Open(backend2, quietLogger())
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	st2.View(func(doc *models.Document) error {
		if len(doc.Accounts) != 1 || doc.Accounts[0].Theme != "sombre" {
			t.Errorf("Reloaded document = %+v", doc)
		}
		return nil
	})
}

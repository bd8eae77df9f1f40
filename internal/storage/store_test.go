package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

func writeAsset(t *testing.T, path string, asset Asset[*AreaSpec]) {
	t.Helper()
	data, err := json.Marshal(asset)
	if err != nil {
		t.Fatalf("failed to marshal test asset: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func TestNewFileStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewFileStore[*AreaSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "path", store.path, tmpDir)
	testutil.AssertEqual(t, "records length", len(store.records), 0)
}

func TestNewFileStore_NonExistentDirectory(t *testing.T) {
	_, err := NewFileStore[*AreaSpec]("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("expected error for non-existent directory")
	}
}

func TestNewFileStore_WithExistingAssets(t *testing.T) {
	tmpDir := t.TempDir()

	writeAsset(t, filepath.Join(tmpDir, "town.json"), Asset[*AreaSpec]{
		Version: 1, Identifier: "town", Spec: testArea("Town", 1, 2),
	})
	yamlDoc := "version: 1\nid: forest\nspec:\n  name: Forest\n  rooms:\n    - id: 7\n      position: {x: 3, y: 4, z: 0}\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "forest.yaml"), []byte(yamlDoc), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	store, err := NewFileStore[*AreaSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.records), 2)
	testutil.AssertEqual(t, "ids", store.Ids(), []string{"forest", "town"})

	town := store.Get("town")
	if town == nil {
		t.Fatal("expected town to be loaded")
	}
	testutil.AssertEqual(t, "town rooms", len(town.Rooms), 2)

	forest := store.Get("forest")
	if forest == nil {
		t.Fatal("expected forest to be loaded")
	}
	testutil.AssertEqual(t, "forest room y", forest.Rooms[0].Position.Y, 4)
}

func TestNewFileStore_Errors(t *testing.T) {
	tests := map[string]struct {
		setup  func(t *testing.T, dir string)
		expErr string
	}{
		"invalid json": {
			setup: func(t *testing.T, dir string) {
				if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{invalid json`), 0644); err != nil {
					t.Fatal(err)
				}
			},
			expErr: "loading bad.json",
		},
		"validation error": {
			setup: func(t *testing.T, dir string) {
				writeAsset(t, filepath.Join(dir, "test.json"), Asset[*AreaSpec]{
					Identifier: "test", Spec: testArea("Test", 1),
				})
			},
			expErr: "validating test.json",
		},
		"duplicate key": {
			setup: func(t *testing.T, dir string) {
				sub := filepath.Join(dir, "subdir")
				if err := os.Mkdir(sub, 0755); err != nil {
					t.Fatal(err)
				}
				a := Asset[*AreaSpec]{Version: 1, Identifier: "duplicate-id", Spec: testArea("Test", 1)}
				writeAsset(t, filepath.Join(dir, "file1.json"), a)
				writeAsset(t, filepath.Join(sub, "file2.json"), a)
			},
			expErr: "duplicate key detected: duplicate-id",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)
			_, err := NewFileStore[*AreaSpec](dir)
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestNewFileStore_IgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()

	writeAsset(t, filepath.Join(tmpDir, "valid.json"), Asset[*AreaSpec]{
		Version: 1, Identifier: "valid", Spec: testArea("Valid", 1),
	})
	for _, name := range []string{"readme.txt", "map.snapshot", "valid.json.tmp"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("ignore me"), 0644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
	}

	store, err := NewFileStore[*AreaSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.records), 1)
}

func TestFileStore_Get(t *testing.T) {
	store, err := NewFileStore[*AreaSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	store.records = map[string]*AreaSpec{
		"existing": testArea("Test", 1),
	}

	tests := map[string]struct {
		id      string
		expNil  bool
		expName string
	}{
		"get existing record": {
			id:      "existing",
			expName: "Test",
		},
		"get non-existing record": {
			id:     "nonexistent",
			expNil: true,
		},
		"get empty id": {
			id:     "",
			expNil: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result := store.Get(tt.id)

			if tt.expNil {
				if result != nil {
					t.Errorf("expected nil, got %v", result)
				}
				return
			}
			if result == nil {
				t.Fatal("expected non-nil result")
			}
			testutil.AssertEqual(t, "name", result.Name, tt.expName)
		})
	}
}

func TestFileStore_GetAllReturnsCopy(t *testing.T) {
	store, err := NewFileStore[*AreaSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}
	store.records = map[string]*AreaSpec{
		"one": testArea("One", 1),
		"two": testArea("Two", 1),
	}

	result := store.GetAll()
	testutil.AssertEqual(t, "count", len(result), 2)

	delete(result, "one")
	testutil.AssertEqual(t, "store count", len(store.records), 2)
}

func TestFileStore_Save(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*AreaSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	err = store.Save("test-id", testArea("Saved", 1, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cached := store.Get("test-id")
	if cached == nil {
		t.Fatal("expected cached record")
	}
	testutil.AssertEqual(t, "cached name", cached.Name, "Saved")

	data, err := os.ReadFile(filepath.Join(tmpDir, "test-id.json"))
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	var asset Asset[*AreaSpec]
	if err := json.Unmarshal(data, &asset); err != nil {
		t.Fatalf("failed to unmarshal saved data: %v", err)
	}
	testutil.AssertEqual(t, "asset version", asset.Version, uint(1))
	testutil.AssertEqual(t, "asset id", asset.Identifier, Identifier("test-id"))
	testutil.AssertEqual(t, "spec rooms", len(asset.Spec.Rooms), 2)

	if _, err := os.Stat(filepath.Join(tmpDir, "test-id.json.tmp")); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be gone, got %v", err)
	}

	reloaded, err := NewFileStore[*AreaSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error reloading store: %v", err)
	}
	testutil.AssertEqual(t, "reloaded ids", reloaded.Ids(), []string{"test-id"})
}

func TestFileStore_SaveRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*AreaSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	err = store.Save("bad id", testArea("Bad", 1))
	testutil.AssertErrorContains(t, err, "id must be alphanumeric")

	testutil.AssertEqual(t, "records", len(store.GetAll()), 0)
	if _, err := os.Stat(filepath.Join(tmpDir, "bad id.json")); !os.IsNotExist(err) {
		t.Errorf("expected no file to be written, got %v", err)
	}
}

func TestFileStore_Save_OverwritesExisting(t *testing.T) {
	store, err := NewFileStore[*AreaSpec](t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	if err := store.Save("test-id", testArea("Initial", 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save("test-id", testArea("Updated", 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "name", store.Get("test-id").Name, "Updated")
}

func TestFileStore_filePath(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewFileStore[*AreaSpec](tmpDir)
	if err != nil {
		t.Fatalf("unexpected error creating store: %v", err)
	}

	testutil.AssertEqual(t, "file path", store.filePath("test-id"), filepath.Join(tmpDir, "test-id.json"))
}

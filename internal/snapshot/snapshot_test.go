package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dujiao-next/backupsync/internal/constants"
	"github.com/dujiao-next/backupsync/internal/models"
)

func mkdir(t *testing.T, path string, mod time.Time) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s failed: %v", path, err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatalf("chtimes %s failed: %v", path, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s failed: %v", path, err)
	}
}

func TestLatestDirPicksNewestModTime(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mkdir(t, filepath.Join(root, "2025-03-01"), base)
	mkdir(t, filepath.Join(root, "2025-03-03"), base.Add(48*time.Hour))
	mkdir(t, filepath.Join(root, "2025-03-02"), base.Add(24*time.Hour))
	writeFile(t, filepath.Join(root, "notes.txt"), "not a dir")

	got, err := LatestDir(root)
	if err != nil {
		t.Fatalf("latest dir failed: %v", err)
	}
	if filepath.Base(got) != "2025-03-03" {
		t.Fatalf("unexpected latest dir: %s", got)
	}
}

func TestLatestDirEmptyRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "orders.json"), "[]")
	if _, err := LatestDir(root); !errors.Is(err, ErrNoBackupDir) {
		t.Fatalf("expected ErrNoBackupDir, got %v", err)
	}
}

func TestResolveInputDirOverride(t *testing.T) {
	root := t.TempDir()
	explicit := filepath.Join(root, "explicit")
	mkdir(t, explicit, time.Now())

	got, err := ResolveInputDir(filepath.Join(root, "missing-root"), explicit)
	if err != nil {
		t.Fatalf("resolve override failed: %v", err)
	}
	if got != explicit {
		t.Fatalf("unexpected input dir: %s", got)
	}

	if _, err := ResolveInputDir(root, filepath.Join(root, "nope")); !errors.Is(err, ErrInputUnreadable) {
		t.Fatalf("expected ErrInputUnreadable, got %v", err)
	}
}

func TestLoadDegradesBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "users.json"), `[{"_id":"aaaaaaaaaaaaaaaaaaaaaaaa","fullName":"An"}, 5]`)
	writeFile(t, filepath.Join(dir, "brands.json"), `{"not":"an array"}`)
	writeFile(t, filepath.Join(dir, "producttypes.json"), `[{"name":`)
	writeFile(t, filepath.Join(dir, "orders.json"), "\xEF\xBB\xBF[{\"status\":\"SHIPPING\"}]")

	snap, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := len(snap.Records(constants.EntityAccounts)); got != 1 {
		t.Fatalf("expected 1 account, got %d", got)
	}
	for _, entity := range []string{constants.EntityBrands, constants.EntityProductTypes, constants.EntityProducts} {
		records := snap.Records(entity)
		if records == nil || len(records) != 0 {
			t.Fatalf("expected empty collection for %s, got %v", entity, records)
		}
	}
	if got := len(snap.Records(constants.EntityOrders)); got != 1 {
		t.Fatalf("expected BOM-prefixed orders to load, got %d", got)
	}
}

func TestResolveOutputDir(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "2025-03-01")
	mkdir(t, input, time.Now())

	got, err := ResolveOutputDir(OutputOptions{InputDir: input, InPlace: true})
	if err != nil || got != input {
		t.Fatalf("in-place should reuse input dir, got %s err %v", got, err)
	}

	got, err = ResolveOutputDir(OutputOptions{InputDir: input})
	if err != nil {
		t.Fatalf("resolve default output failed: %v", err)
	}
	if got != input+"-synced" {
		t.Fatalf("unexpected default output: %s", got)
	}

	mkdir(t, input+"-synced", time.Now())
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	got, err = ResolveOutputDir(OutputOptions{InputDir: input, Now: now})
	if err != nil {
		t.Fatalf("resolve colliding output failed: %v", err)
	}
	if got != input+"-synced-2025-03-04T05-06-07Z" {
		t.Fatalf("unexpected collision-free output: %s", got)
	}
	if strings.ContainsAny(filepath.Base(got), ":") {
		t.Fatalf("output dir contains unsafe chars: %s", got)
	}
}

func TestWriteProducesIndentedArrays(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	snap := &Snapshot{Collections: map[string][]models.Record{
		constants.EntityBrands: {{"name": "Apple Store", "website": "https://a.b/?x=1&y=2"}},
	}}
	if err := Write(context.Background(), out, snap); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	for _, entity := range constants.EntityOrder {
		data, err := os.ReadFile(filepath.Join(out, constants.EntityFile(entity)))
		if err != nil {
			t.Fatalf("read %s failed: %v", entity, err)
		}
		var list []interface{}
		if err := json.Unmarshal(data, &list); err != nil {
			t.Fatalf("output %s is not an array: %v", entity, err)
		}
	}
	data, _ := os.ReadFile(filepath.Join(out, "brands.json"))
	if !strings.Contains(string(data), "\n  {\n    \"name\": \"Apple Store\"") {
		t.Fatalf("expected 2-space indentation, got:\n%s", data)
	}
	if !strings.Contains(string(data), "x=1&y=2") {
		t.Fatalf("expected unescaped ampersand, got:\n%s", data)
	}
}

package attachment

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snagtrack/snagtrack/internal/apperr"
	"github.com/snagtrack/snagtrack/internal/db"
	"github.com/snagtrack/snagtrack/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) (*gorm.DB, models.User, models.Defect) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	if err := db.SeedLookups(gdb); err != nil {
		t.Fatalf("seed lookups: %v", err)
	}

	user := models.User{FullName: "Egor Engineer", Email: "egor@example.com", Role: models.RoleEngineer}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	project := models.Project{Name: "Riverside Tower"}
	if err := gdb.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	var status models.Status
	if err := gdb.Where("name = ?", models.StatusNew).First(&status).Error; err != nil {
		t.Fatalf("lookup status: %v", err)
	}
	var priority models.Priority
	if err := gdb.First(&priority).Error; err != nil {
		t.Fatalf("lookup priority: %v", err)
	}
	defect := models.Defect{
		Title:      "Cracked facade panel",
		ProjectID:  project.ID,
		CreatorID:  user.ID,
		StatusID:   status.ID,
		PriorityID: priority.ID,
	}
	if err := gdb.Create(&defect).Error; err != nil {
		t.Fatalf("create defect: %v", err)
	}
	return gdb, user, defect
}

func testStore(t *testing.T) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir(), 1)
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	return store
}

func TestDiskStore_SaveAndOpen(t *testing.T) {
	store := testStore(t)

	handle, err := store.Save("site-photo.JPG", strings.NewReader("fake jpeg bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if handle == "site-photo.JPG" {
		t.Error("handle should not reuse the client file name")
	}
	if filepath.Ext(handle) != ".jpg" {
		t.Errorf("handle ext = %q, want lowercased original", filepath.Ext(handle))
	}

	rc, err := store.Open(handle)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "fake jpeg bytes" {
		t.Errorf("content = %q", data)
	}
}

func TestDiskStore_RejectsDisallowedType(t *testing.T) {
	store := testStore(t)

	for _, name := range []string{"run.exe", "script.sh", "noext", "archive.zip"} {
		if _, err := store.Save(name, strings.NewReader("x")); err == nil {
			t.Errorf("%s: expected rejection", name)
		}
	}

	entries, _ := os.ReadDir(store.Dir)
	if len(entries) != 0 {
		t.Errorf("rejected uploads left %d files behind", len(entries))
	}
}

func TestDiskStore_RejectsOversizedFile(t *testing.T) {
	store := testStore(t)
	store.MaxSize = 16

	_, err := store.Save("big.pdf", strings.NewReader(strings.Repeat("a", 17)))
	if err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("err = %v, want size error", err)
	}

	entries, _ := os.ReadDir(store.Dir)
	if len(entries) != 0 {
		t.Errorf("oversized upload left %d files behind", len(entries))
	}
}

func TestDiskStore_OpenRejectsTraversal(t *testing.T) {
	store := testStore(t)

	for _, handle := range []string{"../secret.pdf", "/etc/passwd", "a/b.jpg"} {
		if _, err := store.Open(handle); err == nil {
			t.Errorf("%s: expected rejection", handle)
		}
	}
}

func TestDiskStore_Remove(t *testing.T) {
	store := testStore(t)

	handle, err := store.Save("photo.jpg", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Remove(handle); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := store.Open(handle); err == nil {
		t.Error("removed file should not open")
	}

	for _, handle := range []string{"../secret.pdf", "/etc/passwd"} {
		if err := store.Remove(handle); err == nil {
			t.Errorf("%s: expected rejection", handle)
		}
	}
}

func TestCreateAndGet(t *testing.T) {
	gdb, user, defect := testDB(t)

	a, err := Create(gdb, defect.ID, user.ID, "ab12.jpg", "site-photo.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := Get(gdb, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FilePath != "ab12.jpg" || got.FileName != "site-photo.jpg" {
		t.Errorf("attachment = %+v", got)
	}
	if got.UploadedBy.FullName != "Egor Engineer" {
		t.Errorf("uploader not preloaded: %+v", got.UploadedBy)
	}
}

func TestCreate_UnknownDefect(t *testing.T) {
	gdb, user, _ := testDB(t)

	_, err := Create(gdb, 404, user.ID, "x.jpg", "x.jpg", "image/jpeg")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	gdb, _, _ := testDB(t)

	_, err := Get(gdb, 404)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListByDefect(t *testing.T) {
	gdb, user, defect := testDB(t)

	for _, name := range []string{"before.jpg", "after.jpg"} {
		if _, err := Create(gdb, defect.ID, user.ID, name, name, "image/jpeg"); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	list, err := ListByDefect(gdb, defect.ID)
	if err != nil {
		t.Fatalf("ListByDefect: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("attachments = %d, want 2", len(list))
	}
	if list[0].FileName != "before.jpg" || list[1].FileName != "after.jpg" {
		t.Errorf("order = %s, %s", list[0].FileName, list[1].FileName)
	}
}

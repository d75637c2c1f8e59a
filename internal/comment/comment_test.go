package comment

import (
	"errors"
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

	author := models.User{FullName: "Egor Engineer", Email: "egor@example.com", Role: models.RoleEngineer}
	if err := gdb.Create(&author).Error; err != nil {
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
		CreatorID:  author.ID,
		StatusID:   status.ID,
		PriorityID: priority.ID,
	}
	if err := gdb.Create(&defect).Error; err != nil {
		t.Fatalf("create defect: %v", err)
	}
	return gdb, author, defect
}

func TestAdd(t *testing.T) {
	gdb, author, defect := testDB(t)

	c, err := Add(gdb, defect.ID, author.ID, "Panel replaced, awaiting inspection.")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if c.ID == 0 {
		t.Error("comment should be persisted")
	}
	if c.Author.FullName != "Egor Engineer" {
		t.Errorf("author not preloaded: %+v", c.Author)
	}
}

func TestAdd_EmptyContent(t *testing.T) {
	gdb, author, defect := testDB(t)

	_, err := Add(gdb, defect.ID, author.ID, "")
	if err == nil || !strings.Contains(err.Error(), "content is required") {
		t.Errorf("err = %v, want content validation error", err)
	}
}

func TestAdd_UnknownDefect(t *testing.T) {
	gdb, author, _ := testDB(t)

	_, err := Add(gdb, 404, author.ID, "hello")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListByDefect_OldestFirst(t *testing.T) {
	gdb, author, defect := testDB(t)

	for _, content := range []string{"first", "second", "third"} {
		if _, err := Add(gdb, defect.ID, author.ID, content); err != nil {
			t.Fatalf("Add %q: %v", content, err)
		}
	}

	comments, err := ListByDefect(gdb, defect.ID)
	if err != nil {
		t.Fatalf("ListByDefect: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("comments = %d, want 3", len(comments))
	}
	for i, want := range []string{"first", "second", "third"} {
		if comments[i].Content != want {
			t.Errorf("comments[%d] = %q, want %q", i, comments[i].Content, want)
		}
	}

	other, err := ListByDefect(gdb, 999)
	if err != nil {
		t.Fatalf("ListByDefect other: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("unrelated defect has %d comments", len(other))
	}
}

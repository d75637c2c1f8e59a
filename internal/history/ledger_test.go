package history

import (
	"strings"
	"testing"

	"github.com/snagtrack/snagtrack/internal/db"
	"github.com/snagtrack/snagtrack/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
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
	return gdb
}

func strptr(s string) *string { return &s }

func TestActionValid(t *testing.T) {
	for _, a := range []Action{ActionStatusChanged, ActionAssigneeChanged, ActionDueDateChanged} {
		if !a.Valid() {
			t.Errorf("%q should be valid", a)
		}
	}
	if Action("priority_changed").Valid() {
		t.Error("unknown action should be invalid")
	}
	if Action("").Valid() {
		t.Error("empty action should be invalid")
	}
}

func TestRecord(t *testing.T) {
	gdb := testDB(t)

	entry, err := Record(gdb, 7, 3, ActionStatusChanged, strptr("New"), strptr("In Progress"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if entry.ID == 0 {
		t.Error("entry should be persisted with an id")
	}
	if entry.DefectID != 7 || entry.UserID != 3 {
		t.Errorf("entry = %+v", entry)
	}
	if entry.OldValue == nil || *entry.OldValue != "New" {
		t.Errorf("old value = %v", entry.OldValue)
	}
	if entry.NewValue == nil || *entry.NewValue != "In Progress" {
		t.Errorf("new value = %v", entry.NewValue)
	}
}

func TestRecord_Rejections(t *testing.T) {
	gdb := testDB(t)

	tests := []struct {
		name     string
		defectID uint
		userID   uint
		action   Action
		wantMsg  string
	}{
		{"zero defect id", 0, 3, ActionStatusChanged, "defect id is required"},
		{"zero user id", 7, 0, ActionStatusChanged, "acting user id is required"},
		{"unknown action", 7, 3, Action("renamed"), "unknown action"},
	}
	for _, tt := range tests {
		_, err := Record(gdb, tt.defectID, tt.userID, tt.action, nil, nil)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantMsg) {
			t.Errorf("%s: error = %q, want %q", tt.name, err.Error(), tt.wantMsg)
		}
	}

	var count int64
	gdb.Model(&models.History{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected records must not persist, found %d rows", count)
	}
}

func TestListByDefect_OrderAndScope(t *testing.T) {
	gdb := testDB(t)

	user := models.User{FullName: "Misha Manager", Email: "misha@example.com", Role: models.RoleManager}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := Record(gdb, 1, user.ID, ActionStatusChanged, strptr("New"), strptr("In Progress")); err != nil {
		t.Fatalf("record 1: %v", err)
	}
	if _, err := Record(gdb, 1, user.ID, ActionAssigneeChanged, strptr("Не назначен"), strptr("Egor Engineer")); err != nil {
		t.Fatalf("record 2: %v", err)
	}
	if _, err := Record(gdb, 2, user.ID, ActionStatusChanged, strptr("New"), strptr("In Progress")); err != nil {
		t.Fatalf("record other defect: %v", err)
	}

	entries, err := ListByDefect(gdb, 1)
	if err != nil {
		t.Fatalf("ListByDefect: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Action != string(ActionStatusChanged) || entries[1].Action != string(ActionAssigneeChanged) {
		t.Errorf("order = %s, %s; want oldest first", entries[0].Action, entries[1].Action)
	}
	if entries[0].User.FullName != "Misha Manager" {
		t.Errorf("acting user not preloaded: %+v", entries[0].User)
	}
}

func TestListByDefect_Empty(t *testing.T) {
	gdb := testDB(t)

	entries, err := ListByDefect(gdb, 42)
	if err != nil {
		t.Fatalf("ListByDefect: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

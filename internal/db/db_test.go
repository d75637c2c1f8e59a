package db

import (
	"fmt"
	"testing"

	sqldriver "github.com/go-sql-driver/mysql"
	"github.com/snagtrack/snagtrack/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		user     string
		password string
		database string
		want     string
	}{
		{"root", "", "snagtrack", "root@tcp(127.0.0.1:3306)/snagtrack?parseTime=true"},
		{"snag", "hunter2", "snagtrack", "snag:hunter2@tcp(127.0.0.1:3306)/snagtrack?parseTime=true"},
		{"root", "", "", "root@tcp(127.0.0.1:3306)/?parseTime=true"},
	}
	for _, tt := range tests {
		got := DSN(tt.user, tt.password, "127.0.0.1", 3306, tt.database)
		if got != tt.want {
			t.Errorf("DSN(%q, %q, ..., %q) = %q, want %q", tt.user, tt.password, tt.database, got, tt.want)
		}
	}
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

func TestAutoMigrate_AllTables(t *testing.T) {
	gdb := testDB(t)

	for _, table := range []string{"users", "projects", "stages", "project_users", "statuses", "priorities", "defects", "comments", "attachments", "history"} {
		if !gdb.Migrator().HasTable(table) {
			t.Errorf("table %q missing after migrate", table)
		}
	}
}

func TestSeedLookups(t *testing.T) {
	gdb := testDB(t)

	if err := SeedLookups(gdb); err != nil {
		t.Fatalf("SeedLookups: %v", err)
	}

	var statuses []models.Status
	if err := gdb.Order("id ASC").Find(&statuses).Error; err != nil {
		t.Fatalf("load statuses: %v", err)
	}
	if len(statuses) != 4 {
		t.Fatalf("status count = %d, want 4", len(statuses))
	}
	for i, want := range models.StatusNames {
		if statuses[i].Name != want {
			t.Errorf("statuses[%d] = %q, want %q", i, statuses[i].Name, want)
		}
	}

	var priorityCount int64
	gdb.Model(&models.Priority{}).Count(&priorityCount)
	if priorityCount != 4 {
		t.Errorf("priority count = %d, want 4", priorityCount)
	}
}

func TestSeedLookups_Idempotent(t *testing.T) {
	gdb := testDB(t)

	if err := SeedLookups(gdb); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := SeedLookups(gdb); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var statusCount int64
	gdb.Model(&models.Status{}).Count(&statusCount)
	if statusCount != 4 {
		t.Errorf("status count after re-seed = %d, want 4", statusCount)
	}
}

func TestIsDuplicateEntry(t *testing.T) {
	if IsDuplicateEntry(nil) {
		t.Error("nil error should not be a duplicate entry")
	}
	if IsDuplicateEntry(fmt.Errorf("plain error")) {
		t.Error("plain error should not be a duplicate entry")
	}
	dup := &sqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"}
	if !IsDuplicateEntry(dup) {
		t.Error("MySQL error 1062 should be a duplicate entry")
	}
	if !IsDuplicateEntry(fmt.Errorf("wrapped: %w", dup)) {
		t.Error("wrapped 1062 should be a duplicate entry")
	}
	other := &sqldriver.MySQLError{Number: 1064, Message: "syntax"}
	if IsDuplicateEntry(other) {
		t.Error("MySQL error 1064 should not be a duplicate entry")
	}
}

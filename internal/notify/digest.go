package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/snagtrack/snagtrack/internal/report"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// RunDigest sends an open-defects summary on the given cron schedule until
// ctx is cancelled. An unparseable expression disables the digest.
func RunDigest(ctx context.Context, gdb *gorm.DB, n Notifier, cronExpr string) {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		log.Printf("notify: invalid digest cron %q, digest disabled: %v", cronExpr, err)
		return
	}
	for {
		d := nextCronDuration(cronExpr)
		if d == 0 {
			d = time.Minute
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d):
			sendDigest(gdb, n)
		}
	}
}

// sendDigest builds and delivers one digest message.
func sendDigest(gdb *gorm.DB, n Notifier) {
	counts, err := report.OpenCountsByProject(gdb)
	if err != nil {
		log.Printf("notify: digest query failed: %v", err)
		return
	}
	n.DailyDigest(FormatDigest(counts))
}

// FormatDigest renders per-project open-defect counts as a digest message.
func FormatDigest(counts []report.ProjectOpenCount) string {
	if len(counts) == 0 {
		return "Open defects: none"
	}
	var b strings.Builder
	b.WriteString("Open defects by project:")
	for _, c := range counts {
		fmt.Fprintf(&b, "\n- %s: %d", c.Project, c.Count)
	}
	return b.String()
}

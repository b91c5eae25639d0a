package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/identity-finder/internal/models"
	"gorm.io/gorm"
)

// StartCleanup deletes system_logs older than retentionDays once at start
// and then daily, until done is closed.
func StartCleanup(db *gorm.DB, retentionDays int, done <-chan struct{}) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			purgeSystemLogs(db, time.Now().AddDate(0, 0, -retentionDays))
			select {
			case <-ticker.C:
			case <-done:
				return
			}
		}
	}()
}

func purgeSystemLogs(db *gorm.DB, cutoff time.Time) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Warn("log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"kpitracker/config"
	"kpitracker/database"
	periodsRepo "kpitracker/database/repository/periods"
	recordsRepo "kpitracker/database/repository/records"
	"kpitracker/services/period"
	"kpitracker/utils"
)

func main() {
	timezone := flag.String("timezone", "", "Optional: override TIMEZONE for resolving the open period.")
	closePrevious := flag.Bool("close-previous", false, "Also archive the period that ended most recently.")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall deadline for the run.")
	flag.Parse()

	config.LoadConfig()
	if tz := strings.TrimSpace(*timezone); tz != "" {
		config.AppConfig.Timezone = tz
	}
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	database.InitDB()
	defer func() { _ = database.CloseDB(context.Background()) }()
	db := database.Database()

	records := recordsRepo.NewMongoRecordRepo(db)
	snapshots := periodsRepo.NewMongoSnapshotRepo(db)
	// The unique period_id index is what keeps a concurrent server from
	// writing a second snapshot while this runs.
	if err := snapshots.EnsureIndexes(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to ensure snapshot indexes: %v\n", err)
		os.Exit(1)
	}
	if err := records.EnsureIndexes(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to ensure record indexes: %v\n", err)
		os.Exit(1)
	}

	cal := period.NewCalendar(config.AppConfig.Location(), nil)
	archiver := period.NewArchiveManager(cal, records, snapshots, config.AppConfig.Goals, nil, logger)
	migrator := period.NewMigrator(cal, records, archiver, logger)

	fmt.Printf("Migrating legacy entries database=%s current=%s\n", config.AppConfig.DatabaseName, cal.Current().ID)

	result, err := migrator.MigrateLegacy(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))

	if *closePrevious {
		snapshot, err := archiver.ClosePrevious(ctx)
		var already *period.AlreadyArchivedError
		switch {
		case err == nil:
			fmt.Printf("Archived %s\n", snapshot.PeriodID)
		case errors.As(err, &already):
			fmt.Printf("%s already archived\n", already.PeriodID)
		default:
			fmt.Fprintf(os.Stderr, "close previous failed: %v\n", err)
			os.Exit(1)
		}
	}
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfoltran/envclone/internal/metrics"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show replication progress",
	Long:  `Status reports the current phase, per-entity progress, and throughput of the last run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := metrics.ReadStateFile()
		if err != nil {
			fmt.Println("No run state found. Is a run in progress?")
			fmt.Printf("  (error: %v)\n", err)
			return nil
		}

		age := time.Since(snap.Timestamp)
		stale := ""
		if age > 10*time.Second {
			stale = fmt.Sprintf(" (stale — %s ago)", age.Truncate(time.Second))
		}

		fmt.Printf("Phase:       %s%s\n", snap.Phase, stale)
		fmt.Printf("Elapsed:     %.0fs\n", snap.ElapsedSec)
		fmt.Printf("Entities:    %d/%d done\n", snap.EntitiesDone, snap.EntitiesTotal)
		fmt.Printf("Throughput:  %.0f records/s\n", snap.RecordsPerSec)
		fmt.Printf("Total:       %d records\n", snap.TotalRecords)

		if snap.ErrorCount > 0 {
			fmt.Printf("Errors:      %d (last: %s)\n", snap.ErrorCount, snap.LastError)
		}

		if len(snap.Entities) > 0 {
			fmt.Println("\nEntities:")
			for _, e := range snap.Entities {
				fmt.Printf("  %-30s %s  %5.1f%%  (%d/%d records)\n",
					e.Name, e.Status, e.Percent, e.RecordsDone, e.RecordsTotal)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

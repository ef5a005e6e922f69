package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfoltran/envclone/internal/metrics"
	"github.com/jfoltran/envclone/internal/tui"
)

var dashboardAPIAddr string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Launch terminal dashboard",
	Long: `Dashboard starts a Bubble Tea terminal UI for monitoring a running
envclone instance. It polls the status server of a running run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		collector := metrics.NewCollector(logger)
		defer collector.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go pollRemote(ctx, dashboardAPIAddr, collector)

		return tui.Run(collector)
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardAPIAddr, "api-addr", "http://localhost:7654", "Address of envclone status server")
	rootCmd.AddCommand(dashboardCmd)
}

func pollRemote(ctx context.Context, addr string, collector *metrics.Collector) {
	client := &http.Client{Timeout: 5 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, err := fetchStatus(client, addr)
			if err != nil {
				collector.RecordError(fmt.Errorf("api fetch: %w", err))
				continue
			}
			collector.SetPhase(snap.Phase)
			collector.SetEntities(snap.Entities)
		}
	}
}

func fetchStatus(client *http.Client, addr string) (*metrics.Snapshot, error) {
	resp, err := client.Get(addr + "/api/v1/status")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var snap metrics.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

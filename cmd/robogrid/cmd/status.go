package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	coregrpc "github.com/msto63/robogrid/pkg/core/grpc"
	"github.com/msto63/robogrid/pkg/core/health"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Prüft einen laufenden Server",
	Long: `Prüft die Erreichbarkeit eines mit "robogrid serve" gestarteten
Servers über HTTP (/health) und den gRPC Health-Service.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "RoboGrid Status")
	fmt.Fprintln(out, "===============")

	healthy := true

	report, err := checkHTTP(ctx, "http://"+cfg.HTTPAddress()+"/health")
	if err != nil {
		healthy = false
		fmt.Fprintf(out, "  [-] HTTP  %-22s nicht erreichbar (%v)\n", cfg.HTTPAddress(), err)
	} else if !printReport(out, cfg.HTTPAddress(), report) {
		healthy = false
	}

	services := []string{"", "engine"}
	if cfg.Journal.Enabled {
		services = append(services, "journal")
	}
	for _, service := range services {
		name := service
		if name == "" {
			name = "gesamt"
		}
		status, err := coregrpc.CheckHealth(ctx, cfg.GRPCAddress(), service)
		if err != nil {
			healthy = false
			fmt.Fprintf(out, "  [-] gRPC  %-22s %s: %v\n", cfg.GRPCAddress(), name, err)
			continue
		}
		fmt.Fprintf(out, "  [+] gRPC  %-22s %s: %s\n", cfg.GRPCAddress(), name, status)
	}

	if !healthy {
		fmt.Fprintln(out, "\nServer nicht vollständig erreichbar. Start mit: robogrid serve")
		return &exitError{code: 1}
	}
	return nil
}

// checkHTTP fetches the health report. /health answers 503 with a report
// body when a check fails, so the status code alone is not an error.
func checkHTTP(ctx context.Context, url string) (*health.Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("invalid health response (HTTP %d): %w", resp.StatusCode, err)
	}
	return &report, nil
}

// printReport lists the report and its checks and returns report.Healthy()
func printReport(out io.Writer, addr string, report *health.Report) bool {
	mark := "+"
	if !report.Healthy() {
		mark = "-"
	}
	fmt.Fprintf(out, "  [%s] HTTP  %-22s %s (Version %s)\n", mark, addr, report.Status, report.Version)
	for _, c := range report.Checks {
		line := fmt.Sprintf("        - %-10s %s", c.Name, c.Status)
		if c.Message != "" {
			line += ": " + c.Message
		}
		fmt.Fprintln(out, line)
	}
	return report.Healthy()
}

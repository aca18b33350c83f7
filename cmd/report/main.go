package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"ozondash/internal/analytics"
	"ozondash/internal/backend"
	"ozondash/internal/collector"
	"ozondash/internal/directory"
	"ozondash/internal/domain"
	"ozondash/internal/service"
	"strings"
	"time"

	"go.uber.org/zap"
)

func printBuckets(view domain.ChartView, totalsOnly bool) {
	fmt.Printf("\nTreatments for %s, %s\n\n", view.Scope.Label(), view.Period)

	if totalsOnly {
		fmt.Printf("%-12s %8s\n", "Slot", "Total")
		fmt.Printf("%s\n", strings.Repeat("-", 21))
		for _, b := range view.TotalSeries {
			fmt.Printf("%-12s %8d\n", b.Label, b.Total)
		}
		return
	}

	fmt.Printf("%-12s %8s %8s %8s %8s\n", "Slot", "Total", "Basic", "Standard", "Premium")
	fmt.Printf("%s\n", strings.Repeat("-", 48))
	for _, b := range view.Buckets {
		fmt.Printf("%-12s %8d %8d %8d %8d\n", b.Label, b.Total, b.Basic, b.Standard, b.Premium)
	}
}

func printSummary(view domain.ChartView) {
	if view.Analytics == nil {
		fmt.Printf("\nNo devices in scope\n")
		return
	}

	totals := view.Analytics.Totals
	fmt.Printf("\nPeriod Totals:\n")
	fmt.Printf("-------------\n")
	fmt.Printf("Total:    %d\n", totals.Total)
	fmt.Printf("Basic:    %d\n", totals.Basic)
	fmt.Printf("Standard: %d\n", totals.Standard)
	fmt.Printf("Premium:  %d\n", totals.Premium)

	if len(view.Breakdown) > 0 {
		fmt.Printf("\nBreakdown:\n")
		fmt.Printf("---------\n")
		for _, s := range view.Breakdown {
			fmt.Printf("%-9s %6d %6.1f%%\n", s.Name, s.Value, s.Percent)
		}
	}

	fmt.Printf("\nRecent events: %d\n", len(view.Analytics.RecentEvents))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	var (
		baseURL    string
		scopeArg   string
		periodArg  string
		dateArg    string
		fromArg    string
		toArg      string
		policyArg  string
		timeout    time.Duration
		totalsOnly bool
	)

	flag.StringVar(&baseURL, "backend", envOr("BACKEND_BASE_URL", "http://localhost:8000/api"), "Telemetry backend base URL")
	flag.StringVar(&scopeArg, "scope", "all", "Scope: all, outlet:<id> or device:<id>")
	flag.StringVar(&periodArg, "period", "week", "Period: day, week, month, year or custom")
	flag.StringVar(&dateArg, "date", "", "Anchor date (format: YYYY-MM-DD or DD.MM.YYYY), defaults to today")
	flag.StringVar(&fromArg, "from", "", "Custom range start date")
	flag.StringVar(&toArg, "to", "", "Custom range end date")
	flag.StringVar(&policyArg, "policy", "fail-fast", "Join policy: fail-fast or best-effort")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	flag.BoolVar(&totalsOnly, "line", false, "Print the total-only line series")
	debug := flag.Bool("debug", false, "Enable debug output")
	flag.Parse()

	logger := zap.NewNop()
	if *debug {
		logger, _ = zap.NewDevelopment()
	}
	zlog := logger.Sugar()

	scope, err := domain.ParseScope(scopeArg)
	if err != nil {
		log.Fatalf("Invalid scope: %v", err)
	}

	policy, err := collector.ParseJoinPolicy(policyArg)
	if err != nil {
		log.Fatalf("Invalid policy: %v", err)
	}

	parse := func(s string, fallback time.Time) time.Time {
		if s == "" {
			return fallback
		}
		t, err := analytics.ParseDate(s, time.Local)
		if err != nil {
			log.Fatalf("Invalid date: %v", err)
		}
		return t
	}
	today := time.Now()
	period, err := analytics.NewPeriod(periodArg,
		parse(dateArg, today),
		parse(fromArg, today.AddDate(0, 0, -7)),
		parse(toArg, today),
	)
	if err != nil {
		log.Fatalf("Invalid period: %v", err)
	}

	client := backend.NewClient(zlog, backend.Options{BaseURL: baseURL, Timeout: timeout})
	dir := directory.New(zlog, client)
	svc := service.NewAnalyticsService(zlog, dir, collector.New(zlog, client, policy, timeout, 0), collector.NewSequencer())

	view, err := svc.Chart(context.Background(), "", scope, period)
	if err != nil {
		log.Fatalf("Failed to fetch aggregated analytics: %v", err)
	}

	printBuckets(view, totalsOnly)
	printSummary(view)
}

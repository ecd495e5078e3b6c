// Package main provides a performance benchmarking tool for the Sentinel CLI.
// It measures execution times across portfolio sizes and command types,
// running each test multiple times with and without run history tracking,
// and writes CSV output for performance analysis and documentation.
//
// Prerequisites:
// - sentinel binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory receiving the generated portfolios and the history database
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/sentinelhq/sentinel/internal/dealsource"
	"github.com/sentinelhq/sentinel/schema"
)

// BenchmarkResult holds the averaged timings of one command on one portfolio.
type BenchmarkResult struct {
	Portfolio   string
	Command     string
	UntrackedMs string
	TrackedMs   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	Sizes    []int
	Commands [][]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 2 * time.Minute,
		Runs:    4,
		Sizes:   []int{1_000, 10_000, 100_000},
		Commands: [][]string{
			{"summary"},
			{"deals", "--sort", "value_desc"},
			{"breakdown", "rep"},
			{"report"},
		},
	}

	if _, err := exec.LookPath("sentinel"); err != nil {
		fmt.Printf("Prerequisites check failed: sentinel binary not found in PATH\n")
		os.Exit(1)
	}

	portfolios, err := generatePortfolios(config)
	if err != nil {
		fmt.Printf("Failed to generate portfolios: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, portfolios)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// generatePortfolios writes one synthetic portfolio per size by repeating the
// demo deals under fresh IDs.
func generatePortfolios(config BenchmarkConfig) (map[int]string, error) {
	seed, err := dealsource.DemoSource{}.Load(context.Background())
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return nil, err
	}

	paths := make(map[int]string, len(config.Sizes))
	for _, size := range config.Sizes {
		deals := make([]schema.DealRisk, size)
		for i := range deals {
			d := seed[i%len(seed)]
			d.DealID = fmt.Sprintf("DEAL-%07d", i)
			deals[i] = d
		}
		data, err := json.Marshal(deals)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(config.WorkDir, fmt.Sprintf("portfolio_%d.json", size))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
		fmt.Printf("Generated %d deals at %s\n", size, path)
		paths[size] = path
	}
	return paths, nil
}

// runBenchmarks executes every command against every portfolio.
func runBenchmarks(config BenchmarkConfig, portfolios map[int]string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d portfolios, %v timeout, %d runs per phase\n",
		len(config.Sizes), config.Timeout, config.Runs)

	for _, size := range config.Sizes {
		for _, args := range config.Commands {
			results = append(results, runBenchmarkSuite(config, size, portfolios[size], args))
		}
	}
	return results
}

// runBenchmarkSuite runs the untracked and SQLite-tracked phases of one command.
func runBenchmarkSuite(config BenchmarkConfig, size int, path string, args []string) BenchmarkResult {
	fmt.Printf("Running %s on %d deals\n", args[0], size)
	dbPath := filepath.Join(config.WorkDir, "history.db")

	runPhase := func(backend string) string {
		times := runBenchmark(config, path, dbPath, backend, args)
		if len(times) == 0 {
			return "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return fmt.Sprintf("%.1f", sum/float64(len(times)))
	}

	untracked := runPhase("none")
	tracked := runPhase("sqlite")
	_ = os.Remove(dbPath)

	fmt.Printf("  Untracked: %sms, Tracked: %sms\n", untracked, tracked)
	return BenchmarkResult{
		Portfolio:   fmt.Sprintf("%d", size),
		Command:     args[0],
		UntrackedMs: untracked,
		TrackedMs:   tracked,
	}
}

// runBenchmark executes a sentinel command several times and returns the
// successful run times in milliseconds.
func runBenchmark(config BenchmarkConfig, path, dbPath, backend string, args []string) []float64 {
	full := append([]string{}, args...)
	full = append(full, "--input", path, "--output", "json", "--output-file", os.DevNull,
		"--analysis-backend", backend)
	if backend == "sqlite" {
		full = append(full, "--analysis-db-connect", dbPath)
	}

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		err := exec.CommandContext(ctx, "sentinel", full...).Run()
		elapsed := time.Since(start)
		cancel()
		if err == nil {
			times = append(times, float64(elapsed.Microseconds())/1000)
		}
	}
	return times
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("sentinel_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"deals", "cmd", "untracked_ms", "tracked_ms"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Portfolio, result.Command, result.UntrackedMs, result.TrackedMs}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by command.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	seen := make(map[string]bool)
	for _, r := range results {
		if seen[r.Command] {
			continue
		}
		seen[r.Command] = true
		fmt.Printf("%s:\n", r.Command)
		for _, other := range results {
			if other.Command == r.Command {
				fmt.Printf("  %-8s deals: Untracked: %sms, Tracked: %sms\n", other.Portfolio, other.UntrackedMs, other.TrackedMs)
			}
		}
	}
}

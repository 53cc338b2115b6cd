// Command segheap-bench runs a set of malloc-lab-style trace files
// concurrently, each against its own independent Allocator, and
// reports per-run throughput and fragmentation. Each Allocator is
// single-threaded by contract (see internal/allocator); concurrency
// here comes from running N separate allocators in N goroutines, not
// from sharing one allocator across threads.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/segheap/segheap/internal/allocator"
)

type runResult struct {
	file       string
	ops        int
	duration   time.Duration
	stats      allocator.Stats
	fragmented float64
}

func main() {
	var (
		checkEach = flag.Bool("check", false, "run the invariant checker after every operation")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-check] trace1 [trace2 ...]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	runID := uuid.New()
	log.Printf("segheap-bench: run %s, %d trace files", runID, len(files))

	g, ctx := errgroup.WithContext(context.Background())
	results := make([]runResult, len(files))

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			res, err := runTrace(file, *checkEach)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("segheap-bench: run %s failed: %v", runID, err)
	}

	for _, r := range results {
		opsPerSec := float64(r.ops) / r.duration.Seconds()
		fmt.Printf("run=%s file=%s ops=%d duration=%s ops/s=%.0f bytes_in_use=%d region_bytes=%d fragmentation=%.3f\n",
			runID, r.file, r.ops, r.duration, opsPerSec, r.stats.BytesInUse, r.stats.RegionBytes, r.fragmented)
	}
}

func runTrace(path string, checkEach bool) (runResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return runResult{}, fmt.Errorf("opening: %w", err)
	}
	defer f.Close()

	a, err := allocator.New(0, allocator.WithInvariantChecking(checkEach))
	if err != nil {
		return runResult{}, fmt.Errorf("creating allocator: %w", err)
	}
	defer a.Close()

	live := make(map[string]unsafe.Pointer)
	ops := 0
	start := time.Now()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		ops++

		switch fields[0] {
		case "a":
			size, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return runResult{}, fmt.Errorf("bad size %q: %w", fields[2], err)
			}
			if ptr := a.Alloc(uintptr(size)); ptr != nil {
				live[fields[1]] = ptr
			}
		case "f":
			if ptr, ok := live[fields[1]]; ok {
				a.Free(ptr)
				delete(live, fields[1])
			}
		case "r":
			size, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return runResult{}, fmt.Errorf("bad size %q: %w", fields[2], err)
			}
			newPtr := a.Realloc(live[fields[1]], uintptr(size))
			if newPtr == nil {
				delete(live, fields[1])
			} else {
				live[fields[1]] = newPtr
			}
		default:
			return runResult{}, fmt.Errorf("unknown op %q", fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return runResult{}, fmt.Errorf("reading: %w", err)
	}

	stats := a.Stats()
	var fragmented float64
	if stats.RegionBytes > 0 {
		fragmented = 1 - float64(stats.BytesInUse)/float64(stats.RegionBytes)
	}

	return runResult{
		file:       path,
		ops:        ops,
		duration:   time.Since(start),
		stats:      stats,
		fragmented: fragmented,
	}, nil
}

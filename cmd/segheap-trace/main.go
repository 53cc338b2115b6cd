// Command segheap-trace replays a malloc-lab-style trace file against
// a segheap Allocator and reports the resulting invariant state.
//
// Trace lines are one allocator operation each:
//
//	a <id> <size>   allocate <size> bytes, remember the result as <id>
//	f <id>          free the block previously allocated as <id>
//	r <id> <size>   reallocate <id> to <size> bytes
//
// Blank lines and lines starting with # are ignored.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unsafe"

	"github.com/fsnotify/fsnotify"

	"github.com/segheap/segheap/internal/allocator"
)

func main() {
	var (
		traceFile = flag.String("file", "", "trace file to replay")
		watchDir  = flag.String("watch", "", "watch a directory for new .trace files and replay each as it appears")
		checkEach = flag.Bool("check", false, "run the invariant checker after every operation")
		quiet     = flag.Bool("quiet", false, "suppress per-operation output")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -file trace.txt [-check]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -watch ./traces [-check]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *traceFile == "" && *watchDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	if *traceFile != "" {
		if err := replayFile(*traceFile, *checkEach, *quiet); err != nil {
			log.Fatalf("segheap-trace: %v", err)
		}
		return
	}

	if err := watch(*watchDir, *checkEach, *quiet); err != nil {
		log.Fatalf("segheap-trace: %v", err)
	}
}

func watch(dir string, checkEach, quiet bool) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	log.Printf("segheap-trace: watching %s for *.trace files", dir)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if filepath.Ext(ev.Name) != ".trace" {
				continue
			}
			log.Printf("segheap-trace: replaying %s", ev.Name)
			if err := replayFile(ev.Name, checkEach, quiet); err != nil {
				log.Printf("segheap-trace: %s: %v", ev.Name, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("segheap-trace: watcher error: %v", err)
		}
	}
}

func replayFile(path string, checkEach, quiet bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	a, err := allocator.New(0, allocator.WithInvariantChecking(checkEach))
	if err != nil {
		return fmt.Errorf("creating allocator: %w", err)
	}
	defer a.Close()

	live := make(map[string]unsafe.Pointer)

	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "a":
			if len(fields) != 3 {
				return fmt.Errorf("line %d: malformed alloc op %q", lineNo, line)
			}
			id := fields[1]
			size, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: bad size %q: %w", lineNo, fields[2], err)
			}
			ptr := a.Alloc(uintptr(size))
			if ptr == nil {
				if !quiet {
					fmt.Printf("alloc %s %d -> OOM\n", id, size)
				}
				continue
			}
			live[id] = ptr
			if !quiet {
				fmt.Printf("alloc %s %d -> ok\n", id, size)
			}

		case "f":
			if len(fields) != 2 {
				return fmt.Errorf("line %d: malformed free op %q", lineNo, line)
			}
			id := fields[1]
			if ptr, ok := live[id]; ok {
				a.Free(ptr)
				delete(live, id)
			}
			if !quiet {
				fmt.Printf("free %s\n", id)
			}

		case "r":
			if len(fields) != 3 {
				return fmt.Errorf("line %d: malformed realloc op %q", lineNo, line)
			}
			id := fields[1]
			size, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: bad size %q: %w", lineNo, fields[2], err)
			}
			newPtr := a.Realloc(live[id], uintptr(size))
			if newPtr == nil {
				delete(live, id)
			} else {
				live[id] = newPtr
			}
			if !quiet {
				fmt.Printf("realloc %s %d -> %v\n", id, size, newPtr != nil)
			}

		default:
			return fmt.Errorf("line %d: unknown op %q", lineNo, fields[0])
		}

		if checkEach {
			if rep := a.Check(); !rep.OK {
				return fmt.Errorf("line %d: invariant check failed: %v", lineNo, rep.Violations)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	stats := a.Stats()
	fmt.Printf("done: allocs=%d frees=%d extends=%d bytes_in_use=%d region_bytes=%d\n",
		stats.AllocCount, stats.FreeCount, stats.ExtendCount, stats.BytesInUse, stats.RegionBytes)
	return nil
}

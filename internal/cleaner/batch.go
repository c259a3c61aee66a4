package cleaner

import (
	"context"
	"encoding/json"
	"log"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/caffix/stringset"
	"github.com/google/uuid"

	"github.com/aus-address-cleaner/internal/debug"
)

// BatchStats summarizes one batch run.
type BatchStats struct {
	RunID         string         `json:"run_id"`
	Total         int            `json:"total"`
	Invalid       int            `json:"invalid"`
	International int            `json:"international"`
	Errors        int            `json:"errors"`
	Levels        map[string]int `json:"levels"`
	DistinctFlags []string       `json:"distinct_flags"`
	Elapsed       time.Duration  `json:"elapsed"`
}

type batchJob struct {
	index  int
	record Record
}

type batchResult struct {
	index  int
	result Result
}

// CleanBatch runs the pipeline over records with a worker pool,
// preserving input order in the returned results. Cancelling the
// context stops feeding work; unprocessed records come back as
// processing errors.
func (c *Cleaner) CleanBatch(ctx context.Context, records []Record) ([]Result, BatchStats) {
	start := time.Now()

	stats := BatchStats{
		RunID:  uuid.New().String(),
		Levels: make(map[string]int),
	}
	results := make([]Result, len(records))

	if len(records) == 0 {
		return results, stats
	}

	defer debug.Timing("batch " + stats.RunID)()

	if max := c.cfg.Processing.MaxBatchSize; len(records) > max {
		log.Printf("batch has %d records, which exceeds max_batch_size %d, consider smaller batches",
			len(records), max)
	}

	workers := c.cfg.Processing.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(records) {
		workers = len(records)
	}

	jobs := make(chan batchJob, workers)
	out := make(chan batchResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				out <- batchResult{job.index, c.CleanRecord(ctx, job.record)}
			}
		}()
	}

	flagSet := stringset.New()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range out {
			results[r.index] = r.result
			c.countResult(&stats, flagSet, r.result)

			if stats.Total%1000 == 0 {
				log.Printf("processed %d of %d addresses", stats.Total, len(records))
			}
		}
	}()

	// Feed until done or cancelled. Workers never see indexes past a
	// cancellation point, so those slots are filled in afterwards.
	cancelledFrom := -1
feed:
	for i := range records {
		select {
		case jobs <- batchJob{i, records[i]}:
		case <-ctx.Done():
			cancelledFrom = i
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(out)
	<-done

	if cancelledFrom >= 0 {
		for i := cancelledFrom; i < len(records); i++ {
			res := errorResult(records[i], ctx.Err())
			results[i] = res
			c.countResult(&stats, flagSet, res)
		}
	}

	// stringset stores elements lowercased; the flag vocabulary is uppercase.
	stats.DistinctFlags = flagSet.Slice()
	for i, flag := range stats.DistinctFlags {
		stats.DistinctFlags[i] = strings.ToUpper(flag)
	}
	sort.Strings(stats.DistinctFlags)
	stats.Elapsed = time.Since(start)

	log.Printf("cleaned %d addresses in %.2f seconds (%.1f/sec)",
		stats.Total, stats.Elapsed.Seconds(), float64(stats.Total)/stats.Elapsed.Seconds())

	return results, stats
}

func (c *Cleaner) countResult(stats *BatchStats, flagSet *stringset.Set, res Result) {
	stats.Total++
	if res.IsInvalidAddress {
		stats.Invalid++
	}
	if res.IsInternational {
		stats.International++
	}
	if strings.HasPrefix(res.InconsistencyFlags, "PROCESSING_ERROR") {
		stats.Errors++
	}
	stats.Levels[c.scorer.Classify(res.ConfidenceLevel)]++

	for _, flag := range c.splitFlags(res.InconsistencyFlags) {
		flagSet.Insert(flag)
	}
}

// splitFlags undoes formatFlags for stats counting.
func (c *Cleaner) splitFlags(formatted string) []string {
	if formatted == "" {
		return nil
	}

	if c.cfg.Output.InconsistencyFlagsFormat == "json" {
		var flags []string
		if err := json.Unmarshal([]byte(formatted), &flags); err == nil {
			return flags
		}
	}

	return strings.Split(formatted, ", ")
}

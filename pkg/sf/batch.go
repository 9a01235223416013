package sf

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fivetwenty-io/sfctl/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrBatchJobFailed   = errors.New("batch drain job failed")
	ErrDuplicateJobName = errors.New("duplicate batch job name")
)

// DrainJob is one independent drain run by a BatchDrainer.
type DrainJob struct {
	Name string
	Run  func(ctx context.Context) (DrainResult, error)
}

// NewDrainJob binds a fetch and emit pair into a DrainJob. The emit function
// is only ever called from the job's own goroutine.
func NewDrainJob[T any](name string, fetch FetchFunc[T], emit EmitFunc[T], opts ...DrainOption) DrainJob {
	return DrainJob{
		Name: name,
		Run: func(ctx context.Context) (DrainResult, error) {
			return DrainAll(ctx, fetch, EmptyContinuationToken, emit, opts...)
		},
	}
}

// BatchResult is the result of one DrainJob.
type BatchResult struct {
	Name     string
	Result   DrainResult
	Error    error
	Duration time.Duration
}

// BatchDrainer runs several drains concurrently. Jobs share no state; a
// failing job does not stop its siblings.
type BatchDrainer struct {
	concurrency int
	timeout     time.Duration
}

// NewBatchDrainer creates a drainer that runs at most concurrency jobs at once.
func NewBatchDrainer(concurrency int) *BatchDrainer {
	if concurrency <= 0 {
		concurrency = constants.DefaultConcurrencyLimit
	}

	return &BatchDrainer{
		concurrency: concurrency,
	}
}

// SetTimeout bounds each job. Zero disables the per job bound.
func (b *BatchDrainer) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs the jobs and returns one result per job in input order. The
// returned error joins every job failure.
func (b *BatchDrainer) Execute(ctx context.Context, jobs []DrainJob) ([]BatchResult, error) {
	seen := make(map[string]struct{}, len(jobs))
	for _, job := range jobs {
		if _, ok := seen[job.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateJobName, job.Name)
		}

		seen[job.Name] = struct{}{}
	}

	results := make([]BatchResult, len(jobs))

	var group errgroup.Group

	group.SetLimit(b.concurrency)

	var (
		mutex    sync.Mutex
		failures []error
	)

	for index, job := range jobs {
		group.Go(func() error {
			jobCtx := ctx

			if b.timeout > 0 {
				var cancel context.CancelFunc

				jobCtx, cancel = context.WithTimeout(ctx, b.timeout)
				defer cancel()
			}

			start := time.Now()
			result, err := job.Run(jobCtx)

			results[index] = BatchResult{
				Name:     job.Name,
				Result:   result,
				Error:    err,
				Duration: time.Since(start),
			}

			if err != nil {
				mutex.Lock()
				failures = append(failures, fmt.Errorf("%w %q after %d items: %w", ErrBatchJobFailed, job.Name, result.Count, err))
				mutex.Unlock()
			}

			return nil
		})
	}

	_ = group.Wait()

	return results, errors.Join(failures...)
}

// TotalCount sums the item counts of a batch.
func TotalCount(results []BatchResult) int {
	total := 0
	for _, result := range results {
		total += result.Result.Count
	}

	return total
}

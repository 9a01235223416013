package sf

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/sfctl/internal/constants"
)

// FetchFunc performs one round trip for the page that starts at token.
// Returning a nil page and a nil error means the server returned no page at
// all, which ends the drain without an error.
type FetchFunc[T any] func(ctx context.Context, token ContinuationToken) (*PagedList[T], error)

// EmitFunc receives items in page order. A non-nil error stops the drain.
type EmitFunc[T any] func(item T) error

// DrainOutcome describes how a drain ended.
type DrainOutcome int

const (
	// DrainCompleted means the last page reported no further data.
	DrainCompleted DrainOutcome = iota
	// DrainStopped means a fetch returned no page.
	DrainStopped
	// DrainFailed means a fetch or emit returned an error.
	DrainFailed
	// DrainCancelled means the context ended before the collection was exhausted.
	DrainCancelled
)

// String implements fmt.Stringer.
func (o DrainOutcome) String() string {
	switch o {
	case DrainCompleted:
		return "completed"
	case DrainStopped:
		return "stopped"
	case DrainFailed:
		return "failed"
	case DrainCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("DrainOutcome(%d)", int(o))
	}
}

// DrainResult reports what a drain did, including partial progress when it
// ended with an error.
type DrainResult struct {
	// Count is the number of items passed to emit.
	Count int
	// Pages is the number of fetch calls that returned.
	Pages int
	// ContinuationToken is the last token observed.
	ContinuationToken ContinuationToken
	Outcome           DrainOutcome
}

type drainOptions struct {
	logger Logger
}

// DrainOption configures DrainAll.
type DrainOption func(*drainOptions)

// WithDrainLogger logs one debug line per fetched page.
func WithDrainLogger(logger Logger) DrainOption {
	return func(o *drainOptions) {
		o.logger = logger
	}
}

// DrainAll fetches every page of a collection, in order, and passes each item
// to emit exactly once.
//
// The first fetch always happens, whatever the initial token says. The loop
// ends when a fetch returns no page or when a page's token has no next value.
// Fetch errors are returned unchanged. Items emitted before an error or a
// cancellation stay emitted; the returned DrainResult counts them.
func DrainAll[T any](
	ctx context.Context,
	fetch FetchFunc[T],
	initial ContinuationToken,
	emit EmitFunc[T],
	opts ...DrainOption,
) (DrainResult, error) {
	options := &drainOptions{}
	for _, opt := range opts {
		opt(options)
	}

	result := DrainResult{ContinuationToken: initial}

	for {
		err := ctx.Err()
		if err != nil {
			result.Outcome = DrainCancelled

			return result, err
		}

		page, err := fetch(ctx, result.ContinuationToken)
		if err != nil {
			if ctx.Err() != nil {
				result.Outcome = DrainCancelled
			} else {
				result.Outcome = DrainFailed
			}

			return result, err
		}

		result.Pages++

		if page == nil {
			result.Outcome = DrainStopped

			if options.logger != nil {
				options.logger.Debug("fetch returned no page, stopping", map[string]interface{}{
					"pages": result.Pages,
					"items": result.Count,
				})
			}

			return result, nil
		}

		for _, item := range page.Items {
			err = ctx.Err()
			if err != nil {
				result.Outcome = DrainCancelled

				return result, err
			}

			err = emit(item)
			if err != nil {
				result.Outcome = DrainFailed

				return result, err
			}

			result.Count++
		}

		result.ContinuationToken = page.ContinuationToken

		if options.logger != nil {
			options.logger.Debug("fetched page", map[string]interface{}{
				"items":              len(page.Items),
				"continuation_token": page.ContinuationToken.String(),
			})
		}

		if !page.ContinuationToken.HasNext() {
			result.Outcome = DrainCompleted

			return result, nil
		}
	}
}

// FetchAllPages drains a collection into a slice.
func FetchAllPages[T any](ctx context.Context, fetch FetchFunc[T], opts ...DrainOption) ([]T, error) {
	var all []T

	_, err := DrainAll(ctx, fetch, EmptyContinuationToken, func(item T) error {
		all = append(all, item)

		return nil
	}, opts...)
	if err != nil {
		return all, err
	}

	return all, nil
}

// PageResult is one element of StreamPages.
type PageResult[T any] struct {
	Items             []T
	ContinuationToken ContinuationToken
	Err               error
}

// StreamPages drains a collection in a goroutine and sends one result per
// page. A failed fetch or a cancelled context ends the stream with a final
// result carrying the error and the token to resume from. The channel is
// closed when the drain ends. The next page is not requested until the
// receiver has taken the current one.
func StreamPages[T any](ctx context.Context, fetch FetchFunc[T]) <-chan PageResult[T] {
	results := make(chan PageResult[T])

	go func() {
		defer close(results)

		token := EmptyContinuationToken

		for {
			err := ctx.Err()
			if err != nil {
				sendFinal(results, PageResult[T]{ContinuationToken: token, Err: err})

				return
			}

			page, err := fetch(ctx, token)
			if err != nil {
				sendFinal(results, PageResult[T]{ContinuationToken: token, Err: err})

				return
			}

			if page == nil {
				return
			}

			select {
			case results <- PageResult[T]{Items: page.Items, ContinuationToken: page.ContinuationToken}:
			case <-ctx.Done():
				sendFinal(results, PageResult[T]{ContinuationToken: token, Err: ctx.Err()})

				return
			}

			token = page.ContinuationToken
			if !token.HasNext() {
				return
			}
		}
	}()

	return results
}

// sendFinal delivers the last result of a stream. A receiver that has gone
// away is given up on after StreamFinalResultTimeout.
func sendFinal[T any](results chan<- PageResult[T], result PageResult[T]) {
	timer := time.NewTimer(constants.StreamFinalResultTimeout)
	defer timer.Stop()

	select {
	case results <- result:
	case <-timer.C:
	}
}

// PaginationIterator walks a paged collection one item at a time.
type PaginationIterator[T any] struct {
	ctx     context.Context //nolint:containedctx // Iterator is bound to a single listing
	fetch   FetchFunc[T]
	token   ContinuationToken
	buffer  []T
	started bool
	done    bool
	err     error
}

// NewPaginationIterator creates an iterator over the collection served by fetch.
func NewPaginationIterator[T any](ctx context.Context, fetch FetchFunc[T]) *PaginationIterator[T] {
	return &PaginationIterator[T]{
		ctx:   ctx,
		fetch: fetch,
	}
}

// HasNext reports whether another item is available, fetching pages as needed.
// It returns false after an error or once the context is cancelled, even
// with items still buffered; Err reports why.
func (it *PaginationIterator[T]) HasNext() bool {
	if it.err != nil {
		return false
	}

	err := it.ctx.Err()
	if err != nil {
		it.err = err
		it.buffer = nil

		return false
	}

	for len(it.buffer) == 0 {
		if it.done || it.err != nil {
			return false
		}

		it.fetchNext()
	}

	return true
}

// Next returns the next item.
func (it *PaginationIterator[T]) Next() (T, error) {
	var zero T

	if !it.HasNext() {
		if it.err != nil {
			return zero, it.err
		}

		return zero, ErrNoMoreItems
	}

	item := it.buffer[0]
	it.buffer = it.buffer[1:]

	return item, nil
}

// Err returns the error that stopped iteration, if any.
func (it *PaginationIterator[T]) Err() error {
	return it.err
}

// ContinuationToken returns the token of the last fetched page.
func (it *PaginationIterator[T]) ContinuationToken() ContinuationToken {
	return it.token
}

// All returns the remaining items.
func (it *PaginationIterator[T]) All() ([]T, error) {
	var all []T

	err := it.ForEach(func(item T) error {
		all = append(all, item)

		return nil
	})

	return all, err
}

// ForEach calls fn for each remaining item.
func (it *PaginationIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return it.err
}

func (it *PaginationIterator[T]) fetchNext() {
	if it.started && !it.token.HasNext() {
		it.done = true

		return
	}

	err := it.ctx.Err()
	if err != nil {
		it.err = err

		return
	}

	it.started = true

	page, err := it.fetch(it.ctx, it.token)
	if err != nil {
		it.err = err

		return
	}

	if page == nil {
		it.done = true

		return
	}

	it.buffer = page.Items
	it.token = page.ContinuationToken
}

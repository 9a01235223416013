package sf_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/sfctl/pkg/sf"
)

var errGatewayUnavailable = errors.New("gateway unavailable")

type TestResource struct {
	ID   string
	Name string
}

// scriptedFetcher serves a fixed list of pages and records every token it
// is called with.
type scriptedFetcher struct {
	pages    []*sf.PagedList[TestResource]
	errs     map[int]error
	tokens   []sf.ContinuationToken
	inFlight atomic.Int32
	overlap  atomic.Bool
	delay    time.Duration
}

func (f *scriptedFetcher) fetch(ctx context.Context, token sf.ContinuationToken) (*sf.PagedList[TestResource], error) {
	if f.inFlight.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.inFlight.Add(-1)

	call := len(f.tokens)
	f.tokens = append(f.tokens, token)

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	if err, ok := f.errs[call]; ok {
		return nil, err
	}

	if call >= len(f.pages) {
		return nil, fmt.Errorf("unexpected fetch #%d", call+1)
	}

	return f.pages[call], nil
}

func resources(prefix string, n int) []TestResource {
	items := make([]TestResource, n)
	for i := range items {
		id := fmt.Sprintf("%s-%d", prefix, i+1)
		items[i] = TestResource{ID: id, Name: "Resource " + id}
	}

	return items
}

func page(next string, items ...TestResource) *sf.PagedList[TestResource] {
	return &sf.PagedList[TestResource]{
		ContinuationToken: sf.NewContinuationToken(next),
		Items:             items,
	}
}

func collect(items *[]TestResource) sf.EmitFunc[TestResource] {
	return func(item TestResource) error {
		*items = append(*items, item)

		return nil
	}
}

func TestDrainAll_FullDrain(t *testing.T) {
	t.Parallel()

	p1 := resources("a", 3)
	p2 := resources("b", 2)
	p3 := resources("c", 4)

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{
		page("t1", p1...),
		page("t2", p2...),
		page("", p3...),
	}}

	var emitted []TestResource

	result, err := sf.DrainAll(context.Background(), fetcher.fetch, sf.EmptyContinuationToken, collect(&emitted))
	require.NoError(t, err)

	expected := append(append(append([]TestResource{}, p1...), p2...), p3...)
	assert.Equal(t, expected, emitted)
	assert.Equal(t, 9, result.Count)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, sf.DrainCompleted, result.Outcome)
	assert.False(t, result.ContinuationToken.HasNext())
}

func TestDrainAll_SingleEmptyPage(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{page("")}}

	var emitted []TestResource

	result, err := sf.DrainAll(context.Background(), fetcher.fetch, sf.EmptyContinuationToken, collect(&emitted))
	require.NoError(t, err)

	assert.Empty(t, emitted)
	assert.Equal(t, 0, result.Count)
	assert.Len(t, fetcher.tokens, 1)
	assert.Equal(t, sf.DrainCompleted, result.Outcome)
}

func TestDrainAll_AbsentFirstPage(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{nil}}

	var emitted []TestResource

	result, err := sf.DrainAll(context.Background(), fetcher.fetch, sf.EmptyContinuationToken, collect(&emitted))
	require.NoError(t, err)

	assert.Empty(t, emitted)
	assert.Equal(t, 0, result.Count)
	assert.Len(t, fetcher.tokens, 1)
	assert.Equal(t, sf.DrainStopped, result.Outcome)
}

func TestDrainAll_AbsentPageAfterData(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{
		page("t1", resources("a", 2)...),
		nil,
	}}

	var emitted []TestResource

	result, err := sf.DrainAll(context.Background(), fetcher.fetch, sf.EmptyContinuationToken, collect(&emitted))
	require.NoError(t, err)

	assert.Len(t, emitted, 2)
	assert.Equal(t, sf.DrainStopped, result.Outcome)
	assert.Equal(t, "t1", result.ContinuationToken.String())
}

func TestDrainAll_EmptyPageWithMoreData(t *testing.T) {
	t.Parallel()

	a := TestResource{ID: "A"}
	b := TestResource{ID: "B"}

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{
		page("t1"),
		page("", a, b),
	}}

	var emitted []TestResource

	result, err := sf.DrainAll(context.Background(), fetcher.fetch, sf.EmptyContinuationToken, collect(&emitted))
	require.NoError(t, err)

	assert.Equal(t, []TestResource{a, b}, emitted)
	assert.Len(t, fetcher.tokens, 2)
	assert.Equal(t, 2, result.Count)
}

func TestDrainAll_ErrorPropagation(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{
		pages: []*sf.PagedList[TestResource]{
			page("t1", resources("a", 5)...),
			page("t2", resources("b", 5)...),
		},
		errs: map[int]error{2: errGatewayUnavailable},
	}

	var emitted []TestResource

	result, err := sf.DrainAll(context.Background(), fetcher.fetch, sf.EmptyContinuationToken, collect(&emitted))
	require.Error(t, err)

	assert.Same(t, errGatewayUnavailable, err)
	assert.Len(t, emitted, 10)
	assert.Equal(t, 10, result.Count)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, sf.DrainFailed, result.Outcome)
	assert.Equal(t, "t2", result.ContinuationToken.String())
}

func TestDrainAll_TokenChaining(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{
		page("first", resources("a", 1)...),
		page("second"),
		page("third", resources("c", 2)...),
		page("", resources("d", 1)...),
	}}

	var emitted []TestResource

	_, err := sf.DrainAll(context.Background(), fetcher.fetch, sf.EmptyContinuationToken, collect(&emitted))
	require.NoError(t, err)

	require.Len(t, fetcher.tokens, 4)
	assert.True(t, fetcher.tokens[0].IsEmpty())

	for call := 1; call < len(fetcher.tokens); call++ {
		assert.Equal(t, fetcher.pages[call-1].ContinuationToken, fetcher.tokens[call], "fetch #%d", call+1)
	}
}

func TestDrainAll_ResumesFromInitialToken(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{
		page("", resources("a", 2)...),
	}}

	var emitted []TestResource

	result, err := sf.DrainAll(context.Background(), fetcher.fetch, sf.NewContinuationToken("resume-here"), collect(&emitted))
	require.NoError(t, err)

	assert.Equal(t, "resume-here", fetcher.tokens[0].String())
	assert.Equal(t, 2, result.Count)
}

func TestDrainAll_FetchesSequentially(t *testing.T) {
	t.Parallel()

	pages := make([]*sf.PagedList[TestResource], 0, 6)
	for i := 1; i < 6; i++ {
		pages = append(pages, page(fmt.Sprintf("t%d", i), resources(fmt.Sprintf("p%d", i), 3)...))
	}

	pages = append(pages, page(""))

	fetcher := &scriptedFetcher{pages: pages, delay: 2 * time.Millisecond}

	result, err := sf.DrainAll(context.Background(), fetcher.fetch, sf.EmptyContinuationToken, func(TestResource) error {
		return nil
	})
	require.NoError(t, err)

	assert.False(t, fetcher.overlap.Load(), "fetch calls overlapped")
	assert.Equal(t, 15, result.Count)
	assert.Equal(t, 6, result.Pages)
}

func TestDrainAll_EmitError(t *testing.T) {
	t.Parallel()

	errSink := errors.New("sink closed")

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{
		page("t1", resources("a", 3)...),
	}}

	emitted := 0

	result, err := sf.DrainAll(context.Background(), fetcher.fetch, sf.EmptyContinuationToken, func(TestResource) error {
		emitted++
		if emitted == 2 {
			return errSink
		}

		return nil
	})

	require.ErrorIs(t, err, errSink)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, sf.DrainFailed, result.Outcome)
	assert.Len(t, fetcher.tokens, 1)
}

func TestDrainAll_CancelledBeforeFirstFetch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &scriptedFetcher{}

	result, err := sf.DrainAll(ctx, fetcher.fetch, sf.EmptyContinuationToken, func(TestResource) error {
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, sf.DrainCancelled, result.Outcome)
	assert.Empty(t, fetcher.tokens)
}

func TestDrainAll_CancelledBetweenPages(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{
		page("t1", resources("a", 2)...),
		page("", resources("b", 2)...),
	}}

	var emitted []TestResource

	result, err := sf.DrainAll(ctx, fetcher.fetch, sf.EmptyContinuationToken, func(item TestResource) error {
		emitted = append(emitted, item)
		if len(emitted) == 2 {
			cancel()
		}

		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, sf.DrainCancelled, result.Outcome)
	assert.Equal(t, 2, result.Count)
	assert.Len(t, fetcher.tokens, 1)
	assert.Equal(t, "t1", result.ContinuationToken.String())
}

func TestDrainAll_FetchFailsOnCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	fetch := func(ctx context.Context, _ sf.ContinuationToken) (*sf.PagedList[TestResource], error) {
		cancel()

		return nil, fmt.Errorf("request aborted: %w", ctx.Err())
	}

	result, err := sf.DrainAll(ctx, fetch, sf.EmptyContinuationToken, func(TestResource) error {
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, sf.DrainCancelled, result.Outcome)
}

type recordingLogger struct {
	messages []string
	fields   []map[string]interface{}
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.messages = append(l.messages, msg)
	l.fields = append(l.fields, fields)
}

func (l *recordingLogger) Info(string, map[string]interface{})  {}
func (l *recordingLogger) Warn(string, map[string]interface{})  {}
func (l *recordingLogger) Error(string, map[string]interface{}) {}

func TestDrainAll_LogsEachPage(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{
		page("t1", resources("a", 2)...),
		page("", resources("b", 1)...),
	}}

	_, err := sf.DrainAll(context.Background(), fetcher.fetch, sf.EmptyContinuationToken,
		func(TestResource) error { return nil }, sf.WithDrainLogger(logger))
	require.NoError(t, err)

	require.Len(t, logger.messages, 2)
	assert.Equal(t, "fetched page", logger.messages[0])
	assert.Equal(t, 2, logger.fields[0]["items"])
	assert.Equal(t, "t1", logger.fields[0]["continuation_token"])
	assert.Empty(t, logger.fields[1]["continuation_token"])
}

func TestDrainOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "completed", sf.DrainCompleted.String())
	assert.Equal(t, "stopped", sf.DrainStopped.String())
	assert.Equal(t, "failed", sf.DrainFailed.String())
	assert.Equal(t, "cancelled", sf.DrainCancelled.String())
	assert.Equal(t, "DrainOutcome(9)", sf.DrainOutcome(9).String())
}

func TestFetchAllPages(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{
		page("t1", resources("a", 2)...),
		page("", resources("b", 1)...),
	}}

	all, err := sf.FetchAllPages(context.Background(), fetcher.fetch)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "b-1", all[2].ID)
}

func TestFetchAllPages_ReturnsPartialItemsOnError(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{
		pages: []*sf.PagedList[TestResource]{page("t1", resources("a", 2)...)},
		errs:  map[int]error{1: errGatewayUnavailable},
	}

	all, err := sf.FetchAllPages(context.Background(), fetcher.fetch)
	require.ErrorIs(t, err, errGatewayUnavailable)
	assert.Len(t, all, 2)
}

func TestStreamPages(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{
		page("t1", resources("a", 2)...),
		page("t2"),
		page("", resources("c", 1)...),
	}}

	var (
		pages int
		items int
	)

	for result := range sf.StreamPages(context.Background(), fetcher.fetch) {
		require.NoError(t, result.Err)

		pages++
		items += len(result.Items)
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, 3, items)
}

func TestStreamPages_Error(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{
		pages: []*sf.PagedList[TestResource]{page("t1", resources("a", 2)...)},
		errs:  map[int]error{1: errGatewayUnavailable},
	}

	var results []sf.PageResult[TestResource]
	for result := range sf.StreamPages(context.Background(), fetcher.fetch) {
		results = append(results, result)
	}

	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	require.ErrorIs(t, results[1].Err, errGatewayUnavailable)
	assert.Equal(t, "t1", results[1].ContinuationToken.String())
}

func TestStreamPages_StopsOnAbsentPage(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{nil}}

	count := 0
	for range sf.StreamPages(context.Background(), fetcher.fetch) {
		count++
	}

	assert.Zero(t, count)
}

func TestStreamPages_Cancelled(t *testing.T) {
	t.Parallel()

	endless := func(_ context.Context, _ sf.ContinuationToken) (*sf.PagedList[TestResource], error) {
		return page("more", resources("a", 1)...), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		pages   int
		results []sf.PageResult[TestResource]
	)

	for result := range sf.StreamPages(ctx, endless) {
		results = append(results, result)

		if result.Err == nil {
			pages++
			if pages == 1 {
				cancel()
			}
		}
	}

	require.NotEmpty(t, results)

	last := results[len(results)-1]
	require.ErrorIs(t, last.Err, context.Canceled)
	assert.Equal(t, "more", last.ContinuationToken.String())
	assert.LessOrEqual(t, pages, 2)
}

func TestPaginationIterator(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{
		page("t1", resources("a", 2)...),
		page("t2"),
		page("", resources("c", 1)...),
	}}

	iterator := sf.NewPaginationIterator(context.Background(), fetcher.fetch)

	assert.True(t, iterator.HasNext())

	item, err := iterator.Next()
	require.NoError(t, err)
	assert.Equal(t, "a-1", item.ID)

	rest, err := iterator.All()
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, "c-1", rest[1].ID)

	assert.False(t, iterator.HasNext())

	_, err = iterator.Next()
	require.ErrorIs(t, err, sf.ErrNoMoreItems)
	assert.Len(t, fetcher.tokens, 3)
}

func TestPaginationIterator_Error(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{
		pages: []*sf.PagedList[TestResource]{page("t1", resources("a", 1)...)},
		errs:  map[int]error{1: errGatewayUnavailable},
	}

	iterator := sf.NewPaginationIterator(context.Background(), fetcher.fetch)

	var seen []string

	err := iterator.ForEach(func(item TestResource) error {
		seen = append(seen, item.ID)

		return nil
	})

	require.ErrorIs(t, err, errGatewayUnavailable)
	assert.Equal(t, []string{"a-1"}, seen)
	require.ErrorIs(t, iterator.Err(), errGatewayUnavailable)
}

func TestPaginationIterator_AbsentPage(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{nil}}

	iterator := sf.NewPaginationIterator(context.Background(), fetcher.fetch)

	assert.False(t, iterator.HasNext())
	require.NoError(t, iterator.Err())
}

func TestPaginationIterator_Cancelled(t *testing.T) {
	t.Parallel()

	fetcher := &scriptedFetcher{pages: []*sf.PagedList[TestResource]{
		page("", resources("a", 3)...),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	iterator := sf.NewPaginationIterator(ctx, fetcher.fetch)

	var seen []string

	err := iterator.ForEach(func(item TestResource) error {
		seen = append(seen, item.ID)
		cancel()

		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a-1"}, seen)
	assert.False(t, iterator.HasNext())

	_, err = iterator.Next()
	require.ErrorIs(t, err, context.Canceled)
}

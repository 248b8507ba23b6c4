package mapreduce

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// doubler maps an int to its double - a trivial Mapper for exercising the
// wire protocol end to end.
type doubler struct{}

func (doubler) Map(i int) (int, error) { return i * 2, nil }

type sumReducer struct{}

func (sumReducer) Reduce(acc, val int) int { return acc + val }

func startWorker(t *testing.T, mapper Mapper[int, int]) (addr string, worker *Worker[int, int]) {
	t.Helper()
	w := NewWorker[int, int](mapper)
	require.NoError(t, w.Listen("127.0.0.1:0"))

	go func() { _ = w.Serve() }()
	t.Cleanup(func() { _ = w.Close() })

	return w.Addr().String(), w
}

func TestManagerRunSumOfDoubles(t *testing.T) {
	addr1, _ := startWorker(t, doubler{})
	addr2, _ := startWorker(t, doubler{})

	m := &Manager[int, int, int]{
		Workers: []string{addr1, addr2},
		Reducer: sumReducer{},
		Seed:    func(first int) int { return first },
	}

	got, err := m.Run([]int{1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.Equal(t, 30, got) // sum(2,4,6,8,10)
}

func TestManagerRunNoAvailableWorker(t *testing.T) {
	m := &Manager[int, int, int]{
		Workers: []string{"127.0.0.1:1"}, // reserved port, nothing listening
		Reducer: sumReducer{},
		Seed:    func(first int) int { return first },
	}

	_, err := m.Run([]int{1})
	require.ErrorIs(t, err, ErrNoAvailableWorker)
}

// flakyMapper fails on its first invocation then succeeds, modelling a
// worker whose first task is lost to a transient fault.
type flakyMapper struct {
	calls atomic.Int32
}

func (f *flakyMapper) Map(i int) (int, error) {
	if f.calls.Add(1) == 1 {
		return 0, fmt.Errorf("flaky: simulated failure")
	}
	return i * 2, nil
}

func TestManagerMasksSingleWorkerFailure(t *testing.T) {
	flakyAddr, _ := startWorker(t, &flakyMapper{})
	healthyAddr, _ := startWorker(t, doubler{})

	m := &Manager[int, int, int]{
		Workers: []string{flakyAddr, healthyAddr},
		Reducer: sumReducer{},
		Seed:    func(first int) int { return first },
	}

	got, err := m.Run([]int{10})
	require.NoError(t, err)
	require.Equal(t, 20, got)
}

func TestManagerRequiresWorkers(t *testing.T) {
	m := &Manager[int, int, int]{Reducer: sumReducer{}, Seed: func(first int) int { return first }}
	_, err := m.Run([]int{1})
	require.Error(t, err)
}

func TestManagerSendsAllFinished(t *testing.T) {
	addr, w := startWorker(t, doubler{})

	m := &Manager[int, int, int]{
		Workers: []string{addr},
		Reducer: sumReducer{},
		Seed:    func(first int) int { return first },
	}

	_, err := m.Run([]int{1})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return w.closed.Load() }, time.Second, 10*time.Millisecond)
}

func TestWireTaskRoundTrip(t *testing.T) {
	jobPayload, err := encodeJob(42)
	require.NoError(t, err)

	input, finished, err := decodeTask[int](jobPayload)
	require.NoError(t, err)
	require.False(t, finished)
	require.Equal(t, 42, input)

	finishedPayload := encodeAllFinished()
	_, finished, err = decodeTask[int](finishedPayload)
	require.NoError(t, err)
	require.True(t, finished)
}

func TestWireOutputRoundTrip(t *testing.T) {
	payload, err := encodeOutput(99)
	require.NoError(t, err)

	out, err := decodeOutput[int](payload)
	require.NoError(t, err)
	require.Equal(t, 99, out)
}

package mapreduce

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/webgraph-io/webgraph/wire"
)

// Manager shards a stream of map-inputs across a fixed worker roster and
// folds the results into a single accumulator.
//
// The roster is treated as a bounded pool of idle worker addresses (a
// buffered channel, sized to len(Workers)). Each input gets a dispatch
// goroutine, but at most len(Workers) of them make progress at once: the
// rest block waiting for an idle address, so concurrency is capped by the
// roster, not the input count.
type Manager[I, O1, O2 any] struct {
	// Workers is the roster of worker addresses ("host:port"). Required.
	Workers []string

	// Reducer folds each O1 into the running O2.
	Reducer Reducer[O1, O2]

	// Seed produces the initial accumulator from the first O1 received.
	Seed func(O1) O2

	// DialTimeout bounds connecting to a worker. Zero means no timeout.
	DialTimeout time.Duration

	// IOTimeout bounds a worker round trip once connected (write + read).
	// Zero means no timeout.
	IOTimeout time.Duration
}

// Run drains inputs, dispatching each to an idle worker and folding its
// reply into the accumulator via Reducer in whatever order workers finish.
// A worker that fails a task (NoResponse or a dial/write error) is removed
// from rotation for the rest of the job - masking its failure rather than
// retrying it - and its task moves to whichever worker is next idle. If
// every worker in the roster has failed, the job aborts with
// ErrNoAvailableWorker once in-flight tasks against surviving workers have
// drained. On success, every surviving worker receives an AllFinished frame
// before Run returns.
func (m *Manager[I, O1, O2]) Run(inputs []I) (O2, error) {
	var zero O2
	if len(m.Workers) == 0 {
		return zero, fmt.Errorf("mapreduce: manager: no workers configured")
	}

	idle := make(chan string, len(m.Workers))
	for _, addr := range m.Workers {
		idle <- addr
	}

	abort := make(chan struct{})
	var abortOnce sync.Once
	signalAbort := func() { abortOnce.Do(func() { close(abort) }) }

	var (
		mu       sync.Mutex
		acc      O2
		accValid bool
		dead     = make(map[string]bool, len(m.Workers))
		fatal    error
	)

	markDead := func(addr string) {
		mu.Lock()
		dead[addr] = true
		allDead := len(dead) == len(m.Workers)
		if allDead && fatal == nil {
			fatal = ErrNoAvailableWorker
		}
		mu.Unlock()
		if allDead {
			signalAbort()
		}
	}

	fold := func(output O1) {
		mu.Lock()
		defer mu.Unlock()
		if !accValid {
			acc = m.Seed(output)
			accValid = true
		} else {
			acc = m.Reducer.Reduce(acc, output)
		}
	}

	fatalErr := func() error {
		mu.Lock()
		defer mu.Unlock()
		return fatal
	}

	var wg sync.WaitGroup
	for _, input := range inputs {
		select {
		case <-abort:
			wg.Wait()
			return zero, fatalErr()
		default:
		}

		wg.Add(1)
		go func(input I) {
			defer wg.Done()
			for {
				select {
				case <-abort:
					return
				default:
				}

				select {
				case <-abort:
					return
				case addr := <-idle:
					output, err := callWorker[I, O1](addr, input, m.DialTimeout, m.IOTimeout)
					if err != nil {
						markDead(addr)
						continue
					}
					idle <- addr
					fold(output)
					return
				}
			}
		}(input)
	}

	wg.Wait()

	if final := fatalErr(); final != nil {
		return zero, final
	}

	close(idle)
	for addr := range idle {
		notifyAllFinished(addr)
	}

	if !accValid {
		return zero, nil
	}
	return acc, nil
}

// callWorker dials addr, ships one Job(input) frame, and decodes the reply
// as O1. Any I/O failure is reported wrapping ErrNoResponse so the caller
// retries on a different worker. dialTimeout/ioTimeout of zero mean no
// deadline.
func callWorker[I, O1 any](addr string, input I, dialTimeout, ioTimeout time.Duration) (O1, error) {
	var zero O1

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return zero, fmt.Errorf("%w: dial %s: %v", ErrNoResponse, addr, err)
	}
	defer conn.Close()

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	if ioTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(ioTimeout))
	}

	payload, err := encodeJob(input)
	if err != nil {
		return zero, err
	}
	if err := wire.WriteFrame(conn, payload); err != nil {
		return zero, fmt.Errorf("%w: write %s: %v", ErrNoResponse, addr, err)
	}

	frame, err := wire.ReadFrame(conn)
	if err != nil {
		return zero, fmt.Errorf("%w: read %s: %v", ErrNoResponse, addr, err)
	}

	return decodeOutput[O1](frame)
}

// notifyAllFinished sends the AllFinished sentinel to addr, best-effort: a
// worker that is already unreachable has nothing left to notify.
func notifyAllFinished(addr string) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return
	}
	defer conn.Close()
	_ = wire.WriteFrame(conn, encodeAllFinished())
}

package mapreduce

import (
	"fmt"
	"net"
	"sync/atomic"

	"github.com/webgraph-io/webgraph/wire"
)

// Worker is a stateless map-reduce RPC server: for every connection it
// accepts, it reads one task frame, applies its injected Mapper if the
// frame carries a job, replies with the encoded output, and closes the
// connection. It holds no per-client state and no cache between
// connections, so a crashed or restarted Worker is indistinguishable from
// one that was merely slow - the Manager masks either case by retrying on
// another worker.
//
// The accept loop serves one goroutine per connection, checks an atomic
// closed flag both before Accept and after it returns an error, recovers
// from per-connection panics, and disables Nagle's algorithm on each
// accepted *net.TCPConn for low single-shot RPC latency.
type Worker[I, O1 any] struct {
	mapper Mapper[I, O1]

	listener net.Listener
	closed   atomic.Bool
}

// NewWorker returns a Worker that applies mapper to every Job it receives.
func NewWorker[I, O1 any](mapper Mapper[I, O1]) *Worker[I, O1] {
	return &Worker[I, O1]{mapper: mapper}
}

// ListenAndServe binds addr and serves connections until AllFinished is
// received or Close is called. It blocks until the accept loop exits.
func (w *Worker[I, O1]) ListenAndServe(addr string) error {
	if err := w.Listen(addr); err != nil {
		return err
	}
	return w.Serve()
}

// Listen binds addr without serving, so a caller can read back the bound
// port (addr may end in ":0") before starting Serve in its own goroutine.
func (w *Worker[I, O1]) Listen(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mapreduce: worker: listen %s: %w", addr, err)
	}
	w.listener = listener
	return nil
}

// Addr returns the address Listen bound to.
func (w *Worker[I, O1]) Addr() net.Addr {
	return w.listener.Addr()
}

// Serve runs the accept loop against a listener already bound by Listen. It
// blocks until AllFinished is received or Close is called.
func (w *Worker[I, O1]) Serve() error {
	return w.serve()
}

func (w *Worker[I, O1]) serve() error {
	for {
		if w.closed.Load() {
			return nil
		}

		conn, err := w.listener.Accept()
		if err != nil {
			if w.closed.Load() {
				return nil
			}
			return fmt.Errorf("mapreduce: worker: accept: %w", err)
		}

		go func(conn net.Conn) {
			if w.handleConnection(conn) {
				_ = w.listener.Close()
			}
		}(conn)
	}
}

// handleConnection serves one connection and reports whether AllFinished
// was received. On AllFinished the closed flag is already set; the caller
// closes the listener so the accept loop observes it and exits.
func (w *Worker[I, O1]) handleConnection(conn net.Conn) (allFinished bool) {
	defer conn.Close()

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	defer func() {
		if r := recover(); r != nil {
			allFinished = false
		}
	}()

	frame, err := wire.ReadFrame(conn)
	if err != nil {
		return false
	}

	input, finished, err := decodeTask[I](frame)
	if err != nil {
		return false
	}
	if finished {
		w.closed.Store(true)
		return true
	}

	output, err := w.mapper.Map(input)
	if err != nil {
		return false
	}

	payload, err := encodeOutput(output)
	if err != nil {
		return false
	}
	_ = wire.WriteFrame(conn, payload)
	return false
}

// Close stops the accept loop. Any connection already being served
// completes normally.
func (w *Worker[I, O1]) Close() error {
	w.closed.Store(true)
	if w.listener != nil {
		return w.listener.Close()
	}
	return nil
}

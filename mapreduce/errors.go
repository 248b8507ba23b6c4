package mapreduce

import "errors"

// ErrNoAvailableWorker is returned by Manager.Run when every worker in the
// roster has rejected or failed a single task.
var ErrNoAvailableWorker = errors.New("mapreduce: no available worker for task")

// ErrNoResponse is returned internally when a worker's connection closes or
// times out before a reply arrives. It triggers a retry on another worker
// and is never returned directly from Run.
var ErrNoResponse = errors.New("mapreduce: worker gave no response")

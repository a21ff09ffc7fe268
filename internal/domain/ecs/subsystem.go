package ecs

import (
	"runtime"
	"time"

	"github.com/yourusername/ecsworld/internal/infrastructure/concurrent"
)

// defaultBatchJoinTimeout bounds how long the control thread waits for a
// single parallel-batch slice to report back; a slice that hangs this long
// indicates a worker-pool defect, not legitimate game logic.
const defaultBatchJoinTimeout = 30 * time.Second

// SubsystemTuple is (query, callable, all-at-once?): for each tuple the
// scheduler runs its query, then either invokes Callable once with the
// whole entity slice (AllAtOnce) or once per entity. Tuples run in
// declaration order.
type SubsystemTuple struct {
	Query     func(w *World) []*Entity
	Callable  func(entities []*Entity, delta float64) error
	AllAtOnce bool
}

// runSubsystems executes a system's memoized subsystem tuples in
// declaration order.
func runSubsystems(w *World, tuples []SubsystemTuple, delta float64) error {
	for _, t := range tuples {
		entities := t.Query(w)
		if t.AllAtOnce {
			if err := t.Callable(entities, delta); err != nil {
				return err
			}
			continue
		}
		for _, e := range entities {
			if err := t.Callable([]*Entity{e}, delta); err != nil {
				return err
			}
		}
	}
	return nil
}

// parallelBatcher partitions entities into worker_count contiguous slices
// and runs each slice's per-entity process concurrently on a bounded
// worker pool, blocking until every slice has completed.
type parallelBatcher struct {
	pool *concurrent.WorkerPool
}

func newParallelBatcher() *parallelBatcher {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return &parallelBatcher{pool: concurrent.NewWorkerPool(workers, workers*2)}
}

func (pb *parallelBatcher) workerCount() int {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	return workers
}

// sliceJob adapts a contiguous entity slice into a concurrent.Job.
type sliceJob struct {
	id       string
	entities []*Entity
	delta    float64
	process  func(*Entity, float64) error
	err      error
}

func (j *sliceJob) Execute() error {
	for _, e := range j.entities {
		if err := j.process(e, j.delta); err != nil {
			j.err = err
			return err
		}
	}
	return nil
}

func (j *sliceJob) GetID() string   { return j.id }
func (j *sliceJob) GetPriority() int { return 0 }

// Run partitions entities into worker_count approximately-equal
// contiguous slices and waits for every slice's process calls to finish
// before returning, satisfying "the tick does not return until all
// workers join".
func (pb *parallelBatcher) Run(entities []*Entity, delta float64, process func(*Entity, float64) error) error {
	if len(entities) == 0 {
		return nil
	}

	workers := pb.workerCount()
	if workers > len(entities) {
		workers = len(entities)
	}

	chunkSize := (len(entities) + workers - 1) / workers
	jobs := make([]*sliceJob, 0, workers)

	for start := 0; start < len(entities); start += chunkSize {
		end := start + chunkSize
		if end > len(entities) {
			end = len(entities)
		}
		job := &sliceJob{
			id:       entityIDsKey(start, end),
			entities: entities[start:end],
			delta:    delta,
			process:  process,
		}
		jobs = append(jobs, job)
		if err := pb.pool.Submit(job); err != nil {
			return err
		}
	}

	var firstErr error
	for range jobs {
		result, err := pb.pool.GetResultWithTimeout(defaultBatchJoinTimeout)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if result.Error != nil && firstErr == nil {
			firstErr = result.Error
		}
	}
	return firstErr
}

func entityIDsKey(start, end int) string {
	const hex = "0123456789abcdef"
	buf := []byte{hex[start%16], hex[(start/16)%16], '-', hex[end%16], hex[(end/16)%16]}
	return string(buf)
}

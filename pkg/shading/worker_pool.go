package shading

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/df07/go-material-eval/pkg/core"
)

// chunkSize is the number of points a worker shades per task
const chunkSize = 64

// Task is a contiguous run of points for one worker
type Task struct {
	TaskID  int      // For deterministic ordering
	Start   int      // Index of the first point in the batch
	Points  []Point  // Points to shade
	Records []Record // Destination, one per point, owned by this task alone
}

// TaskResult reports a finished task
type TaskResult struct {
	TaskID    int
	Shaded    int
	Fallbacks int
	Error     error
}

// WorkerPool shades tasks in parallel. Each worker owns a scratch buffer that
// is reset after every point.
type WorkerPool struct {
	taskQueue   chan Task
	resultQueue chan TaskResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual shading tasks
type Worker struct {
	ID          int
	scene       *Scene
	scratch     *core.ScratchBuffer
	taskQueue   chan Task
	resultQueue chan TaskResult
}

// NewWorkerPool creates a pool of numWorkers workers, or one per CPU when numWorkers <= 0.
// maxTasks bounds the number of tasks that may be queued before results are drained.
func NewWorkerPool(scene *Scene, numWorkers, maxTasks int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if maxTasks < 1 {
		maxTasks = 1
	}

	wp := &WorkerPool{
		taskQueue:   make(chan Task, maxTasks),
		resultQueue: make(chan TaskResult, maxTasks),
		numWorkers:  numWorkers,
	}
	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			scene:       scene,
			scratch:     core.NewScratchBuffer(),
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}
	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop waits for queued tasks to finish and shuts the workers down
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// Submit queues a task
func (wp *WorkerPool) Submit(task Task) {
	wp.taskQueue <- task
}

// Results returns the channel of completed tasks. It is closed by Stop.
func (wp *WorkerPool) Results() <-chan TaskResult {
	return wp.resultQueue
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for task := range w.taskQueue {
		w.resultQueue <- w.shade(task)
	}
}

// shade runs one task. A fatal material error ends the task and is reported
// instead of taking down the process.
func (w *Worker) shade(task Task) (result TaskResult) {
	result.TaskID = task.TaskID
	defer func() {
		if r := recover(); r != nil {
			w.scratch.Reset()
			var fatal *core.FatalError
			if err, ok := r.(error); ok && errors.As(err, &fatal) {
				result.Error = fmt.Errorf("task %d: %w", task.TaskID, fatal)
				return
			}
			panic(r)
		}
	}()

	for i, p := range task.Points {
		rec := Summarize(w.scene, task.Start+i, p, w.scratch)
		w.scratch.Reset()
		task.Records[i] = rec
		if rec.Err != nil {
			continue
		}
		result.Shaded++
		if rec.Fallback {
			result.Fallbacks++
		}
	}
	return result
}

// EvaluateBatch shades every point with numWorkers workers and returns one record
// per point in input order. Records do not depend on the number of workers.
func EvaluateBatch(scene *Scene, points []Point, numWorkers int) ([]Record, error) {
	records := make([]Record, len(points))
	numTasks := (len(points) + chunkSize - 1) / chunkSize
	if numTasks == 0 {
		return records, nil
	}

	pool := NewWorkerPool(scene, numWorkers, numTasks)
	pool.Start()
	logger.Debugf("Shading %d points in %d tasks with %d workers", len(points), numTasks, pool.NumWorkers())

	for id := 0; id < numTasks; id++ {
		start := id * chunkSize
		end := min(start+chunkSize, len(points))
		pool.Submit(Task{
			TaskID:  id,
			Start:   start,
			Points:  points[start:end],
			Records: records[start:end],
		})
	}
	pool.Stop()

	var errs []error
	shaded, fallbacks := 0, 0
	for result := range pool.Results() {
		if result.Error != nil {
			errs = append(errs, result.Error)
		}
		shaded += result.Shaded
		fallbacks += result.Fallbacks
	}
	logger.Debugf("Shaded %d points, %d needed the universal evaluator", shaded, fallbacks)
	return records, errors.Join(errs...)
}

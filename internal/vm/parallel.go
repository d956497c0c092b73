package vm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kolkov/squawk/internal/compiler"
	"github.com/kolkov/squawk/internal/types"
)

// ParallelConfig holds configuration for parallel execution.
type ParallelConfig struct {
	// NumWorkers is the number of parallel worker goroutines.
	// Default: runtime.NumCPU()
	NumWorkers int
}

// DefaultParallelConfig returns sensible defaults for parallel execution.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{NumWorkers: runtime.NumCPU()}
}

// ParallelExecutor runs one program over several inputs, each on its own
// VM, and writes the outputs in input order.
type ParallelExecutor struct {
	program  *compiler.Program
	config   ParallelConfig
	vmConfig VMConfig
}

// WorkerResult contains the results from a single worker processing one input.
type WorkerResult struct {
	Index  int
	Output []byte
	Vars   map[string]types.Value
	Steps  int
	RunID  uuid.UUID
	Err    error
}

// errSkipped marks inputs that were not run because another one failed.
var errSkipped = errors.New("skipped")

// lowestFailure tracks the smallest index of a failed input.
type lowestFailure struct {
	mu    sync.Mutex
	index int
}

func (f *lowestFailure) record(index int) {
	f.mu.Lock()
	f.index = min(f.index, index)
	f.mu.Unlock()
}

func (f *lowestFailure) get() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index
}

// inputJob is one input waiting for a worker.
type inputJob struct {
	index int
	input LineSource
}

// NewParallelExecutor creates a new parallel executor for the given program.
// vmConfig.Output and vmConfig.Input are ignored.
func NewParallelExecutor(prog *compiler.Program, vmConfig VMConfig, config ParallelConfig) *ParallelExecutor {
	if config.NumWorkers <= 0 {
		config.NumWorkers = runtime.NumCPU()
	}
	vmConfig.Output = nil
	vmConfig.Input = nil
	if vmConfig.Matcher == nil {
		// One cache shared by every worker
		vmConfig.Matcher = newMatcher(vmConfig.POSIXRegex)
	}
	return &ParallelExecutor{
		program:  prog,
		config:   config,
		vmConfig: vmConfig,
	}
}

// Run executes the program once per input and writes every output to
// output in input order. The first failing input's output up to its error
// is written; output of later inputs is discarded and the failure is
// returned.
func (pe *ParallelExecutor) Run(parent context.Context, inputs []LineSource, output io.Writer) ([]WorkerResult, error) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	failed := &lowestFailure{index: len(inputs)}

	jobs := make(chan inputJob)
	results := make(chan WorkerResult, len(inputs))
	var wg sync.WaitGroup

	// Start workers
	numWorkers := min(pe.config.NumWorkers, max(len(inputs), 1))
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pe.worker(parent, jobs, results, failed, cancel)
		}()
	}

	// Feed inputs
	go func() {
		defer close(jobs)
		for i, in := range inputs {
			select {
			case jobs <- inputJob{index: i, input: in}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]WorkerResult, 0, len(inputs))
	for r := range results {
		collected = append(collected, r)
	}
	sortByIndex(collected)

	for _, r := range collected {
		if r.Err != nil {
			// Writes made before the failure are kept, as in a sequential run
			if !errors.Is(r.Err, errSkipped) {
				if _, err := output.Write(r.Output); err != nil {
					return collected, err
				}
			}
			return collected, firstError(collected)
		}
		if _, err := output.Write(r.Output); err != nil {
			return collected, err
		}
	}
	if len(collected) < len(inputs) {
		if err := firstError(collected); err != nil {
			return collected, err
		}
		return collected, context.Cause(parent)
	}
	return collected, nil
}

// worker processes inputs using a fresh VM for each one. Inputs after the
// lowest failed one are skipped, as are all inputs once parent is done.
func (pe *ParallelExecutor) worker(
	parent context.Context,
	jobs <-chan inputJob,
	results chan<- WorkerResult,
	failed *lowestFailure,
	cancel context.CancelFunc,
) {
	for job := range jobs {
		if parent.Err() != nil || job.index > failed.get() {
			results <- WorkerResult{Index: job.index, Err: errSkipped}
			continue
		}

		result := pe.processInput(job)
		if result.Err != nil {
			failed.record(job.index)
			cancel()
		}
		results <- result
	}
}

// processInput runs the program over a single input.
func (pe *ParallelExecutor) processInput(job inputJob) WorkerResult {
	var outputBuf bytes.Buffer
	config := pe.vmConfig
	config.Output = &outputBuf
	config.Input = job.input

	vm := NewWithConfig(pe.program, config)
	err := vm.Run()
	return WorkerResult{
		Index:  job.index,
		Output: outputBuf.Bytes(),
		Vars:   vm.Env().Snapshot(),
		Steps:  vm.Steps(),
		RunID:  vm.ID(),
		Err:    err,
	}
}

// firstError returns the lowest-indexed failure that is not a skip. If every
// failure is a skip, the caller's cancellation caused them.
func firstError(results []WorkerResult) error {
	for _, r := range results {
		if r.Err != nil && !errors.Is(r.Err, errSkipped) {
			return r.Err
		}
	}
	for _, r := range results {
		if r.Err != nil {
			return context.Canceled
		}
	}
	return nil
}

// sortByIndex sorts results by input index.
func sortByIndex(results []WorkerResult) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})
}

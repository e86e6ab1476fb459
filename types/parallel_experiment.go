package types

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gosuri/uilive"
)

// runParallel runs every experiment of the run in its own goroutine.
// Each experiment reports its progress to a ParallelOutput that the
// TerminalPrinter redraws periodically.
func (c *Comparison) runParallel(ctx context.Context, run int, longestNameLen int) ([]map[string]DataSet, error) {
	outputs := make([]*ParallelOutput, len(c.Experiments))
	for i, e := range c.Experiments {
		outputs[i] = NewParallelOutput(fmt.Sprintf("Exp:%*s, Pending", longestNameLen, e.Name))
	}

	var recorder Recorder
	if c.cConfig.Recorder != nil {
		recorder = &syncRecorder{recorder: c.cConfig.Recorder}
	}

	printer := NewTerminalPrinter(c.cConfig.Out, outputs, c.cConfig.PrintInterval)
	printer.Start()

	results := make([]map[string]DataSet, len(c.Experiments))
	wg := new(sync.WaitGroup)
	for i := range c.Experiments {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.runExperiment(ctx, run, i, longestNameLen, outputs[i], recorder)
		}(i)
	}
	wg.Wait()
	printer.Stop()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParallelOutput holds the latest progress line of one experiment.
// It is written by the experiment goroutine and read by the printer.
type ParallelOutput struct {
	printable string
	lock      *sync.Mutex
}

func NewParallelOutput(initial string) *ParallelOutput {
	return &ParallelOutput{
		printable: initial,
		lock:      new(sync.Mutex),
	}
}

// Write keeps the last non empty line written
func (p *ParallelOutput) Write(b []byte) (int, error) {
	lines := strings.FieldsFunc(string(b), func(r rune) bool { return r == '\r' || r == '\n' })
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			p.Set(line)
			break
		}
	}
	return len(b), nil
}

func (p *ParallelOutput) Set(s string) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.printable = s
}

func (p *ParallelOutput) Get() string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.printable
}

// TerminalPrinter redraws one line per experiment in place
type TerminalPrinter struct {
	outputs  []*ParallelOutput
	interval time.Duration
	writer   *uilive.Writer

	stop chan struct{}
	done chan struct{}
}

func NewTerminalPrinter(out io.Writer, outputs []*ParallelOutput, interval time.Duration) *TerminalPrinter {
	writer := uilive.New()
	writer.Out = out
	return &TerminalPrinter{
		outputs:  outputs,
		interval: interval,
		writer:   writer,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (p *TerminalPrinter) Start() {
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				p.print()
				return
			case <-ticker.C:
				p.print()
			}
		}
	}()
}

// Stop prints the final state of every experiment and waits for the printer to exit
func (p *TerminalPrinter) Stop() {
	close(p.stop)
	<-p.done
}

func (p *TerminalPrinter) print() {
	for _, output := range p.outputs {
		fmt.Fprintln(p.writer, output.Get())
	}
	if err := p.writer.Flush(); err != nil {
		log.WithError(err).Debug("unable to print progress")
	}
}

// syncRecorder serializes the experiments recording concurrently
type syncRecorder struct {
	recorder Recorder
	lock     sync.Mutex
}

func (s *syncRecorder) Record(summary EpisodeSummary) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.recorder.Record(summary)
}

func (s *syncRecorder) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.recorder.Close()
}

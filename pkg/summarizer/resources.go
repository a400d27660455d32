package summarizer

import (
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Sampler tracks the peak resident set size of the current process.
type Sampler struct {
	proc *process.Process
	stop chan struct{}
	done chan struct{}

	mu   sync.Mutex
	peak uint64
}

// StartSampler polls memory usage every interval until Stop.
// It returns nil when the process cannot be inspected.
func StartSampler(interval time.Duration) *Sampler {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil
	}
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	s := &Sampler{proc: proc, stop: make(chan struct{}), done: make(chan struct{})}
	s.sample()
	go s.loop(interval)
	return s
}

func (s *Sampler) loop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sample()
		case <-s.stop:
			return
		}
	}
}

func (s *Sampler) sample() {
	mem, err := s.proc.MemoryInfo()
	if err != nil {
		return
	}
	s.mu.Lock()
	if mem.RSS > s.peak {
		s.peak = mem.RSS
	}
	s.mu.Unlock()
}

// Stop ends sampling and reports the peak RSS and the CPU time used so far.
// A nil Sampler reports zero usage.
func (s *Sampler) Stop() Resources {
	if s == nil {
		return Resources{}
	}
	close(s.stop)
	<-s.done
	s.sample()

	var r Resources
	s.mu.Lock()
	r.PeakRSS = s.peak
	s.mu.Unlock()

	if times, err := s.proc.Times(); err == nil {
		r.CPUTime = time.Duration((times.User + times.System) * float64(time.Second))
	}
	return r
}

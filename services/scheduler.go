package services

import (
	"sync"
	"time"
)

// Scheduler runs delayed tasks keyed by room code.
type Scheduler interface {
	// Schedule replaces any task still pending under key.
	Schedule(key string, delay time.Duration, task func())
	Cancel(key string)
}

type scheduledTask struct {
	timer *time.Timer
	gen   uint64
}

// TimerScheduler fires tasks through post, which the hub uses to run them on
// its own goroutine.
type TimerScheduler struct {
	mu    sync.Mutex
	tasks map[string]scheduledTask
	gen   uint64
	post  func(task func())
}

func NewTimerScheduler(post func(task func())) *TimerScheduler {
	return &TimerScheduler{
		tasks: make(map[string]scheduledTask),
		post:  post,
	}
}

func (s *TimerScheduler) Schedule(key string, delay time.Duration, task func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.tasks[key]; ok {
		prev.timer.Stop()
	}
	s.gen++
	gen := s.gen
	timer := time.AfterFunc(delay, func() {
		s.mu.Lock()
		current, ok := s.tasks[key]
		if !ok || current.gen != gen {
			s.mu.Unlock()
			return
		}
		delete(s.tasks, key)
		s.mu.Unlock()
		s.post(task)
	})
	s.tasks[key] = scheduledTask{timer: timer, gen: gen}
}

func (s *TimerScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if task, ok := s.tasks[key]; ok {
		task.timer.Stop()
		delete(s.tasks, key)
	}
}

// Pending reports how many tasks have not fired yet.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// ============================================================================
// RoboGrid - Roboter-Raster-Interpreter
// ============================================================================
//
// Package:     engine
// Description: Step scheduling on real and virtual time
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package engine

import (
	"sort"
	"sync"
	"time"
)

// CancelFunc cancels a scheduled callback. Calling it more than once, or
// after the callback ran, is harmless.
type CancelFunc func()

// Scheduler runs fn once after delay
type Scheduler interface {
	Schedule(fn func(), delay time.Duration) CancelFunc
}

// TimerScheduler schedules on real time via time.AfterFunc
type TimerScheduler struct{}

// Schedule implements Scheduler
func (TimerScheduler) Schedule(fn func(), delay time.Duration) CancelFunc {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}

// ManualScheduler is a virtual-clock scheduler. Nothing fires until the
// owner calls Advance or RunNext, which makes stepping deterministic.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []*manualTask
}

type manualTask struct {
	seq uint64
	due time.Duration
	fn  func()
}

// NewManualScheduler returns a scheduler at virtual time zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule implements Scheduler
func (s *ManualScheduler) Schedule(fn func(), delay time.Duration) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	task := &manualTask{seq: s.seq, due: s.now + delay, fn: fn}
	s.pending = append(s.pending, task)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.remove(task)
	}
}

// Pending returns the number of callbacks waiting to fire
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Now returns the virtual time
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// RunNext jumps the clock to the earliest pending callback and runs it.
// It returns false when nothing is pending.
func (s *ManualScheduler) RunNext() bool {
	s.mu.Lock()
	task := s.next()
	if task == nil {
		s.mu.Unlock()
		return false
	}
	s.remove(task)
	if task.due > s.now {
		s.now = task.due
	}
	s.mu.Unlock()

	task.fn()
	return true
}

// RunAll runs callbacks until none is pending or limit callbacks ran.
// It returns the number of callbacks run.
func (s *ManualScheduler) RunAll(limit int) int {
	n := 0
	for n < limit && s.RunNext() {
		n++
	}
	return n
}

// Advance moves the clock forward by d, running every callback that falls
// due on the way, including ones scheduled by earlier callbacks.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	n := 0
	for {
		s.mu.Lock()
		task := s.next()
		if task == nil || task.due > target {
			s.now = target
			s.mu.Unlock()
			return n
		}
		s.remove(task)
		s.now = task.due
		s.mu.Unlock()

		task.fn()
		n++
	}
}

func (s *ManualScheduler) next() *manualTask {
	if len(s.pending) == 0 {
		return nil
	}
	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].due != s.pending[j].due {
			return s.pending[i].due < s.pending[j].due
		}
		return s.pending[i].seq < s.pending[j].seq
	})
	return s.pending[0]
}

func (s *ManualScheduler) remove(task *manualTask) {
	for i, t := range s.pending {
		if t == task {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

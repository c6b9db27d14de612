package rtos_test

import (
	"errors"
	"testing"
	"time"

	"github.com/osal-go/osal/backend/rtos"
	"github.com/osal-go/osal/core"
)

// =============================================================================
// Token-Channel Semaphore Tests
// =============================================================================

func TestCountingSemaphore_GiveTakeAndCeiling(t *testing.T) {
	rt := rtos.New()
	defer rt.Close()

	s, err := rt.NewCountingSemaphore("sem", 1, 2)
	if err != nil {
		t.Fatalf("NewCountingSemaphore failed: %v", err)
	}
	defer s.Delete()

	if s.Count() != 1 {
		t.Errorf("Expected initial count 1, got %d", s.Count())
	}
	if err := s.Give(); err != nil {
		t.Fatalf("Give failed: %v", err)
	}
	if err := s.Give(); !errors.Is(err, core.ErrSemFailure) {
		t.Errorf("Expected ErrSemFailure at ceiling, got %v", err)
	}
	if s.Count() != 2 {
		t.Errorf("Expected count 2, got %d", s.Count())
	}
}

func TestCountingSemaphore_ZeroMaxUsesInitialAsCeiling(t *testing.T) {
	rt := rtos.New()
	defer rt.Close()

	s, err := rt.NewCountingSemaphore("sem", 2, 0)
	if err != nil {
		t.Fatalf("NewCountingSemaphore failed: %v", err)
	}
	defer s.Delete()

	if err := s.Give(); !errors.Is(err, core.ErrSemFailure) {
		t.Errorf("Expected ErrSemFailure at implied ceiling, got %v", err)
	}
	if err := s.Take(core.NoWait); err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	if err := s.Give(); err != nil {
		t.Errorf("Give below ceiling failed: %v", err)
	}
}

func TestCountingSemaphore_CreateValidation(t *testing.T) {
	rt := rtos.New()
	defer rt.Close()

	if _, err := rt.NewCountingSemaphore("sem", 0, 0); !errors.Is(err, core.ErrInvalidSemValue) {
		t.Errorf("Expected ErrInvalidSemValue for (0,0), got %v", err)
	}
	if _, err := rt.NewCountingSemaphore("sem", 5, 2); !errors.Is(err, core.ErrInvalidSemValue) {
		t.Errorf("Expected ErrInvalidSemValue for initial > max, got %v", err)
	}
}

func TestCountingSemaphore_TakeTimeout(t *testing.T) {
	rt := rtos.New()
	defer rt.Close()

	s, err := rt.NewCountingSemaphore("sem", 0, 1)
	if err != nil {
		t.Fatalf("NewCountingSemaphore failed: %v", err)
	}
	defer s.Delete()

	if err := s.Take(core.NoWait); !errors.Is(err, core.ErrSemTimeout) {
		t.Errorf("Expected ErrSemTimeout on zero-timeout take, got %v", err)
	}

	start := time.Now()
	err = s.Take(50 * time.Millisecond)
	if !errors.Is(err, core.ErrSemTimeout) {
		t.Errorf("Expected ErrSemTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 45*time.Millisecond || elapsed > 250*time.Millisecond {
		t.Errorf("Expected ~50ms wait, got %v", elapsed)
	}
}

func TestCountingSemaphore_BlockedTakerWokenByGive(t *testing.T) {
	rt := rtos.New()
	defer rt.Close()

	s, err := rt.NewCountingSemaphore("sem", 0, 1)
	if err != nil {
		t.Fatalf("NewCountingSemaphore failed: %v", err)
	}
	defer s.Delete()

	taken := make(chan error, 1)
	go func() {
		taken <- s.Take(core.Forever)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := s.Give(); err != nil {
		t.Fatalf("Give failed: %v", err)
	}

	select {
	case err := <-taken:
		if err != nil {
			t.Errorf("Take failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Give did not wake the blocked taker")
	}
}

func TestCountingSemaphore_DeleteWakesTakers(t *testing.T) {
	rt := rtos.New()
	defer rt.Close()

	s, err := rt.NewCountingSemaphore("sem", 0, 1)
	if err != nil {
		t.Fatalf("NewCountingSemaphore failed: %v", err)
	}

	result := make(chan error, 1)
	go func() {
		result <- s.Take(core.Forever)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := s.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	select {
	case err := <-result:
		if !errors.Is(err, core.ErrInvalidID) {
			t.Errorf("Expected ErrInvalidID, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Delete did not wake the blocked taker")
	}
}

// =============================================================================
// Binary Semaphore Tests
// =============================================================================

func TestBinarySemaphore_GiveSaturates(t *testing.T) {
	rt := rtos.New()
	defer rt.Close()

	s, err := rt.NewBinarySemaphore("bin", 1)
	if err != nil {
		t.Fatalf("NewBinarySemaphore failed: %v", err)
	}
	defer s.Delete()

	if err := s.Give(); err != nil {
		t.Errorf("Expected saturating give to succeed, got %v", err)
	}
	if s.Count() != 1 {
		t.Errorf("Expected count 1, got %d", s.Count())
	}

	if _, err := rt.NewBinarySemaphore("bad", 2); !errors.Is(err, core.ErrInvalidSemValue) {
		t.Errorf("Expected ErrInvalidSemValue for initial 2, got %v", err)
	}
}

func TestSemaphore_FromISRTryOperations(t *testing.T) {
	rt := rtos.New()
	defer rt.Close()

	s, err := rt.NewBinarySemaphore("bin", 0)
	if err != nil {
		t.Fatalf("NewBinarySemaphore failed: %v", err)
	}
	defer s.Delete()

	// Real non-suspending ISR variants.
	if err := s.TakeFromISR(); !errors.Is(err, core.ErrSemTimeout) {
		t.Errorf("Expected ErrSemTimeout from empty ISR take, got %v", err)
	}
	if err := s.GiveFromISR(); err != nil {
		t.Fatalf("GiveFromISR failed: %v", err)
	}
	if err := s.TakeFromISR(); err != nil {
		t.Errorf("TakeFromISR failed after give: %v", err)
	}
}

package core_test

import (
	"strings"
	"testing"
	"time"

	"github.com/osal-go/osal/core"
)

// =============================================================================
// Timeout Classification Tests
// =============================================================================

func TestClassifyTimeout(t *testing.T) {
	cases := []struct {
		timeout time.Duration
		want    core.WaitMode
	}{
		{core.NoWait, core.WaitNone},
		{core.Forever, core.WaitForever},
		{-5 * time.Second, core.WaitForever},
		{time.Nanosecond, core.WaitTimed},
		{100 * time.Millisecond, core.WaitTimed},
		{time.Hour, core.WaitTimed},
	}
	for _, c := range cases {
		if got := core.ClassifyTimeout(c.timeout); got != c.want {
			t.Errorf("ClassifyTimeout(%v) = %v, want %v", c.timeout, got, c.want)
		}
	}
}

// =============================================================================
// Name Validation Tests
// =============================================================================

func TestCheckName(t *testing.T) {
	if err := core.CheckName(""); err != nil {
		t.Errorf("Empty name rejected: %v", err)
	}
	if err := core.CheckName(strings.Repeat("a", core.MaxNameLen)); err != nil {
		t.Errorf("Max-length name rejected: %v", err)
	}
	if err := core.CheckName(strings.Repeat("a", core.MaxNameLen+1)); err != core.ErrNameTooLong {
		t.Errorf("Expected ErrNameTooLong, got %v", err)
	}
}

func TestNewTaskAttr(t *testing.T) {
	attr := core.NewTaskAttr()
	if attr.CoreAffinity != core.NoAffinity {
		t.Errorf("Expected NoAffinity, got %d", attr.CoreAffinity)
	}
}

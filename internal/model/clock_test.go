package model

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewClock(time.Minute)
	c.now = func() time.Time { return now }

	c.Stop()
	if got := c.GetTimeLeft(); got != time.Minute {
		t.Fatalf("stopping an idle clock changed it: %s", got)
	}

	c.Start()
	now = now.Add(10 * time.Second)
	if got := c.GetTimeLeft(); got != 50*time.Second {
		t.Errorf("running clock: %s left, want 50s", got)
	}

	c.Stop()
	now = now.Add(time.Hour)
	if got := c.GetTimeLeft(); got != 50*time.Second {
		t.Errorf("stopped clock: %s left, want 50s", got)
	}
	if got := deciseconds(c.GetTimeLeft()); got != 500 {
		t.Errorf("deciseconds = %d, want 500", got)
	}
}

package tf

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestFeedStoresPoses(t *testing.T) {
	fm := newManager()
	feed := NewFeed(fm, 4, logger.NewNop())
	defer feed.Cleanup()

	for i := 0; i < 10; i++ {
		feed.HandlePose("base_link", t0.Add(time.Duration(i)*time.Millisecond), mgl64.Vec3{float64(i), 0, 0}, mgl64.QuatIdent())
	}

	waitFor(t, func() bool {
		pos, _, ok := fm.Transform("base_link", time.Time{})
		return ok && pos[0] == 9
	})
	if !feed.HaveFramesChanged() {
		t.Error("Expected frames changed flag")
	}
	if feed.HaveFramesChanged() {
		t.Error("Expected flag to reset after read")
	}

	feed.HandleRemove("base_link")
	waitFor(t, func() bool { return len(fm.Frames()) == 0 })
}

func TestFeedCleanupUnblocksSenders(t *testing.T) {
	fm := newManager()
	feed := NewFeed(fm, 1, logger.NewNop())
	feed.Cleanup()
	feed.Cleanup()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			feed.HandlePose("base_link", t0, mgl64.Vec3{}, mgl64.QuatIdent())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("HandlePose blocked after Cleanup")
	}
}

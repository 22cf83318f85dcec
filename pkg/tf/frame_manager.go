// Package tf caches the poses of named coordinate frames and answers
// "where is frame X in the fixed frame at time T" queries for the viewer.
package tf

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
)

var (
	// ErrUnknownFrame is returned for frames that have never been published
	ErrUnknownFrame = errors.New("unknown frame")
	// ErrExtrapolation is returned for stamps outside a frame's cached history
	ErrExtrapolation = errors.New("lookup would require extrapolation")
)

// DefaultCacheDuration is how much pose history is kept per frame
const DefaultCacheDuration = 10 * time.Second

// FrameInfo describes a cached frame
type FrameInfo struct {
	Name    string    `json:"name"`
	Latest  time.Time `json:"latest"`
	Samples int       `json:"samples"`
}

// FrameManager stores pose histories of frames expressed in a common root
// frame. It is written by the feed worker and polled by the render loop.
type FrameManager struct {
	mu            sync.RWMutex
	root          string
	fixedFrame    string
	frames        map[string][]StampedPose
	cacheDuration time.Duration
	log           logger.Logger
}

// NewFrameManager creates an empty cache whose poses are expressed in root.
// The fixed frame starts out equal to root.
func NewFrameManager(root string, cacheDuration time.Duration, log logger.Logger) *FrameManager {
	if cacheDuration <= 0 {
		cacheDuration = DefaultCacheDuration
	}
	return &FrameManager{
		root:          root,
		fixedFrame:    root,
		frames:        make(map[string][]StampedPose),
		cacheDuration: cacheDuration,
		log:           logger.Component(log, "tf"),
	}
}

// Root returns the frame all stored poses are expressed in
func (fm *FrameManager) Root() string {
	return fm.root
}

// FixedFrame returns the frame lookups are expressed in
func (fm *FrameManager) FixedFrame() string {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	return fm.fixedFrame
}

// SetFixedFrame changes the frame lookups are expressed in
func (fm *FrameManager) SetFixedFrame(frame string) {
	fm.mu.Lock()
	fm.fixedFrame = frame
	fm.mu.Unlock()
}

// Store records the pose of frame (relative to the root) at stamp.
// Samples may arrive out of order; history older than the cache duration
// relative to the newest sample is dropped.
func (fm *FrameManager) Store(frame string, stamp time.Time, pose Pose) {
	if frame == "" || frame == fm.root {
		return
	}
	pose.Orientation = pose.Orientation.Normalize()

	fm.mu.Lock()
	defer fm.mu.Unlock()

	history := fm.frames[frame]
	i := sort.Search(len(history), func(i int) bool { return !history[i].Stamp.Before(stamp) })
	switch {
	case i < len(history) && history[i].Stamp.Equal(stamp):
		history[i].Pose = pose
	default:
		history = append(history, StampedPose{})
		copy(history[i+1:], history[i:])
		history[i] = StampedPose{Stamp: stamp, Pose: pose}
	}

	cutoff := history[len(history)-1].Stamp.Add(-fm.cacheDuration)
	drop := 0
	for drop < len(history)-1 && history[drop].Stamp.Before(cutoff) {
		drop++
	}
	if drop > 0 {
		history = append(history[:0:0], history[drop:]...)
	}
	fm.frames[frame] = history
}

// Remove forgets a frame and its history
func (fm *FrameManager) Remove(frame string) {
	fm.mu.Lock()
	delete(fm.frames, frame)
	fm.mu.Unlock()
}

// Frames lists the cached frames sorted by name
func (fm *FrameManager) Frames() []FrameInfo {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	infos := make([]FrameInfo, 0, len(fm.frames))
	for name, history := range fm.frames {
		infos = append(infos, FrameInfo{
			Name:    name,
			Latest:  history[len(history)-1].Stamp,
			Samples: len(history),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Lookup returns the pose of frame in the fixed frame at stamp. The zero
// time selects the newest sample of every frame involved.
func (fm *FrameManager) Lookup(frame string, stamp time.Time) (Pose, error) {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	target, err := fm.poseInRoot(frame, stamp)
	if err != nil {
		return Pose{}, err
	}
	fixed, err := fm.poseInRoot(fm.fixedFrame, stamp)
	if err != nil {
		return Pose{}, err
	}
	return fixed.Inverse().Compose(target), nil
}

// Transform is Lookup in the form the view controllers consume: a missing
// transform is reported as found=false.
func (fm *FrameManager) Transform(frame string, stamp time.Time) (mgl64.Vec3, mgl64.Quat, bool) {
	pose, err := fm.Lookup(frame, stamp)
	if err != nil {
		fm.log.Debug("transform unavailable", logger.F("frame", frame), logger.F("error", err))
		return mgl64.Vec3{}, mgl64.QuatIdent(), false
	}
	return pose.Position, pose.Orientation, true
}

// caller holds fm.mu
func (fm *FrameManager) poseInRoot(frame string, stamp time.Time) (Pose, error) {
	if frame == fm.root {
		return Identity(), nil
	}
	history, ok := fm.frames[frame]
	if !ok || len(history) == 0 {
		return Pose{}, fmt.Errorf("%w: %q", ErrUnknownFrame, frame)
	}
	if stamp.IsZero() {
		return history[len(history)-1].Pose, nil
	}

	i := sort.Search(len(history), func(i int) bool { return !history[i].Stamp.Before(stamp) })
	if i == len(history) {
		return Pose{}, fmt.Errorf("%w: %q requested %s, newest %s",
			ErrExtrapolation, frame, stamp.Format(time.RFC3339Nano), history[i-1].Stamp.Format(time.RFC3339Nano))
	}
	if history[i].Stamp.Equal(stamp) {
		return history[i].Pose, nil
	}
	if i == 0 {
		return Pose{}, fmt.Errorf("%w: %q requested %s, oldest %s",
			ErrExtrapolation, frame, stamp.Format(time.RFC3339Nano), history[0].Stamp.Format(time.RFC3339Nano))
	}

	before, after := history[i-1], history[i]
	t := float64(stamp.Sub(before.Stamp)) / float64(after.Stamp.Sub(before.Stamp))
	return Interpolate(before.Pose, after.Pose, t), nil
}

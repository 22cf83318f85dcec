package tf

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
)

// Feed moves pose updates from a network reader into a FrameManager on its
// own goroutine, so the reader never waits on the cache lock.
type Feed struct {
	frames        *FrameManager
	queue         chan poseJob
	stopWorker    chan struct{}
	workerStopped chan struct{}
	stopOnce      sync.Once
	log           logger.Logger

	// Flag to track when frames have changed
	framesChanged      bool
	framesChangedMutex sync.Mutex
}

// poseJob is one queued update
type poseJob struct {
	frame  string
	stamp  time.Time
	pose   Pose
	remove bool
}

// DefaultQueueSize is the number of updates buffered between reader and worker
const DefaultQueueSize = 256

// NewFeed creates a feed writing into frames and starts its worker
func NewFeed(frames *FrameManager, queueSize int, log logger.Logger) *Feed {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	f := &Feed{
		frames:        frames,
		queue:         make(chan poseJob, queueSize),
		stopWorker:    make(chan struct{}),
		workerStopped: make(chan struct{}),
		log:           logger.Component(log, "feed"),
	}

	go f.worker()

	return f
}

// HandlePose queues a pose sample. It blocks while the queue is full and
// drops the sample once the feed is stopped.
func (f *Feed) HandlePose(frame string, stamp time.Time, position mgl64.Vec3, orientation mgl64.Quat) {
	f.enqueue(poseJob{frame: frame, stamp: stamp, pose: Pose{Position: position, Orientation: orientation}})
}

// HandleRemove queues the removal of a frame
func (f *Feed) HandleRemove(frame string) {
	f.enqueue(poseJob{frame: frame, remove: true})
}

func (f *Feed) enqueue(job poseJob) {
	select {
	case f.queue <- job:
	case <-f.stopWorker:
		f.log.Debug("feed stopped, dropping update", logger.F("frame", job.frame))
	}
}

// worker applies queued updates until Cleanup
func (f *Feed) worker() {
	defer close(f.workerStopped)

	for {
		select {
		case <-f.stopWorker:
			return
		case job := <-f.queue:
			if job.remove {
				f.frames.Remove(job.frame)
				f.log.Info("frame removed", logger.F("frame", job.frame))
			} else {
				f.frames.Store(job.frame, job.stamp, job.pose)
			}
			f.markFramesChanged()
		}
	}
}

// markFramesChanged sets the flag indicating frames have changed
func (f *Feed) markFramesChanged() {
	f.framesChangedMutex.Lock()
	f.framesChanged = true
	f.framesChangedMutex.Unlock()
}

// HaveFramesChanged returns true if any update was applied since the last
// call
func (f *Feed) HaveFramesChanged() bool {
	f.framesChangedMutex.Lock()
	defer f.framesChangedMutex.Unlock()

	prev := f.framesChanged
	f.framesChanged = false
	return prev
}

// Cleanup stops the worker goroutine
func (f *Feed) Cleanup() {
	f.stopOnce.Do(func() {
		close(f.stopWorker)
	})
	<-f.workerStopped
}

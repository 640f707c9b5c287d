package ui

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/mangacap/internal/util"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type MPBProgressManager struct {
	p *mpb.Progress
}

func NewProgressManager(w io.Writer) *MPBProgressManager {
	if w == nil {
		w = os.Stdout
	}

	p := mpb.New(
		mpb.WithWidth(48),
		mpb.WithOutput(w),
		mpb.WithRefreshRate(150*time.Millisecond),
	)
	return &MPBProgressManager{p: p}
}

// Close waits for every registered bar to finish rendering. Bars that were
// neither completed nor aborted would block it, so callers must end each
// handle with MarkDone or Abort.
func (pm *MPBProgressManager) Close() {
	pm.p.Wait()
}

// Register adds a bar for one captured item, labelled with the item slug.
func (pm *MPBProgressManager) Register(label string) *ProgressHandle {
	h := &ProgressHandle{label: label, start: time.Now()}

	h.bar = pm.p.New(
		0,
		mpb.BarStyle().Lbound("[").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(label+"  ", decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("%d/%d pages", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return " | " + util.Human(h.bytes.Load())
			}),
			decor.Any(func(_ decor.Statistics) string {
				return fmt.Sprintf(" | %s", h.elapsed().Round(time.Second))
			}),
		),
	)

	return h
}

type ProgressHandle struct {
	label string
	bar   *mpb.Bar
	start time.Time

	total atomic.Int64
	bytes atomic.Int64

	finishedAt atomic.Int64
}

func (h *ProgressHandle) elapsed() time.Duration {
	if end := h.finishedAt.Load(); end != 0 {
		return time.Unix(0, end).Sub(h.start)
	}
	return time.Since(h.start)
}

func (h *ProgressHandle) done() bool {
	return h.finishedAt.Load() != 0
}

func (h *ProgressHandle) SetTotal(total int) {
	if h.done() {
		return
	}

	h.total.Store(int64(total))
	h.bar.SetTotal(int64(total), false)
}

// Update records that done of total pages were written, bytes in total.
func (h *ProgressHandle) Update(done, total int, bytes int64) {
	if h.done() {
		return
	}

	if total > 0 {
		h.total.Store(int64(total))
		h.bar.SetTotal(int64(total), false)
	}

	h.bytes.Store(bytes)
	h.bar.SetCurrent(int64(done))
}

func (h *ProgressHandle) MarkDone() {
	if !h.finishedAt.CompareAndSwap(0, time.Now().UnixNano()) {
		return
	}

	total := h.total.Load()
	h.bar.SetCurrent(total)
	h.bar.SetTotal(total, true)
}

// Abort ends the bar of an item that failed part way, leaving its last
// state on screen.
func (h *ProgressHandle) Abort() {
	if !h.finishedAt.CompareAndSwap(0, time.Now().UnixNano()) {
		return
	}

	h.bar.Abort(false)
}

package internal

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/anchore/spawnguard/event"
	"github.com/anchore/spawnguard/internal/log"
)

const defaultRefresh = 100 * time.Millisecond

var spinner = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ProgressDisplay shows task progress (sweeps) published on the event bus. On a terminal the
// line of a running task is redrawn in place; otherwise only the final line is written.
type ProgressDisplay struct {
	out     io.Writer
	live    bool
	refresh time.Duration

	lock sync.Mutex
	wg   sync.WaitGroup
}

func NewProgressDisplay(out io.Writer, live bool) *ProgressDisplay {
	return &ProgressDisplay{
		out:     out,
		live:    live,
		refresh: defaultRefresh,
	}
}

// Publish implements partybus.Publisher so the display can be attached to the bus
func (p *ProgressDisplay) Publish(e partybus.Event) {
	if e.Type != event.TaskStartedEvent {
		return
	}
	task, prog, err := event.ParseTaskStarted(e)
	if err != nil {
		log.Warnf("unable to display task: %+v", err)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.follow(*task, prog)
	}()
}

// Wait blocks until every displayed task has finished (completed or failed)
func (p *ProgressDisplay) Wait() {
	p.wg.Wait()
}

func (p *ProgressDisplay) follow(task event.Task, prog progress.StagedProgressable) {
	ticker := time.NewTicker(p.refresh)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		if err := prog.Error(); err != nil {
			p.finish(task, prog, progress.IsErrCompleted(err))
			return
		}
		if p.live {
			p.write("\r %s %s %s", color.Cyan.Sprint(spinner[frame%len(spinner)]), task.Title.WhileRunning, color.Gray.Sprintf("[%s]", prog.Stage()))
		}
		<-ticker.C
	}
}

func (p *ProgressDisplay) finish(task event.Task, prog progress.StagedProgressable, ok bool) {
	prefix := ""
	if p.live {
		// clear the redrawn line
		prefix = "\r\033[K"
	}
	if ok {
		p.write("%s %s %s %s\n", prefix, color.Green.Sprint("✔"), task.Title.OnSuccess, color.Gray.Sprintf("[%s]", prog.Stage()))
		return
	}
	p.write("%s %s %s %s\n", prefix, color.Red.Sprint("✗"), task.Title.OnFail, color.Gray.Sprintf("[%s]", prog.Stage()))
}

func (p *ProgressDisplay) write(format string, args ...interface{}) {
	p.lock.Lock()
	defer p.lock.Unlock()
	_, _ = fmt.Fprintf(p.out, format, args...)
}

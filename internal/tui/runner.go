package tui

import (
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/cdeps/pkg/cdeps"
)

// ProgressBar draws scan progress with bubbletea. It implements
// cdeps.ProgressObserver by posting messages to the running program, and
// io.Writer so log lines are printed above the bar instead of through it.
type ProgressBar struct {
	program *tea.Program
	out     io.Writer
	done    chan struct{}
	once    sync.Once
}

// NewProgressBar creates a bar rendering to out. onQuit is called when the
// user asks to cancel.
func NewProgressBar(out io.Writer, title string, onQuit func(), opts ...tea.ProgramOption) *ProgressBar {
	opts = append([]tea.ProgramOption{tea.WithOutput(out)}, opts...)
	return &ProgressBar{
		program: tea.NewProgram(NewProgressModel(title, onQuit), opts...),
		out:     out,
		done:    make(chan struct{}),
	}
}

// Start runs the program in the background. done is closed when the
// program exits, whether through Finish, a quit key or a signal.
func (p *ProgressBar) Start() {
	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
}

// OnProgress implements cdeps.ProgressObserver.
func (p *ProgressBar) OnProgress(index, total int, relPath string) {
	p.program.Send(ProgressMsg{Index: index, Total: total, RelPath: relPath})
}

// Write prints one log chunk above the bar. Once the program has exited it
// writes straight to the output.
func (p *ProgressBar) Write(b []byte) (int, error) {
	if p.exited() {
		return p.out.Write(b)
	}
	// Program.Println blocks forever after exit; Send gives up once the
	// program context is canceled.
	p.program.Send(tea.Println(strings.TrimRight(string(b), "\n"))())
	return len(b), nil
}

func (p *ProgressBar) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Finish prints the final line and waits for the program to exit.
func (p *ProgressBar) Finish(summary string, err error) {
	p.once.Do(func() {
		p.program.Send(FinishedMsg{Summary: summary, Err: err})
		<-p.done
	})
}

var (
	_ cdeps.ProgressObserver = (*ProgressBar)(nil)
	_ io.Writer              = (*ProgressBar)(nil)
)

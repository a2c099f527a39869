package memory

import (
	"log/slog"
	"sync"
)

// Console logs the bytes a program writes to one IO port as text lines.
// Handy for test programs that report through an output port.
// Attach it with ram.OnOut = console.Out.
type Console struct {
	port   uint32
	logger *slog.Logger

	mu    sync.Mutex
	line  []byte
	lines []string
}

// NewConsole watches port. A nil logger means whatever slog.Default is at
// the time a line completes.
func NewConsole(port uint32, logger *slog.Logger) *Console {
	return &Console{port: port, logger: logger}
}

// Out buffers value if it was written to the console port. NUL, CR and LF
// end a line.
func (c *Console) Out(port uint32, value byte) {
	if port != c.port {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if value == 0 || value == '\n' || value == '\r' {
		c.flush()
		return
	}
	c.line = append(c.line, value)
}

// Flush emits a pending partial line.
func (c *Console) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flush()
}

func (c *Console) flush() {
	if len(c.line) == 0 {
		return
	}
	text := string(c.line)
	c.line = c.line[:0]
	c.lines = append(c.lines, text)
	logger := c.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("console", "port", c.port, "line", text)
}

// Lines returns every completed line so far.
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

package uploadclient

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	meterWidth        = 32
	meterRenderPeriod = 120 * time.Millisecond
)

// meter рисует ASCII-индикатор выполнения для потоков данных.
type meter struct {
	mu         sync.Mutex
	prefix     string
	total      int64
	current    int64
	lastRender time.Time
	done       bool
}

func newMeter(prefix string, total int64) *meter {
	return &meter{
		prefix: prefix,
		total:  total,
	}
}

func (m *meter) Add(n int64) {
	if m == nil || n <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return
	}
	m.current += n

	now := time.Now()
	if now.Sub(m.lastRender) < meterRenderPeriod {
		return
	}
	m.lastRender = now
	fmt.Fprintf(os.Stdout, "\r%s", m.lineLocked())
}

func (m *meter) Finish() {
	m.complete(" ✓")
}

func (m *meter) Fail(err error) {
	suffix := " ✗"
	if err != nil {
		suffix = fmt.Sprintf(" ✗ %v", err)
	}
	m.complete(suffix)
}

func (m *meter) complete(suffix string) {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return
	}
	m.done = true
	fmt.Fprintf(os.Stdout, "\r%s%s\n", m.lineLocked(), suffix)
}

func (m *meter) lineLocked() string {
	if m.total <= 0 {
		return fmt.Sprintf("%s %s transferred", m.prefix, humanBytes(m.current))
	}

	ratio := float64(m.current) / float64(m.total)
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio*float64(meterWidth) + 0.5)
	if filled > meterWidth {
		filled = meterWidth
	}

	return fmt.Sprintf("%s [%s%s] %3d%% %s/%s",
		m.prefix,
		strings.Repeat("=", filled),
		strings.Repeat(" ", meterWidth-filled),
		int(ratio*100+0.5),
		humanBytes(m.current),
		humanBytes(m.total),
	)
}

// meterWriter сбрасывает число записанных байт в meter; используется в TeeReader.
type meterWriter struct {
	m *meter
}

func (w meterWriter) Write(p []byte) (int, error) {
	w.m.Add(int64(len(p)))
	return len(p), nil
}

func humanBytes(v int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB", "PB"}
	value := float64(v)
	unit := 0
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d %s", v, units[unit])
	}
	return fmt.Sprintf("%.1f %s", value, units[unit])
}

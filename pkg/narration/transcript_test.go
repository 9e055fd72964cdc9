package narration

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type updates struct {
	mu    sync.Mutex
	lines []string
	done  []string
}

func (u *updates) record(visible string, complete bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lines = append(u.lines, visible)
	if complete {
		u.done = append(u.done, visible)
	}
}

func (u *updates) completed() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.done...)
}

func TestTranscript_Typewriter(t *testing.T) {
	u := &updates{}
	tr := NewTranscript(true, time.Millisecond, u.record)

	tr.Show("Hola")
	assert.Eventually(t, func() bool { return len(u.completed()) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "Hola", tr.Visible())

	u.mu.Lock()
	defer u.mu.Unlock()
	assert.Equal(t, []string{"", "H", "Ho", "Hol", "Hola"}, u.lines)
}

func TestTranscript_RevealsRunes(t *testing.T) {
	tr := NewTranscript(true, time.Millisecond, nil)
	tr.Show("这里是")
	assert.Eventually(t, func() bool { return tr.Visible() == "这里是" }, time.Second, time.Millisecond)
}

func TestTranscript_NewerTextCancelsReveal(t *testing.T) {
	u := &updates{}
	tr := NewTranscript(true, 5*time.Millisecond, u.record)

	tr.Show("a long text that will not finish")
	tr.Show("ok")

	assert.Eventually(t, func() bool { return len(u.completed()) == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"ok"}, u.completed())
	assert.Equal(t, "ok", tr.Full())
}

func TestTranscript_Disabled(t *testing.T) {
	u := &updates{}
	tr := NewTranscript(false, 0, u.record)
	tr.Show("instant")
	assert.Equal(t, "instant", tr.Visible())
	assert.Equal(t, []string{"instant"}, u.completed())
}

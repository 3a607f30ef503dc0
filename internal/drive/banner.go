package drive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Project-Sylos/Folio/internal/remote"
	log "github.com/sirupsen/logrus"
)

// DefaultDismissAfter is how long a banner message stays up
const DefaultDismissAfter = 5 * time.Second

// GenericFailure is shown when the service gave no error text
const GenericFailure = "Server error"

// Banner is the transient error message shared by the drive components.
// Each message clears itself after the dismiss delay unless replaced first.
type Banner struct {
	dismissAfter time.Duration

	mu      sync.Mutex
	message string
	seq     uint64
	timer   *time.Timer
}

// NewBanner creates a banner whose messages clear after dismissAfter
func NewBanner(dismissAfter time.Duration) *Banner {
	if dismissAfter <= 0 {
		dismissAfter = DefaultDismissAfter
	}
	return &Banner{dismissAfter: dismissAfter}
}

// Show replaces the current message and restarts the dismiss timer
func (b *Banner) Show(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	seq := b.seq
	b.message = message
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.dismissAfter, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.seq == seq {
			b.message = ""
		}
	})
}

// Report shows "<action>: <service message>" for a failed remote call,
// falling back to GenericFailure. Cancelled calls are not reported.
func (b *Banner) Report(action string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	detail := remote.Message(err)
	if detail == "" {
		detail = GenericFailure
	}
	log.Errorf("[drive] %s: %v", action, err)
	b.Show(fmt.Sprintf("%s: %s", action, detail))
}

// Message returns the message currently displayed, or ""
func (b *Banner) Message() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message
}

// Dismiss clears the message immediately
func (b *Banner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.message = ""
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

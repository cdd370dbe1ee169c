package quiz

import (
	"time"

	"github.com/benbjohnson/clock"
)

// rebindTimer replaces the running countdown with a fresh one-second ticker.
// Callers hold o.mu. The ticker is created here, not in the goroutine, so a
// mock clock sees it before the caller advances time.
func (o *Orchestrator) rebindTimer() {
	o.stopTimer()
	if o.closed {
		return
	}

	o.timerID++
	id := o.timerID
	stop := make(chan struct{})
	o.timer = stop

	t := o.clock.Ticker(time.Second)
	go o.runTimer(id, t, stop)
}

func (o *Orchestrator) stopTimer() {
	if o.timer != nil {
		close(o.timer)
		o.timer = nil
	}
}

func (o *Orchestrator) runTimer(id uint64, t *clock.Ticker, stop <-chan struct{}) {
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if !o.tick(id) {
				return
			}
		}
	}
}

// tick applies one countdown second. It reports false once the ticker has
// been superseded or the session is no longer active.
func (o *Orchestrator) tick(id uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if id != o.timerID || o.timer == nil {
		return false
	}

	res, err := o.m.Tick()
	if err != nil {
		return false
	}

	if !res.Expired {
		o.publish(EventTick, nil)
		return true
	}

	sum, _ := o.m.Summary()
	o.logger.Info("question timed out", "session_id", sum.SessionID, "index", sum.Index, "recorded", res.Answer != nil)
	if res.Answer != nil {
		o.publish(EventAnswerRecorded, res.Answer)
	}
	o.publish(EventTimeExpired, nil)
	return true
}

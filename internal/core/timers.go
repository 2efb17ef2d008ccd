package core

import "time"

// timerKind distinguishes the per-lobby countdowns.
type timerKind int

const (
	roundTimer timerKind = iota
	readyTimer
	graceTimer
)

// timerTick is posted into the hub inbox once per second while a round or
// ready countdown runs.
type timerTick struct {
	code     string
	kind     timerKind
	seq      uint64
	timeLeft int
}

// timerExpired is posted when a countdown reaches zero.
type timerExpired struct {
	code    string
	kind    timerKind
	seq     uint64
	session string // grace timers only: the player being timed out
}

type timerHandle struct {
	seq    uint64
	cancel chan struct{}
}

func (h *timerHandle) stop() {
	if h != nil {
		close(h.cancel)
	}
}

// timerRegistry tracks every outstanding countdown per lobby code so that any
// transition that supersedes a timer, or deletes its lobby, can cancel it.
// Expiry messages carry a sequence number; the hub drops messages whose
// sequence no longer matches, which makes the completion races idempotent.
//
// The registry is only ever touched from the hub loop goroutine.
type timerRegistry struct {
	inbox   chan<- any
	nextSeq uint64
	rounds  map[string]*timerHandle
	readies map[string]*timerHandle
	graces  map[string]map[string]*timerHandle // code -> session id -> handle
}

func newTimerRegistry(inbox chan<- any) *timerRegistry {
	return &timerRegistry{
		inbox:   inbox,
		rounds:  make(map[string]*timerHandle),
		readies: make(map[string]*timerHandle),
		graces:  make(map[string]map[string]*timerHandle),
	}
}

// startCountdown begins the round or ready countdown for a lobby, replacing
// any countdown of the same kind already running.
func (t *timerRegistry) startCountdown(code string, kind timerKind, d time.Duration) {
	slot := t.slot(kind)
	slot[code].stop()

	t.nextSeq++
	h := &timerHandle{seq: t.nextSeq, cancel: make(chan struct{})}
	slot[code] = h

	go func(seq uint64, cancel <-chan struct{}) {
		remaining := int(d / time.Second)
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-cancel:
				return
			case <-ticker.C:
				remaining--
				if remaining <= 0 {
					t.inbox <- timerExpired{code: code, kind: kind, seq: seq}
					return
				}
				t.inbox <- timerTick{code: code, kind: kind, seq: seq, timeLeft: remaining}
			}
		}
	}(h.seq, h.cancel)
}

// startGrace arms the pending-removal timer for a disconnected player.
func (t *timerRegistry) startGrace(code, session string, d time.Duration) {
	if t.graces[code] == nil {
		t.graces[code] = make(map[string]*timerHandle)
	}
	t.graces[code][session].stop()

	t.nextSeq++
	h := &timerHandle{seq: t.nextSeq, cancel: make(chan struct{})}
	t.graces[code][session] = h

	go func(seq uint64, cancel <-chan struct{}) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-cancel:
		case <-timer.C:
			t.inbox <- timerExpired{code: code, kind: graceTimer, seq: seq, session: session}
		}
	}(h.seq, h.cancel)
}

// current reports whether a tick/expiry sequence is still the live countdown.
func (t *timerRegistry) current(code string, kind timerKind, seq uint64, session string) bool {
	if kind == graceTimer {
		h := t.graces[code][session]
		return h != nil && h.seq == seq
	}
	h := t.slot(kind)[code]
	return h != nil && h.seq == seq
}

// cancel stops one countdown kind for a lobby.
func (t *timerRegistry) cancel(code string, kind timerKind) {
	slot := t.slot(kind)
	slot[code].stop()
	delete(slot, code)
}

// cancelGrace stops the pending removal of one player.
func (t *timerRegistry) cancelGrace(code, session string) {
	if m := t.graces[code]; m != nil {
		m[session].stop()
		delete(m, session)
		if len(m) == 0 {
			delete(t.graces, code)
		}
	}
}

// cancelAll stops every countdown registered under a lobby code. Must be
// called whenever a lobby is deleted, reset, or finishes, so no zombie timer
// fires for a lobby that is gone.
func (t *timerRegistry) cancelAll(code string) {
	t.cancel(code, roundTimer)
	t.cancel(code, readyTimer)
	for session := range t.graces[code] {
		t.graces[code][session].stop()
	}
	delete(t.graces, code)
}

func (t *timerRegistry) slot(kind timerKind) map[string]*timerHandle {
	if kind == roundTimer {
		return t.rounds
	}
	return t.readies
}

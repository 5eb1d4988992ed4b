package game

// The dispatcher's doorway. Every method here hops onto the room goroutine;
// nothing else in the package is safe to call from outside it.

// Enter seats s. Newcomers are turned away while the room is full or a
// match is initializing; mid-match arrivals are seated in hell.
func (r *Room) Enter(s *Session) bool {
	admitted := false
	r.Do(func() {
		if r.full() || r.phase == PhaseInitiating {
			return
		}
		s.enter(r)
		admitted = true
	})
	return admitted
}

// Leave unseats s and reports whether the room emptied. A session the
// room no longer holds is ignored.
func (r *Room) Leave(s *Session) (emptied bool) {
	r.Do(func() {
		if s.room == r {
			s.leave()
		}
		emptied = r.empty()
	})
	return emptied
}

// Say routes one MESSAGE line. Posted rather than awaited: a /begin from
// the host runs the entire match inline on the room goroutine.
func (r *Room) Say(s *Session, text string) {
	r.Post(func() {
		if s.room == r {
			s.speak(text)
		}
	})
}

// ApplySetup validates sub and installs it as the room's setup. Only the
// host may submit, and only between matches. Malformed submissions carry
// tampered values and are logged; honest mistakes just bounce back with
// the validator's reason. Reports whether the setup was installed.
func (r *Room) ApplySetup(s *Session, sub SetupSubmission) bool {
	applied := false
	r.Do(func() {
		if s.room != r || s != r.host || r.inGame() {
			return
		}
		setup, err := NewSetup(s.Name, sub)
		if err != nil {
			reason := "could not apply the setup"
			if serr, ok := err.(*SetupError); ok {
				switch serr.Kind {
				case SetupMalformed:
					r.log.Warnf("room %d: %s submitted a malformed setup: %v", r.ID, s.Name, err)
					reason = "the setup contains impossible values"
				case SetupInvalid:
					reason = serr.Reason
				}
			} else {
				r.log.Errorf("room %d: setup from %s failed: %v", r.ID, s.Name, err)
			}
			r.emit(newEvent(EventError, Content{"REASON": reason}, s))
			return
		}
		r.setup = setup
		r.emit(newEvent(EventSetup, setup.describe(), r.audience()...))
		applied = true
	})
	return applied
}

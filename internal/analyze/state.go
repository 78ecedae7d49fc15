package analyze

// state is the scanner position: Idle, or Tracking an author whose
// in-window header was the last valid header seen. Only well-formed header
// lines change it; a header whose timestamp fails to parse leaves it as is.
type state struct {
	tracking bool
	authorID string
}

// track moves to Tracking(id).
func (s state) track(id string) state {
	return state{tracking: true, authorID: id}
}

// leave moves to Idle.
func (s state) leave() state {
	return state{}
}

func (s state) author() (string, bool) {
	return s.authorID, s.tracking
}

func (s state) String() string {
	if s.tracking {
		return "Tracking(" + s.authorID + ")"
	}
	return "Idle"
}

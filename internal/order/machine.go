package order

// transitions lists the legal moves out of each status. Finished and
// cancelled have no entry, so they are terminal.
var transitions = map[Status][]Status{
	StatusGenerated:  {StatusInProgress, StatusInvoiced, StatusCancelled},
	StatusInProgress: {StatusInvoiced, StatusSent, StatusCancelled},
	StatusInvoiced:   {StatusSent, StatusCancelled},
	StatusSent:       {StatusFinished},
}

// CanTransition reports whether an order in from may move to to.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}

	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

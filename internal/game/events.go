package game

type EventKind string

const (
	EventWeekChanged        EventKind = "week-changed"
	EventCashChanged        EventKind = "cash-changed"
	EventReputationChanged  EventKind = "reputation-changed"
	EventStaffCountChanged  EventKind = "staff-count-changed"
	EventPatronCountChanged EventKind = "patron-count-changed"
	EventNightStatusChanged EventKind = "night-status-changed"
	EventLog                EventKind = "log"
)

type Tone string

const (
	ToneInfo Tone = "info"
	ToneGood Tone = "good"
	ToneWarn Tone = "warn"
	ToneBad  Tone = "bad"
)

type Event struct {
	Kind       EventKind `json:"kind"`
	Week       int       `json:"week,omitempty"`
	CashPence  int64     `json:"cash_pence,omitempty"`
	Reputation int       `json:"reputation,omitempty"`
	StaffCount int       `json:"staff_count,omitempty"`
	Patrons    int       `json:"patrons,omitempty"`
	Phase      Phase     `json:"phase,omitempty"`
	Message    string    `json:"message,omitempty"`
	Tone       Tone      `json:"tone,omitempty"`
}

type Listener func(Event)

type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	fn Listener
}

// Subscribe registers fn. Listeners run synchronously, in registration order,
// after every command that changed state.
func (e *Engine) Subscribe(fn Listener) ListenerID {
	e.nextListener++
	e.listeners = append(e.listeners, listenerEntry{id: e.nextListener, fn: fn})
	return e.nextListener
}

func (e *Engine) Unsubscribe(id ListenerID) bool {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return true
		}
	}
	return false
}

type observed struct {
	week       int
	cash       int64
	reputation int
	staff      int
	patrons    int
	phase      Phase
}

func (e *Engine) observe() observed {
	return observed{
		week:       e.st.WeekCount,
		cash:       e.st.CashPence,
		reputation: e.st.Reputation,
		staff:      e.st.staffCount(),
		patrons:    e.st.Patrons,
		phase:      e.st.Phase,
	}
}

func (e *Engine) changeEvents(before observed) []Event {
	after := e.observe()
	var out []Event
	if after.phase != before.phase {
		out = append(out, Event{Kind: EventNightStatusChanged, Phase: after.phase})
	}
	if after.week != before.week {
		out = append(out, Event{Kind: EventWeekChanged, Week: after.week})
	}
	if after.cash != before.cash {
		out = append(out, Event{Kind: EventCashChanged, CashPence: after.cash})
	}
	if after.reputation != before.reputation {
		out = append(out, Event{Kind: EventReputationChanged, Reputation: after.reputation})
	}
	if after.staff != before.staff {
		out = append(out, Event{Kind: EventStaffCountChanged, StaffCount: after.staff})
	}
	if after.patrons != before.patrons {
		out = append(out, Event{Kind: EventPatronCountChanged, Patrons: after.patrons})
	}
	return out
}

func (e *Engine) dispatch(events []Event) {
	if len(events) == 0 || len(e.listeners) == 0 {
		return
	}
	e.dispatching = true
	defer func() { e.dispatching = false }()
	listeners := append([]listenerEntry(nil), e.listeners...)
	for _, ev := range events {
		for _, l := range listeners {
			l.fn(ev)
		}
	}
}

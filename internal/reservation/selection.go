package reservation

// Selection is the ordered, duplicate-free list of seats picked by the user.
// It has value semantics; With and Without return copies.
type Selection struct {
	ids []string
}

func NewSelection(ids ...string) Selection {
	return Selection{}.With(ids...)
}

func (s Selection) Contains(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

func (s Selection) Len() int {
	return len(s.ids)
}

func (s Selection) IsEmpty() bool {
	return len(s.ids) == 0
}

// IDs returns a copy in selection order.
func (s Selection) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s Selection) With(ids ...string) Selection {
	out := Selection{ids: s.IDs()}
	for _, id := range ids {
		if !out.Contains(id) {
			out.ids = append(out.ids, id)
		}
	}
	return out
}

func (s Selection) Without(ids ...string) Selection {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	out := Selection{ids: make([]string, 0, len(s.ids))}
	for _, id := range s.ids {
		if _, ok := drop[id]; !ok {
			out.ids = append(out.ids, id)
		}
	}
	return out
}

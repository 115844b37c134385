package types

func orderKey(o *int) (int, bool) {
	if o == nil {
		return 0, false
	}
	return *o, true
}

func (c Category) SortKey() (int, bool, string) {
	n, ok := orderKey(c.Order)
	return n, ok, c.Name
}

func (c Category) WithOrder(n int) Category {
	c.Order = Ptr(n)
	return c
}

func (s Script) SortKey() (int, bool, string) {
	n, ok := orderKey(s.Order)
	return n, ok, s.Title
}

func (s Script) WithOrder(n int) Script {
	s.Order = Ptr(n)
	return s
}

func (h HeaderTag) SortKey() (int, bool, string) {
	n, ok := orderKey(h.Order)
	return n, ok, h.Title
}

func (h HeaderTag) WithOrder(n int) HeaderTag {
	h.Order = Ptr(n)
	return h
}

func (r RecadoCategory) SortKey() (int, bool, string) {
	n, ok := orderKey(r.Order)
	return n, ok, r.Title
}

func (r RecadoCategory) WithOrder(n int) RecadoCategory {
	r.Order = Ptr(n)
	return r
}

func (t InfoTag) SortKey() (int, bool, string) {
	n, ok := orderKey(t.Order)
	return n, ok, t.Name
}

func (t InfoTag) WithOrder(n int) InfoTag {
	t.Order = Ptr(n)
	return t
}

// OrderOf dereferences an optional order, reporting zero when unset.
func OrderOf(o *int) int {
	n, _ := orderKey(o)
	return n
}

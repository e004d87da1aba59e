package native

// StateObject is an immutable pipeline-state object. Desc is the native
// description it was created from.
type StateObject struct {
	device   *Device
	handle   uint64
	Desc     interface{}
	released bool
}

func (s *StateObject) id() uint64         { return s.handle }
func (s *StateObject) kind() ResourceKind { return KindStateObject }
func (s *StateObject) bytes() uint64      { return 0 }
func (s *StateObject) markReleased()      { s.released = true }

func (s *StateObject) Handle() uint64 {
	return s.handle
}

func (s *StateObject) Released() bool {
	return s.released
}

func (d *Device) CreateStateObject(desc interface{}) (*StateObject, Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, res := d.reserve(KindStateObject, 0)
	if res.Failed() {
		return nil, res
	}
	s := &StateObject{device: d, handle: id, Desc: desc}
	d.track(s)
	return s, S_OK
}

func (s *StateObject) Release() {
	s.device.release(s)
}

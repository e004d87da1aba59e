package metadata

// EGL_NONE terminates raw attribute arrays.
const EGL_NONE int32 = 0x3038

// AttributeMap is an ordered key/value store of integer initialization
// attributes. Inserting an existing key overwrites its value in place.
type AttributeMap struct {
	keys   []int32
	values map[int32]int32
}

func NewAttributeMap() *AttributeMap {
	return &AttributeMap{
		values: make(map[int32]int32),
	}
}

// NewAttributeMapFromArray reads key/value pairs until the EGL_NONE key. The
// array must be EGL_NONE terminated; a trailing key without a value is
// dropped.
func NewAttributeMapFromArray(attribs []int32) *AttributeMap {
	am := NewAttributeMap()
	for i := 0; i+1 < len(attribs) && attribs[i] != EGL_NONE; i += 2 {
		am.Insert(attribs[i], attribs[i+1])
	}
	return am
}

func (am *AttributeMap) Insert(key, value int32) {
	if _, ok := am.values[key]; !ok {
		am.keys = append(am.keys, key)
	}
	am.values[key] = value
}

func (am *AttributeMap) Contains(key int32) bool {
	_, ok := am.values[key]
	return ok
}

// Get returns the stored value for key or defaultValue when it is absent.
func (am *AttributeMap) Get(key, defaultValue int32) int32 {
	if v, ok := am.values[key]; ok {
		return v
	}
	return defaultValue
}

// Keys returns the keys in first-insertion order.
func (am *AttributeMap) Keys() []int32 {
	out := make([]int32, len(am.keys))
	copy(out, am.keys)
	return out
}

func (am *AttributeMap) Len() int {
	return len(am.keys)
}

// ToArray returns the map as an EGL_NONE terminated pair list.
func (am *AttributeMap) ToArray() []int32 {
	out := make([]int32, 0, len(am.keys)*2+1)
	for _, k := range am.keys {
		out = append(out, k, am.values[k])
	}
	return append(out, EGL_NONE)
}

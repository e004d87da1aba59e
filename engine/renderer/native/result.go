package native

import (
	"fmt"

	"github.com/spaghettifunk/gles/engine/core"
)

// Result is the HRESULT-style code every native call returns.
type Result int32

const (
	S_OK                   Result = 0
	E_FAIL                 Result = -0x7FFFBFFB // 0x80004005
	E_INVALIDARG           Result = -0x7FF8FFA9 // 0x80070057
	E_OUTOFMEMORY          Result = -0x7FF8FFF2 // 0x8007000E
	DXGI_ERROR_UNSUPPORTED Result = -0x7785FFFC // 0x887A0004
	D3DERR_NOTAVAILABLE    Result = -0x7789F796 // 0x8876086A
	D3DERR_DEVICELOST      Result = -0x7789F798 // 0x88760868
)

func (r Result) Succeeded() bool {
	return r >= 0
}

func (r Result) Failed() bool {
	return r < 0
}

// IsOutOfMemory reports whether r signals an allocation failure.
func (r Result) IsOutOfMemory() bool {
	return r == E_OUTOFMEMORY
}

func (r Result) String() string {
	return ResultString(r, false)
}

// ResultString names a result code, with a short explanation when extended is set.
func ResultString(r Result, extended bool) string {
	switch r {
	case S_OK:
		return conditionalOperator(!extended, "S_OK", "S_OK The operation completed successfully.")
	case E_FAIL:
		return conditionalOperator(!extended, "E_FAIL", "E_FAIL An unspecified failure occurred.")
	case E_INVALIDARG:
		return conditionalOperator(!extended, "E_INVALIDARG", "E_INVALIDARG An invalid parameter was passed to the returning function.")
	case E_OUTOFMEMORY:
		return conditionalOperator(!extended, "E_OUTOFMEMORY", "E_OUTOFMEMORY Direct3D could not allocate sufficient memory to complete the call.")
	case DXGI_ERROR_UNSUPPORTED:
		return conditionalOperator(!extended, "DXGI_ERROR_UNSUPPORTED", "DXGI_ERROR_UNSUPPORTED The requested functionality is not supported by the device or the driver.")
	case D3DERR_NOTAVAILABLE:
		return conditionalOperator(!extended, "D3DERR_NOTAVAILABLE", "D3DERR_NOTAVAILABLE This device does not support the queried technique.")
	case D3DERR_DEVICELOST:
		return conditionalOperator(!extended, "D3DERR_DEVICELOST", "D3DERR_DEVICELOST The device has been lost but cannot be reset at this time.")
	}
	return fmt.Sprintf("HRESULT(0x%08X)", uint32(r))
}

func conditionalOperator(condition bool, res1, res2 string) string {
	if condition {
		return res1
	}
	return res2
}

func (r Result) Error() string {
	return ResultString(r, true)
}

// Check turns a failed result into an error. Allocation failures map to
// core.ErrOutOfMemory; anything else wraps r so callers can inspect it.
func Check(r Result, format string, args ...interface{}) error {
	if r.Succeeded() {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if r.IsOutOfMemory() {
		return core.OutOfMemory("%s: %s", msg, r)
	}
	return fmt.Errorf("%s: %w", msg, r)
}

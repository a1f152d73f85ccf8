package logic

import "math/bits"

var singleButtons = [...]Button{Button0, Button1, Button2, Button3}

// Decode classifies a raw button register by the number of bits set in the
// whole word. No bits is ButtonNone and two or more is ButtonMultiple. A
// single bit is the matching KEY, or ButtonNone when it lies above KEY3.
func Decode(raw uint32) Button {
	switch bits.OnesCount32(raw) {
	case 0:
		return ButtonNone
	case 1:
		if i := bits.TrailingZeros32(raw); i < len(singleButtons) {
			return singleButtons[i]
		}
		return ButtonNone
	default:
		return ButtonMultiple
	}
}

package time

import (
	"encoding/json"
	"math"
)

// Duration 是以秒计的非负时长, 或者表示无上限 (UNLIMITED) 的哨兵值.
// 所有运算都是饱和的: Unbounded 参与的运算结果仍为 Unbounded, 有限值不会溢出.
type Duration struct {
	seconds   int64
	unbounded bool
}

// Unbounded 表示无限时长, 在比较中大于任何有限值.
var Unbounded = Duration{unbounded: true}

// Finite returns a bounded duration. Negative input is clamped to zero.
func Finite(seconds int64) Duration {
	if seconds < 0 {
		seconds = 0
	}
	return Duration{seconds: seconds}
}

func (d Duration) IsUnbounded() bool { return d.unbounded }

// IsZero reports whether d is a finite zero, i.e. "now".
func (d Duration) IsZero() bool { return !d.unbounded && d.seconds == 0 }

// Seconds returns the finite second count. For Unbounded it returns math.MaxInt64.
func (d Duration) Seconds() int64 {
	if d.unbounded {
		return math.MaxInt64
	}
	return d.seconds
}

// Add 饱和加法.
func (d Duration) Add(o Duration) Duration {
	if d.unbounded || o.unbounded {
		return Unbounded
	}
	if d.seconds > math.MaxInt64-o.seconds {
		return Unbounded
	}
	return Duration{seconds: d.seconds + o.seconds}
}

// Sub returns max(d - o, 0). Unbounded minus anything finite stays Unbounded;
// anything minus Unbounded is zero.
func (d Duration) Sub(o Duration) Duration {
	switch {
	case o.unbounded:
		return Duration{}
	case d.unbounded:
		return Unbounded
	case d.seconds <= o.seconds:
		return Duration{}
	default:
		return Duration{seconds: d.seconds - o.seconds}
	}
}

func (d Duration) Compare(o Duration) int {
	switch {
	case d.unbounded && o.unbounded:
		return 0
	case d.unbounded:
		return 1
	case o.unbounded:
		return -1
	case d.seconds < o.seconds:
		return -1
	case d.seconds > o.seconds:
		return 1
	default:
		return 0
	}
}

func (d Duration) Less(o Duration) bool { return d.Compare(o) < 0 }

func Max(a, b Duration) Duration {
	if a.Less(b) {
		return b
	}
	return a
}

func Min(a, b Duration) Duration {
	if b.Less(a) {
		return b
	}
	return a
}

// String renders the compact human form, see Format.
func (d Duration) String() string { return Format(d) }

// MarshalJSON 有限值输出秒数, Unbounded 输出 null.
func (d Duration) MarshalJSON() ([]byte, error) {
	if d.unbounded {
		return []byte("null"), nil
	}
	return json.Marshal(d.seconds)
}

// UnmarshalJSON accepts what MarshalJSON produces.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Unbounded
		return nil
	}
	var s int64
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = Finite(s)
	return nil
}

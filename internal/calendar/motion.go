package calendar

import "calpersonal/internal/model"

// Motion is a date-cursor intent in calendar focus.
type Motion int

const (
	MotionNone Motion = iota
	MotionLeft
	MotionRight
	MotionUp
	MotionDown
	MotionNextMonth
	MotionPrevMonth
	MotionNextYear
	MotionPrevYear
	MotionToday
)

// Move applies m to the viewport date. Month and year steps keep the
// day-of-month where it exists and clamp to the month end otherwise.
func Move(current, today model.Date, m Motion) model.Date {
	switch m {
	case MotionLeft:
		return current.AddDays(-1)
	case MotionRight:
		return current.AddDays(1)
	case MotionUp:
		return current.AddDays(-7)
	case MotionDown:
		return current.AddDays(7)
	case MotionNextMonth:
		return current.AddMonths(1)
	case MotionPrevMonth:
		return current.AddMonths(-1)
	case MotionNextYear:
		return current.AddMonths(12)
	case MotionPrevYear:
		return current.AddMonths(-12)
	case MotionToday:
		return today
	default:
		return current
	}
}

// ClampCursor bounds a list cursor to [0, n-1]; an empty list yields 0.
func ClampCursor(cursor, n int) int {
	if n <= 0 || cursor < 0 {
		return 0
	}
	if cursor > n-1 {
		return n - 1
	}
	return cursor
}

// StepCursor moves a list cursor by delta without wrapping.
func StepCursor(cursor, delta, n int) int {
	return ClampCursor(cursor+delta, n)
}

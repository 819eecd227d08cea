package tariff

// Normalize turns a work request into an absolute minute range anchored at
// the work date's midnight (minute 0). The end is exclusive.
//
// With Overnight set and an end at or before the start, the end rolls into
// the next calendar day. Without it, such an interval is rejected. The
// result always lies in (startAbs, startAbs+MinutesPerDay].
func Normalize(req WorkRequest) (startAbs, endAbs int, err error) {
	if req.WorkDate.IsZero() {
		return 0, 0, &TimeFormatError{Input: "", Layout: "YYYY-MM-DD"}
	}
	start, err := ParseClock(req.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(req.EndTime)
	if err != nil {
		return 0, 0, err
	}

	startAbs, endAbs = int(start), int(end)
	if endAbs <= startAbs {
		if !req.Overnight {
			return 0, 0, &IntervalError{StartTime: req.StartTime, EndTime: req.EndTime}
		}
		endAbs += MinutesPerDay
	}
	return startAbs, endAbs, nil
}

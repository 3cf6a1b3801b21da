package syncer

import (
	"fmt"
	"time"
)

const dateLayout = "20060102"

// window returns the default fetch range: 02:00 local yesterday through 02:00
// local today, rendered as inclusive YYYYMMDD dates. The 02:00 boundary keeps
// late-night transactions that settle after midnight inside the prior day's
// window.
func (s *Service) window() (string, string) {
	now := s.now().In(s.loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), 2, 0, 0, 0, s.loc)
	start := end.AddDate(0, 0, -1)
	return start.Format(dateLayout), end.Format(dateLayout)
}

// ValidateWindow checks an explicit on-demand override: both dates must be
// well-formed 8-digit YYYYMMDD values with start <= end.
func ValidateWindow(start, end string) error {
	startDay, err := time.Parse(dateLayout, start)
	if err != nil {
		return fmt.Errorf("invalid start date %q: want YYYYMMDD", start)
	}
	endDay, err := time.Parse(dateLayout, end)
	if err != nil {
		return fmt.Errorf("invalid end date %q: want YYYYMMDD", end)
	}
	if endDay.Before(startDay) {
		return fmt.Errorf("start date %s is after end date %s", start, end)
	}
	return nil
}

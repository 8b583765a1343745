package pages

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is an inclusive page span. Zero bounds mean "first page" and
// "last page" respectively.
type Range struct {
	From int
	To   int
}

// ParseRange accepts "5-12", "5-", "-12" and "7".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, nil
	}

	if !strings.Contains(s, "-") {
		n, err := atoi(s)
		if err != nil || n <= 0 {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
		return Range{From: n, To: n}, nil
	}

	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}

	var r Range
	var err error
	if strings.TrimSpace(parts[0]) != "" {
		if r.From, err = atoi(parts[0]); err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
	}
	if strings.TrimSpace(parts[1]) != "" {
		if r.To, err = atoi(parts[1]); err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
	}

	return r, r.Validate()
}

// Validate rejects negative bounds and reversed explicit spans.
func (r Range) Validate() error {
	if r.From < 0 || r.To < 0 {
		return fmt.Errorf("%w: negative page number", ErrInvalidRange)
	}
	if r.From > 0 && r.To > 0 && r.To < r.From {
		return fmt.Errorf("%w: %d-%d", ErrInvalidRange, r.From, r.To)
	}

	return nil
}

func (r Range) String() string {
	from, to := "", ""
	if r.From > 0 {
		from = strconv.Itoa(r.From)
	}
	if r.To > 0 {
		to = strconv.Itoa(r.To)
	}

	return from + "-" + to
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

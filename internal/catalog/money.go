package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Money is an amount in whole rupees.
type Money int64

// String renders the amount with the rupee sign and Indian digit grouping.
func (m Money) String() string {
	return FormatINR(int64(m))
}

// MarshalJSON emits both the raw amount and its display form.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount  int64  `json:"amount"`
		Display string `json:"display"`
	}{Amount: int64(m), Display: m.String()})
}

// FormatINR formats an amount in rupees like "₹1,23,456": the last three digits form
// one group and the rest are grouped in pairs.
func FormatINR(amount int64) string {
	neg := amount < 0
	// Negating in uint64 keeps math.MinInt64 representable.
	u := uint64(amount)
	if neg {
		u = -u
	}
	s := strconv.FormatUint(u, 10)

	var b strings.Builder
	b.Grow(len(s) + len(s)/2 + 4)
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₹")

	if len(s) <= 3 {
		b.WriteString(s)
		return b.String()
	}

	head := s[:len(s)-3]
	groups := []string{s[len(s)-3:]}
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	b.WriteString(strings.Join(groups, ","))
	return b.String()
}

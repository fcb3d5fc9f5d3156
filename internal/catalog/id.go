package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// IDLayout is the time layout encoded in song identifiers.
const IDLayout = "20060102_1504"

var idRe = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})$`)

// ValidID reports whether id has the YYYYMMDD_HHMM shape.
func ValidID(id string) bool {
	return idRe.MatchString(id)
}

// NumericID is the identifier with its separator removed, read as an
// integer. Unparseable identifiers sort as 0.
func NumericID(id string) int64 {
	n, err := strconv.ParseInt(strings.ReplaceAll(id, "_", ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseIDTime returns the wall-clock time encoded in id.
func ParseIDTime(id string) (time.Time, error) {
	return time.Parse(IDLayout, id)
}

// FormatDateFromID renders id as "YYYY/MM/DD HH:MM", or "" when id is malformed.
func FormatDateFromID(id string) string {
	m := idRe.FindStringSubmatch(id)
	if m == nil {
		return ""
	}
	return m[1] + "/" + m[2] + "/" + m[3] + " " + m[4] + ":" + m[5]
}

// FormatDateShort renders id as "YYYY/M/D" without zero padding.
func FormatDateShort(id string) string {
	m := idRe.FindStringSubmatch(id)
	if m == nil {
		return ""
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return m[1] + "/" + strconv.Itoa(month) + "/" + strconv.Itoa(day)
}

// YearFromID returns the leading four-digit year of id, or "".
func YearFromID(id string) string {
	if len(id) < 4 {
		return ""
	}
	if _, err := strconv.Atoi(id[:4]); err != nil {
		return ""
	}
	return id[:4]
}

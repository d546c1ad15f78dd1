package logspool

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FormatDate renders t with a .NET-style custom date pattern, the notation
// used by DateFormat. Supported specifiers:
//
//	yyyy yy y   year (4 digits, 2 digits, 1-2 digits)
//	MMMM MMM MM M   month name, abbreviation, 2 digits, 1-2 digits
//	dddd ddd dd d   weekday name, abbreviation, day of month
//	HH H hh h   hour (24h and 12h)
//	mm m ss s   minute and second
//	f...f   fraction of a second, one digit per f (up to 9)
//	tt t    AM/PM designator
//
// Text inside single or double quotes and characters escaped with a
// backslash are copied literally, as is every other character.
func FormatDate(t time.Time, pattern string) string {
	var b strings.Builder
	runes := []rune(pattern)

	for i := 0; i < len(runes); {
		c := runes[i]

		switch c {
		case '\'', '"':
			j := i + 1
			for j < len(runes) && runes[j] != c {
				j++
			}
			b.WriteString(string(runes[i+1 : j]))
			i = j + 1
			continue
		case '\\':
			if i+1 < len(runes) {
				b.WriteRune(runes[i+1])
			}
			i += 2
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == c {
			n++
		}
		if !writeSpecifier(&b, t, c, n) {
			b.WriteString(string(runes[i : i+n]))
		}
		i += n
	}
	return b.String()
}

func writeSpecifier(b *strings.Builder, t time.Time, c rune, n int) bool {
	switch c {
	case 'y':
		year := t.Year()
		if n <= 2 {
			fmt.Fprintf(b, "%0*d", n, year%100)
		} else {
			fmt.Fprintf(b, "%0*d", n, year)
		}
	case 'M':
		switch {
		case n >= 4:
			b.WriteString(t.Month().String())
		case n == 3:
			b.WriteString(t.Month().String()[:3])
		default:
			fmt.Fprintf(b, "%0*d", n, int(t.Month()))
		}
	case 'd':
		switch {
		case n >= 4:
			b.WriteString(t.Weekday().String())
		case n == 3:
			b.WriteString(t.Weekday().String()[:3])
		default:
			fmt.Fprintf(b, "%0*d", n, t.Day())
		}
	case 'H':
		fmt.Fprintf(b, "%0*d", min(n, 2), t.Hour())
	case 'h':
		h := t.Hour() % 12
		if h == 0 {
			h = 12
		}
		fmt.Fprintf(b, "%0*d", min(n, 2), h)
	case 'm':
		fmt.Fprintf(b, "%0*d", min(n, 2), t.Minute())
	case 's':
		fmt.Fprintf(b, "%0*d", min(n, 2), t.Second())
	case 'f':
		digits := min(n, 9)
		frac := t.Nanosecond()
		for i := digits; i < 9; i++ {
			frac /= 10
		}
		fmt.Fprintf(b, "%0*d", digits, frac)
	case 't':
		designator := "AM"
		if t.Hour() >= 12 {
			designator = "PM"
		}
		if n == 1 {
			designator = designator[:1]
		}
		b.WriteString(designator)
	default:
		return false
	}
	return true
}

// ResolvePath returns the log file path for instant t:
// Directory/Prefix + FormatDate(t, DateFormat) + Suffix + "." + Extension.
// An empty Directory resolves relative to the working directory.
func (c *Config) ResolvePath(t time.Time) string {
	name := c.Prefix + FormatDate(t, c.DateFormat) + c.Suffix + "." + c.Extension
	return filepath.Join(c.Directory, name)
}

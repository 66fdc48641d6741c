package stripe

import (
	"bufio"
	"io"
	"strings"
)

// scanlines will scan in the lines from the given io.Reader, and pass each
// line it scans into the given callback. Surrounding whitespace is trimmed
// from each line, and blank lines and comments (lines prefixed with #) are
// skipped.
func scanlines(rd io.Reader, fn func(string)) error {
	br := bufio.NewReader(rd)

	for {
		line, err := br.ReadString('\n')

		if err != nil && err != io.EOF {
			return err
		}

		line = strings.TrimSpace(line)

		if line != "" && line[0] != '#' {
			fn(line)
		}

		if err == io.EOF {
			return nil
		}
	}
}

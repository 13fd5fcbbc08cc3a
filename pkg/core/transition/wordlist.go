package transition

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseWordFrequencies reads a word frequency list: one "word count" pair
// per line, separated by whitespace. Blank lines and lines starting with #
// are skipped.
func ParseWordFrequencies(r io.Reader) ([]WordFrequency, error) {
	var words []WordFrequency
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want \"word count\", got %q", line, text)
		}
		freq, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: frequency: %w", line, err)
		}
		words = append(words, WordFrequency{Word: fields[0], Frequency: freq})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

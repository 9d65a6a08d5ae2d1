package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vnkhanh/quiz-backend/client"
)

// parseChoice accepts a letter (A-D) or a 1-based number.
func parseChoice(line string, n int) (int, bool) {
	line = strings.ToUpper(strings.TrimSpace(line))
	if len(line) != 1 || n < 1 {
		return 0, false
	}
	c := line[0]
	switch {
	case c >= 'A' && int(c-'A') < n:
		return int(c - 'A'), true
	case c >= '1' && int(c-'1') < n:
		return int(c - '1'), true
	}
	return 0, false
}

func parsePositiveLimit(args []string, index int, defaultValue int) (int, error) {
	if len(args) <= index {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(args[index])
	if err != nil || value <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return value, nil
}

func formatPercent(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', 1, 64) + "%"
}

func describeClientError(err error, serverURL string) error {
	switch {
	case errors.Is(err, client.ErrServiceUnavailable):
		return fmt.Errorf("quiz service unavailable at %s", serverURL)
	case errors.Is(err, client.ErrNotAuthenticated):
		return errors.New("please login first")
	}
	return err
}

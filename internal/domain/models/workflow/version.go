package workflow

import (
	"fmt"
	"strconv"
	"strings"
)

// Version suffix schemes. Prototype lineages use letters (vA, vB, ...,
// vZ, vAA, ...); production lineages use numbers (v1, v2, ...). The two
// schemes never mix within a lineage, and production always starts at v1.
const (
	FirstPrototypeVersion  = "vA"
	FirstProductionVersion = "v1"
)

// FirstVersion returns the initial version token for a lineage.
func FirstVersion(isProduction bool) string {
	if isProduction {
		return FirstProductionVersion
	}
	return FirstPrototypeVersion
}

// NextVersion returns the version token following current within the
// lineage's scheme. It rejects tokens from the wrong scheme so a letter
// suffix can never appear in a production lineage or vice versa.
func NextVersion(current string, isProduction bool) (string, error) {
	suffix, ok := strings.CutPrefix(current, "v")
	if !ok || suffix == "" {
		return "", fmt.Errorf("malformed version %q", current)
	}

	if isProduction {
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 {
			return "", fmt.Errorf("version %q is not a production version", current)
		}
		return "v" + strconv.Itoa(n+1), nil
	}

	for _, r := range suffix {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("version %q is not a prototype version", current)
		}
	}
	return "v" + incrementLetters(suffix), nil
}

// incrementLetters advances an uppercase letter counter: A->B, Z->AA,
// AZ->BA. Same carry rule as spreadsheet column names.
func incrementLetters(s string) string {
	b := []byte(s)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 'Z' {
			b[i]++
			return string(b)
		}
		b[i] = 'A'
	}
	return "A" + string(b)
}

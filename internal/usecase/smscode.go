package usecase

import "regexp"

var codeRun = regexp.MustCompile(`[0-9]+`)

// ExtractCode best-effort parses a verification code from SMS text: the first
// contiguous run of 4 to 6 digits. Returns nil when no such run exists.
func ExtractCode(text string) *string {
	for _, run := range codeRun.FindAllString(text, -1) {
		if len(run) >= 4 && len(run) <= 6 {
			code := run
			return &code
		}
	}
	return nil
}

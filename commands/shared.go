package commands

import "regexp"

var unsafeFileCharsRegExp *regexp.Regexp

func init() {
	unsafeFileCharsRegExp = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
}

func sanitize(name string) string {
	return unsafeFileCharsRegExp.ReplaceAllString(name, "_")
}

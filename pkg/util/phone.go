package util

import "regexp"

// Iranian mobile numbers: 09 followed by nine digits
var mobilePattern = regexp.MustCompile(`^09\d{9}$`)

// IsValidMobile reports whether s is a well-formed Iranian mobile number
func IsValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

package util

import "strings"

// MaskPhone obscures a phone number for logging, showing only the first and
// last two digits.
func MaskPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) > 6 {
		return phone[:2] + strings.Repeat("*", len(phone)-4) + phone[len(phone)-2:]
	}
	if len(phone) > 2 {
		return phone[:1] + strings.Repeat("*", len(phone)-1)
	}
	return strings.Repeat("*", len(phone))
}

// MaskSecret obscures a token or secret for logging, showing only the first
// and last few characters.
func MaskSecret(secret string) string {
	if len(secret) > 8 {
		return secret[:4] + "..." + secret[len(secret)-4:]
	} else if len(secret) > 4 {
		return secret[:2] + "..." + secret[len(secret)-2:]
	} else if len(secret) > 2 {
		return secret[:1] + "..." + secret[len(secret)-1:]
	}
	return secret
}

package utils

// TruncateString shortens value to at most maxLength runes, appending an
// ellipsis marker when truncation happened. Used to keep response previews in
// error messages readable.
func TruncateString(value string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= maxLength {
		return value
	}
	return string(runes[:maxLength]) + "..."
}

// Ptr returns a pointer to value. Handy for the optional wire fields where
// omission, not zero, signals "use the provider default".
func Ptr[T any](value T) *T { return &value }

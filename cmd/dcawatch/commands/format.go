package commands

import "fmt"

// Shared output helpers so every command prints the same way.

// PrintSeparator prints a visual separator.
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintKeyValue prints an aligned key-value pair.
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("  %-*s : %s\n", keyWidth, key, value)
}

// PrintSuccess prints a success message.
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message.
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintWarning prints a warning message.
func PrintWarning(message string) {
	fmt.Printf("⚠️  %s\n", message)
}

package masking

import (
	"strings"
	"sync"
	"testing"
)

// TestEntryPoints reproduces the documented masking examples exactly
func TestEntryPoints(t *testing.T) {
	tests := []struct {
		name     string
		mask     func(string) string
		input    string
		expected string
	}{
		{"national id", NationalID, "92071234567", "***********"},
		{"street address", StreetAddress, "ul. Kwiatowa 15/3", "***"},
		{"city", City, "Warsaw", "***"},
		{"postal code", PostalCode, "00-001", "***"},
		{"email short local part", Email, "ab@example.com", "**@example.com"},
		{"email long local part", Email, "abcdef@example.com", "ab****@example.com"},
		{"email without at sign", Email, "nodomainstring", "**************"},
		{"email with empty local part", Email, "@example.com", "@example.com"},
		{"email keeps everything after first at", Email, "john@doe@example.com", "jo**@doe@example.com"},
		{"email single character local part", Email, "a@b.pl", "*@b.pl"},
		{"phone", Phone, "123456789", "*****6789"},
		{"phone with spaces", Phone, "+48 123 456 789", "*********** 789"},
		{"phone shorter than suffix", Phone, "123", "***"},
		{"phone equal to suffix", Phone, "1234", "****"},
		{"secret", Secret, "ABCDEFGHIJKL", "ABCD****IJKL"},
		{"secret of eight characters", Secret, "ABCDEFGH", "********"},
		{"secret of nine characters", Secret, "ABCDEFGHI", "ABCD*FGHI"},
		{"password", Password, "hunter2", "*******"},
		{"password longer than cap", Password, "averylongpasswordabc", "**********"},
		{"password of 21 characters", Password, "averylongpassword123", "**********"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mask(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFullName(t *testing.T) {
	tests := []struct {
		first, last string
		expected    string
	}{
		{"Jan", "Kowalski", "J. K."},
		{"Łucja", "Żak", "Ł. Ż."},
		{"", "Kowalski", ". K."},
		{"Jan", "", "J. ."},
		{"", "", ". ."},
	}

	for _, tt := range tests {
		if got := FullName(tt.first, tt.last); got != tt.expected {
			t.Errorf("FullName(%q, %q): expected %q, got %q", tt.first, tt.last, tt.expected, got)
		}
	}
}

// TestEmptyInput checks that every single-value entry point maps "" to ""
func TestEmptyInput(t *testing.T) {
	entryPoints := map[string]func(string) string{
		"national_id":    NationalID,
		"street_address": StreetAddress,
		"city":           City,
		"postal_code":    PostalCode,
		"email":          Email,
		"phone":          Phone,
		"secret":         Secret,
		"password":       Password,
	}
	for name, mask := range entryPoints {
		if got := mask(""); got != "" {
			t.Errorf("%s: expected empty output, got %q", name, got)
		}
	}

	for _, c := range Categories() {
		if got := Mask(c, ""); got != "" {
			t.Errorf("Mask(%s, \"\"): expected empty output, got %q", c, got)
		}
	}
}

func TestMultiByteInput(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"national id counts letters not bytes", NationalID("Łódź"), "****"},
		{"family emoji is one character", NationalID("👨‍👩‍👧"), "*"},
		{"combining accent stays with its letter", NationalID("e\u0301e"), "**"},
		{"email local part", Email("żółw@example.pl"), "żó**@example.pl"},
		{"secret edges", Secret("ąęćłńóśźż123"), "ąęćł****ż123"},
		{"password", Password("zażółćgęśląjaźń"), "**********"},
		{"phone suffix", Phone("☎️123456789"), "******6789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}

func TestConcurrentUse(t *testing.T) {
	const workers = 32
	want := Email("abcdef@example.com") + Secret("sk_live_1234567890abcdef")

	var wg sync.WaitGroup
	results := make(chan string, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = Phone("+48 987 654 321")
			}
			results <- Email("abcdef@example.com") + Secret("sk_live_1234567890abcdef")
		}()
	}
	wg.Wait()
	close(results)

	for got := range results {
		if got != want {
			t.Fatalf("Expected %q, got %q", want, got)
		}
	}
	if !strings.HasPrefix(want, "ab****@example.com") {
		t.Errorf("Unexpected email mask in %q", want)
	}
}

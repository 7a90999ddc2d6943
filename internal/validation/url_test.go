package validation

import (
	"strings"
	"testing"
)

func TestValidateURL_ValidURLs(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		requireHTTPS bool
	}{
		{"HTTP URL", "http://labels.example.com/1.pdf", false},
		{"HTTPS URL", "https://labels.example.com/1.pdf", false},
		{"HTTPS URL with requireHTTPS", "https://labels.example.com/1.pdf", true},
		{"URL with query", "https://carrier.example.com/track?num=1Z999", false},
		{"URL with port", "https://labels.example.com:8443/1.pdf", false},
		{"Empty URL (allowed)", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, "label_url", tt.requireHTTPS)
			if err != nil {
				t.Errorf("ValidateURL(%q, requireHTTPS=%v) returned error: %v", tt.url, tt.requireHTTPS, err)
			}
		})
	}
}

func TestValidateURL_InvalidURLs(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		requireHTTPS  bool
		expectedError string
	}{
		{"No scheme", "labels.example.com/1.pdf", false, "must include a scheme"},
		{"HTTP when HTTPS required", "http://labels.example.com/1.pdf", true, "must use HTTPS"},
		{"Invalid scheme", "ftp://labels.example.com/1.pdf", false, "scheme must be http or https"},
		{"No host", "https://", false, "must include a host"},
		{"Malformed URL", "ht!tp://example.com", false, "invalid URL format"},
		{"Just scheme", "https", false, "must include a scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, "label_url", tt.requireHTTPS)
			if err == nil {
				t.Errorf("ValidateURL(%q, requireHTTPS=%v) should return error", tt.url, tt.requireHTTPS)
				return
			}

			errMsg := err.Error()
			if !strings.Contains(errMsg, tt.expectedError) {
				t.Errorf("Error message %q should contain %q", errMsg, tt.expectedError)
			}
		})
	}
}

func TestURLValidationError_ErrorMessage(t *testing.T) {
	err := URLValidationError{
		Field:   "label_url",
		Message: "must use HTTPS in production",
		URL:     "http://example.com",
	}

	expected := "label_url: must use HTTPS in production (url: http://example.com)"
	if err.Error() != expected {
		t.Errorf("Error message mismatch:\ngot:  %s\nwant: %s", err.Error(), expected)
	}
}

func TestValidateURL_EdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		shouldErr bool
	}{
		{"Localhost", "http://localhost:3000/label.pdf", false},
		{"IP address", "https://192.168.1.1/label.pdf", false},
		{"IPv6", "https://[::1]:8080/label.pdf", false},
		{"Subdomain", "https://api.carrier.example.com/labels/1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, "label_url", false)
			if (err != nil) != tt.shouldErr {
				t.Errorf("ValidateURL(%q) error = %v, shouldErr = %v", tt.url, err, tt.shouldErr)
			}
		})
	}
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		attrs    []string
		wantErr  bool
	}{
		{"ok", "c0mplex-secret", []string{"vasya", "vasya@example.com"}, false},
		{"too short", "abc123", nil, true},
		{"numeric", "9876543210", nil, true},
		{"common", "Password1", nil, true},
		{"contains username", "vasya-the-cook", []string{"vasya"}, true},
		{"contains email local part", "xx-pupkin-xx", []string{"pupkin@example.com"}, true},
		{"short attributes ignored", "c0mplex-secret", []string{"c0"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePassword(tt.password, tt.attrs...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Борщ", sanitizeText("  <b>Борщ</b> "))
	assert.Equal(t, "Salt & pepper", sanitizeText("Salt & pepper<script>alert(1)</script>"))
}

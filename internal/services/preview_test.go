package services

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestHashContent(t *testing.T) {
	a := hashContent("<p>{{guest_name}}</p>")
	b := hashContent("<p>{{guest_name}}</p>")
	c := hashContent("<p>{{guest_name}} </p>")

	if a != b {
		t.Error("identical content must hash identically")
	}
	if a == c {
		t.Error("different content must hash differently")
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a))
	}
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"gorm sentinel", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm sentinel", fmt.Errorf("create row: %w", gorm.ErrDuplicatedKey), true},
		{"sqlite message", errors.New("UNIQUE constraint failed: template_configs.tenant_id"), true},
		{"mysql message", errors.New("Error 1062: Duplicate entry '2' for key 'idx_tenant_category_version'"), true},
		{"postgres message", errors.New(`ERROR: duplicate key value violates unique constraint "idx_tenant_category_version"`), true},
		{"unrelated error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicateKey(tt.err); got != tt.want {
				t.Errorf("isDuplicateKey(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

package auth

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name     string
		granted  []string
		required string
		want     bool
	}{
		{"exact match", []string{"orders:read"}, "orders:read", true},
		{"wildcard", []string{"all"}, "orders:write", true},
		{"wildcard among others", []string{"items:read", "all"}, "shipments:write", true},
		{"read does not imply write", []string{"orders:read"}, "orders:write", false},
		{"write does not imply read", []string{"orders:write"}, "orders:read", false},
		{"no prefix matching", []string{"orders:read"}, "orders", false},
		{"empty grant list", nil, "orders:read", false},
		{"empty required", []string{"all"}, "", false},
		{"unrelated permission", []string{"users:write"}, "inventory:write", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasPermission(tt.granted, tt.required); got != tt.want {
				t.Fatalf("HasPermission(%v, %q) = %v, want %v", tt.granted, tt.required, got, tt.want)
			}
		})
	}
}

func TestKnownPermission(t *testing.T) {
	for _, p := range KnownPermissions() {
		if !KnownPermission(p) {
			t.Fatalf("vocabulary permission %q not recognized", p)
		}
	}
	if !KnownPermission(PermissionAll) {
		t.Fatal("wildcard should be a known permission")
	}
	if KnownPermission("orders:delete") {
		t.Fatal("orders:delete is not part of the vocabulary")
	}
	if KnownPermission("") {
		t.Fatal("empty string is not a permission")
	}
}

func TestPrincipalCan(t *testing.T) {
	p := &Principal{Permissions: []string{PermOrdersRead}}
	if !p.Can(PermOrdersRead) {
		t.Fatal("expected orders:read to be allowed")
	}
	if p.Can(PermOrdersWrite) {
		t.Fatal("expected orders:write to be refused")
	}

	var nilPrincipal *Principal
	if nilPrincipal.Can(PermOrdersRead) {
		t.Fatal("nil principal must never pass the gate")
	}
}

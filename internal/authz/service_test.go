package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzService(t *testing.T) *Service {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service: %v", err)
	}
	return svc
}

func TestEnforceUserThroughRole(t *testing.T) {
	svc := setupAuthzService(t)

	if err := svc.GrantRolePolicy("ops", "/admin/products/:id", "GET"); err != nil {
		t.Fatalf("grant policy: %v", err)
	}
	if err := svc.SetUserRoles(7, []string{"ops"}); err != nil {
		t.Fatalf("set roles: %v", err)
	}

	ok, err := svc.EnforceUser(7, "/api/v1/admin/products/42", "get")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if !ok {
		t.Fatalf("expected ops user to read product detail")
	}

	ok, err = svc.EnforceUser(7, "/admin/products/42", "DELETE")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if ok {
		t.Fatalf("DELETE must not be allowed by a GET policy")
	}

	ok, err = svc.EnforceUser(8, "/admin/products/42", "GET")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if ok {
		t.Fatalf("user without the role must be denied")
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzService(t)

	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	cases := []struct {
		role   string
		object string
		action string
		want   bool
	}{
		{"admin", "/admin/coupons", "POST", true},
		{"admin", "/api/v1/admin/orders/SW123/status", "PATCH", true},
		{"support", "/admin/orders", "GET", true},
		{"support", "/admin/orders/SW123/status", "PATCH", true},
		{"support", "/admin/coupons", "POST", false},
		{"support", "/admin/orders/SW123", "DELETE", false},
	}
	for _, tc := range cases {
		ok, err := svc.EnforceRole(tc.role, tc.object, tc.action)
		if err != nil {
			t.Fatalf("enforce %s %s %s: %v", tc.role, tc.object, tc.action, err)
		}
		if ok != tc.want {
			t.Fatalf("enforce %s %s %s = %v, want %v", tc.role, tc.object, tc.action, ok, tc.want)
		}
	}

	// Seeding twice must not fail or duplicate rules.
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("re-bootstrap: %v", err)
	}
}

func TestRevokeRolePolicy(t *testing.T) {
	svc := setupAuthzService(t)

	if err := svc.GrantRolePolicy("ops", "/admin/coupons", "POST"); err != nil {
		t.Fatalf("grant policy: %v", err)
	}
	if err := svc.SetUserRoles(3, []string{"ops"}); err != nil {
		t.Fatalf("set roles: %v", err)
	}

	ok, err := svc.EnforceUser(3, "/admin/coupons", "POST")
	if err != nil || !ok {
		t.Fatalf("expected grant to allow, ok=%v err=%v", ok, err)
	}

	if err := svc.RevokeRolePolicy("ops", "/admin/coupons", "POST"); err != nil {
		t.Fatalf("revoke policy: %v", err)
	}
	ok, err = svc.EnforceUser(3, "/admin/coupons", "POST")
	if err != nil {
		t.Fatalf("enforce after revoke: %v", err)
	}
	if ok {
		t.Fatalf("revoked policy must deny")
	}
}

func TestSetUserRolesReplacesAssignments(t *testing.T) {
	svc := setupAuthzService(t)

	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := svc.SetUserRoles(5, []string{"admin"}); err != nil {
		t.Fatalf("set roles: %v", err)
	}
	if err := svc.SetUserRoles(5, []string{"support"}); err != nil {
		t.Fatalf("replace roles: %v", err)
	}

	roles, err := svc.GetUserRoles(5)
	if err != nil {
		t.Fatalf("get roles: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:support" {
		t.Fatalf("roles = %v, want [role:support]", roles)
	}

	ok, err := svc.EnforceUser(5, "/admin/coupons", "POST")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if ok {
		t.Fatalf("demoted user must lose admin access")
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/api/v1/admin/orders", "/admin/orders"},
		{"/api/v1", "/"},
		{"admin/orders", "/admin/orders"},
		{"  /admin/orders  ", "/admin/orders"},
		{"", "/"},
	}
	for _, tc := range cases {
		if got := NormalizeObject(tc.in); got != tc.want {
			t.Fatalf("NormalizeObject(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/campushub/portal/internal/model"
	"github.com/campushub/portal/internal/repository/memory"
	"github.com/campushub/portal/internal/service"
)

func newUsers(t *testing.T) (*service.UserService, *service.AuditService, *memory.Store) {
	t.Helper()
	store := memory.New()
	audit := service.NewAuditService(store.AuditLogs(), nil, zap.NewNop())
	return service.NewUserService(store.Users(), audit, zap.NewNop()), audit, store
}

func TestUserCreateValidation(t *testing.T) {
	svc, _, _ := newUsers(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, adminID, "Eve", "eve@campus.edu", "superuser"); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("bad role err = %v, want ErrInvalidInput", err)
	}
	if _, err := svc.Create(ctx, adminID, "", "eve@campus.edu", "student"); !errors.Is(err, model.ErrInvalidInput) {
		t.Fatalf("missing name err = %v, want ErrInvalidInput", err)
	}

	user, err := svc.Create(ctx, adminID, "Eve", "eve@campus.edu", "student")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.ID == "" || user.Role != model.RoleStudent {
		t.Fatalf("user = %+v", user)
	}
}

func TestUserRoleChangeIsAudited(t *testing.T) {
	svc, audit, _ := newUsers(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, adminID, "Eve", "eve@campus.edu", "student")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, adminID, user.ID, "", "", "faculty"); err != nil {
		t.Fatalf("update: %v", err)
	}

	entries, err := audit.List(ctx, 0)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	var found bool
	for _, entry := range entries {
		if entry.Action == "Permission Change" && entry.Level == model.AuditLevelWarning {
			found = true
		}
	}
	if !found {
		t.Fatal("role change did not produce a warning-level audit entry")
	}

	// Same-role update is not a permission change.
	before := len(entries)
	if _, err := svc.Update(ctx, adminID, user.ID, "Eve Adams", "", "faculty"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	entries, err = audit.List(ctx, 0)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(entries) != before {
		t.Fatalf("audit grew from %d to %d on a same-role update", before, len(entries))
	}
}

func TestUserDelete(t *testing.T) {
	svc, _, _ := newUsers(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, adminID, "Eve", "eve@campus.edu", "student")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, adminID, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, user.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("get err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, adminID, user.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("double delete err = %v, want ErrNotFound", err)
	}
}

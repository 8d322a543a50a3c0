package service

import (
	"context"
	"errors"
	"testing"

	"memberhub/internal/entity"
	"memberhub/internal/model"
)

// fakeUpgradeRepo 只实现升级流程用到的仓储方法，其余走 panic。
type fakeUpgradeRepo struct {
	model.Repository

	requests map[uint]*entity.DbUpgradeRequest
	users    map[uint]*entity.DbUser
	nextID   uint
}

func newFakeUpgradeRepo() *fakeUpgradeRepo {
	return &fakeUpgradeRepo{
		requests: make(map[uint]*entity.DbUpgradeRequest),
		users:    make(map[uint]*entity.DbUser),
		nextID:   1,
	}
}

func (f *fakeUpgradeRepo) CreateUpgradeRequest(ctx context.Context, request *entity.DbUpgradeRequest) error {
	request.ID = f.nextID
	f.nextID++
	clone := *request
	f.requests[request.ID] = &clone
	return nil
}

func (f *fakeUpgradeRepo) GetUpgradeRequest(ctx context.Context, id uint) (*entity.DbUpgradeRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return nil, nil
	}
	clone := *request
	return &clone, nil
}

func (f *fakeUpgradeRepo) UpdateUpgradeRequest(ctx context.Context, id uint, updates entity.UpgradeRequestUpdates) error {
	request, ok := f.requests[id]
	if !ok {
		return errors.New("not found")
	}
	if updates.Status != nil {
		request.Status = *updates.Status
	}
	return nil
}

func (f *fakeUpgradeRepo) FindPendingUpgradeRequest(ctx context.Context, userID uint) (*entity.DbUpgradeRequest, error) {
	for _, request := range f.requests {
		if request.UserID == userID && request.Status == entity.UpgradeStatusPending {
			clone := *request
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeUpgradeRepo) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	user, ok := f.users[id]
	if !ok {
		return errors.New("user not found")
	}
	if updates.Role != nil {
		user.Role = *updates.Role
	}
	return nil
}

func basicMember(repo *fakeUpgradeRepo) *entity.DbUser {
	user := &entity.DbUser{ID: 7, DisplayName: "jordan", Role: entity.RoleBasic}
	repo.users[user.ID] = user
	return user
}

func TestUpgradeSubmit(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUpgradeRepo()
	svc := NewUpgradeService(repo)
	user := basicMember(repo)

	request, err := svc.Submit(ctx, user, "FULL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.Status != entity.UpgradeStatusPending {
		t.Fatalf("expected PENDING, got %s", request.Status)
	}
	if request.CurrentRole != entity.RoleBasic || request.RequestedRole != entity.RoleFull {
		t.Fatalf("unexpected role snapshot: %+v", request)
	}
	if request.UserName != "jordan" {
		t.Fatalf("expected name snapshot, got %q", request.UserName)
	}
}

func TestUpgradeSubmitOnePendingPerMember(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUpgradeRepo()
	svc := NewUpgradeService(repo)
	user := basicMember(repo)

	if _, err := svc.Submit(ctx, user, "FULL"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Submit(ctx, user, "LEADERSHIP"); !errors.Is(err, ErrUpgradePending) {
		t.Fatalf("expected ErrUpgradePending, got %v", err)
	}
}

func TestUpgradeSubmitEligibility(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUpgradeRepo()
	svc := NewUpgradeService(repo)

	tests := []struct {
		name      string
		current   entity.Role
		requested string
	}{
		{name: "same role", current: entity.RoleFull, requested: "FULL"},
		{name: "downgrade", current: entity.RoleLeadership, requested: "BASIC"},
		{name: "unknown role", current: entity.RoleBasic, requested: "VIP"},
		{name: "empty role", current: entity.RoleBasic, requested: ""},
	}
	for _, tt := range tests {
		user := &entity.DbUser{ID: 1, Role: tt.current}
		if _, err := svc.Submit(ctx, user, tt.requested); !errors.Is(err, ErrUpgradeNotEligible) {
			t.Fatalf("%s: expected ErrUpgradeNotEligible, got %v", tt.name, err)
		}
	}
}

func TestUpgradeResolveApprove(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUpgradeRepo()
	svc := NewUpgradeService(repo)
	user := basicMember(repo)

	request, err := svc.Submit(ctx, user, "FULL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved, err := svc.Resolve(ctx, request.ID, "approve")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Status != entity.UpgradeStatusApproved {
		t.Fatalf("expected APPROVED, got %s", resolved.Status)
	}
	if repo.users[user.ID].Role != entity.RoleFull {
		t.Fatalf("expected member role FULL, got %s", repo.users[user.ID].Role)
	}
}

func TestUpgradeResolveReject(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUpgradeRepo()
	svc := NewUpgradeService(repo)
	user := basicMember(repo)

	request, err := svc.Submit(ctx, user, "FULL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resolved, err := svc.Resolve(ctx, request.ID, "reject")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Status != entity.UpgradeStatusRejected {
		t.Fatalf("expected REJECTED, got %s", resolved.Status)
	}
	if repo.users[user.ID].Role != entity.RoleBasic {
		t.Fatalf("rejection must not change the role, got %s", repo.users[user.ID].Role)
	}
}

func TestUpgradeResolveTerminalConflict(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUpgradeRepo()
	svc := NewUpgradeService(repo)
	user := basicMember(repo)

	request, err := svc.Submit(ctx, user, "FULL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Resolve(ctx, request.ID, "reject"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Resolve(ctx, request.ID, "approve"); !errors.Is(err, ErrUpgradeResolved) {
		t.Fatalf("expected ErrUpgradeResolved, got %v", err)
	}
}

func TestUpgradeResolveBadInput(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUpgradeRepo()
	svc := NewUpgradeService(repo)

	if _, err := svc.Resolve(ctx, 1, "maybe"); !errors.Is(err, ErrBadDecision) {
		t.Fatalf("expected ErrBadDecision, got %v", err)
	}
	if _, err := svc.Resolve(ctx, 99, "approve"); !errors.Is(err, ErrUpgradeNotFound) {
		t.Fatalf("expected ErrUpgradeNotFound, got %v", err)
	}
}

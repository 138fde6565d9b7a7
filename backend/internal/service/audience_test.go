package service

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ecs-mentoring/backend/internal/model"
)

func setupAudience() (AudienceResolver, map[string]*model.User, map[string]*model.StudentProfile) {
	env := newTestEnv()
	users := make(map[string]*model.User)
	profiles := make(map[string]*model.StudentProfile)
	for _, s := range []struct{ name, dept string }{
		{"S1", "CS"}, {"S2", "CS"}, {"S3", "EE"}, {"S4", "ME"},
	} {
		u, p := env.addStudent(s.name, s.dept)
		users[s.name], profiles[s.name] = u, p
	}
	env.addTeacher("T1", "CS")
	env.addParent("P1")
	return NewAudienceResolver(env.repo, zap.NewNop()), users, profiles
}

func sortedIDs(users map[string]*model.User, names ...string) []string {
	ids := make([]string, 0, len(names))
	for _, n := range names {
		ids = append(ids, users[n].UserID)
	}
	sort.Strings(ids)
	return ids
}

func assertSameIDs(t *testing.T, got, want []string) {
	t.Helper()
	got = append([]string{}, got...)
	sort.Strings(got)
	if len(got) != len(want) {
		t.Fatalf("期望 %d 个接收者，实际 %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("期望接收者 %v，实际 %v", want, got)
		}
	}
}

func TestAudienceResolver_ExplicitListTakesPrecedence(t *testing.T) {
	r, users, profiles := setupAudience()

	got, err := r.Resolve(context.Background(), AudienceSpec{
		TargetType: model.TargetDepartment,
		Department: "CS",
		StudentIDs: []string{profiles["S3"].StudentProfileID, profiles["S4"].StudentProfileID},
	})
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	assertSameIDs(t, got, sortedIDs(users, "S3", "S4"))
}

func TestAudienceResolver_ExplicitListDropsInvalidAndMissing(t *testing.T) {
	r, users, profiles := setupAudience()

	got, err := r.Resolve(context.Background(), AudienceSpec{
		TargetType: model.TargetExplicit,
		StudentIDs: []string{
			"not-a-uuid",
			uuid.NewString(),
			profiles["S1"].StudentProfileID,
			profiles["S1"].StudentProfileID,
		},
	})
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	assertSameIDs(t, got, sortedIDs(users, "S1"))
}

func TestAudienceResolver_Department(t *testing.T) {
	r, users, _ := setupAudience()

	got, err := r.Resolve(context.Background(), AudienceSpec{
		TargetType: model.TargetDepartment,
		Department: "CS",
		StudentIDs: []string{},
	})
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	assertSameIDs(t, got, sortedIDs(users, "S1", "S2"))
}

func TestAudienceResolver_Broadcast(t *testing.T) {
	r, users, _ := setupAudience()
	ctx := context.Background()

	for _, typ := range []string{model.TargetAll, model.TargetStudents} {
		got, err := r.Resolve(ctx, AudienceSpec{TargetType: typ})
		if err != nil {
			t.Fatalf("Resolve(%s) 应成功: %v", typ, err)
		}
		assertSameIDs(t, got, sortedIDs(users, "S1", "S2", "S3", "S4"))
	}

	// 广播附带院系时按院系过滤
	got, err := r.Resolve(ctx, AudienceSpec{TargetType: model.TargetAll, Department: "EE"})
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	assertSameIDs(t, got, sortedIDs(users, "S3"))
}

func TestAudienceResolver_UnresolvableIsEmpty(t *testing.T) {
	r, _, _ := setupAudience()

	specs := []AudienceSpec{
		{TargetType: model.TargetDepartment},
		{TargetType: model.TargetParents},
		{TargetType: model.TargetExplicit},
		{TargetType: "unknown"},
		{},
	}
	for _, spec := range specs {
		got, err := r.Resolve(context.Background(), spec)
		if err != nil {
			t.Fatalf("Resolve(%+v) 不应报错: %v", spec, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Resolve(%+v) 期望空集合，实际 %v", spec, got)
		}
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ecs-mentoring/backend/internal/dto"
	"ecs-mentoring/backend/internal/model"
)

func setupNotification(batchSize int) (NotificationService, *testEnv) {
	env := newTestEnv()
	cfg := testConfig()
	cfg.Notify.BatchSize = batchSize
	return NewNotificationService(cfg, env.repo, zap.NewNop()), env
}

func userIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	return ids
}

// ── CreateBulkForUserIDs ──

func TestNotificationService_CreateBulk_Batches(t *testing.T) {
	svc, env := setupNotification(2)

	ids := userIDs(5)
	written := svc.CreateBulkForUserIDs(context.Background(), ids, NotificationInput{Title: "hi"})
	if written != 5 {
		t.Errorf("期望写入 5 条，实际 %d", written)
	}
	if env.notifications.calls != 3 {
		t.Errorf("期望分 3 批写入，实际 %d", env.notifications.calls)
	}
	for _, id := range ids {
		notes := env.notifications.forUser(id)
		if len(notes) != 1 || notes[0].Type != model.NotificationGeneral {
			t.Errorf("用户 %s 期望 1 条 general 通知，实际 %+v", id, notes)
		}
	}
}

func TestNotificationService_CreateBulk_FailedBatchSkipped(t *testing.T) {
	svc, env := setupNotification(2)
	env.notifications.failBatch = func(call int) bool { return call == 2 }

	ids := userIDs(5)
	written := svc.CreateBulkForUserIDs(context.Background(), ids, NotificationInput{
		Title: "hi",
		Type:  model.NotificationAnnouncement,
	})
	if written != 3 {
		t.Errorf("第二批失败时期望写入 3 条，实际 %d", written)
	}
	if env.notifications.total() != 3 {
		t.Errorf("期望存储 3 条，实际 %d", env.notifications.total())
	}
	// 失败批次为第 3、4 个用户
	if len(env.notifications.forUser(ids[2])) != 0 || len(env.notifications.forUser(ids[3])) != 0 {
		t.Error("失败批次的用户不应收到通知")
	}
	if len(env.notifications.forUser(ids[4])) != 1 {
		t.Error("失败批次之后的批次应继续写入")
	}
}

func TestNotificationService_CreateBulk_Empty(t *testing.T) {
	svc, env := setupNotification(2)

	if written := svc.CreateBulkForUserIDs(context.Background(), nil, NotificationInput{Title: "hi"}); written != 0 {
		t.Errorf("空接收者期望 0，实际 %d", written)
	}
	if env.notifications.calls != 0 {
		t.Error("空接收者不应访问存储")
	}
}

// ── MarkRead / MarkAllRead ──

func TestNotificationService_MarkRead(t *testing.T) {
	svc, env := setupNotification(200)
	ctx := context.Background()
	owner := uuid.NewString()
	svc.CreateBulkForUserIDs(ctx, []string{owner}, NotificationInput{Title: "hi"})
	id := env.notifications.forUser(owner)[0].NotificationID

	first, err := svc.MarkRead(ctx, owner, id)
	if err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}
	if !first.IsRead || first.ReadAt == nil {
		t.Fatalf("期望已读且 readAt 已设置，实际 %+v", first)
	}

	second, err := svc.MarkRead(ctx, owner, id)
	if err != nil {
		t.Fatalf("重复 MarkRead 应成功: %v", err)
	}
	if !second.ReadAt.Equal(*first.ReadAt) {
		t.Errorf("readAt 只应写入一次: %v vs %v", first.ReadAt, second.ReadAt)
	}

	if _, err := svc.MarkRead(ctx, uuid.NewString(), id); !errors.Is(err, ErrNotificationNotOwner) {
		t.Errorf("非本人期望 ErrNotificationNotOwner，实际: %v", err)
	}
	if _, err := svc.MarkRead(ctx, owner, uuid.NewString()); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("不存在期望 ErrNotificationNotFound，实际: %v", err)
	}
}

func TestNotificationService_MarkAllReadAndCount(t *testing.T) {
	svc, _ := setupNotification(200)
	ctx := context.Background()
	owner, other := uuid.NewString(), uuid.NewString()
	for i := 0; i < 3; i++ {
		svc.CreateBulkForUserIDs(ctx, []string{owner, other}, NotificationInput{Title: "hi"})
	}

	count, err := svc.UnreadCount(ctx, owner)
	if err != nil || count != 3 {
		t.Fatalf("期望 3 条未读，实际 %d (err=%v)", count, err)
	}

	updated, err := svc.MarkAllRead(ctx, owner)
	if err != nil || updated != 3 {
		t.Fatalf("期望标记 3 条，实际 %d (err=%v)", updated, err)
	}
	if count, _ := svc.UnreadCount(ctx, owner); count != 0 {
		t.Errorf("全部已读后未读数应为 0，实际 %d", count)
	}
	if count, _ := svc.UnreadCount(ctx, other); count != 3 {
		t.Errorf("不应影响其他用户，实际未读 %d", count)
	}

	list, total, err := svc.List(ctx, other, &dto.NotificationListRequest{UnreadOnly: true})
	if err != nil || total != 3 || len(list) != 3 {
		t.Errorf("期望 3 条未读通知，实际 total=%d len=%d err=%v", total, len(list), err)
	}
}

package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ecs-mentoring/backend/config"
	"ecs-mentoring/backend/internal/model"
	"ecs-mentoring/backend/internal/repository"
	pkgerrors "ecs-mentoring/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.UserID == "" {
		user.UserID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	c := *user
	m.users[user.UserID] = &c
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *user
	m.users[user.UserID] = &c
	return nil
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role model.Role) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.User
	for _, u := range m.users {
		if u.Role == role {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockUserRepo) List(ctx context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	if filters != nil && filters.Role != "" {
		all, _ = m.ListByRole(ctx, filters.Role)
	} else {
		for _, r := range model.AllRoles {
			list, _ := m.ListByRole(ctx, r)
			all = append(all, list...)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock StudentProfileRepository ──

type mockStudentProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.StudentProfile
}

func newMockStudentProfileRepo() *mockStudentProfileRepo {
	return &mockStudentProfileRepo{profiles: make(map[string]*model.StudentProfile)}
}

func cloneStudent(p *model.StudentProfile) *model.StudentProfile {
	c := *p
	return &c
}

func (m *mockStudentProfileRepo) Create(_ context.Context, p *model.StudentProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.StudentProfileID == "" {
		p.StudentProfileID = uuid.NewString()
	}
	m.profiles[p.StudentProfileID] = cloneStudent(p)
	return nil
}

func (m *mockStudentProfileRepo) GetByID(_ context.Context, id string) (*model.StudentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok {
		return cloneStudent(p), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentProfileRepo) GetByUserID(_ context.Context, userID string) (*model.StudentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.UserID == userID {
			return cloneStudent(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentProfileRepo) ListByIDs(_ context.Context, ids []string) ([]model.StudentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.StudentProfile
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			result = append(result, *cloneStudent(p))
		}
	}
	return result, nil
}

func (m *mockStudentProfileRepo) ListByDepartment(_ context.Context, department string) ([]model.StudentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.StudentProfile
	for _, p := range m.profiles {
		if department == "" || p.Department == department {
			result = append(result, *cloneStudent(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RollNo < result[j].RollNo })
	return result, nil
}

func (m *mockStudentProfileRepo) List(ctx context.Context, department string, offset, limit int) ([]model.StudentProfile, int64, error) {
	all, _ := m.ListByDepartment(ctx, department)
	total := int64(len(all))
	if offset >= len(all) {
		return []model.StudentProfile{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockStudentProfileRepo) Update(_ context.Context, p *model.StudentProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.StudentProfileID] = cloneStudent(p)
	return nil
}

// ── Mock TeacherProfileRepository ──

type mockTeacherProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.TeacherProfile
}

func newMockTeacherProfileRepo() *mockTeacherProfileRepo {
	return &mockTeacherProfileRepo{profiles: make(map[string]*model.TeacherProfile)}
}

func cloneTeacher(p *model.TeacherProfile) *model.TeacherProfile {
	c := *p
	c.AssignedStudents = append(model.StringArray{}, p.AssignedStudents...)
	return &c
}

func (m *mockTeacherProfileRepo) Create(_ context.Context, p *model.TeacherProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.TeacherProfileID == "" {
		p.TeacherProfileID = uuid.NewString()
	}
	m.profiles[p.TeacherProfileID] = cloneTeacher(p)
	return nil
}

func (m *mockTeacherProfileRepo) GetByID(_ context.Context, id string) (*model.TeacherProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok {
		return cloneTeacher(p), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherProfileRepo) GetByUserID(_ context.Context, userID string) (*model.TeacherProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.UserID == userID {
			return cloneTeacher(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherProfileRepo) ListByIDs(_ context.Context, ids []string) ([]model.TeacherProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.TeacherProfile
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			result = append(result, *cloneTeacher(p))
		}
	}
	return result, nil
}

func (m *mockTeacherProfileRepo) List(_ context.Context, offset, limit int) ([]model.TeacherProfile, int64, error) {
	m.mu.Lock()
	var all []model.TeacherProfile
	for _, p := range m.profiles {
		all = append(all, *cloneTeacher(p))
	}
	m.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].TeacherProfileID < all[j].TeacherProfileID })

	total := int64(len(all))
	if offset >= len(all) {
		return []model.TeacherProfile{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockTeacherProfileRepo) Update(_ context.Context, p *model.TeacherProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.TeacherProfileID] = cloneTeacher(p)
	return nil
}

// ── Mock ParentProfileRepository ──

type mockParentProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*model.ParentProfile
}

func newMockParentProfileRepo() *mockParentProfileRepo {
	return &mockParentProfileRepo{profiles: make(map[string]*model.ParentProfile)}
}

func cloneParent(p *model.ParentProfile) *model.ParentProfile {
	c := *p
	c.LinkedStudents = append(model.StringArray{}, p.LinkedStudents...)
	return &c
}

func (m *mockParentProfileRepo) Create(_ context.Context, p *model.ParentProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ParentProfileID == "" {
		p.ParentProfileID = uuid.NewString()
	}
	m.profiles[p.ParentProfileID] = cloneParent(p)
	return nil
}

func (m *mockParentProfileRepo) GetByID(_ context.Context, id string) (*model.ParentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.profiles[id]; ok {
		return cloneParent(p), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParentProfileRepo) GetByUserID(_ context.Context, userID string) (*model.ParentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.UserID == userID {
			return cloneParent(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParentProfileRepo) ListByIDs(_ context.Context, ids []string) ([]model.ParentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ParentProfile
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			result = append(result, *cloneParent(p))
		}
	}
	return result, nil
}

func (m *mockParentProfileRepo) ListLinkedToAny(_ context.Context, studentProfileIDs []string) ([]model.ParentProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ParentProfile
	for _, p := range m.profiles {
		if p.LinkedStudents.Intersects(model.StringArray(studentProfileIDs)) {
			result = append(result, *cloneParent(p))
		}
	}
	return result, nil
}

func (m *mockParentProfileRepo) Update(_ context.Context, p *model.ParentProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ParentProfileID] = cloneParent(p)
	return nil
}

// ── Mock ConversationRepository ──

type mockConversationRepo struct {
	mu     sync.Mutex
	convs  map[string]*model.Conversation
	byPair map[string]string

	// raceWinner 非空时，下一次 Create 先写入它并返回冲突，模拟并发请求抢先创建
	raceWinner *model.Conversation
}

func newMockConversationRepo() *mockConversationRepo {
	return &mockConversationRepo{
		convs:  make(map[string]*model.Conversation),
		byPair: make(map[string]string),
	}
}

func (m *mockConversationRepo) insertLocked(conv *model.Conversation) error {
	key := conv.ParticipantA + "|" + conv.ParticipantB
	if _, ok := m.byPair[key]; ok {
		return pkgerrors.ErrConflict
	}
	if conv.ConversationID == "" {
		conv.ConversationID = uuid.NewString()
	}
	c := *conv
	m.convs[conv.ConversationID] = &c
	m.byPair[key] = conv.ConversationID
	return nil
}

func (m *mockConversationRepo) Create(_ context.Context, conv *model.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raceWinner != nil {
		winner := m.raceWinner
		m.raceWinner = nil
		_ = m.insertLocked(winner)
	}
	return m.insertLocked(conv)
}

func (m *mockConversationRepo) GetByID(_ context.Context, id string) (*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.convs[id]; ok {
		cc := *c
		return &cc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConversationRepo) GetByPair(_ context.Context, a, b string) (*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byPair[a+"|"+b]; ok {
		cc := *m.convs[id]
		return &cc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConversationRepo) ListByUser(_ context.Context, userID string) ([]model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Conversation
	for _, c := range m.convs {
		if c.HasParticipant(userID) {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].LastMessageAt, result[j].LastMessageAt
		if ti == nil || tj == nil {
			return ti != nil
		}
		return ti.After(*tj)
	})
	return result, nil
}

func (m *mockConversationRepo) TouchLastMessage(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.convs[id]; ok {
		t := at
		c.LastMessageAt = &t
	}
	return nil
}

func (m *mockConversationRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.convs)
}

// ── Mock MessageRepository ──

type mockMessageRepo struct {
	mu   sync.Mutex
	msgs map[string]*model.Message
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{msgs: make(map[string]*model.Message)}
}

func cloneMessage(msg *model.Message) *model.Message {
	c := *msg
	c.ReadBy = append(model.StringArray{}, msg.ReadBy...)
	return &c
}

func (m *mockMessageRepo) Create(_ context.Context, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.msgs[msg.MessageID] = cloneMessage(msg)
	return nil
}

func (m *mockMessageRepo) GetByID(_ context.Context, id string) (*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.msgs[id]; ok {
		return cloneMessage(msg), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockMessageRepo) ListByConversation(_ context.Context, conversationID string, before *time.Time, limit int) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Message
	for _, msg := range m.msgs {
		if msg.ConversationID != conversationID {
			continue
		}
		if before != nil && !msg.CreatedAt.Before(*before) {
			continue
		}
		result = append(result, *cloneMessage(msg))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockMessageRepo) LatestByConversation(ctx context.Context, conversationID string) (*model.Message, error) {
	list, _ := m.ListByConversation(ctx, conversationID, nil, 1)
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &list[0], nil
}

func (m *mockMessageRepo) AddReader(_ context.Context, messageID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.msgs[messageID]; ok {
		msg.ReadBy.Add(userID)
	}
	return nil
}

// ── Mock AnnouncementRepository ──

type mockAnnouncementRepo struct {
	mu    sync.Mutex
	items map[string]*model.Announcement
	users *mockUserRepo
}

func newMockAnnouncementRepo(users *mockUserRepo) *mockAnnouncementRepo {
	return &mockAnnouncementRepo{items: make(map[string]*model.Announcement), users: users}
}

func (m *mockAnnouncementRepo) Create(_ context.Context, a *model.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.AnnouncementID == "" {
		a.AnnouncementID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	c := *a
	m.items[a.AnnouncementID] = &c
	return nil
}

func (m *mockAnnouncementRepo) GetByID(ctx context.Context, id string) (*model.Announcement, error) {
	m.mu.Lock()
	a, ok := m.items[id]
	m.mu.Unlock()
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *a
	if u, err := m.users.GetByID(ctx, c.AuthorID); err == nil {
		c.Author = u
	}
	return &c, nil
}

func (m *mockAnnouncementRepo) visible(a *model.Announcement, v *repository.AnnouncementVisibility) bool {
	for _, t := range v.TargetTypes {
		if a.TargetType == t {
			return true
		}
	}
	if v.StudentProfileID != "" && a.TargetStudentIDs.Contains(v.StudentProfileID) {
		return true
	}
	if v.Department != "" && a.TargetType == model.TargetDepartment &&
		a.TargetDepartment != nil && *a.TargetDepartment == v.Department {
		return true
	}
	return false
}

func (m *mockAnnouncementRepo) List(_ context.Context, filter *repository.AnnouncementFilter) ([]model.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Announcement
	for _, a := range m.items {
		if filter.PinnedOnly && !a.IsPinned {
			continue
		}
		if filter.TargetType != "" && a.TargetType != filter.TargetType {
			continue
		}
		if filter.Visibility != nil && !m.visible(a, filter.Visibility) {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].IsPinned != result[j].IsPinned {
			return result[i].IsPinned
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// ── Mock SessionRepository ──

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*model.Session)}
}

func cloneSession(s *model.Session) *model.Session {
	c := *s
	c.Students = append(model.StringArray{}, s.Students...)
	return &c
}

func (m *mockSessionRepo) Create(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.SessionID == "" {
		s.SessionID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	m.sessions[s.SessionID] = cloneSession(s)
	return nil
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return cloneSession(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) Update(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = cloneSession(s)
	return nil
}

func (m *mockSessionRepo) Delete(_ context.Context, id, teacherID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok && s.TeacherID == teacherID {
		delete(m.sessions, id)
		return 1, nil
	}
	return 0, nil
}

func (m *mockSessionRepo) List(_ context.Context, filter *repository.SessionFilter) ([]model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Session
	for _, s := range m.sessions {
		if filter.TeacherID != "" && s.TeacherID != filter.TeacherID {
			continue
		}
		if len(filter.AnyOfStudents) > 0 && !s.Students.Intersects(model.StringArray(filter.AnyOfStudents)) {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.UpcomingFrom != nil &&
			(s.ScheduledAt.Before(*filter.UpcomingFrom) || s.Status != model.SessionStatusScheduled) {
			continue
		}
		result = append(result, *cloneSession(s))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduledAt.Before(result[j].ScheduledAt) })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	mu    sync.Mutex
	items []*model.Notification
	calls int

	// failBatch 返回 true 时该批次写入失败（按调用序号，从 1 开始）
	failBatch func(call int) bool
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{}
}

func (m *mockNotificationRepo) BatchCreate(_ context.Context, list []model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failBatch != nil && m.failBatch(m.calls) {
		return gorm.ErrInvalidDB
	}
	for i := range list {
		n := list[i]
		if n.NotificationID == "" {
			n.NotificationID = uuid.NewString()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		m.items = append(m.items, &n)
	}
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.NotificationID == id {
			c := *n
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, offset, limit int) ([]model.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Notification
	for i := len(m.items) - 1; i >= 0; i-- {
		n := m.items[i]
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		all = append(all, *n)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Notification{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.items {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.items {
		if n.NotificationID == id && !n.IsRead {
			t := at
			n.IsRead = true
			n.ReadAt = &t
		}
	}
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.items {
		if n.UserID == userID && !n.IsRead {
			t := at
			n.IsRead = true
			n.ReadAt = &t
			count++
		}
	}
	return count, nil
}

// forUser 测试断言用：某用户收到的通知
func (m *mockNotificationRepo) forUser(userID string) []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Notification
	for _, n := range m.items {
		if n.UserID == userID {
			result = append(result, *n)
		}
	}
	return result
}

func (m *mockNotificationRepo) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// ═══════════════════════════════════════════════════════════
// 测试环境
// ═══════════════════════════════════════════════════════════

type testEnv struct {
	repo          *repository.Repository
	users         *mockUserRepo
	students      *mockStudentProfileRepo
	teachers      *mockTeacherProfileRepo
	parents       *mockParentProfileRepo
	conversations *mockConversationRepo
	messages      *mockMessageRepo
	announcements *mockAnnouncementRepo
	sessions      *mockSessionRepo
	notifications *mockNotificationRepo
}

func newTestEnv() *testEnv {
	users := newMockUserRepo()
	env := &testEnv{
		users:         users,
		students:      newMockStudentProfileRepo(),
		teachers:      newMockTeacherProfileRepo(),
		parents:       newMockParentProfileRepo(),
		conversations: newMockConversationRepo(),
		messages:      newMockMessageRepo(),
		announcements: newMockAnnouncementRepo(users),
		sessions:      newMockSessionRepo(),
		notifications: newMockNotificationRepo(),
	}
	env.repo = &repository.Repository{
		User:           env.users,
		StudentProfile: env.students,
		TeacherProfile: env.teachers,
		ParentProfile:  env.parents,
		Conversation:   env.conversations,
		Message:        env.messages,
		Announcement:   env.announcements,
		Session:        env.sessions,
		Notification:   env.notifications,
	}
	return env
}

func (e *testEnv) addUser(role model.Role, name string) *model.User {
	u := &model.User{
		Name:     name,
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@ecs.test",
		Role:     role,
		IsActive: true,
	}
	_ = e.users.Create(context.Background(), u)
	return u
}

func (e *testEnv) addStudent(name, department string) (*model.User, *model.StudentProfile) {
	u := e.addUser(model.RoleStudent, name)
	p := &model.StudentProfile{UserID: u.UserID, Department: department, RollNo: name}
	_ = e.students.Create(context.Background(), p)
	return u, p
}

func (e *testEnv) addTeacher(name, department string) (*model.User, *model.TeacherProfile) {
	u := e.addUser(model.RoleTeacher, name)
	p := &model.TeacherProfile{UserID: u.UserID, Department: department, AssignedStudents: model.StringArray{}}
	_ = e.teachers.Create(context.Background(), p)
	return u, p
}

func (e *testEnv) addParent(name string) (*model.User, *model.ParentProfile) {
	u := e.addUser(model.RoleParent, name)
	p := &model.ParentProfile{UserID: u.UserID, LinkedStudents: model.StringArray{}}
	_ = e.parents.Create(context.Background(), p)
	return u, p
}

// assign 同时写入 mentor 与 assignedStudents 两端
func (e *testEnv) assign(tp *model.TeacherProfile, sp *model.StudentProfile) {
	ctx := context.Background()
	tp.AssignedStudents.Add(sp.StudentProfileID)
	_ = e.teachers.Update(ctx, tp)
	sp.MentorID = &tp.TeacherProfileID
	_ = e.students.Update(ctx, sp)
}

// link 同时写入 linkedStudents 与 parent 两端
func (e *testEnv) link(pp *model.ParentProfile, sp *model.StudentProfile) {
	ctx := context.Background()
	pp.LinkedStudents.Add(sp.StudentProfileID)
	_ = e.parents.Update(ctx, pp)
	sp.ParentID = &pp.ParentProfileID
	_ = e.students.Update(ctx, sp)
}

func testConfig() *config.Config {
	return &config.Config{
		Chat:   config.ChatConfig{DefaultPageSize: 50, MaxPageSize: 100, PreviewLength: 60},
		Notify: config.NotifyConfig{BatchSize: 200, PreviewLength: 120},
	}
}

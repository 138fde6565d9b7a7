package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"ecs-mentoring/backend/internal/model"
	"ecs-mentoring/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入。
type ExportService interface {
	// ExportRoster 导出师生名册：学生、学号、院系、导师、家长
	ExportRoster(ctx context.Context, department string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRoster 导出师生名册为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "Roster"
//   - 列：Student | Email | Roll No | Department | Mentor | Parent
//   - 导师或家长缺失/悬空时填 "-"

func (s *exportService) ExportRoster(ctx context.Context, department string) (*bytes.Buffer, string, error) {
	// 1. 学生档案
	students, err := s.repo.StudentProfile.ListByDepartment(ctx, department)
	if err != nil {
		s.logger.Error("查询学生档案失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 导师、家长档案
	var mentorIDs, parentIDs []string
	for _, sp := range students {
		if sp.HasMentor() {
			mentorIDs = append(mentorIDs, *sp.MentorID)
		}
		if sp.ParentID != nil && *sp.ParentID != "" {
			parentIDs = append(parentIDs, *sp.ParentID)
		}
	}
	teachers, err := s.repo.TeacherProfile.ListByIDs(ctx, dedupeIDs(mentorIDs))
	if err != nil {
		s.logger.Error("查询导师档案失败", zap.Error(err))
		return nil, "", err
	}
	parents, err := s.repo.ParentProfile.ListByIDs(ctx, dedupeIDs(parentIDs))
	if err != nil {
		s.logger.Error("查询家长档案失败", zap.Error(err))
		return nil, "", err
	}

	// 3. 所有涉及的用户
	userIDs := make([]string, 0, len(students)+len(teachers)+len(parents))
	teacherUser := make(map[string]string, len(teachers)) // 教师档案 ID → 用户 ID
	parentUser := make(map[string]string, len(parents))
	for _, sp := range students {
		userIDs = append(userIDs, sp.UserID)
	}
	for _, tp := range teachers {
		teacherUser[tp.TeacherProfileID] = tp.UserID
		userIDs = append(userIDs, tp.UserID)
	}
	for _, pp := range parents {
		parentUser[pp.ParentProfileID] = pp.UserID
		userIDs = append(userIDs, pp.UserID)
	}
	users, err := s.repo.User.ListByIDs(ctx, dedupeIDs(userIDs))
	if err != nil {
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, "", err
	}
	names := make(map[string]*model.User, len(users))
	for i := range users {
		names[users[i].UserID] = &users[i]
	}

	nameOf := func(userID string) string {
		if u, ok := names[userID]; ok {
			return u.Name
		}
		return "-"
	}

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Roster"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "B", 26)
	f.SetColWidth(sheetName, "C", "D", 14)
	f.SetColWidth(sheetName, "E", "F", 24)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"Student", "Email", "Roll No", "Department", "Mentor", "Parent"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	row := 2
	for _, sp := range students {
		student := names[sp.UserID]
		if student == nil {
			// 档案归属用户缺失，跳过
			continue
		}

		mentor := "-"
		if sp.HasMentor() {
			if uid, ok := teacherUser[*sp.MentorID]; ok {
				mentor = nameOf(uid)
			}
		}
		parent := "-"
		if sp.ParentID != nil {
			if uid, ok := parentUser[*sp.ParentID]; ok {
				parent = nameOf(uid)
			}
		}

		f.SetCellValue(sheetName, cell("A", row), student.Name)
		f.SetCellValue(sheetName, cell("B", row), student.Email)
		f.SetCellValue(sheetName, cell("C", row), sp.RollNo)
		f.SetCellValue(sheetName, cell("D", row), sp.Department)
		f.SetCellValue(sheetName, cell("E", row), mentor)
		f.SetCellValue(sheetName, cell("F", row), parent)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	scope := "all"
	if department != "" {
		scope = department
	}
	filename := fmt.Sprintf("roster_%s_%s.xlsx", scope, time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

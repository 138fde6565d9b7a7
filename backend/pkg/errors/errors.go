package errors

import "errors"

// ── 错误分类 ──
// Service 层的业务错误通过 fmt.Errorf("%w: ...") 包装以下分类，
// Handler 层据此映射到 403 / 404 / 400。

var (
	// ErrForbidden 关系规则校验未通过
	ErrForbidden = errors.New("无权操作")
	// ErrNotFound 档案、会话或消息不存在
	ErrNotFound = errors.New("资源不存在")
	// ErrInvalidInput 非法 ID、与自己私聊、内容为空等
	ErrInvalidInput = errors.New("参数不合法")
	// ErrConflict 唯一约束冲突（仅在存储层与服务层之间传递，不直接暴露给调用方）
	ErrConflict = errors.New("数据已存在")
)

package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 预处理错误：DATA_QUALITY（输入数据损坏/为空，批次不可恢复）
//   - 训练错误：CONVERGENCE（数值爆炸，批次不可恢复）
//   - 在线查询错误：UNKNOWN_USER / UNKNOWN_ARTIST / UNKNOWN_MOOD（可恢复，调用方走兜底）
//   - 存储/模型错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "UNKNOWN_USER", "DATA_QUALITY"）
	Message string // 错误消息
	Module  string // 模块名称（如 "dataset", "als", "recommender"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*DomainError)
	return ok
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	// 离线批次错误代码（不可恢复，整个批次需要重跑）
	ErrorCodeDataQuality = "DATA_QUALITY" // 原始交互数据不可用（缺列/全无效/过滤后为空）
	ErrorCodeConvergence = "CONVERGENCE"  // 训练期间出现 NaN/Inf，需调整超参后重训

	// 在线查询错误代码（可恢复，调用方应做冷启动兜底或返回"未找到"）
	ErrorCodeUnknownUser   = "UNKNOWN_USER"   // 用户不在训练映射中
	ErrorCodeUnknownArtist = "UNKNOWN_ARTIST" // 艺人不在训练映射中
	ErrorCodeUnknownMood   = "UNKNOWN_MOOD"   // mood 不在封闭词表中

	// 通用错误代码
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在（如模型尚未加载）
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleDataset     = "dataset"     // 交互数据预处理模块
	ModuleALS         = "als"         // 因子训练模块
	ModuleModel       = "model"       // 模型装载/持久化模块
	ModuleMood        = "mood"        // mood 策展模块
	ModuleRecommender = "recommender" // 推荐服务门面
	ModuleStore       = "store"       // 存储模块
)

// 错误检查函数

// IsDataQuality 检查错误是否为 DATA_QUALITY
func IsDataQuality(err error) bool {
	return hasCode(err, ErrorCodeDataQuality)
}

// IsConvergence 检查错误是否为 CONVERGENCE
func IsConvergence(err error) bool {
	return hasCode(err, ErrorCodeConvergence)
}

// IsUnknownUser 检查错误是否为 UNKNOWN_USER
func IsUnknownUser(err error) bool {
	return hasCode(err, ErrorCodeUnknownUser)
}

// IsUnknownArtist 检查错误是否为 UNKNOWN_ARTIST
func IsUnknownArtist(err error) bool {
	return hasCode(err, ErrorCodeUnknownArtist)
}

// IsUnknownMood 检查错误是否为 UNKNOWN_MOOD
func IsUnknownMood(err error) bool {
	return hasCode(err, ErrorCodeUnknownMood)
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

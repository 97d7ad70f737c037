// Package conv 提供类型转换、map/slice 转换等泛型工具，用于简化配置解析中的重复逻辑。
package conv

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32；bool 视为 1.0/0.0。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case bool:
		if val {
			return 1.0, true
		}
		return 0.0, true
	default:
		return 0, false
	}
}

// ToInt 将 any 转为 int。
// 支持 int、int64、int32、float64、float32。
func ToInt(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case int32:
		return int(val), true
	case float64:
		return int(val), true
	case float32:
		return int(val), true
	default:
		return 0, false
	}
}

// ToString 将 any 转为 string。
// 仅支持 string 类型，否则返回 ("", false)。
func ToString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ConfigGet 从配置 map 读取指定类型的值，读取失败返回 fallback。
func ConfigGet[T any](config map[string]any, key string, fallback T) T {
	if config == nil {
		return fallback
	}
	v, ok := config[key]
	if !ok {
		return fallback
	}
	if t, ok := v.(T); ok {
		return t
	}
	return fallback
}

// ConfigGetInt 从配置 map 读取整数（兼容 yaml 解析出的 int/int64/float64）。
func ConfigGetInt(config map[string]any, key string, fallback int) int {
	if config == nil {
		return fallback
	}
	v, ok := config[key]
	if !ok {
		return fallback
	}
	if n, ok := ToInt(v); ok {
		return n
	}
	return fallback
}

// ConfigGetFloat 从配置 map 读取浮点数（兼容 yaml 解析出的 int/float64）。
func ConfigGetFloat(config map[string]any, key string, fallback float64) float64 {
	if config == nil {
		return fallback
	}
	v, ok := config[key]
	if !ok {
		return fallback
	}
	if f, ok := ToFloat64(v); ok {
		return f
	}
	return fallback
}

// SliceAnyToString 将 []any 转为 []string，非字符串元素被跳过。
func SliceAnyToString(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

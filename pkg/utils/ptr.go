package utils

// Deref nil 时返回零值
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Patch 部分更新：p 为 nil 表示客户端没传，保留原值
func Patch[T any](dst *T, p *T) {
	if p != nil {
		*dst = *p
	}
}

package domain

import "errors"

var (
	// ErrNotFound 用户或物品 id 解析失败，直接回给调用方
	ErrNotFound = errors.New("not found")
	// ErrConflict 同一 (user,item) 键上的并发切换，内部重读重试，不外露
	ErrConflict = errors.New("conflict")
	// ErrUpstream 身份解析或目录读取失败
	ErrUpstream = errors.New("upstream unavailable")
)

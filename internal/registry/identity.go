package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// DefaultName 空昵称或纯空白昵称的兜底值
const DefaultName = "User"

// Identities 进程级昵称注册表，任一时刻同一昵称最多被一个会话持有
type Identities struct {
	mu    sync.Mutex
	names map[string]struct{}
}

func NewIdentities() *Identities {
	return &Identities{names: make(map[string]struct{})}
}

// Reserve 解析并占用一个唯一昵称。
// 请求的昵称已被占用时追加递增数字后缀（name1、name2……）直到找到空闲项。
// 检查与写入在同一临界区内完成，并发 Reserve 不会拿到相同结果。
func (r *Identities) Reserve(requested string) string {
	name := strings.TrimSpace(requested)
	if name == "" {
		name = DefaultName
	}
	base := name

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 1; ; i++ {
		if _, taken := r.names[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s%d", base, i)
	}
	r.names[name] = struct{}{}
	return name
}

// Release 释放昵称，重复释放是 no-op
func (r *Identities) Release(name string) {
	r.mu.Lock()
	delete(r.names, name)
	r.mu.Unlock()
}

// Held 判断昵称当前是否被占用
func (r *Identities) Held(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.names[name]
	return ok
}

// Count 当前在线昵称数
func (r *Identities) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

// Snapshot 返回当前全部昵称的有序副本，供健康检查接口使用
func (r *Identities) Snapshot() []string {
	r.mu.Lock()
	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	r.mu.Unlock()
	sort.Strings(out)
	return out
}

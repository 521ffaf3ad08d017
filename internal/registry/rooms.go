package registry

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Handle 广播引擎向单个连接投递一行消息的能力。
// 实现必须可并发调用，且投递失败返回非 nil error。
type Handle interface {
	Deliver(line string) error
}

// Member 某个房间成员的一致性快照项
type Member struct {
	Identity string
	Handle   Handle
}

// DefaultCatalog 内置房间目录，进程启动后固定不变
var DefaultCatalog = []string{"General", "Python", "Linux & Open Source", "Off-Topic", "Help"}

// Rooms 房间目录：房间名 -> (昵称 -> 投递句柄)。
// 同一昵称任一时刻最多出现在一个房间（join 前会先移出旧房间）。
type Rooms struct {
	mu      sync.RWMutex
	catalog []string
	members map[string]map[string]Handle
	byIdent map[string]string // 昵称 -> 所在房间
}

// NewRooms 以固定目录创建房间目录；catalog 为空时使用 DefaultCatalog
func NewRooms(catalog []string) *Rooms {
	if len(catalog) == 0 {
		catalog = DefaultCatalog
	}
	members := make(map[string]map[string]Handle, len(catalog))
	for _, room := range catalog {
		members[room] = make(map[string]Handle)
	}
	return &Rooms{
		catalog: append([]string(nil), catalog...),
		members: members,
		byIdent: make(map[string]string),
	}
}

// Catalog 返回目录副本，顺序即选择提示中的编号顺序
func (r *Rooms) Catalog() []string {
	return append([]string(nil), r.catalog...)
}

// DefaultRoom 目录首项，所有非法选择的兜底房间
func (r *Rooms) DefaultRoom() string { return r.catalog[0] }

// Prompt 构造带编号的房间选择提示
func (r *Rooms) Prompt() string {
	var b strings.Builder
	b.WriteString("Available rooms:\n")
	for i, room := range r.catalog {
		fmt.Fprintf(&b, "%d. %s\n", i+1, room)
	}
	b.WriteString("Enter the number of the room you want to join:")
	return b.String()
}

// ResolveSelection 把客户端输入解析为房间名。
// 输入是 1 基的目录下标；解析失败或越界时返回默认房间且 ok=false。
// 对任意输入都有定义，永不报错。
func (r *Rooms) ResolveSelection(raw string) (room string, ok bool) {
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || idx < 1 || idx > len(r.catalog) {
		return r.DefaultRoom(), false
	}
	return r.catalog[idx-1], true
}

// Join 把昵称及其投递句柄登记进房间。
// 昵称已在别的房间时先移出，保证单房间不变式。
// 未知房间名返回错误（目录固定，正常路径不会出现）。
func (r *Rooms) Join(room, identity string, h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[room]
	if !ok {
		return fmt.Errorf("unknown room %q", room)
	}
	if prev, ok := r.byIdent[identity]; ok {
		delete(r.members[prev], identity)
	}
	m[identity] = h
	r.byIdent[identity] = room
	return nil
}

// Leave 把昵称移出其所在房间，返回移出前的房间名。
// 幂等：昵称不在任何房间时返回 ("", false)。
func (r *Rooms) Leave(identity string) (room string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok = r.byIdent[identity]
	if !ok {
		return "", false
	}
	delete(r.byIdent, identity)
	delete(r.members[room], identity)
	return room, true
}

// RoomOf 查询昵称当前所在房间
func (r *Rooms) RoomOf(identity string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.byIdent[identity]
	return room, ok
}

// Members 返回房间成员的一致性时点快照，供一次广播扇出使用
func (r *Rooms) Members(room string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.MapToSlice(r.members[room], func(identity string, h Handle) Member {
		return Member{Identity: identity, Handle: h}
	})
}

// MemberNames 房间内昵称列表（有序无要求），/who 用
func (r *Rooms) MemberNames(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.members[room])
}

// 按键值排序的双向链表，用于维护车道内按位置排列的车辆
package container

import (
	"fmt"
	"log"
	"sort"
)

// ListNode 双向链表中的节点
// 功能：表示双向链表中的一个节点，S为排序键（通常是车辆在街道上的位置）
type ListNode[T any] struct {
	parent     *List[T]     // 所属链表
	prev, next *ListNode[T] // 前驱和后继节点
	S          float64      // 键值
	Value      T            // 主要值
}

// String 获取节点的字符串表示
func (n *ListNode[T]) String() string {
	return fmt.Sprintf("Node{S:%v, Value:%+v}", n.S, n.Value)
}

// Prev 获取节点的前一个节点（键值更小的一侧），没有则返回nil
func (n *ListNode[T]) Prev() *ListNode[T] {
	return n.prev
}

// Next 获取节点的下一个节点（键值更大的一侧），没有则返回nil
func (n *ListNode[T]) Next() *ListNode[T] {
	return n.next
}

// Parent 获取节点所在的链表，不在链表中则返回nil
func (n *ListNode[T]) Parent() *List[T] {
	return n.parent
}

// InsertBefore 在节点前插入新节点
// 说明：不检查排序关系，由调用者保证键值次序
func (n *ListNode[T]) InsertBefore(add *ListNode[T]) {
	if add.parent != nil {
		log.Panic("container: insert node who already in list")
	}
	add.parent = n.parent
	add.next = n
	add.prev = n.prev
	n.prev = add
	if add.prev != nil {
		add.prev.next = add
	} else {
		add.parent.head = add
	}
	n.parent.length++
}

// InsertAfter 在节点后插入新节点
func (n *ListNode[T]) InsertAfter(add *ListNode[T]) {
	if add.parent != nil {
		log.Panic("container: insert node who already in list")
	}
	add.parent = n.parent
	add.prev = n
	add.next = n.next
	n.next = add
	if add.next != nil {
		add.next.prev = add
	} else {
		add.parent.tail = add
	}
	n.parent.length++
}

// List 按S升序排列的双向链表
// 功能：head一侧S最小（车道最后方），tail一侧S最大（车道最前方）
type List[T any] struct {
	ID         string       // 链表标识符（用于报错信息）
	head, tail *ListNode[T] // 头尾节点指针
	length     int          // 链表长度
}

// String 获取链表的字符串表示
func (l *List[T]) String() string {
	return fmt.Sprintf("List{ID:%v, Len:%v}", l.ID, l.length)
}

// Len 获取双向链表长度
func (l *List[T]) Len() int {
	return l.length
}

// First 获取链表第一个节点（S最小），空链表返回nil
func (l *List[T]) First() *ListNode[T] {
	return l.head
}

// Last 获取链表最后一个节点（S最大），空链表返回nil
func (l *List[T]) Last() *ListNode[T] {
	return l.tail
}

// Keys 获取双向链表中所有节点的键值
func (l *List[T]) Keys() []float64 {
	keys := make([]float64, l.length)
	for i, node := 0, l.head; node != nil; i, node = i+1, node.next {
		keys[i] = node.S
	}
	return keys
}

// Values 获取双向链表中所有节点的值
func (l *List[T]) Values() []T {
	values := make([]T, l.length)
	for i, node := 0, l.head; node != nil; i, node = i+1, node.next {
		values[i] = node.Value
	}
	return values
}

// PushFront 向链表头部插入节点
func (l *List[T]) PushFront(add *ListNode[T]) {
	if add.parent != nil {
		log.Panic("container: insert node who already in list")
	}
	add.next = nil
	add.prev = nil
	if l.head == nil {
		add.parent = l
		l.head = add
		l.tail = add
		l.length++
	} else {
		l.head.InsertBefore(add)
	}
}

// PushBack 向链表尾部插入节点
func (l *List[T]) PushBack(add *ListNode[T]) {
	if add.parent != nil {
		log.Panic("container: insert node who already in list")
	}
	add.next = nil
	add.prev = nil
	if l.tail == nil {
		add.parent = l
		l.head = add
		l.tail = add
		l.length++
	} else {
		l.tail.InsertAfter(add)
	}
}

// Add 按S键值将节点插入到正确位置
// 算法说明：从尾部向前查找第一个键值不大于add.S的节点并插入其后，
// 键值相同时后插入者更靠tail一侧
func (l *List[T]) Add(add *ListNode[T]) {
	if add.parent != nil {
		log.Panic("container: insert node who already in list")
	}
	node := l.tail
	for node != nil && node.S > add.S {
		node = node.prev
	}
	if node == nil {
		l.PushFront(add)
	} else {
		node.InsertAfter(add)
	}
}

// Remove 将节点从链表中移除
func (l *List[T]) Remove(node *ListNode[T]) {
	if node.parent != l {
		log.Panicf("container: remove node not in list %v", l.ID)
	}
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.parent = nil
	node.prev = nil
	node.next = nil
	l.length--
}

// Resort 节点键值被外部修改后恢复S升序
// 算法说明：收集所有节点稳定排序后重建链表指针
// 说明：一个tick内所有车辆同时移动，逐节点调整没有优势，整体重排即可
func (l *List[T]) Resort() {
	if l.length < 2 {
		return
	}
	nodes := make([]*ListNode[T], 0, l.length)
	for node := l.head; node != nil; node = node.next {
		nodes = append(nodes, node)
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].S < nodes[j].S })
	for i, node := range nodes {
		if i > 0 {
			node.prev = nodes[i-1]
		} else {
			node.prev = nil
		}
		if i < len(nodes)-1 {
			node.next = nodes[i+1]
		} else {
			node.next = nil
		}
	}
	l.head = nodes[0]
	l.tail = nodes[len(nodes)-1]
}

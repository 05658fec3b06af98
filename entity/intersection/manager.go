package intersection

import (
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/input"
)

// IntersectionManager Intersection管理器
// 功能：根据街道端点引用推导出所有路口，提供查找与信控更新调度
type IntersectionManager struct {
	ctx entity.ITaskContext

	data          map[int32]*Intersection // 路口id->路口指针映射表
	intersections []*Intersection         // 稳定顺序的路口列表
}

// NewManager 创建Intersection管理器实例
func NewManager(ctx entity.ITaskContext) *IntersectionManager {
	return &IntersectionManager{
		ctx:  ctx,
		data: make(map[int32]*Intersection),
	}
}

// Init 初始化所有Intersection
// 功能：遍历街道的端点路口引用，为每个出现过的路口ID建立实体，
// 并登记其入口/出口街道
// 说明：街道按稳定顺序遍历，信控轮转次序因此可复现
func (m *IntersectionManager) Init(streetManager entity.IStreetManager) {
	for _, s := range streetManager.Data() {
		if id := s.EndIntersection(); id != input.NoIntersection {
			i := m.getOrCreate(id)
			i.inStreets = append(i.inStreets, s)
		}
		if id := s.StartIntersection(); id != input.NoIntersection {
			i := m.getOrCreate(id)
			i.outStreets = append(i.outStreets, s)
		}
	}
	log.Debugf("intersection: %d intersections derived", len(m.intersections))
}

func (m *IntersectionManager) getOrCreate(id int32) *Intersection {
	if i, ok := m.data[id]; ok {
		return i
	}
	i := newIntersection(m.ctx, id)
	m.data[id] = i
	m.intersections = append(m.intersections, i)
	return i
}

// Get 根据ID查找路口，不存在则返回nil
// 说明：街道终点引用的路口ID不存在时按路网边界处理，不是错误
func (m *IntersectionManager) Get(id int32) entity.IIntersection {
	i, ok := m.data[id]
	if !ok {
		return nil
	}
	return i
}

// Update 更新阶段
// 功能：并行推进所有路口的信控相位
func (m *IntersectionManager) Update(dt float64) {
	parallel.GoFor(m.intersections, func(i *Intersection) { i.update(dt) })
}

package street

import (
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/input"
)

// StreetManager Street管理器
// 功能：持有所有街道实体，提供查找与准备阶段的统一调度
type StreetManager struct {
	ctx entity.ITaskContext

	data    map[int32]*Street // 街道id->街道指针映射表
	streets []*Street         // 稳定顺序的街道列表
}

// NewManager 创建Street管理器实例
func NewManager(ctx entity.ITaskContext) *StreetManager {
	return &StreetManager{
		ctx:  ctx,
		data: make(map[int32]*Street),
	}
}

// Init 初始化所有Street
// 功能：根据输入数据构建所有街道实体并建立ID映射关系
func (m *StreetManager) Init(data []input.StreetData) {
	m.streets = lo.Map(data, func(base input.StreetData, _ int) *Street {
		return newStreet(m.ctx, base)
	})
	m.data = lo.SliceToMap(m.streets, func(s *Street) (int32, *Street) {
		return s.id, s
	})
}

// Get 根据ID查找街道，不存在则panic
// 说明：路由中引用不存在的街道属于配置错误，不可恢复
func (m *StreetManager) Get(id int32) entity.IStreet {
	s, ok := m.data[id]
	if !ok {
		log.Panicf("street: no street %d", id)
	}
	return s
}

// Data 获取所有街道（稳定顺序）
func (m *StreetManager) Data() []entity.IStreet {
	return lo.Map(m.streets, func(s *Street, _ int) entity.IStreet { return s })
}

// Prepare 准备阶段
// 功能：并行恢复所有街道车道链表的位置有序性
func (m *StreetManager) Prepare() {
	parallel.GoFor(m.streets, func(s *Street) { s.prepare() })
}

package entity

import (
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/input"
)

// Manager依赖倒置

// entity/street/manager.go的依赖倒置
type IStreetManager interface {
	Init(data []input.StreetData) // 初始化

	// 输入Street ID，查找Street，如果不存在则panic
	// （路由或端点引用不存在的街道属于配置错误）
	Get(id int32) IStreet

	Data() []IStreet // 获取所有街道（稳定顺序）

	Prepare() // 准备阶段：按位置重排各车道车辆链表
}

// entity/intersection/manager.go的依赖倒置
type IIntersectionManager interface {
	Init(streetManager IStreetManager) // 根据街道端点引用推导路口

	// 输入Intersection ID，查找Intersection，如果不存在则返回nil
	// （街道终点没有路口即路网边界）
	Get(id int32) IIntersection

	Update(dt float64) // 更新阶段：推进信控相位
}

// entity/vehicle/manager.go的依赖倒置
type IVehicleManager interface {
	// 输入Vehicle ID，查找Vehicle，如果不存在则panic
	Get(id int32) IVehicle

	Data() []IVehicle // 获取所有车辆（稳定顺序）

	PrepareNode()      // 节点维护阶段：根据上一tick结果维护车道链表
	Update(dt float64) // 更新阶段：逐车辆决策与状态推进

	DoneCount() int // 已结束车辆数
	Len() int       // 车辆总数
}

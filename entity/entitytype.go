package entity

import (
	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/container"
)

// VehicleNode 车道链表中的车辆节点，S为车辆在街道上的位置
type VehicleNode = container.ListNode[IVehicle]

// VehicleList 单条车道上按S排序的车辆链表
type VehicleList = container.List[IVehicle]

// entity/street/street.go的依赖倒置
type IStreet interface {
	// 自身属性

	ID() int32                // 获取街道ID
	Length() float64          // 获取街道长度（中心线长度，米）
	LaneCount() int           // 获取车道数
	MaxV() float64            // 获取街道限速（米/秒）
	Line() []geometry.Point   // 获取街道中心线折线
	StartDirection() float64  // 获取中心线第一段的方向角（atan2，弧度）
	EndDirection() float64    // 获取中心线最后一段的方向角（atan2，弧度）
	StartIntersection() int32 // 获取起点路口ID，-1表示没有
	EndIntersection() int32   // 获取终点路口ID，-1表示没有（路网边界）

	// AllowsTurn 车道是否允许指定转向，lane为0表示最右侧车道
	AllowsTurn(lane int, turn Turn) bool

	// 车辆链表维护（节点维护阶段调用）

	Vehicles(lane int) *VehicleList         // 获取车道车辆链表
	AddVehicle(node *VehicleNode, lane int) // 将车辆节点加入车道链表
	RemoveVehicle(node *VehicleNode)        // 将车辆节点从所在链表移除

	// Accept 初始投放容量策略：一次性接受count辆车则返回true并占用配额
	Accept(count int) bool
	Capacity() int // 初始投放容量（车辆数）
}

// entity/intersection/intersection.go的依赖倒置
type IIntersection interface {
	ID() int32

	// Admit 准入询问：street上lane车道的车辆当前是否允许进入路口
	// 同一tick内幂等
	Admit(streetID int32, lane int) bool

	OutStreets() []IStreet // 获取从本路口出发的街道列表
}

// entity/vehicle/vehicle.go的依赖倒置
type IVehicle interface {
	ID() int32
	Street() IStreet // 获取车辆所在街道
	Lane() int       // 获取车辆所在车道（0为最右侧）
	S() float64      // 获取车辆在街道上的位置
	V() float64      // 获取车辆速度
	Done() bool      // 判断车辆是否已结束（路由耗尽或到达路网边界）

	String() string
}

package vehicle

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity"
)

const (
	maxAcceleration = 2.0 // 最大加速度（米/秒²）
	maxDeceleration = 4.0 // 最大减速度幅值（米/秒²）
)

// vehicleRuntime 车辆运行时数据结构
// 功能：记录车辆在模拟过程中的全部动态状态
// 说明：该数据结构可以被直接复制，不应含有产生浅拷贝副作用的成员
type vehicleRuntime struct {
	Street     entity.IStreet // 所在街道
	Lane       int            // 所在车道（0为最右侧）
	S          float64        // 在街道上的位置，0 <= S <= Street.Length()
	V          float64        // 速度（米/秒），>= 0
	BaseMaxV   float64        // 基准限速 = 进入街道时的街道限速×速度系数
	RouteIndex int            // 路由游标
	Done       bool           // 结束标志，置位后所有字段冻结
}

// Vehicle 车辆实体
// 功能：持有单辆车的标识、画像、路由与运动状态，
// 每tick由orchestrator喂入前车引用并调用update推进状态
type Vehicle struct {
	ctx entity.ITaskContext

	id         int32
	profile    Profile
	route      []int32 // 要依次经过的街道ID列表，route[0]为初始街道
	controller *controller

	// 车道链表节点及其当前归属（节点维护阶段更新）

	node       *entity.VehicleNode
	nodeStreet entity.IStreet
	nodeLane   int

	runtime vehicleRuntime
}

// newVehicle 创建车辆
// 功能：初始化车辆状态，位置0速度0，基准限速按初始街道计算
// 说明：路由中的街道ID在此处全部校验，缺失ID属于致命配置错误
func newVehicle(
	ctx entity.ITaskContext,
	id int32,
	profile Profile,
	lane int,
	route []int32,
) *Vehicle {
	if len(route) == 0 {
		log.Panicf("vehicle %d: empty route", id)
	}
	for _, streetID := range route {
		ctx.StreetManager().Get(streetID) // 不存在则panic
	}
	street := ctx.StreetManager().Get(route[0])
	if lane < 0 || lane >= street.LaneCount() {
		log.Panicf("vehicle %d: bad lane %d for street %d", id, lane, street.ID())
	}
	p := &Vehicle{
		ctx:     ctx,
		id:      id,
		profile: profile,
		route:   route,
		runtime: vehicleRuntime{
			Street:   street,
			Lane:     lane,
			BaseMaxV: street.MaxV() * profile.SpeedFactor(),
		},
	}
	p.node = &entity.VehicleNode{Value: p}
	p.controller = newController(p)
	return p
}

// prepareNode 节点维护阶段
// 功能：根据上一tick的运行时结果维护车辆在车道链表中的节点，
// 同步节点键值为当前的位置
func (p *Vehicle) prepareNode() {
	rt := &p.runtime
	if rt.Done {
		if p.node.Parent() != nil {
			p.nodeStreet.RemoveVehicle(p.node)
		}
		return
	}
	switch {
	case p.node.Parent() == nil:
		p.node.S = rt.S
		rt.Street.AddVehicle(p.node, rt.Lane)
	case p.nodeStreet != rt.Street || p.nodeLane != rt.Lane:
		p.nodeStreet.RemoveVehicle(p.node)
		p.node.S = rt.S
		rt.Street.AddVehicle(p.node, rt.Lane)
	default:
		p.node.S = rt.S
	}
	p.nodeStreet = rt.Street
	p.nodeLane = rt.Lane
}

// update 每tick的车辆状态推进
// 参数：dt-时间步长，ahead-前车节点（同街道同车道、位置更靠前，可以为nil）
// 说明：已结束的车辆不再更新；ahead的键值来自tick开始前的快照，
// 更新过程中不会观察到其他车辆本tick的新位置
func (p *Vehicle) update(dt float64, ahead *entity.VehicleNode) {
	if p.runtime.Done {
		return
	}
	ac := p.controller.update(dt, ahead)
	p.refreshRuntime(ac, dt)
}

// refreshRuntime 速度与位置积分、街道过渡
// 功能：实现状态推进的提交：先按决策调整车道，再积分速度与位置，
// 到达街道终点时处理准入重查与路由过渡
// 算法说明：
// 1. 提交决策的车道（变道是即时的，每tick至多一条）
// 2. 速度积分：限速取min(当前街道限速×速度系数, 基准限速)，
//    新速度clamp到[0, 限速]
// 3. 位置积分；未到终点则直接提交
// 4. 到达终点：位置钳位、速度清零，重查路口准入；
//    拒绝则冻结在终点等待下一tick重试；
//    没有终点路口即路网边界，车辆结束（与路由是否耗尽无关）；
//    放行则推进路由游标，游标越界即结束，否则切换到下一街道，
//    车道钳位到新街道的车道数内，位置与速度归零并重算基准限速
func (p *Vehicle) refreshRuntime(ac action, dt float64) {
	rt := &p.runtime
	rt.Lane = ac.Lane

	ceiling := math.Min(rt.Street.MaxV()*p.profile.SpeedFactor(), rt.BaseMaxV)
	newV := lo.Clamp(rt.V+ac.A*dt, 0, ceiling)
	newS := rt.S + newV*dt

	if newS < rt.Street.Length() {
		rt.V = newV
		rt.S = newS
		return
	}

	rt.S = rt.Street.Length()
	rt.V = 0
	inter := p.ctx.IntersectionManager().Get(rt.Street.EndIntersection())
	if inter == nil {
		// 路网边界
		rt.Done = true
		return
	}
	if !inter.Admit(rt.Street.ID(), rt.Lane) {
		// 准入被拒：冻结在终点，下一tick自动重试
		return
	}
	rt.RouteIndex++
	if rt.RouteIndex >= len(p.route) {
		rt.Done = true
		return
	}
	next := p.ctx.StreetManager().Get(p.route[rt.RouteIndex])
	rt.Lane = lo.Clamp(rt.Lane, 0, next.LaneCount()-1)
	rt.Street = next
	rt.S = 0
	rt.V = 0
	rt.BaseMaxV = next.MaxV() * p.profile.SpeedFactor()
}

// ID 获取车辆ID
func (p *Vehicle) ID() int32 {
	return p.id
}

// Profile 获取车辆画像
func (p *Vehicle) Profile() Profile {
	return p.profile
}

// Street 获取车辆所在街道
func (p *Vehicle) Street() entity.IStreet {
	return p.runtime.Street
}

// Lane 获取车辆所在车道（0为最右侧）
func (p *Vehicle) Lane() int {
	return p.runtime.Lane
}

// S 获取车辆在街道上的位置
func (p *Vehicle) S() float64 {
	return p.runtime.S
}

// V 获取车辆速度（米/秒）
func (p *Vehicle) V() float64 {
	return p.runtime.V
}

// Done 判断车辆是否已结束
func (p *Vehicle) Done() bool {
	return p.runtime.Done
}

// RouteIndex 获取路由游标
func (p *Vehicle) RouteIndex() int {
	return p.runtime.RouteIndex
}

// String 获取车辆的字符串表示
func (p *Vehicle) String() string {
	rt := p.runtime
	return fmt.Sprintf(
		"Vehicle{id=%d, profile=%v, street=%d, lane=%d, s=%.2f, v=%.2f, done=%v}",
		p.id, p.profile, rt.Street.ID(), rt.Lane, rt.S, rt.V, rt.Done,
	)
}

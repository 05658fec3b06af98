package vehicle

import (
	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity"
)

const (
	minFollowDistance = 5.0  // 最小跟车间距（米）
	turnLookahead     = 50.0 // 转向车道合规检查的剩余距离阈值（米）
	gateLookahead     = 20.0 // 路口准入减速检查的剩余距离阈值（米）
)

// action 单tick的车辆决策结果
type action struct {
	A    float64 // 期望加速度（米/秒²）
	Lane int     // 决策后的车道
}

// controller 车辆控制器
// 功能：实现每tick的决策逻辑：跟车安全约束、转向预判、
// 车道合规变道、路口准入减速
type controller struct {
	self *Vehicle

	maxA         float64 // 最大加速度
	maxBrakeA    float64 // 最大减速度幅值
	reactionTime float64 // 跟车安全时距的反应时间
}

// newController 创建车辆控制器
func newController(self *Vehicle) *controller {
	return &controller{
		self:         self,
		maxA:         maxAcceleration,
		maxBrakeA:    maxDeceleration,
		reactionTime: self.profile.ReactionTime(),
	}
}

// update 计算本tick的决策
// 参数：dt-时间步长，ahead-前车节点（同街道同车道，可以为nil）
// 返回：期望加速度与决策后的车道
// 算法说明：
// 1. 自由流意图：期望加速度为最大加速度
// 2. 跟车安全约束：与前车净间距小于速度×反应时间则改为最大减速
//    （二元安全覆盖，没有中间制动档位）
// 3. 转向预判：路由中存在下一街道时按折线端部方向角分类转向
// 4. 车道合规：转向待决且接近街道终点时，若当前车道不允许该转向，
//    则向目标方向移动一条车道（每tick一条，无条件放行）
// 5. 路口准入：接近终点且准入被拒时改为最大减速
func (c *controller) update(dt float64, ahead *entity.VehicleNode) action {
	rt := &c.self.runtime
	distToEnd := rt.Street.Length() - rt.S
	ac := action{A: c.maxA, Lane: rt.Lane}

	// 跟车安全约束，无前车时净间距视为无穷大
	gap := mathutil.INF
	if ahead != nil {
		gap = ahead.S - rt.S - minFollowDistance
	}
	if gap < rt.V*c.reactionTime {
		ac.A = -c.maxBrakeA
	}

	// 转向预判与车道合规
	if turn := c.nextTurn(); turn != entity.TurnNone && distToEnd < turnLookahead {
		if !rt.Street.AllowsTurn(rt.Lane, turn) {
			switch turn {
			case entity.TurnLeft:
				if rt.Lane < rt.Street.LaneCount()-1 {
					ac.Lane = rt.Lane + 1
				}
			case entity.TurnRight:
				if rt.Lane > 0 {
					ac.Lane = rt.Lane - 1
				}
			}
		}
	}

	// 路口准入
	if distToEnd < gateLookahead {
		inter := c.self.ctx.IntersectionManager().Get(rt.Street.EndIntersection())
		if inter != nil && !inter.Admit(rt.Street.ID(), ac.Lane) {
			ac.A = -c.maxBrakeA
		}
	}

	return ac
}

// nextTurn 预判路由中下一街道相对当前街道的转向
// 返回：TurnNone表示没有下一街道（不需要转向）
func (c *controller) nextTurn() entity.Turn {
	rt := &c.self.runtime
	if rt.RouteIndex >= len(c.self.route)-1 {
		return entity.TurnNone
	}
	next := c.self.ctx.StreetManager().Get(c.self.route[rt.RouteIndex+1])
	return entity.ClassifyTurn(rt.Street.EndDirection(), next.StartDirection())
}

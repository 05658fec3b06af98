package intersection

import (
	"github.com/tsinghua-fib-lab/streetflow-sim/entity"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/config"
)

// Intersection 路口实体
// 功能：表示街道汇入的路口，对到达终点的车辆提供准入oracle
// 说明：准入策略对车辆完全不透明，车辆只消费Admit的布尔结果
type Intersection struct {
	ctx entity.ITaskContext

	id         int32
	inStreets  []entity.IStreet // 入口街道（按加入顺序，cycle信控按此轮转）
	outStreets []entity.IStreet // 出口街道

	// cycle信控状态
	cycle    bool    // 是否启用轮转信控（否则常绿）
	green    float64 // 每个相位的时长（秒）
	phase    int     // 当前放行的入口街道下标
	phaseAge float64 // 当前相位已持续时间（秒）
}

func newIntersection(ctx entity.ITaskContext, id int32) *Intersection {
	signal := ctx.RuntimeConfig().C.Signal
	return &Intersection{
		ctx:   ctx,
		id:    id,
		cycle: signal.Policy == config.SignalCycle,
		green: signal.Green,
	}
}

// update 更新阶段，推进信控相位
// 功能：相位持续时间达到green后切换到下一个入口街道
// 说明：tick内Admit只读相位，相位在车辆更新之前推进
func (i *Intersection) update(dt float64) {
	if !i.cycle || len(i.inStreets) < 2 {
		return
	}
	i.phaseAge += dt
	for i.phaseAge >= i.green {
		i.phaseAge -= i.green
		i.phase = (i.phase + 1) % len(i.inStreets)
	}
}

// ID 获取路口ID，intersection为nil时返回-1
func (i *Intersection) ID() int32 {
	if i == nil {
		return -1
	}
	return i.id
}

// Admit 准入询问
// 功能：street上lane车道的车辆当前是否允许进入路口
// 说明：open策略总是放行；cycle策略只放行持有绿灯的入口街道，
// 车道下标参与接口但不影响轮转策略的结果
func (i *Intersection) Admit(streetID int32, lane int) bool {
	if !i.cycle || len(i.inStreets) < 2 {
		return true
	}
	return i.inStreets[i.phase].ID() == streetID
}

// OutStreets 获取从本路口出发的街道列表
func (i *Intersection) OutStreets() []entity.IStreet {
	return i.outStreets
}

// InStreets 获取汇入本路口的街道列表
func (i *Intersection) InStreets() []entity.IStreet {
	return i.inStreets
}

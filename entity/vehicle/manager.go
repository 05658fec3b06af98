package vehicle

import (
	"sort"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/input"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/randengine"
)

// maxSeedAttempts 车队投放循环的重试上限
// 说明：容量预检通过后正常情况下远用不到，作为拒绝采样不收敛的兜底
const maxSeedAttempts = 100000

// VehicleManager Vehicle管理器
// 功能：车队初始投放，以及每tick对所有车辆的节点维护与更新调度
type VehicleManager struct {
	ctx entity.ITaskContext

	data     map[int32]*Vehicle
	vehicles []*Vehicle // 稳定顺序的车辆列表

	nextVehicleID int32
}

// NewManager 创建Vehicle管理器实例
func NewManager(ctx entity.ITaskContext) *VehicleManager {
	return &VehicleManager{
		ctx:  ctx,
		data: make(map[int32]*Vehicle),
	}
}

// Add 创建一辆车并纳入管理
// 功能：车辆初始位置0、速度0，车道与路由由调用者给定
// 说明：route[0]为初始街道；路由在构造时全部校验，缺失街道ID会panic
func (m *VehicleManager) Add(profile Profile, lane int, route []int32) *Vehicle {
	p := newVehicle(m.ctx, m.nextVehicleID, profile, lane, route)
	m.nextVehicleID++
	m.data[p.id] = p
	m.vehicles = append(m.vehicles, p)
	return p
}

// SeedFleet 车队初始投放
// 功能：把count辆车随机投放到路网的街道上
// 参数：count-目标车辆数，seed-随机种子
// 算法说明：
// 1. 容量预检：所有街道容量之和必须不小于count，否则直接失败
// 2. 拒绝采样循环：均匀随机选一条街道，随机取[1, 剩余数]的批量，
//    街道接受则投放该批并扣减剩余数，拒绝则重新抽取
// 3. 循环次数受maxSeedAttempts约束，超limit报错而不是死循环
// 4. 每辆车：画像按配置权重抽取，车道均匀随机，
//    路由为从所在街道出发的随机后继游走
func (m *VehicleManager) SeedFleet(count int, seed uint64) error {
	if count == 0 {
		return nil
	}
	streets := m.ctx.StreetManager().Data()
	if len(streets) == 0 {
		return errors.New("vehicle: cannot seed fleet into empty network")
	}

	// 容量预检
	total := lo.SumBy(streets, func(s entity.IStreet) int { return s.Capacity() })
	if total < count {
		return errors.Errorf(
			"vehicle: network capacity %d is less than requested count %d", total, count)
	}

	profiles, weights, err := profileDistribution(m.ctx.RuntimeConfig().V.Profiles)
	if err != nil {
		return err
	}

	e := randengine.New(seed)
	remaining := count
	for attempt := 0; remaining > 0; attempt++ {
		if attempt >= maxSeedAttempts {
			return errors.Errorf(
				"vehicle: fleet seeding did not converge after %d attempts, %d left", attempt, remaining)
		}
		street := streets[e.Intn(len(streets))]
		batch := 1 + e.Intn(remaining)
		if !street.Accept(batch) {
			continue
		}
		for i := 0; i < batch; i++ {
			profile := profiles[e.DiscreteDistribution(weights)]
			lane := e.Intn(street.LaneCount())
			route := m.randomRoute(e, street)
			m.Add(profile, lane, route)
		}
		remaining -= batch
	}
	log.Infof("vehicle: seeded %d vehicles onto %d streets", count, len(streets))
	return nil
}

// profileDistribution 把配置的画像权重表转换为可抽样的序列
// 说明：按标签排序保证抽样次序与map遍历顺序无关；
// 未知标签属于配置错误，在构造期失败
func profileDistribution(conf map[string]float64) ([]Profile, []float64, error) {
	tags := lo.Keys(conf)
	sort.Strings(tags)
	profiles := make([]Profile, 0, len(tags))
	weights := make([]float64, 0, len(tags))
	for _, tag := range tags {
		p, err := ParseProfile(tag)
		if err != nil {
			return nil, nil, errors.Wrap(err, "vehicle: profiles config")
		}
		if conf[tag] < 0 {
			return nil, nil, errors.Errorf("vehicle: negative weight for profile %q", tag)
		}
		profiles = append(profiles, p)
		weights = append(weights, conf[tag])
	}
	if lo.Sum(weights) <= 0 {
		return nil, nil, errors.New("vehicle: profile weights sum to zero")
	}
	return profiles, weights, nil
}

// randomRoute 生成从start出发的随机后继游走路由
// 功能：沿终点路口的出口街道均匀随机前进，直到达到配置的路由长度、
// 遇到路网边界或没有出口街道为止
// 说明：这不是寻路，只是给车辆一个可行驶的路由
func (m *VehicleManager) randomRoute(e *randengine.Engine, start entity.IStreet) []int32 {
	maxLen := m.ctx.RuntimeConfig().V.RouteLength
	route := []int32{start.ID()}
	cur := start
	for len(route) < maxLen {
		interID := cur.EndIntersection()
		if interID == input.NoIntersection {
			break
		}
		inter := m.ctx.IntersectionManager().Get(interID)
		if inter == nil {
			break
		}
		outs := inter.OutStreets()
		if len(outs) == 0 {
			break
		}
		next := outs[e.Intn(len(outs))]
		route = append(route, next.ID())
		cur = next
	}
	return route
}

// Get 根据ID查找车辆，不存在则panic
func (m *VehicleManager) Get(id int32) entity.IVehicle {
	p, ok := m.data[id]
	if !ok {
		log.Panicf("vehicle: no vehicle %d", id)
	}
	return p
}

// Data 获取所有车辆（稳定顺序）
func (m *VehicleManager) Data() []entity.IVehicle {
	return lo.Map(m.vehicles, func(p *Vehicle, _ int) entity.IVehicle { return p })
}

// PrepareNode 节点维护阶段
// 功能：根据上一tick的运行时结果维护所有车辆的车道链表节点
// 说明：串行执行，车道链表的增删不做并发保护
func (m *VehicleManager) PrepareNode() {
	for _, p := range m.vehicles {
		p.prepareNode()
	}
}

// Update 更新阶段
// 功能：并行推进所有车辆：前车取自本车节点在车道链表中的后继
// （tick开始前的一致快照），据此执行每车辆的决策与积分
func (m *VehicleManager) Update(dt float64) {
	parallel.GoFor(m.vehicles, func(p *Vehicle) {
		if p.runtime.Done {
			return
		}
		p.update(dt, p.node.Next())
	})
}

// DoneCount 获取已结束车辆数
func (m *VehicleManager) DoneCount() int {
	return lo.CountBy(m.vehicles, func(p *Vehicle) bool { return p.runtime.Done })
}

// Len 获取车辆总数
func (m *VehicleManager) Len() int {
	return len(m.vehicles)
}

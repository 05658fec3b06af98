package task

import (
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/streetflow-sim/clock"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity/intersection"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity/street"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity/vehicle"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/config"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/input"
)

var log = logrus.WithField("module", "task")

// progressLogInterval 进度日志的步数间隔
const progressLogInterval = 100

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，持有时钟与各实体管理器
type Context struct {
	// 时钟
	clock *clock.Clock

	// Street管理器
	streetManager *street.StreetManager
	// Intersection管理器
	intersectionManager *intersection.IntersectionManager
	// Vehicle管理器
	vehicleManager *vehicle.VehicleManager

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig

	// 用于初始化的路网输入
	network *input.Network
}

// NewContext 创建新的仿真任务上下文
// 功能：校验配置并创建时钟与各管理器
// 参数：c-配置对象，network-路网输入数据
// 返回：初始化完成的Context实例，配置不合法时返回error
func NewContext(c config.Config, network *input.Network) (*Context, error) {
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		runtimeConfig: rc,
		network:       network,
	}
	ctx.clock = clock.New(c.Control.Step)

	// 新建各类模拟对象
	ctx.streetManager = street.NewManager(ctx)
	ctx.intersectionManager = intersection.NewManager(ctx)
	ctx.vehicleManager = vehicle.NewManager(ctx)

	return ctx, nil
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) StreetManager() entity.IStreetManager {
	return ctx.streetManager
}

func (ctx *Context) IntersectionManager() entity.IIntersectionManager {
	return ctx.intersectionManager
}

func (ctx *Context) VehicleManager() entity.IVehicleManager {
	return ctx.vehicleManager
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Vehicles 获取车辆管理器（具体类型，供上层及测试投放车辆）
func (ctx *Context) Vehicles() *vehicle.VehicleManager {
	return ctx.vehicleManager
}

// Init 初始化仿真任务
// 功能：构建路网实体并完成车队初始投放
// 返回：车队投放失败（容量不足等）时返回error
// 说明：街道先于路口初始化，路口由街道端点引用推导
func (ctx *Context) Init() error {
	ctx.clock.Init()

	log.Infof("Street: %v", len(ctx.network.Streets))
	ctx.streetManager.Init(ctx.network.Streets)
	ctx.intersectionManager.Init(ctx.streetManager)

	v := ctx.runtimeConfig.V
	if err := ctx.vehicleManager.SeedFleet(v.Count, v.Seed); err != nil {
		return err
	}
	log.Infof("Vehicle: %v", ctx.vehicleManager.Len())
	return nil
}

// Step 推进一个模拟步
// 功能：按固定相位顺序执行一个tick：
// 1. 车辆节点维护：按上一tick结果调整车道链表归属
// 2. 街道准备：恢复车道链表的位置有序性（tick内链表只读）
// 3. 路口更新：推进信控相位（tick内准入oracle只读）
// 4. 车辆更新：决策与状态推进，前车取自tick开始前的一致快照
func (ctx *Context) Step() {
	dt := ctx.clock.DT
	ctx.vehicleManager.PrepareNode()
	ctx.streetManager.Prepare()
	ctx.intersectionManager.Update(dt)
	ctx.vehicleManager.Update(dt)
	ctx.clock.Tick()
}

// Run 运行仿真
// 功能：循环推进模拟步直到时间区间走完或所有车辆结束
// 返回：实际执行的步数
func (ctx *Context) Run() int32 {
	steps := int32(0)
	for !ctx.clock.Done() {
		ctx.Step()
		steps++
		if ctx.clock.InternalStep%progressLogInterval == 0 {
			log.Infof("step %d (%v): %d/%d vehicles done",
				ctx.clock.InternalStep, ctx.clock,
				ctx.vehicleManager.DoneCount(), ctx.vehicleManager.Len())
		}
		if ctx.vehicleManager.Len() > 0 &&
			ctx.vehicleManager.DoneCount() == ctx.vehicleManager.Len() {
			log.Infof("all vehicles done at step %d (%v)", ctx.clock.InternalStep, ctx.clock)
			break
		}
	}
	return steps
}

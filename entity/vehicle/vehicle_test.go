package vehicle

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/streetflow-sim/clock"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity/intersection"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity/street"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/config"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/input"
)

// testContext 测试用的仿真上下文
// 说明：用真实的街道/路口管理器拼装，只为白盒测试车辆动力学
type testContext struct {
	clk *clock.Clock
	sm  *street.StreetManager
	im  *intersection.IntersectionManager
	vm  *VehicleManager
	rc  *config.RuntimeConfig
}

func (tc *testContext) Clock() *clock.Clock                              { return tc.clk }
func (tc *testContext) StreetManager() entity.IStreetManager             { return tc.sm }
func (tc *testContext) IntersectionManager() entity.IIntersectionManager { return tc.im }
func (tc *testContext) VehicleManager() entity.IVehicleManager           { return tc.vm }
func (tc *testContext) RuntimeConfig() *config.RuntimeConfig             { return tc.rc }

func newTestContext(t *testing.T, streets []input.StreetData, signal config.Signal) *testContext {
	t.Helper()
	rc, err := config.NewRuntimeConfig(config.Config{
		Control: config.Control{
			Step:   config.ControlStep{Start: 0, Total: 10000, Interval: 1},
			Signal: signal,
		},
	})
	require.NoError(t, err)
	tc := &testContext{rc: rc}
	tc.clk = clock.New(rc.C.Step)
	tc.sm = street.NewManager(tc)
	tc.im = intersection.NewManager(tc)
	tc.vm = NewManager(tc)
	tc.sm.Init(streets)
	tc.im.Init(tc.sm)
	return tc
}

// step 按与仿真主循环相同的相位顺序推进一个tick
func (tc *testContext) step() {
	dt := tc.clk.DT
	tc.vm.PrepareNode()
	tc.sm.Prepare()
	tc.im.Update(dt)
	tc.vm.Update(dt)
	tc.clk.Tick()
}

func line(pts ...[2]float64) []geometry.Point {
	points := make([]geometry.Point, len(pts))
	for i, p := range pts {
		points[i] = geometry.Point{X: p[0], Y: p[1]}
	}
	return points
}

// 单条100米东向街道，终点无路口
func soloStreet(lanes int, maxV float64) []input.StreetData {
	turns := make([][]string, lanes)
	for i := range turns {
		turns[i] = []string{"through"}
	}
	return []input.StreetData{{
		ID:                1,
		Line:              line([2]float64{0, 0}, [2]float64{100, 0}),
		Lanes:             lanes,
		MaxSpeed:          maxV,
		LaneTurns:         turns,
		StartIntersection: input.NoIntersection,
		EndIntersection:   input.NoIntersection,
	}}
}

func TestFreeFlowKinematics(t *testing.T) {
	tc := newTestContext(t, soloStreet(1, 10), config.Signal{})
	p := tc.vm.Add(ProfileNormal, 0, []int32{1})

	// 无前车时每tick以最大加速度提速，速度封顶在街道限速
	wantV := []float64{2, 4, 6, 8, 10, 10}
	wantS := []float64{2, 6, 12, 20, 30, 40}
	for i := range wantV {
		tc.step()
		assert.Equal(t, wantV[i], p.V(), "step %d", i)
		assert.Equal(t, wantS[i], p.S(), "step %d", i)
	}
}

func TestSpeedCeilingByProfile(t *testing.T) {
	for _, tt := range []struct {
		profile Profile
		wantV   float64
	}{
		{ProfileAggressive, 15},
		{ProfileNormal, 10},
		{ProfileCautious, 7.5},
	} {
		tc := newTestContext(t, soloStreet(1, 10), config.Signal{})
		p := tc.vm.Add(tt.profile, 0, []int32{1})
		reached := false
		for i := 0; i < 10 && !p.Done(); i++ {
			tc.step()
			assert.LessOrEqual(t, p.V(), tt.wantV, "profile %v", tt.profile)
			if p.V() == tt.wantV {
				reached = true
			}
		}
		// 自由流下必然达到本画像的限速且从不超过
		assert.True(t, reached, "profile %v", tt.profile)
	}
}

func TestFollowBraking(t *testing.T) {
	tc := newTestContext(t, soloStreet(1, 10), config.Signal{})
	leader := tc.vm.Add(ProfileNormal, 0, []int32{1})
	follower := tc.vm.Add(ProfileNormal, 0, []int32{1})
	leader.runtime.S = 12
	follower.runtime.V = 10

	// 净间距 12-0-5=7 < 10×1秒，触发最大减速
	tc.step()
	assert.Equal(t, 6.0, follower.V())
	assert.Equal(t, 6.0, follower.S())
	// 前车无约束，正常提速
	assert.Equal(t, 2.0, leader.V())
	assert.Equal(t, 14.0, leader.S())
	assert.Less(t, follower.S(), leader.S())
}

func TestFollowOrderPreserved(t *testing.T) {
	tc := newTestContext(t, soloStreet(1, 10), config.Signal{})
	leader := tc.vm.Add(ProfileNormal, 0, []int32{1})
	follower := tc.vm.Add(ProfileNormal, 0, []int32{1})
	leader.runtime.S = 8

	for i := 0; i < 20; i++ {
		tc.step()
		if leader.Done() {
			break
		}
		assert.Less(t, follower.S(), leader.S(), "step %d", i)
		assert.GreaterOrEqual(t, follower.V(), 0.0)
	}
}

// 东向街道汇入路口100后南向流出，方向角差-90度即左转
func leftTurnStreets() []input.StreetData {
	return []input.StreetData{
		{
			ID:                1,
			Line:              line([2]float64{0, 0}, [2]float64{100, 0}),
			Lanes:             2,
			MaxSpeed:          10,
			LaneTurns:         [][]string{{"through"}, {"left"}},
			StartIntersection: input.NoIntersection,
			EndIntersection:   100,
		},
		{
			ID:                2,
			Line:              line([2]float64{100, 0}, [2]float64{100, -100}),
			Lanes:             1,
			MaxSpeed:          10,
			LaneTurns:         [][]string{{"through"}},
			StartIntersection: 100,
			EndIntersection:   input.NoIntersection,
		},
	}
}

func TestTurnLaneChange(t *testing.T) {
	tc := newTestContext(t, leftTurnStreets(), config.Signal{})

	// 接近终点且当前车道不允许左转，向左移一条车道
	p := tc.vm.Add(ProfileNormal, 0, []int32{1, 2})
	p.runtime.S = 60
	tc.step()
	assert.Equal(t, 1, p.Lane())

	// 距终点超出阈值时不变道
	q := tc.vm.Add(ProfileNormal, 0, []int32{1, 2})
	q.runtime.S = 30
	tc.step()
	assert.Equal(t, 0, q.Lane())
}

func TestTurnLaneKept(t *testing.T) {
	tc := newTestContext(t, leftTurnStreets(), config.Signal{})

	// 当前车道已允许目标转向，不再变道
	p := tc.vm.Add(ProfileNormal, 1, []int32{1, 2})
	p.runtime.S = 60
	tc.step()
	assert.Equal(t, 1, p.Lane())
}

func TestLaneClampOnTransition(t *testing.T) {
	tc := newTestContext(t, leftTurnStreets(), config.Signal{})
	p := tc.vm.Add(ProfileNormal, 1, []int32{1, 2})
	p.runtime.S = 99
	p.runtime.V = 10

	// 过渡到下一街道：位置与速度归零，车道钳位到新街道车道数内
	tc.step()
	assert.Equal(t, int32(2), p.Street().ID())
	assert.Equal(t, 0, p.Lane())
	assert.Equal(t, 0.0, p.S())
	assert.Equal(t, 0.0, p.V())
	assert.Equal(t, 1, p.RouteIndex())
	assert.False(t, p.Done())
}

// 两条街道汇入路口100，一条流出，cycle信控下street 2初始为红
func gatedStreets() []input.StreetData {
	return []input.StreetData{
		{
			ID:                1,
			Line:              line([2]float64{0, 100}, [2]float64{100, 100}),
			Lanes:             1,
			MaxSpeed:          10,
			LaneTurns:         [][]string{{"through"}},
			StartIntersection: input.NoIntersection,
			EndIntersection:   100,
		},
		{
			ID:                2,
			Line:              line([2]float64{0, 0}, [2]float64{100, 0}),
			Lanes:             1,
			MaxSpeed:          10,
			LaneTurns:         [][]string{{"through"}},
			StartIntersection: input.NoIntersection,
			EndIntersection:   100,
		},
		{
			ID:                3,
			Line:              line([2]float64{100, 0}, [2]float64{200, 0}),
			Lanes:             1,
			MaxSpeed:          10,
			LaneTurns:         [][]string{{"through"}},
			StartIntersection: 100,
			EndIntersection:   input.NoIntersection,
		},
	}
}

func TestGateDenialFreeze(t *testing.T) {
	tc := newTestContext(t, gatedStreets(),
		config.Signal{Policy: config.SignalCycle, Green: 1000})
	p := tc.vm.Add(ProfileNormal, 0, []int32{2, 3})
	p.runtime.S = 99
	p.runtime.V = 10

	// 减速后仍然越过终点：钳位到终点，准入被拒则冻结等待
	tc.step()
	assert.Equal(t, int32(2), p.Street().ID())
	assert.Equal(t, 100.0, p.S())
	assert.Equal(t, 0.0, p.V())
	assert.Equal(t, 0, p.RouteIndex())
	assert.False(t, p.Done())

	// 红灯不变，冻结状态逐tick保持
	for i := 0; i < 5; i++ {
		tc.step()
		assert.Equal(t, int32(2), p.Street().ID())
		assert.Equal(t, 100.0, p.S())
		assert.Equal(t, 0.0, p.V())
	}
}

func TestGateGrantAfterPhase(t *testing.T) {
	tc := newTestContext(t, gatedStreets(),
		config.Signal{Policy: config.SignalCycle, Green: 1})
	p := tc.vm.Add(ProfileNormal, 0, []int32{2, 3})
	p.runtime.S = 100

	// 本tick相位先切换到street 2，随后车辆被放行并过渡
	tc.step()
	assert.Equal(t, int32(3), p.Street().ID())
	assert.Equal(t, 0.0, p.S())
	assert.Equal(t, 0.0, p.V())
}

func TestApproachSlowdownOnRed(t *testing.T) {
	tc := newTestContext(t, gatedStreets(),
		config.Signal{Policy: config.SignalCycle, Green: 1000})
	p := tc.vm.Add(ProfileNormal, 0, []int32{2, 3})

	// 红灯时在准入检查阈值内减速停驻，不越过终点
	for i := 0; i < 30; i++ {
		tc.step()
		assert.LessOrEqual(t, p.S(), p.Street().Length(), "step %d", i)
	}
	assert.Equal(t, int32(2), p.Street().ID())
	assert.Equal(t, 0.0, p.V())
	assert.False(t, p.Done())
}

func TestBoundaryTerminal(t *testing.T) {
	tc := newTestContext(t, soloStreet(1, 10), config.Signal{})
	p := tc.vm.Add(ProfileNormal, 0, []int32{1})
	p.runtime.S = 99
	p.runtime.V = 10

	// 终点没有路口即路网边界，车辆结束
	tc.step()
	assert.True(t, p.Done())
	assert.Equal(t, 100.0, p.S())
	assert.Equal(t, 0.0, p.V())
	assert.Equal(t, 1, tc.vm.DoneCount())

	// 下一tick节点维护阶段把已结束车辆移出车道链表
	tc.step()
	s := tc.sm.Get(1)
	assert.Equal(t, 0, s.Vehicles(0).Len())
}

func TestRouteExhaustion(t *testing.T) {
	tc := newTestContext(t, gatedStreets(), config.Signal{})
	p := tc.vm.Add(ProfileNormal, 0, []int32{2})
	p.runtime.S = 99
	p.runtime.V = 10

	// 准入放行但路由耗尽：在当前街道终点结束
	tc.step()
	assert.True(t, p.Done())
	assert.Equal(t, int32(2), p.Street().ID())
	assert.Equal(t, 100.0, p.S())
}

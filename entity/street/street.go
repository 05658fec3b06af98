package street

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/streetflow-sim/entity"
	"github.com/tsinghua-fib-lab/streetflow-sim/utils/input"
)

// capacitySlotLength 初始投放容量策略中每辆车占用的车道长度（米）
const capacitySlotLength = 5

// Street 街道实体
// 功能：表示路网中的一条有向街道，包含几何信息、车道允许转向、
// 限速、端点路口引用以及每车道按位置排序的车辆链表
type Street struct {
	ctx entity.ITaskContext

	id                int32
	line              []geometry.Point             // 中心线折线
	lineLengths       []float64                    // 中心线折线点对应的长度列表
	lineDirections    []geometry.PolylineDirection // 中心线折线段每一段的方向（atan2）
	length            float64                      // 以中心线的长度为街道长度
	maxV              float64                      // 街道限速
	laneTurns         [][]entity.Turn              // 每车道允许转向，下标0为最右侧车道
	startIntersection int32                        // 起点路口ID，-1表示没有
	endIntersection   int32                        // 终点路口ID，-1表示没有

	vehicles []*entity.VehicleList // 每车道车辆链表

	capacity int // 初始投放容量（车辆数）
	placed   int // 已接受的投放数
}

// newStreet 创建并初始化一个新的Street实例
// 功能：根据输入数据创建Street对象，计算几何属性并解析车道转向
// 说明：转向字符串不合法属于配置错误，直接panic
func newStreet(ctx entity.ITaskContext, base input.StreetData) *Street {
	s := &Street{
		ctx:               ctx,
		id:                base.ID,
		line:              base.Line,
		maxV:              base.MaxSpeed,
		startIntersection: base.StartIntersection,
		endIntersection:   base.EndIntersection,
	}
	s.lineLengths = geometry.GetPolylineLengths2D(s.line)
	s.length = s.lineLengths[len(s.lineLengths)-1]
	s.lineDirections = geometry.GetPolylineDirections(s.line)

	s.laneTurns = lo.Map(base.LaneTurns, func(names []string, lane int) []entity.Turn {
		return lo.Map(names, func(name string, _ int) entity.Turn {
			turn, err := entity.ParseTurn(name)
			if err != nil {
				log.Panicf("street %d lane %d: %v", s.id, lane, err)
			}
			return turn
		})
	})
	s.vehicles = make([]*entity.VehicleList, len(s.laneTurns))
	for lane := range s.vehicles {
		s.vehicles[lane] = &entity.VehicleList{
			ID: fmt.Sprintf("street %d lane %d vehicles", s.id, lane),
		}
	}

	s.capacity = len(s.laneTurns) * max(int(s.length/capacitySlotLength), 1)
	return s
}

// prepare 准备阶段
// 功能：车辆位置在上一tick被改写后恢复各车道链表的位置有序性
func (s *Street) prepare() {
	for _, l := range s.vehicles {
		l.Resort()
	}
}

// ID 获取街道ID，street为nil时返回-1
func (s *Street) ID() int32 {
	if s == nil {
		return -1
	}
	return s.id
}

// Length 获取街道长度（米）
func (s *Street) Length() float64 {
	return s.length
}

// LaneCount 获取车道数
func (s *Street) LaneCount() int {
	return len(s.laneTurns)
}

// MaxV 获取街道限速（米/秒）
func (s *Street) MaxV() float64 {
	return s.maxV
}

// Line 获取街道中心线折线
func (s *Street) Line() []geometry.Point {
	return s.line
}

// StartDirection 获取中心线第一段的方向角（弧度）
func (s *Street) StartDirection() float64 {
	return s.lineDirections[0].Direction
}

// EndDirection 获取中心线最后一段的方向角（弧度）
func (s *Street) EndDirection() float64 {
	return s.lineDirections[len(s.lineDirections)-1].Direction
}

// StartIntersection 获取起点路口ID，-1表示没有
func (s *Street) StartIntersection() int32 {
	return s.startIntersection
}

// EndIntersection 获取终点路口ID，-1表示没有（路网边界）
func (s *Street) EndIntersection() int32 {
	return s.endIntersection
}

// AllowsTurn 判断lane车道是否允许turn转向
// 说明：车道越界按不允许处理
func (s *Street) AllowsTurn(lane int, turn entity.Turn) bool {
	if lane < 0 || lane >= len(s.laneTurns) {
		return false
	}
	for _, t := range s.laneTurns[lane] {
		if t == turn {
			return true
		}
	}
	return false
}

// Vehicles 获取lane车道的车辆链表
func (s *Street) Vehicles(lane int) *entity.VehicleList {
	return s.vehicles[lane]
}

// AddVehicle 将车辆节点按位置加入lane车道链表
func (s *Street) AddVehicle(node *entity.VehicleNode, lane int) {
	if lane < 0 || lane >= len(s.vehicles) {
		log.Panicf("street %d: add vehicle to bad lane %d", s.id, lane)
	}
	s.vehicles[lane].Add(node)
}

// RemoveVehicle 将车辆节点从所在链表移除
func (s *Street) RemoveVehicle(node *entity.VehicleNode) {
	if node.Parent() == nil {
		log.Panicf("street %d: remove vehicle not in list", s.id)
	}
	node.Parent().Remove(node)
}

// Accept 初始投放容量策略
// 功能：一次性接受count辆车则返回true并占用配额，否则拒绝且状态不变
func (s *Street) Accept(count int) bool {
	if count <= 0 {
		return false
	}
	if s.placed+count > s.capacity {
		return false
	}
	s.placed += count
	return true
}

// Capacity 获取初始投放容量
func (s *Street) Capacity() int {
	return s.capacity
}

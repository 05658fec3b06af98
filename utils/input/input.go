// 路网输入加载：GeoJSON文件 -> 街道数据
// 每个LineString Feature为一条街道，属性：
//
//	id                 街道ID（必需）
//	lanes              车道数（必需，>=1）
//	max_speed          限速，米/秒（必需，>0）
//	lane_turns         每车道允许转向列表，"|"分隔，下标0为最右侧车道（必需）
//	start_intersection 起点路口ID（可选，缺省为路网入口）
//	end_intersection   终点路口ID（可选，缺省为路网边界，车辆到达后结束）
package input

import (
	"os"
	"strings"

	"git.fiblab.net/general/common/v2/geometry"
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// NoIntersection 街道端点没有路口时的占位ID
const NoIntersection int32 = -1

// StreetData 单条街道的输入数据
type StreetData struct {
	ID                int32            // 街道ID
	Line              []geometry.Point // 中心线折线（>=2个点）
	Lanes             int              // 车道数
	MaxSpeed          float64          // 限速（米/秒）
	LaneTurns         [][]string       // 每车道允许转向，下标0为最右侧车道
	StartIntersection int32            // 起点路口ID，NoIntersection表示没有
	EndIntersection   int32            // 终点路口ID，NoIntersection表示没有
}

// Network 路网输入数据
type Network struct {
	Streets []StreetData
}

// Load 从GeoJSON文件加载路网
func Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "input: network file open")
	}
	return Parse(data)
}

// Parse 解析GeoJSON路网数据
// 算法说明：
// 1. 反序列化FeatureCollection
// 2. 逐Feature转换为StreetData并校验
func Parse(data []byte) (*Network, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "input: network geojson unmarshal")
	}
	net := &Network{Streets: make([]StreetData, 0, len(fc.Features))}
	seen := map[int32]bool{}
	for i, f := range fc.Features {
		street, err := parseFeature(f)
		if err != nil {
			return nil, errors.Wrapf(err, "input: feature %d", i)
		}
		if seen[street.ID] {
			return nil, errors.Errorf("input: feature %d: duplicated street id %d", i, street.ID)
		}
		seen[street.ID] = true
		net.Streets = append(net.Streets, street)
	}
	return net, nil
}

func parseFeature(f *geojson.Feature) (StreetData, error) {
	var s StreetData
	if f.Geometry == nil || !f.Geometry.IsLineString() {
		return s, errors.New("geometry is not a LineString")
	}
	if len(f.Geometry.LineString) < 2 {
		return s, errors.New("line needs at least 2 points")
	}
	id, err := f.PropertyInt("id")
	if err != nil {
		return s, errors.Wrap(err, "property id")
	}
	lanes, err := f.PropertyInt("lanes")
	if err != nil {
		return s, errors.Wrap(err, "property lanes")
	}
	if lanes < 1 {
		return s, errors.Errorf("street %d: lanes must be positive, got %d", id, lanes)
	}
	maxSpeed, err := f.PropertyFloat64("max_speed")
	if err != nil {
		return s, errors.Wrap(err, "property max_speed")
	}
	if maxSpeed <= 0 {
		return s, errors.Errorf("street %d: max_speed must be positive, got %v", id, maxSpeed)
	}
	laneTurns, err := parseLaneTurns(f.Properties["lane_turns"])
	if err != nil {
		return s, errors.Wrapf(err, "street %d: property lane_turns", id)
	}
	if len(laneTurns) != lanes {
		return s, errors.Errorf(
			"street %d: lane_turns has %d entries for %d lanes", id, len(laneTurns), lanes)
	}
	startInter, err := intersectionProperty(f, "start_intersection")
	if err != nil {
		return s, errors.Wrapf(err, "street %d", id)
	}
	endInter, err := intersectionProperty(f, "end_intersection")
	if err != nil {
		return s, errors.Wrapf(err, "street %d", id)
	}
	s = StreetData{
		ID:                int32(id),
		Lanes:             lanes,
		MaxSpeed:          maxSpeed,
		LaneTurns:         laneTurns,
		StartIntersection: startInter,
		EndIntersection:   endInter,
	}
	s.Line = make([]geometry.Point, len(f.Geometry.LineString))
	for i, xy := range f.Geometry.LineString {
		if len(xy) < 2 {
			return s, errors.Errorf("street %d: bad coordinate at %d", id, i)
		}
		s.Line[i] = geometry.Point{X: xy[0], Y: xy[1]}
	}
	return s, nil
}

// parseLaneTurns 解析lane_turns属性（字符串数组，元素为"|"分隔的转向名）
func parseLaneTurns(raw interface{}) ([][]string, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, errors.Errorf("expect array of strings, got %T", raw)
	}
	turns := make([][]string, len(items))
	for i, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, errors.Errorf("expect string at %d, got %T", i, item)
		}
		turns[i] = splitTurns(str)
	}
	return turns, nil
}

func splitTurns(s string) []string {
	parts := []string{}
	for _, p := range strings.Split(s, "|") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// intersectionProperty 解析可选的端点路口ID属性
// 说明：属性缺省表示没有路口；属性存在但非法属于配置错误
func intersectionProperty(f *geojson.Feature, key string) (int32, error) {
	if _, ok := f.Properties[key]; !ok {
		return NoIntersection, nil
	}
	id, err := f.PropertyInt(key)
	if err != nil {
		return NoIntersection, errors.Wrapf(err, "property %s", key)
	}
	return int32(id), nil
}

package config

import (
	"fmt"
)

// 信控策略可选项
const (
	SignalOpen  = "open"  // 常绿，总是放行
	SignalCycle = "cycle" // 按入口街道轮转放行
)

const (
	defaultRouteLength = 8  // 随机游走路由的默认街道数上限
	defaultGreen       = 30 // cycle信控默认相位时长（秒）
)

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息，补全默认值后的有效配置
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
	V   VehicleConfig
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：校验配置并补全默认值
// 返回：初始化的运行时配置指针，配置不合法时返回error
// 算法说明：
// 1. 校验时间步长、步数、车辆数等数值范围
// 2. 补全路由长度、信控策略、画像权重的默认值
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	rc.V = config.Vehicles

	if rc.C.Step.Interval <= 0 {
		return nil, fmt.Errorf("config: control.step.interval must be positive, got %v", rc.C.Step.Interval)
	}
	if rc.C.Step.Total <= 0 {
		return nil, fmt.Errorf("config: control.step.total must be positive, got %v", rc.C.Step.Total)
	}
	if rc.V.Count < 0 {
		return nil, fmt.Errorf("config: vehicles.count must be non-negative, got %v", rc.V.Count)
	}
	if rc.V.RouteLength == 0 {
		rc.V.RouteLength = defaultRouteLength
	}
	if rc.V.RouteLength < 1 {
		return nil, fmt.Errorf("config: vehicles.route_length must be positive, got %v", rc.V.RouteLength)
	}
	if len(rc.V.Profiles) == 0 {
		rc.V.Profiles = map[string]float64{"normal": 1}
	}
	switch rc.C.Signal.Policy {
	case "":
		rc.C.Signal.Policy = SignalOpen
	case SignalOpen:
	case SignalCycle:
		if rc.C.Signal.Green == 0 {
			rc.C.Signal.Green = defaultGreen
		}
		if rc.C.Signal.Green < 0 {
			return nil, fmt.Errorf("config: control.signal.green must be positive, got %v", rc.C.Signal.Green)
		}
	default:
		return nil, fmt.Errorf("config: unknown signal policy %q", rc.C.Signal.Policy)
	}

	return rc, nil
}

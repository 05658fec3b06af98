package config

// Input 指定模拟器输入数据的配置项
// 功能：定义路网输入文件的位置
// 说明：路网为GeoJSON文件，每个LineString Feature为一条街道
type Input struct {
	Network string `yaml:"network"` // 路网GeoJSON文件路径
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Signal 路口准入信控配置
// 功能：定义路口准入oracle的策略
// 说明：open-常绿；cycle-按入口街道轮转放行，每个相位持续Green秒
type Signal struct {
	Policy string  `yaml:"policy"`          // 信控策略（open/cycle）
	Green  float64 `yaml:"green,omitempty"` // cycle策略下每个相位的时长（秒）
}

// Control 模拟器控制配置
type Control struct {
	Step   ControlStep `yaml:"step"`
	Signal Signal      `yaml:"signal"`
}

// VehicleConfig 车队初始投放配置
type VehicleConfig struct {
	Count       int                `yaml:"count"`                  // 投放车辆总数
	Seed        uint64             `yaml:"seed"`                   // 随机种子
	RouteLength int                `yaml:"route_length,omitempty"` // 随机游走路由的街道数上限
	Profiles    map[string]float64 `yaml:"profiles,omitempty"`     // 行为画像权重（aggressive/normal/cautious）
}

// Config YAML配置文件的根结构
type Config struct {
	Input    Input         `yaml:"input"`    // 输入
	Control  Control       `yaml:"control"`  // 模拟过程控制
	Vehicles VehicleConfig `yaml:"vehicles"` // 车队投放
}

package vehicle

import "fmt"

// Profile 驾驶行为画像
// 功能：封闭枚举，每个画像携带固定的(速度系数, 反应时间)
type Profile int

const (
	ProfileNormal     Profile = iota // 普通驾驶
	ProfileAggressive                // 激进驾驶：更快、反应更灵敏
	ProfileCautious                  // 谨慎驾驶：更慢
)

// profileAttr 画像静态属性
type profileAttr struct {
	speedFactor  float64 // 乘在街道限速上的速度系数
	reactionTime float64 // 跟车安全时距的反应时间（秒）
}

var profileAttrs = map[Profile]profileAttr{
	ProfileAggressive: {speedFactor: 1.50, reactionTime: 0.8},
	ProfileNormal:     {speedFactor: 1.00, reactionTime: 1.0},
	ProfileCautious:   {speedFactor: 0.75, reactionTime: 1.0},
}

// SpeedFactor 获取画像的速度系数
func (p Profile) SpeedFactor() float64 {
	return profileAttrs[p].speedFactor
}

// ReactionTime 获取画像的反应时间（秒）
func (p Profile) ReactionTime() float64 {
	return profileAttrs[p].reactionTime
}

// String 获取画像的字符串表示
func (p Profile) String() string {
	switch p {
	case ProfileAggressive:
		return "aggressive"
	case ProfileNormal:
		return "normal"
	case ProfileCautious:
		return "cautious"
	default:
		return fmt.Sprintf("Profile(%d)", int(p))
	}
}

// ParseProfile 将配置中的画像标签解析为Profile
// 说明：未知标签属于配置错误，返回error由调用者在构造期失败
func ParseProfile(s string) (Profile, error) {
	switch s {
	case "aggressive":
		return ProfileAggressive, nil
	case "normal":
		return ProfileNormal, nil
	case "cautious":
		return ProfileCautious, nil
	default:
		return ProfileNormal, fmt.Errorf("bad profile tag %q", s)
	}
}

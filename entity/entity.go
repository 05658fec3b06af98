package entity

import (
	"fmt"
	"math"
)

// Turn 转向类型
// 功能：描述车辆跨路口转向的分类，同时也是车道允许转向集合的元素
type Turn int

const (
	TurnNone    Turn = iota // 无转向（没有下一条街道）
	TurnRight               // 右转
	TurnThrough             // 直行
	TurnLeft                // 左转
)

// turnNames 转向类型与配置/输入文件中字符串的对应关系
var turnNames = map[Turn]string{
	TurnNone:    "none",
	TurnRight:   "right",
	TurnThrough: "through",
	TurnLeft:    "left",
}

// String 获取转向类型的字符串表示
func (t Turn) String() string {
	if name, ok := turnNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Turn(%d)", int(t))
}

// ParseTurn 将输入数据中的转向字符串解析为Turn
// 功能：解析车道允许转向集合的元素
// 说明：未知的转向字符串属于配置错误，返回error由调用者panic
func ParseTurn(s string) (Turn, error) {
	switch s {
	case "left":
		return TurnLeft, nil
	case "through":
		return TurnThrough, nil
	case "right":
		return TurnRight, nil
	default:
		return TurnNone, fmt.Errorf("bad turn name %q", s)
	}
}

// turnAngle 转向分类的角度阈值（度）
const turnAngle = 30.0

// ClassifyTurn 按方向角分类跨街道转向
// 功能：比较当前街道最后一段与下一街道第一段的方向角（atan2，弧度），
// 带符号角差归一化到(-180°, 180°]后按±30°阈值分类
// 说明：只依赖方向角，对坐标平移与等比缩放不变
func ClassifyTurn(curEndDirection, nextStartDirection float64) Turn {
	diff := (nextStartDirection - curEndDirection) * 180 / math.Pi
	if diff > 180 {
		diff -= 360
	} else if diff <= -180 {
		diff += 360
	}
	switch {
	case diff > turnAngle:
		return TurnRight
	case diff < -turnAngle:
		return TurnLeft
	default:
		return TurnThrough
	}
}

package types

// 物理常量定义
const (
	G0             = 9.80665          // 标准重力加速度 m/s²
	RUniversal     = 8.31446261815324 // 通用气体常数 J/(mol·K)
	AtmPressure    = 101325.0         // 标准大气压 Pa
	RefTemperature = 298.15           // 理想气体焓零点 K
)

// 求解器默认参数
const (
	RelPowerTolerance = 1e-6  // 功率平衡相对容差(相对泵功率)
	AbsPowerTolerance = 1e-3  // 功率平衡绝对容差 W
	UnknownTolerance  = 1e-12 // 未知量收敛容差(相对括号区间宽度)
	MaxIterations     = 100   // 最大迭代次数
	ScanPoints        = 64    // 括号扫描网格段数
	GGFractionMin     = 1e-6  // 燃气发生器流量比下限
	GGFractionMax     = 1 - 1e-6
	DischargeMargin   = 1e4 // 膨胀循环泵出口压力下限裕度 Pa
)

// 设计点默认值
const (
	DefaultExpansionRatio     = 10.0
	DefaultInjectorDPFraction = 0.15
	DefaultPumpInletPressure  = 3e5 // 泵入口(贮箱)压力 Pa
	DefaultValveDP            = 5e4
	DefaultPumpEfficiency     = 0.65
	DefaultTurbineEfficiency  = 0.60
	DefaultTurbineExhaust     = 1e5
	DefaultGGPressureFraction = 0.9
	DefaultHXEffectiveness    = 0.80
	DefaultCoolantFraction    = 1.0
	DefaultJacketDPHot        = 5e4
	DefaultJacketDPCold       = 1e5
	DefaultJacketGasFraction  = 0.4 // 冷却套热侧恢复温度/燃烧室温度
	DefaultMaxDischargeRatio  = 8.0 // 泵出口压力上限/燃烧室压力
	DefaultLineDiameter       = 0.025
	DefaultLineLength         = 1.0
	DefaultLineRoughness      = 1.5e-6
	DefaultLineMinorLoss      = 5.0
)

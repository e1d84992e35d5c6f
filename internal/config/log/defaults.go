package log

// 日志配置默认值
const (
	defaultLogLevel         = "info"
	defaultToConsole        = true
	defaultFilePath         = ""
	defaultMaxSize          = 100 // MB
	defaultMaxBackups       = 10
	defaultMaxAge           = 30 // 天
	defaultCompress         = true
	defaultEnableCaller     = false
	defaultEnableStacktrace = false
)

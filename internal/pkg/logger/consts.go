package logger

const (
	ComponentNameRunner  = "runner"
	ComponentNameDriver  = "driver"
	ComponentNameLogs    = "logs"
	ComponentNameResult  = "result"
	ComponentNameState   = "state"
)

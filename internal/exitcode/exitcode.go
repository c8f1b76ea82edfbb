package exitcode

const (
	Success     = 0
	UsageError  = 1
	ConfigError = 2
	DBConnError = 3
	CopyError   = 4
	TrainError  = 5
	AssessError = 6
)

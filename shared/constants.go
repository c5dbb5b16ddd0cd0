package shared

const (
	BACKEND_SCRIPT = "script"
	BACKEND_STREAM = "stream"
	BACKEND_MPRIS  = "mpris"
)

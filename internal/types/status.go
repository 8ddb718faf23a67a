package types

type Status int

const (
	StatusStopped      Status = 0
	StatusCheckWait    Status = 1
	StatusCheck        Status = 2
	StatusDownloadWait Status = 3
	StatusDownload     Status = 4
	StatusSeedWait     Status = 5
	StatusSeed         Status = 6
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusCheckWait:
		return "queued for verify"
	case StatusCheck:
		return "verifying"
	case StatusDownloadWait:
		return "queued for download"
	case StatusDownload:
		return "downloading"
	case StatusSeedWait:
		return "queued for seeding"
	case StatusSeed:
		return "seeding"
	default:
		return "unknown"
	}
}

func (s Status) IsValid() bool {
	return s >= StatusStopped && s <= StatusSeed
}

type ErrorCode int

const (
	ErrorNone           ErrorCode = 0
	ErrorTrackerWarning ErrorCode = 1
	ErrorTrackerError   ErrorCode = 2
	ErrorLocal          ErrorCode = 3
)

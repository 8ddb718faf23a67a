package types

type Session struct {
	Version           string `json:"version"`
	RPCVersion        int    `json:"rpc-version"`
	DownloadDir       string `json:"download-dir"`
	AltSpeedEnabled   bool   `json:"alt-speed-enabled"`
	AltSpeedDown      int    `json:"alt-speed-down"`
	AltSpeedUp        int    `json:"alt-speed-up"`
	SpeedLimitDown    int    `json:"speed-limit-down"`
	SpeedLimitDownOn  bool   `json:"speed-limit-down-enabled"`
	SpeedLimitUp      int    `json:"speed-limit-up"`
	SpeedLimitUpOn    bool   `json:"speed-limit-up-enabled"`
	PeerPort          int    `json:"peer-port"`
	BlocklistEnabled  bool   `json:"blocklist-enabled"`
	BlocklistSize     int    `json:"blocklist-size"`
	QueueDownloadSize int    `json:"download-queue-size"`
	QueueSeedSize     int    `json:"seed-queue-size"`
}

type TransferStats struct {
	UploadedBytes   int64 `json:"uploadedBytes"`
	DownloadedBytes int64 `json:"downloadedBytes"`
	FilesAdded      int64 `json:"filesAdded"`
	SessionCount    int64 `json:"sessionCount"`
	SecondsActive   int64 `json:"secondsActive"`
}

type SessionStats struct {
	ActiveTorrentCount int           `json:"activeTorrentCount"`
	PausedTorrentCount int           `json:"pausedTorrentCount"`
	TorrentCount       int           `json:"torrentCount"`
	DownloadSpeed      int64         `json:"downloadSpeed"`
	UploadSpeed        int64         `json:"uploadSpeed"`
	CurrentStats       TransferStats `json:"current-stats"`
	CumulativeStats    TransferStats `json:"cumulative-stats"`
}

type FreeSpace struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size-bytes"`
}

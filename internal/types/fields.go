package types

const (
	FieldID                      = "id"
	FieldName                    = "name"
	FieldStatus                  = "status"
	FieldError                   = "error"
	FieldErrorString             = "errorString"
	FieldETA                     = "eta"
	FieldIsFinished              = "isFinished"
	FieldIsStalled               = "isStalled"
	FieldIsPrivate               = "isPrivate"
	FieldLeftUntilDone           = "leftUntilDone"
	FieldMetadataPercentComplete = "metadataPercentComplete"
	FieldPeersConnected          = "peersConnected"
	FieldPeersGettingFromUs      = "peersGettingFromUs"
	FieldPeersSendingToUs        = "peersSendingToUs"
	FieldPercentDone             = "percentDone"
	FieldQueuePosition           = "queuePosition"
	FieldRateDownload            = "rateDownload"
	FieldRateUpload              = "rateUpload"
	FieldRecheckProgress         = "recheckProgress"
	FieldSizeWhenDone            = "sizeWhenDone"
	FieldTrackers                = "trackers"
	FieldDownloadDir             = "downloadDir"
	FieldUploadedEver            = "uploadedEver"
	FieldDownloadedEver          = "downloadedEver"
	FieldUploadRatio             = "uploadRatio"
	FieldWebseedsSendingToUs     = "webseedsSendingToUs"
	FieldAddedDate               = "addedDate"
	FieldTotalSize               = "totalSize"
	FieldComment                 = "comment"
	FieldCreator                 = "creator"
	FieldDateCreated             = "dateCreated"
	FieldHashString              = "hashString"
	FieldMagnetLink              = "magnetLink"
	FieldLabels                  = "labels"
)

// MetadataFields rarely change and are fetched once per torrent.
var MetadataFields = []string{
	FieldAddedDate,
	FieldName,
	FieldTotalSize,
	FieldHashString,
	FieldMagnetLink,
	FieldLabels,
}

// StatsFields are refreshed on every poll.
var StatsFields = []string{
	FieldError,
	FieldErrorString,
	FieldETA,
	FieldIsFinished,
	FieldIsStalled,
	FieldLeftUntilDone,
	FieldMetadataPercentComplete,
	FieldPeersConnected,
	FieldPeersGettingFromUs,
	FieldPeersSendingToUs,
	FieldPercentDone,
	FieldQueuePosition,
	FieldRateDownload,
	FieldRateUpload,
	FieldRecheckProgress,
	FieldSizeWhenDone,
	FieldStatus,
	FieldTrackers,
	FieldDownloadDir,
	FieldUploadedEver,
	FieldUploadRatio,
	FieldWebseedsSendingToUs,
}

// DetailFields are only requested by the inspector.
var DetailFields = []string{
	FieldComment,
	FieldCreator,
	FieldDateCreated,
	FieldDownloadedEver,
	FieldIsPrivate,
}

// WithID prefixes a field list with the id field.
func WithID(sets ...[]string) []string {
	out := []string{FieldID}
	for _, set := range sets {
		out = append(out, set...)
	}
	return out
}

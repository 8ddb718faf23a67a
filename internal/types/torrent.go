package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Torrent is the local replica of one daemon-side torrent. Fields arrive
// incrementally, so every typed field is optional; fields this client does not
// know about are kept verbatim in Extra.
type Torrent struct {
	ID int

	Name                    *string
	Status                  *Status
	Error                   *ErrorCode
	ErrorString             *string
	ETA                     *int64
	IsFinished              *bool
	IsStalled               *bool
	IsPrivate               *bool
	LeftUntilDone           *int64
	MetadataPercentComplete *float64
	PeersConnected          *int
	PeersGettingFromUs      *int
	PeersSendingToUs        *int
	PercentDone             *float64
	QueuePosition           *int
	RateDownload            *int64
	RateUpload              *int64
	RecheckProgress         *float64
	SizeWhenDone            *int64
	DownloadDir             *string
	UploadedEver            *int64
	DownloadedEver          *int64
	UploadRatio             *float64
	WebseedsSendingToUs     *int
	AddedDate               *int64
	TotalSize               *int64
	Comment                 *string
	Creator                 *string
	DateCreated             *int64
	HashString              *string
	MagnetLink              *string
	Trackers                []Tracker
	Labels                  []string

	Extra map[string]json.RawMessage

	raw map[string]json.RawMessage
}

func NewTorrent(id int) *Torrent {
	return &Torrent{ID: id, raw: map[string]json.RawMessage{}}
}

type fieldDecoder func(t *Torrent, raw json.RawMessage) error

var fieldDecoders = map[string]fieldDecoder{
	FieldName:                    func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.Name) },
	FieldStatus:                  func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.Status) },
	FieldError:                   func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.Error) },
	FieldErrorString:             func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.ErrorString) },
	FieldETA:                     func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.ETA) },
	FieldIsFinished:              func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.IsFinished) },
	FieldIsStalled:               func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.IsStalled) },
	FieldIsPrivate:               func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.IsPrivate) },
	FieldLeftUntilDone:           func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.LeftUntilDone) },
	FieldMetadataPercentComplete: func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.MetadataPercentComplete) },
	FieldPeersConnected:          func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.PeersConnected) },
	FieldPeersGettingFromUs:      func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.PeersGettingFromUs) },
	FieldPeersSendingToUs:        func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.PeersSendingToUs) },
	FieldPercentDone:             func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.PercentDone) },
	FieldQueuePosition:           func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.QueuePosition) },
	FieldRateDownload:            func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.RateDownload) },
	FieldRateUpload:              func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.RateUpload) },
	FieldRecheckProgress:         func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.RecheckProgress) },
	FieldSizeWhenDone:            func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.SizeWhenDone) },
	FieldDownloadDir:             func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.DownloadDir) },
	FieldUploadedEver:            func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.UploadedEver) },
	FieldDownloadedEver:          func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.DownloadedEver) },
	FieldUploadRatio:             func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.UploadRatio) },
	FieldWebseedsSendingToUs:     func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.WebseedsSendingToUs) },
	FieldAddedDate:               func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.AddedDate) },
	FieldTotalSize:               func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.TotalSize) },
	FieldComment:                 func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.Comment) },
	FieldCreator:                 func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.Creator) },
	FieldDateCreated:             func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.DateCreated) },
	FieldHashString:              func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.HashString) },
	FieldMagnetLink:              func(t *Torrent, raw json.RawMessage) error { return decodeOptional(raw, &t.MagnetLink) },
	FieldTrackers:                func(t *Torrent, raw json.RawMessage) error { return decodeSlice(raw, &t.Trackers) },
	FieldLabels:                  func(t *Torrent, raw json.RawMessage) error { return decodeSlice(raw, &t.Labels) },
}

func decodeOptional[T any](raw json.RawMessage, dst **T) error {
	if isNull(raw) {
		*dst = nil
		return nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	*dst = &value
	return nil
}

func decodeSlice[T any](raw json.RawMessage, dst *[]T) error {
	if isNull(raw) {
		*dst = nil
		return nil
	}
	var values []T
	if err := json.Unmarshal(raw, &values); err != nil {
		return err
	}
	*dst = values
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Merge replaces fields one by one. A field whose wire value is unchanged is
// skipped. The id field is ignored. Values that fail to decode are left
// untouched and reported in the returned error; the remaining fields still
// apply.
func (t *Torrent) Merge(fields map[string]json.RawMessage) (bool, error) {
	if t.raw == nil {
		t.raw = map[string]json.RawMessage{}
	}
	changed := false
	var errs []error
	for key, raw := range fields {
		if key == FieldID {
			continue
		}
		if prev, ok := t.raw[key]; ok && bytes.Equal(prev, raw) {
			continue
		}
		value := append(json.RawMessage(nil), raw...)
		if decode, ok := fieldDecoders[key]; ok {
			if err := decode(t, value); err != nil {
				errs = append(errs, fmt.Errorf("field %s: %w", key, err))
				continue
			}
		} else {
			if t.Extra == nil {
				t.Extra = map[string]json.RawMessage{}
			}
			t.Extra[key] = value
		}
		t.raw[key] = value
		changed = true
	}
	return changed, errors.Join(errs...)
}

// Has reports whether the field has been received at least once.
func (t *Torrent) Has(field string) bool {
	if t == nil {
		return false
	}
	_, ok := t.raw[field]
	return ok
}

func (t *Torrent) DisplayName() string {
	if t == nil || t.Name == nil {
		return ""
	}
	return *t.Name
}

func (t *Torrent) CollatedName() string {
	return strings.ToLower(t.DisplayName())
}

func (t *Torrent) State() Status {
	if t == nil || t.Status == nil {
		return StatusStopped
	}
	return *t.Status
}

func (t *Torrent) IsStopped() bool {
	return t.State() == StatusStopped
}

func (t *Torrent) IsChecking() bool {
	s := t.State()
	return s == StatusCheck || s == StatusCheckWait
}

func (t *Torrent) IsDownloading() bool {
	s := t.State()
	return s == StatusDownload || s == StatusDownloadWait
}

func (t *Torrent) IsSeeding() bool {
	s := t.State()
	return s == StatusSeed || s == StatusSeedWait
}

func (t *Torrent) IsQueued() bool {
	s := t.State()
	return s == StatusDownloadWait || s == StatusSeedWait
}

func (t *Torrent) Finished() bool {
	return t != nil && t.IsFinished != nil && *t.IsFinished
}

// IsActive reports torrents that are transferring, verifying, or have any
// peer traffic.
func (t *Torrent) IsActive() bool {
	switch t.State() {
	case StatusDownload, StatusSeed, StatusCheck:
		return true
	}
	return intValue(t.PeersGettingFromUs) > 0 ||
		intValue(t.PeersSendingToUs) > 0 ||
		intValue(t.WebseedsSendingToUs) > 0
}

func (t *Torrent) HasError() bool {
	return t != nil && t.Error != nil && *t.Error != ErrorNone
}

func (t *Torrent) ErrorMessage() string {
	if !t.HasError() || t.ErrorString == nil {
		return ""
	}
	return *t.ErrorString
}

// NeedsMetaData reports magnet torrents still fetching their info dictionary.
func (t *Torrent) NeedsMetaData() bool {
	return t != nil && t.MetadataPercentComplete != nil && *t.MetadataPercentComplete < 1
}

func (t *Torrent) Progress() float64 {
	if t == nil {
		return 0
	}
	if t.IsChecking() && t.RecheckProgress != nil {
		return *t.RecheckProgress
	}
	return floatValue(t.PercentDone)
}

// Daemon sentinels for uploadRatio.
const (
	RatioNotAvailable = -1
	RatioInfinite     = -2
)

func (t *Torrent) Ratio() float64 {
	if t == nil {
		return 0
	}
	return floatValue(t.UploadRatio)
}

func (t *Torrent) DownloadRate() int64 {
	if t == nil {
		return 0
	}
	return int64Value(t.RateDownload)
}

func (t *Torrent) UploadRate() int64 {
	if t == nil {
		return 0
	}
	return int64Value(t.RateUpload)
}

// Activity is the combined transfer rate in bytes per second.
func (t *Torrent) Activity() int64 {
	return t.DownloadRate() + t.UploadRate()
}

func (t *Torrent) Queue() int {
	if t == nil {
		return 0
	}
	return intValue(t.QueuePosition)
}

func (t *Torrent) Added() int64 {
	if t == nil {
		return 0
	}
	return int64Value(t.AddedDate)
}

func (t *Torrent) Size() int64 {
	if t == nil {
		return 0
	}
	return int64Value(t.TotalSize)
}

func (t *Torrent) Hash() string {
	if t == nil || t.HashString == nil {
		return ""
	}
	return *t.HashString
}

// Magnet returns the daemon-provided magnet link, falling back to one built
// from the info hash.
func (t *Torrent) Magnet() string {
	if t == nil {
		return ""
	}
	if t.MagnetLink != nil && *t.MagnetLink != "" {
		return *t.MagnetLink
	}
	if hash := t.Hash(); hash != "" {
		return "magnet:?xt=urn:btih:" + hash
	}
	return ""
}

// Groups returns the tracker domains the torrent belongs to, deduplicated,
// in announce order.
func (t *Torrent) Groups() []string {
	if t == nil || len(t.Trackers) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(t.Trackers))
	for _, tracker := range t.Trackers {
		domain := tracker.Domain()
		if domain == "" {
			continue
		}
		if _, ok := seen[domain]; ok {
			continue
		}
		seen[domain] = struct{}{}
		out = append(out, domain)
	}
	return out
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func int64Value(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func floatValue(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
